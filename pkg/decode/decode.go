// Package decode holds the pure decoders of spec.md §4.1: functions of the
// shape (bytes, owner) -> (typed state, error) with no allocation of
// unbounded state and no retained references to the input buffer.
package decode

import (
	"encoding/binary"

	"github.com/solmev/coreengine/pkg/anchor"
	"github.com/solmev/coreengine/pkg/core"
)

// checkDiscriminator reports whether the leading 8 bytes of data match the
// anchor account discriminator for the given account name. Decoders that
// fail this check must return core.ErrNotThisKind, never core.ErrMalformed.
func checkDiscriminator(data []byte, accountName string) bool {
	if len(data) < 8 {
		return false
	}
	want := anchor.GetDiscriminator("account", accountName)
	for i := 0; i < 8; i++ {
		if data[i] != want[i] {
			return false
		}
	}
	return true
}

func readPubkey(data []byte, offset int) core.Address {
	var a core.Address
	copy(a[:], data[offset:offset+32])
	return a
}

func readU64(data []byte, offset int) uint64 {
	return binary.LittleEndian.Uint64(data[offset : offset+8])
}

func readU32(data []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(data[offset : offset+4])
}

func readU16(data []byte, offset int) uint16 {
	return binary.LittleEndian.Uint16(data[offset : offset+2])
}

func readI32(data []byte, offset int) int32 {
	return int32(readU32(data, offset))
}
