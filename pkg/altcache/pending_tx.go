package altcache

import (
	"errors"
	"fmt"
	"time"

	"github.com/solmev/coreengine/pkg/core"
)

// PendingTx is a decoded pending transaction plus the capture/resolve
// timings spec.md §4.6 asks for.
type PendingTx struct {
	Signature       core.Signature
	AccountKeys     []core.Address
	Instructions    []CompiledInstruction
	NumSigners      uint8
	NumReadonlySigned   uint8
	NumReadonlyUnsigned uint8
	T0, T1          time.Time
}

// CompiledInstruction mirrors the wire-format compiled instruction: a
// program-id index plus account indexes into AccountKeys and opaque data.
type CompiledInstruction struct {
	ProgramIDIndex uint8
	Accounts       []uint8
	Data           []byte
}

// AltMissError is returned without partial results when one or more
// address-table lookups cannot be resolved from the cache.
type AltMissError struct {
	Missing []core.Address
}

func (e *AltMissError) Error() string {
	return fmt.Sprintf("altcache: %d address lookup table(s) not cached", len(e.Missing))
}

var errTruncated = errors.New("altcache: truncated transaction message")

// DecodePendingTx parses the legacy/v0 message envelope of spec.md §4.6.
// For v0, each address-table lookup is resolved via cache.Get; on any
// miss the function returns *AltMissError without partial results, per
// spec.md ("the decoder returns AltMiss{missing} without partial
// results").
func DecodePendingTx(cache *Cache, sig core.Signature, message []byte, t0 time.Time) (*PendingTx, error) {
	r := &byteReader{data: message}

	versioned, version := peekVersion(r)
	if versioned {
		r.offset++ // consume the version-prefix byte
		_ = version
	}

	numSigners, err := r.readByte()
	if err != nil {
		return nil, errTruncated
	}
	numReadonlySigned, err := r.readByte()
	if err != nil {
		return nil, errTruncated
	}
	numReadonlyUnsigned, err := r.readByte()
	if err != nil {
		return nil, errTruncated
	}

	keyCount, err := r.readCompactU16()
	if err != nil {
		return nil, errTruncated
	}
	keys := make([]core.Address, keyCount)
	for i := range keys {
		b, err := r.readN(32)
		if err != nil {
			return nil, errTruncated
		}
		copy(keys[i][:], b)
	}

	if _, err := r.readN(32); err != nil { // recent_blockhash
		return nil, errTruncated
	}

	instrCount, err := r.readCompactU16()
	if err != nil {
		return nil, errTruncated
	}
	instructions := make([]CompiledInstruction, instrCount)
	for i := range instructions {
		programIdx, err := r.readByte()
		if err != nil {
			return nil, errTruncated
		}
		accCount, err := r.readCompactU16()
		if err != nil {
			return nil, errTruncated
		}
		accs, err := r.readN(int(accCount))
		if err != nil {
			return nil, errTruncated
		}
		dataLen, err := r.readCompactU16()
		if err != nil {
			return nil, errTruncated
		}
		data, err := r.readN(int(dataLen))
		if err != nil {
			return nil, errTruncated
		}
		instructions[i] = CompiledInstruction{ProgramIDIndex: programIdx, Accounts: append([]uint8(nil), accs...), Data: append([]byte(nil), data...)}
	}

	if versioned {
		lookupCount, err := r.readCompactU16()
		if err != nil {
			return nil, errTruncated
		}
		var missing []core.Address
		var writable, readonly []core.Address
		for i := 0; i < int(lookupCount); i++ {
			altBytes, err := r.readN(32)
			if err != nil {
				return nil, errTruncated
			}
			var alt core.Address
			copy(alt[:], altBytes)

			wCount, err := r.readCompactU16()
			if err != nil {
				return nil, errTruncated
			}
			wIdx, err := r.readN(int(wCount))
			if err != nil {
				return nil, errTruncated
			}
			roCount, err := r.readCompactU16()
			if err != nil {
				return nil, errTruncated
			}
			roIdx, err := r.readN(int(roCount))
			if err != nil {
				return nil, errTruncated
			}

			entry, ok := cache.Get(alt)
			if !ok {
				missing = append(missing, alt)
				continue
			}
			for _, idx := range wIdx {
				if int(idx) < len(entry.Addresses) {
					writable = append(writable, entry.Addresses[idx])
				}
			}
			for _, idx := range roIdx {
				if int(idx) < len(entry.Addresses) {
					readonly = append(readonly, entry.Addresses[idx])
				}
			}
		}
		if len(missing) > 0 {
			return nil, &AltMissError{Missing: missing}
		}
		keys = append(keys, writable...)
		keys = append(keys, readonly...)
	}

	return &PendingTx{
		Signature:           sig,
		AccountKeys:         keys,
		Instructions:        instructions,
		NumSigners:          numSigners,
		NumReadonlySigned:   numReadonlySigned,
		NumReadonlyUnsigned: numReadonlyUnsigned,
		T0:                  t0,
		T1:                  time.Now(),
	}, nil
}

// peekVersion reports whether the message carries a version prefix byte
// (high bit set) and, if so, the version number in the low 7 bits. Legacy
// messages have no prefix: their first byte is numRequiredSignatures,
// which is always < 128 in practice, so the high-bit test distinguishes
// the two reliably per the documented wire format.
func peekVersion(r *byteReader) (bool, uint8) {
	if r.offset >= len(r.data) {
		return false, 0
	}
	b := r.data[r.offset]
	if b&0x80 != 0 {
		return true, b & 0x7f
	}
	return false, 0
}

type byteReader struct {
	data   []byte
	offset int
}

func (r *byteReader) readByte() (uint8, error) {
	if r.offset >= len(r.data) {
		return 0, errTruncated
	}
	b := r.data[r.offset]
	r.offset++
	return b, nil
}

func (r *byteReader) readN(n int) ([]byte, error) {
	if r.offset+n > len(r.data) {
		return nil, errTruncated
	}
	b := r.data[r.offset : r.offset+n]
	r.offset += n
	return b, nil
}

// readCompactU16 decodes Solana's shortvec (compact-u16) varint encoding:
// 7 bits per byte, continuation in the high bit, at most 3 bytes.
func (r *byteReader) readCompactU16() (uint16, error) {
	var value uint16
	var shift uint
	for i := 0; i < 3; i++ {
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		value |= uint16(b&0x7f) << shift
		if b&0x80 == 0 {
			return value, nil
		}
		shift += 7
	}
	return 0, errTruncated
}
