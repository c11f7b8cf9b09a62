package altcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/solmev/coreengine/pkg/core"
)

func compactU16(v int) []byte {
	if v < 0x80 {
		return []byte{byte(v)}
	}
	panic("test helper only supports values < 128")
}

// buildLegacyMessage constructs a minimal legacy (non-versioned) message:
// header, two account keys, a blank blockhash, and one instruction with no
// accounts and one data byte.
func buildLegacyMessage() []byte {
	var msg []byte
	msg = append(msg, 1, 0, 1) // numSigners, numReadonlySigned, numReadonlyUnsigned
	msg = append(msg, compactU16(2)...)
	msg = append(msg, make([]byte, 32)...) // key 0
	msg = append(msg, make([]byte, 32)...) // key 1
	msg = append(msg, make([]byte, 32)...) // recent_blockhash
	msg = append(msg, compactU16(1)...)    // instruction count
	msg = append(msg, 0)                   // program_id_index
	msg = append(msg, compactU16(0)...)    // account count
	msg = append(msg, compactU16(1)...)    // data length
	msg = append(msg, 0x42)                // data
	return msg
}

func TestDecodePendingTx_Legacy(t *testing.T) {
	cache := New(&countingFetcher{}, "")
	msg := buildLegacyMessage()
	t0 := time.Now()

	tx, err := DecodePendingTx(cache, core.Signature{1}, msg, t0)
	require.NoError(t, err)
	require.Len(t, tx.AccountKeys, 2)
	require.Len(t, tx.Instructions, 1)
	require.Equal(t, uint8(0), tx.Instructions[0].ProgramIDIndex)
	require.Equal(t, []byte{0x42}, tx.Instructions[0].Data)
	require.Equal(t, uint8(1), tx.NumSigners)
	require.Equal(t, uint8(1), tx.NumReadonlyUnsigned)
	require.True(t, tx.T1.After(t0) || tx.T1.Equal(t0))
}

func TestDecodePendingTx_Truncated(t *testing.T) {
	cache := New(&countingFetcher{}, "")
	msg := []byte{1, 0, 1} // header only, missing key count and beyond
	_, err := DecodePendingTx(cache, core.Signature{}, msg, time.Now())
	require.Error(t, err)
}

// buildV0Message builds a versioned (v0) message with one ALT lookup
// referencing one writable and zero readonly indexes.
func buildV0Message(alt core.Address) []byte {
	var msg []byte
	msg = append(msg, 0x80) // version prefix: v0
	msg = append(msg, 1, 0, 1)
	msg = append(msg, compactU16(1)...)
	msg = append(msg, make([]byte, 32)...) // static key 0 (fee payer)
	msg = append(msg, make([]byte, 32)...) // recent_blockhash
	msg = append(msg, compactU16(1)...)    // instruction count
	msg = append(msg, 0)
	msg = append(msg, compactU16(0)...)
	msg = append(msg, compactU16(0)...)

	msg = append(msg, compactU16(1)...) // lookup count
	msg = append(msg, alt[:]...)
	msg = append(msg, compactU16(1)...) // writable index count
	msg = append(msg, 0)                // writable index 0
	msg = append(msg, compactU16(0)...) // readonly index count
	return msg
}

func TestDecodePendingTx_V0ResolvesAltHit(t *testing.T) {
	alt := addr(1)
	cache := New(&countingFetcher{}, "")
	cache.entries[alt] = Entry{Addresses: []core.Address{addr(50), addr(51)}, Version: 1}

	msg := buildV0Message(alt)
	tx, err := DecodePendingTx(cache, core.Signature{}, msg, time.Now())
	require.NoError(t, err)
	// 1 static key + 1 resolved writable address from the ALT.
	require.Len(t, tx.AccountKeys, 2)
	require.Equal(t, addr(50), tx.AccountKeys[1])
}

func TestDecodePendingTx_V0AltMissReturnsNoPartialResults(t *testing.T) {
	alt := addr(2)
	cache := New(&countingFetcher{}, "") // never populated: every Get misses

	msg := buildV0Message(alt)
	tx, err := DecodePendingTx(cache, core.Signature{}, msg, time.Now())
	require.Nil(t, tx)
	var miss *AltMissError
	require.ErrorAs(t, err, &miss)
	require.Equal(t, []core.Address{alt}, miss.Missing)
}
