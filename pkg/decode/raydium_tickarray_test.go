package decode

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solmev/coreengine/pkg/core"
)

func TestDecodeRaydiumTickArray(t *testing.T) {
	data := make([]byte, RaydiumTickArraySpan)

	var pool core.Address
	pool[0] = 5
	copy(data[8:40], pool[:])
	binary.LittleEndian.PutUint32(data[40:44], uint32(int32(-600)))

	// First tick slot starts at offset 44: tick(4), liquidityNet low 8 bytes
	// (the decoder reads a uint64 and skips 16 total for this field).
	binary.LittleEndian.PutUint32(data[44:48], uint32(int32(42)))
	binary.LittleEndian.PutUint64(data[48:56], 7)

	initCountOffset := 44 + tickArraySize*tickRecordSpan
	data[initCountOffset] = 3

	ta, err := DecodeRaydiumTickArray(pool, data)
	require.NoError(t, err)
	require.Equal(t, pool, ta.Pool)
	require.Equal(t, int32(-600), ta.StartTickIndex)
	require.Equal(t, uint8(3), ta.InitializedTickCount)
	require.Len(t, ta.Ticks, tickArraySize)
	require.Equal(t, int32(42), ta.Ticks[0].Tick)
	require.Equal(t, int64(7), ta.Ticks[0].LiquidityNet)
}

func TestDecodeRaydiumTickArray_TooShortIsNotThisKind(t *testing.T) {
	_, err := DecodeRaydiumTickArray(core.Address{}, make([]byte, 10))
	require.ErrorIs(t, err, core.ErrNotThisKind)
}

func TestDecodeRaydiumTickArray_TruncatedIsMalformed(t *testing.T) {
	_, err := DecodeRaydiumTickArray(core.Address{}, make([]byte, 100))
	require.ErrorIs(t, err, core.ErrMalformed)
}
