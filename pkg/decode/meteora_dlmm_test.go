package decode

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solmev/coreengine/pkg/core"
)

func TestDecodeMeteoraBinArray(t *testing.T) {
	data := make([]byte, MeteoraBinArraySpan)

	binary.LittleEndian.PutUint64(data[8:16], uint64(int64(int32(2)))) // index = 2
	var lbPair core.Address
	lbPair[0] = 9
	copy(data[24:56], lbPair[:])

	// First bin's amountX/amountY, at offset 56.
	binary.LittleEndian.PutUint64(data[56:64], 111)
	binary.LittleEndian.PutUint64(data[64:72], 222)

	ba, err := DecodeMeteoraBinArray(core.Address{}, data)
	require.NoError(t, err)
	require.Equal(t, lbPair, ba.Pool)
	require.Equal(t, int32(2), ba.ArrayIndex)
	require.Len(t, ba.Bins, binsPerArray)
	require.Equal(t, int32(2*binsPerArray), ba.Bins[0].BinID)

	var wantAmountX, wantAmountY [16]byte
	binary.LittleEndian.PutUint64(wantAmountX[:8], 111)
	binary.LittleEndian.PutUint64(wantAmountY[:8], 222)
	require.Equal(t, wantAmountX, ba.Bins[0].AmountX)
	require.Equal(t, wantAmountY, ba.Bins[0].AmountY)
}

func TestDecodeMeteoraBinArray_TooShortIsNotThisKind(t *testing.T) {
	_, err := DecodeMeteoraBinArray(core.Address{}, make([]byte, 4))
	require.ErrorIs(t, err, core.ErrNotThisKind)
}
