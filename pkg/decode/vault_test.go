package decode

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solmev/coreengine/pkg/core"
)

func TestDecodeVault(t *testing.T) {
	data := make([]byte, splTokenAccountSpan)
	binary.LittleEndian.PutUint64(data[vaultAmountOffset:], 123456789)

	var addr core.Address
	addr[0] = 7

	v, err := DecodeVault(addr, data)
	require.NoError(t, err)
	require.Equal(t, uint64(123456789), v.Amount)
	require.Equal(t, addr, v.Address)
}

func TestDecodeVault_TooShortIsMalformed(t *testing.T) {
	_, err := DecodeVault(core.Address{}, make([]byte, 10))
	require.ErrorIs(t, err, core.ErrMalformed)
}
