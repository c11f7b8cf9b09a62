package decode

import "github.com/solmev/coreengine/pkg/core"

// splTokenAccountSpan is the fixed SPL token account size: mint(32) +
// owner(32) + amount(8) + delegate option(36) + state(1) + isNative
// option(12) + delegatedAmount(8) + closeAuthority option(36).
const splTokenAccountSpan = 165

// vaultAmountOffset is the fixed byte offset of the u64 token amount within
// an SPL token account, per spec.md §4.1.
const vaultAmountOffset = 64

// DecodeVault reads the amount field out of an SPL token account owned by a
// pool, ignoring mint/owner/delegate state the registry does not track.
func DecodeVault(addr core.Address, data []byte) (*core.Vault, error) {
	if len(data) < splTokenAccountSpan {
		return nil, core.ErrMalformed
	}
	return &core.Vault{
		Address: addr,
		Amount:  readU64(data, vaultAmountOffset),
	}, nil
}
