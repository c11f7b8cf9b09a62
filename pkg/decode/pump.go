package decode

import (
	"github.com/solmev/coreengine/pkg/core"
)

// Pump bonding-curve pool account layout, grounded on the teacher's
// pkg/pool/pump/amm.go ParsePoolData offsets.
const (
	PumpPoolDataSize   = 211
	pumpBaseMintOffset = 43
)

// DecodePumpPool decodes a PumpSwap-like bonding-curve pool account.
func DecodePumpPool(addr core.Address, data []byte) (*core.Pool, error) {
	if !checkDiscriminator(data, "Pool") {
		return nil, core.ErrNotThisKind
	}
	if len(data) < PumpPoolDataSize {
		return nil, core.ErrMalformed
	}

	offset := 11 // discriminator(8) + poolBump(1) + index(2)
	creator := readPubkey(data, offset)
	offset += 32
	baseMint := readPubkey(data, offset)
	offset += 32
	quoteMint := readPubkey(data, offset)
	offset += 32
	lpMint := readPubkey(data, offset)
	offset += 32
	baseVault := readPubkey(data, offset)
	offset += 32
	quoteVault := readPubkey(data, offset)
	offset += 32
	lpSupply := readU64(data, offset)
	offset += 8

	var coinCreator core.Address
	if len(data[offset:]) >= 32 {
		coinCreator = readPubkey(data, offset)
	}

	return &core.Pool{
		Address:    addr,
		Venue:      core.VenuePumpBonding,
		BaseMint:   baseMint,
		QuoteMint:  quoteMint,
		BaseVault:  baseVault,
		QuoteVault: quoteVault,
		PumpBonding: &core.PumpBondingState{
			LpMint:      lpMint,
			Creator:     creator,
			CoinCreator: coinCreator,
			LpSupply:    lpSupply,
		},
	}, nil
}
