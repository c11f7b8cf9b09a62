package decode

import "github.com/solmev/coreengine/pkg/core"

// RaydiumCpmmSpan is the account size (including 8-byte discriminator) of
// a Raydium CPMM pool, grounded on the teacher's
// pkg/pool/raydium/cpmmPool.go Span/Decode.
const RaydiumCpmmSpan = 584

// DecodeRaydiumCpmmPool decodes a Raydium CPMM (the sibling CP-AMM family,
// §4 supplement) pool account.
func DecodeRaydiumCpmmPool(addr core.Address, data []byte) (*core.Pool, error) {
	if !checkDiscriminator(data, "PoolState") {
		return nil, core.ErrNotThisKind
	}
	if len(data) < RaydiumCpmmSpan {
		return nil, core.ErrMalformed
	}
	body := data[8:]

	ammConfig := readPubkey(body, 0)
	token0Vault := readPubkey(body, 64)
	token1Vault := readPubkey(body, 96)
	token0Mint := readPubkey(body, 160)
	token1Mint := readPubkey(body, 192)
	observationKey := readPubkey(body, 288)

	status := body[321]
	mint0Decimals := body[323]
	mint1Decimals := body[324]
	openTime := readU64(body, 368)

	if token0Mint.IsZero() || token1Mint.IsZero() {
		return nil, core.ErrMalformed
	}

	return &core.Pool{
		Address:    addr,
		Venue:      core.VenueRaydiumCpmm,
		BaseMint:   token0Mint,
		QuoteMint:  token1Mint,
		BaseVault:  token0Vault,
		QuoteVault: token1Vault,
		RaydiumCpmm: &core.RaydiumCpmmState{
			AmmConfig:      ammConfig,
			ObservationKey: observationKey,
			Status:         status,
			OpenTime:       openTime,
			Mint0Decimals:  mint0Decimals,
			Mint1Decimals:  mint1Decimals,
		},
	}, nil
}
