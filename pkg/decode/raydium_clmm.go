package decode

import "github.com/solmev/coreengine/pkg/core"

// RaydiumClmmSpan is the account size (including 8-byte discriminator) of a
// Raydium CLMM pool, grounded on the teacher's
// pkg/pool/raydium/clmmPool.go CLMMPool.Decode field walk.
const RaydiumClmmSpan = 8 + 1024

// DecodeRaydiumClmmPool decodes a Raydium CLMM (CL-AMM) pool account. The
// pool's tick-array bitmap is not decoded: the topology's tick-array set is
// derived from the decoded current tick and tick spacing.
func DecodeRaydiumClmmPool(addr core.Address, data []byte) (*core.Pool, error) {
	if !checkDiscriminator(data, "PoolState") {
		return nil, core.ErrNotThisKind
	}
	if len(data) < RaydiumClmmSpan {
		return nil, core.ErrMalformed
	}
	body := data[8:]

	ammConfig := readPubkey(body, 1)
	tokenMint0 := readPubkey(body, 65)
	tokenMint1 := readPubkey(body, 97)
	tokenVault0 := readPubkey(body, 129)
	tokenVault1 := readPubkey(body, 161)

	mintDecimals0 := body[225]
	_ = mintDecimals0
	tickSpacing := readU16(body, 227)

	var liquidity, sqrtPriceX64 [16]byte
	copy(liquidity[:], body[229:245])
	copy(sqrtPriceX64[:], body[245:261])

	tickCurrent := readI32(body, 261)
	status := body[381]
	_ = status

	if tokenMint0.IsZero() || tokenMint1.IsZero() {
		return nil, core.ErrMalformed
	}

	return &core.Pool{
		Address:    addr,
		Venue:      core.VenueRaydiumClmm,
		BaseMint:   tokenMint0,
		QuoteMint:  tokenMint1,
		BaseVault:  tokenVault0,
		QuoteVault: tokenVault1,
		RaydiumClmm: &core.RaydiumClmmState{
			AmmConfig:    ammConfig,
			TickSpacing:  tickSpacing,
			TickCurrent:  tickCurrent,
			Liquidity:    liquidity,
			SqrtPriceX64: sqrtPriceX64,
		},
	}, nil
}
