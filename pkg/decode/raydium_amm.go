package decode

import "github.com/solmev/coreengine/pkg/core"

// RaydiumAmmSpan is the size of a Raydium V4-like (CP-AMM) pool account.
// The legacy AMM program predates Anchor and carries no discriminator, so
// identification is by exact data length only, grounded on the teacher's
// pkg/pool/raydium/ammPool.go Decode/Span.
const RaydiumAmmSpan = 752

// DecodeRaydiumAmmPool decodes a Raydium V4-like CP-AMM pool account.
func DecodeRaydiumAmmPool(addr core.Address, data []byte) (*core.Pool, error) {
	if len(data) != RaydiumAmmSpan {
		return nil, core.ErrNotThisKind
	}

	status := readU64(data, 0)
	baseDecimal := readU64(data, 32)
	quoteDecimal := readU64(data, 40)
	tradeFeeNumerator := readU64(data, 144)
	tradeFeeDenominator := readU64(data, 152)
	swapFeeNumerator := readU64(data, 176)
	swapFeeDenominator := readU64(data, 184)
	baseNeedTakePnl := readU64(data, 192)
	quoteNeedTakePnl := readU64(data, 200)
	poolOpenTime := readU64(data, 224)

	offset := 256 + 16*4 + 8*2 // past the 32 leading u64 fields, then swap in/out u128s + their fee u64s
	baseVault := readPubkey(data, offset)
	offset += 32
	quoteVault := readPubkey(data, offset)
	offset += 32
	baseMint := readPubkey(data, offset)
	offset += 32
	quoteMint := readPubkey(data, offset)
	offset += 32
	lpMint := readPubkey(data, offset)

	if baseMint.IsZero() || quoteMint.IsZero() {
		return nil, core.ErrMalformed
	}

	nonce := readU64(data, 8)

	return &core.Pool{
		Address:    addr,
		Venue:      core.VenueRaydiumAmm,
		BaseMint:   baseMint,
		QuoteMint:  quoteMint,
		BaseVault:  baseVault,
		QuoteVault: quoteVault,
		RaydiumAmm: &core.RaydiumAmmState{
			LpMint:           lpMint,
			AuthorityNonce:   nonce,
			Status:           status,
			OpenTime:         poolOpenTime,
			TradeFeeNumer:    tradeFeeNumerator,
			TradeFeeDenom:    tradeFeeDenominator,
			SwapFeeNumer:     swapFeeNumerator,
			SwapFeeDenom:     swapFeeDenominator,
			BaseNeedTakePnl:  baseNeedTakePnl,
			QuoteNeedTakePnl: quoteNeedTakePnl,
			BaseDecimal:      baseDecimal,
			QuoteDecimal:     quoteDecimal,
		},
	}, nil
}
