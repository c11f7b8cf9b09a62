package decode

import "github.com/solmev/coreengine/pkg/core"

// Meteora DLMM (LbPair) pool account field offsets, grounded on the
// teacher's pkg/pool/meteora/dlmm.go MeteoraDlmmPool.Decode offset walk.
// The teacher itself hardcodes the jump to the oracle field at 552 past an
// unmodeled padding region; this decoder keeps that same jump rather than
// re-deriving reward-info padding byte for byte.
const (
	dlmmBaseFactorOffset            = 8
	dlmmProtocolShareOffset         = 32
	dlmmVolatilityAccumulatorOffset = 40
	dlmmVolatilityReferenceOffset   = 44
	dlmmActiveIDOffset              = 76
	dlmmBinStepOffset                = 80
	dlmmStatusOffset                 = 82
	dlmmTokenXMintOffset              = 88
	dlmmTokenYMintOffset              = 120
	dlmmReserveXOffset                = 152
	dlmmReserveYOffset                = 184
	dlmmOracleOffset                  = 552
	dlmmBinArrayBitmapOffset          = 584
	dlmmSpan                          = 712
)

// DecodeMeteoraDlmmPool decodes a Meteora DLMM LbPair account into a Bin-AMM
// pool.
func DecodeMeteoraDlmmPool(addr core.Address, data []byte) (*core.Pool, error) {
	if !checkDiscriminator(data, "LbPair") {
		return nil, core.ErrNotThisKind
	}
	if len(data) < dlmmSpan {
		return nil, core.ErrMalformed
	}

	baseFactor := readU16(data, dlmmBaseFactorOffset)
	protocolShare := readU16(data, dlmmProtocolShareOffset)
	volatilityAccumulator := readU32(data, dlmmVolatilityAccumulatorOffset)
	volatilityReference := readU32(data, dlmmVolatilityReferenceOffset)
	activeID := readI32(data, dlmmActiveIDOffset)
	binStep := readU16(data, dlmmBinStepOffset)
	tokenXMint := readPubkey(data, dlmmTokenXMintOffset)
	tokenYMint := readPubkey(data, dlmmTokenYMintOffset)
	reserveX := readPubkey(data, dlmmReserveXOffset)
	reserveY := readPubkey(data, dlmmReserveYOffset)
	oracle := readPubkey(data, dlmmOracleOffset)

	var bitmap [16]uint64
	for i := 0; i < 16; i++ {
		bitmap[i] = readU64(data, dlmmBinArrayBitmapOffset+i*8)
	}

	if tokenXMint.IsZero() || tokenYMint.IsZero() {
		return nil, core.ErrMalformed
	}

	return &core.Pool{
		Address:    addr,
		Venue:      core.VenueMeteoraDlmm,
		BaseMint:   tokenXMint,
		QuoteMint:  tokenYMint,
		BaseVault:  reserveX,
		QuoteVault: reserveY,
		BinAmm: &core.BinAmmState{
			ActiveID:              activeID,
			BinStep:                binStep,
			BaseFactor:             baseFactor,
			ProtocolShare:          protocolShare,
			VolatilityAccumulator:  volatilityAccumulator,
			VolatilityReference:    volatilityReference,
			BinArrayBitmap:         bitmap,
			Oracle:                 oracle,
		},
	}, nil
}
