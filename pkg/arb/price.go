package arb

import (
	"fmt"

	cosmath "cosmossdk.io/math"
	"lukechampine.com/uint128"

	"github.com/solmev/coreengine/pkg/core"
	"github.com/solmev/coreengine/pkg/registry"
)

// MidPrice is a pool's current quote-per-base mid price expressed as a
// cosmossdk.io/math.LegacyDec, the fixed-point decimal type the teacher's
// router/pool packages already use for quote arithmetic (e.g.
// pkg/pool/raydium/clmmPool.go's CurrentPrice squaring sqrt-price).
type MidPrice struct {
	Price   cosmath.LegacyDec
	FeeBps  uint32
}

// ErrNoLiquidity is returned when a pool's reserves or liquidity are zero,
// making mid-price undefined.
var ErrNoLiquidity = fmt.Errorf("arb: pool has no liquidity")

// Quote computes pool's mid price and effective fee from cached registry
// state. Each venue branch mirrors the corresponding teacher pool type's
// pricing method, generalized to read from the registry instead of a
// single in-process struct.
func Quote(reg *registry.Registry, pool *core.Pool) (MidPrice, error) {
	switch pool.Venue {
	case core.VenuePumpBonding, core.VenueRaydiumAmm:
		return quoteConstantProduct(reg, pool)
	case core.VenueRaydiumCpmm:
		return quoteCpmm(reg, pool)
	case core.VenueRaydiumClmm:
		return quoteClmm(pool)
	case core.VenueMeteoraDlmm:
		return quoteDlmm(pool)
	default:
		return MidPrice{}, fmt.Errorf("arb: unknown venue %q", pool.Venue)
	}
}

// quoteConstantProduct prices a CP-Bonding or CP-AMM pool as
// quoteReserve/baseReserve, grounded on the teacher's
// pkg/pool/raydium/ammPool.go and pkg/pool/pump/pumpPool.go Quote methods,
// which both divide live vault balances.
func quoteConstantProduct(reg *registry.Registry, pool *core.Pool) (MidPrice, error) {
	baseVault, _, _, ok := reg.Vault(pool.BaseVault)
	if !ok {
		return MidPrice{}, fmt.Errorf("arb: base vault %s not cached", pool.BaseVault)
	}
	quoteVault, _, _, ok := reg.Vault(pool.QuoteVault)
	if !ok {
		return MidPrice{}, fmt.Errorf("arb: quote vault %s not cached", pool.QuoteVault)
	}
	if baseVault.Amount == 0 || quoteVault.Amount == 0 {
		return MidPrice{}, ErrNoLiquidity
	}
	price := cosmath.LegacyNewDec(int64(quoteVault.Amount)).Quo(cosmath.LegacyNewDec(int64(baseVault.Amount)))

	// Fee constants per spec.md §4.7-3: CP-Bonding is 0.30% total, CP-AMM
	// (Raydium V4-like) is 0.25%, overridden by the pool's own fee fields
	// when decoded (Raydium V4 ships its swap fee on-chain).
	feeBps := uint32(25)
	if pool.Venue == core.VenuePumpBonding {
		feeBps = 30
	}
	if pool.RaydiumAmm != nil && pool.RaydiumAmm.SwapFeeDenom != 0 {
		feeBps = uint32(pool.RaydiumAmm.SwapFeeNumer * 10000 / pool.RaydiumAmm.SwapFeeDenom)
	}
	return MidPrice{Price: price, FeeBps: feeBps}, nil
}

// quoteCpmm prices a Raydium CPMM pool the same way as the V4 sibling but
// reads its fee from the cached AmmConfig the pool references.
func quoteCpmm(reg *registry.Registry, pool *core.Pool) (MidPrice, error) {
	mid, err := quoteConstantProduct(reg, pool)
	if err != nil {
		return MidPrice{}, err
	}
	if pool.RaydiumCpmm != nil {
		if cfg, _, _, ok := reg.AmmConfig(pool.RaydiumCpmm.AmmConfig); ok {
			mid.FeeBps = cfg.TradeFeeRate / 100 // config stores fee as hundredths-of-bps
		}
	}
	return mid, nil
}

// quoteClmm derives price from sqrt-price-x64, grounded on the teacher's
// pkg/pool/raydium/clmmPool.go CurrentPrice: price = (sqrtPriceX64 / 2^64)^2,
// in raw token units. No adjustment for the two mints' decimal difference
// is applied.
func quoteClmm(pool *core.Pool) (MidPrice, error) {
	if pool.RaydiumClmm == nil {
		return MidPrice{}, fmt.Errorf("arb: pool %s missing clmm state", pool.Address)
	}
	sqrtPriceX64 := uint128.FromBytes(pool.RaydiumClmm.SqrtPriceX64[:])
	if sqrtPriceX64.IsZero() {
		return MidPrice{}, ErrNoLiquidity
	}
	q64 := cosmath.LegacyNewDec(1)
	two := cosmath.LegacyNewDec(2)
	for i := 0; i < 64; i++ {
		q64 = q64.Mul(two)
	}
	sqrtPrice := cosmath.LegacyNewDecFromBigInt(sqrtPriceX64.Big()).Quo(q64)
	price := sqrtPrice.Mul(sqrtPrice)

	feeBps := pool.RaydiumClmm.FeeRate / 100
	return MidPrice{Price: price, FeeBps: feeBps}, nil
}

// quoteDlmm derives price from the active bin id, grounded on the
// teacher's pkg/pool/meteora/price.go bin-step geometric formula:
// price = (1 + binStep/10000) ^ activeID.
func quoteDlmm(pool *core.Pool) (MidPrice, error) {
	if pool.BinAmm == nil {
		return MidPrice{}, fmt.Errorf("arb: pool %s missing bin-amm state", pool.Address)
	}
	base := cosmath.LegacyNewDec(1).Add(
		cosmath.LegacyNewDec(int64(pool.BinAmm.BinStep)).Quo(cosmath.LegacyNewDec(10000)))

	id := pool.BinAmm.ActiveID
	price := cosmath.LegacyNewDec(1)
	neg := id < 0
	if neg {
		id = -id
	}
	for i := int32(0); i < id; i++ {
		price = price.Mul(base)
	}
	if neg {
		price = cosmath.LegacyNewDec(1).Quo(price)
	}

	// spec.md Open Questions: the dynamic Meteora fee has no default —
	// refuse to quote a bin-AMM pool whose exact fee is unavailable rather
	// than substituting a guessed constant.
	if pool.BinAmm.BaseFactor == 0 {
		return MidPrice{}, fmt.Errorf("arb: pool %s has no exact bin-amm fee available", pool.Address)
	}
	feeBps := uint32(pool.BinAmm.BaseFactor) * uint32(pool.BinAmm.BinStep) / 100
	return MidPrice{Price: price, FeeBps: feeBps}, nil
}
