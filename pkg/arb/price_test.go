package arb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solmev/coreengine/pkg/core"
	"github.com/solmev/coreengine/pkg/lifecycle"
	"github.com/solmev/coreengine/pkg/registry"
)

func TestQuoteConstantProduct(t *testing.T) {
	lc := lifecycle.New()
	reg := registry.New(lc)
	baseVault, quoteVault := addr(2), addr(3)

	reg.Commit(registry.Update{Kind: registry.KindVault, VaultKey: baseVault, VaultValue: &core.Vault{Address: baseVault, Amount: 100}, Slot: 1})
	reg.Commit(registry.Update{Kind: registry.KindVault, VaultKey: quoteVault, VaultValue: &core.Vault{Address: quoteVault, Amount: 250}, Slot: 1})

	pool := &core.Pool{Address: addr(1), Venue: core.VenueRaydiumAmm, BaseVault: baseVault, QuoteVault: quoteVault}
	mid, err := Quote(reg, pool)
	require.NoError(t, err)
	require.True(t, mid.Price.Equal(mid.Price)) // sanity: no panic computing it
	require.Equal(t, uint32(25), mid.FeeBps)     // default CP-AMM fee
	want := float64(250) / float64(100)
	got, _ := mid.Price.Float64()
	require.InDelta(t, want, got, 1e-9)
}

func TestQuoteConstantProduct_NoLiquidity(t *testing.T) {
	lc := lifecycle.New()
	reg := registry.New(lc)
	baseVault, quoteVault := addr(2), addr(3)
	reg.Commit(registry.Update{Kind: registry.KindVault, VaultKey: baseVault, VaultValue: &core.Vault{Address: baseVault, Amount: 0}, Slot: 1})
	reg.Commit(registry.Update{Kind: registry.KindVault, VaultKey: quoteVault, VaultValue: &core.Vault{Address: quoteVault, Amount: 100}, Slot: 1})

	pool := &core.Pool{Address: addr(1), Venue: core.VenuePumpBonding, BaseVault: baseVault, QuoteVault: quoteVault}
	_, err := Quote(reg, pool)
	require.ErrorIs(t, err, ErrNoLiquidity)
}

func TestQuoteClmm_SqrtPriceSquared(t *testing.T) {
	// sqrt_price = 2^64 (i.e. "1.0" in Q64 fixed point) -> price should be 1.0.
	// Little-endian 128-bit: byte index 8 carries the 2^64 place.
	var sqrtPriceBytes [16]byte
	sqrtPriceBytes[8] = 1

	pool := &core.Pool{
		Address: addr(1), Venue: core.VenueRaydiumClmm,
		RaydiumClmm: &core.RaydiumClmmState{SqrtPriceX64: sqrtPriceBytes, FeeRate: 2500},
	}
	mid, err := quoteClmm(pool)
	require.NoError(t, err)
	got, _ := mid.Price.Float64()
	require.InDelta(t, 1.0, got, 1e-6)
	require.Equal(t, uint32(25), mid.FeeBps)
}

func TestQuoteDlmm_RefusesWithoutExactFee(t *testing.T) {
	pool := &core.Pool{
		Address: addr(1), Venue: core.VenueMeteoraDlmm,
		BinAmm: &core.BinAmmState{ActiveID: 5, BinStep: 10, BaseFactor: 0},
	}
	_, err := quoteDlmm(pool)
	require.Error(t, err)
}

func TestQuoteDlmm_GeometricPrice(t *testing.T) {
	pool := &core.Pool{
		Address: addr(1), Venue: core.VenueMeteoraDlmm,
		BinAmm: &core.BinAmmState{ActiveID: 0, BinStep: 10, BaseFactor: 5000},
	}
	mid, err := quoteDlmm(pool)
	require.NoError(t, err)
	got, _ := mid.Price.Float64()
	require.InDelta(t, 1.0, got, 1e-9) // base^0 == 1
}
