package arb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/solmev/coreengine/pkg/core"
	"github.com/solmev/coreengine/pkg/lifecycle"
	"github.com/solmev/coreengine/pkg/registry"
)

// activatePool drives a pool through the lifecycle FSM to ACTIVE with an
// empty topology, for detector tests that only care about pricing, not
// topology bootstrap.
func activatePool(t *testing.T, lc *lifecycle.Registry, pool core.Address, slot uint64) {
	t.Helper()
	lc.ArmStartSlot(0)
	lc.Discover(pool, slot)
	lc.Freeze(pool, core.Topology{}, slot)
	ok := lc.TryActivate(pool,
		func(core.Address) (uint64, bool) { return slot, true },
		func(core.TickKey) (uint64, bool) { return slot, true },
		func(core.BinKey) (uint64, bool) { return slot, true })
	require.True(t, ok)
}

func TestDetector_FindsCrossingCandidate(t *testing.T) {
	lc := lifecycle.New()
	reg := registry.New(lc)
	idx := NewIndex()

	base := addr(1)
	baseVaultLow, quoteVaultLow := addr(10), addr(11)

	poolLow := &core.Pool{Address: addr(100), Venue: core.VenueRaydiumAmm, BaseMint: base, QuoteMint: core.MintWrappedSOL, BaseVault: baseVaultLow, QuoteVault: quoteVaultLow}
	poolHigh := &core.Pool{Address: addr(101), Venue: core.VenueMeteoraDlmm, BaseMint: base, QuoteMint: core.MintWrappedSOL,
		BinAmm: &core.BinAmmState{ActiveID: 0, BinStep: 0, BaseFactor: 1}}

	reg.Commit(registry.Update{Kind: registry.KindVault, VaultKey: baseVaultLow, VaultValue: &core.Vault{Address: baseVaultLow, Amount: 1000}, Slot: 1})
	reg.Commit(registry.Update{Kind: registry.KindVault, VaultKey: quoteVaultLow, VaultValue: &core.Vault{Address: quoteVaultLow, Amount: 1000}, Slot: 1})
	reg.Commit(registry.Update{Kind: registry.KindPool, PoolKey: poolLow.Address, PoolValue: poolLow, Slot: 1})
	reg.Commit(registry.Update{Kind: registry.KindPool, PoolKey: poolHigh.Address, PoolValue: poolHigh, Slot: 1})

	activatePool(t, lc, poolLow.Address, 1)
	activatePool(t, lc, poolHigh.Address, 1)

	idx.Upsert(poolLow)
	idx.Upsert(poolHigh)

	// poolLow prices at 1.0 (equal vaults, 0 bin-step so geometric price is
	// exactly 1.0); poolHigh is a CP-AMM-free DLMM pool priced identically,
	// so bump poolLow's quote reserve up to create a real spread.
	reg.Commit(registry.Update{Kind: registry.KindVault, VaultKey: quoteVaultLow, VaultValue: &core.Vault{Address: quoteVaultLow, Amount: 2000}, Slot: 2})

	d := NewDetector(idx, reg, lc, 30, 0, 0)
	candidates := d.Scan(time.Now(), 0)
	require.Len(t, candidates, 1)
	require.Equal(t, base, candidates[0].MintA)
	require.Equal(t, core.VenueMeteoraDlmm, candidates[0].Low.Venue)
	require.Equal(t, core.VenueRaydiumAmm, candidates[0].High.Venue)
	require.Greater(t, candidates[0].NetSpreadBps, int64(30))
}

func TestDetector_SkipsInactivePools(t *testing.T) {
	lc := lifecycle.New()
	reg := registry.New(lc)
	idx := NewIndex()

	base := addr(1)
	pool := &core.Pool{Address: addr(100), Venue: core.VenueRaydiumAmm, BaseMint: base, QuoteMint: core.MintWrappedSOL}
	other := &core.Pool{Address: addr(101), Venue: core.VenueMeteoraDlmm, BaseMint: base, QuoteMint: core.MintWrappedSOL}
	idx.Upsert(pool)
	idx.Upsert(other)
	// Neither pool is discovered, let alone ACTIVE: StateOf returns StateNone
	// for both, so Scan must produce nothing.

	d := NewDetector(idx, reg, lc, 0, 0, 0)
	require.Empty(t, d.Scan(time.Now(), 0))
}

func TestDetector_DebouncesWithinWindow(t *testing.T) {
	lc := lifecycle.New()
	reg := registry.New(lc)
	idx := NewIndex()

	base := addr(1)
	baseVaultLow, quoteVaultLow := addr(10), addr(11)
	poolLow := &core.Pool{Address: addr(100), Venue: core.VenueRaydiumAmm, BaseMint: base, QuoteMint: core.MintWrappedSOL, BaseVault: baseVaultLow, QuoteVault: quoteVaultLow}
	poolHigh := &core.Pool{Address: addr(101), Venue: core.VenueMeteoraDlmm, BaseMint: base, QuoteMint: core.MintWrappedSOL,
		BinAmm: &core.BinAmmState{ActiveID: 0, BinStep: 0, BaseFactor: 1}}

	reg.Commit(registry.Update{Kind: registry.KindVault, VaultKey: baseVaultLow, VaultValue: &core.Vault{Address: baseVaultLow, Amount: 1000}, Slot: 1})
	reg.Commit(registry.Update{Kind: registry.KindVault, VaultKey: quoteVaultLow, VaultValue: &core.Vault{Address: quoteVaultLow, Amount: 3000}, Slot: 1})
	reg.Commit(registry.Update{Kind: registry.KindPool, PoolKey: poolLow.Address, PoolValue: poolLow, Slot: 1})
	reg.Commit(registry.Update{Kind: registry.KindPool, PoolKey: poolHigh.Address, PoolValue: poolHigh, Slot: 1})
	activatePool(t, lc, poolLow.Address, 1)
	activatePool(t, lc, poolHigh.Address, 1)
	idx.Upsert(poolLow)
	idx.Upsert(poolHigh)

	d := NewDetector(idx, reg, lc, 0, 0, time.Minute)
	now := time.Now()
	first := d.Scan(now, 0)
	require.Len(t, first, 1)

	second := d.Scan(now.Add(time.Second), 0)
	require.Empty(t, second, "same crossing pair within the debounce window must be suppressed")

	third := d.Scan(now.Add(2*time.Minute), 0)
	require.Len(t, third, 1)
}
