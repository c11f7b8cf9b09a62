package arb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solmev/coreengine/pkg/core"
)

func addr(b byte) core.Address {
	var a core.Address
	a[0] = b
	return a
}

func TestCanonicalPair_OrderIndependent(t *testing.T) {
	m1, m2 := addr(1), addr(2)
	require.Equal(t, canonicalPair(m1, m2), canonicalPair(m2, m1))
}

func TestIndex_UpsertIgnoresUnrecognizedQuotePairs(t *testing.T) {
	idx := NewIndex()
	pool := &core.Pool{
		Address: addr(1), Venue: core.VenueRaydiumAmm,
		BaseMint: addr(2), QuoteMint: addr(3), // neither is a recognized quote mint
	}
	idx.Upsert(pool)
	_, frag := idx.Fragmented(pool.BaseMint, pool.QuoteMint)
	require.False(t, frag)
}

func TestIndex_UpsertAndFragmented(t *testing.T) {
	idx := NewIndex()
	base := addr(1)

	poolA := &core.Pool{Address: addr(10), Venue: core.VenueRaydiumAmm, BaseMint: base, QuoteMint: core.MintWrappedSOL}
	poolB := &core.Pool{Address: addr(11), Venue: core.VenueMeteoraDlmm, BaseMint: base, QuoteMint: core.MintWrappedSOL}

	idx.Upsert(poolA)
	venues, frag := idx.Fragmented(base, core.MintWrappedSOL)
	require.False(t, frag) // only one venue so far
	require.Len(t, venues, 1)

	idx.Upsert(poolB)
	venues, frag = idx.Fragmented(base, core.MintWrappedSOL)
	require.True(t, frag)
	require.Len(t, venues, 2)
	require.Equal(t, poolA.Address, venues[core.VenueRaydiumAmm].Address)
	require.Equal(t, poolB.Address, venues[core.VenueMeteoraDlmm].Address)
}

func TestIndex_EvictRemovesOnlyMatchingAddress(t *testing.T) {
	idx := NewIndex()
	base := addr(1)
	poolA := &core.Pool{Address: addr(10), Venue: core.VenueRaydiumAmm, BaseMint: base, QuoteMint: core.MintWrappedSOL}
	poolB := &core.Pool{Address: addr(11), Venue: core.VenueRaydiumAmm, BaseMint: base, QuoteMint: core.MintWrappedSOL}

	idx.Upsert(poolA)
	// Evicting a different pool at the same venue slot must not clobber it.
	idx.Evict(poolB)
	venues, _ := idx.Fragmented(base, core.MintWrappedSOL)
	require.Len(t, venues, 1)

	idx.Evict(poolA)
	_, frag := idx.Fragmented(base, core.MintWrappedSOL)
	require.False(t, frag)
}
