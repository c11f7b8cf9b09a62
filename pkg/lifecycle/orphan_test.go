package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/solmev/coreengine/pkg/core"
)

func TestOrphanBuffer_DrainReturnsAndClears(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := NewOrphanBuffer(time.Minute, 0, clock)
	pool := addr(1)

	tk := core.TickKey{Pool: pool, StartTickIndex: 60}
	ta := &core.TickArrayState{Pool: pool, StartTickIndex: 60}
	b.AddTick(pool, tk, ta, 5, 1)

	bk := core.BinKey{Pool: pool, ArrayIndex: 2}
	ba := &core.BinArrayState{Pool: pool, ArrayIndex: 2}
	b.AddBin(pool, bk, ba, 6, 1)

	require.Equal(t, 2, b.Len())

	entries := b.Drain(pool)
	require.Len(t, entries, 2)
	require.Equal(t, 0, b.Len())

	var sawTick, sawBin bool
	for _, e := range entries {
		if e.IsTick() {
			sawTick = true
			require.Equal(t, tk, e.TickKey())
		} else {
			sawBin = true
			require.Equal(t, bk, e.BinKey())
		}
	}
	require.True(t, sawTick)
	require.True(t, sawBin)
}

func TestOrphanBuffer_TTLExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := NewOrphanBuffer(time.Second, 0, clock)
	pool := addr(1)

	b.AddTick(pool, core.TickKey{Pool: pool}, &core.TickArrayState{Pool: pool}, 1, 0)
	require.Equal(t, 1, b.Len())

	clock.now = clock.now.Add(2 * time.Second)
	require.Equal(t, 0, b.Len())
	require.Empty(t, b.Drain(pool))
}

func TestOrphanBuffer_DropsOldestWhenFull(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := NewOrphanBuffer(time.Minute, 2, clock)
	poolA, poolB, poolC := addr(1), addr(2), addr(3)

	b.AddTick(poolA, core.TickKey{Pool: poolA}, &core.TickArrayState{Pool: poolA}, 1, 0)
	clock.now = clock.now.Add(time.Millisecond)
	b.AddTick(poolB, core.TickKey{Pool: poolB}, &core.TickArrayState{Pool: poolB}, 2, 0)
	require.Equal(t, 2, b.Len())

	// Buffer is at capacity (maxTotal=2); adding a third entry must evict
	// the oldest (poolA's) before inserting poolC's.
	clock.now = clock.now.Add(time.Millisecond)
	b.AddTick(poolC, core.TickKey{Pool: poolC}, &core.TickArrayState{Pool: poolC}, 3, 0)

	require.Equal(t, 2, b.Len())
	require.Empty(t, b.Drain(poolA))
	require.Len(t, b.Drain(poolB), 1)
	require.Len(t, b.Drain(poolC), 1)
}
