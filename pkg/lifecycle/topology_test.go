package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solmev/coreengine/pkg/core"
)

func TestFloorDiv_NegativeRoundsTowardNegativeInfinity(t *testing.T) {
	cases := []struct{ a, b, want int32 }{
		{7, 2, 3},
		{-7, 2, -4},
		{7, -2, -4},
		{-7, -2, 3},
		{0, 5, 0},
		{4, 2, 2},
	}
	for _, c := range cases {
		require.Equal(t, c.want, floorDiv(c.a, c.b), "floorDiv(%d, %d)", c.a, c.b)
	}
}

func TestTickArrayIndexAndStartIndex(t *testing.T) {
	var tickSpacing uint16 = 10 // span = 600
	require.Equal(t, int32(0), TickArrayIndex(0, tickSpacing))
	require.Equal(t, int32(0), TickArrayIndex(599, tickSpacing))
	require.Equal(t, int32(1), TickArrayIndex(600, tickSpacing))
	require.Equal(t, int32(-1), TickArrayIndex(-1, tickSpacing))
	require.Equal(t, int32(-1), TickArrayIndex(-600, tickSpacing))

	require.Equal(t, int32(0), TickArrayStartIndex(599, tickSpacing))
	require.Equal(t, int32(600), TickArrayStartIndex(600, tickSpacing))
	require.Equal(t, int32(-600), TickArrayStartIndex(-1, tickSpacing))
}

func TestBinArrayIndex(t *testing.T) {
	require.Equal(t, int32(0), BinArrayIndex(0))
	require.Equal(t, int32(0), BinArrayIndex(69))
	require.Equal(t, int32(1), BinArrayIndex(70))
	require.Equal(t, int32(-1), BinArrayIndex(-1))
	require.Equal(t, int32(-1), BinArrayIndex(-70))
}

func TestAdjacentIndices(t *testing.T) {
	require.Equal(t, []int32{-1, 0, 1}, AdjacentIndices(0, 1))
	require.Equal(t, []int32{3}, AdjacentIndices(3, 0))
	require.Equal(t, []int32{8, 9, 10, 11, 12}, AdjacentIndices(10, 2))
}

func TestTickArrayWindow_DerivesSpanKeysCenteredOnCurrent(t *testing.T) {
	program := addr(9)
	pool := addr(1)
	var tickSpacing uint16 = 10

	win := TickArrayWindow(program, pool, 650, tickSpacing, 1)
	require.Len(t, win, 3)
	require.Contains(t, win, core.TickKey{Pool: pool, StartTickIndex: 0})
	require.Contains(t, win, core.TickKey{Pool: pool, StartTickIndex: 600})
	require.Contains(t, win, core.TickKey{Pool: pool, StartTickIndex: 1200})
}

func TestBinArrayWindow_DerivesSpanKeysCenteredOnActive(t *testing.T) {
	program := addr(9)
	pool := addr(1)

	win := BinArrayWindow(program, pool, 140, 1)
	require.Len(t, win, 3)
	require.Contains(t, win, core.BinKey{Pool: pool, ArrayIndex: 1})
	require.Contains(t, win, core.BinKey{Pool: pool, ArrayIndex: 2})
	require.Contains(t, win, core.BinKey{Pool: pool, ArrayIndex: 3})
}

func TestNeedsBoundaryRefreshTick(t *testing.T) {
	pool := addr(1)
	var tickSpacing uint16 = 10 // span = 600
	// Frozen window covers array indices -1, 0, 1 (start ticks -600, 0, 600).
	topo := core.Topology{TickArrays: []core.TickKey{
		{Pool: pool, StartTickIndex: -600},
		{Pool: pool, StartTickIndex: 0},
		{Pool: pool, StartTickIndex: 600},
	}}

	// Current tick 650 -> array index 1, the window's high edge: within buffer 1.
	require.True(t, NeedsBoundaryRefreshTick(topo, tickSpacing, 650, 1))
	// Current tick 50 -> array index 0, dead center: not within buffer 1 of either edge.
	require.False(t, NeedsBoundaryRefreshTick(topo, tickSpacing, 50, 1))
}

func TestNeedsBoundaryRefreshBin(t *testing.T) {
	pool := addr(1)
	topo := core.Topology{BinArrays: []core.BinKey{
		{Pool: pool, ArrayIndex: -1},
		{Pool: pool, ArrayIndex: 0},
		{Pool: pool, ArrayIndex: 1},
	}}

	require.True(t, NeedsBoundaryRefreshBin(topo, 140, 1))  // array index 2, past the high edge
	require.False(t, NeedsBoundaryRefreshBin(topo, 10, 1))  // array index 0, center
}

func TestNeedsBoundaryRefresh_EmptyTopologyIsFalse(t *testing.T) {
	require.False(t, NeedsBoundaryRefreshTick(core.Topology{}, 10, 0, 1))
	require.False(t, NeedsBoundaryRefreshBin(core.Topology{}, 0, 1))
}
