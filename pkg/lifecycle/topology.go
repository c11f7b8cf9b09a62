package lifecycle

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/solmev/coreengine/pkg/core"
)

// ticksPerArray is the CL-AMM tick-array span, grounded on the teacher's
// pkg/pool/raydium/clmm_tickerarray.go TICK_ARRAY_SIZE constant (60).
const ticksPerArray = 60

// binsPerArray is the Bin-AMM bin-array span, grounded on the teacher's
// pkg/pool/meteora/bin_array.go BinArray.bins [70]Bin and spec.md §4.1's
// "the source uses 70".
const binsPerArray = 70

// TickArrayStartIndex computes the start-tick-index of the tick array
// containing tick, per spec.md §4.5's array-index derivation and the
// teacher's getTickArrayStartIndexByTick/getTickArrayBitIndex pair: floor
// division that rounds toward negative infinity for negative ticks.
func TickArrayStartIndex(tick int32, tickSpacing uint16) int32 {
	span := int32(tickSpacing) * ticksPerArray
	idx := floorDiv(tick, span)
	return idx * span
}

// TickArrayIndex is the signed array index (not start-tick) used by the
// boundary check of spec.md §4.5.
func TickArrayIndex(tick int32, tickSpacing uint16) int32 {
	span := int32(tickSpacing) * ticksPerArray
	return floorDiv(tick, span)
}

// BinArrayIndex computes the bin-array index owning activeID by signed
// floor-division over binsPerArray, per spec.md §4.1.
func BinArrayIndex(activeID int32) int32 {
	return floorDiv(activeID, binsPerArray)
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// AdjacentIndices yields the 2*radius+1 array indices centered on center,
// e.g. radius=1 yields {center-1, center, center+1} per spec.md §4.1.
func AdjacentIndices(center int32, radius int) []int32 {
	out := make([]int32, 0, 2*radius+1)
	for i := -radius; i <= radius; i++ {
		out = append(out, center+int32(i))
	}
	return out
}

// tickArraySeed and binArraySeed are the PDA seed prefixes of the CL-AMM and
// Bin-AMM programs respectively, grounded on the teacher's
// getPdaTickArrayAddress ("tick_array" + poolId + big-endian i32 start
// index); the Bin-AMM equivalent follows the same convention used across
// the Meteora DLMM program ("bin_array" + lbPair + big-endian i32 index),
// which the teacher never derives itself (its bin-array cache is populated
// purely from stream data) but which this engine needs for bootstrap fetch.
const (
	tickArraySeed = "tick_array"
	binArraySeed  = "bin_array"
)

func i32BE(v int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return b
}

// DeriveTickArrayAddress computes the PDA of the tick array starting at
// startIndex for pool, under the CL-AMM program.
func DeriveTickArrayAddress(program, pool core.Address, startIndex int32) core.Address {
	pk, _, _ := solana.FindProgramAddress(
		[][]byte{[]byte(tickArraySeed), pool.PublicKey().Bytes(), i32BE(startIndex)},
		program.PublicKey(),
	)
	return core.AddressFromPublicKey(pk)
}

// DeriveBinArrayAddress computes the PDA of the bin array at arrayIndex for
// pool, under the Bin-AMM program.
func DeriveBinArrayAddress(program, pool core.Address, arrayIndex int32) core.Address {
	pk, _, _ := solana.FindProgramAddress(
		[][]byte{[]byte(binArraySeed), pool.PublicKey().Bytes(), i32BE(arrayIndex)},
		program.PublicKey(),
	)
	return core.AddressFromPublicKey(pk)
}

// TickArrayWindow derives the (2*radius+1)-element tick-array key set
// centered on the pool's current tick, for spec.md §4.4 step 1 (CL-AMM).
func TickArrayWindow(program, pool core.Address, tickCurrent int32, tickSpacing uint16, radius int) map[core.TickKey]core.Address {
	center := TickArrayIndex(tickCurrent, tickSpacing)
	span := int32(tickSpacing) * ticksPerArray
	out := make(map[core.TickKey]core.Address, 2*radius+1)
	for _, arrIdx := range AdjacentIndices(center, radius) {
		start := arrIdx * span
		key := core.TickKey{Pool: pool, StartTickIndex: start}
		out[key] = DeriveTickArrayAddress(program, pool, start)
	}
	return out
}

// BinArrayWindow derives the (2*radius+1)-element bin-array key set
// centered on the pool's active bin, for spec.md §4.4 step 1 (Bin-AMM).
func BinArrayWindow(program, pool core.Address, activeID int32, radius int) map[core.BinKey]core.Address {
	center := BinArrayIndex(activeID)
	out := make(map[core.BinKey]core.Address, 2*radius+1)
	for _, idx := range AdjacentIndices(center, radius) {
		key := core.BinKey{Pool: pool, ArrayIndex: idx}
		out[key] = DeriveBinArrayAddress(program, pool, idx)
	}
	return out
}

func minMax(indices []int32) (lo, hi int32, ok bool) {
	for i, idx := range indices {
		if i == 0 || idx < lo {
			lo = idx
		}
		if i == 0 || idx > hi {
			hi = idx
		}
	}
	return lo, hi, len(indices) > 0
}

// NeedsBoundaryRefreshTick implements the CL-AMM half of the boundary check
// in spec.md §4.5: converts the frozen tick-array window's start-tick-index
// keys into array-index units, then reports whether the pool's current
// tick's array index lies within buffer arrays of either edge.
func NeedsBoundaryRefreshTick(topo core.Topology, tickSpacing uint16, tickCurrent int32, buffer int) bool {
	span := int32(tickSpacing) * ticksPerArray
	indices := make([]int32, len(topo.TickArrays))
	for i, tk := range topo.TickArrays {
		indices[i] = tk.StartTickIndex / span
	}
	lo, hi, ok := minMax(indices)
	if !ok {
		return false
	}
	cur := TickArrayIndex(tickCurrent, tickSpacing)
	return cur-lo < int32(buffer) || hi-cur < int32(buffer)
}

// NeedsBoundaryRefreshBin implements the Bin-AMM half of the boundary check
// in spec.md §4.5: the analogous test over bin-array indices.
func NeedsBoundaryRefreshBin(topo core.Topology, activeID int32, buffer int) bool {
	indices := make([]int32, len(topo.BinArrays))
	for i, bk := range topo.BinArrays {
		indices[i] = bk.ArrayIndex
	}
	lo, hi, ok := minMax(indices)
	if !ok {
		return false
	}
	cur := BinArrayIndex(activeID)
	return cur-lo < int32(buffer) || hi-cur < int32(buffer)
}
