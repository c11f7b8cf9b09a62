package decode

import "github.com/solmev/coreengine/pkg/core"

// tickArraySize is TICK_ARRAY_SIZE from the teacher's
// pkg/pool/raydium/clmm_tickerarray.go.
const tickArraySize = 60

// tickRecordSpan is the per-tick byte span: tick(4) + liquidityNet(8) +
// skip(8) + liquidityGross(16) + feeGrowthOutsideX64A(16) +
// feeGrowthOutsideX64B(16) + rewardGrowthsOutsideX64(3*16) + padding(52).
const tickRecordSpan = 4 + 8 + 8 + 16 + 16 + 16 + 48 + 52

// RaydiumTickArraySpan is the full account size: padding(8) + poolId(32) +
// startTickIndex(4) + 60 ticks + initializedTickCount(1) + trailing padding.
const RaydiumTickArraySpan = 8 + 32 + 4 + tickArraySize*tickRecordSpan + 1 + 115

// DecodeRaydiumTickArray decodes a CL-AMM tick array account.
func DecodeRaydiumTickArray(addr core.Address, data []byte) (*core.TickArrayState, error) {
	if len(data) < 44 {
		return nil, core.ErrNotThisKind
	}
	if len(data) < RaydiumTickArraySpan {
		return nil, core.ErrMalformed
	}

	offset := 8
	poolID := readPubkey(data, offset)
	offset += 32
	startTickIndex := readI32(data, offset)
	offset += 4

	ticks := make([]core.TickNode, tickArraySize)
	for i := 0; i < tickArraySize; i++ {
		tick := readI32(data, offset)
		offset += 4

		liquidityNet := int64(readU64(data, offset))
		offset += 16 // skip high 8 bytes, grounded on teacher's tickStartPos += 16 for this field

		var liquidityGross [16]byte
		copy(liquidityGross[:], data[offset:offset+16])
		offset += 16

		offset += 16 // feeGrowthOutsideX64A
		offset += 16 // feeGrowthOutsideX64B
		offset += 48 // rewardGrowthsOutsideX64[3]
		offset += 52 // padding

		ticks[i] = core.TickNode{
			Tick:           tick,
			LiquidityNet:   liquidityNet,
			LiquidityGross: liquidityGross,
		}
	}

	initializedTickCount := data[offset]

	return &core.TickArrayState{
		Pool:                 poolID,
		StartTickIndex:        startTickIndex,
		Ticks:                 ticks,
		InitializedTickCount:  initializedTickCount,
	}, nil
}
