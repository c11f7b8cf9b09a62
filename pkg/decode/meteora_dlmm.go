package decode

import "github.com/solmev/coreengine/pkg/core"

// binsPerArray is the fixed bin count of a Meteora DLMM bin array, grounded
// on the teacher's pkg/pool/meteora/bin_array.go BinArray.bins [70]Bin.
const binsPerArray = 70

// binRecordSpan is the per-bin byte span: amountX(8) + amountY(8) +
// price(16) + liquiditySupply(16) + rewardPerTokenStored(2*16) +
// feeAmountXPerTokenStored(16) + feeAmountYPerTokenStored(16) +
// amountXIn(16) + amountYIn(16).
const binRecordSpan = 8 + 8 + 16 + 16 + 32 + 16 + 16 + 16 + 16

// MeteoraBinArraySpan is the full account size including the 8-byte
// discriminator, index, version, padding and lbPair header.
const MeteoraBinArraySpan = 8 + 8 + 1 + 7 + 32 + binsPerArray*binRecordSpan

// DecodeMeteoraBinArray decodes a Meteora DLMM bin array account into the
// bin slots the fragmentation index and arb detector need.
func DecodeMeteoraBinArray(addr core.Address, data []byte) (*core.BinArrayState, error) {
	if len(data) < 16 {
		return nil, core.ErrNotThisKind
	}
	if len(data) < MeteoraBinArraySpan {
		return nil, core.ErrMalformed
	}
	offset := 8
	index := int32(readU64(data, offset))
	offset += 8 + 1 + 7 // version + padding
	lbPair := readPubkey(data, offset)
	offset += 32

	lowerBinID := index * binsPerArray

	bins := make([]core.BinNode, binsPerArray)
	for i := 0; i < binsPerArray; i++ {
		var amountX, amountY, price [16]byte
		copy(amountX[:8], data[offset:offset+8])
		offset += 8
		copy(amountY[:8], data[offset:offset+8])
		offset += 8
		copy(price[:], data[offset:offset+16])
		offset += 16
		offset += binRecordSpan - 32 // skip liquiditySupply..amountYIn, already accounted above

		bins[i] = core.BinNode{
			BinID:    lowerBinID + int32(i),
			AmountX:  amountX,
			AmountY:  amountY,
			PriceX64: price,
		}
	}

	return &core.BinArrayState{
		Pool:       lbPair,
		ArrayIndex: index,
		Bins:       bins,
	}, nil
}
