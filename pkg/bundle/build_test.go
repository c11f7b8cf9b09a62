package bundle

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/solmev/coreengine/pkg/core"
)

func TestBuild_AssemblesFivePartBundleWithDedupedAtas(t *testing.T) {
	old := monotonicMicros
	monotonicMicros = func() int64 { return 1000 }
	defer func() { monotonicMicros = old }()

	quoteMint := addr(3) // shared by both legs -> only one ATA create expected for it
	buy := SwapLeg{
		Pool: &core.Pool{
			Address: addr(1), Venue: core.VenueRaydiumAmm,
			BaseMint: addr(2), QuoteMint: quoteMint,
			BaseVault: addr(4), QuoteVault: addr(5),
		},
		User: addr(9), UserBase: addr(10), UserQuote: addr(11),
		AmountIn: 100, MinOut: 90, BaseIn: true,
	}
	sell := SwapLeg{
		Pool: &core.Pool{
			Address: addr(6), Venue: core.VenueRaydiumAmm,
			BaseMint: addr(2), QuoteMint: quoteMint,
			BaseVault: addr(7), QuoteVault: addr(8),
		},
		User: addr(9), UserBase: addr(10), UserQuote: addr(11),
		AmountIn: 90, MinOut: 95, BaseIn: false,
	}

	req := BuildRequest{
		User:                   addr(9),
		RecentBlockhash:        solana.Hash{1, 2, 3},
		Buy:                    buy,
		Sell:                   sell,
		UnitPriceMicroLamports: 5000,
		TipLamports:            10000,
		ExpectedProfitLamports: 250,
	}

	built, err := Build(req)
	require.NoError(t, err)
	require.NotNil(t, built.Transaction)
	require.Equal(t, uint64(10000), built.TipLamports)
	require.Equal(t, int64(0), built.BuildLatencyMicros) // fake clock returns the same value twice

	ixs := built.Transaction.Message.Instructions
	// compute-budget x2, 2 deduped idempotent-ATA creates (both legs share
	// the same base and quote mint, so the 4 candidate triples collapse to
	// 2), buy swap, sell swap, tip transfer.
	require.Len(t, ixs, 2+2+2+1)

	accountKeys := built.Transaction.Message.AccountKeys
	programKeys := make([]solana.PublicKey, 0, len(ixs))
	for _, ix := range ixs {
		programKeys = append(programKeys, accountKeys[ix.ProgramIDIndex])
	}
	require.Equal(t, core.ProgramComputeBudget.PublicKey(), programKeys[0])
	require.Equal(t, core.ProgramComputeBudget.PublicKey(), programKeys[1])
	require.Equal(t, core.ProgramSystem.PublicKey(), programKeys[len(programKeys)-1])
}

func TestBuild_PropagatesSwapLegError(t *testing.T) {
	req := BuildRequest{
		User:            addr(9),
		RecentBlockhash: solana.Hash{1},
		Buy:             SwapLeg{Pool: &core.Pool{Address: addr(1), Venue: core.VenueRaydiumClmm}},
		Sell:            SwapLeg{Pool: &core.Pool{Address: addr(2), Venue: core.VenueRaydiumAmm, BaseMint: addr(3), QuoteMint: addr(4)}},
	}
	_, err := Build(req)
	require.Error(t, err)
}
