package bundle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solmev/coreengine/pkg/anchor"
	"github.com/solmev/coreengine/pkg/core"
)

func addr(b byte) core.Address {
	var a core.Address
	a[0] = b
	return a
}

func basePumpLeg() SwapLeg {
	return SwapLeg{
		Pool: &core.Pool{
			Address: addr(1), Venue: core.VenuePumpBonding,
			BaseMint: addr(2), QuoteMint: addr(3),
			BaseVault: addr(4), QuoteVault: addr(5),
			PumpBonding: &core.PumpBondingState{},
		},
		Global:    &core.GlobalConfig{Address: addr(6)},
		User:      addr(7),
		UserBase:  addr(8),
		UserQuote: addr(9),
		AmountIn:  1000,
		MinOut:    900,
		BaseIn:    true,
	}
}

func TestBuildPumpBondingSwap_SellEncodesDiscAndAmounts(t *testing.T) {
	leg := basePumpLeg() // BaseIn: true -> sell
	ix, err := BuildSwap(leg)
	require.NoError(t, err)
	require.Equal(t, core.ProgramPumpBonding.PublicKey(), ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 24)
	require.Equal(t, anchor.GetDiscriminator("global", "sell"), data[0:8])
	require.Equal(t, uint64(1000), leU64(data[8:16]))
	require.Equal(t, uint64(900), leU64(data[16:24]))
	require.Len(t, ix.Accounts(), 15)
}

func TestBuildPumpBondingSwap_BuyEncodesOppositeAmountOrder(t *testing.T) {
	leg := basePumpLeg()
	leg.BaseIn = false // buy: amount_a=min_out (base_out), amount_b=amount_in (quote_in)
	ix, err := BuildSwap(leg)
	require.NoError(t, err)
	data, _ := ix.Data()
	require.Equal(t, anchor.GetDiscriminator("global", "buy"), data[0:8])
	require.Equal(t, uint64(900), leU64(data[8:16]))
	require.Equal(t, uint64(1000), leU64(data[16:24]))
}

func TestBuildPumpBondingSwap_TrailingAccountsExtendLayout(t *testing.T) {
	leg := basePumpLeg()
	leg.TrailingAccounts = []core.Address{addr(20), addr(21), addr(22), addr(23)}
	ix, err := BuildSwap(leg)
	require.NoError(t, err)
	require.Len(t, ix.Accounts(), 19)
}

func TestBuildPumpBondingSwap_RequiresTrailingAccountsWhenCreatorSet(t *testing.T) {
	leg := basePumpLeg()
	leg.Pool.PumpBonding.CoinCreator = addr(99)
	_, err := BuildSwap(leg)
	require.Error(t, err)
}

func TestBuildCpAmmSwap_BaseInOpcodeAndAccounts(t *testing.T) {
	leg := SwapLeg{
		Pool: &core.Pool{
			Address: addr(1), Venue: core.VenueRaydiumAmm,
			BaseMint: addr(2), QuoteMint: addr(3),
			BaseVault: addr(4), QuoteVault: addr(5),
		},
		User: addr(6), UserBase: addr(7), UserQuote: addr(8),
		AmountIn: 500, MinOut: 480, BaseIn: true,
	}
	ix, err := BuildSwap(leg)
	require.NoError(t, err)
	require.Equal(t, core.ProgramRaydiumAmm.PublicKey(), ix.ProgramID())

	data, _ := ix.Data()
	require.Len(t, data, 17)
	require.Equal(t, byte(16), data[0])
	require.Equal(t, uint64(500), leU64(data[1:9]))
	require.Equal(t, uint64(480), leU64(data[9:17]))
	require.Len(t, ix.Accounts(), 8)
}

func TestBuildCpAmmSwap_BaseOutUsesOppositeOpcodeAndRoute(t *testing.T) {
	leg := SwapLeg{
		Pool: &core.Pool{
			Address: addr(1), Venue: core.VenueRaydiumCpmm,
			BaseMint: addr(2), QuoteMint: addr(3),
			BaseVault: addr(4), QuoteVault: addr(5),
		},
		User: addr(6), UserBase: addr(7), UserQuote: addr(8),
		AmountIn: 500, MinOut: 480, BaseIn: false,
	}
	ix, err := BuildSwap(leg)
	require.NoError(t, err)
	require.Equal(t, core.ProgramRaydiumCpmm.PublicKey(), ix.ProgramID())
	data, _ := ix.Data()
	require.Equal(t, byte(17), data[0])

	accounts := ix.Accounts()
	// base-out swaps route the user's quote ATA as the "in" slot (index 3).
	require.Equal(t, leg.UserQuote.PublicKey(), accounts[3].PublicKey)
	require.Equal(t, leg.UserBase.PublicKey(), accounts[4].PublicKey)
}

func TestBuildBinAmmSwap_EncodesDirectionAndBinArrayTail(t *testing.T) {
	leg := SwapLeg{
		Pool: &core.Pool{
			Address: addr(1), Venue: core.VenueMeteoraDlmm,
			BaseMint: addr(2), QuoteMint: addr(3),
			BaseVault: addr(4), QuoteVault: addr(5),
			BinAmm: &core.BinAmmState{Oracle: addr(6)},
		},
		User: addr(7), UserBase: addr(8), UserQuote: addr(9),
		AmountIn: 111, MinOut: 100, BaseIn: true,
		BinArrays: []core.Address{addr(30), addr(31)},
	}
	ix, err := BuildSwap(leg)
	require.NoError(t, err)
	require.Equal(t, core.ProgramMeteoraDlmm.PublicKey(), ix.ProgramID())

	data, _ := ix.Data()
	require.Len(t, data, 25)
	require.Equal(t, anchor.GetDiscriminator("global", "swap2"), data[0:8])
	require.Equal(t, uint64(111), leU64(data[8:16]))
	require.Equal(t, uint64(100), leU64(data[16:24]))
	require.Equal(t, byte(0), data[24])

	accounts := ix.Accounts()
	require.Len(t, accounts, 15+2)
	require.Equal(t, leg.BinArrays[0].PublicKey(), accounts[15].PublicKey)
	require.Equal(t, leg.BinArrays[1].PublicKey(), accounts[16].PublicKey)
}

func TestBuildBinAmmSwap_MissingStateErrors(t *testing.T) {
	leg := SwapLeg{Pool: &core.Pool{Address: addr(1), Venue: core.VenueMeteoraDlmm}}
	_, err := BuildSwap(leg)
	require.Error(t, err)
}

func TestBuildSwap_ClmmNotImplemented(t *testing.T) {
	leg := SwapLeg{Pool: &core.Pool{Address: addr(1), Venue: core.VenueRaydiumClmm}}
	_, err := BuildSwap(leg)
	require.Error(t, err)
}

func leU64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
