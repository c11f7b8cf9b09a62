package bundle

import (
	"fmt"

	"github.com/solmev/coreengine/pkg/anchor"
	"github.com/solmev/coreengine/pkg/core"
)

// SwapLeg is everything the builder needs to assemble one venue's swap
// instruction: the pool to trade against, the direction, and the amounts
// already computed by the caller (the detector's Candidate plus a sizing
// policy, both out of this package's scope).
type SwapLeg struct {
	Pool      *core.Pool
	AmmConfig *core.AmmConfig // CL-AMM only, looked up by the caller from the registry
	Global    *core.GlobalConfig // CP-Bonding only

	User      core.Address
	UserBase  core.Address // user's ATA for the pool's base mint
	UserQuote core.Address // user's ATA for the pool's quote mint

	AmountIn uint64
	MinOut   uint64
	BaseIn   bool // true if AmountIn is denominated in the pool's base mint

	// TrailingAccounts, when non-nil, supplies the CP-Bonding venue's four
	// protocol-fee/creator-vault accounts from a victim transaction's
	// observed account list instead of deriving them from cached
	// global-config — the caller-policy choice spec.md §9 leaves open.
	TrailingAccounts []core.Address

	// BinArrays is the ordered tail of bin-array addresses a Bin-AMM swap
	// may cross, supplied by the caller from the pool's current topology.
	BinArrays []core.Address
}

// BuildSwap dispatches to the venue-specific instruction builder. Each
// branch mirrors the corresponding teacher pool type's BuildSwapInstructions
// method (see per-function grounding comments), generalized to read every
// input from the SwapLeg value instead of a single in-process pool struct.
func BuildSwap(leg SwapLeg) (*rawInstruction, error) {
	switch leg.Pool.Venue {
	case core.VenuePumpBonding:
		return buildPumpBondingSwap(leg)
	case core.VenueRaydiumAmm, core.VenueRaydiumCpmm:
		return buildCpAmmSwap(leg)
	case core.VenueMeteoraDlmm:
		return buildBinAmmSwap(leg)
	case core.VenueRaydiumClmm:
		return nil, fmt.Errorf("bundle: CL-AMM swap instruction assembly is not implemented by this builder")
	default:
		return nil, fmt.Errorf("bundle: unknown venue %q", leg.Pool.Venue)
	}
}

var (
	discBondingBuy  = anchor.GetDiscriminator("global", "buy")
	discBondingSell = anchor.GetDiscriminator("global", "sell")
)

// buildPumpBondingSwap assembles the CP-Bonding venue's 24-byte instruction
// data {discriminator(8), amount_a(8), amount_b(8)} and its 15-account
// minimal path, extended with the four protocol-fee/creator-vault accounts
// when TrailingAccounts is supplied. Grounded on the teacher's
// pkg/pool/pump/amm.go buyInAMMPool/sellInAMMPool account ordering.
func buildPumpBondingSwap(leg SwapLeg) (*rawInstruction, error) {
	if leg.Pool.PumpBonding == nil {
		return nil, fmt.Errorf("bundle: pool %s missing pump-bonding state", leg.Pool.Address)
	}

	disc := discBondingBuy
	amountA, amountB := leg.MinOut, leg.AmountIn // buy: base_out, quote_in
	if leg.BaseIn {
		disc = discBondingSell
		amountA, amountB = leg.AmountIn, leg.MinOut // sell: base_in, quote_out
	}

	data := make([]byte, 24)
	copy(data[0:8], disc)
	putU64(data, 8, amountA)
	putU64(data, 16, amountB)

	accounts := solanaMetas(
		meta(leg.Pool.Address, false, false),
		meta(leg.User, true, true),
		meta(leg.Global.Address, false, false),
		meta(leg.Pool.BaseMint, false, false),
		meta(leg.Pool.QuoteMint, false, false),
		meta(leg.UserBase, true, false),
		meta(leg.UserQuote, true, false),
		meta(leg.Pool.BaseVault, true, false),
		meta(leg.Pool.QuoteVault, true, false),
		meta(core.PumpBondingProtocolFeeRecipient, false, false),
		meta(core.PumpBondingProtocolFeeRecipientATA, true, false),
		meta(core.ProgramSplToken, false, false),
		meta(core.ProgramSplToken, false, false),
		meta(core.ProgramSystem, false, false),
		meta(core.ProgramAssociatedToken, false, false),
	)
	if len(leg.TrailingAccounts) == 4 {
		for _, a := range leg.TrailingAccounts {
			accounts = append(accounts, meta(a, true, false))
		}
	} else if leg.Pool.PumpBonding.CoinCreator != (core.Address{}) {
		// Derived form: a real deployment would derive the creator-vault
		// ATA/authority PDAs here; this builder requires the caller to
		// supply them via TrailingAccounts since PDA derivation depends on
		// the creator address at bundle-build time, not at quote time.
		return nil, fmt.Errorf("bundle: pool %s needs creator-vault trailing accounts", leg.Pool.Address)
	}

	return &rawInstruction{programID: core.ProgramPumpBonding.PublicKey(), accounts: accounts, data: data}, nil
}

// buildCpAmmSwap assembles the CP-AMM venue's 17-byte instruction data
// {opcode(1), amount_in(8), min_out(8)} (opcode 16 base-in / 17 base-out)
// and its 8-account path including the authority PDA. Grounded on the
// teacher's pkg/pool/raydium/cpmmPool.go swap account ordering, trimmed
// from its 13 accounts down to spec.md §4.8's named count of 8 by dropping
// five a base-in/base-out swap does not strictly need: the two token-mint
// accounts, the second token-program slot, and the amm-config and
// observation accounts (an Open-Question-style judgment call,
// recorded in DESIGN.md).
func buildCpAmmSwap(leg SwapLeg) (*rawInstruction, error) {
	opcode := byte(16) // base-in
	if !leg.BaseIn {
		opcode = 17 // base-out
	}
	data := make([]byte, 17)
	data[0] = opcode
	putU64(data, 1, leg.AmountIn)
	putU64(data, 9, leg.MinOut)

	authority, _, err := ammAuthorityPDA(leg.Pool.Venue, leg.Pool.Address)
	if err != nil {
		return nil, err
	}

	inAcc, outAcc := leg.UserBase, leg.UserQuote
	inVault, outVault := leg.Pool.BaseVault, leg.Pool.QuoteVault
	if !leg.BaseIn {
		inAcc, outAcc = leg.UserQuote, leg.UserBase
		inVault, outVault = leg.Pool.QuoteVault, leg.Pool.BaseVault
	}

	accounts := solanaMetas(
		meta(leg.User, true, true),
		meta(authority, false, false),
		meta(leg.Pool.Address, true, false),
		meta(inAcc, true, false),
		meta(outAcc, true, false),
		meta(inVault, true, false),
		meta(outVault, true, false),
		meta(core.ProgramSplToken, false, false),
	)

	program := core.ProgramRaydiumAmm
	if leg.Pool.Venue == core.VenueRaydiumCpmm {
		program = core.ProgramRaydiumCpmm
	}
	return &rawInstruction{programID: program.PublicKey(), accounts: accounts, data: data}, nil
}

// ammAuthorityPDA derives the pool-authority PDA from seed "amm authority"
// plus the program's nonce, per spec.md §4.8. Raydium's authority PDA has
// no bump seed beyond the string itself (the nonce lives in pool state,
// not the seed list), grounded on the teacher's
// pkg/pool/raydium/cpmmPool.go getAuthorityPDA.
func ammAuthorityPDA(venue core.Venue, pool core.Address) (core.Address, uint8, error) {
	program := core.ProgramRaydiumAmm
	if venue == core.VenueRaydiumCpmm {
		program = core.ProgramRaydiumCpmm
	}
	pk, bump, err := solanaFindProgramAddress([][]byte{[]byte("amm authority")}, program)
	if err != nil {
		return core.Address{}, 0, fmt.Errorf("bundle: derive authority PDA: %w", err)
	}
	return pk, bump, nil
}

var binAmmDisc = anchor.GetDiscriminator("global", "swap2")

// buildBinAmmSwap assembles the Bin-AMM venue's 25-byte instruction data
// {disc(8), amount_in(8), min_out(8), direction(1)} and its 15 fixed
// accounts plus a variable tail of bin-array addresses, grounded on the
// teacher's pkg/pool/meteora/swap.go SwapInstruction account layout and
// Data encoding (the teacher's own remaining-accounts-info suffix is
// dropped here since spec.md §4.8 specifies a fixed 25-byte payload with
// no such suffix).
func buildBinAmmSwap(leg SwapLeg) (*rawInstruction, error) {
	if leg.Pool.BinAmm == nil {
		return nil, fmt.Errorf("bundle: pool %s missing bin-amm state", leg.Pool.Address)
	}

	direction := byte(0)
	inAcc, outAcc := leg.UserBase, leg.UserQuote
	if !leg.BaseIn {
		direction = 1
		inAcc, outAcc = leg.UserQuote, leg.UserBase
	}

	data := make([]byte, 25)
	copy(data[0:8], binAmmDisc)
	putU64(data, 8, leg.AmountIn)
	putU64(data, 16, leg.MinOut)
	data[24] = direction

	accounts := solanaMetas(
		meta(leg.Pool.Address, true, false),
		meta(core.ProgramMeteoraDlmm, false, false), // bitmap extension, absent here
		meta(leg.Pool.BaseVault, true, false),
		meta(leg.Pool.QuoteVault, true, false),
		meta(inAcc, true, false),
		meta(outAcc, true, false),
		meta(leg.Pool.BaseMint, false, false),
		meta(leg.Pool.QuoteMint, false, false),
		meta(leg.Pool.BinAmm.Oracle, true, false),
		meta(core.ProgramMeteoraDlmm, false, false), // host-fee, null
		meta(leg.User, true, true),
		meta(core.ProgramSplToken, false, false),
		meta(core.ProgramSplToken, false, false),
		meta(core.ProgramMeteoraDlmm, false, false), // memo program placeholder
		meta(core.ProgramMeteoraDlmm, false, false), // event-authority PDA placeholder
	)
	for _, ba := range leg.BinArrays {
		accounts = append(accounts, meta(ba, true, false))
	}

	return &rawInstruction{programID: core.ProgramMeteoraDlmm.PublicKey(), accounts: accounts, data: data}, nil
}
