package bundle

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	cosmath "cosmossdk.io/math"

	"github.com/solmev/coreengine/pkg/core"
)

// computeBudgetUnitLimitDisc and computeBudgetUnitPriceDisc are the native
// compute-budget program's instruction-index discriminators. The teacher
// never exercises this program directly (its demo sends one swap at a
// time), so this encoding is built from the native program's well-known
// wire format rather than grounded on a teacher call site.
const (
	computeBudgetUnitLimitDisc byte = 2
	computeBudgetUnitPriceDisc byte = 3
)

func computeUnitLimitInstruction(units uint32) *rawInstruction {
	data := make([]byte, 5)
	data[0] = computeBudgetUnitLimitDisc
	putU32(data, 1, units)
	return &rawInstruction{programID: core.ProgramComputeBudget.PublicKey(), data: data}
}

func computeUnitPriceInstruction(microLamports uint64) *rawInstruction {
	data := make([]byte, 9)
	data[0] = computeBudgetUnitPriceDisc
	putU64(data, 1, microLamports)
	return &rawInstruction{programID: core.ProgramComputeBudget.PublicKey(), data: data}
}

func putU32(b []byte, off int, v uint32) {
	b[off], b[off+1], b[off+2], b[off+3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
}

// ataTriple is a (owner, mint, token_program) key identifying one
// idempotent-create instruction the builder must emit at most once.
type ataTriple struct {
	Owner, Mint, TokenProgram core.Address
}

// createIdempotentDisc is the associated-token-account program's
// CreateIdempotent instruction tag, grounded on the ATA program's public
// layout; the teacher's pkg/sol/token_account.go only ever calls the plain
// (non-idempotent) associatedtokenaccount.NewCreateInstruction, which would
// fail the second time a bundle touches an ATA that already exists —
// unsuitable for a builder that runs on every opportunity, so this
// dedicated idempotent encoding replaces it here.
const createIdempotentDisc = byte(1)

func ataCreateIdempotentInstruction(payer core.Address, t ataTriple) (*rawInstruction, core.Address) {
	ata, _, _ := solana.FindAssociatedTokenAddress(t.Owner.PublicKey(), t.Mint.PublicKey())
	accounts := solanaMetas(
		meta(payer, true, true),
		meta(core.AddressFromPublicKey(ata), true, false),
		meta(t.Owner, false, false),
		meta(t.Mint, false, false),
		meta(core.ProgramSystem, false, false),
		meta(t.TokenProgram, false, false),
	)
	return &rawInstruction{
		programID: core.ProgramAssociatedToken.PublicKey(),
		accounts:  accounts,
		data:      []byte{createIdempotentDisc},
	}, core.AddressFromPublicKey(ata)
}

func tipTransferInstruction(from core.Address, lamports uint64, tipAccount *core.Address) *rawInstruction {
	tip := core.ValidatorTipAccounts[rand.Intn(len(core.ValidatorTipAccounts))]
	if tipAccount != nil {
		tip = *tipAccount
	}
	ix := system.NewTransferInstruction(lamports, from.PublicKey(), tip.PublicKey()).Build()
	return &rawInstruction{programID: ix.ProgramID(), accounts: ix.Accounts(), data: mustData(ix)}
}

func mustData(ix solana.Instruction) []byte {
	d, err := ix.Data()
	if err != nil {
		panic(err)
	}
	return d
}

// BuildRequest is everything Build needs to assemble one bundle: the two
// legs of the backrun, the user executing it, a compute-unit price, the
// profit estimate carried through for logging, and the tip sizing policy.
type BuildRequest struct {
	User                   core.Address
	RecentBlockhash        solana.Hash // fetched by the caller; the builder itself does no RPC
	Buy                    SwapLeg     // venue quoted cheaper
	Sell                   SwapLeg     // venue quoted richer
	UnitPriceMicroLamports uint64
	TipLamports            uint64
	ExpectedProfitLamports int64
	// TipAccount overrides the tip transfer's destination. Left nil, the
	// builder picks uniformly at random from core.ValidatorTipAccounts
	// (spec.md §6's fixed eight); set it to a block engine's live
	// recommended tip account (sol.Client.JitoTipAccount) when Jito
	// submission is configured, since an arbitrary tip account is not
	// guaranteed to be one the current leader's block engine is watching.
	TipAccount *core.Address
}

// BuiltBundle is the builder's output: an unsigned transaction plus the
// metadata spec.md §4.8 names for the external submit sink. Signing and
// submission (Jito bundle or direct send) stay outside this package, per
// the teacher's pkg/sol split between transaction assembly and send/jito.
type BuiltBundle struct {
	Transaction        *solana.Transaction
	ExpectedProfit     cosmath.Int
	TipLamports        uint64
	BuildLatencyMicros int64
}

// Build assembles the five-part bundle described by spec.md §4.8. It does
// no I/O: every account referenced must already be resolved by the caller
// onto the two SwapLeg values. Grounded on the teacher's main.go swap flow
// for instruction ordering (compute-budget first, swap instructions
// appended to one slice, then sent as one transaction) generalized from a
// single swap to two venue legs plus a tip transfer.
func Build(req BuildRequest) (*BuiltBundle, error) {
	start := monotonicMicros()

	buyIx, err := BuildSwap(req.Buy)
	if err != nil {
		return nil, fmt.Errorf("bundle: buy leg: %w", err)
	}
	sellIx, err := BuildSwap(req.Sell)
	if err != nil {
		return nil, fmt.Errorf("bundle: sell leg: %w", err)
	}

	unitLimit := core.ComputeUnitEstimate[req.Buy.Pool.Venue]
	if unitLimit == 0 {
		unitLimit = 400_000
	}

	instructions := []solana.Instruction{
		computeUnitLimitInstruction(unitLimit),
		computeUnitPriceInstruction(req.UnitPriceMicroLamports),
	}

	seen := make(map[ataTriple]bool)
	for _, triple := range []ataTriple{
		{req.User, req.Buy.Pool.BaseMint, core.ProgramSplToken},
		{req.User, req.Buy.Pool.QuoteMint, core.ProgramSplToken},
		{req.User, req.Sell.Pool.BaseMint, core.ProgramSplToken},
		{req.User, req.Sell.Pool.QuoteMint, core.ProgramSplToken},
	} {
		if seen[triple] {
			continue
		}
		seen[triple] = true
		ix, _ := ataCreateIdempotentInstruction(req.User, triple)
		instructions = append(instructions, ix)
	}

	instructions = append(instructions, buyIx, sellIx, tipTransferInstruction(req.User, req.TipLamports, req.TipAccount))

	tx, err := solana.NewTransaction(instructions, req.RecentBlockhash, solana.TransactionPayer(req.User.PublicKey()))
	if err != nil {
		return nil, fmt.Errorf("bundle: assemble transaction: %w", err)
	}

	return &BuiltBundle{
		Transaction:        tx,
		ExpectedProfit:     cosmath.NewInt(req.ExpectedProfitLamports),
		TipLamports:        req.TipLamports,
		BuildLatencyMicros: monotonicMicros() - start,
	}, nil
}

// monotonicMicros is a thin indirection over time.Now so tests can replace
// it; never used for anything ordering-sensitive, only for the
// build_latency_us metric spec.md §4.8 asks the builder to report.
var monotonicMicros = func() int64 { return time.Now().UnixMicro() }
