package core

// Recognized quote mints, per spec.md's single predicate
// is_recognized_quote(mint) in {wrapped_native, usdc, usdt}. Fragmentation
// tracking consults these, and only these, rather than switching between
// several ad hoc recognitions.
var (
	MintWrappedSOL = mustAddr("So11111111111111111111111111111111111111112")
	MintUSDC       = mustAddr("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	MintUSDT       = mustAddr("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
)

// IsRecognizedQuote is the single predicate spec.md Open Questions asks for
// in place of the several ad hoc wrapped/native switches in the source.
func IsRecognizedQuote(mint Address) bool {
	return mint == MintWrappedSOL || mint == MintUSDC || mint == MintUSDT
}

// ProgramAssociatedToken is the associated-token-account program, used by
// the bundle builder's idempotent ATA-creation step.
var ProgramAssociatedToken = mustAddr("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")

// ProgramComputeBudget is the native compute-budget program the bundle
// builder's first two instructions target.
var ProgramComputeBudget = mustAddr("ComputeBudget111111111111111111111111111111")

// ProgramSystem is the native system program, used for the validator-tip
// lamport transfer.
var ProgramSystem = mustAddr("11111111111111111111111111111111")

// PumpBondingProtocolFeeRecipient and PumpBondingProtocolFeeRecipientATA are
// the CP-Bonding venue's protocol-fee accounts, consulted by the bundle
// builder's minimal 15-account path (spec.md §4.8). The teacher's
// pkg/pool/pump/amm.go references these by name but never declares them as
// package constants (they are effectively hardcoded inline in its
// instruction builder) — declared here as named core constants instead.
var (
	PumpBondingProtocolFeeRecipient    = mustAddr("62qc2CNXwrYqQScmEdiZFFAnJR262PYXrJeNoNxzCie2")
	PumpBondingProtocolFeeRecipientATA = mustAddr("94qWNrtmfn42h3ZjUZwWvK1MEo9uVmmrBPd2hpNjYDjb")
)

// PumpBondingGlobalConfig is the CP-Bonding program's single global-config
// account, fetched and cached once as a program-wide dependency; no
// CP-Bonding pool's frozen topology names it.
var PumpBondingGlobalConfig = mustAddr("ADyA8hdefvWN2dabPHJHLkQBqEuCgYoiwuDmeQMHxuEL")

// ValidatorTipAccounts is the fixed set of eight tip accounts spec.md §6
// names; the bundle builder selects one at random per bundle.
var ValidatorTipAccounts = [8]Address{
	mustAddr("96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5"),
	mustAddr("HFqU5x63VTqvQss8hp11i4wVV8bD44PvwucfZ2bU7gRe"),
	mustAddr("Cw8CFyM9FkoMi7K7Crf6HNQqf4uEMzpKw6QNghXLvLkY"),
	mustAddr("ADaUMid9yfUytqMBgopwjb2DTLSokTSzL1zt6iGPaS49"),
	mustAddr("DfXygSm4jCyNCybVYYK6DwvWqjKee8pbDmJGcLWNDXjh"),
	mustAddr("ADuUkR4vqLUMWXxW9gh6D6L8pMSawimctcNZ5pGwDcEt"),
	mustAddr("DttWaMuVvTiduZRnguLF7jNxTgiMBZ1hyAumKUiL2KRL"),
	mustAddr("3AVi9Tg9Uo68tJfuvoKvqKNWKkC5wPdSSdeBnizKZ6jT"),
}

// ComputeUnitEstimate is the per-venue compute-unit ceiling spec.md §6
// names for a two-swap backrun, keyed by the venue the pool being bought
// from belongs to (the dominant cost of the bundle).
var ComputeUnitEstimate = map[Venue]uint32{
	VenuePumpBonding: 120_000,
	VenueRaydiumAmm:  200_000,
	VenueRaydiumCpmm: 200_000,
	VenueRaydiumClmm: 400_000,
	VenueMeteoraDlmm: 300_000,
}
