package core

// Program addresses the ingest demux filters on, grounded on the same
// mainnet deployments the teacher's pkg/pool/* packages target.
var (
	ProgramRaydiumAmm   = mustAddr("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	ProgramRaydiumCpmm  = mustAddr("CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C")
	ProgramRaydiumClmm  = mustAddr("CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK")
	ProgramMeteoraDlmm  = mustAddr("LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo")
	ProgramPumpBonding  = mustAddr("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")
	ProgramSplToken     = mustAddr("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
)

func mustAddr(s string) Address {
	a, err := AddressFromBase58(s)
	if err != nil {
		panic(err)
	}
	return a
}

// VenueForProgram maps an owning program address to its venue, or ok=false
// if the program is not one of the five DEXes this engine quotes.
func VenueForProgram(program Address) (Venue, bool) {
	switch program {
	case ProgramRaydiumAmm:
		return VenueRaydiumAmm, true
	case ProgramRaydiumCpmm:
		return VenueRaydiumCpmm, true
	case ProgramRaydiumClmm:
		return VenueRaydiumClmm, true
	case ProgramMeteoraDlmm:
		return VenueMeteoraDlmm, true
	case ProgramPumpBonding:
		return VenuePumpBonding, true
	default:
		return "", false
	}
}
