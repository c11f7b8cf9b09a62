package core

// Venue tags the four AMM families this engine quotes, plus Raydium's
// separate CPMM program which is structurally a CP-AMM but a distinct
// on-chain deployment.
type Venue string

const (
	VenuePumpBonding  Venue = "pump_bonding"  // CP-Bonding (PumpSwap-like)
	VenueRaydiumAmm   Venue = "raydium_amm"   // CP-AMM (Raydium V4-like)
	VenueRaydiumCpmm  Venue = "raydium_cpmm"  // CP-AMM sibling, same family
	VenueRaydiumClmm  Venue = "raydium_clmm"  // CL-AMM
	VenueMeteoraDlmm  Venue = "meteora_dlmm"  // Bin-AMM
)

// LifecycleState is a pool's position in the FSM of spec.md §4.3.
type LifecycleState int

const (
	StateNone LifecycleState = iota
	StateDiscovered
	StateTopologyFrozen
	StateActive
	StateRefreshing
	StateEvicted
)

func (s LifecycleState) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateDiscovered:
		return "discovered"
	case StateTopologyFrozen:
		return "topology_frozen"
	case StateActive:
		return "active"
	case StateRefreshing:
		return "refreshing"
	case StateEvicted:
		return "evicted"
	default:
		return "unknown"
	}
}

// Versioned wraps any cached value with the ordering tuple invariant §3.3-1
// is defined over.
type Versioned[T any] struct {
	Value        T
	Slot         uint64
	WriteVersion uint64
}

// Newer reports whether (slot, writeVersion) is strictly greater than v's
// currently stored tuple, lexicographically.
func (v Versioned[T]) Newer(slot, writeVersion uint64) bool {
	if slot != v.Slot {
		return slot > v.Slot
	}
	return writeVersion > v.WriteVersion
}

// PumpBondingState holds PumpSwap-like bonding-curve pool fields.
type PumpBondingState struct {
	LpMint      Address
	Creator     Address
	CoinCreator Address
	LpSupply    uint64
}

// RaydiumAmmState holds Raydium V4-like CP-AMM fields.
type RaydiumAmmState struct {
	LpMint           Address
	AuthorityNonce   uint64
	Status           uint64
	OpenTime         uint64
	TradeFeeNumer    uint64
	TradeFeeDenom    uint64
	SwapFeeNumer     uint64
	SwapFeeDenom     uint64
	BaseNeedTakePnl  uint64
	QuoteNeedTakePnl uint64
	BaseDecimal      uint64
	QuoteDecimal     uint64
}

// RaydiumCpmmState holds the sibling Raydium CPMM program's fields.
type RaydiumCpmmState struct {
	AmmConfig      Address
	ObservationKey Address
	Status         uint8
	OpenTime       uint64
	Mint0Decimals  uint8
	Mint1Decimals  uint8
}

// RaydiumClmmState holds CL-AMM fields.
type RaydiumClmmState struct {
	AmmConfig    Address
	TickSpacing  uint16
	TickCurrent  int32
	Liquidity    [16]byte // uint128 little-endian, avoids importing uint128 into core
	SqrtPriceX64 [16]byte
	TickArrays   [2]Address // pointers to the two tick arrays bracketing TickCurrent at decode time
	FeeRate      uint32
}

// BinAmmState holds Meteora DLMM-like fields.
type BinAmmState struct {
	ActiveID              int32
	BinStep               uint16
	BaseFactor             uint16
	ProtocolShare          uint16
	VolatilityAccumulator  uint32
	VolatilityReference    uint32
	BinArrayBitmap         [16]uint64
	Oracle                 Address
}

// Pool is the tagged variant over the four (five, with the CPMM sibling)
// venue families described in spec.md §3.2.
type Pool struct {
	Address   Address
	Venue     Venue
	BaseMint  Address
	QuoteMint Address
	BaseVault Address
	QuoteVault Address

	PumpBonding *PumpBondingState `json:",omitempty"`
	RaydiumAmm  *RaydiumAmmState  `json:",omitempty"`
	RaydiumCpmm *RaydiumCpmmState `json:",omitempty"`
	RaydiumClmm *RaydiumClmmState `json:",omitempty"`
	BinAmm      *BinAmmState      `json:",omitempty"`
}

// Vault is an SPL-token-like account storing an amount at a fixed offset.
type Vault struct {
	Address Address
	Amount  uint64
}

// TickKey addresses a CL-AMM tick array by (pool, start-tick-index).
type TickKey struct {
	Pool           Address
	StartTickIndex int32
}

// BinKey addresses a Bin-AMM bin array by (pool, array-index).
type BinKey struct {
	Pool       Address
	ArrayIndex int32
}

// TickNode is a single initialized tick slot inside a TickArrayState.
type TickNode struct {
	Tick           int32
	LiquidityNet   int64
	LiquidityGross [16]byte
}

// TickArrayState holds a CL-AMM tick array's 60 tick slots (TickArraySize),
// grounded on the teacher's pkg/pool/raydium/clmm_tickerarray.go TickArray.
type TickArrayState struct {
	Pool                 Address
	StartTickIndex       int32
	Ticks                []TickNode
	InitializedTickCount uint8
}

// BinNode is a single bin slot inside a BinArrayState.
type BinNode struct {
	BinID      int32
	AmountX    [16]byte
	AmountY    [16]byte
	PriceX64   [16]byte
}

// BinArrayState holds a Bin-AMM bin array's 70 bins (BinArraySize), grounded
// on the teacher's pkg/pool/meteora/bin_array.go BinArray.
type BinArrayState struct {
	Pool       Address
	ArrayIndex int32
	Bins       []BinNode
}

// AmmConfig is the CL-AMM fee-tier table, shared by many pools.
type AmmConfig struct {
	Address          Address
	TradeFeeRate     uint32
	ProtocolFeeRate  uint32
	TickSpacing      uint16
}

// GlobalConfig is the CP-Bonding program-level singleton.
type GlobalConfig struct {
	Address               Address
	ProtocolFeeRecipients []Address
}

// Topology is the immutable set of auxiliary accounts a pool depends on,
// frozen at discovery and replaced wholesale on refresh (spec.md §3.3-3).
type Topology struct {
	Vaults     []Address
	TickArrays []TickKey // CL-AMM only
	BinArrays  []BinKey  // Bin-AMM only
	AmmConfig  *Address  // CL-AMM and CPMM only
}

// Equal reports whether two topologies name the same key set, order
// independent — used by tests asserting immutability between freezes.
func (t Topology) Equal(o Topology) bool {
	if len(t.Vaults) != len(o.Vaults) || len(t.TickArrays) != len(o.TickArrays) ||
		len(t.BinArrays) != len(o.BinArrays) {
		return false
	}
	toSet := func(addrs []Address) map[Address]struct{} {
		m := make(map[Address]struct{}, len(addrs))
		for _, a := range addrs {
			m[a] = struct{}{}
		}
		return m
	}
	a, b := toSet(t.Vaults), toSet(o.Vaults)
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	tickSet := func(ks []TickKey) map[TickKey]struct{} {
		m := make(map[TickKey]struct{}, len(ks))
		for _, k := range ks {
			m[k] = struct{}{}
		}
		return m
	}
	ta, tb := tickSet(t.TickArrays), tickSet(o.TickArrays)
	for k := range ta {
		if _, ok := tb[k]; !ok {
			return false
		}
	}
	binSet := func(ks []BinKey) map[BinKey]struct{} {
		m := make(map[BinKey]struct{}, len(ks))
		for _, k := range ks {
			m[k] = struct{}{}
		}
		return m
	}
	ba, bb := binSet(t.BinArrays), binSet(o.BinArrays)
	for k := range ba {
		if _, ok := bb[k]; !ok {
			return false
		}
	}
	if (t.AmmConfig == nil) != (o.AmmConfig == nil) {
		return false
	}
	if t.AmmConfig != nil && *t.AmmConfig != *o.AmmConfig {
		return false
	}
	return true
}

// LifecycleRecord is the pool lifecycle record of spec.md §3.2.
type LifecycleRecord struct {
	State         LifecycleState
	DiscoveredSlot uint64
	FrozenSlot     uint64
	Topology       Topology
	LastRefresh    uint64
}
