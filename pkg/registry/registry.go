// Package registry holds the six independent caches of spec.md §4.2 and the
// single canonical commit function every decoder, fetcher, and orphan
// drainer must funnel through. Grounded on the teacher's pkg/api.go
// Versioned/provider pattern, generalized to a single guarded writer.
package registry

import (
	"sync"

	"github.com/solmev/coreengine/pkg/core"
	"github.com/solmev/coreengine/pkg/lifecycle"
)

// Source names where an update originated, used by the containment rule.
type Source int

const (
	SourceGrpc Source = iota
	SourceRpc
)

// Kind tags which of the six caches an update targets.
type Kind int

const (
	KindPool Kind = iota
	KindVault
	KindTick
	KindBin
	KindAmmConfig
	KindGlobalConfig
)

// Update is the single tagged write request every caller constructs.
type Update struct {
	Kind         Kind
	Pool         core.Address // owning pool, used by the containment rule; zero for global-config
	PoolKey      core.Address // set when Kind == KindPool
	VaultKey     core.Address // set when Kind == KindVault
	TickKey      core.TickKey // set when Kind == KindTick
	BinKey       core.BinKey  // set when Kind == KindBin
	AmmConfigKey core.Address // set when Kind == KindAmmConfig
	GlobalKey    core.Address // set when Kind == KindGlobalConfig

	PoolValue    *core.Pool
	VaultValue   *core.Vault
	TickValue    *core.TickArrayState
	BinValue     *core.BinArrayState
	AmmConfigVal *core.AmmConfig
	GlobalValue  *core.GlobalConfig

	Slot         uint64
	WriteVersion uint64
	Source       Source
	DataLen      int
}

// Result reports what commit did.
type Result struct {
	Updated bool
	Reason  core.Kind // set when Updated is false and rejection has a taxonomy Kind
}

type entry[T any] struct {
	value        T
	slot         uint64
	writeVersion uint64
}

// Registry owns the six caches. All mutation happens inside Commit, which
// takes the single lock guarding every cache; readers take a short-lived
// snapshot copy and never hold the lock across an external call.
type Registry struct {
	mu sync.Mutex

	pools        map[core.Address]entry[*core.Pool]
	vaults       map[core.Address]entry[*core.Vault]
	ticks        map[core.TickKey]entry[*core.TickArrayState]
	bins         map[core.BinKey]entry[*core.BinArrayState]
	ammConfigs   map[core.Address]entry[*core.AmmConfig]
	globalConfig map[core.Address]entry[*core.GlobalConfig]

	lifecycles *lifecycle.Registry
}

// New builds an empty Registry bound to a lifecycle registry, since the
// containment rule needs to know each pool's current state.
func New(lc *lifecycle.Registry) *Registry {
	return &Registry{
		pools:        make(map[core.Address]entry[*core.Pool]),
		vaults:       make(map[core.Address]entry[*core.Vault]),
		ticks:        make(map[core.TickKey]entry[*core.TickArrayState]),
		bins:         make(map[core.BinKey]entry[*core.BinArrayState]),
		ammConfigs:   make(map[core.Address]entry[*core.AmmConfig]),
		globalConfig: make(map[core.Address]entry[*core.GlobalConfig]),
		lifecycles:   lc,
	}
}

// Commit is the only writer into the registry's six caches. Rules are
// checked in the order spec.md §4.2 lists them: source containment, then
// monotonic ordering, then apply.
func (r *Registry) Commit(u Update) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.Kind == KindTick || u.Kind == KindBin || u.Kind == KindAmmConfig || u.Kind == KindVault {
		state := r.lifecycles.StateOf(u.Pool)
		if state == core.StateTopologyFrozen || state == core.StateActive {
			if u.Source == SourceRpc {
				return Result{Reason: core.KindCommitRpcForbidden}
			}
			if !r.withinTopology(u) {
				return Result{Reason: core.KindCommitOutOfTopology}
			}
		}
	}

	switch u.Kind {
	case KindPool:
		return commitOne(r.pools, u.PoolKey, u.PoolValue, u.Slot, u.WriteVersion)
	case KindVault:
		return commitOne(r.vaults, u.VaultKey, u.VaultValue, u.Slot, u.WriteVersion)
	case KindTick:
		return commitOne(r.ticks, u.TickKey, u.TickValue, u.Slot, u.WriteVersion)
	case KindBin:
		return commitOne(r.bins, u.BinKey, u.BinValue, u.Slot, u.WriteVersion)
	case KindAmmConfig:
		return commitOne(r.ammConfigs, u.AmmConfigKey, u.AmmConfigVal, u.Slot, u.WriteVersion)
	case KindGlobalConfig:
		return commitOne(r.globalConfig, u.GlobalKey, u.GlobalValue, u.Slot, u.WriteVersion)
	default:
		return Result{Reason: core.KindDecodeMalformed}
	}
}

// withinTopology dispatches to the lifecycle registry's per-key-shape
// membership check, since vault/amm-config keys are addresses but
// tick/bin keys carry an extra index component.
func (r *Registry) withinTopology(u Update) bool {
	switch u.Kind {
	case KindVault:
		return r.lifecycles.TopologyHasVault(u.Pool, u.VaultKey)
	case KindAmmConfig:
		return r.lifecycles.TopologyHasAmmConfig(u.Pool, u.AmmConfigKey)
	case KindTick:
		return r.lifecycles.TopologyHasTick(u.Pool, u.TickKey)
	case KindBin:
		return r.lifecycles.TopologyHasBin(u.Pool, u.BinKey)
	default:
		return false
	}
}

func commitOne[K comparable, T any](m map[K]entry[T], key K, value T, slot, writeVersion uint64) Result {
	cur, ok := m[key]
	if ok && !isNewer(slot, writeVersion, cur.slot, cur.writeVersion) {
		return Result{Reason: core.KindCommitStale}
	}
	m[key] = entry[T]{value: value, slot: slot, writeVersion: writeVersion}
	return Result{Updated: true}
}

func isNewer(slot, writeVersion, curSlot, curWriteVersion uint64) bool {
	if slot != curSlot {
		return slot > curSlot
	}
	return writeVersion > curWriteVersion
}

// Pool returns the current cached pool, if any.
func (r *Registry) Pool(addr core.Address) (*core.Pool, uint64, uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.pools[addr]
	return e.value, e.slot, e.writeVersion, ok
}

// Vault returns the current cached vault, if any.
func (r *Registry) Vault(addr core.Address) (*core.Vault, uint64, uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.vaults[addr]
	return e.value, e.slot, e.writeVersion, ok
}

// TickArray returns the current cached tick array, if any.
func (r *Registry) TickArray(key core.TickKey) (*core.TickArrayState, uint64, uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.ticks[key]
	return e.value, e.slot, e.writeVersion, ok
}

// BinArray returns the current cached bin array, if any.
func (r *Registry) BinArray(key core.BinKey) (*core.BinArrayState, uint64, uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.bins[key]
	return e.value, e.slot, e.writeVersion, ok
}

// AmmConfig returns the current cached amm-config, if any.
func (r *Registry) AmmConfig(addr core.Address) (*core.AmmConfig, uint64, uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.ammConfigs[addr]
	return e.value, e.slot, e.writeVersion, ok
}

// GlobalConfig returns the current cached CP-Bonding global-config
// singleton, if any.
func (r *Registry) GlobalConfig(addr core.Address) (*core.GlobalConfig, uint64, uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.globalConfig[addr]
	return e.value, e.slot, e.writeVersion, ok
}
