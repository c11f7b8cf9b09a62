// Package lifecycle implements the per-pool state machine of spec.md §4.3:
// NONE -> DISCOVERED -> TOPOLOGY_FROZEN -> ACTIVE <-> REFRESHING -> evicted.
// Grounded on the teacher's pkg/api.go Versioned wrapper pattern, expanded
// into an explicit FSM with a startup-slot convergence gate.
package lifecycle

import (
	"sync"
	"time"

	"github.com/solmev/coreengine/pkg/core"
)

// Clock abstracts wall-clock time so refresh-interval gating is testable.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Record is the lifecycle bookkeeping kept per pool, in addition to
// core.LifecycleRecord's state/topology fields.
type Record struct {
	core.LifecycleRecord
	LastRefreshAt time.Time
}

// Registry owns every pool's lifecycle record plus the startup-slot gate.
type Registry struct {
	mu sync.Mutex

	startSlot    uint64
	startSlotSet bool

	records map[core.Address]*Record
	clock   Clock

	// vaultOwners is a reverse index from a vault address to the pool(s)
	// whose frozen topology names it, populated in Freeze and cleaned up
	// in Evict. Vault/tick/bin updates arrive with no owning-pool hint of
	// their own (aside from tick/bin's own embedded pool id), so this is
	// what lets a bare vault commit retrigger TryActivate on every
	// dependency arrival, per spec.md §4.3 invariant 5.
	vaultOwners map[core.Address][]core.Address
}

// New builds an empty lifecycle Registry.
func New() *Registry {
	return &Registry{
		records:     make(map[core.Address]*Record),
		clock:       realClock{},
		vaultOwners: make(map[core.Address][]core.Address),
	}
}

// NewWithClock builds a Registry with an injected Clock, for tests that
// need to control refresh-interval gating.
func NewWithClock(c Clock) *Registry {
	return &Registry{
		records:     make(map[core.Address]*Record),
		clock:       c,
		vaultOwners: make(map[core.Address][]core.Address),
	}
}

// ArmStartSlot records the convergence gate's start_slot from the first
// accepted stream message. Each call replaces the previous value, matching
// the re-arm-on-reconnect behavior of spec.md §6 (the caller re-invokes
// this after a stream reconnect to re-arm the gate).
func (r *Registry) ArmStartSlot(slot uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startSlot = slot
	r.startSlotSet = true
}

// StateOf reports a pool's current lifecycle state, core.StateNone if
// unknown.
func (r *Registry) StateOf(pool core.Address) core.LifecycleState {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[pool]
	if !ok {
		return core.StateNone
	}
	return rec.State
}

// Discover transitions NONE -> DISCOVERED on the first accepted pool
// write. Re-invoking on an already-known pool is a no-op (idempotent
// discovery, spec.md §4.3).
func (r *Registry) Discover(pool core.Address, slot uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[pool]; ok {
		return false
	}
	r.records[pool] = &Record{
		LifecycleRecord: core.LifecycleRecord{
			State:          core.StateDiscovered,
			DiscoveredSlot: slot,
		},
	}
	return true
}

// Freeze transitions DISCOVERED or REFRESHING into TOPOLOGY_FROZEN,
// recording the new topology and frozen_slot. Called by the topology
// oracle once every key in the derived set has been committed.
func (r *Registry) Freeze(pool core.Address, topo core.Topology, frozenSlot uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[pool]
	if !ok || (rec.State != core.StateDiscovered && rec.State != core.StateRefreshing) {
		return false
	}
	r.unindexVaults(pool, rec.Topology)
	rec.Topology = topo
	rec.FrozenSlot = frozenSlot
	rec.State = core.StateTopologyFrozen
	r.indexVaults(pool, topo)
	return true
}

// indexVaults records pool as a dependent of every vault in topo, for
// PoolsForVault's reverse lookup.
func (r *Registry) indexVaults(pool core.Address, topo core.Topology) {
	for _, v := range topo.Vaults {
		r.vaultOwners[v] = append(r.vaultOwners[v], pool)
	}
}

// unindexVaults removes pool from every vault's owner list in topo, called
// before a topology is replaced wholesale on refresh.
func (r *Registry) unindexVaults(pool core.Address, topo core.Topology) {
	for _, v := range topo.Vaults {
		owners := r.vaultOwners[v]
		for i, p := range owners {
			if p == pool {
				r.vaultOwners[v] = append(owners[:i], owners[i+1:]...)
				break
			}
		}
		if len(r.vaultOwners[v]) == 0 {
			delete(r.vaultOwners, v)
		}
	}
}

// PoolsForVault returns every pool whose currently frozen topology names
// addr as a vault dependency, for retriggering activation attempts on a
// bare vault commit (spec.md §4.3 invariant 5: "attempt on every
// dependency arrival").
func (r *Registry) PoolsForVault(addr core.Address) []core.Address {
	r.mu.Lock()
	defer r.mu.Unlock()
	owners := r.vaultOwners[addr]
	out := make([]core.Address, len(owners))
	copy(out, owners)
	return out
}

// TryActivate attempts TOPOLOGY_FROZEN -> ACTIVE (or REFRESHING -> ACTIVE
// after a fresh freeze) once every address in the frozen topology has a
// stored tuple at slot >= frozen_slot, and frozen_slot >= start_slot (the
// convergence gate). Callers invoke this on every dependency arrival.
func (r *Registry) TryActivate(pool core.Address, dependencySlot func(core.Address) (uint64, bool), tickSlot func(core.TickKey) (uint64, bool), binSlot func(core.BinKey) (uint64, bool)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[pool]
	if !ok || rec.State != core.StateTopologyFrozen {
		return false
	}
	if !r.startSlotSet || rec.FrozenSlot < r.startSlot {
		return false
	}
	for _, addr := range rec.Topology.Vaults {
		slot, ok := dependencySlot(addr)
		if !ok || slot < rec.FrozenSlot {
			return false
		}
	}
	if rec.Topology.AmmConfig != nil {
		slot, ok := dependencySlot(*rec.Topology.AmmConfig)
		if !ok || slot < rec.FrozenSlot {
			return false
		}
	}
	for _, tk := range rec.Topology.TickArrays {
		slot, ok := tickSlot(tk)
		if !ok || slot < rec.FrozenSlot {
			return false
		}
	}
	for _, bk := range rec.Topology.BinArrays {
		slot, ok := binSlot(bk)
		if !ok || slot < rec.FrozenSlot {
			return false
		}
	}

	rec.State = core.StateActive
	rec.LastRefresh = rec.FrozenSlot
	return true
}

// BeginRefresh transitions ACTIVE -> REFRESHING, subject to a minimum
// interval since the last refresh. Returns false if the pool is not
// ACTIVE or the interval has not elapsed.
func (r *Registry) BeginRefresh(pool core.Address, minInterval time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[pool]
	if !ok || rec.State != core.StateActive {
		return false
	}
	if !rec.LastRefreshAt.IsZero() && r.clock.Now().Sub(rec.LastRefreshAt) < minInterval {
		return false
	}
	rec.State = core.StateRefreshing
	rec.LastRefreshAt = r.clock.Now()
	return true
}

// Evict drops a pool's lifecycle record entirely, per the external
// eviction signal of spec.md §4.3 (policy itself is out of scope here).
func (r *Registry) Evict(pool core.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[pool]; ok {
		r.unindexVaults(pool, rec.Topology)
	}
	delete(r.records, pool)
}

// ActivePools returns every pool address currently in state ACTIVE, for the
// health monitor's cache-cardinality-parity check.
func (r *Registry) ActivePools() []core.Address {
	r.mu.Lock()
	defer r.mu.Unlock()
	pools := make([]core.Address, 0, len(r.records))
	for addr, rec := range r.records {
		if rec.State == core.StateActive {
			pools = append(pools, addr)
		}
	}
	return pools
}

// Topology returns a copy of a pool's currently frozen topology.
func (r *Registry) Topology(pool core.Address) (core.Topology, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[pool]
	if !ok {
		return core.Topology{}, false
	}
	return rec.Topology, true
}

// TopologyHasVault reports whether addr is in pool's frozen topology.
func (r *Registry) TopologyHasVault(pool, addr core.Address) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[pool]
	if !ok {
		return false
	}
	for _, v := range rec.Topology.Vaults {
		if v == addr {
			return true
		}
	}
	return false
}

// TopologyHasAmmConfig reports whether addr is pool's frozen amm-config.
func (r *Registry) TopologyHasAmmConfig(pool, addr core.Address) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[pool]
	if !ok || rec.Topology.AmmConfig == nil {
		return false
	}
	return *rec.Topology.AmmConfig == addr
}

// TopologyHasTick reports whether key is in pool's frozen tick-array set.
func (r *Registry) TopologyHasTick(pool core.Address, key core.TickKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[pool]
	if !ok {
		return false
	}
	for _, tk := range rec.Topology.TickArrays {
		if tk == key {
			return true
		}
	}
	return false
}

// TopologyHasBin reports whether key is in pool's frozen bin-array set.
func (r *Registry) TopologyHasBin(pool core.Address, key core.BinKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[pool]
	if !ok {
		return false
	}
	for _, bk := range rec.Topology.BinArrays {
		if bk == key {
			return true
		}
	}
	return false
}
