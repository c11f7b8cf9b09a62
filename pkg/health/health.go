// Package health implements the passive health monitor of spec.md §4.9: a
// single check() collapsing orphan-buffer size, cache cardinality parity,
// and ALT miss-rate into a {healthy, reasons} verdict. Grounded on the
// teacher's pkg/sol rate limiter pattern of a small struct wrapping
// threshold fields, generalized from "gate one RPC path" into "summarize
// three independent signals".
package health

import (
	"fmt"

	"github.com/solmev/coreengine/pkg/altcache"
	"github.com/solmev/coreengine/pkg/core"
	"github.com/solmev/coreengine/pkg/lifecycle"
	"github.com/solmev/coreengine/pkg/registry"
)

// Thresholds configures when each signal is considered unhealthy.
type Thresholds struct {
	MaxOrphanBufferSize int
	MaxAltMissRate      float64
}

// DefaultThresholds mirrors reasonable operating values; the spec leaves
// the exact cutoffs to the deployment, naming only the three signals.
var DefaultThresholds = Thresholds{
	MaxOrphanBufferSize: 10_000,
	MaxAltMissRate:      0.2,
}

// Monitor is the passive collaborator check() is a method on. It holds no
// state of its own beyond the thresholds; every signal it reports on is
// read from its collaborators at call time.
type Monitor struct {
	registry   *registry.Registry
	lifecycles *lifecycle.Registry
	orphans    *lifecycle.OrphanBuffer
	alts       *altcache.Cache
	thresholds Thresholds
}

// New builds a Monitor over the engine's shared collaborators.
func New(reg *registry.Registry, lc *lifecycle.Registry, orphans *lifecycle.OrphanBuffer, alts *altcache.Cache, thresholds Thresholds) *Monitor {
	return &Monitor{registry: reg, lifecycles: lc, orphans: orphans, alts: alts, thresholds: thresholds}
}

// Result is check()'s return value.
type Result struct {
	Healthy bool
	Reasons []string
}

// Check evaluates every signal spec.md §4.9 names. A pool missing any
// cached dependency is reported by address, since activation completeness
// (invariant §8-2) gives the operator something concrete to chase down
// rather than a bare "cache parity failed".
func (m *Monitor) Check() Result {
	var reasons []string

	if n := m.orphans.Len(); n > m.thresholds.MaxOrphanBufferSize {
		reasons = append(reasons, fmt.Sprintf("orphan buffer holds %d entries (max %d)", n, m.thresholds.MaxOrphanBufferSize))
	}

	for _, pool := range m.lifecycles.ActivePools() {
		if missing := m.missingDependencies(pool); len(missing) > 0 {
			reasons = append(reasons, fmt.Sprintf("pool %s active but missing %d cached dependencies", pool, len(missing)))
		}
	}

	if rate := m.alts.MissRate(); rate > m.thresholds.MaxAltMissRate {
		reasons = append(reasons, fmt.Sprintf("alt miss-rate %.2f exceeds %.2f", rate, m.thresholds.MaxAltMissRate))
	}

	return Result{Healthy: len(reasons) == 0, Reasons: reasons}
}

// missingDependencies lists one entry per frozen topology key of pool that
// has no cached tuple at all (vaults and the amm-config by their own
// address, tick and bin arrays by their owning pool's address) — the
// cache-cardinality-parity signal of spec.md
// §4.9 ("every ACTIVE pool has its vaults cached; every frozen tick/bin
// address resolves").
func (m *Monitor) missingDependencies(pool core.Address) []core.Address {
	topo, ok := m.lifecycles.Topology(pool)
	if !ok {
		return nil
	}
	var missing []core.Address
	for _, v := range topo.Vaults {
		if _, _, _, ok := m.registry.Vault(v); !ok {
			missing = append(missing, v)
		}
	}
	if topo.AmmConfig != nil {
		if _, _, _, ok := m.registry.AmmConfig(*topo.AmmConfig); !ok {
			missing = append(missing, *topo.AmmConfig)
		}
	}
	for _, tk := range topo.TickArrays {
		if _, _, _, ok := m.registry.TickArray(tk); !ok {
			missing = append(missing, tk.Pool)
		}
	}
	for _, bk := range topo.BinArrays {
		if _, _, _, ok := m.registry.BinArray(bk); !ok {
			missing = append(missing, bk.Pool)
		}
	}
	return missing
}
