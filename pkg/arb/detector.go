package arb

import (
	"time"

	cosmath "cosmossdk.io/math"

	"github.com/solmev/coreengine/pkg/core"
	"github.com/solmev/coreengine/pkg/lifecycle"
	"github.com/solmev/coreengine/pkg/registry"
)

// Candidate is a detected cross-venue arbitrage opportunity: buy on Low,
// sell on High, along the mint pair both pools share.
type Candidate struct {
	MintA, MintB core.Address
	Low, High    PoolRef
	GrossSpread  cosmath.LegacyDec // (high - low) / low
	NetSpreadBps int64             // gross spread minus both venues' fees, in bps
}

// Detector evaluates the fragmentation Index against cached registry state,
// reporting candidates whose net spread clears a minimum threshold. The
// sequential per-pool quoting loop is grounded on the teacher's
// pkg/router/simple_router.go GetBestPool, generalized from "best single
// quote" to "every pairwise spread across venues".
type Detector struct {
	index      *Index
	registry   *registry.Registry
	lifecycles *lifecycle.Registry

	minNetSpreadBps int64
	staleAfter      time.Duration
	debounceWindow  time.Duration

	lastSeen map[pairVenueKey]time.Time
}

type pairVenueKey struct {
	pair        MintPair
	low, high   core.Venue
}

// NewDetector builds a Detector over an already-populated Index.
func NewDetector(index *Index, reg *registry.Registry, lc *lifecycle.Registry, minNetSpreadBps int64, staleAfter, debounceWindow time.Duration) *Detector {
	return &Detector{
		index:           index,
		registry:        reg,
		lifecycles:      lc,
		minNetSpreadBps: minNetSpreadBps,
		staleAfter:      staleAfter,
		debounceWindow:  debounceWindow,
		lastSeen:        make(map[pairVenueKey]time.Time),
	}
}

// Scan evaluates every fragmented mint pair currently ACTIVE in the
// lifecycle registry and returns the candidates clearing the minimum net
// spread, debounced per (pair, low venue, high venue) within the
// configured window.
func (d *Detector) Scan(now time.Time, currentSlot uint64) []Candidate {
	var out []Candidate
	for pair, venues := range d.index.byPair {
		if len(venues) < 2 {
			continue
		}
		quotes := make(map[core.Venue]MidPrice, len(venues))
		for venue, ref := range venues {
			if d.lifecycles.StateOf(ref.Address) != core.StateActive {
				continue
			}
			pool, slot, _, ok := d.registry.Pool(ref.Address)
			if !ok || pool == nil {
				continue
			}
			if d.staleAfter > 0 && currentSlot > slot && time.Duration(currentSlot-slot)*400*time.Millisecond > d.staleAfter {
				continue
			}
			mid, err := Quote(d.registry, pool)
			if err != nil {
				continue
			}
			quotes[venue] = mid
		}
		out = append(out, d.pairwise(pair, venues, quotes, now)...)
	}
	return out
}

// pairwise compares every venue pair sharing a mint pair, grounded on the
// teacher's GetBestPool comparison loop but keeping every crossing pair
// instead of discarding all but the single best quote.
func (d *Detector) pairwise(pair MintPair, venues map[core.Venue]PoolRef, quotes map[core.Venue]MidPrice, now time.Time) []Candidate {
	var out []Candidate
	seen := make([]core.Venue, 0, len(quotes))
	for v := range quotes {
		seen = append(seen, v)
	}
	for i := 0; i < len(seen); i++ {
		for j := i + 1; j < len(seen); j++ {
			va, vb := seen[i], seen[j]
			qa, qb := quotes[va], quotes[vb]

			low, high := va, vb
			lowQuote, highQuote := qa, qb
			if qa.Price.GT(qb.Price) {
				low, high = vb, va
				lowQuote, highQuote = qb, qa
			}
			if lowQuote.Price.IsZero() {
				continue
			}
			gross := highQuote.Price.Sub(lowQuote.Price).Quo(lowQuote.Price)
			grossBps := gross.MulInt64(10000).TruncateInt64()
			netBps := grossBps - int64(lowQuote.FeeBps) - int64(highQuote.FeeBps)
			if netBps < d.minNetSpreadBps {
				continue
			}

			key := pairVenueKey{pair: pair, low: low, high: high}
			if last, ok := d.lastSeen[key]; ok && now.Sub(last) < d.debounceWindow {
				continue
			}
			d.lastSeen[key] = now

			out = append(out, Candidate{
				MintA:        pair.A,
				MintB:        pair.B,
				Low:          venues[low],
				High:         venues[high],
				GrossSpread:  gross,
				NetSpreadBps: netBps,
			})
		}
	}
	return out
}
