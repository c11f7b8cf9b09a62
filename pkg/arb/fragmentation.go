// Package arb implements the fragmentation index and arbitrage detector
// of spec.md §4.7, grounded on the teacher's pkg/router/simple_router.go
// pattern of comparing quotes across a pool set, generalized from a single
// best-quote selection into cross-venue spread detection.
package arb

import "github.com/solmev/coreengine/pkg/core"

// MintPair is a canonically ordered token-mint pair key.
type MintPair struct {
	A, B core.Address
}

// canonicalPair orders (m1, m2) so the same pair always hashes the same
// way regardless of call order.
func canonicalPair(m1, m2 core.Address) MintPair {
	for i := 0; i < 32; i++ {
		if m1[i] != m2[i] {
			if m1[i] < m2[i] {
				return MintPair{m1, m2}
			}
			return MintPair{m2, m1}
		}
	}
	return MintPair{m1, m2}
}

// PoolRef identifies one ACTIVE pool's slot within the fragmentation index.
type PoolRef struct {
	Address core.Address
	Venue   core.Venue
}

// Index maps a (mint_a, mint_b) pair to the ACTIVE pools trading it,
// partitioned by venue. A pool appears here iff its venue is tracked, its
// quote side is recognized, and its lifecycle state is ACTIVE (invariant
// §3.3-7); callers are responsible for calling Upsert/Evict in lockstep
// with lifecycle transitions.
type Index struct {
	byPair map[MintPair]map[core.Venue]PoolRef
}

// NewIndex builds an empty fragmentation Index.
func NewIndex() *Index {
	return &Index{byPair: make(map[MintPair]map[core.Venue]PoolRef)}
}

// Upsert records pool as the ACTIVE pool for its venue under its mint
// pair, provided one side is a recognized quote mint. A no-op otherwise.
func (x *Index) Upsert(pool *core.Pool) {
	if !core.IsRecognizedQuote(pool.BaseMint) && !core.IsRecognizedQuote(pool.QuoteMint) {
		return
	}
	pair := canonicalPair(pool.BaseMint, pool.QuoteMint)
	venues, ok := x.byPair[pair]
	if !ok {
		venues = make(map[core.Venue]PoolRef)
		x.byPair[pair] = venues
	}
	venues[pool.Venue] = PoolRef{Address: pool.Address, Venue: pool.Venue}
}

// Evict removes pool from its mint pair's venue slot, e.g. on eviction or
// loss of ACTIVE status.
func (x *Index) Evict(pool *core.Pool) {
	pair := canonicalPair(pool.BaseMint, pool.QuoteMint)
	venues, ok := x.byPair[pair]
	if !ok {
		return
	}
	if venues[pool.Venue].Address == pool.Address {
		delete(venues, pool.Venue)
	}
	if len(venues) == 0 {
		delete(x.byPair, pair)
	}
}

// Fragmented reports the set of venue pools currently tracked for a mint
// pair, and whether that set has 2 or more venues (fragmentation).
func (x *Index) Fragmented(m1, m2 core.Address) (map[core.Venue]PoolRef, bool) {
	pair := canonicalPair(m1, m2)
	venues, ok := x.byPair[pair]
	if !ok {
		return nil, false
	}
	return venues, len(venues) >= 2
}
