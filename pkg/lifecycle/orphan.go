package lifecycle

import (
	"time"

	"github.com/solmev/coreengine/pkg/core"
)

// orphanKind distinguishes a tick-array orphan from a bin-array orphan,
// since both are keyed on owning_pool_address but carry different key
// shapes (spec.md §4.4 "Orphan buffer").
type orphanKind int

const (
	orphanTick orphanKind = iota
	orphanBin
)

type orphanEntry struct {
	kind         orphanKind
	tickKey      core.TickKey
	tickValue    *core.TickArrayState
	binKey       core.BinKey
	binValue     *core.BinArrayState
	slot         uint64
	writeVersion uint64
	expiresAt    time.Time
}

// OrphanBuffer holds tick/bin updates that arrived before their owning
// pool was discovered, bounded by a TTL per entry and a max entry count
// to bound memory under a pathological stream.
type OrphanBuffer struct {
	ttl      time.Duration
	maxTotal int
	clock    Clock

	byPool map[core.Address][]orphanEntry
}

// NewOrphanBuffer builds an OrphanBuffer with the given TTL and a cap on
// total buffered entries across all pools.
func NewOrphanBuffer(ttl time.Duration, maxTotal int, clock Clock) *OrphanBuffer {
	if clock == nil {
		clock = realClock{}
	}
	return &OrphanBuffer{
		ttl:      ttl,
		maxTotal: maxTotal,
		clock:    clock,
		byPool:   make(map[core.Address][]orphanEntry),
	}
}

func (b *OrphanBuffer) total() int {
	n := 0
	for _, es := range b.byPool {
		n += len(es)
	}
	return n
}

// Len reports the current number of buffered orphan entries across all
// pools, after evicting expired entries. The health monitor polls this to
// detect a topology oracle that isn't keeping up with the stream.
func (b *OrphanBuffer) Len() int {
	b.evictExpired()
	return b.total()
}

// AddTick buffers a tick-array update for a pool not yet discovered. If
// the buffer is at capacity, the oldest entry across all pools is dropped
// to make room (a bounded buffer, not an unbounded one).
func (b *OrphanBuffer) AddTick(pool core.Address, key core.TickKey, value *core.TickArrayState, slot, writeVersion uint64) {
	b.evictExpired()
	if b.maxTotal > 0 && b.total() >= b.maxTotal {
		b.dropOldest()
	}
	b.byPool[pool] = append(b.byPool[pool], orphanEntry{
		kind: orphanTick, tickKey: key, tickValue: value,
		slot: slot, writeVersion: writeVersion,
		expiresAt: b.clock.Now().Add(b.ttl),
	})
}

// AddBin buffers a bin-array update for a pool not yet discovered.
func (b *OrphanBuffer) AddBin(pool core.Address, key core.BinKey, value *core.BinArrayState, slot, writeVersion uint64) {
	b.evictExpired()
	if b.maxTotal > 0 && b.total() >= b.maxTotal {
		b.dropOldest()
	}
	b.byPool[pool] = append(b.byPool[pool], orphanEntry{
		kind: orphanBin, binKey: key, binValue: value,
		slot: slot, writeVersion: writeVersion,
		expiresAt: b.clock.Now().Add(b.ttl),
	})
}

// Drain removes and returns every unexpired orphan entry buffered for
// pool, for the caller to commit before RPC bootstrap starts.
func (b *OrphanBuffer) Drain(pool core.Address) []orphanEntry {
	b.evictExpired()
	es := b.byPool[pool]
	delete(b.byPool, pool)
	return es
}

// TickKey, Value, and Slot/WriteVersion accessors let registry callers
// commit an orphan entry without importing this package's internals.
func (e orphanEntry) IsTick() bool                         { return e.kind == orphanTick }
func (e orphanEntry) TickKey() core.TickKey                { return e.tickKey }
func (e orphanEntry) TickValue() *core.TickArrayState      { return e.tickValue }
func (e orphanEntry) BinKey() core.BinKey                  { return e.binKey }
func (e orphanEntry) BinValue() *core.BinArrayState        { return e.binValue }
func (e orphanEntry) SlotWriteVersion() (uint64, uint64)   { return e.slot, e.writeVersion }

func (b *OrphanBuffer) evictExpired() {
	now := b.clock.Now()
	for pool, es := range b.byPool {
		kept := es[:0]
		for _, e := range es {
			if e.expiresAt.After(now) {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(b.byPool, pool)
		} else {
			b.byPool[pool] = kept
		}
	}
}

func (b *OrphanBuffer) dropOldest() {
	var oldestPool core.Address
	var oldestIdx = -1
	var oldestTime time.Time
	for pool, es := range b.byPool {
		for i, e := range es {
			if oldestIdx == -1 || e.expiresAt.Before(oldestTime) {
				oldestPool, oldestIdx, oldestTime = pool, i, e.expiresAt
			}
		}
	}
	if oldestIdx == -1 {
		return
	}
	es := b.byPool[oldestPool]
	b.byPool[oldestPool] = append(es[:oldestIdx], es[oldestIdx+1:]...)
}
