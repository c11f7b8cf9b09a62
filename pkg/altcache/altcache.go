// Package altcache implements the address-lookup-table cache of spec.md
// §4.6: synchronous get, coalesced async fetch, hotlist persistence, and a
// bootstrap warm mode. Grounded on the teacher's pkg/sol client pattern
// (a thin wrapper with its own rate-limited fetch path) generalized into a
// cache with coalesced singleflight semantics.
package altcache

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/solmev/coreengine/pkg/core"
)

// Entry is a resolved ALT: the ordered address list plus a version
// counter. Entries are immutable once cached (spec.md invariant §3.3-6).
type Entry struct {
	Addresses []core.Address
	Version   uint64
}

// Fetcher is the RPC collaborator that resolves one ALT address into its
// account list. A request-response implementation issues an explicit RPC;
// a stream-subscribed implementation instead watches ALT creations on the
// live stream and satisfies Fetch from that cache.
type Fetcher interface {
	Fetch(ctx context.Context, alt core.Address) (Entry, error)
}

// Cache is the ALT cache. Concurrent Fetch calls for the same address are
// coalesced to a single upstream Fetcher call.
type Cache struct {
	mu      sync.Mutex
	entries map[core.Address]Entry
	inFlight map[core.Address]*call

	fetcher     Fetcher
	hotlistPath string

	hits   atomic.Int64
	misses atomic.Int64
}

type call struct {
	done chan struct{}
	err  error
}

// New builds a Cache bound to a Fetcher and an append-only hotlist path
// (empty disables persistence).
func New(fetcher Fetcher, hotlistPath string) *Cache {
	return &Cache{
		entries:     make(map[core.Address]Entry),
		inFlight:    make(map[core.Address]*call),
		fetcher:     fetcher,
		hotlistPath: hotlistPath,
	}
}

// Get is the synchronous lookup: hit/miss, no network access. A miss here
// is an AltMiss per spec.md §4.6 — the caller must not proceed with a
// partially resolved account list, and the health monitor's miss-rate
// check tracks these calls to catch a cache that is chronically cold.
func (c *Cache) Get(addr core.Address) (Entry, bool) {
	c.mu.Lock()
	e, ok := c.entries[addr]
	c.mu.Unlock()
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return e, ok
}

// MissRate returns the fraction of Get calls that missed since the last
// MissRate call, then resets the counters for the next window. Returns 0
// when no Get calls were observed in the window.
func (c *Cache) MissRate() float64 {
	hits := c.hits.Swap(0)
	misses := c.misses.Swap(0)
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(misses) / float64(total)
}

// Fetch resolves addr asynchronously, coalescing concurrent callers for
// the same address into a single upstream Fetcher call. A failure is
// returned to every waiting caller but never poisons the cache — the next
// Fetch call simply tries again.
func (c *Cache) Fetch(ctx context.Context, addr core.Address) (Entry, error) {
	c.mu.Lock()
	if e, ok := c.entries[addr]; ok {
		c.mu.Unlock()
		return e, nil
	}
	if inFlight, ok := c.inFlight[addr]; ok {
		c.mu.Unlock()
		<-inFlight.done
		if inFlight.err != nil {
			return Entry{}, inFlight.err
		}
		c.mu.Lock()
		e := c.entries[addr]
		c.mu.Unlock()
		return e, nil
	}
	inFlight := &call{done: make(chan struct{})}
	c.inFlight[addr] = inFlight
	c.mu.Unlock()

	entry, err := c.fetcher.Fetch(ctx, addr)

	c.mu.Lock()
	delete(c.inFlight, addr)
	if err == nil {
		c.entries[addr] = entry
	}
	inFlight.err = err
	c.mu.Unlock()
	close(inFlight.done)

	if err != nil {
		return Entry{}, err
	}
	c.appendHotlist(addr)
	return entry, nil
}

// appendHotlist is a best-effort, append-only write; a failure is ignored
// per spec.md §5 ("a failed append is logged and ignored").
func (c *Cache) appendHotlist(addr core.Address) {
	if c.hotlistPath == "" {
		return
	}
	f, err := os.OpenFile(c.hotlistPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintln(f, addr.String())
}

// WarmFromHotlist loads the persisted hotlist file and resolves every
// entry through fetcher synchronously, populating the cache before the
// stream starts consuming it. A missing hotlist file is not an error (a
// cold start with no prior hotlist is expected); any other open or read
// error is returned.
func (c *Cache) WarmFromHotlist(ctx context.Context) error {
	if c.hotlistPath == "" {
		return nil
	}
	f, err := os.Open(c.hotlistPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		addr, err := core.AddressFromBase58(line)
		if err != nil {
			continue
		}
		if _, err := c.Fetch(ctx, addr); err != nil {
			continue
		}
	}
	return scanner.Err()
}
