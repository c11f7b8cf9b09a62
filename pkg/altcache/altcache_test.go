package altcache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/solmev/coreengine/pkg/core"
)

func addr(b byte) core.Address {
	var a core.Address
	a[0] = b
	return a
}

// countingFetcher resolves every address to a fixed entry after blocking on
// release (if set), counting how many times Fetch was actually invoked
// upstream — used to prove Cache.Fetch coalesces concurrent callers.
type countingFetcher struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (f *countingFetcher) Fetch(ctx context.Context, alt core.Address) (Entry, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return Entry{}, f.err
	}
	return Entry{Addresses: []core.Address{addr(1), addr(2)}, Version: 1}, nil
}

func TestCache_GetMissThenFetchPopulates(t *testing.T) {
	f := &countingFetcher{}
	c := New(f, "")
	target := addr(5)

	_, ok := c.Get(target)
	require.False(t, ok)

	entry, err := c.Fetch(context.Background(), target)
	require.NoError(t, err)
	require.Len(t, entry.Addresses, 2)

	got, ok := c.Get(target)
	require.True(t, ok)
	require.Equal(t, entry, got)
	require.EqualValues(t, 1, f.calls.Load())
}

func TestCache_FetchCoalescesConcurrentCallers(t *testing.T) {
	f := &countingFetcher{release: make(chan struct{})}
	c := New(f, "")
	target := addr(7)

	const n = 8
	var wg sync.WaitGroup
	results := make([]Entry, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Fetch(context.Background(), target)
		}(i)
	}

	// Give every goroutine a chance to register itself as either the
	// in-flight caller or a waiter before releasing the single upstream call.
	time.Sleep(50 * time.Millisecond)
	close(f.release)
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.Len(t, results[i].Addresses, 2)
	}
	require.EqualValues(t, 1, f.calls.Load(), "concurrent Fetch calls for the same address must coalesce to one upstream call")
}

func TestCache_FetchDoesNotPoisonCacheOnError(t *testing.T) {
	f := &countingFetcher{err: context.DeadlineExceeded}
	c := New(f, "")
	target := addr(9)

	_, err := c.Fetch(context.Background(), target)
	require.Error(t, err)
	_, ok := c.Get(target)
	require.False(t, ok)

	f.err = nil
	entry, err := c.Fetch(context.Background(), target)
	require.NoError(t, err)
	require.Len(t, entry.Addresses, 2)
	require.EqualValues(t, 2, f.calls.Load())
}

func TestCache_MissRateResetsWindow(t *testing.T) {
	f := &countingFetcher{}
	c := New(f, "")
	target := addr(3)

	c.Get(target) // miss
	c.Get(target) // miss
	require.InDelta(t, 1.0, c.MissRate(), 1e-9)
	require.Equal(t, 0.0, c.MissRate(), "counters reset after being read")

	c.Fetch(context.Background(), target)
	c.Get(target) // hit
	c.Get(addr(4)) // miss
	require.InDelta(t, 0.5, c.MissRate(), 1e-9)
}

func TestCache_HotlistPersistsAcrossWarm(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hotlist.txt")

	f := &countingFetcher{}
	c := New(f, path)
	target := addr(11)
	_, err := c.Fetch(context.Background(), target)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), target.String())

	f2 := &countingFetcher{}
	c2 := New(f2, path)
	require.NoError(t, c2.WarmFromHotlist(context.Background()))
	got, ok := c2.Get(target)
	require.True(t, ok)
	require.Len(t, got.Addresses, 2)
}

func TestCache_WarmFromHotlist_MissingFileIsNotError(t *testing.T) {
	c := New(&countingFetcher{}, filepath.Join(t.TempDir(), "does-not-exist.txt"))
	require.NoError(t, c.WarmFromHotlist(context.Background()))
}
