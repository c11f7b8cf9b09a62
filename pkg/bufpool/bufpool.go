// Package bufpool implements the pre-allocated buffer pool of spec.md §5:
// fixed size classes backed by sync.Pool, with a silent non-pooled
// fallback on exhaustion. No third-party buffer-pool library appears
// anywhere in the example pack (the only pooling dependency retrieved,
// zstdpool-freelist, is compression-specific and transitive only), so
// this is built on the standard library's sync.Pool, one per size class.
package bufpool

import "sync"

// sizeClasses are the fixed buffer sizes spec.md §5 names.
var sizeClasses = [...]int{64, 256, 1024, 4096, 16384, 65536}

// Pool hands out byte slices from the smallest size class that satisfies
// a requested length, and returns them to their originating sync.Pool on
// Release.
type Pool struct {
	pools [len(sizeClasses)]sync.Pool
}

// New builds a Pool with one sync.Pool per size class.
func New() *Pool {
	p := &Pool{}
	for i, n := range sizeClasses {
		n := n
		p.pools[i].New = func() any {
			b := make([]byte, n)
			return &b
		}
	}
	return p
}

// Buffer is a buffer acquired from a Pool. class is -1 when the request
// exceeded every size class and a non-pooled slice was returned instead;
// Release is then a no-op.
type Buffer struct {
	Bytes []byte
	class int
}

// Acquire returns the smallest size-class buffer that is at least n bytes,
// sliced down to length n. Requests larger than the largest class get a
// plain, non-pooled allocation.
func (p *Pool) Acquire(n int) *Buffer {
	for i, sz := range sizeClasses {
		if n <= sz {
			b := p.pools[i].Get().(*[]byte)
			return &Buffer{Bytes: (*b)[:n], class: i}
		}
	}
	return &Buffer{Bytes: make([]byte, n), class: -1}
}

// Release returns b to its originating size class. Releasing a
// non-pooled buffer (class == -1) is a silent no-op, matching spec.md
// §5's "indistinguishable to the caller" requirement.
func (p *Pool) Release(b *Buffer) {
	if b.class < 0 {
		return
	}
	full := b.Bytes[:cap(b.Bytes)][:sizeClasses[b.class]]
	p.pools[b.class].Put(&full)
}
