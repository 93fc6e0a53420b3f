// Package dedupe collapses repeated identities so each one is processed once.
package dedupe

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"
)

// Deduper records seen identity keys.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Size is the number of distinct ids recorded.
	Size() int64

	// Duplicates is the number of SeenAndRecord calls that hit a known id.
	Duplicates() int64
}

// inMemoryDeduper implements Deduper with a plain map. Nothing is ever
// evicted: an evicted key would let a later duplicate row through.
type inMemoryDeduper struct {
	mu         sync.Mutex
	seen       map[string]struct{}
	sizeHint   int
	size       atomic.Int64
	duplicates atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{}, d.sizeHint)
	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		d.duplicates.Add(1)
		return true
	}
	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

// Duplicates returns how many repeated ids were rejected.
func (d *inMemoryDeduper) Duplicates() int64 {
	return d.duplicates.Load()
}

// First yields the elements of seq whose key has not been seen by d,
// in input order. The first element carrying a key wins regardless of
// anything else about the later ones; keys compare exactly.
func First[T any](ctx context.Context, d Deduper, seq iter.Seq[T], key func(T) string) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range seq {
			if d.SeenAndRecord(ctx, key(v)) {
				continue
			}
			if !yield(v) {
				return
			}
		}
	}
}
