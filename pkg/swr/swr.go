// Package swr implements a small client-side cache with stale-while-revalidate
// reads and optimistic mutations. A Resource holds one cached value; reads are
// deduplicated across goroutines, and mutations apply an optimistic update that
// is rolled back to the exact pre-mutation snapshot if the commit fails.
package swr

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Fetcher loads the authoritative value for a resource.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Resource is a single cached value with optimistic-mutation support.
// The zero value is not usable; create one with NewResource.
type Resource[T any] struct {
	fetch Fetcher[T]

	mu      sync.Mutex
	value   T
	loaded  bool
	pending *T // optimistic value shadowing the confirmed one during a commit

	// mutateMu serializes mutations so a rollback restores the snapshot
	// taken before ITS OWN optimistic update, never a concurrent one's.
	mutateMu sync.Mutex

	sf singleflight.Group
}

// NewResource creates a Resource backed by the given fetcher.
func NewResource[T any](fetch Fetcher[T]) *Resource[T] {
	return &Resource[T]{fetch: fetch}
}

// Get returns the cached value, fetching it on first use. While a mutation is
// in flight the optimistic value is returned.
func (r *Resource[T]) Get(ctx context.Context) (T, error) {
	r.mu.Lock()
	if r.pending != nil {
		v := *r.pending
		r.mu.Unlock()
		return v, nil
	}
	if r.loaded {
		v := r.value
		r.mu.Unlock()
		return v, nil
	}
	r.mu.Unlock()

	return r.Revalidate(ctx)
}

// Peek returns the current value without fetching. The second return reports
// whether a value (confirmed or optimistic) is available.
func (r *Resource[T]) Peek() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending != nil {
		return *r.pending, true
	}
	return r.value, r.loaded
}

// Revalidate fetches the authoritative value and stores it as the confirmed
// value. Concurrent revalidations share a single fetch.
func (r *Resource[T]) Revalidate(ctx context.Context) (T, error) {
	v, err, _ := r.sf.Do("fetch", func() (interface{}, error) {
		val, err := r.fetch(ctx)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.value = val
		r.loaded = true
		r.mu.Unlock()
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Mutate applies an optimistic update and commits it. The optimistic value is
// visible to readers while commit runs. On commit failure the resource is
// restored to the exact snapshot taken before the update and the error is
// returned. On success the optimistic value is confirmed and a best-effort
// revalidation reconciles it with the authoritative state.
func (r *Resource[T]) Mutate(ctx context.Context, apply func(T) T, commit func(context.Context) error) (T, error) {
	r.mutateMu.Lock()
	defer r.mutateMu.Unlock()

	snapshot, err := r.Get(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	optimistic := apply(snapshot)
	r.mu.Lock()
	r.pending = &optimistic
	r.mu.Unlock()

	if err := commit(ctx); err != nil {
		r.mu.Lock()
		r.pending = nil
		r.value = snapshot
		r.loaded = true
		r.mu.Unlock()
		return snapshot, err
	}

	r.mu.Lock()
	// Confirm the pending value rather than the local optimistic copy so a
	// Patch applied during the commit is not lost.
	if r.pending != nil {
		optimistic = *r.pending
	}
	r.value = optimistic
	r.loaded = true
	r.pending = nil
	r.mu.Unlock()

	if v, err := r.Revalidate(ctx); err == nil {
		return v, nil
	}
	// Revalidation is advisory; the committed optimistic value stands.
	return optimistic, nil
}

// Set replaces the confirmed value, discarding any optimistic state.
func (r *Resource[T]) Set(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value = v
	r.loaded = true
	r.pending = nil
}

// Update transforms the cached value in place if one is present. Both the
// confirmed and any optimistic value are transformed, so a later rollback
// does not undo the patch.
func (r *Resource[T]) Update(fn func(T) T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		r.value = fn(r.value)
	}
	if r.pending != nil {
		p := fn(*r.pending)
		r.pending = &p
	}
}

// Invalidate drops the cached value; the next Get fetches fresh.
func (r *Resource[T]) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	r.value = zero
	r.loaded = false
	r.pending = nil
}
