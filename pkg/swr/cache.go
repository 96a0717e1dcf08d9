package swr

import (
	"context"
	"sync"
)

// Cache is a keyed collection of Resources sharing one fetcher, for resources
// addressed by an identifier such as the comments of a given post.
type Cache[T any] struct {
	fetch func(ctx context.Context, key string) (T, error)

	mu    sync.Mutex
	items map[string]*Resource[T]
}

// NewCache creates a keyed cache backed by the given fetcher.
func NewCache[T any](fetch func(ctx context.Context, key string) (T, error)) *Cache[T] {
	return &Cache[T]{
		fetch: fetch,
		items: make(map[string]*Resource[T]),
	}
}

// Resource returns the Resource for key, creating it on first use.
func (c *Cache[T]) Resource(key string) *Resource[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.items[key]
	if !ok {
		r = NewResource(func(ctx context.Context) (T, error) {
			return c.fetch(ctx, key)
		})
		c.items[key] = r
	}
	return r
}

// Get returns the cached value for key, fetching it on first use.
func (c *Cache[T]) Get(ctx context.Context, key string) (T, error) {
	return c.Resource(key).Get(ctx)
}

// Patch transforms the cached value for key if one is present. Keys that were
// never fetched are left alone.
func (c *Cache[T]) Patch(key string, fn func(T) T) {
	c.mu.Lock()
	r, ok := c.items[key]
	c.mu.Unlock()
	if ok {
		r.Update(fn)
	}
}

// Invalidate drops the cached value for key.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	r, ok := c.items[key]
	c.mu.Unlock()
	if ok {
		r.Invalidate()
	}
}
