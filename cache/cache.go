// Package cache provides a generic, thread-safe load-once cache with
// metrics. Entries are immutable after load and never evicted: the cache
// backs process-wide reference data (gene catalogs) with an explicit
// load-once / no-teardown lifecycle.
package cache

import (
	"sync"
	"sync/atomic"
)

// Once is a generic load-once cache. The first GetOrLoad for a key runs
// the loader; every later call returns the cached value. A failed load is
// not cached, so callers can retry.
type Once[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V

	// Metrics (lock-free using atomics)
	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates an empty load-once cache.
func New[K comparable, V any]() *Once[K, V] {
	return &Once[K, V]{
		items: make(map[K]V),
	}
}

// Get retrieves a cached value without loading.
func (c *Once[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	v, ok := c.items[key]
	c.mu.RUnlock()

	if ok {
		c.hits.Add(1)
		return v, true
	}
	c.misses.Add(1)
	var zero V
	return zero, false
}

// GetOrLoad returns the cached value for key, loading it with load on
// first use. Concurrent callers for the same key may both run the loader;
// the first stored value wins, keeping the cached entry stable.
func (c *Once[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	c.mu.RLock()
	v, ok := c.items[key]
	c.mu.RUnlock()

	if ok {
		c.hits.Add(1)
		return v, nil
	}
	c.misses.Add(1)

	loaded, err := load()
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another loader may have stored first; keep the existing entry.
	if v, ok := c.items[key]; ok {
		return v, nil
	}
	c.items[key] = loaded
	return loaded, nil
}

// Len returns the number of loaded entries.
func (c *Once[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Keys returns the loaded keys (in no particular order).
func (c *Once[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]K, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	return keys
}

// Stats holds cache statistics.
type Stats struct {
	Size    int
	Hits    uint64
	Misses  uint64
	HitRate float64
}

// Stats returns cache statistics.
func (c *Once[K, V]) Stats() Stats {
	c.mu.RLock()
	size := len(c.items)
	c.mu.RUnlock()

	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses

	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Size:    size,
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate,
	}
}
