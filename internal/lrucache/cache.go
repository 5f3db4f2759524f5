// Package lrucache implements the fixed-capacity, LRU-eviction cache
// set described in SPEC_FULL.md §3/§4.2: two invalidation classes
// (tip-scoped and immutable) plus membership-only dedup sets, built on
// github.com/hashicorp/golang-lru/v2 (grounded on core/storage.go's
// hand-rolled disk LRU in the teacher repo, promoted to the real
// dependency the teacher's own go.mod already carries).
package lrucache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a single fixed-capacity, goroutine-safe LRU cache. The
// underlying hashicorp/golang-lru Cache is not internally locked, so
// every operation here is guarded by our own mutex (SPEC_FULL.md §5:
// "hold a per-container lock for the duration of a single
// get-modify-set sequence").
type Cache[K comparable, V any] struct {
	mu  sync.Mutex
	lru *lru.Cache[K, V]
}

// NewCache constructs a cache holding at most capacity entries.
// capacity must be positive.
func NewCache[K comparable, V any](capacity int) *Cache[K, V] {
	c, err := lru.New[K, V](capacity)
	if err != nil {
		// Only returned by golang-lru for capacity <= 0; every caller in
		// this repo passes a SPEC_FULL.md-documented positive default.
		panic(err)
	}
	return &Cache[K, V]{lru: c}
}

// Get returns the cached value for key and true, or the zero value and
// false on a miss.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(key)
}

// Set stores value under key, evicting the least-recently-used entry if
// the cache is at capacity.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, value)
}

// Has reports membership without affecting recency, used by the dedup
// sets where touching LRU order on every lookup would be wasteful.
func (c *Cache[K, V]) Has(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Contains(key)
}

// Reset atomically empties the cache.
func (c *Cache[K, V]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// Len reports the current number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
