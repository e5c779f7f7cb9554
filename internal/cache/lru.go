// Package cache provides the fixed-capacity least-recently-used cache used in front of
// slower key-value stores.
package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity is the number of live entries a BoundedCache keeps when no capacity is given.
const DefaultCapacity = 40

// BoundedCache is a thread-safe LRU cache holding at most Capacity entries.
//
// Put and Get mark a key as most recently used. GetOrDefault reads without touching the
// recency order. When a Put pushes the entry count over capacity, entries are evicted from
// the least recently used end until the count is back at capacity; among entries that were
// never touched again, the oldest insertion goes first.
//
// All operations are serialized by a single lock owned by the underlying LRU. The cache is
// small and contention is expected to be low, so a finer-grained scheme is not worth it.
type BoundedCache[K comparable, V any] struct {
	lru      *lru.Cache[K, V]
	capacity int
}

// New creates a BoundedCache with the given capacity. A capacity <= 0 falls back to
// DefaultCapacity.
func New[K comparable, V any](capacity int) (*BoundedCache[K, V], error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	l, err := lru.New[K, V](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}

	return &BoundedCache[K, V]{lru: l, capacity: capacity}, nil
}

// NewDefault creates a BoundedCache with DefaultCapacity. It cannot fail.
func NewDefault[K comparable, V any]() *BoundedCache[K, V] {
	c, err := New[K, V](DefaultCapacity)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return c
}

// Put inserts or overwrites the value for key and marks it most recently used.
func (c *BoundedCache[K, V]) Put(key K, value V) {
	c.lru.Add(key, value)
}

// Get returns the value for key and marks it most recently used.
// The boolean is false when the key is absent; absence is not an error.
func (c *BoundedCache[K, V]) Get(key K) (V, bool) {
	return c.lru.Get(key)
}

// GetOrDefault returns the value for key, or defaultValue when absent.
// It does not change the recency order.
func (c *BoundedCache[K, V]) GetOrDefault(key K, defaultValue V) V {
	if v, ok := c.lru.Peek(key); ok {
		return v
	}
	return defaultValue
}

// Peek returns the value for key without changing the recency order.
func (c *BoundedCache[K, V]) Peek(key K) (V, bool) {
	return c.lru.Peek(key)
}

// Remove deletes key from the cache. It reports whether the key was present.
func (c *BoundedCache[K, V]) Remove(key K) bool {
	return c.lru.Remove(key)
}

// Len returns the number of live entries.
func (c *BoundedCache[K, V]) Len() int {
	return c.lru.Len()
}

// Capacity returns the maximum number of live entries.
func (c *BoundedCache[K, V]) Capacity() int {
	return c.capacity
}

// Keys returns the live keys ordered from least to most recently used.
func (c *BoundedCache[K, V]) Keys() []K {
	return c.lru.Keys()
}
