// Package kvstore defines the read/write key-value contract that decouples the key store from
// concrete storage, plus an in-memory implementation of it.
package kvstore

import (
	"context"

	"github.com/allisson/signum/internal/cache"
)

// Store is a minimal key-value contract. Read reports whether the key was found; a missing
// key is not an error.
type Store[K comparable, V any] interface {
	Read(ctx context.Context, key K) (V, bool, error)
	Write(ctx context.Context, key K, value V) error
}

// MemoryStore is a Store kept entirely in a BoundedCache. Reads do not change the recency
// order, so only writes decide what is evicted.
type MemoryStore[K comparable, V any] struct {
	cache *cache.BoundedCache[K, V]
}

// NewMemoryStore creates a MemoryStore backed by a cache with the default capacity.
func NewMemoryStore[K comparable, V any]() *MemoryStore[K, V] {
	return &MemoryStore[K, V]{cache: cache.NewDefault[K, V]()}
}

// Read returns the value for key without touching its recency.
func (m *MemoryStore[K, V]) Read(_ context.Context, key K) (V, bool, error) {
	v, ok := m.cache.Peek(key)
	return v, ok, nil
}

// Write stores value under key.
func (m *MemoryStore[K, V]) Write(_ context.Context, key K, value V) error {
	m.cache.Put(key, value)
	return nil
}
