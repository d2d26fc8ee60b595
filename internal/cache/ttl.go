// Package cache provides a small generic TTL cache used to suppress repeated
// expensive lookups, such as domain registry queries.
package cache

import (
	"sync"
	"time"
)

// entry is a stored value with its insertion timestamp.
type entry[V any] struct {
	value      V
	insertedAt time.Time
	ttl        time.Duration
}

// TTLCache is a keyed cache with per-entry expiry. Expired entries are
// treated as absent and replaced on the next lookup; there is no background
// sweep. The cache is unbounded.
type TTLCache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	now     func() time.Time
}

// New creates a TTL cache using the wall clock.
func New[K comparable, V any]() *TTLCache[K, V] {
	return NewWithClock[K, V](time.Now)
}

// NewWithClock creates a TTL cache with an injected clock, so expiry is
// testable without sleeping.
func NewWithClock[K comparable, V any](now func() time.Time) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		entries: make(map[K]entry[V]),
		now:     now,
	}
}

// Get returns the cached value for key if present and unexpired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.insertedAt) >= e.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores a value with the given time-to-live.
func (c *TTLCache[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, insertedAt: c.now(), ttl: ttl}
}

// Delete removes a key.
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// GetOrCompute returns the cached value for key, computing and storing it on
// a miss or after expiry. Compute failures are not cached, so the underlying
// lookup is retried on every call until it succeeds.
func (c *TTLCache[K, V]) GetOrCompute(key K, ttl time.Duration, compute func(K) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := compute(key)
	if err != nil {
		var zero V
		return zero, err
	}

	c.Set(key, v, ttl)
	return v, nil
}

// Sweep removes expired entries and returns how many were dropped.
func (c *TTLCache[K, V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	dropped := 0
	for k, e := range c.entries {
		if now.Sub(e.insertedAt) >= e.ttl {
			delete(c.entries, k)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of stored entries, expired or not.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
