package common

import (
	"sync"
	"time"
)

type cacheEntry[V any] struct {
	storedAt time.Time
	value    V
}

// TTLCache is a mutex-guarded map whose entries expire a fixed duration
// after they were stored. Expiry is measured on the cache's clock only.
type TTLCache[K comparable, V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[K]cacheEntry[V]
	now     func() time.Time
}

// NewTTLCache creates a cache whose entries live for ttl
func NewTTLCache[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		ttl:     ttl,
		entries: make(map[K]cacheEntry[V]),
		now:     time.Now,
	}
}

// WithClock replaces the cache clock; used by tests
func (c *TTLCache[K, V]) WithClock(now func() time.Time) *TTLCache[K, V] {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

// Get returns the cached value for key if it has not expired
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !IsFreshAt(entry.storedAt, c.ttl, c.now()) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Set stores value under key, resetting its age
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	c.entries[key] = cacheEntry[V]{storedAt: c.now(), value: value}
	c.mu.Unlock()
}

// Len returns the number of entries, expired or not
func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
