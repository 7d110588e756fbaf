package cache

import (
	"sync"
	"time"
)

// Cache is a small TTL cache used to keep dashboard counters off the
// database hot path.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V, ttl time.Duration)
	Delete(key K)
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is an in-memory Cache with per-entry expiry. Expired entries
// are dropped lazily on read and on the write path.
type TTLCache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]entry[V]
}

func NewTTLCache[K comparable, V any]() *TTLCache[K, V] {
	return &TTLCache[K, V]{entries: make(map[K]entry[V])}
}

func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// Set stores value for ttl. A non-positive ttl stores it without expiry.
func (c *TTLCache[K, V]) Set(key K, value V, ttl time.Duration) {
	if c == nil {
		return
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = entry[V]{value: value, expiresAt: expiresAt}
}

func (c *TTLCache[K, V]) Delete(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// NoopCache misses every read and drops every write. Tests use it to
// force report queries against the database.
type NoopCache[K comparable, V any] struct{}

func (NoopCache[K, V]) Get(key K) (V, bool) {
	var zero V
	return zero, false
}

func (NoopCache[K, V]) Set(key K, value V, ttl time.Duration) {}

func (NoopCache[K, V]) Delete(key K) {}
