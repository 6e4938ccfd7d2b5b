// Package cache provides a bounded in-memory TTL cache with best-effort
// recency eviction. It backs the Entrez client's response tiers; two
// instances are expected per process (a short-TTL tier for volatile search
// results and a longer-TTL tier for stable metadata and payloads).
package cache

import (
	"sync"
	"time"
)

// DefaultMaxItems is the default entry capacity.
const DefaultMaxItems = 1024

// DefaultTTL is the default entry lifetime.
const DefaultTTL = 10 * time.Minute

type entry[V any] struct {
	value     V
	expiresAt time.Time
	touchedAt time.Time
}

// Cache is a mutex-guarded key/value store with lazy time-based expiry.
// Eviction is best-effort: when full, Set removes exactly one entry (the
// least recently touched), not however many exceed capacity.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	maxItems int
	ttl      time.Duration
	entries  map[K]*entry[V]
	now      func() time.Time
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithClock overrides the time source. Useful for testing expiry.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *Cache[K, V]) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a cache holding at most maxItems entries, each valid for ttl
// after its last Set. Non-positive arguments fall back to the defaults.
func New[K comparable, V any](maxItems int, ttl time.Duration, opts ...Option[K, V]) *Cache[K, V] {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c := &Cache[K, V]{
		maxItems: maxItems,
		ttl:      ttl,
		entries:  make(map[K]*entry[V]),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key if present and not expired.
// Expired entries are removed on read. A hit refreshes the entry's
// last-touched time for eviction ordering.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}
	e.touchedAt = c.now()
	return e.value, true
}

// Set stores value under key with a fresh TTL. If the store is at or above
// capacity it first evicts the single least-recently-touched entry.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxItems {
		c.evictOldest()
	}

	now := c.now()
	c.entries[key] = &entry[V]{
		value:     value,
		expiresAt: now.Add(c.ttl),
		touchedAt: now,
	}
}

// Len returns the current number of entries, expired or not.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldest removes the entry with the oldest touchedAt.
// Caller must hold the lock. Ties are broken by map iteration order.
func (c *Cache[K, V]) evictOldest() {
	var victim K
	var oldest time.Time
	found := false
	for k, e := range c.entries {
		if !found || e.touchedAt.Before(oldest) {
			victim = k
			oldest = e.touchedAt
			found = true
		}
	}
	if found {
		delete(c.entries, victim)
	}
}
