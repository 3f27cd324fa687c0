// Package cache implements an in-process TTL cache, the single-process
// equivalent of the teacher's Redis-backed idempotency cache.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// TTLCache implements ports.CacheService using an in-memory map guarded by
// a RWMutex. Expired entries are purged lazily on Get and by a background
// sweep.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	hits    int64
	misses  int64
}

// New creates a new TTLCache and starts its background sweep goroutine.
func New(sweepInterval time.Duration) *TTLCache {
	c := &TTLCache{entries: make(map[string]entry)}
	go c.sweepLoop(sweepInterval)
	return c
}

// Get retrieves a cached value, returning ok=false if absent or expired.
func (c *TTLCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()

	if !found || time.Now().After(e.expiresAt) {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	atomic.AddInt64(&c.hits, 1)
	return e.value, true
}

// Set stores a value with the given TTL.
func (c *TTLCache) Set(key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Stats returns cumulative hit/miss counters.
func (c *TTLCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// sweepLoop periodically evicts expired entries so the map doesn't grow
// unbounded with keys nobody ever re-requests.
func (c *TTLCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
		c.mu.Unlock()
	}
}
