package search

import (
	"sync"
	"time"
)

const cacheTTL = 10 * time.Minute

type cacheEntry struct {
	results   []Result
	timestamp time.Time
}

// resultCache is a small in-memory TTL cache. Expired entries are evicted
// lazily on lookup; there is no background sweeper.
type resultCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

func newResultCache() *resultCache {
	return &resultCache{
		entries: make(map[string]cacheEntry),
		ttl:     cacheTTL,
	}
}

func (c *resultCache) get(key string) ([]Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(entry.timestamp) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.results, true
}

func (c *resultCache) set(key string, results []Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{results: results, timestamp: time.Now()}
}

func (c *resultCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
