package client

import (
	"strings"
	"sync"
	"time"
)

type cacheEntry struct {
	body    []byte
	expires time.Time
}

// queryCache holds raw GET response bodies keyed by entity and path.
// Entries expire on read; mutations drop whole entity prefixes.
type queryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func newQueryCache() *queryCache {
	return &queryCache{entries: make(map[string]cacheEntry)}
}

func (c *queryCache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.body, true
}

func (c *queryCache) set(key string, body []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{body: body, expires: time.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *queryCache) invalidatePrefix(prefix string) {
	c.mu.Lock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}
