// Package cache is a read-through cache for GET responses. Implementations
// swallow their own failures: a broken cache degrades to a miss, never to a
// failed request.
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache stores serialized responses under hierarchical keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// InvalidatePrefix drops every key under the given prefix. Mutations
	// call this with the entity segment so stale pages disappear together.
	InvalidatePrefix(ctx context.Context, prefix string)
}

// Key joins segments into a cache key. The first segment names the entity
// and doubles as the invalidation prefix.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// Nop is the cache used when no redis address is configured.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool)         { return nil, false }
func (Nop) Set(context.Context, string, []byte, time.Duration) {}
func (Nop) InvalidatePrefix(context.Context, string)           {}
