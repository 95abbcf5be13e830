package dataset

import (
	"context"
	"sync"
	"time"

	"github.com/okian/rake/internal/domain/table"
	"github.com/okian/rake/pkg/metrics"
)

// Default cache configuration constants.
const (
	defaultTTL        = time.Hour
	defaultMaxEntries = 16
)

// Clock abstracts time for the cache so tests can control expiry directly.
type Clock func() time.Time

// Cache memoizes table loads by logical name with a fixed time-to-live.
// It is an explicit collaborator rather than process-wide implicit state:
// the store, TTL, capacity and clock are all injected. Errors are never
// cached. Cache implements Store and can wrap any other Store.
type Cache struct {
	mu         sync.Mutex
	store      Store
	ttl        time.Duration
	maxEntries int
	clock      Clock
	entries    map[string]cacheEntry
}

type cacheEntry struct {
	tbl     *table.Table
	expires time.Time
	loaded  time.Time
}

// CacheOption applies a configuration option to the Cache.
type CacheOption func(*Cache)

// WithTTL sets how long a loaded table snapshot stays fresh.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMaxEntries bounds the number of cached snapshots.
func WithMaxEntries(n int) CacheOption {
	return func(c *Cache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithClock injects a time source (tests use a fake one).
func WithClock(clock Clock) CacheOption {
	return func(c *Cache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewCache wraps store with TTL memoization.
func NewCache(store Store, opts ...CacheOption) *Cache {
	c := &Cache{
		store:      store,
		ttl:        defaultTTL,
		maxEntries: defaultMaxEntries,
		clock:      time.Now,
		entries:    make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load implements Store. A fresh cached snapshot is returned as-is;
// otherwise the inner store loads and the result is cached. Single lock
// around the whole operation: the service serves one interactive user, so
// per-key locking buys nothing.
func (c *Cache) Load(ctx context.Context, name string) (*table.Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	if e, ok := c.entries[name]; ok && now.Before(e.expires) {
		metrics.RecordCacheHit()
		return e.tbl, nil
	}
	metrics.RecordCacheMiss()

	t, err := c.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	c.evictLocked(now)
	c.entries[name] = cacheEntry{tbl: t, expires: now.Add(c.ttl), loaded: now}
	metrics.UpdateCacheEntries(len(c.entries))
	return t, nil
}

// Files implements Store; listings are cheap and never cached.
func (c *Cache) Files(ctx context.Context) ([]string, error) {
	return c.store.Files(ctx)
}

// Invalidate drops the snapshot for one logical name.
func (c *Cache) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[name]; ok {
		delete(c.entries, name)
		metrics.RecordCacheEviction()
		metrics.UpdateCacheEntries(len(c.entries))
	}
}

// Purge drops every cached snapshot.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name := range c.entries {
		delete(c.entries, name)
		metrics.RecordCacheEviction()
	}
	metrics.UpdateCacheEntries(0)
}

// Len returns the current number of cached snapshots.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked removes expired entries, then the oldest entry if the cache
// is still at capacity. Must be called with c.mu held.
func (c *Cache) evictLocked(now time.Time) {
	for name, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, name)
			metrics.RecordCacheEviction()
		}
	}
	for len(c.entries) >= c.maxEntries {
		oldestName := ""
		var oldest time.Time
		for name, e := range c.entries {
			if oldestName == "" || e.loaded.Before(oldest) {
				oldestName, oldest = name, e.loaded
			}
		}
		delete(c.entries, oldestName)
		metrics.RecordCacheEviction()
	}
}
