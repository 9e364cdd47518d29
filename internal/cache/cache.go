package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/logger"
)

// TTLCache keyed read-through cache with per-key TTL. An explicit instance
// is constructed once at process start and injected wherever needed; there
// is no package-level singleton. Entries are retained past their TTL so a
// failed fetch can fall back to stale data, and a background purge evicts
// anything older than the configured ceiling regardless of use.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry

	defaultTTL    time.Duration
	purgeCeiling  time.Duration
	purgeInterval time.Duration

	hits           uint64
	misses         uint64
	staleFallbacks uint64
}

type cacheEntry struct {
	value    interface{}
	storedAt time.Time
	ttl      time.Duration
}

func (e *cacheEntry) fresh(now time.Time) bool {
	return now.Sub(e.storedAt) < e.ttl
}

// FetchFunc produces a value on cache miss
type FetchFunc func(ctx context.Context) (interface{}, error)

// Options TTLCache construction parameters
type Options struct {
	DefaultTTL    time.Duration
	PurgeCeiling  time.Duration
	PurgeInterval time.Duration
}

// New creates a TTLCache
func New(opts Options) *TTLCache {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = 5 * time.Minute
	}
	if opts.PurgeCeiling <= 0 {
		opts.PurgeCeiling = 2 * time.Hour
	}
	if opts.PurgeInterval <= 0 {
		opts.PurgeInterval = 15 * time.Minute
	}
	return &TTLCache{
		entries:       make(map[string]*cacheEntry),
		defaultTTL:    opts.DefaultTTL,
		purgeCeiling:  opts.PurgeCeiling,
		purgeInterval: opts.PurgeInterval,
	}
}

// GetOrFetch returns the cached value while fresh, otherwise calls fetch.
// When fetch fails and a stale entry exists, the stale value is returned as
// a degraded fallback instead of the error.
func (c *TTLCache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) (interface{}, error) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	now := time.Now()

	c.mu.RLock()
	entry, found := c.entries[key]
	c.mu.RUnlock()

	if found && entry.fresh(now) {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return entry.value, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		if found {
			c.mu.Lock()
			c.staleFallbacks++
			c.mu.Unlock()
			logger.Warnw("cache_stale_fallback",
				"key", key,
				"age_seconds", int(now.Sub(entry.storedAt).Seconds()),
				"error", err,
			)
			return entry.value, nil
		}
		c.mu.Lock()
		c.misses++
		c.mu.Unlock()
		return nil, err
	}

	c.mu.Lock()
	c.misses++
	c.entries[key] = &cacheEntry{value: value, storedAt: now, ttl: ttl}
	c.mu.Unlock()
	return value, nil
}

// Delete evicts one key
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear evicts everything
func (c *TTLCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// KeyAge age info for one cached key
type KeyAge struct {
	Key        string `json:"key"`
	AgeSeconds int    `json:"age_seconds"`
	TTLSeconds int    `json:"ttl_seconds"`
	Fresh      bool   `json:"fresh"`
}

// Stats cache observability snapshot
type Stats struct {
	Hits           uint64   `json:"hits"`
	Misses         uint64   `json:"misses"`
	StaleFallbacks uint64   `json:"stale_fallbacks"`
	Entries        int      `json:"entries"`
	Keys           []KeyAge `json:"keys"`
}

// Snapshot returns current counters and per-key ages
func (c *TTLCache) Snapshot() Stats {
	now := time.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{
		Hits:           c.hits,
		Misses:         c.misses,
		StaleFallbacks: c.staleFallbacks,
		Entries:        len(c.entries),
		Keys:           make([]KeyAge, 0, len(c.entries)),
	}
	for key, entry := range c.entries {
		stats.Keys = append(stats.Keys, KeyAge{
			Key:        key,
			AgeSeconds: int(now.Sub(entry.storedAt).Seconds()),
			TTLSeconds: int(entry.ttl.Seconds()),
			Fresh:      entry.fresh(now),
		})
	}
	return stats
}

// PurgeExpired drops entries older than the ceiling and returns how many
// were removed. Entries between TTL and ceiling stay as stale-fallback
// candidates.
func (c *TTLCache) PurgeExpired(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	purged := 0
	for key, entry := range c.entries {
		if now.Sub(entry.storedAt) >= c.purgeCeiling {
			delete(c.entries, key)
			purged++
		}
	}
	return purged
}

// RunPurgeLoop purges on a timer until the context is canceled
func (c *TTLCache) RunPurgeLoop(ctx context.Context) {
	ticker := time.NewTicker(c.purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if purged := c.PurgeExpired(time.Now()); purged > 0 {
				logger.Debugw("cache_purged", "entries", purged)
			}
		}
	}
}
