package geocache

import (
	"sort"
	"sync"
	"time"

	"geolocale/models"
)

const (
	// DefaultTTL is how long a resolved location stays valid.
	DefaultTTL = 24 * time.Hour
	// DefaultMaxEntries bounds memory use; oldest entries go first.
	DefaultMaxEntries = 1000
)

// Stats describes the current cache contents.
type Stats struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

// Cache is a time-bounded store of resolved geolocations keyed by cleaned IP.
// Implementations must never return an expired record from Get.
type Cache interface {
	Get(key string) (*models.Geolocation, bool)
	Put(key string, record *models.Geolocation)
	Clear()
	Stats() Stats
}

type entry struct {
	record    *models.Geolocation
	timestamp time.Time
}

// MemoryCache is an in-process Cache. It is a performance optimization, not
// a source of truth; losing it on restart is fine. A multi-process
// deployment would need a shared store behind the same interface.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewMemoryCache creates a cache with the default TTL and size bound.
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithOptions(DefaultTTL, DefaultMaxEntries, time.Now)
}

// NewMemoryCacheWithOptions allows tests to control expiry and time.
func NewMemoryCacheWithOptions(ttl time.Duration, maxEntries int, now func() time.Time) *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        now,
		stop:       make(chan struct{}),
	}
}

// Get returns the cached record for key, treating expired entries as misses.
func (c *MemoryCache) Get(key string) (*models.Geolocation, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(e.timestamp) >= c.ttl {
		return nil, false
	}
	return e.record, true
}

// Put stores a record under key, evicting the oldest entries when full.
func (c *MemoryCache) Put(key string, record *models.Geolocation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{record: record, timestamp: c.now()}
	if len(c.entries) > c.maxEntries {
		c.evictOldestLocked(len(c.entries) - c.maxEntries)
	}
}

// Clear drops every entry.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Stats returns the entry count and keys currently held.
func (c *MemoryCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return Stats{Size: len(c.entries), Keys: keys}
}

// StartJanitor launches a background sweep that removes expired entries on
// the given interval. Call Stop to end it.
func (c *MemoryCache) StartJanitor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
				c.removeExpired()
			}
		}
	}()
}

// Stop ends the janitor goroutine if one is running.
func (c *MemoryCache) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *MemoryCache) removeExpired() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if now.Sub(e.timestamp) >= c.ttl {
			delete(c.entries, k)
		}
	}
}

func (c *MemoryCache) evictOldestLocked(n int) {
	type aged struct {
		key string
		ts  time.Time
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{k, e.timestamp})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ts.Before(all[j].ts) })
	for i := 0; i < n && i < len(all); i++ {
		delete(c.entries, all[i].key)
	}
}
