package history

import (
	"sync"
	"time"

	"github.com/vadiminshakov/cryptocorr/internal/domain"
)

// seriesCache is a TTL cache of normalized per-token series, so repeated
// lookups within a run (duplicate ids, multi-window callers) do not refetch.
// Entries past the TTL are served fresh on the next FetchAll.
type seriesCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	series  domain.PriceSeries
	savedAt time.Time
}

func newSeriesCache(ttl time.Duration) *seriesCache {
	return &seriesCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *seriesCache) get(key string) (domain.PriceSeries, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(e.savedAt) > c.ttl {
		return nil, false
	}
	return e.series, true
}

func (c *seriesCache) put(key string, series domain.PriceSeries) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{series: series, savedAt: c.now()}
}
