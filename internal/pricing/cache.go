package pricing

import (
	"sync"
	"time"
)

// Default cache bounds.
const (
	DefaultTTL        = 5 * time.Minute
	DefaultMaxEntries = 64
)

// Cache holds the latest unit prices keyed by asset symbol. The map is
// replaced wholesale on each refresh, never partially mutated. If a refresh
// leaves more entries than the bound allows, the cache empties itself on the
// next access instead of evicting incrementally, since the next refresh
// rebuilds it anyway.
type Cache struct {
	mu          sync.Mutex
	rates       map[string]float64
	lastRefresh time.Time
	ttl         time.Duration
	maxEntries  int
	nowFn       func() time.Time
}

// NewCache creates a Cache with the given TTL and size bound.
// Zero values take the package defaults.
func NewCache(ttl time.Duration, maxEntries int) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		rates:      make(map[string]float64),
		ttl:        ttl,
		maxEntries: maxEntries,
		nowFn:      time.Now,
	}
}

// Fresh reports whether the cache holds a non-empty rate set younger than
// the TTL. An oversized rate set is cleared here and reported stale.
func (c *Cache) Fresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.rates) > c.maxEntries {
		c.rates = make(map[string]float64)
		return false
	}

	if len(c.rates) == 0 {
		return false
	}

	return c.nowFn().Sub(c.lastRefresh) < c.ttl
}

// Snapshot returns a copy of the current rate map.
func (c *Cache) Snapshot() map[string]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]float64, len(c.rates))
	for sym, price := range c.rates {
		out[sym] = price
	}
	return out
}

// Replace installs a new rate map wholesale and stamps the refresh time.
func (c *Cache) Replace(rates map[string]float64) {
	copied := make(map[string]float64, len(rates))
	for sym, price := range rates {
		copied[sym] = price
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.rates = copied
	c.lastRefresh = c.nowFn()
}
