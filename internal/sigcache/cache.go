// Package sigcache tracks transaction signatures already processed, so a
// refresh cycle skips redundant transaction fetches. Eviction is a bulk,
// importance-weighted sweep rather than strict LRU: a false miss only costs
// a redundant fetch, never correctness, because the reconciler deduplicates
// records again downstream.
package sigcache

import (
	"sort"
	"sync"
	"time"
)

// DefaultMaxEntries bounds the cache when no size is configured.
const DefaultMaxEntries = 5000

// evictFraction is the share of entries dropped in one eviction sweep.
const evictFraction = 0.25

type entry struct {
	firstSeen   time.Time
	lastAccess  time.Time
	accessCount int64
}

// Cache is a bounded signature set with access bookkeeping.
// Safe for concurrent use by a refresh and its bounded-fan-out batches.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	maxEntries int
	nowFn      func() time.Time
}

// New creates a Cache bounded to maxEntries (DefaultMaxEntries if <= 0).
func New(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		entries:    make(map[string]*entry, maxEntries),
		maxEntries: maxEntries,
		nowFn:      time.Now,
	}
}

// Has reports whether the signature has been processed before.
// A hit refreshes the entry's access bookkeeping.
func (c *Cache) Has(signature string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[signature]
	if !ok {
		return false
	}

	e.accessCount++
	e.lastAccess = c.nowFn()
	return true
}

// Record marks a signature as processed at seenAt. Re-recording an existing
// signature refreshes its bookkeeping. If the cache is at its bound, an
// eviction sweep runs first.
func (c *Cache) Record(signature string, seenAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[signature]; ok {
		e.accessCount++
		e.lastAccess = seenAt
		return
	}

	if len(c.entries) >= c.maxEntries {
		c.evict()
	}

	c.entries[signature] = &entry{
		firstSeen:   seenAt,
		lastAccess:  seenAt,
		accessCount: 1,
	}
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Reset drops all entries.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry, c.maxEntries)
}

// evict drops the lowest-scoring 25% of entries.
// Score: access_count × (now − last_access). Caller holds c.mu.
func (c *Cache) evict() {
	now := c.nowFn()

	type scored struct {
		sig   string
		score float64
	}

	all := make([]scored, 0, len(c.entries))
	for sig, e := range c.entries {
		age := now.Sub(e.lastAccess).Seconds()
		all = append(all, scored{sig: sig, score: float64(e.accessCount) * age})
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].sig < all[j].sig
	})

	drop := int(float64(len(all)) * evictFraction)
	if drop < 1 {
		drop = 1
	}

	for _, s := range all[len(all)-drop:] {
		delete(c.entries, s.sig)
	}
}
