package similarity

import (
	"sync"
	"time"

	"github.com/sdejongh/filesim/pkg/models"
)

// PairKey returns the cache key for a pair of paths, independent of argument order
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}

type cacheEntry struct {
	result    *models.SimilarityResult
	createdAt time.Time
}

// ResultCache memoizes pairwise results for a limited time.
// Every operation holds a single mutex, so readers never observe a partial entry.
// Two goroutines missing on the same key may both compute and store; the last write wins.
type ResultCache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
	generation uint64
	now        func() time.Time
}

// NewResultCache creates a cache. maxEntries <= 0 means unbounded.
func NewResultCache(ttl time.Duration, maxEntries int, now func() time.Time) *ResultCache {
	if now == nil {
		now = time.Now
	}
	return &ResultCache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        now,
	}
}

// Get returns the cached result for the pair. Expired entries are removed and reported as misses.
func (c *ResultCache) Get(a, b string) (*models.SimilarityResult, bool) {
	key := PairKey(a, b)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.createdAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.result, true
}

// Set stores a result computed while the cache was at generation gen.
// Results from an older generation are dropped so that a verdict computed
// under a replaced configuration is never served. Returns whether it was stored.
func (c *ResultCache) Set(a, b string, result *models.SimilarityResult, gen uint64) bool {
	key := PairKey(a, b)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return false
	}
	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.entries[key] = cacheEntry{result: result, createdAt: c.now()}
	return true
}

// Generation returns the current generation, bumped on every Clear or Reset
func (c *ResultCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Clear removes every entry
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
	c.generation++
}

// Reset clears the cache and applies new limits
func (c *ResultCache) Reset(ttl time.Duration, maxEntries int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
	c.ttl = ttl
	c.maxEntries = maxEntries
	c.generation++
}

// PurgeExpired removes expired entries and returns how many were removed
func (c *ResultCache) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.createdAt) > c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired ones included
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldest drops the entry with the earliest creation time (lock held)
func (c *ResultCache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	first := true
	for key, entry := range c.entries {
		if first || entry.createdAt.Before(oldest) {
			oldestKey = key
			oldest = entry.createdAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
