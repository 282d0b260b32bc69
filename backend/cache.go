package main

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type plyKind uint8

const (
	plyAgent plyKind = iota
	plyChance
)

// searchKey identifies one search node exactly. Depth is part of the key
// on purpose: a score backed up from depth d is only an approximation of
// the depth-d subtree, and reusing it for a different remaining depth
// would corrupt the values propagated above it.
type searchKey struct {
	state PackedState
	depth int8
	ply   plyKind
}

type cacheEntry struct {
	score      float64
	insertedAt time.Time
	lastUsed   uint64
}

const (
	defaultCacheCapacity = 10000
	defaultCacheMaxAge   = time.Minute
)

// SearchCache memoizes expectimax node scores for the lifetime of the
// process. It is bounded: when a store would exceed capacity, entries
// older than maxAge are swept first, and if the sweep is not enough the
// least recently used entries go next, until the cache is back under its
// cap. The mutex makes it safe for the parallel root search.
type SearchCache struct {
	mu       sync.Mutex
	entries  map[searchKey]*cacheEntry
	capacity int
	maxAge   time.Duration
	tick     uint64

	lookups atomic.Uint64
	hits    atomic.Uint64

	now func() time.Time
}

func newSearchCache(capacity int, maxAge time.Duration) *SearchCache {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	if maxAge <= 0 {
		maxAge = defaultCacheMaxAge
	}
	return &SearchCache{
		entries:  make(map[searchKey]*cacheEntry, capacity),
		capacity: capacity,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

func (c *SearchCache) probe(key searchKey) (float64, bool) {
	c.lookups.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	c.tick++
	e.lastUsed = c.tick
	c.hits.Add(1)
	return e.score, true
}

func (c *SearchCache) store(key searchKey, score float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.tick++
		e.score = score
		e.insertedAt = c.now()
		e.lastUsed = c.tick
		return
	}
	if len(c.entries) >= c.capacity {
		c.evictLocked()
	}
	c.tick++
	c.entries[key] = &cacheEntry{
		score:      score,
		insertedAt: c.now(),
		lastUsed:   c.tick,
	}
}

// evictLocked frees room for at least one new entry: an age sweep first,
// then LRU removal of whatever the sweep left over the cap.
func (c *SearchCache) evictLocked() {
	cutoff := c.now().Add(-c.maxAge)
	for key, e := range c.entries {
		if e.insertedAt.Before(cutoff) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) < c.capacity {
		return
	}
	type victim struct {
		key      searchKey
		lastUsed uint64
	}
	victims := make([]victim, 0, len(c.entries))
	for key, e := range c.entries {
		victims = append(victims, victim{key: key, lastUsed: e.lastUsed})
	}
	sort.Slice(victims, func(i, j int) bool {
		return victims[i].lastUsed < victims[j].lastUsed
	})
	drop := len(c.entries) - c.capacity + 1
	for i := 0; i < drop && i < len(victims); i++ {
		delete(c.entries, victims[i].key)
	}
}

func (c *SearchCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *SearchCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[searchKey]*cacheEntry, c.capacity)
}

type CacheStats struct {
	Size     int     `json:"size"`
	Capacity int     `json:"capacity"`
	Lookups  uint64  `json:"lookups"`
	Hits     uint64  `json:"hits"`
	HitRate  float64 `json:"hit_rate"`
}

func (c *SearchCache) Stats() CacheStats {
	lookups := c.lookups.Load()
	hits := c.hits.Load()
	rate := 0.0
	if lookups > 0 {
		rate = float64(hits) / float64(lookups)
	}
	return CacheStats{
		Size:     c.Len(),
		Capacity: c.capacity,
		Lookups:  lookups,
		Hits:     hits,
		HitRate:  rate,
	}
}
