package main

import (
	"sync"
	"testing"
	"time"
)

func testKey(n uint64, depth int8, ply plyKind) searchKey {
	var s PackedState
	s.words[0] = n
	return searchKey{state: s, depth: depth, ply: ply}
}

func TestCacheStoreProbe(t *testing.T) {
	cache := newSearchCache(100, time.Minute)
	key := testKey(0xDEAD, 4, plyAgent)
	if _, ok := cache.probe(key); ok {
		t.Fatalf("probe hit on empty cache")
	}
	cache.store(key, 42.5)
	score, ok := cache.probe(key)
	if !ok || score != 42.5 {
		t.Fatalf("probe = (%f, %v), want (42.5, true)", score, ok)
	}
}

func TestCacheKeysDistinctAcrossDepthAndPly(t *testing.T) {
	cache := newSearchCache(100, time.Minute)
	cache.store(testKey(1, 3, plyAgent), 1.0)
	cache.store(testKey(1, 4, plyAgent), 2.0)
	cache.store(testKey(1, 3, plyChance), 3.0)

	if score, ok := cache.probe(testKey(1, 3, plyAgent)); !ok || score != 1.0 {
		t.Fatalf("depth 3 agent = (%f, %v)", score, ok)
	}
	if score, ok := cache.probe(testKey(1, 4, plyAgent)); !ok || score != 2.0 {
		t.Fatalf("depth 4 agent = (%f, %v)", score, ok)
	}
	if score, ok := cache.probe(testKey(1, 3, plyChance)); !ok || score != 3.0 {
		t.Fatalf("depth 3 chance = (%f, %v)", score, ok)
	}
	if _, ok := cache.probe(testKey(1, 5, plyAgent)); ok {
		t.Fatalf("depth 5 must not alias a depth 3/4 entry")
	}
}

func TestCacheAgeSweep(t *testing.T) {
	cache := newSearchCache(4, time.Minute)
	now := time.Unix(1000, 0)
	cache.now = func() time.Time { return now }

	for i := uint64(0); i < 4; i++ {
		cache.store(testKey(i, 1, plyAgent), float64(i))
	}
	// Everything ages past the cutoff; the next store sweeps them all.
	now = now.Add(2 * time.Minute)
	cache.store(testKey(100, 1, plyAgent), 100)
	if got := cache.Len(); got != 1 {
		t.Fatalf("after sweep Len = %d, want 1", got)
	}
	if _, ok := cache.probe(testKey(100, 1, plyAgent)); !ok {
		t.Fatalf("fresh entry evicted by sweep")
	}
}

func TestCacheLRUEvictionWhenSweepInsufficient(t *testing.T) {
	cache := newSearchCache(4, time.Hour)
	now := time.Unix(1000, 0)
	cache.now = func() time.Time { return now }

	for i := uint64(0); i < 4; i++ {
		cache.store(testKey(i, 1, plyAgent), float64(i))
	}
	// Touch all but key 2, making it the LRU victim.
	cache.probe(testKey(0, 1, plyAgent))
	cache.probe(testKey(1, 1, plyAgent))
	cache.probe(testKey(3, 1, plyAgent))

	cache.store(testKey(9, 1, plyAgent), 9)
	if _, ok := cache.probe(testKey(2, 1, plyAgent)); ok {
		t.Fatalf("least recently used entry survived eviction")
	}
	if _, ok := cache.probe(testKey(9, 1, plyAgent)); !ok {
		t.Fatalf("new entry missing after eviction")
	}
	if got := cache.Len(); got > 4 {
		t.Fatalf("Len = %d exceeds capacity 4", got)
	}
}

func TestCacheStatsAndClear(t *testing.T) {
	cache := newSearchCache(10, time.Minute)
	cache.store(testKey(1, 1, plyAgent), 1)
	cache.probe(testKey(1, 1, plyAgent))
	cache.probe(testKey(2, 1, plyAgent))

	stats := cache.Stats()
	if stats.Lookups != 2 || stats.Hits != 1 {
		t.Fatalf("stats = %+v, want 2 lookups 1 hit", stats)
	}
	if stats.HitRate != 0.5 {
		t.Fatalf("hit rate = %f, want 0.5", stats.HitRate)
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Fatalf("Len after Clear = %d", cache.Len())
	}
}

func TestCacheConcurrentProbeStore(t *testing.T) {
	cache := newSearchCache(1<<10, time.Minute)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			for i := uint64(0); i < 2000; i++ {
				key := testKey(seed*100000+i, int8(i%6), plyAgent)
				cache.store(key, float64(i))
				cache.probe(key)
			}
		}(uint64(g))
	}
	wg.Wait()
	if cache.Len() == 0 {
		t.Fatalf("expected entries after concurrent traffic")
	}
	if cache.Len() > 1<<10 {
		t.Fatalf("cache exceeded capacity: %d", cache.Len())
	}
}
