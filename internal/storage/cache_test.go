package storage

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRUCacheHitAndMiss(t *testing.T) {
	cache := NewLRUCache(10, time.Minute)

	if _, found := cache.Get("config:42:openai"); found {
		t.Fatal("Expected miss on empty cache")
	}

	cache.Set("config:42:openai", "resolved")
	value, found := cache.Get("config:42:openai")
	if !found || value != "resolved" {
		t.Fatalf("Expected cached value, got %v (found=%v)", value, found)
	}

	stats := cache.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %d/%d", stats.Hits, stats.Misses)
	}
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewLRUCache(3, time.Minute)

	cache.Set("trend:1", "a")
	cache.Set("trend:2", "b")
	cache.Set("trend:3", "c")

	// Touch trend:1 so trend:2 becomes the eviction candidate.
	cache.Get("trend:1")
	cache.Set("trend:4", "d")

	if _, found := cache.Get("trend:2"); found {
		t.Error("Expected trend:2 to be evicted")
	}
	if _, found := cache.Get("trend:1"); !found {
		t.Error("Expected recently used trend:1 to survive eviction")
	}
	if cache.Len() != 3 {
		t.Errorf("Expected 3 entries, got %d", cache.Len())
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	cache := NewLRUCache(10, 20*time.Millisecond)

	cache.Set("trend:7", "hot")
	if _, found := cache.Get("trend:7"); !found {
		t.Fatal("Expected fresh entry to be served")
	}

	time.Sleep(40 * time.Millisecond)
	if _, found := cache.Get("trend:7"); found {
		t.Error("Expected expired entry to be dropped")
	}
	if cache.Len() != 0 {
		t.Errorf("Expected expired entry removed on read, len=%d", cache.Len())
	}
}

func TestLRUCacheDeleteAndClear(t *testing.T) {
	cache := NewLRUCache(10, time.Minute)

	cache.Set("trend:1", "a")
	cache.Set("trend:2", "b")

	cache.Delete("trend:1")
	if _, found := cache.Get("trend:1"); found {
		t.Error("Expected deleted entry to be gone")
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Expected empty cache after Clear, len=%d", cache.Len())
	}
}

func TestLRUCacheCleanupExpired(t *testing.T) {
	cache := NewLRUCache(10, 20*time.Millisecond)

	cache.Set("config:1:openai", "a")
	cache.Set("config:2:anthropic", "b")
	time.Sleep(40 * time.Millisecond)
	cache.Set("config:3:gemini", "c")

	removed := cache.CleanupExpired()
	if removed != 2 {
		t.Errorf("Expected 2 expired entries removed, got %d", removed)
	}
	if _, found := cache.Get("config:3:gemini"); !found {
		t.Error("Expected fresh entry to survive cleanup")
	}
}

func TestLRUCacheConcurrentAccess(t *testing.T) {
	cache := NewLRUCache(100, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				key := fmt.Sprintf("config:%d:%d", n, j)
				cache.Set(key, j)
				cache.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if cache.Len() > 100 {
		t.Errorf("Cache exceeded capacity: %d", cache.Len())
	}
}
