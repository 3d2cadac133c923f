package storage

import (
	"container/list"
	"sync"
	"time"
)

// cacheEntry is the value stored behind each eviction-list element.
type cacheEntry struct {
	key       string
	value     interface{}
	expiresAt time.Time
}

// LRUCache keeps resolved provider configs and hot trends out of the
// database on repeat lookups. Entries expire after a fixed TTL and the
// least recently used entry is evicted once capacity is reached.
type LRUCache struct {
	mu       sync.RWMutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	order    *list.List // front = most recently used

	hits   int64
	misses int64
}

func NewLRUCache(capacity int, ttl time.Duration) *LRUCache {
	return &LRUCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get returns the cached value for key, if present and not expired. An
// expired entry is removed on the spot and counts as a miss.
func (c *LRUCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, found := c.items[key]
	if !found {
		c.misses++
		return nil, false
	}

	entry := elem.Value.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.removeElement(elem)
		c.misses++
		return nil, false
	}

	c.order.MoveToFront(elem)
	c.hits++
	return entry.value, true
}

// Set stores value under key with a fresh TTL, evicting the least
// recently used entry when the cache is full.
func (c *LRUCache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(c.ttl)

	if elem, found := c.items[key]; found {
		c.order.MoveToFront(elem)
		entry := elem.Value.(*cacheEntry)
		entry.value = value
		entry.expiresAt = expiresAt
		return
	}

	elem := c.order.PushFront(&cacheEntry{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
	})
	c.items[key] = elem

	if c.order.Len() > c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// Delete drops key from the cache. Used to invalidate a trend after an
// update or delete so readers never see stale rows.
func (c *LRUCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, found := c.items[key]; found {
		c.removeElement(elem)
	}
}

// Clear empties the cache. Hit counters survive so operational stats
// stay cumulative.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element, c.capacity)
	c.order.Init()
}

func (c *LRUCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.order.Len()
}

// removeElement unlinks elem from both the eviction list and the index.
// Caller holds the lock.
func (c *LRUCache) removeElement(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.items, elem.Value.(*cacheEntry).key)
}

// CleanupExpired removes every expired entry and reports how many were
// dropped. Called from a background ticker so TTLs hold even for keys
// that are never read again.
func (c *LRUCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0

	var next *list.Element
	for elem := c.order.Back(); elem != nil; elem = next {
		next = elem.Prev()
		if now.After(elem.Value.(*cacheEntry).expiresAt) {
			c.removeElement(elem)
			removed++
		}
	}

	return removed
}

// CacheStats is a point-in-time snapshot for the stats endpoint.
type CacheStats struct {
	Capacity int           `json:"capacity"`
	Size     int           `json:"size"`
	TTL      time.Duration `json:"ttl"`
	Hits     int64         `json:"hits"`
	Misses   int64         `json:"misses"`
}

func (c *LRUCache) GetStats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return CacheStats{
		Capacity: c.capacity,
		Size:     c.order.Len(),
		TTL:      c.ttl,
		Hits:     c.hits,
		Misses:   c.misses,
	}
}
