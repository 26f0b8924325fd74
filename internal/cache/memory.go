package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

const DefaultMemoryMaxEntries = 1024

// MemoryCache is an in-process LRU with per-entry expiry.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
	maxEntries int
	now        func() time.Time
}

type memoryEntry struct {
	key       string
	value     string
	expiresAt time.Time // zero means no expiry
}

func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoryMaxEntries
	}

	return &MemoryCache{
		entries:    make(map[string]*list.Element, maxEntries),
		order:      list.New(),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// WithClock replaces the time source. Meant for tests.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = now

	return c
}

func (c *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*memoryEntry) //nolint:forcetypeassert // Only *memoryEntry is stored.
		entry.value = value
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)

		return nil
	}

	elem := c.order.PushFront(&memoryEntry{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
	})
	c.entries[key] = elem

	c.evictExpiredLocked(now)
	c.enforceSizeLimitLocked()

	return nil
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.lookupLocked(key)
	if !ok {
		return "", false, nil
	}

	c.order.MoveToFront(elem)

	return elem.Value.(*memoryEntry).value, true, nil //nolint:forcetypeassert // Only *memoryEntry is stored.
}

func (c *MemoryCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.lookupLocked(key)

	return ok, nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element, c.maxEntries)
	c.order.Init()

	return nil
}

func (c *MemoryCache) PurgeExpired(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := len(c.entries)
	c.evictExpiredLocked(c.now())

	return int64(before - len(c.entries)), nil
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *MemoryCache) lookupLocked(key string) (*list.Element, bool) {
	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if elem.Value.(*memoryEntry).expired(c.now()) { //nolint:forcetypeassert // Only *memoryEntry is stored.
		c.removeElement(elem)

		return nil, false
	}

	return elem, true
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

func (c *MemoryCache) evictExpiredLocked(now time.Time) {
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()

		if elem.Value.(*memoryEntry).expired(now) { //nolint:forcetypeassert // Only *memoryEntry is stored.
			c.removeElement(elem)
		}
		elem = prev
	}
}

func (c *MemoryCache) enforceSizeLimitLocked() {
	for len(c.entries) > c.maxEntries {
		elem := c.order.Back()
		if elem == nil {
			return
		}
		c.removeElement(elem)
	}
}

func (c *MemoryCache) removeElement(elem *list.Element) {
	delete(c.entries, elem.Value.(*memoryEntry).key) //nolint:forcetypeassert // Only *memoryEntry is stored.
	c.order.Remove(elem)
}
