package cache

import (
	"context"
	"sync"
	"time"

	"courtmates_server/models"
)

// MemoryCache implements ProfileCache with in-process storage. When
// maxEntries is reached the oldest inserted profile is evicted; a zero
// ttl keeps profiles for the life of the process.
type MemoryCache struct {
	items      map[string]Item[models.PlayerProfile]
	order      []string
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	mu         sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache instance. maxEntries <= 0
// means unbounded.
func NewMemoryCache(maxEntries int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		items:      make(map[string]Item[models.PlayerProfile]),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

func (c *MemoryCache) GetMany(_ context.Context, ids []string) (map[string]models.PlayerProfile, error) {
	result := make(map[string]models.PlayerProfile)

	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	for _, id := range ids {
		if item, ok := c.items[id]; ok && !item.expired(now) {
			result[id] = item.Value
		}
	}
	return result, nil
}

func (c *MemoryCache) Merge(_ context.Context, incoming map[string]models.PlayerProfile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var exp *time.Time
	if c.ttl > 0 {
		t := c.now().Add(c.ttl)
		exp = &t
	}

	for id, profile := range incoming {
		if id == "" {
			return ErrInvalidKey
		}
		if _, exists := c.items[id]; !exists {
			c.evictLocked()
			c.order = append(c.order, id)
		}
		c.items[id] = Item[models.PlayerProfile]{Value: profile, Expiration: exp}
	}
	return nil
}

// Len returns the number of stored profiles, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *MemoryCache) evictLocked() {
	if c.maxEntries <= 0 {
		return
	}
	for len(c.items) >= c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.items, oldest)
	}
}
