package automapper

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CacheKey identifies one traversal.
type CacheKey struct {
	BaseTable  string
	StartTable string
	Prefix     string
	MaxDepth   int
	MaxNodes   int
}

func (k CacheKey) String() string {
	return fmt.Sprintf("%s|%s|%s|%d|%d", k.BaseTable, k.StartTable, k.Prefix, k.MaxDepth, k.MaxNodes)
}

// Cache memoizes traversal results. Each key is written at most once;
// concurrent misses for one key share a single traversal. Clear it whenever
// the schema changes.
type Cache struct {
	mu      sync.RWMutex
	entries map[CacheKey][]target
	group   singleflight.Group
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[CacheKey][]target)}
}

// Len returns the number of cached traversals.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[CacheKey][]target)
}

func (c *Cache) get(key CacheKey) ([]target, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.entries[key]

	return v, ok
}

// load returns the cached traversal for key, computing it on a miss.
// The computed value is stored only when commit is set.
func (c *Cache) load(key CacheKey, commit bool, compute func() ([]target, error)) ([]target, bool, error) {
	if v, ok := c.get(key); ok {
		return v, true, nil
	}

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		return compute()
	})
	if err != nil {
		return nil, false, err
	}

	targets, _ := v.([]target)

	if commit {
		c.mu.Lock()
		if _, exists := c.entries[key]; !exists {
			c.entries[key] = targets
		}
		c.mu.Unlock()
	}

	return targets, false, nil
}
