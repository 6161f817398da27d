// Package cache memoizes classifications of recently seen user agents.
package cache

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/praetorian-inc/uaparser/pkg/types"
)

// Cache is a fixed-size, least recently used map from user agent string to
// its classification. It is safe for concurrent use.
type Cache struct {
	entries *lru.Cache[string, types.UserAgent]
	hits    atomic.Int64
	misses  atomic.Int64
}

// Stats reports cache effectiveness.
type Stats struct {
	Size   int   `json:"size"`
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// New creates a cache holding at most size classifications.
func New(size int) (*Cache, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", size)
	}
	entries, err := lru.New[string, types.UserAgent](size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

// Get returns the cached classification of ua.
func (c *Cache) Get(ua string) (types.UserAgent, bool) {
	v, ok := c.entries.Get(ua)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Add stores the classification of ua, evicting the least recently used
// entry when full.
func (c *Cache) Add(ua string, parsed types.UserAgent) {
	c.entries.Add(ua, parsed)
}

// GetOrParse returns the cached classification of ua, computing and storing
// it with parse on a miss.
func (c *Cache) GetOrParse(ua string, parse func(string) types.UserAgent) types.UserAgent {
	if v, ok := c.Get(ua); ok {
		return v
	}
	v := parse(ua)
	c.Add(ua, v)
	return v
}

// Len returns the number of cached classifications.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	return Stats{Size: c.entries.Len(), Hits: c.hits.Load(), Misses: c.misses.Load()}
}
