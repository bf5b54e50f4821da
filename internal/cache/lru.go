package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU is a bounded in-process cache.
type LRU struct {
	entries *lru.Cache[string, []string]
}

var _ Cache = (*LRU)(nil)

// NewLRU creates a cache holding at most size entries. size <= 0 means
// DefaultSize.
func NewLRU(size int) (*LRU, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[string, []string](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &LRU{entries: entries}, nil
}

// Get returns the specifiers stored under key.
func (c *LRU) Get(key string) ([]string, bool) {
	return c.entries.Get(key)
}

// Put stores specifiers under key, evicting the least recently used entry
// when full.
func (c *LRU) Put(key string, specifiers []string) {
	c.entries.Add(key, specifiers)
}

// Len returns the number of cached entries.
func (c *LRU) Len() int {
	return c.entries.Len()
}

// Close drops all entries.
func (c *LRU) Close() error {
	c.entries.Purge()
	return nil
}
