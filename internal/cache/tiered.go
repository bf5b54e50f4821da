package cache

import "errors"

// Tiered checks a fast cache before a slow one. Warm hits are promoted to
// the fast tier; writes go to both.
type Tiered struct {
	hot  Cache
	warm Cache
}

var _ Cache = (*Tiered)(nil)

// NewTiered layers hot in front of warm.
func NewTiered(hot, warm Cache) *Tiered {
	return &Tiered{hot: hot, warm: warm}
}

// Get implements Cache.
func (c *Tiered) Get(key string) ([]string, bool) {
	if specs, ok := c.hot.Get(key); ok {
		return specs, true
	}
	specs, ok := c.warm.Get(key)
	if ok {
		c.hot.Put(key, specs)
	}
	return specs, ok
}

// Put implements Cache.
func (c *Tiered) Put(key string, specifiers []string) {
	c.hot.Put(key, specifiers)
	c.warm.Put(key, specifiers)
}

// Close closes both tiers.
func (c *Tiered) Close() error {
	return errors.Join(c.hot.Close(), c.warm.Close())
}
