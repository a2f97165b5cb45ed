// Package lru memoizes a pure function K→V behind a fixed-capacity
// least-recently-used cache. It wraps hashicorp/golang-lru/v2 rather than
// reimplementing the recency list, since golang-lru already provides an
// O(1) get/evict structure equivalent to the key-tracker + map pairing the
// cache is modeled on.
package lru

import (
	"github.com/pkg/errors"

	hashlru "github.com/hashicorp/golang-lru/v2"
)

// Func is the pure function being memoized.
type Func[K comparable, V any] func(key K) V

// Cache maps K to V, computing misses via Func and evicting the
// least-recently-used entry once capacity is reached. It is not safe for
// concurrent use: a miss computes fn and then inserts, with nothing held
// across the two steps, so callers synchronize externally.
type Cache[K comparable, V any] struct {
	fn    Func[K, V]
	inner *hashlru.Cache[K, V]
}

// New returns a Cache with fixed capacity > 0 wrapping fn.
func New[K comparable, V any](capacity int, fn Func[K, V]) (*Cache[K, V], error) {
	if capacity <= 0 {
		return nil, errors.Errorf("lru: capacity must be > 0, got %d", capacity)
	}
	inner, err := hashlru.New[K, V](capacity)
	if err != nil {
		return nil, errors.Wrap(err, "lru: constructing backing cache")
	}
	return &Cache[K, V]{fn: fn, inner: inner}, nil
}

// Get returns fn(key), from cache on a hit or freshly computed (and cached)
// on a miss.
func (c *Cache[K, V]) Get(key K) V {
	if v, ok := c.inner.Get(key); ok {
		return v
	}
	v := c.fn(key)
	c.inner.Add(key, v)
	return v
}

// Len reports the number of entries currently cached.
func (c *Cache[K, V]) Len() int {
	return c.inner.Len()
}

// Invalidate clears the cache entirely.
func (c *Cache[K, V]) Invalidate() {
	c.inner.Purge()
}
