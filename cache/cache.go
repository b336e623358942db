package cache

import (
	"errors"
	"fmt"

	"github.com/IvanBrykalov/linkedcache/list"
)

var (
	// ErrInvalidCapacity is returned by constructors when Capacity <= 0.
	ErrInvalidCapacity = errors.New("cache: capacity must be > 0")
	// ErrNoLoader is returned by GetOrLoad when no Loader was configured.
	ErrNoLoader = errors.New("cache: no Loader provided")
)

// entry is the list payload: the key travels with the value because
// eviction starts from the tail node, not from the index.
type entry[K comparable, V any] struct {
	key K
	val V
}

// Cache is a fixed-capacity LRU cache.
//
// It keeps a key→Handle index next to a recency list (head is MRU, tail
// is LRU). The index never owns nodes; it only addresses them in the list's
// arena, and a key is deleted from it in the same step its node is removed.
//
// Cache is not safe for concurrent use; see Sharded.
type Cache[K comparable, V any] struct {
	cap   int
	index map[K]list.Handle
	order *list.List[entry[K, V]]

	opt Options[K, V]
}

// New constructs a Cache with the provided Options.
// Returns an error wrapping ErrInvalidCapacity if opt.Capacity <= 0.
func New[K comparable, V any](opt Options[K, V]) (*Cache[K, V], error) {
	if opt.Capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, opt.Capacity)
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	return &Cache[K, V]{
		cap:   opt.Capacity,
		index: make(map[K]list.Handle, opt.Capacity),
		order: list.New[entry[K, V]](opt.Capacity),
		opt:   opt,
	}, nil
}

// Get returns the value for k and promotes it to most recently used.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	h, ok := c.index[k]
	if !ok {
		c.opt.Metrics.Miss()
		var zero V
		return zero, false
	}
	c.order.MoveToFront(h) // no-op when already MRU
	c.opt.Metrics.Hit()
	return c.order.Value(h).val, true
}

// Peek returns the value for k without changing its recency.
func (c *Cache[K, V]) Peek(k K) (V, bool) {
	h, ok := c.index[k]
	if !ok {
		var zero V
		return zero, false
	}
	return c.order.Value(h).val, true
}

// Contains reports whether k is resident, without changing its recency.
func (c *Cache[K, V]) Contains(k K) bool {
	_, ok := c.index[k]
	return ok
}

// Set inserts or updates k→v and makes k the most recently used entry.
// A new key on a full cache first evicts the least recently used entry.
func (c *Cache[K, V]) Set(k K, v V) {
	if h, ok := c.index[k]; ok {
		c.order.Value(h).val = v
		c.order.MoveToFront(h)
		return
	}
	c.insert(k, v)
}

// Add inserts k→v only if k is absent. Returns false on duplicate.
func (c *Cache[K, V]) Add(k K, v V) bool {
	if _, ok := c.index[k]; ok {
		return false
	}
	c.insert(k, v)
	return true
}

// Remove deletes k if present and returns true on success.
// Explicit removal is not reported as an eviction.
func (c *Cache[K, V]) Remove(k K) bool {
	h, ok := c.index[k]
	if !ok {
		return false
	}
	delete(c.index, k)
	c.order.Remove(h)
	c.opt.Metrics.Entries(-1)
	return true
}

// Oldest returns the least recently used entry without promoting it.
func (c *Cache[K, V]) Oldest() (K, V, bool) {
	h := c.order.Back()
	if h == list.Nil {
		var (
			zk K
			zv V
		)
		return zk, zv, false
	}
	e := c.order.Value(h)
	return e.key, e.val, true
}

// Keys returns resident keys from most to least recently used.
func (c *Cache[K, V]) Keys() []K {
	out := make([]K, 0, c.order.Len())
	for e := range c.order.All() {
		out = append(out, e.key)
	}
	return out
}

// Purge evicts every entry, oldest first, reporting EvictPurge.
func (c *Cache[K, V]) Purge() {
	n := c.order.Len()
	for {
		e, ok := c.order.RemoveFromTail()
		if !ok {
			break
		}
		delete(c.index, e.key)
		c.evicted(e, EvictPurge)
	}
	if n > 0 {
		c.opt.Metrics.Entries(-n)
	}
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int { return c.order.Len() }

// Cap returns the fixed capacity.
func (c *Cache[K, V]) Cap() int { return c.cap }

// ---- internals ----

// insert admits a key known to be absent, evicting the LRU entry when full.
// The new entry is linked and indexed before OnEvict runs, so a callback
// that writes back into the cache sees a consistent, full cache.
func (c *Cache[K, V]) insert(k K, v V) {
	var (
		old   entry[K, V]
		evict bool
	)
	if c.order.Len() >= c.cap {
		old, evict = c.order.RemoveFromTail()
		delete(c.index, old.key)
	} else {
		c.opt.Metrics.Entries(1)
	}
	c.index[k] = c.order.AddToHead(entry[K, V]{key: k, val: v})
	if evict {
		c.evicted(old, EvictCapacity)
	}
}

// evicted reports an eviction to metrics and the OnEvict callback.
func (c *Cache[K, V]) evicted(e entry[K, V], reason EvictReason) {
	c.opt.Metrics.Evict(reason)
	if cb := c.opt.OnEvict; cb != nil {
		cb(e.key, e.val, reason)
	}
}
