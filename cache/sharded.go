package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/IvanBrykalov/linkedcache/internal/singleflight"
	"github.com/IvanBrykalov/linkedcache/internal/util"
)

// Stats is a point-in-time snapshot of Sharded counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions uint64
}

// shard is one Cache behind one exclusive lock. Cache mutates list links
// and the index on every Get, so there is no read-only path to share.
type shard[K comparable, V any] struct {
	mu sync.Mutex
	c  *Cache[K, V] // guarded by mu

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_      util.CacheLinePad
	hits   util.PaddedAtomicInt64
	misses util.PaddedAtomicInt64
	evicts util.PaddedAtomicUint64
}

// Sharded is a concurrency-safe LRU cache split into independent shards.
// Recency and eviction are per shard, so LRU order is only global with
// Shards: 1.
type Sharded[K comparable, V any] struct {
	shards []*shard[K, V]
	hash   func(K) uint64
	loader func(ctx context.Context, k K) (V, error)

	// singleflight group for coalescing concurrent loads in GetOrLoad.
	sf singleflight.Group[K, V]
}

// NewSharded constructs a Sharded cache. Capacity is split evenly across
// shards (ceil), so the total may slightly exceed opt.Capacity.
// Defaults:
//   - Shards <= 0 -> util.ReasonableShardCount()
//   - Shards > 0  -> rounded up to the next power of two
//
// The shard count never exceeds NextPow2(Capacity), so the total stays
// below 2*Capacity for small capacities.
func NewSharded[K comparable, V any](opt ShardedOptions[K, V]) (*Sharded[K, V], error) {
	if opt.Capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, opt.Capacity)
	}

	n := opt.Shards
	if n <= 0 {
		n = util.ReasonableShardCount()
	} else {
		n = int(util.NextPow2(uint64(n)))
	}
	n = min(n, int(util.NextPow2(uint64(opt.Capacity))))

	perShard := (opt.Capacity + n - 1) / n
	s := &Sharded[K, V]{
		shards: make([]*shard[K, V], n),
		hash:   util.Hash64[K],
		loader: opt.Loader,
	}
	for i := range s.shards {
		sh := &shard[K, V]{}
		shardOpt := opt.Options
		shardOpt.Capacity = perShard
		shardOpt.OnEvict = func(k K, v V, reason EvictReason) {
			sh.evicts.Add(1)
			if opt.OnEvict != nil {
				opt.OnEvict(k, v, reason)
			}
		}
		c, err := New(shardOpt)
		if err != nil {
			return nil, err
		}
		sh.c = c
		s.shards[i] = sh
	}
	return s, nil
}

// Get returns the value for k and promotes it within its shard.
func (s *Sharded[K, V]) Get(k K) (V, bool) {
	sh := s.getShard(k)
	sh.mu.Lock()
	v, ok := sh.c.Get(k)
	sh.mu.Unlock()

	if ok {
		sh.hits.Add(1)
	} else {
		sh.misses.Add(1)
	}
	return v, ok
}

// Peek returns the value for k without changing recency.
func (s *Sharded[K, V]) Peek(k K) (V, bool) {
	sh := s.getShard(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.c.Peek(k)
}

// Set inserts or updates k→v.
func (s *Sharded[K, V]) Set(k K, v V) {
	sh := s.getShard(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.c.Set(k, v)
}

// Add inserts k→v only if absent.
func (s *Sharded[K, V]) Add(k K, v V) bool {
	sh := s.getShard(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.c.Add(k, v)
}

// Remove deletes k if present and returns true on success.
func (s *Sharded[K, V]) Remove(k K) bool {
	sh := s.getShard(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.c.Remove(k)
}

// Len returns the total number of resident entries across all shards.
// Shards are locked one at a time, so the sum is not an atomic snapshot.
func (s *Sharded[K, V]) Len() int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		total += sh.c.Len()
		sh.mu.Unlock()
	}
	return total
}

// Purge evicts every entry from every shard.
func (s *Sharded[K, V]) Purge() {
	for _, sh := range s.shards {
		sh.mu.Lock()
		sh.c.Purge()
		sh.mu.Unlock()
	}
}

// Stats sums the per-shard counters.
func (s *Sharded[K, V]) Stats() Stats {
	var st Stats
	for _, sh := range s.shards {
		st.Hits += sh.hits.Load()
		st.Misses += sh.misses.Load()
		st.Evictions += sh.evicts.Load()
	}
	return st
}

// GetOrLoad returns the value for k; on miss it loads via Loader,
// coalescing concurrent loads for the same key (singleflight).
// If no Loader is configured, returns ErrNoLoader.
func (s *Sharded[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	// fast path
	if v, ok := s.Get(k); ok {
		return v, nil
	}
	if s.loader == nil {
		var zero V
		return zero, ErrNoLoader
	}

	return s.sf.Do(ctx, k, func() (V, error) {
		// double-check after flight join
		if v, ok := s.Peek(k); ok {
			return v, nil
		}
		v, err := s.loader(ctx, k)
		if err == nil {
			s.Set(k, v)
		}
		return v, err
	})
}

// getShard picks a shard by hashing the key.
func (s *Sharded[K, V]) getShard(k K) *shard[K, V] {
	return s.shards[util.ShardIndex(s.hash(k), len(s.shards))]
}
