// Package cache provides a generic, fixed-capacity LRU cache built on the
// arena-backed doubly linked list in package list, plus a sharded wrapper
// for concurrent use.
//
// Design
//
//   - Storage: a map[K]list.Handle for lookups and a MRU↔LRU list of
//     (key, value) entries for ordering. Get and Set relocate the touched
//     node by handle; nothing scans the list. All operations are O(1).
//
//   - Eviction: strictly least-recently-used. Inserting a new key into a full
//     cache removes the tail entry from both the index and the list before the
//     new entry is added at the head. Capacity is fixed at construction.
//
//   - Errors: New and NewSharded reject Capacity <= 0 with an error wrapping
//     ErrInvalidCapacity. Misses are reported as (zero, false).
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Entries signals.
//     By default NoopMetrics is used; plug the metrics/prom adapter to export
//     them to Prometheus.
//
//   - Callbacks: Options.OnEvict(k, v, reason) is called for every eviction
//     (reason is EvictCapacity or EvictPurge), never for Remove.
//
//   - Concurrency: Cache is not safe for concurrent use. Sharded splits the
//     capacity over power-of-two shards, each a Cache behind one mutex, and
//     adds GetOrLoad with singleflight load coalescing.
//
// Basic usage
//
//	c, err := cache.New(cache.Options[string, int]{Capacity: 2})
//	if err != nil {
//	    return err
//	}
//	c.Set("a", 1)
//	c.Set("b", 2)
//	c.Get("a")    // a is now most recently used
//	c.Set("c", 3) // evicts b
//
// Concurrent usage with a loader
//
//	s, err := cache.NewSharded(cache.ShardedOptions[string, string]{
//	    Options: cache.Options[string, string]{Capacity: 10_000},
//	    Loader: func(ctx context.Context, k string) (string, error) {
//	        return "v:" + k, nil
//	    },
//	})
//	v, err := s.GetOrLoad(ctx, "key")
//
// Sharded routes keys by hash: xxHash for byte-like and fmt.Stringer keys,
// FNV-1a for integers and hash/maphash for any other comparable key.
package cache
