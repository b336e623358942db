package cache

import "context"

// EvictReason explains why an entry was removed.
type EvictReason int

const (
	// EvictCapacity: the least-recently-used entry made room for a new key.
	EvictCapacity EvictReason = iota
	// EvictPurge: dropped by Purge.
	EvictPurge
)

// String returns a stable label for the reason.
func (r EvictReason) String() string {
	switch r {
	case EvictCapacity:
		return "capacity"
	case EvictPurge:
		return "purge"
	default:
		return "unknown"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	// Entries reports a change in the number of resident entries.
	// Deltas from several caches (e.g. shards) may be summed.
	Entries(delta int)
}

// Options configures a Cache. Zero values are safe except Capacity;
// defaults are applied in New():
//   - nil Metrics => NoopMetrics
type Options[K comparable, V any] struct {
	// Capacity is the fixed entry count limit. Must be > 0.
	Capacity int

	// OnEvict is called after an entry has been evicted (not on Remove).
	// For Sharded it runs under the shard lock; keep it lightweight.
	OnEvict func(k K, v V, reason EvictReason)

	Metrics Metrics
}

// ShardedOptions configures a Sharded cache.
type ShardedOptions[K comparable, V any] struct {
	Options[K, V]

	// Shards defines the number of shards. If <= 0, an automatic value is
	// chosen (≈ 2*GOMAXPROCS); otherwise rounded up to a power of two.
	Shards int

	// Loader fetches a value on miss. Used by GetOrLoad.
	Loader func(ctx context.Context, k K) (V, error)
}
