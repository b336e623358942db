package cache

// Store is the key/value surface shared by Cache and Sharded.
//
// Cache implements it without any locking; Sharded implements it for
// concurrent use. Both run every operation in O(1): one map access plus a
// constant number of list link fixes.
type Store[K comparable, V any] interface {
	// Add inserts k→v only if k is not present.
	// Returns false if the key already exists (no update is performed).
	Add(k K, v V) bool

	// Set inserts or updates k→v and makes k the most recently used entry.
	// Inserting a new key into a full cache evicts the least recently used one.
	Set(k K, v V)

	// Get returns the value for k and a presence flag.
	// On hit, k becomes the most recently used entry.
	Get(k K) (V, bool)

	// Peek is Get without touching recency.
	Peek(k K) (V, bool)

	// Remove deletes k if present and returns true on success.
	Remove(k K) bool

	// Len returns the number of resident entries.
	Len() int
}

var (
	_ Store[string, int] = (*Cache[string, int])(nil)
	_ Store[string, int] = (*Sharded[string, int])(nil)
)
