// Package util contains internal helpers for Sharded: key hashing, shard
// sizing and cache-line padding.
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import (
	"fmt"
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
)

const (
	fnvOffset64 = 1469598103934665603
	fnvPrime64  = 1099511628211
)

// seed is fixed per process so equal keys always land on the same shard.
var seed = maphash.MakeSeed()

// Hash64 hashes comparable keys for shard selection.
// Byte-like keys use xxHash; integer-like keys use FNV-1a over their eight
// little-endian bytes, which avoids any allocation. fmt.Stringer keys hash
// their String(). Any other comparable key (structs, pointers, floats,
// interfaces) goes through maphash.Comparable.
func Hash64[K comparable](k K) uint64 {
	switch v := any(k).(type) {
	case string:
		return xxhash.Sum64String(v)
	case []byte:
		return xxhash.Sum64(v)
	case [16]byte:
		return xxhash.Sum64(v[:])
	case [32]byte:
		return xxhash.Sum64(v[:])
	case [64]byte:
		return xxhash.Sum64(v[:])
	case bool:
		if v {
			return fnvUint64(1)
		}
		return fnvUint64(0)

	case uint8:
		return fnvUint64(uint64(v))
	case uint16:
		return fnvUint64(uint64(v))
	case uint32:
		return fnvUint64(uint64(v))
	case uint64:
		return fnvUint64(v)
	case uint:
		return fnvUint64(uint64(v))
	case uintptr:
		return fnvUint64(uint64(v))
	// signed: zero-extend the same-width unsigned bit pattern
	case int8:
		return fnvUint64(uint64(uint8(v)))
	case int16:
		return fnvUint64(uint64(uint16(v)))
	case int32:
		return fnvUint64(uint64(uint32(v)))
	case int64:
		return fnvUint64(uint64(v))
	case int:
		return fnvUint64(uint64(v))

	case fmt.Stringer:
		return xxhash.Sum64String(v.String())
	default:
		return maphash.Comparable(seed, k)
	}
}

// fnvUint64 hashes the 8 little-endian bytes of u.
func fnvUint64(u uint64) uint64 {
	h := uint64(fnvOffset64)
	for i := 0; i < 8; i++ {
		h ^= uint64(byte(u))
		h *= fnvPrime64
		u >>= 8
	}
	return h
}
