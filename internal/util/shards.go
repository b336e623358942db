package util

import "runtime"

// MaxShards caps the automatic shard count.
const MaxShards = 256

// ReasonableShardCount picks a default shard count from CPU parallelism:
// nextPow2(2*GOMAXPROCS), clamped to [1..MaxShards].
func ReasonableShardCount() int {
	p := max(runtime.GOMAXPROCS(0), 1)
	return min(int(NextPow2(uint64(p*2))), MaxShards)
}

// ShardIndex maps a 64-bit hash to a shard index. Power-of-two counts take
// the mask path; other counts fall back to modulo.
func ShardIndex(hash uint64, shards int) int {
	if shards <= 1 {
		return 0
	}
	if IsPowerOfTwo(uint64(shards)) {
		return int(hash & uint64(shards-1))
	}
	return int(hash % uint64(shards))
}
