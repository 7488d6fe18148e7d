package cache

import (
	"encoding/binary"
	"hash/fnv"
)

const (
	// ShardCount is the number of independent shards in a Sharded cache.
	// Must be a power of 2 for fast modulo via bitwise AND.
	ShardCount = 16

	shardMask = ShardCount - 1
)

// Hasher computes the hash used to pick a shard for a key.
type Hasher[K any] func(K) uint64

// StringHasher computes the FNV-1a hash of a string key.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // fnv.Write never returns an error
	return h.Sum64()
}

// Uint64sHasher returns the FNV-1a hash of a sequence of words. It is the
// building block for hashing small struct keys.
func Uint64sHasher(words ...uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, w := range words {
		binary.LittleEndian.PutUint64(buf[:], w)
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// Sharded spreads keys over ShardCount LRU shards, each with its own lock.
type Sharded[K comparable, V any] struct {
	shards [ShardCount]*LRU[K, V]
	hasher Hasher[K]
}

// NewSharded creates a sharded cache holding up to perShard entries in
// each shard. A perShard of 0 or less means unbounded.
func NewSharded[K comparable, V any](perShard int, hasher Hasher[K]) *Sharded[K, V] {
	c := &Sharded[K, V]{hasher: hasher}
	for i := range c.shards {
		c.shards[i] = NewLRU[K, V](perShard)
	}
	return c
}

func (c *Sharded[K, V]) shard(key K) *LRU[K, V] {
	return c.shards[c.hasher(key)&shardMask]
}

// Get returns the value for key.
func (c *Sharded[K, V]) Get(key K) (V, bool) {
	return c.shard(key).Get(key)
}

// Set stores value under key.
func (c *Sharded[K, V]) Set(key K, value V) {
	c.shard(key).Set(key, value)
}

// Add stores value only if key is absent.
func (c *Sharded[K, V]) Add(key K, value V) bool {
	return c.shard(key).Add(key, value)
}

// GetOrCreate returns the cached value or stores the result of create.
func (c *Sharded[K, V]) GetOrCreate(key K, create func() V) V {
	return c.shard(key).GetOrCreate(key, create)
}

// Delete removes key. Returns true if it was present.
func (c *Sharded[K, V]) Delete(key K) bool {
	return c.shard(key).Delete(key)
}

// Clear empties every shard.
func (c *Sharded[K, V]) Clear() {
	for _, s := range c.shards {
		s.Clear()
	}
}

// Len returns the total number of entries.
func (c *Sharded[K, V]) Len() int {
	n := 0
	for _, s := range c.shards {
		n += s.Len()
	}
	return n
}

// Stats aggregates the counters of every shard.
func (c *Sharded[K, V]) Stats() Stats {
	var out Stats
	for _, s := range c.shards {
		st := s.Stats()
		out.Len += st.Len
		out.Capacity += st.Capacity
		out.Hits += st.Hits
		out.Misses += st.Misses
		out.Evictions += st.Evictions
	}
	return out
}
