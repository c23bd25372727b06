package store

import (
	"strings"
	"sync"

	xxhash "github.com/cespare/xxhash/v2"
)

type (
	// memoryShard is one lock-guarded partition of a Store.
	memoryShard struct {
		// container holds the shard's entries.
		container map[string]string
		// mu protects container.
		mu sync.RWMutex
	}

	// shardHashStrategy is the strategy to use to hash the key to a shard.
	shardHashStrategy int

	// shardHashFunc maps a key to a 64-bit hash.
	shardHashFunc func(string) uint64
)

// FNV-1a parameters for the fallback hash path.
const (
	fnv1aOffset64 = 1469598103934665603
	fnv1aPrime64  = 1099511628211
)

const (
	// shardHashXXHash spreads keys uniformly at a very low per-key cost.
	shardHashXXHash shardHashStrategy = iota
	// shardHashFNV is slower than xxhash but dependency-free.
	shardHashFNV

	defaultShardHashStrategy = shardHashXXHash
)

// newMemoryShard returns an empty shard.
func newMemoryShard() *memoryShard {
	return &memoryShard{
		container: make(map[string]string),
	}
}

// selectShardHashFunc returns the hash function for strategy.
func selectShardHashFunc(strategy shardHashStrategy) shardHashFunc {
	switch strategy {
	case shardHashFNV:
		return fnvShardHash
	case shardHashXXHash:
		return xxhashShardHash
	default:
		return xxhashShardHash
	}
}

func xxhashShardHash(key string) uint64 {
	return xxhash.Sum64String(key)
}

func fnvShardHash(key string) uint64 {
	hash := uint64(fnv1aOffset64)

	for i := 0; i < len(key); i++ {
		hash ^= uint64(key[i])
		hash *= fnv1aPrime64
	}

	return hash
}

// getShardByKey returns the shard that owns key.
func (s *Store) getShardByKey(key string) *memoryShard {
	return s.shards[s.hashKey(key)]
}

// hashKey returns the index of the shard that owns key.
func (s *Store) hashKey(key string) int {
	if s.shardCount == 1 {
		return 0
	}

	hashFn := s.hashFn
	if hashFn == nil {
		hashFn = selectShardHashFunc(defaultShardHashStrategy)
	}

	//nolint:gosec // shardCount is always >= 1, see NewMemoryStore.
	return int(hashFn(key) % uint64(s.shardCount))
}

// lockAllShardReaders read-locks every shard in index order.
func (s *Store) lockAllShardReaders() {
	for i := 0; i < s.shardCount; i++ {
		s.shards[i].mu.RLock()
	}
}

// unlockAllShardReaders releases the locks taken by lockAllShardReaders.
func (s *Store) unlockAllShardReaders() {
	for i := s.shardCount - 1; i >= 0; i-- {
		s.shards[i].mu.RUnlock()
	}
}

// lockAllShardWriters write-locks every shard in index order.
func (s *Store) lockAllShardWriters() {
	for i := 0; i < s.shardCount; i++ {
		s.shards[i].mu.Lock()
	}
}

// unlockAllShardWriters releases the locks taken by lockAllShardWriters.
func (s *Store) unlockAllShardWriters() {
	for i := s.shardCount - 1; i >= 0; i-- {
		s.shards[i].mu.Unlock()
	}
}

// clearAllShards empties every shard, one shard at a time.
func (s *Store) clearAllShards() {
	for _, shard := range s.shards {
		shard.mu.Lock()
		clear(shard.container)
		shard.mu.Unlock()
	}
}

// entryCount safely reads the number of keys in a shard.
func (sh *memoryShard) entryCount() int {
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	return len(sh.container)
}

// compareEntries orders entries by key.
func compareEntries(a, b Entry) int {
	return strings.Compare(a.Key, b.Key)
}
