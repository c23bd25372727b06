package store

import (
	"slices"
)

// Store is an in-memory key-value container of owned string keys and values.
//
// Entries are spread over independently locked shards, so a Store is safe
// for concurrent use. Keys are unique; insertion order is not preserved.
// Use NewStore or NewMemoryStore; the zero value is not ready for use.
type Store struct {
	// shards hold the entries; a key always lives in shards[hashKey(key)].
	shards []*memoryShard
	// shardCount is len(shards), cached for the hot path.
	shardCount int
	// hashFn maps a key to a shard; nil means the default strategy.
	hashFn shardHashFunc
}

// MaxShardCount caps the number of shards a Store may be split into.
const MaxShardCount = 65536

// NewStore returns an empty Store with the default shard count.
func NewStore() *Store {
	return NewMemoryStore(nil)
}

// NewMemoryStore returns an empty Store configured by cfg.
// A nil cfg selects the defaults described on MemoryConfig.
func NewMemoryStore(cfg *MemoryConfig) *Store {
	shardCount := cfg.GetShardCount()

	shards := make([]*memoryShard, shardCount)
	for i := range shards {
		shards[i] = newMemoryShard()
	}

	return &Store{
		shards:     shards,
		shardCount: shardCount,
		hashFn:     selectShardHashFunc(defaultShardHashStrategy),
	}
}

// Set inserts value under key, overwriting any previous value.
func (s *Store) Set(key, value string) {
	shard := s.getShardByKey(key)

	shard.mu.Lock()
	shard.container[key] = value
	shard.mu.Unlock()
}

// Get returns the value stored under key.
// The boolean is false, and the value empty, when key is absent.
func (s *Store) Get(key string) (string, bool) {
	shard := s.getShardByKey(key)

	shard.mu.RLock()
	defer shard.mu.RUnlock()

	value, ok := shard.container[key]

	return value, ok
}

// Delete removes key and reports whether it was present.
func (s *Store) Delete(key string) bool {
	shard := s.getShardByKey(key)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	if _, ok := shard.container[key]; !ok {
		return false
	}

	delete(shard.container, key)

	return true
}

// Contains reports whether key is present.
func (s *Store) Contains(key string) bool {
	shard := s.getShardByKey(key)

	shard.mu.RLock()
	defer shard.mu.RUnlock()

	_, ok := shard.container[key]

	return ok
}

// Len returns the number of entries.
//
// Shards are counted one at a time, so under concurrent writes the result
// reflects each shard at the moment it was visited.
func (s *Store) Len() int {
	var total int

	for _, shard := range s.shards {
		total += shard.entryCount()
	}

	return total
}

// IsEmpty reports whether the store holds no entries.
func (s *Store) IsEmpty() bool {
	for _, shard := range s.shards {
		if shard.entryCount() > 0 {
			return false
		}
	}

	return true
}

// Keys returns every key in ascending lexicographic order.
func (s *Store) Keys() []string {
	s.lockAllShardReaders()
	keys := s.cloneKeysLocked()
	s.unlockAllShardReaders()

	slices.Sort(keys)

	return keys
}

// Range calls fn for each entry in ascending key order until fn returns false.
//
// Range iterates over a copy taken under all shard read locks, so fn may
// freely call back into the store.
func (s *Store) Range(fn func(key, value string) bool) {
	entries := s.snapshotEntries()

	for _, entry := range entries {
		if !fn(entry.Key, entry.Value) {
			return
		}
	}
}

// Clear removes every entry.
func (s *Store) Clear() {
	s.clearAllShards()
}

// cloneKeysLocked collects the keys of every shard.
// Caller must hold every shard's read lock.
func (s *Store) cloneKeysLocked() []string {
	var total int
	for _, shard := range s.shards {
		total += len(shard.container)
	}

	keys := make([]string, 0, total)

	for _, shard := range s.shards {
		for key := range shard.container {
			keys = append(keys, key)
		}
	}

	return keys
}

// snapshotEntries copies every entry under all shard read locks and returns
// them sorted by key. The copy is a consistent point-in-time view.
func (s *Store) snapshotEntries() []Entry {
	s.lockAllShardReaders()

	var total int
	for _, shard := range s.shards {
		total += len(shard.container)
	}

	entries := make([]Entry, 0, total)

	for _, shard := range s.shards {
		for key, value := range shard.container {
			entries = append(entries, Entry{Key: key, Value: value})
		}
	}

	s.unlockAllShardReaders()

	slices.SortFunc(entries, compareEntries)

	return entries
}
