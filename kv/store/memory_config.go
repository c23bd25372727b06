package store

import "runtime"

// MemoryConfig tunes NewMemoryStore. A nil config is valid.
type MemoryConfig struct {
	// ShardCount is the number of independently locked maps.
	// Zero or negative picks one shard per CPU; the result is clamped to
	// [1, MaxShardCount].
	ShardCount int
}

// GetShardCount resolves ShardCount to the number of shards NewMemoryStore builds.
func (cfg *MemoryConfig) GetShardCount() int {
	if cfg == nil || cfg.ShardCount <= 0 {
		return clamp(runtime.NumCPU(), 1, MaxShardCount)
	}

	return clamp(cfg.ShardCount, 1, MaxShardCount)
}
