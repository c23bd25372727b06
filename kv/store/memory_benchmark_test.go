package store

import (
	"strconv"
	"testing"
)

// BenchmarkStore_Set measures parallel inserts across shards.
func BenchmarkStore_Set(b *testing.B) {
	store := NewStore()

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		var i int
		for pb.Next() {
			store.Set("key-"+strconv.Itoa(i%4096), "value")
			i++
		}
	})
}

// BenchmarkStore_Get measures parallel reads of a warm store.
func BenchmarkStore_Get(b *testing.B) {
	store := NewStore()
	for i := range 4096 {
		store.Set("key-"+strconv.Itoa(i), "value")
	}

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		var i int
		for pb.Next() {
			_, _ = store.Get("key-" + strconv.Itoa(i%4096))
			i++
		}
	})
}

// BenchmarkShardHash compares the available shard hash strategies.
func BenchmarkShardHash(b *testing.B) {
	strategies := map[string]shardHashStrategy{
		"xxhash": shardHashXXHash,
		"fnv":    shardHashFNV,
	}

	for name, strategy := range strategies {
		hashFn := selectShardHashFunc(strategy)

		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				_ = hashFn("benchmark-key-" + strconv.Itoa(i&1023))
			}
		})
	}
}
