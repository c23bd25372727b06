package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// BenchmarkBackup measures snapshot export throughput for both backends.
func BenchmarkBackup(b *testing.B) {
	const totalSeedKeys = 5_000

	backends := map[string]func(b *testing.B) Backend{
		"memory": func(*testing.B) Backend { return AsBackend(NewStore()) },
		"disk":   func(b *testing.B) Backend { return newBenchmarkDiskStore(b, true) },
	}

	for name, newBackend := range backends {
		b.Run(name, func(b *testing.B) {
			backend := newBackend(b)
			seedBackend(b, backend, totalSeedKeys)

			snapshotPath := filepath.Join(b.TempDir(), "backup.db")

			b.ReportAllocs()

			for b.Loop() {
				_, err := backend.Backup(&BackupOptions{FileName: snapshotPath})
				require.NoError(b, err)
			}
		})
	}
}

// BenchmarkRestore measures snapshot import throughput into the memory store.
func BenchmarkRestore(b *testing.B) {
	const totalSeedKeys = 5_000

	source := AsBackend(NewStore())
	seedBackend(b, source, totalSeedKeys)

	snapshotPath := filepath.Join(b.TempDir(), "restore.db")

	_, err := source.Backup(&BackupOptions{FileName: snapshotPath})
	require.NoError(b, err)

	target := NewStore()

	b.ReportAllocs()

	for b.Loop() {
		_, err := target.Restore(&RestoreOptions{FileName: snapshotPath})
		require.NoError(b, err)
	}
}
