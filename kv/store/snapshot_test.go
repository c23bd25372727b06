package store

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

// TestStore_BackupRestoreRoundtrip backs up a memory store and restores it into another.
func TestStore_BackupRestoreRoundtrip(t *testing.T) {
	t.Parallel()

	fileName := filepath.Join(t.TempDir(), "snapshots", "memory.db")

	source := NewMemoryStore(&MemoryConfig{ShardCount: 4})
	for i := range 100 {
		source.Set("key-"+strconv.Itoa(i), "value-"+strconv.Itoa(i))
	}

	source.Set("empty", "")

	backup, err := source.Backup(&BackupOptions{FileName: fileName})
	require.NoError(t, err)
	assert.Equal(t, 101, backup.TotalEntries)
	assert.Positive(t, backup.BytesWritten)

	target := NewMemoryStore(&MemoryConfig{ShardCount: 2})
	target.Set("stale", "gone after restore")

	restore, err := target.Restore(&RestoreOptions{FileName: fileName})
	require.NoError(t, err)
	assert.Equal(t, 101, restore.TotalEntries)

	assert.Equal(t, source.Keys(), target.Keys())
	assert.False(t, target.Contains("stale"), "restore must replace existing contents")

	value, ok := target.Get("key-42")
	require.True(t, ok)
	assert.Equal(t, "value-42", value)

	value, ok = target.Get("empty")
	require.True(t, ok)
	assert.Empty(t, value)
}

// TestStore_BackupEmpty verifies an empty store produces a restorable snapshot.
func TestStore_BackupEmpty(t *testing.T) {
	t.Parallel()

	fileName := filepath.Join(t.TempDir(), "empty.db")

	summary, err := NewStore().Backup(&BackupOptions{FileName: fileName})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalEntries)

	target := NewStore()
	target.Set("key", "value")

	restored, err := target.Restore(&RestoreOptions{FileName: fileName})
	require.NoError(t, err)
	assert.Equal(t, 0, restored.TotalEntries)
	assert.True(t, target.IsEmpty())
}

// TestStore_BackupLeavesNoTempFiles verifies the temporary file is renamed away.
func TestStore_BackupLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fileName := filepath.Join(dir, "memory.db")

	store := NewStore()
	store.Set("key", "value")

	_, err := store.Backup(&BackupOptions{FileName: fileName})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "memory.db", entries[0].Name())
	assert.False(t, strings.HasSuffix(entries[0].Name(), ".tmp"))
}

// TestStore_RestoreBudgets verifies MaxEntries and MaxBytes caps leave the store untouched.
func TestStore_RestoreBudgets(t *testing.T) {
	t.Parallel()

	fileName := filepath.Join(t.TempDir(), "budget.db")

	source := NewStore()
	for i := range 10 {
		source.Set("key-"+strconv.Itoa(i), "0123456789")
	}

	_, err := source.Backup(&BackupOptions{FileName: fileName})
	require.NoError(t, err)

	target := NewStore()
	target.Set("keep", "me")

	_, err = target.Restore(&RestoreOptions{FileName: fileName, MaxEntries: 5})
	require.ErrorIs(t, err, ErrRestoreBudgetEntriesExceeded)

	_, err = target.Restore(&RestoreOptions{FileName: fileName, MaxBytes: 32})
	require.ErrorIs(t, err, ErrRestoreBudgetBytesExceeded)

	assert.Equal(t, []string{"keep"}, target.Keys(), "failed restore must not modify the store")

	summary, err := target.Restore(&RestoreOptions{FileName: fileName, MaxEntries: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, summary.TotalEntries)
}

// TestStore_RestoreErrors covers nil options and a missing snapshot file.
func TestStore_RestoreErrors(t *testing.T) {
	t.Parallel()

	store := NewStore()

	_, err := store.Restore(nil)
	require.ErrorIs(t, err, ErrRestoreOptionsNil)

	_, err = store.Backup(nil)
	require.ErrorIs(t, err, ErrBackupOptionsNil)

	_, err = store.Restore(&RestoreOptions{FileName: filepath.Join(t.TempDir(), "missing.db")})
	require.ErrorIs(t, err, ErrSnapshotNotFound)
}

// TestDiskStore_BackupRestore copies a disk store to a snapshot and restores it
// into both a memory store and a second disk store.
func TestDiskStore_BackupRestore(t *testing.T) {
	t.Parallel()

	snapshot := filepath.Join(t.TempDir(), "disk-snapshot.db")

	source := newTestDiskStore(t, nil)
	for i := range 20 {
		require.NoError(t, source.Set("key-"+strconv.Itoa(i), "value-"+strconv.Itoa(i)))
	}

	summary, err := source.Backup(&BackupOptions{FileName: snapshot})
	require.NoError(t, err)
	assert.Equal(t, 20, summary.TotalEntries)
	assert.Positive(t, summary.BytesWritten)

	memory := NewStore()
	restored, err := memory.Restore(&RestoreOptions{FileName: snapshot})
	require.NoError(t, err)
	assert.Equal(t, 20, restored.TotalEntries)

	value, ok := memory.Get("key-7")
	require.True(t, ok)
	assert.Equal(t, "value-7", value)

	target := newTestDiskStore(t, nil)
	require.NoError(t, target.Set("stale", "value"))

	restored, err = target.Restore(&RestoreOptions{FileName: snapshot})
	require.NoError(t, err)
	assert.Equal(t, 20, restored.TotalEntries)

	found, err := target.Contains("stale")
	require.NoError(t, err)
	assert.False(t, found, "restore must replace existing contents")

	requireBackendValue(t, target, "key-19", "value-19")
}

// TestDiskStore_BackupOntoItself verifies self-backup only reports the contents.
func TestDiskStore_BackupOntoItself(t *testing.T) {
	t.Parallel()

	store := newTestDiskStore(t, nil)
	require.NoError(t, store.Set("key", "value"))

	summary, err := store.Backup(&BackupOptions{FileName: store.Path()})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalEntries)

	restored, err := store.Restore(&RestoreOptions{FileName: store.Path()})
	require.NoError(t, err)
	assert.Equal(t, 1, restored.TotalEntries)

	requireBackendValue(t, store, "key", "value")
}

// TestMemorySnapshot_RestoresIntoDiskStore verifies the memory snapshot format
// matches the disk store layout.
func TestMemorySnapshot_RestoresIntoDiskStore(t *testing.T) {
	t.Parallel()

	snapshot := filepath.Join(t.TempDir(), "memory.db")

	memory := NewStore()
	memory.Set("a", "1")
	memory.Set("b", "2")

	_, err := memory.Backup(&BackupOptions{FileName: snapshot})
	require.NoError(t, err)

	disk := newTestDiskStore(t, nil)

	_, err = disk.Restore(&RestoreOptions{FileName: snapshot})
	require.NoError(t, err)

	keys, err := disk.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
}

// TestStore_BackupRestoreEmptyKey verifies an empty key survives snapshots in
// both directions between memory and disk.
func TestStore_BackupRestoreEmptyKey(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	memorySnapshot := filepath.Join(dir, "memory.db")
	diskSnapshot := filepath.Join(dir, "disk.db")

	source := NewStore()
	source.Set("", "root")
	source.Set("a", "1")

	summary, err := source.Backup(&BackupOptions{FileName: memorySnapshot})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalEntries)

	disk := newTestDiskStore(t, nil)

	_, err = disk.Restore(&RestoreOptions{FileName: memorySnapshot})
	require.NoError(t, err)
	requireBackendValue(t, disk, "", "root")

	_, err = disk.Backup(&BackupOptions{FileName: diskSnapshot})
	require.NoError(t, err)

	target := NewStore()

	restored, err := target.Restore(&RestoreOptions{FileName: diskSnapshot})
	require.NoError(t, err)
	assert.Equal(t, 2, restored.TotalEntries)

	value, ok := target.Get("")
	require.True(t, ok)
	assert.Equal(t, "root", value)
}

// TestStore_BackupRejectsOversizedKey verifies a key past MaxDiskKeyLen fails
// the backup without leaving a snapshot behind.
func TestStore_BackupRejectsOversizedKey(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fileName := filepath.Join(dir, "memory.db")

	store := NewStore()
	store.Set(strings.Repeat("k", MaxDiskKeyLen+1), "v")

	_, err := store.Backup(&BackupOptions{FileName: fileName})
	require.ErrorIs(t, err, ErrKeyTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed backup must not leave files")
}

// TestStore_RestoreRejectsForeignKeys verifies a bbolt file written by another
// program is refused instead of loaded with mangled keys.
func TestStore_RestoreRejectsForeignKeys(t *testing.T) {
	t.Parallel()

	fileName := filepath.Join(t.TempDir(), "foreign.db")

	db, err := bolt.Open(fileName, snapshotFileMode, nil)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		bucket, createErr := tx.CreateBucket(defaultBBoltBucketBytes)
		if createErr != nil {
			return createErr
		}

		return bucket.Put([]byte("plain"), []byte("value"))
	}))
	require.NoError(t, db.Close())

	store := NewStore()
	store.Set("keep", "me")

	_, err = store.Restore(&RestoreOptions{FileName: fileName})
	require.ErrorIs(t, err, ErrSnapshotKeyInvalid)
	require.ErrorIs(t, err, ErrSnapshotReadFailed)
	assert.Equal(t, []string{"keep"}, store.Keys())
}
