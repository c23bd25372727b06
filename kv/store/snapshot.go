package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	bolt "go.etcd.io/bbolt"
)

type (
	// BackupOptions configure how Backup writes a bbolt snapshot.
	BackupOptions struct {
		// FileName is the destination path for the snapshot.
		// Empty means the default disk store path.
		FileName string
	}

	// BackupSummary reports metrics about a backup operation.
	BackupSummary struct {
		// TotalEntries is the number of key/value pairs captured in the snapshot.
		TotalEntries int
		// BytesWritten is the final size of the snapshot file on disk.
		BytesWritten int64
	}

	// RestoreOptions configure Restore behavior.
	RestoreOptions struct {
		// FileName is the path to the bbolt snapshot file.
		// Empty means the default disk store path.
		FileName string
		// MaxEntries limits how many entries may be loaded.
		// Zero disables the cap.
		MaxEntries int
		// MaxBytes limits the aggregate key/value payload loaded during restore.
		// Zero disables the cap.
		MaxBytes int64
	}

	// RestoreSummary reports the outcome of a restore operation.
	RestoreSummary struct {
		// TotalEntries is the number of key/value pairs loaded from the snapshot.
		TotalEntries int
	}

	// bboltBatchWriter buffers entries and flushes them in bounded bbolt transactions.
	bboltBatchWriter struct {
		db           *bolt.DB
		pending      []Entry
		pendingBytes int
	}

	// restoreBudget tracks safety limits during restore operations.
	restoreBudget struct {
		maxEntries int
		maxBytes   int64
		entries    int
		bytesUsed  int64
	}
)

const (
	// defaultMapPreallocationCapacity is the map capacity for restores when
	// no better hint is available.
	defaultMapPreallocationCapacity = 1024

	// maxMapPreallocationCapacity caps map preallocation to keep memory bounded.
	maxMapPreallocationCapacity = 10_000_000

	// bboltSnapshotMaxBatchEntries caps how many entries we write per bbolt transaction.
	bboltSnapshotMaxBatchEntries = 50_000

	// bboltSnapshotMaxBatchBytes caps the key/value payload per bbolt transaction (~64MB).
	bboltSnapshotMaxBatchBytes = 64 << 20

	// snapshotFileMode is the permission used for bbolt files we create.
	snapshotFileMode = 0o600

	// snapshotDirMode is the permission used for directories we create.
	snapshotDirMode = 0o750
)

// normalize applies defaults to backup options.
func (o *BackupOptions) normalize() error {
	fileName, err := normalizeSnapshotPath(o.FileName)
	if err != nil {
		return err
	}

	o.FileName = fileName

	return nil
}

// normalize applies defaults to restore options.
func (o *RestoreOptions) normalize() error {
	fileName, err := normalizeSnapshotPath(o.FileName)
	if err != nil {
		return err
	}

	o.FileName = fileName

	return nil
}

// normalizeSnapshotPath cleans fileName, substituting the default disk path when empty.
func normalizeSnapshotPath(fileName string) (string, error) {
	if strings.TrimSpace(fileName) != "" {
		return filepath.Clean(fileName), nil
	}

	path, err := ResolveDiskPath("")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSnapshotPathResolveFailed, err)
	}

	return path, nil
}

// createSnapshotTempFile creates an empty temporary file next to destination so
// the finished snapshot can be moved into place with a single rename.
func createSnapshotTempFile(destination string) (*os.File, error) {
	targetDir := filepath.Dir(destination)
	targetBase := filepath.Base(destination)

	if err := os.MkdirAll(targetDir, snapshotDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackupDirectoryFailed, err)
	}

	tempHandle, err := os.CreateTemp(targetDir, targetBase+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackupTempFileFailed, err)
	}

	return tempHandle, nil
}

// finalizeSnapshot moves tempFile over destination and returns its size.
func finalizeSnapshot(tempFile, destination string) (int64, error) {
	info, err := os.Stat(tempFile)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBBoltSnapshotStatFailed, err)
	}

	if err := os.Rename(tempFile, destination); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBackupFinalizeFailed, err)
	}

	return info.Size(), nil
}

// openSnapshotReadOnly opens an existing snapshot file for reading.
func openSnapshotReadOnly(path string) (*bolt.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, wrapSnapshotOpenError(err, path)
	}

	db, err := bolt.Open(path, snapshotFileMode, &bolt.Options{ReadOnly: true})
	if err != nil {
		return nil, wrapSnapshotOpenError(err, path)
	}

	return db, nil
}

// readSnapshotEntries loads every entry of the snapshot bucket, enforcing budget.
func readSnapshotEntries(db *bolt.DB, budget *restoreBudget) (map[string]string, error) {
	builder := make(map[string]string, budget.preallocationCapacity())

	err := db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(defaultBBoltBucketBytes)
		if bucket == nil {
			return fmt.Errorf("%w: %q", ErrBucketNotFound, DefaultBucket)
		}

		return bucket.ForEach(func(k, v []byte) error {
			key, ok := decodeKey(k)
			if !ok {
				return fmt.Errorf("%w: %q", ErrSnapshotKeyInvalid, k)
			}

			if err := budget.track(len(key), len(v)); err != nil {
				return err
			}

			// string conversion copies out of the mmap.
			builder[key] = string(v)

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotReadFailed, err)
	}

	return builder, nil
}

// newBBoltBatchWriter creates a batch writer for db.
func newBBoltBatchWriter(db *bolt.DB) *bboltBatchWriter {
	return &bboltBatchWriter{
		db:      db,
		pending: make([]Entry, 0, 1024),
	}
}

// append stages a key/value pair, flushing when a batch limit is reached.
func (b *bboltBatchWriter) append(key, value string) error {
	if err := checkDiskKey(key); err != nil {
		return err
	}

	b.pending = append(b.pending, Entry{Key: key, Value: value})
	b.pendingBytes += len(key) + len(value)

	if len(b.pending) >= bboltSnapshotMaxBatchEntries || b.pendingBytes >= bboltSnapshotMaxBatchBytes {
		return b.flush()
	}

	return nil
}

// flush writes all staged entries in a single transaction.
// The bucket is created on the first flush so empty snapshots still carry it.
func (b *bboltBatchWriter) flush() error {
	batch := b.pending
	b.pending = b.pending[:0]
	b.pendingBytes = 0

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(defaultBBoltBucketBytes)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBBoltBucketCreateFailed, err)
		}

		for _, entry := range batch {
			if err := bucket.Put(encodeKey(entry.Key), []byte(entry.Value)); err != nil {
				return fmt.Errorf("%w: %w", ErrBBoltWriteFailed, err)
			}
		}

		return nil
	})
}

// track accounts for one entry and fails once a cap is exceeded.
func (b *restoreBudget) track(keyLen, valueLen int) error {
	b.entries++
	if b.maxEntries > 0 && b.entries > b.maxEntries {
		return fmt.Errorf("%w: limit %d", ErrRestoreBudgetEntriesExceeded, b.maxEntries)
	}

	b.bytesUsed += int64(keyLen) + int64(valueLen)
	if b.maxBytes > 0 && b.bytesUsed > b.maxBytes {
		return fmt.Errorf("%w: limit %d bytes", ErrRestoreBudgetBytesExceeded, b.maxBytes)
	}

	return nil
}

// preallocationCapacity uses MaxEntries as a sizing hint for the restore map.
func (b *restoreBudget) preallocationCapacity() int {
	if b.maxEntries <= 0 {
		return defaultMapPreallocationCapacity
	}

	return clamp(b.maxEntries, 1, maxMapPreallocationCapacity)
}

// wrapSnapshotOpenError classifies snapshot open failures.
func wrapSnapshotOpenError(err error, path string) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %q", ErrSnapshotNotFound, path)
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %q: %w", ErrSnapshotPermissionDenied, path, err)
	default:
		return fmt.Errorf("%w: %q: %w", ErrSnapshotOpenFailed, path, err)
	}
}
