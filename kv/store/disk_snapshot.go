package store

import (
	"fmt"
	"log/slog"
	"os"

	bolt "go.etcd.io/bbolt"
)

// Backup copies the bbolt database into a standalone snapshot file.
//
// The copy is taken inside a single read transaction, so it is consistent
// even while writers keep going. Backing up onto the store's own file is a
// no-op that only reports the current contents.
func (s *DiskStore) Backup(opts *BackupOptions) (*BackupSummary, error) {
	if opts == nil {
		return nil, ErrBackupOptionsNil
	}

	if err := opts.normalize(); err != nil {
		return nil, err
	}

	if samePath(opts.FileName, s.path) {
		return s.selfSnapshotSummary()
	}

	summary, err := s.writeDiskSnapshot(opts.FileName)
	if err != nil {
		return nil, err
	}

	s.logger.Info("disk store backed up",
		slog.String("snapshot", opts.FileName),
		slog.Int("entries", summary.TotalEntries),
		slog.Int64("bytes", summary.BytesWritten),
	)

	return summary, nil
}

// Restore replaces the store's contents with the entries of a bbolt snapshot.
//
// The snapshot is read fully first, then applied in one write transaction:
// either every entry lands or the store is left untouched.
func (s *DiskStore) Restore(opts *RestoreOptions) (*RestoreSummary, error) {
	if opts == nil {
		return nil, ErrRestoreOptionsNil
	}

	if err := opts.normalize(); err != nil {
		return nil, err
	}

	if samePath(opts.FileName, s.path) {
		count, err := s.Len()
		if err != nil {
			return nil, err
		}

		return &RestoreSummary{TotalEntries: count}, nil
	}

	snapshotDB, err := openSnapshotReadOnly(opts.FileName)
	if err != nil {
		return nil, err
	}

	defer snapshotDB.Close()

	entries, err := readSnapshotEntries(snapshotDB, &restoreBudget{
		maxEntries: opts.MaxEntries,
		maxBytes:   opts.MaxBytes,
	})
	if err != nil {
		return nil, err
	}

	err = s.updateTx(func(tx *bolt.Tx) error {
		if bucket := tx.Bucket(defaultBBoltBucketBytes); bucket != nil {
			if err := tx.DeleteBucket(defaultBBoltBucketBytes); err != nil {
				return err
			}
		}

		bucket, err := tx.CreateBucket(defaultBBoltBucketBytes)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBBoltBucketCreateFailed, err)
		}

		for key, value := range entries {
			if err := bucket.Put(encodeKey(key), []byte(value)); err != nil {
				return fmt.Errorf("%w: %w", ErrBBoltWriteFailed, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDiskStoreWriteFailed, err)
	}

	s.logger.Info("disk store restored",
		slog.String("snapshot", opts.FileName),
		slog.Int("entries", len(entries)),
	)

	return &RestoreSummary{TotalEntries: len(entries)}, nil
}

// selfSnapshotSummary describes the store file itself as a snapshot.
func (s *DiskStore) selfSnapshotSummary() (*BackupSummary, error) {
	count, err := s.Len()
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDiskStoreStatFailed, err)
	}

	return &BackupSummary{
		TotalEntries: count,
		BytesWritten: info.Size(),
	}, nil
}

// writeDiskSnapshot streams the database into a temporary file and renames it
// onto destination.
func (s *DiskStore) writeDiskSnapshot(destination string) (*BackupSummary, error) {
	tempHandle, err := createSnapshotTempFile(destination)
	if err != nil {
		return nil, err
	}

	tempFile := tempHandle.Name()

	var totalEntries int

	err = s.viewTx(func(tx *bolt.Tx) error {
		if bucket := tx.Bucket(defaultBBoltBucketBytes); bucket != nil {
			totalEntries = bucket.Stats().KeyN
		}

		// WriteTo copies the whole file, so the snapshot keeps the bucket layout.
		if _, err := tx.WriteTo(tempHandle); err != nil {
			return fmt.Errorf("%w: %w", ErrBackupCopyFailed, err)
		}

		return nil
	})
	if err == nil {
		err = tempHandle.Sync()
	}

	if closeErr := tempHandle.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("%w: %w", ErrBackupTempFileFailed, closeErr)
	}

	if err != nil {
		_ = os.Remove(tempFile)

		return nil, fmt.Errorf("%w: %w", ErrSnapshotExportFailed, err)
	}

	size, err := finalizeSnapshot(tempFile, destination)
	if err != nil {
		_ = os.Remove(tempFile)

		return nil, err
	}

	return &BackupSummary{
		TotalEntries: totalEntries,
		BytesWritten: size,
	}, nil
}
