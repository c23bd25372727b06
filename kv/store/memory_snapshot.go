package store

import (
	"fmt"
	"os"

	bolt "go.etcd.io/bbolt"
)

// Backup writes every entry of the store into a bbolt snapshot file.
//
// Entries are copied under all shard read locks, so the snapshot is a
// point-in-time view; writers are held off only for the copy, not for the
// file I/O. The file is written to a temporary sibling and renamed into
// place, so readers never observe a partial snapshot.
func (s *Store) Backup(opts *BackupOptions) (*BackupSummary, error) {
	if opts == nil {
		return nil, ErrBackupOptionsNil
	}

	if err := opts.normalize(); err != nil {
		return nil, err
	}

	tempHandle, err := createSnapshotTempFile(opts.FileName)
	if err != nil {
		return nil, err
	}

	tempFile := tempHandle.Name()

	if err := tempHandle.Close(); err != nil {
		_ = os.Remove(tempFile)

		return nil, fmt.Errorf("%w: %w", ErrBackupTempFileFailed, err)
	}

	entries := s.snapshotEntries()

	if err := writeBBoltSnapshot(tempFile, entries); err != nil {
		_ = os.Remove(tempFile)

		return nil, err
	}

	size, err := finalizeSnapshot(tempFile, opts.FileName)
	if err != nil {
		_ = os.Remove(tempFile)

		return nil, err
	}

	return &BackupSummary{
		TotalEntries: len(entries),
		BytesWritten: size,
	}, nil
}

// Restore replaces the store's contents with the entries of a bbolt snapshot.
//
// The snapshot is read fully before the store is touched; on any error the
// store keeps its previous contents. The swap itself happens under all shard
// write locks, so concurrent readers see either the old or the new contents.
func (s *Store) Restore(opts *RestoreOptions) (*RestoreSummary, error) {
	if opts == nil {
		return nil, ErrRestoreOptionsNil
	}

	if err := opts.normalize(); err != nil {
		return nil, err
	}

	db, err := openSnapshotReadOnly(opts.FileName)
	if err != nil {
		return nil, err
	}

	defer db.Close()

	builder, err := readSnapshotEntries(db, &restoreBudget{
		maxEntries: opts.MaxEntries,
		maxBytes:   opts.MaxBytes,
	})
	if err != nil {
		return nil, err
	}

	s.applySnapshot(builder)

	return &RestoreSummary{
		TotalEntries: len(builder),
	}, nil
}

// applySnapshot replaces the contents of every shard with container.
func (s *Store) applySnapshot(container map[string]string) {
	s.lockAllShardWriters()
	defer s.unlockAllShardWriters()

	for _, shard := range s.shards {
		clear(shard.container)
	}

	for key, value := range container {
		s.getShardByKey(key).container[key] = value
	}
}

// writeBBoltSnapshot writes entries into a fresh bbolt file at path.
func writeBBoltSnapshot(path string, entries []Entry) error {
	db, err := bolt.Open(path, snapshotFileMode, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBBoltSnapshotOpenFailed, err)
	}

	writer := newBBoltBatchWriter(db)

	for _, entry := range entries {
		if err := writer.append(entry.Key, entry.Value); err != nil {
			_ = db.Close()

			return err
		}
	}

	// The final flush also creates the bucket when there were no entries.
	if err := writer.flush(); err != nil {
		_ = db.Close()

		return err
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrBBoltSnapshotCloseFailed, err)
	}

	return nil
}
