package store

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	bolt "go.etcd.io/bbolt"
	boltErrors "go.etcd.io/bbolt/errors"
)

// DiskStore is a persistent key-value container backed by a bbolt file.
//
// It offers the same operations as Store with error returns. All exported
// methods are safe for concurrent use: each operation runs in its own bbolt
// transaction, and Open/Close are reference counted so several owners can
// share one DiskStore.
type DiskStore struct {
	path    string
	options *bolt.Options
	logger  *slog.Logger

	// lock guards handle and refCount. Operations hold it for reading so
	// that the final Close waits for in-flight transactions.
	lock     sync.RWMutex
	handle   *bolt.DB
	refCount int
}

const (
	// DefaultDiskStorePath is the default filesystem path to the bbolt file.
	DefaultDiskStorePath = ".kvstore.db"

	// DefaultBucket is the bbolt bucket that holds the entries, both in
	// DiskStore files and in snapshots.
	DefaultBucket = "kvstore"
)

//nolint:gochecknoglobals // read-only bucket name.
var defaultBBoltBucketBytes = []byte(DefaultBucket)

// NewDiskStore constructs a DiskStore for the bbolt file at path.
// An empty path selects DefaultDiskStorePath. The file is not touched
// until Open is called.
func NewDiskStore(path string, cfg *DiskConfig) (*DiskStore, error) {
	resolvedPath, err := ResolveDiskPath(path)
	if err != nil {
		return nil, err
	}

	options, err := buildBBoltOptions(cfg)
	if err != nil {
		return nil, err
	}

	return &DiskStore{
		path:    resolvedPath,
		options: options,
		logger:  cfg.logger().With(slog.String("path", resolvedPath)),
	}, nil
}

// Path returns the absolute path of the bbolt file.
func (s *DiskStore) Path() string {
	return s.path
}

// Open opens the bbolt file on first use and takes one reference.
// The parent directory and the bucket are created when missing, unless the
// store is read-only.
func (s *DiskStore) Open() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.handle != nil {
		s.refCount++

		return nil
	}

	readOnly := s.options != nil && s.options.ReadOnly

	if !readOnly {
		if err := os.MkdirAll(filepath.Dir(s.path), snapshotDirMode); err != nil {
			return fmt.Errorf("%w: %w", ErrDiskDirectoryCreateFailed, err)
		}
	}

	handle, err := bolt.Open(s.path, snapshotFileMode, s.options)
	if err != nil {
		if errors.Is(err, boltErrors.ErrTimeout) {
			return fmt.Errorf("%w: %q", ErrDiskStoreLocked, s.path)
		}

		return fmt.Errorf("%w: %w", ErrDiskStoreOpenFailed, err)
	}

	if !readOnly {
		err = handle.Update(func(tx *bolt.Tx) error {
			if _, bucketErr := tx.CreateBucketIfNotExists(defaultBBoltBucketBytes); bucketErr != nil {
				return fmt.Errorf("%w: %w", ErrBBoltBucketCreateFailed, bucketErr)
			}

			return nil
		})
		if err != nil {
			_ = handle.Close()

			return fmt.Errorf("%w: %w", ErrDiskStoreOpenFailed, err)
		}
	}

	s.handle = handle
	s.refCount = 1

	s.logger.Debug("disk store opened", slog.Bool("readOnly", readOnly))

	return nil
}

// Close releases one reference. The bbolt file is closed when the last
// reference is released. Closing a closed store is a no-op.
func (s *DiskStore) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.handle == nil {
		return nil
	}

	s.refCount--
	if s.refCount > 0 {
		return nil
	}

	err := s.handle.Close()
	s.handle = nil
	s.refCount = 0

	if err != nil {
		return err
	}

	s.logger.Debug("disk store closed")

	return nil
}

// Set inserts or overwrites the value stored under key.
// Keys longer than MaxDiskKeyLen are rejected with ErrKeyTooLarge.
func (s *DiskStore) Set(key, value string) error {
	if err := checkDiskKey(key); err != nil {
		return fmt.Errorf("%w: %w", ErrDiskStoreWriteFailed, err)
	}

	err := s.update(func(bucket *bolt.Bucket) error {
		return bucket.Put(encodeKey(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDiskStoreWriteFailed, err)
	}

	return nil
}

// Get returns the value stored under key and whether it was present.
func (s *DiskStore) Get(key string) (string, bool, error) {
	var (
		value string
		found bool
	)

	err := s.view(func(bucket *bolt.Bucket) error {
		var raw []byte

		raw, found = lookup(bucket, encodeKey(key))
		if found {
			// string conversion copies out of the mmap before the tx ends.
			value = string(raw)
		}

		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrDiskStoreReadFailed, err)
	}

	return value, found, nil
}

// Delete removes key and reports whether it was present.
func (s *DiskStore) Delete(key string) (bool, error) {
	var deleted bool

	err := s.update(func(bucket *bolt.Bucket) error {
		keyBytes := encodeKey(key)

		if _, found := lookup(bucket, keyBytes); !found {
			return nil
		}

		deleted = true

		return bucket.Delete(keyBytes)
	})
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrDiskStoreDeleteFailed, err)
	}

	return deleted, nil
}

// Contains reports whether key is present.
func (s *DiskStore) Contains(key string) (bool, error) {
	var found bool

	err := s.view(func(bucket *bolt.Bucket) error {
		_, found = lookup(bucket, encodeKey(key))

		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrDiskStoreReadFailed, err)
	}

	return found, nil
}

// Len returns the number of entries.
func (s *DiskStore) Len() (int, error) {
	var count int

	err := s.view(func(bucket *bolt.Bucket) error {
		count = bucket.Stats().KeyN

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDiskStoreSizeFailed, err)
	}

	return count, nil
}

// IsEmpty reports whether the store holds no entries.
func (s *DiskStore) IsEmpty() (bool, error) {
	empty := true

	err := s.view(func(bucket *bolt.Bucket) error {
		first, _ := bucket.Cursor().First()
		empty = first == nil

		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrDiskStoreSizeFailed, err)
	}

	return empty, nil
}

// Keys returns every key in ascending lexicographic order.
func (s *DiskStore) Keys() ([]string, error) {
	keys := []string{}

	err := s.view(func(bucket *bolt.Bucket) error {
		// bbolt iterates in byte order, which is lexicographic for strings.
		return bucket.ForEach(func(k, _ []byte) error {
			if key, ok := decodeKey(k); ok {
				keys = append(keys, key)
			}

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDiskStoreReadFailed, err)
	}

	return keys, nil
}

// Clear removes every entry.
func (s *DiskStore) Clear() error {
	err := s.updateTx(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(defaultBBoltBucketBytes); err != nil &&
			!errors.Is(err, boltErrors.ErrBucketNotFound) {
			return err
		}

		_, err := tx.CreateBucket(defaultBBoltBucketBytes)

		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDiskStoreClearFailed, err)
	}

	return nil
}

// view runs fn against the entries bucket in a read-only transaction.
// A missing bucket, possible only for read-only stores, reads as empty:
// fn is not called and the caller's zero values stand.
func (s *DiskStore) view(fn func(bucket *bolt.Bucket) error) error {
	return s.viewTx(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(defaultBBoltBucketBytes)
		if bucket == nil {
			return nil
		}

		return fn(bucket)
	})
}

// viewTx runs fn in a read-only transaction.
func (s *DiskStore) viewTx(fn func(tx *bolt.Tx) error) error {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.handle == nil {
		return ErrDiskStoreClosed
	}

	return s.handle.View(fn)
}

// update runs fn against the entries bucket in a read-write transaction.
func (s *DiskStore) update(fn func(bucket *bolt.Bucket) error) error {
	return s.updateTx(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(defaultBBoltBucketBytes)
		if bucket == nil {
			return fmt.Errorf("%w: %q", ErrBucketNotFound, DefaultBucket)
		}

		return fn(bucket)
	})
}

// updateTx runs fn in a read-write transaction.
func (s *DiskStore) updateTx(fn func(tx *bolt.Tx) error) error {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.handle == nil {
		return ErrDiskStoreClosed
	}

	return s.handle.Update(fn)
}

// lookup finds key in bucket. A cursor is used instead of Bucket.Get so
// that an empty value is still reported as present.
func lookup(bucket *bolt.Bucket, key []byte) ([]byte, bool) {
	k, v := bucket.Cursor().Seek(key)
	if k == nil || !bytes.Equal(k, key) {
		return nil, false
	}

	return v, true
}
