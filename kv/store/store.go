package store

// Backend is the error-returning form of the key-value operations shared by
// the in-memory Store (via AsBackend) and the bbolt-backed DiskStore.
//
// Semantics match Store exactly; the error return is non-nil only for
// exceptional conditions such as I/O failures or use before Open.
type Backend interface {
	// Open prepares the backend for use. It is safe to call more than once;
	// every successful Open must be balanced by a Close.
	Open() error

	// Set inserts or overwrites the value stored under key.
	Set(key, value string) error

	// Get returns the value stored under key and whether it was present.
	Get(key string) (string, bool, error)

	// Delete removes key and reports whether a removal took place.
	// Deleting an absent key is a no-op that returns false.
	Delete(key string) (bool, error)

	// Contains reports whether key is present.
	Contains(key string) (bool, error)

	// Len returns the number of entries.
	Len() (int, error)

	// IsEmpty reports whether Len is zero.
	IsEmpty() (bool, error)

	// Keys returns all keys in ascending lexicographic order.
	Keys() ([]string, error)

	// Clear removes every entry.
	Clear() error

	// Backup writes every entry into a bbolt snapshot file.
	Backup(opts *BackupOptions) (*BackupSummary, error)

	// Restore replaces the contents with the entries of a bbolt snapshot file.
	Restore(opts *RestoreOptions) (*RestoreSummary, error)

	// Close releases one reference obtained by Open.
	Close() error
}

// memoryBackend adapts a Store to the Backend interface.
type memoryBackend struct {
	store *Store
}

// AsBackend exposes s through the Backend interface.
// Open and Close are no-ops, and no method ever returns a storage error.
func AsBackend(s *Store) Backend {
	return &memoryBackend{store: s}
}

// Compile-time interface assertions.
var (
	_ Backend = (*memoryBackend)(nil)
	_ Backend = (*DiskStore)(nil)
)

func (b *memoryBackend) Open() error {
	return nil
}

func (b *memoryBackend) Set(key, value string) error {
	b.store.Set(key, value)

	return nil
}

func (b *memoryBackend) Get(key string) (string, bool, error) {
	value, ok := b.store.Get(key)

	return value, ok, nil
}

func (b *memoryBackend) Delete(key string) (bool, error) {
	return b.store.Delete(key), nil
}

func (b *memoryBackend) Contains(key string) (bool, error) {
	return b.store.Contains(key), nil
}

func (b *memoryBackend) Len() (int, error) {
	return b.store.Len(), nil
}

func (b *memoryBackend) IsEmpty() (bool, error) {
	return b.store.IsEmpty(), nil
}

func (b *memoryBackend) Keys() ([]string, error) {
	return b.store.Keys(), nil
}

func (b *memoryBackend) Clear() error {
	b.store.Clear()

	return nil
}

func (b *memoryBackend) Backup(opts *BackupOptions) (*BackupSummary, error) {
	return b.store.Backup(opts)
}

func (b *memoryBackend) Restore(opts *RestoreOptions) (*RestoreSummary, error) {
	return b.store.Restore(opts)
}

func (b *memoryBackend) Close() error {
	return nil
}

// Entry is a single key-value pair returned by Store.Range and used while
// copying entries in and out of snapshots.
type Entry struct {
	// Key is the string identifier for the stored value.
	Key string
	// Value is the string stored under Key.
	Value string
}
