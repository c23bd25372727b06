package kv

import (
	"fmt"
	"math"

	"github.com/grafana/sobek"
	"go.k6.io/k6/js/common"
	"go.k6.io/k6/js/modules"
	"go.k6.io/k6/js/promises"

	"github.com/oshokin/kvstore/kv/store"
)

// KV is the key-value facade exposed to k6 scripts.
//
// Map operations are cheap and run synchronously on the VU goroutine; a Go
// error return surfaces as a thrown JS exception. Snapshot operations touch
// the filesystem, so they run on a worker goroutine and settle a Promise back
// on the VU event loop.
type KV struct {
	// backend is the shared store (memory or disk); nil after close().
	backend store.Backend

	// vu is the owning k6 VU that provides the Sobek runtime and event loop.
	vu modules.VU
}

// NewKV constructs a new KV bound to the given VU and backend.
func NewKV(vu modules.VU, backend store.Backend) *KV {
	return &KV{
		vu:      vu,
		backend: backend,
	}
}

// Set stores value under key, overwriting any previous value.
// Non-string arguments are converted with JS string semantics.
func (k *KV) Set(key, value sobek.Value) error {
	backend, err := k.openBackend()
	if err != nil {
		return err
	}

	return classifyError(backend.Set(key.String(), value.String()))
}

// Get returns the value stored under key, or null when the key is absent.
func (k *KV) Get(key sobek.Value) (sobek.Value, error) {
	backend, err := k.openBackend()
	if err != nil {
		return nil, err
	}

	value, ok, err := backend.Get(key.String())
	if err != nil {
		return nil, classifyError(err)
	}

	if !ok {
		return sobek.Null(), nil
	}

	return k.vu.Runtime().ToValue(value), nil
}

// Delete removes key and returns true if it was present.
func (k *KV) Delete(key sobek.Value) (bool, error) {
	backend, err := k.openBackend()
	if err != nil {
		return false, err
	}

	deleted, err := backend.Delete(key.String())

	return deleted, classifyError(err)
}

// Contains returns true if key is present.
func (k *KV) Contains(key sobek.Value) (bool, error) {
	backend, err := k.openBackend()
	if err != nil {
		return false, err
	}

	found, err := backend.Contains(key.String())

	return found, classifyError(err)
}

// Len returns the number of stored entries.
func (k *KV) Len() (int, error) {
	backend, err := k.openBackend()
	if err != nil {
		return 0, err
	}

	size, err := backend.Len()

	return size, classifyError(err)
}

// IsEmpty returns true when the store holds no entries.
func (k *KV) IsEmpty() (bool, error) {
	backend, err := k.openBackend()
	if err != nil {
		return false, err
	}

	empty, err := backend.IsEmpty()

	return empty, classifyError(err)
}

// Keys returns every key in ascending order.
func (k *KV) Keys() ([]string, error) {
	backend, err := k.openBackend()
	if err != nil {
		return nil, err
	}

	keys, err := backend.Keys()

	return keys, classifyError(err)
}

// Clear removes every entry.
func (k *KV) Clear() error {
	backend, err := k.openBackend()
	if err != nil {
		return err
	}

	return classifyError(backend.Clear())
}

// Close releases this VU's reference to the shared backend.
// The disk backend closes its file once every VU has closed.
func (k *KV) Close() error {
	backend, err := k.openBackend()
	if err != nil {
		return err
	}

	k.backend = nil

	return classifyError(backend.Close())
}

// Backup writes every entry into a bbolt snapshot file.
// Returns a Promise that resolves to {totalEntries, bytesWritten}.
func (k *KV) Backup(options sobek.Value) *sobek.Promise {
	backupOptions, err := ImportBackupOptions(k.vu.Runtime(), options)
	if err != nil {
		return k.rejected(err)
	}

	return k.runAsync(func(backend store.Backend) (any, error) {
		summary, err := backend.Backup(backupOptions)
		if err != nil {
			return nil, err
		}

		// A struct would be exposed with snake_case fields; a map keeps camelCase.
		return map[string]any{
			"totalEntries": summary.TotalEntries,
			"bytesWritten": summary.BytesWritten,
		}, nil
	})
}

// Restore replaces the current contents with a snapshot.
// Returns a Promise that resolves to {totalEntries}.
func (k *KV) Restore(options sobek.Value) *sobek.Promise {
	restoreOptions, err := ImportRestoreOptions(k.vu.Runtime(), options)
	if err != nil {
		return k.rejected(err)
	}

	return k.runAsync(func(backend store.Backend) (any, error) {
		summary, err := backend.Restore(restoreOptions)
		if err != nil {
			return nil, err
		}

		return map[string]any{
			"totalEntries": summary.TotalEntries,
		}, nil
	})
}

// ImportBackupOptions converts JS values into store.BackupOptions.
// Accepts either a file name string or an object with a fileName field.
// Nullish input yields nil so the store reports missing options.
func ImportBackupOptions(rt *sobek.Runtime, options sobek.Value) (*store.BackupOptions, error) {
	if common.IsNullish(options) {
		return nil, nil //nolint:nilnil // nil options are rejected by the store.
	}

	if isStringValue(options) {
		return &store.BackupOptions{FileName: options.String()}, nil
	}

	backupOptions := new(store.BackupOptions)

	optionsObj := options.ToObject(rt)
	if fileName := optionsObj.Get("fileName"); !common.IsNullish(fileName) {
		backupOptions.FileName = fileName.String()
	}

	return backupOptions, nil
}

// ImportRestoreOptions converts JS values into store.RestoreOptions.
// Accepts either a file name string or an object with fileName, maxEntries
// and maxBytes fields; maxBytes may be a number or a size string like "64MB".
func ImportRestoreOptions(rt *sobek.Runtime, options sobek.Value) (*store.RestoreOptions, error) {
	if common.IsNullish(options) {
		return nil, nil //nolint:nilnil // nil options are rejected by the store.
	}

	if isStringValue(options) {
		return &store.RestoreOptions{FileName: options.String()}, nil
	}

	restoreOptions := new(store.RestoreOptions)

	optionsObj := options.ToObject(rt)
	if fileName := optionsObj.Get("fileName"); !common.IsNullish(fileName) {
		restoreOptions.FileName = fileName.String()
	}

	if maxEntries := optionsObj.Get("maxEntries"); !common.IsNullish(maxEntries) {
		count, err := parseCountValue(maxEntries.Export())
		if err != nil {
			return nil, fmt.Errorf("%w: maxEntries: %w", store.ErrKVOptionsInvalid, err)
		}

		restoreOptions.MaxEntries = count
	}

	if maxBytes := optionsObj.Get("maxBytes"); !common.IsNullish(maxBytes) {
		size, err := parseSizeValue(maxBytes.Export())
		if err != nil {
			return nil, fmt.Errorf("%w: maxBytes: %w", store.ErrKVOptionsInvalid, err)
		}

		if size > math.MaxInt64 {
			return nil, fmt.Errorf("%w: maxBytes too large: %d", store.ErrKVOptionsInvalid, size)
		}

		restoreOptions.MaxBytes = int64(size)
	}

	return restoreOptions, nil
}

// isStringValue reports whether v holds a JS string primitive.
func isStringValue(v sobek.Value) bool {
	_, ok := v.Export().(string)
	return ok
}

// openBackend returns the backend or a DatabaseNotOpenError after close().
func (k *KV) openBackend() (store.Backend, error) {
	if k.backend == nil {
		return nil, databaseNotOpenError()
	}

	return k.backend, nil
}

// databaseNotOpenError produces a consistent error when the backend is gone.
func databaseNotOpenError() error {
	return NewError(DatabaseNotOpenError, "database is not open")
}

// rejected returns a Promise that is already rejected with the classified err.
func (k *KV) rejected(err error) *sobek.Promise {
	promise, _, reject := promises.New(k.vu)
	reject(classifyError(err))

	return promise
}

// runAsync executes a blocking backend operation on a worker goroutine and
// settles the returned Promise on the VU event loop.
func (k *KV) runAsync(operation func(backend store.Backend) (any, error)) *sobek.Promise {
	backend, err := k.openBackend()
	if err != nil {
		return k.rejected(err)
	}

	promise, resolve, reject := promises.New(k.vu)

	go func() {
		result, err := operation(backend)
		if err != nil {
			reject(classifyError(err))
			return
		}

		resolve(result)
	}()

	return promise
}
