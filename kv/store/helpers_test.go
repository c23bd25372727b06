package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestDiskStore opens a DiskStore in a per-test temp directory and closes
// it on cleanup.
func newTestDiskStore(t *testing.T, cfg *DiskConfig) *DiskStore {
	t.Helper()

	store, err := NewDiskStore(filepath.Join(t.TempDir(), "kv.db"), cfg)
	require.NoError(t, err)
	require.NoError(t, store.Open())

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// requireBackendValue verifies key holds expected in backend.
func requireBackendValue(t *testing.T, backend Backend, key, expected string) {
	t.Helper()

	value, ok, err := backend.Get(key)
	require.NoError(t, err)
	require.Truef(t, ok, "key %q must be present", key)
	require.Equal(t, expected, value)
}
