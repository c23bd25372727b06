package kv

import (
	"fmt"
	"sync"

	"github.com/grafana/sobek"
	"go.k6.io/k6/js/common"
	"go.k6.io/k6/js/modules"

	"github.com/oshokin/kvstore/kv/store"
)

type (
	// RootModule is a module singleton created once per test process.
	// It owns the shared backend used by all VUs.
	RootModule struct {
		// backend is the shared store, created on the first openStore().
		backend store.Backend

		// opts holds the options used when the backend was created.
		opts Options

		// mu protects backend creation and configuration.
		mu sync.Mutex
	}

	// ModuleInstance is created per VU.
	// It holds the per-VU JS bindings and a pointer
	// to the RootModule to access the shared backend.
	ModuleInstance struct {
		vu modules.VU
		rm *RootModule
		kv *KV
	}
)

// testOpenStoreBarrier is a test hook invoked the moment a goroutine enters the
// backend-initialization path. It lets tests synchronize concurrent openStore()
// calls (nil in non-test builds).
//
//nolint:gochecknoglobals // this is a test hook.
var (
	testOpenStoreBarrier   func()
	testOpenStoreBarrierMu sync.RWMutex
)

const (
	// BackendDisk is the persistent store backed by a bbolt file.
	BackendDisk = "disk"
	// BackendMemory is an in-memory, process-local store (fast, ephemeral).
	BackendMemory = "memory"

	// DefaultBackend is used when the user does not specify a backend.
	DefaultBackend = BackendMemory
)

var (
	_ modules.Instance = new(ModuleInstance)
	_ modules.Module   = new(RootModule)
)

// New returns a pointer to a new RootModule instance.
func New() *RootModule {
	return new(RootModule)
}

// NewModuleInstance implements modules.Module.
func (rm *RootModule) NewModuleInstance(vu modules.VU) modules.Instance {
	return &ModuleInstance{
		vu: vu,
		rm: rm,
	}
}

// getOrCreateBackend creates the shared backend if it doesn't exist,
// or returns the existing one if the options are the same.
// The returned flag reports whether this call created the backend.
func (rm *RootModule) getOrCreateBackend(options Options) (store.Backend, bool, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.backend != nil {
		if rm.opts.Equal(options) {
			return rm.backend, false, nil
		}

		return nil, false, fmt.Errorf(
			"%w: store already opened with backend=%q path=%q, got backend=%q path=%q",
			store.ErrKVOptionsConflict,
			rm.opts.Backend, rm.opts.Path, options.Backend, options.Path,
		)
	}

	testOpenStoreBarrierMu.RLock()

	barrier := testOpenStoreBarrier

	testOpenStoreBarrierMu.RUnlock()

	if barrier != nil {
		barrier()
	}

	backend, err := createBackend(options)
	if err != nil {
		return nil, false, err
	}

	rm.backend = backend
	rm.opts = options

	return rm.backend, true, nil
}

// createBackend builds an unopened backend from validated options.
func createBackend(options Options) (store.Backend, error) {
	switch options.Backend {
	case BackendMemory:
		return store.AsBackend(store.NewMemoryStore(options.MemoryOptions.ToMemoryConfig())), nil
	case BackendDisk:
		cfg, err := options.DiskOptions.ToDiskConfig()
		if err != nil {
			return nil, err
		}

		diskStore, err := store.NewDiskStore(options.Path, cfg)
		if err != nil {
			return nil, err
		}

		return diskStore, nil
	default:
		// Unreachable: backend is validated in NewOptionsFrom before this is called.
		return nil, fmt.Errorf("%w: %s", store.ErrInvalidBackend, options.Backend)
	}
}

// clearBackendOnFailure resets the backend reference if this call created it
// and its first Open failed, so the next openStore() starts over.
func (rm *RootModule) clearBackendOnFailure(candidate store.Backend, isNewlyCreated bool) {
	if !isNewlyCreated {
		return
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.backend == candidate {
		rm.backend = nil
	}
}

// Exports implements modules.Instance and exposes
// the JavaScript API surface for this module.
func (mi *ModuleInstance) Exports() modules.Exports {
	return modules.Exports{
		Named: map[string]any{
			"openStore": mi.OpenStore,
		},
	}
}

// OpenStore parses user options, initializes the shared backend (once),
// and returns the per-VU KV object bound to it.
//
// The first successful call decides the backend and its options; later calls
// with different options throw an OptionsConflictError.
func (mi *ModuleInstance) OpenStore(opts sobek.Value) *sobek.Object {
	rt := mi.vu.Runtime()

	options, err := NewOptionsFrom(mi.vu, opts)
	if err != nil {
		common.Throw(rt, classifyError(err))
		return nil
	}

	backend, isNewlyCreated, err := mi.rm.getOrCreateBackend(options)
	if err != nil {
		common.Throw(rt, classifyError(err))
		return nil
	}

	// Each openStore() bumps the shared reference counter; close() releases it.
	if err := backend.Open(); err != nil {
		mi.rm.clearBackendOnFailure(backend, isNewlyCreated)
		common.Throw(rt, classifyError(err))

		return nil
	}

	mi.kv = NewKV(mi.vu, backend)

	return rt.ToValue(mi.kv).ToObject(rt)
}
