package kv

import (
	"fmt"

	"github.com/grafana/sobek"
	"go.k6.io/k6/js/common"
	"go.k6.io/k6/js/modules"

	"github.com/oshokin/kvstore/kv/store"
)

// Options controls how the shared store is created on the first call to openStore().
type Options struct {
	// Backend selects the storage engine backing the store.
	// Valid values: "memory" (ephemeral, default), "disk" (persistent).
	Backend string `js:"backend"`

	// Path points to the bbolt file when using the disk backend.
	// When empty the default path is used.
	// Ignored by the memory backend.
	Path string `js:"path"`

	// MemoryOptions contains memory-backend specific configuration.
	// Ignored by the "disk" backend.
	MemoryOptions *MemoryOptions `js:"memory"`

	// DiskOptions contains bbolt-specific configuration for the "disk" backend.
	// Ignored by the "memory" backend.
	DiskOptions *DiskOptions `js:"disk"`
}

// NewOptionsFrom converts a Sobek (JS) value into an Options instance, applying defaults
// and validating user input. It's intentionally strict to fail fast on invalid configs.
func NewOptionsFrom(vu modules.VU, options sobek.Value) (Options, error) {
	opts := Options{
		Backend: DefaultBackend,
	}

	if common.IsNullish(options) {
		return opts, nil
	}

	err := vu.Runtime().ExportTo(options, &opts)
	if err != nil {
		return opts, fmt.Errorf("%w: %w", store.ErrKVOptionsInvalid, err)
	}

	if opts.Backend == "" {
		opts.Backend = DefaultBackend
	}

	switch opts.Backend {
	case BackendMemory:
		// Path and disk knobs are irrelevant; drop them so they don't affect Equal.
		opts.Path = ""
		opts.DiskOptions = nil
	case BackendDisk:
		canonicalPath, err := store.ResolveDiskPath(opts.Path)
		if err != nil {
			return opts, err
		}

		opts.Path = canonicalPath
		opts.MemoryOptions = nil

		err = opts.DiskOptions.Validate()
		if err != nil {
			return opts, err
		}
	default:
		return opts, fmt.Errorf(
			"%w: %q; valid values are: %q, %q",
			store.ErrInvalidBackend, opts.Backend, BackendMemory, BackendDisk,
		)
	}

	return opts, nil
}

// Equal checks if two Options are equal.
func (o Options) Equal(other Options) bool {
	return o.Backend == other.Backend &&
		o.Path == other.Path &&
		o.MemoryOptions.Equal(other.MemoryOptions) &&
		o.DiskOptions.Equal(other.DiskOptions)
}
