package kv

import (
	"fmt"
	"math"
	"strings"

	"github.com/oshokin/kvstore/kv/store"
)

// DiskOptions is the "disk" block of openStore() options.
//
// Each field is optional; an unset field leaves the bbolt default in place.
// Timeout and InitialMmapSize accept either a number or a string, so
// scripts can write `timeout: "1s"` or `initialMmapSize: "64MB"`.
type DiskOptions struct {
	// Timeout bounds the wait for the database file lock.
	// Numbers are milliseconds; strings use Go duration syntax ("500ms", "2s").
	// Unset waits forever.
	Timeout any `js:"timeout"`

	// NoSync turns off the fsync after every commit.
	NoSync *bool `js:"noSync"`

	// NoFreelistSync keeps the freelist out of the file; it is rebuilt on open.
	NoFreelistSync *bool `js:"noFreelistSync"`

	// FreelistType is "array" or "map", case-insensitive.
	FreelistType *string `js:"freelistType"`

	// ReadOnly opens the file under a shared lock. Writes then fail.
	ReadOnly *bool `js:"readOnly"`

	// InitialMmapSize reserves address space up front.
	// Numbers are bytes; strings go through humanize ("64MB", "1GiB").
	InitialMmapSize any `js:"initialMmapSize"`
}

// Validate reports the first option that cannot be parsed.
func (do *DiskOptions) Validate() error {
	_, err := do.ToDiskConfig()

	return err
}

// Equal reports whether do and other produce the same DiskConfig.
// A nil *DiskOptions equals one with no fields set. Options that fail to
// parse are never equal to anything.
func (do *DiskOptions) Equal(other *DiskOptions) bool {
	left, err := do.ToDiskConfig()
	if err != nil {
		return false
	}

	right, err := other.ToDiskConfig()
	if err != nil {
		return false
	}

	if left == nil {
		left = new(store.DiskConfig)
	}

	if right == nil {
		right = new(store.DiskConfig)
	}

	return comparablePointersEqual(left.Timeout, right.Timeout) &&
		comparablePointersEqual(left.NoSync, right.NoSync) &&
		comparablePointersEqual(left.NoFreelistSync, right.NoFreelistSync) &&
		comparablePointersEqual(left.FreelistType, right.FreelistType) &&
		comparablePointersEqual(left.ReadOnly, right.ReadOnly) &&
		comparablePointersEqual(left.InitialMmapSize, right.InitialMmapSize)
}

// ToDiskConfig parses the options into a store.DiskConfig.
// A nil receiver yields a nil config, which NewDiskStore treats as defaults.
func (do *DiskOptions) ToDiskConfig() (*store.DiskConfig, error) {
	if do == nil {
		//nolint:nilnil // nil config means bbolt defaults.
		return nil, nil
	}

	cfg := &store.DiskConfig{
		NoSync:         copyPointer(do.NoSync),
		NoFreelistSync: copyPointer(do.NoFreelistSync),
		ReadOnly:       copyPointer(do.ReadOnly),
	}

	if do.Timeout != nil {
		timeout, err := parseDurationValue(do.Timeout)
		if err != nil {
			return nil, fmt.Errorf("%w: timeout: %w", store.ErrKVOptionsInvalid, err)
		}

		cfg.Timeout = &timeout
	}

	if do.FreelistType != nil {
		freelist := strings.ToLower(*do.FreelistType)

		switch freelist {
		case "", "array", "map":
		default:
			return nil, fmt.Errorf("%w: freelistType: %q", store.ErrKVOptionsInvalid, *do.FreelistType)
		}

		cfg.FreelistType = &freelist
	}

	if do.InitialMmapSize != nil {
		size, err := parseSizeValue(do.InitialMmapSize)
		if err != nil {
			return nil, fmt.Errorf("%w: initialMmapSize: %w", store.ErrKVOptionsInvalid, err)
		}

		if size > math.MaxInt {
			return nil, fmt.Errorf("%w: initialMmapSize too large: %d", store.ErrKVOptionsInvalid, size)
		}

		mmapSize := int(size)
		cfg.InitialMmapSize = &mmapSize
	}

	return cfg, nil
}

// copyPointer returns a pointer to a copy of *p, or nil.
func copyPointer[T any](p *T) *T {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}
