package store

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

// DiskConfig holds validated bbolt tuning knobs.
// Nil pointer fields keep bbolt's own defaults.
type DiskConfig struct {
	// Timeout is the amount of time to wait to obtain the file lock.
	// Zero waits indefinitely.
	Timeout *time.Duration
	// NoSync skips fsync after each commit. Faster, but a crash may lose
	// the most recent writes.
	NoSync *bool
	// NoFreelistSync disables syncing the freelist to disk, trading a slower
	// recovery for faster writes.
	NoFreelistSync *bool
	// FreelistType selects the freelist implementation: "array" or "map".
	FreelistType *string
	// ReadOnly opens the database with a shared lock; every write fails.
	ReadOnly *bool
	// InitialMmapSize is the initial mmap size of the database in bytes.
	InitialMmapSize *int
	// Logger receives lifecycle events. Nil discards them.
	Logger *slog.Logger
}

// validate validates the DiskConfig.
func (cfg *DiskConfig) validate() error {
	if cfg == nil {
		return nil
	}

	if cfg.Timeout != nil && *cfg.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be non-negative", ErrKVOptionsInvalid)
	}

	if cfg.InitialMmapSize != nil && *cfg.InitialMmapSize < 0 {
		return fmt.Errorf("%w: initialMmapSize must be non-negative", ErrKVOptionsInvalid)
	}

	if cfg.FreelistType != nil {
		switch strings.ToLower(*cfg.FreelistType) {
		case "", "array", "map":
		default:
			return fmt.Errorf("%w: freelistType: %q", ErrKVOptionsInvalid, *cfg.FreelistType)
		}
	}

	return nil
}

// logger returns the configured logger or one that discards everything.
func (cfg *DiskConfig) logger() *slog.Logger {
	if cfg == nil || cfg.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return cfg.Logger
}

// buildBBoltOptions builds bolt.Options from DiskConfig.
// A nil cfg yields nil, which makes bbolt use its own defaults.
func buildBBoltOptions(cfg *DiskConfig) (*bolt.Options, error) {
	if cfg == nil {
		//nolint:nilnil // nil options select bbolt's defaults.
		return nil, nil
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Start from bbolt's defaults to avoid changing behavior when new fields are added.
	opts := *bolt.DefaultOptions

	if cfg.Timeout != nil {
		opts.Timeout = *cfg.Timeout
	}

	if cfg.NoSync != nil {
		opts.NoSync = *cfg.NoSync
	}

	if cfg.NoFreelistSync != nil {
		opts.NoFreelistSync = *cfg.NoFreelistSync
	}

	if cfg.FreelistType != nil {
		if strings.EqualFold(*cfg.FreelistType, "map") {
			opts.FreelistType = bolt.FreelistMapType
		} else {
			opts.FreelistType = bolt.FreelistArrayType
		}
	}

	if cfg.ReadOnly != nil {
		opts.ReadOnly = *cfg.ReadOnly
	}

	if cfg.InitialMmapSize != nil {
		opts.InitialMmapSize = *cfg.InitialMmapSize
	}

	return &opts, nil
}
