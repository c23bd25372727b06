package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oshokin/kvstore/kv/store"
)

const (
	envPrefix      = "KVSTORE"
	defaultTimeout = time.Second
)

// cliConfig is the merged result of flags, KVSTORE_* environment variables
// and an optional config file, in that order of precedence.
type cliConfig struct {
	DB      string        `mapstructure:"db"`
	Timeout time.Duration `mapstructure:"timeout"`
	NoSync  bool          `mapstructure:"no_sync"`
	Verbose bool          `mapstructure:"verbose"`
}

// app holds state shared by every subcommand of one invocation.
type app struct {
	v      *viper.Viper
	cfg    cliConfig
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	var configFile string

	root := &cobra.Command{
		Use:           "kvstore",
		Short:         "Read and write a kvstore database file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd, configFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "optional config file (yaml, json or toml)")
	flags.String("db", store.DefaultDiskStorePath, "path to the database file")
	flags.Duration("timeout", defaultTimeout, "how long to wait for the database file lock")
	flags.Bool("no-sync", false, "skip fsync after each commit")
	flags.BoolP("verbose", "v", false, "log debug output to stderr")

	for key, flag := range map[string]string{
		"db":      "db",
		"timeout": "timeout",
		"no_sync": "no-sync",
		"verbose": "verbose",
	} {
		// Lookup never returns nil for the flags registered above.
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newSetCmd(a),
		newGetCmd(a),
		newDeleteCmd(a),
		newContainsCmd(a),
		newLenCmd(a),
		newKeysCmd(a),
		newClearCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)

	return root
}

// load merges configuration sources and builds the logger.
func (a *app) load(cmd *cobra.Command, configFile string) error {
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if configFile != "" {
		a.v.SetConfigFile(configFile)

		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}

	if err := a.v.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}

	if a.cfg.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be non-negative", store.ErrKVOptionsInvalid)
	}

	level := slog.LevelWarn
	if a.cfg.Verbose {
		level = slog.LevelDebug
	}

	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	return nil
}

// withStore opens the configured DiskStore, runs fn and closes the store.
func (a *app) withStore(fn func(s *store.DiskStore) error) (err error) {
	timeout := a.cfg.Timeout
	noSync := a.cfg.NoSync

	s, err := store.NewDiskStore(a.cfg.DB, &store.DiskConfig{
		Timeout: &timeout,
		NoSync:  &noSync,
		Logger:  a.logger,
	})
	if err != nil {
		return err
	}

	if err = s.Open(); err != nil {
		return err
	}

	defer func() {
		if closeErr := s.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	a.logger.Debug("using database", slog.String("path", s.Path()))

	return fn(s)
}
