package main

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/oshokin/kvstore/kv/store"
)

func newSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store VALUE under KEY, replacing any previous value",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.withStore(func(s *store.DiskStore) error {
				return s.Set(args[0], args[1])
			})
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print the value stored under KEY",
		Long:  "Print the value stored under KEY. Exits with status 1 when KEY is absent.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *store.DiskStore) error {
				value, ok, err := s.Get(args[0])
				if err != nil {
					return err
				}

				if !ok {
					return &exitError{
						code: exitCodeNotFound,
						err:  fmt.Errorf("key %q not found", args[0]),
					}
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), value)

				return err
			})
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete KEY",
		Short: "Remove KEY and print whether it was present",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *store.DiskStore) error {
				deleted, err := s.Delete(args[0])
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatBool(deleted))

				return err
			})
		},
	}
}

func newContainsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "contains KEY",
		Short: "Print whether KEY is present",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *store.DiskStore) error {
				found, err := s.Contains(args[0])
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatBool(found))

				return err
			})
		},
	}
}

func newLenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "len",
		Short: "Print the number of entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(func(s *store.DiskStore) error {
				size, err := s.Len()
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), size)

				return err
			})
		},
	}
}

func newKeysCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Print every key in ascending order, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(func(s *store.DiskStore) error {
				keys, err := s.Keys()
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				for _, key := range keys {
					if _, err := fmt.Fprintln(out, key); err != nil {
						return err
					}
				}

				return nil
			})
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every entry",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.withStore(func(s *store.DiskStore) error {
				return s.Clear()
			})
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Write a snapshot of the database to FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *store.DiskStore) error {
				summary, err := s.Backup(&store.BackupOptions{FileName: args[0]})
				if err != nil {
					return err
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "exported %d entries (%s) to %s\n",
					summary.TotalEntries, humanize.IBytes(uint64(max(summary.BytesWritten, 0))), args[0])

				return err
			})
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	var (
		maxEntries int
		maxBytes   string
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the database contents with the snapshot in FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxEntries < 0 {
				return fmt.Errorf("%w: --max-entries must be non-negative", store.ErrKVOptionsInvalid)
			}

			opts := &store.RestoreOptions{
				FileName:   args[0],
				MaxEntries: maxEntries,
			}

			if maxBytes != "" {
				size, err := humanize.ParseBytes(maxBytes)
				if err != nil {
					return fmt.Errorf("%w: --max-bytes: %w", store.ErrKVOptionsInvalid, err)
				}

				if size > math.MaxInt64 {
					return fmt.Errorf("%w: --max-bytes too large: %s", store.ErrKVOptionsInvalid, maxBytes)
				}

				opts.MaxBytes = int64(size)
			}

			return a.withStore(func(s *store.DiskStore) error {
				summary, err := s.Restore(opts)
				if err != nil {
					return err
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries from %s\n", summary.TotalEntries, args[0])

				return err
			})
		},
	}

	cmd.Flags().IntVar(&maxEntries, "max-entries", 0, "reject snapshots with more entries (0 means no limit)")
	cmd.Flags().StringVar(&maxBytes, "max-bytes", "", "reject snapshots larger than this, e.g. 64MB (empty means no limit)")

	return cmd
}
