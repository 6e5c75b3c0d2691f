package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/benzoXdev/uglifyphp/internal/cache"
)

// NewCacheCmd creates the cache command with its stats and prune subcommands.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or prune the result cache",
		Long: `The result cache stores minified output of files processed with --cache,
keyed by file content and options. It lives in the XDG cache directory.`,
	}
	cmd.PersistentFlags().String("cache-dir", "", "Cache directory (default: XDG cache directory)")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show cache size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCache(cmd)
			if err != nil {
				return err
			}
			defer store.Close()
			s, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Path:    %s\nEntries: %d\nSize:    %s\n",
				store.Path(), s.Entries, humanize.Bytes(uint64(s.Bytes)))
			return nil
		},
	}

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Remove entries not used recently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			olderThan, err := cmd.Flags().GetDuration("older-than")
			if err != nil {
				return err
			}
			store, err := openCache(cmd)
			if err != nil {
				return err
			}
			defer store.Close()
			n, err := store.Prune(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", n)
			return nil
		},
	}
	prune.Flags().Duration("older-than", 30*24*time.Hour, "Remove entries unused for this long (0 removes all)")

	cmd.AddCommand(stats, prune)
	return cmd
}

func openCache(cmd *cobra.Command) (*cache.Store, error) {
	dir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = cache.DefaultDir()
	}
	return cache.Open(dir)
}
