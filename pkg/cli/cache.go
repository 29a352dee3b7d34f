package cli

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newCacheCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the thumbnail cache",
	}

	var format string
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the number and total size of cached thumbnails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(format); err != nil {
				return err
			}
			a, err := e.app(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := a.Cache.Stats()
			if err != nil {
				return err
			}
			if format != formatText {
				return writeStructured(cmd.OutOrStdout(), format, stats)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Directory: %s\nEntries:   %d\nSize:      %s\n",
				stats.Dir, stats.EntryCount, humanize.Bytes(uint64(stats.TotalBytes)))
			return nil
		},
	}
	statsCmd.Flags().StringVarP(&format, "output", "o", formatText, "Output format (text, json, yaml)")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached thumbnail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.app(cmd.Context())
			if err != nil {
				return err
			}
			n := a.Cache.EntryCount()
			if err := a.Cache.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d thumbnails from %s\n", n, a.Cache.Dir())
			return nil
		},
	}

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Upload cached thumbnails missing from the configured mirror bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.app(cmd.Context())
			if err != nil {
				return err
			}
			if a.Mirror == nil {
				return errors.New("no mirror configured (set mirror.endpoint)")
			}
			sum, err := a.Mirror.Sync(cmd.Context(), a.Cache, a.Config.Workers)
			fmt.Fprintf(cmd.OutOrStdout(), "%d thumbnails: %d uploaded, %d already mirrored, %d failed\n",
				sum.Total, sum.Uploaded, sum.Skipped, sum.Failed)
			if err != nil {
				return err
			}
			if sum.Failed > 0 {
				return fmt.Errorf("%d thumbnails failed to upload", sum.Failed)
			}
			return nil
		},
	}

	cmd.AddCommand(statsCmd, clearCmd, syncCmd)
	return cmd
}
