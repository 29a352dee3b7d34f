package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/photogeoview/photogeoview/internal/catalog"
	"github.com/photogeoview/photogeoview/internal/gps"
	"github.com/photogeoview/photogeoview/internal/loader"
)

type scanOptions struct {
	recursive  bool
	thumbnails bool
	export     string
	size       int
}

func newScanCommand(e *env) *cobra.Command {
	opts := scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan [flags] <dir>",
		Short: "Load every photo of a folder and report locations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("recursive") {
				e.cfg.Scan.Recursive = opts.recursive
			}
			return runScan(cmd.Context(), cmd.OutOrStdout(), e, args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.recursive, "recursive", "r", false, "Include subdirectories")
	cmd.Flags().BoolVar(&opts.thumbnails, "thumbnails", false, "Generate cached thumbnails while scanning")
	cmd.Flags().StringVar(&opts.export, "export", "", "Write located photos to this catalog file")
	cmd.Flags().IntVar(&opts.size, "size", 0, "Thumbnail size in pixels (defaults to the configured size)")

	return cmd
}

func runScan(ctx context.Context, w io.Writer, e *env, dir string, opts scanOptions) error {
	a, err := e.app(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var cat *catalog.Catalog
	if opts.export != "" {
		cat = catalog.New(opts.export, e.log)
		if err := cat.Load(); err != nil {
			return err
		}
	}

	batch, err := a.LoadFolder(ctx, dir, loader.Options{
		Metadata:   true,
		Thumbnails: opts.thumbnails,
		Width:      opts.size,
		Height:     opts.size,
	})
	if err != nil {
		return err
	}

	for ev := range batch.Events() {
		name := filepath.Base(ev.Path)
		switch {
		case ev.Cancelled():
			continue
		case ev.Err != nil:
			fmt.Fprintf(w, "%s\terror: %v\n", name, ev.Err)
		case ev.Record.HasLocation():
			fmt.Fprintf(w, "%s\t%s\n", name, gps.Format(ev.Record.GPS.Latitude, ev.Record.GPS.Longitude))
		default:
			fmt.Fprintf(w, "%s\t-\n", name)
		}
		if cat != nil && ev.Err == nil {
			cat.Add(ev.Record)
		}
	}

	sum := batch.Wait()
	fmt.Fprintf(w, "%d photos, %d located, %d failed", sum.Total, sum.Located, sum.Failed)
	if sum.Cancelled > 0 {
		fmt.Fprintf(w, ", %d cancelled", sum.Cancelled)
	}
	fmt.Fprintln(w)

	if cat != nil {
		if err := cat.Save(); err != nil {
			return err
		}
		fmt.Fprintf(w, "Catalog %s: %d located photos\n", cat.Path(), cat.Len())
	}

	return ctx.Err()
}
