package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newThumbCommand(e *env) *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "thumb [flags] <file>",
		Short: "Generate or look up the cached thumbnail of a photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runThumb(cmd.Context(), cmd.OutOrStdout(), e, args[0], size)
		},
	}

	cmd.Flags().IntVar(&size, "size", 0, "Thumbnail size in pixels (defaults to the configured size)")

	return cmd
}

func runThumb(ctx context.Context, w io.Writer, e *env, path string, size int) error {
	a, err := e.app(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	width, height := a.Config.Thumbnail.Width, a.Config.Thumbnail.Height
	if size > 0 {
		width, height = size, size
	}

	res, err := a.Thumbnails.Generate(ctx, path, width, height)
	if err != nil {
		return err
	}

	location := res.Path
	if location == "" {
		location = "(not cached)"
	}
	fmt.Fprintf(w, "%s\t%dx%d\t%s\t%s\n", location, width, height, humanize.Bytes(uint64(len(res.Data))), res.State)
	return nil
}
