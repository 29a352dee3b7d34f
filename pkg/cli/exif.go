package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/photogeoview/photogeoview/internal/metadata"
	"github.com/photogeoview/photogeoview/pkg/common"
)

func newExifCommand(e *env) *cobra.Command {
	var format string
	var categories bool

	cmd := &cobra.Command{
		Use:   "exif [flags] <file>",
		Short: "Show the EXIF metadata of a photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(format); err != nil {
				return err
			}
			return runExif(cmd.Context(), cmd.OutOrStdout(), e, args[0], format, categories)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", formatText, "Output format (text, json, yaml)")
	cmd.Flags().BoolVar(&categories, "categories", false, "Group fields by category")

	return cmd
}

func runExif(ctx context.Context, w io.Writer, e *env, path, format string, categories bool) error {
	a, err := e.app(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	record, err := a.Extractor.Read(path)
	if err != nil && common.KindOf(err) != common.KindNoMetadata {
		return err
	}

	fields := metadata.ToMap(record)

	if format == formatText {
		if !categories {
			fmt.Fprintln(w, metadata.Summary(record))
			return nil
		}
		grouped := metadata.Categorize(fields)
		for _, c := range metadata.Categories {
			group := grouped[c]
			if len(group) == 0 {
				continue
			}
			fmt.Fprintf(w, "[%s]\n", c)
			writeFields(w, group)
		}
		return nil
	}

	if categories {
		grouped := make(map[string]map[string]interface{})
		for c, group := range metadata.Categorize(fields) {
			grouped[string(c)] = group
		}
		return writeStructured(w, format, grouped)
	}
	return writeStructured(w, format, fields)
}

// writeFields prints key: value lines sorted by key
func writeFields(w io.Writer, fields map[string]interface{}) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %v\n", k, fields[k])
	}
}
