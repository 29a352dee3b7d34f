package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/photogeoview/photogeoview/internal/gps"
)

func newGPSCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gps",
		Short: "Coordinate helpers",
	}

	var precision int
	formatCmd := &cobra.Command{
		Use:   "format [flags] <lat> <lon>",
		Short: "Render decimal degrees with hemisphere letters",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid latitude %q: %w", args[0], err)
			}
			lon, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid longitude %q: %w", args[1], err)
			}
			if !gps.Validate(lat, lon) {
				return fmt.Errorf("coordinate out of range: %v, %v", lat, lon)
			}
			if gps.IsNullIsland(lat, lon) {
				e.log.Warn("0, 0 is treated as no location")
			}
			fmt.Fprintln(cmd.OutOrStdout(), gps.FormatForDisplay(lat, lon, precision))
			return nil
		},
	}
	formatCmd.Flags().IntVar(&precision, "precision", gps.DefaultPrecision, "Number of decimals")

	cmd.AddCommand(formatCmd)
	return cmd
}
