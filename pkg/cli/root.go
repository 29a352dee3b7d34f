// pkg/cli/root.go
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/photogeoview/photogeoview/internal/app"
	"github.com/photogeoview/photogeoview/internal/config"
	"github.com/photogeoview/photogeoview/internal/logger"
)

// env is shared by every subcommand of one root command
type env struct {
	v   *viper.Viper
	cfg *config.Config
	log *logger.Logger
}

// app builds the component graph from the loaded configuration
func (e *env) app(ctx context.Context) (*app.App, error) {
	return app.New(ctx, e.cfg, e.log)
}

// Execute runs the root command until it finishes or the process is interrupted
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logger.New(os.Stderr, "info")

	// Handle interruption signals
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		log.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		log.Error("Error executing command: %v", err)
		os.Exit(1)
	}
}

// NewRootCommand returns the photogeoview command tree
func NewRootCommand() *cobra.Command {
	e := &env{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "photogeoview",
		Short: "Inspect photo metadata, locations and thumbnails",
		Long: `A tool for reading EXIF metadata and GPS locations from photos, and for
generating cached thumbnails of photo folders.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(e.v)
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.log = logger.New(cmd.ErrOrStderr(), cfg.LogLevel)
			return nil
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a YAML, JSON or TOML config file")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("cache-dir", "", "Thumbnail cache directory")
	flags.Int("workers", 0, "Number of concurrent workers (1-8)")

	e.v.BindPFlag("config", flags.Lookup("config"))
	e.v.BindPFlag("log_level", flags.Lookup("log-level"))
	e.v.BindPFlag("cache_dir", flags.Lookup("cache-dir"))
	e.v.BindPFlag("workers", flags.Lookup("workers"))

	// Add commands
	rootCmd.AddCommand(
		newExifCommand(e),
		newScanCommand(e),
		newThumbCommand(e),
		newCacheCommand(e),
		newGPSCommand(e),
	)

	return rootCmd
}
