// Package app wires the components of one process from a Config. Nothing in
// the module keeps package-level state; everything hangs off an App.
package app

import (
	"context"
	"fmt"

	"github.com/photogeoview/photogeoview/internal/catalog"
	"github.com/photogeoview/photogeoview/internal/config"
	"github.com/photogeoview/photogeoview/internal/loader"
	"github.com/photogeoview/photogeoview/internal/logger"
	"github.com/photogeoview/photogeoview/internal/metadata"
	"github.com/photogeoview/photogeoview/internal/mirror"
	"github.com/photogeoview/photogeoview/internal/scanner"
	"github.com/photogeoview/photogeoview/internal/thumbnail"
	"github.com/photogeoview/photogeoview/pkg/s3client"
)

// App is the explicit context object of the viewer core
type App struct {
	Config     *config.Config
	Log        *logger.Logger
	Cache      *thumbnail.Cache
	Thumbnails *thumbnail.Generator
	Extractor  *metadata.Extractor
	Scanner    *scanner.Scanner
	Loader     *loader.Loader
	Catalog    *catalog.Catalog

	// Mirror is nil unless a mirror endpoint is configured
	Mirror *mirror.Mirror
}

// Option configures New
type Option func(*options)

type options struct {
	store s3client.ObjectStore
}

// WithObjectStore uses store as the mirror target instead of dialing the
// configured endpoint
func WithObjectStore(store s3client.ObjectStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// New builds every component from cfg
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.New()
	}
	if log == nil {
		log = logger.Nop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cache, err := thumbnail.NewCache(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config: cfg,
		Log:    log,
		Cache:  cache,
	}

	genOpts := []thumbnail.Option{thumbnail.WithQuality(cfg.Thumbnail.Quality)}

	store := o.store
	if store == nil && cfg.Mirror.Enabled() {
		store, err = s3client.New(ctx, s3client.Config{
			Endpoint:  cfg.Mirror.Endpoint,
			Region:    cfg.Mirror.Region,
			Bucket:    cfg.Mirror.Bucket,
			AccessKey: cfg.Mirror.AccessKey,
			SecretKey: cfg.Mirror.SecretKey,
			UseSSL:    cfg.Mirror.UseSSL,
			Prefix:    cfg.Mirror.Prefix,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize thumbnail mirror: %w", err)
		}
	}
	if store != nil {
		a.Mirror = mirror.New(store, log, mirror.WithTimeout(cfg.Mirror.Timeout))
		genOpts = append(genOpts, thumbnail.WithMirror(a.Mirror))
	}

	workers := config.ClampWorkers(cfg.Workers)

	a.Thumbnails = thumbnail.NewGenerator(cache, log, genOpts...)
	a.Extractor = metadata.NewExtractor(log, nil)
	a.Scanner = scanner.New(log, cfg.Scan.Recursive)
	a.Loader = loader.New(a.Extractor, a.Thumbnails, workers, log)
	a.Catalog = catalog.New(cfg.CatalogPath, log)

	log.Debug("Initialized with cache %s, %d workers", cfg.CacheDir, workers)
	return a, nil
}

// LoadFolder scans dir and starts a batch over the images found
func (a *App) LoadFolder(ctx context.Context, dir string, opts loader.Options) (*loader.Batch, error) {
	paths, err := a.Scanner.Scan(ctx, dir)
	if err != nil {
		return nil, err
	}
	if opts.Thumbnails && (opts.Width <= 0 || opts.Height <= 0) {
		opts.Width = a.Config.Thumbnail.Width
		opts.Height = a.Config.Thumbnail.Height
	}
	return a.Loader.Start(ctx, paths, opts), nil
}

// Close waits for background mirror uploads to finish
func (a *App) Close() {
	a.Thumbnails.Wait()
}
