// Package thumbnail produces fixed-size JPEG previews of images and keeps them
// in a content-addressed on-disk cache.
package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
	"golang.org/x/sync/singleflight"

	"github.com/photogeoview/photogeoview/internal/fileinfo"
	"github.com/photogeoview/photogeoview/internal/logger"
	"github.com/photogeoview/photogeoview/pkg/common"
)

// DefaultQuality is the JPEG quality of cache artifacts
const DefaultQuality = 85

// State reports how a thumbnail request was served
type State int

const (
	// StateCacheHit means the artifact was read back from the cache
	StateCacheHit State = iota
	// StateCached means the thumbnail was generated and persisted
	StateCached
	// StateUncached means the thumbnail was generated but could not be persisted
	StateUncached
)

func (s State) String() string {
	switch s {
	case StateCacheHit:
		return "cache_hit"
	case StateCached:
		return "cached"
	case StateUncached:
		return "uncached"
	default:
		return "unknown"
	}
}

// Result is a served thumbnail. Results may be shared between concurrent
// callers and must not be modified.
type Result struct {
	Key   string
	Path  string // cache artifact, empty when uncached
	Image image.Image
	Data  []byte // encoded JPEG
	State State
}

// Mirror receives every newly persisted artifact
type Mirror interface {
	Put(ctx context.Context, key string, data []byte) error
}

// Option configures a Generator
type Option func(*Generator)

// WithQuality sets the JPEG quality (1-100)
func WithQuality(quality int) Option {
	return func(g *Generator) {
		if quality >= 1 && quality <= 100 {
			g.quality = quality
		}
	}
}

// WithMirror copies new artifacts to m
func WithMirror(m Mirror) Option {
	return func(g *Generator) {
		g.mirror = m
	}
}

// Generator serves thumbnails from the cache, generating missing ones. At most
// one generation per key is in flight; concurrent requests share its result.
type Generator struct {
	cache   *Cache
	log     *logger.Logger
	quality int
	mirror  Mirror

	group     singleflight.Group
	generated atomic.Int64
	mirroring sync.WaitGroup
}

// NewGenerator creates a generator backed by cache
func NewGenerator(cache *Cache, log *logger.Logger, opts ...Option) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	g := &Generator{
		cache:   cache,
		log:     log.Component("thumbnail"),
		quality: DefaultQuality,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Cache returns the backing cache
func (g *Generator) Cache() *Cache {
	return g.cache
}

// Wait blocks until every mirror upload started so far has finished
func (g *Generator) Wait() {
	g.mirroring.Wait()
}

// Generated returns how many thumbnails were decoded and resized so far
func (g *Generator) Generated() int64 {
	return g.generated.Load()
}

// Generate returns the width×height thumbnail of path.
//
// A failure to persist the artifact is not an error: the result is returned
// with StateUncached. Unsupported or undecodable sources fail with
// NotAnImage, unreadable ones with IOFailure.
func (g *Generator) Generate(ctx context.Context, path string, width, height int) (*Result, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid thumbnail size %dx%d", width, height)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if !fileinfo.IsImageFile(abs) {
		return nil, common.NewNotAnImageError(abs, errors.New("unsupported extension"))
	}

	key := Key(abs, width, height)

	if res, ok := g.lookup(key); ok {
		g.log.Debug("Cache hit for %s (%dx%d)", abs, width, height)
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v, err, shared := g.group.Do(key, func() (interface{}, error) {
		// Another flight may have finished between lookup and Do
		if res, ok := g.lookup(key); ok {
			return res, nil
		}
		return g.generate(ctx, abs, key, width, height)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		g.log.Debug("Shared in-flight generation for %s", abs)
	}
	return v.(*Result), nil
}

// Thumbnail is the soft form of Generate: failures are logged and yield nil,
// leaving the caller to show a placeholder.
func (g *Generator) Thumbnail(ctx context.Context, path string, width, height int) image.Image {
	res, err := g.Generate(ctx, path, width, height)
	if err != nil {
		g.log.Warn("Failed to generate thumbnail: %v", err)
		return nil
	}
	return res.Image
}

func (g *Generator) lookup(key string) (*Result, bool) {
	data, ok := g.cache.Load(key)
	if !ok {
		return nil, false
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		g.log.Warn("Discarding corrupt cache entry %s: %v", key, err)
		return nil, false
	}

	return &Result{
		Key:   key,
		Path:  g.cache.Path(key),
		Image: img,
		Data:  data,
		State: StateCacheHit,
	}, true
}

func (g *Generator) generate(ctx context.Context, path, key string, width, height int) (*Result, error) {
	src, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	canvas := Compose(Resize(src, width, height), width, height)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: g.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail for %s: %w", path, err)
	}
	g.generated.Add(1)

	res := &Result{
		Key:   key,
		Image: canvas,
		Data:  buf.Bytes(),
		State: StateCached,
	}

	if err := g.cache.Store(key, res.Data); err != nil {
		g.log.Warn("Serving thumbnail without caching: %v", common.NewCacheWriteError(g.cache.Path(key), err))
		res.State = StateUncached
		return res, nil
	}
	res.Path = g.cache.Path(key)
	g.log.Debug("Cached thumbnail of %s as %s", path, key)

	if g.mirror != nil {
		g.mirrorAsync(ctx, key, res.Data)
	}

	return res, nil
}

// mirrorAsync uploads an artifact in the background. The upload outlives
// the request that produced it and is bounded by the mirror's own timeout.
func (g *Generator) mirrorAsync(ctx context.Context, key string, data []byte) {
	ctx = context.WithoutCancel(ctx)

	g.mirroring.Add(1)
	go func() {
		defer g.mirroring.Done()
		if err := g.mirror.Put(ctx, key, data); err != nil {
			g.log.Warn("Failed to mirror thumbnail %s: %v", key, err)
		}
	}()
}

// decodeFile decodes a whole image, recovering from decoder panics on
// malformed input
func decodeFile(path string) (img image.Image, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.NewIOError(path, err)
	}
	defer f.Close()

	defer func() {
		if rec := recover(); rec != nil {
			img = nil
			err = common.NewNotAnImageError(path, fmt.Errorf("decoder panic: %v", rec))
		}
	}()

	img, _, err = image.Decode(f)
	if err != nil {
		return nil, common.NewNotAnImageError(path, err)
	}
	return img, nil
}
