// Package mirror copies cached thumbnails to an S3-compatible bucket so
// other machines can reuse them.
package mirror

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/photogeoview/photogeoview/internal/logger"
	"github.com/photogeoview/photogeoview/internal/progress"
	"github.com/photogeoview/photogeoview/internal/thumbnail"
	"github.com/photogeoview/photogeoview/internal/worker"
	"github.com/photogeoview/photogeoview/pkg/s3client"
)

const contentType = "image/jpeg"

// Mirror uploads thumbnails to a bucket. It satisfies thumbnail.Mirror.
type Mirror struct {
	store   s3client.ObjectStore
	log     *logger.Logger
	retry   RetryConfig
	timeout time.Duration
}

var _ thumbnail.Mirror = (*Mirror)(nil)

// Option configures a Mirror
type Option func(*Mirror)

// WithRetry overrides the retry policy
func WithRetry(rc RetryConfig) Option {
	return func(m *Mirror) {
		m.retry = rc
	}
}

// WithTimeout bounds every single upload; zero means no bound
func WithTimeout(d time.Duration) Option {
	return func(m *Mirror) {
		m.timeout = d
	}
}

// New creates a mirror writing to store
func New(store s3client.ObjectStore, log *logger.Logger, opts ...Option) *Mirror {
	if log == nil {
		log = logger.Nop()
	}
	m := &Mirror{
		store: store,
		log:   log.Component("mirror"),
		retry: DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ObjectKey returns the bucket key of a cache key, relative to the store prefix
func ObjectKey(key string) string {
	return key + ".jpg"
}

// Put uploads one encoded thumbnail unless the bucket already has it
func (m *Mirror) Put(ctx context.Context, key string, data []byte) error {
	_, err := m.put(ctx, key, data)
	return err
}

// put reports whether an upload happened
func (m *Mirror) put(ctx context.Context, key string, data []byte) (bool, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	objectKey := ObjectKey(key)

	exists, err := m.store.ObjectExists(ctx, objectKey)
	if err != nil {
		m.log.Warn("Failed to check if %s exists: %v", objectKey, err)
	} else if exists {
		m.log.Debug("Skipping %s, already mirrored", objectKey)
		return false, nil
	}

	metadata := map[string]string{"cache-key": key}
	err = RetryWithBackoff(ctx, m.log, "upload "+objectKey, func() error {
		return m.store.UploadFile(ctx, bytes.NewReader(data), objectKey, int64(len(data)), metadata, contentType)
	}, m.retry)
	if err != nil {
		return false, fmt.Errorf("failed to mirror %s: %w", objectKey, err)
	}
	return true, nil
}

// SyncSummary counts the outcome of a Sync
type SyncSummary struct {
	Total    int `json:"total" yaml:"total"`
	Uploaded int `json:"uploaded" yaml:"uploaded"`
	Skipped  int `json:"skipped" yaml:"skipped"`
	Failed   int `json:"failed" yaml:"failed"`
}

// Sync uploads every artifact of cache that the bucket lacks, using up to
// workers concurrent uploads. Individual failures are counted, not returned.
func (m *Mirror) Sync(ctx context.Context, cache *thumbnail.Cache, workers int) (SyncSummary, error) {
	keys, err := cache.Keys()
	if err != nil {
		return SyncSummary{}, err
	}

	m.log.Info("Syncing %d thumbnails to %s/%s", len(keys), m.store.GetBucketName(), m.store.GetPrefix())

	pool := worker.NewPool(workers)
	prog := progress.New(m.log, "Mirroring")
	prog.Start(len(keys))

	var uploaded, skipped, failed atomic.Int64

	for _, key := range keys {
		key := key
		submitted := pool.Submit(ctx, func() {
			data, err := os.ReadFile(cache.Path(key))
			if err != nil {
				failed.Add(1)
				prog.Error(key, err)
				return
			}

			done, err := m.put(ctx, key, data)
			switch {
			case err != nil:
				failed.Add(1)
				prog.Error(key, err)
			case done:
				uploaded.Add(1)
				prog.Complete(key)
			default:
				skipped.Add(1)
				prog.Skip(key)
			}
		})
		if !submitted {
			break
		}
	}

	pool.Wait()
	prog.Finish()

	sum := SyncSummary{
		Total:    len(keys),
		Uploaded: int(uploaded.Load()),
		Skipped:  int(skipped.Load()),
		Failed:   int(failed.Load()),
	}
	if err := ctx.Err(); err != nil {
		return sum, err
	}
	return sum, nil
}
