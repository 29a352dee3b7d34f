// Package loader runs metadata extraction and thumbnail generation for a
// whole folder on a bounded worker pool.
//
// Workers never share mutable state. Each one reports the file it starts and
// the event it produces over channels to a single consumer goroutine, which
// owns the set of in-flight files, the counters and the outgoing events.
package loader

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/photogeoview/photogeoview/internal/logger"
	"github.com/photogeoview/photogeoview/internal/metadata"
	"github.com/photogeoview/photogeoview/internal/progress"
	"github.com/photogeoview/photogeoview/internal/thumbnail"
	"github.com/photogeoview/photogeoview/internal/worker"
	"github.com/photogeoview/photogeoview/pkg/models"
)

// Options selects the work done per file
type Options struct {
	Metadata   bool
	Thumbnails bool
	Width      int
	Height     int
}

// Event is the completion of one file
type Event struct {
	BatchID   string
	Path      string
	Record    *models.ImageMetadataRecord
	Thumbnail *thumbnail.Result
	Err       error

	// Done and Total describe batch progress including this event
	Done  int
	Total int
}

// Cancelled reports whether the file was dropped because the batch was cancelled
func (e Event) Cancelled() bool {
	return errors.Is(e.Err, context.Canceled)
}

// Summary is the outcome of a finished batch
type Summary struct {
	ID        string `json:"id" yaml:"id"`
	Total     int    `json:"total" yaml:"total"`
	Completed int    `json:"completed" yaml:"completed"`
	Failed    int    `json:"failed" yaml:"failed"`
	Cancelled int    `json:"cancelled" yaml:"cancelled"`
	Located   int    `json:"located" yaml:"located"`
}

// MetadataSource extracts metadata records, e.g. *metadata.Extractor
type MetadataSource interface {
	Extract(path string) *models.ImageMetadataRecord
}

// ThumbnailSource produces thumbnails, e.g. *thumbnail.Generator
type ThumbnailSource interface {
	Generate(ctx context.Context, path string, width, height int) (*thumbnail.Result, error)
}

var (
	_ MetadataSource  = (*metadata.Extractor)(nil)
	_ ThumbnailSource = (*thumbnail.Generator)(nil)
)

// Loader starts batches
type Loader struct {
	extractor MetadataSource
	thumbs    ThumbnailSource
	workers   int
	log       *logger.Logger
}

// New creates a loader. thumbs may be nil when no batch requests thumbnails.
func New(extractor MetadataSource, thumbs ThumbnailSource, workers int, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{
		extractor: extractor,
		thumbs:    thumbs,
		workers:   workers,
		log:       log.Component("loader"),
	}
}

// Batch is one running folder load
type Batch struct {
	id     string
	total  int
	events chan Event
	cancel context.CancelFunc

	started     chan string
	completions chan Event
	pendingReq  chan chan []string
	progressReq chan chan progress.Snapshot
	done        chan struct{}

	reporter *progress.Reporter
	summary  Summary
	log      *logger.Logger
}

// Start begins processing paths. Completions are delivered on the batch's
// Events channel in the order they finish.
func (l *Loader) Start(ctx context.Context, paths []string, opts Options) *Batch {
	ctx, cancel := context.WithCancel(ctx)

	id := uuid.NewString()
	log := l.log.With("batch", id)

	b := &Batch{
		id:          id,
		total:       len(paths),
		events:      make(chan Event, len(paths)),
		cancel:      cancel,
		started:     make(chan string),
		completions: make(chan Event),
		pendingReq:  make(chan chan []string),
		progressReq: make(chan chan progress.Snapshot),
		done:        make(chan struct{}),
		reporter:    progress.New(log, "Loading"),
		log:         log,
	}

	b.reporter.Start(len(paths))

	go b.consume()
	go l.dispatch(ctx, b, paths, opts)

	return b
}

// dispatch submits one task per path until the batch is cancelled
func (l *Loader) dispatch(ctx context.Context, b *Batch, paths []string, opts Options) {
	pool := worker.NewPool(l.workers)

	for _, path := range paths {
		path := path
		if !pool.Submit(ctx, func() { b.completions <- l.process(ctx, b, path, opts) }) {
			break
		}
	}

	pool.Wait()
	close(b.completions)
}

// process runs on a worker
func (l *Loader) process(ctx context.Context, b *Batch, path string, opts Options) Event {
	ev := Event{BatchID: b.id, Path: path}

	// No new work starts after cancellation
	if err := ctx.Err(); err != nil {
		ev.Err = err
		return ev
	}

	b.started <- path

	if opts.Metadata && l.extractor != nil {
		ev.Record = l.extractor.Extract(path)
	}

	if opts.Thumbnails && l.thumbs != nil {
		res, err := l.thumbs.Generate(ctx, path, opts.Width, opts.Height)
		if err != nil {
			ev.Err = err
		} else {
			ev.Thumbnail = res
		}
	}

	return ev
}

// consume is the only goroutine touching the in-flight set and counters
func (b *Batch) consume() {
	defer b.cancel()

	inFlight := make(map[string]struct{})
	sum := Summary{ID: b.id, Total: b.total}
	finished := 0

	for {
		select {
		case path := <-b.started:
			inFlight[path] = struct{}{}

		case ev, ok := <-b.completions:
			if !ok {
				sum.Cancelled = b.total - sum.Completed - sum.Failed
				b.summary = sum
				b.reporter.Finish()
				close(b.events)
				close(b.done)
				return
			}

			delete(inFlight, ev.Path)
			finished++

			switch {
			case ev.Cancelled():
				b.reporter.Skip(ev.Path)
			case ev.Err != nil:
				sum.Failed++
				b.reporter.Error(ev.Path, ev.Err)
			default:
				sum.Completed++
				if ev.Record.HasLocation() {
					sum.Located++
				}
				b.reporter.Complete(ev.Path)
			}

			ev.Done = finished
			ev.Total = b.total
			b.events <- ev

		case reply := <-b.pendingReq:
			pending := make([]string, 0, len(inFlight))
			for p := range inFlight {
				pending = append(pending, p)
			}
			sort.Strings(pending)
			reply <- pending

		case reply := <-b.progressReq:
			reply <- b.reporter.Snapshot()
		}
	}
}

// ID returns the batch identifier
func (b *Batch) ID() string {
	return b.id
}

// Events delivers one event per processed file and is closed when the
// batch ends
func (b *Batch) Events() <-chan Event {
	return b.events
}

// Cancel stops the batch. Files already being processed may still complete;
// no new file is started.
func (b *Batch) Cancel() {
	b.log.Debug("Cancelling batch")
	b.cancel()
}

// Pending returns the files currently being processed, sorted
func (b *Batch) Pending() []string {
	reply := make(chan []string, 1)
	select {
	case b.pendingReq <- reply:
		return <-reply
	case <-b.done:
		return nil
	}
}

// Progress returns the current counters
func (b *Batch) Progress() progress.Snapshot {
	reply := make(chan progress.Snapshot, 1)
	select {
	case b.progressReq <- reply:
		return <-reply
	case <-b.done:
		return b.reporter.Snapshot()
	}
}

// IsRunning reports whether the batch still has work in flight
func (b *Batch) IsRunning() bool {
	select {
	case <-b.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the batch ends and returns its summary
func (b *Batch) Wait() Summary {
	<-b.done
	return b.summary
}
