// internal/progress/reporter.go
package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/photogeoview/photogeoview/internal/logger"
)

// Snapshot is the state of a batch at one point in time
type Snapshot struct {
	Total     int
	Completed int
	Skipped   int
	Errors    int
}

// Processed returns how many files are finished in any way
func (s Snapshot) Processed() int {
	return s.Completed + s.Skipped + s.Errors
}

// String renders "N of M"
func (s Snapshot) String() string {
	return fmt.Sprintf("%d of %d", s.Processed(), s.Total)
}

// Reporter tracks and reports batch progress
type Reporter struct {
	mu             sync.Mutex
	log            *logger.Logger
	label          string
	total          int
	completed      int
	skipped        int
	errors         int
	startTime      time.Time
	lastUpdateTime time.Time
	updateInterval time.Duration
}

// New creates a new progress reporter. label names the work in log lines,
// e.g. "Loading".
func New(log *logger.Logger, label string) *Reporter {
	if log == nil {
		log = logger.Nop()
	}
	return &Reporter{
		log:            log.Component("progress"),
		label:          label,
		updateInterval: 2 * time.Second,
	}
}

// SetInterval sets the minimum time between progress lines
func (r *Reporter) SetInterval(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateInterval = d
}

// Start initializes the progress reporter with the total number of files
func (r *Reporter) Start(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total = total
	r.completed = 0
	r.skipped = 0
	r.errors = 0
	r.startTime = time.Now()
	r.lastUpdateTime = time.Time{}

	r.log.Info("%s %d files", r.label, total)
}

// Complete marks a file as successfully processed
func (r *Reporter) Complete(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.completed++
	r.updateProgress()
}

// Skip marks a file as skipped
func (r *Reporter) Skip(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.skipped++
	r.log.Debug("Skipped %s", path)
	r.updateProgress()
}

// Error marks a file as failed
func (r *Reporter) Error(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errors++
	r.log.Debug("Failed %s: %v", path, err)
	r.updateProgress()
}

// Snapshot returns the current counters
func (r *Reporter) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Snapshot{
		Total:     r.total,
		Completed: r.completed,
		Skipped:   r.skipped,
		Errors:    r.errors,
	}
}

// Finish completes the progress reporting
func (r *Reporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	duration := time.Since(r.startTime)

	r.log.Info("%s complete: %d/%d files, %d skipped, %d errors in %s",
		r.label, r.completed, r.total, r.skipped, r.errors, duration.Round(time.Millisecond))
}

// updateProgress logs "N of M" at most once per interval, and always for the last file
func (r *Reporter) updateProgress() {
	now := time.Now()
	processed := r.completed + r.skipped + r.errors
	if processed < r.total && now.Sub(r.lastUpdateTime) < r.updateInterval {
		return
	}

	r.lastUpdateTime = now
	duration := now.Sub(r.startTime)

	if processed == 0 || r.total == 0 {
		return
	}

	percentage := float64(processed) / float64(r.total) * 100

	// Calculate estimated time remaining
	var eta string
	if r.completed > 0 {
		timePerFile := duration / time.Duration(processed)
		remaining := timePerFile * time.Duration(r.total-processed)
		eta = remaining.Round(time.Second).String()
	} else {
		eta = "unknown"
	}

	r.log.Info("%s: %d of %d (%.1f%%, %d skipped, %d errors) ETA: %s",
		r.label, processed, r.total, percentage, r.skipped, r.errors, eta)
}
