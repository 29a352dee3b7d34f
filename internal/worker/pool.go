// internal/worker/pool.go
package worker

import (
	"context"
	"sync"
)

// Pool represents a bounded worker pool for concurrent operations
type Pool struct {
	wg      sync.WaitGroup
	workers chan struct{}
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		workers: make(chan struct{}, size),
	}
}

// Size returns the maximum number of concurrent tasks
func (p *Pool) Size() int {
	return cap(p.workers)
}

// Submit runs task once a worker is free. It blocks while all workers are
// busy and returns false, without running task, if ctx is done first.
func (p *Pool) Submit(ctx context.Context, task func()) bool {
	// Cancellation wins over a free worker
	if ctx.Err() != nil {
		return false
	}

	select {
	case p.workers <- struct{}{}: // Acquire a worker
	case <-ctx.Done():
		return false
	}

	p.wg.Add(1)
	go func() {
		defer func() {
			<-p.workers // Release the worker
			p.wg.Done()
		}()

		task()
	}()
	return true
}

// Wait waits for all submitted tasks to complete
func (p *Pool) Wait() {
	p.wg.Wait()
}
