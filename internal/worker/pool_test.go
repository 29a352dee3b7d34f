package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPool_WaitCoversAllTasks(t *testing.T) {
	p := NewPool(3)
	var done atomic.Int32

	for i := 0; i < 20; i++ {
		ok := p.Submit(context.Background(), func() {
			time.Sleep(time.Millisecond)
			done.Add(1)
		})
		assert.True(t, ok)
	}
	p.Wait()

	assert.Equal(t, int32(20), done.Load())
}

func TestPool_Bounded(t *testing.T) {
	p := NewPool(2)
	var running, peak atomic.Int32

	for i := 0; i < 10; i++ {
		p.Submit(context.Background(), func() {
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			running.Add(-1)
		})
	}
	p.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Equal(t, 2, p.Size())
}

func TestPool_SubmitAfterCancel(t *testing.T) {
	p := NewPool(1)
	ctx, cancel := context.WithCancel(context.Background())

	release := make(chan struct{})
	assert.True(t, p.Submit(ctx, func() { <-release }))

	cancel()
	var ran atomic.Bool
	assert.False(t, p.Submit(ctx, func() { ran.Store(true) }))

	close(release)
	p.Wait()
	assert.False(t, ran.Load())
}

func TestNewPool_MinimumSize(t *testing.T) {
	assert.Equal(t, 1, NewPool(0).Size())
}
