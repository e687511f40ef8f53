package service

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned to callers whose work could not run because the
// service is shutting down.
var ErrClosed = errors.New("service is shutting down")

type call struct {
	fn   func(context.Context) (any, error)
	done chan callResult
}

type callResult struct {
	out any
	err error
}

// Bridge runs provider calls on a fixed worker pool fed by a bounded queue.
// Callers block until their call completes; the work itself runs under the
// bridge's lifetime context, so a caller that gives up never cancels work
// already in flight.
type Bridge struct {
	ctx    context.Context
	cancel context.CancelFunc
	queue  chan call
	wg     sync.WaitGroup
}

func newBridge(workers, queueSize int) *Bridge {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bridge{
		ctx:    ctx,
		cancel: cancel,
		queue:  make(chan call, queueSize),
	}
	for i := 0; i < workers; i++ {
		b.wg.Add(1)
		go b.worker()
	}
	return b
}

func (b *Bridge) worker() {
	defer b.wg.Done()
	for {
		select {
		case c := <-b.queue:
			out, err := c.fn(b.ctx)
			c.done <- callResult{out: out, err: err}
		case <-b.ctx.Done():
			return
		}
	}
}

// Do submits fn to the pool and blocks until it returns. If the bridge is
// closed before fn can run, Do returns ErrClosed.
func (b *Bridge) Do(fn func(context.Context) (any, error)) (any, error) {
	c := call{fn: fn, done: make(chan callResult, 1)}

	select {
	case b.queue <- c:
	case <-b.ctx.Done():
		return nil, ErrClosed
	}

	select {
	case r := <-c.done:
		return r.out, r.err
	case <-b.ctx.Done():
		// The call may have completed just as shutdown began.
		select {
		case r := <-c.done:
			return r.out, r.err
		default:
			return nil, ErrClosed
		}
	}
}

// Close stops the workers and fails any call still waiting in the queue.
func (b *Bridge) Close() {
	b.cancel()
	b.wg.Wait()
	for {
		select {
		case c := <-b.queue:
			c.done <- callResult{err: ErrClosed}
		default:
			return
		}
	}
}
