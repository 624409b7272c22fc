// Package worker provides a semaphore-bounded pool for running independent
// tasks concurrently while collecting their errors.
//
// The pool limits the number of goroutines running at once, which keeps
// fan-out over large scope trees from exhausting local resources or tripping
// provider-side throttling. Errors from individual tasks are aggregated and
// returned from Wait; one failing task never affects its siblings.
package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/scopeworks/azscope/internal/errors"
)

// Task is a unit of work executed by the pool.
type Task func() error

// Pool runs tasks with a fixed concurrency limit.
type Pool struct {
	semaphore  chan struct{}
	allErrors  *errors.MultiError
	errsMu     sync.Mutex
	wg         sync.WaitGroup
	isStopping atomic.Bool
}

// NewPool creates a pool that runs at most maxWorkers tasks concurrently.
// A limit below 1 is coerced to 1.
func NewPool(maxWorkers int) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	return &Pool{
		semaphore: make(chan struct{}, maxWorkers),
		allErrors: &errors.MultiError{},
	}
}

// Submit schedules a task for execution. Tasks submitted after Stop are
// silently dropped.
func (p *Pool) Submit(task Task) {
	if p.isStopping.Load() {
		return
	}

	p.wg.Add(1)

	go func() {
		defer p.wg.Done()

		p.semaphore <- struct{}{}
		defer func() { <-p.semaphore }()

		if err := task(); err != nil {
			p.appendError(err)
		}
	}()
}

// SubmitContext schedules a task that is skipped (recorded as a cancellation
// error) if the context is already done by the time a worker picks it up.
func (p *Pool) SubmitContext(ctx context.Context, task Task) {
	p.Submit(func() error {
		if err := ctx.Err(); err != nil {
			return errors.New(err)
		}

		return task()
	})
}

// Wait blocks until every submitted task has finished and returns the
// aggregated errors, or nil if all tasks succeeded.
func (p *Pool) Wait() error {
	p.wg.Wait()

	p.errsMu.Lock()
	defer p.errsMu.Unlock()

	return p.allErrors.ErrorOrNil()
}

// Stop prevents further submissions. Tasks already submitted keep running;
// call Wait to join them.
func (p *Pool) Stop() {
	p.isStopping.Store(true)
}

func (p *Pool) appendError(err error) {
	p.errsMu.Lock()
	defer p.errsMu.Unlock()

	p.allErrors = p.allErrors.Append(err)
}
