package hookpoint

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/zoobzio/clockz"
)

// workerPool executes async dispatches off the caller's goroutine.
//
// The pool:
//   - Runs dispatches asynchronously so RunAsync never waits on callbacks
//   - Recovers callback panics so they cannot crash the service
//   - Optionally waits briefly for queue space (backpressure) before
//     rejecting
//   - Supports graceful shutdown that drains queued tasks
type workerPool struct {
	// Time abstraction for deterministic testing
	clock clockz.Clock

	logger zerolog.Logger

	// Channel for receiving dispatch tasks
	tasks chan runTask

	// execute runs one task; wired to the service's dispatch logic.
	execute func(runTask)

	// WaitGroup to track worker goroutines for graceful shutdown
	wg sync.WaitGroup

	mu sync.RWMutex

	// Maximum time submit will wait for queue space. Zero means reject
	// immediately when the queue is full.
	maxWait time.Duration

	// Tracks if the pool has been closed
	closed bool

	// Metrics pointer for atomic updates
	metrics *Metrics
}

// runTask is a single queued dispatch.
type runTask struct {
	ctx   context.Context
	point Key
	args  []any
}

// newWorkerPool creates and starts a worker pool. The pool immediately
// starts cfg.workers goroutines processing tasks from the queue.
func newWorkerPool(cfg config, metrics *Metrics, execute func(runTask)) *workerPool {
	pool := &workerPool{
		clock:   cfg.clock,
		logger:  cfg.logger,
		tasks:   make(chan runTask, cfg.queueSize),
		execute: execute,
		maxWait: cfg.maxWait,
		metrics: metrics,
	}

	for i := 0; i < cfg.workers; i++ {
		pool.wg.Add(1)
		go pool.worker()
	}

	return pool
}

// submit queues a dispatch for execution.
//
// Returns ErrQueueFull when the queue cannot accept the task, after waiting
// up to maxWait if backpressure is configured. This bounds queuing so async
// dispatch cannot exhaust memory.
func (p *workerPool) submit(task runTask) error {
	if task.ctx == nil {
		task.ctx = context.Background()
	}

	// The read lock spans the channel send to prevent a race with close():
	// without it, close() could close the channel between the closed check
	// and the send, causing a panic.
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrServiceClosed
	}

	select {
	case p.tasks <- task:
		atomic.AddInt64(&p.metrics.QueueDepth, 1)
		return nil
	default:
		// Queue full; fall through to backpressure.
	}

	if p.maxWait <= 0 {
		atomic.AddInt64(&p.metrics.TasksRejected, 1)
		return ErrQueueFull
	}

	select {
	case p.tasks <- task:
		atomic.AddInt64(&p.metrics.QueueDepth, 1)
		return nil
	case <-p.clock.After(p.maxWait):
		// Final attempt after the backpressure wait.
		select {
		case p.tasks <- task:
			atomic.AddInt64(&p.metrics.QueueDepth, 1)
			return nil
		default:
			atomic.AddInt64(&p.metrics.TasksRejected, 1)
			return ErrQueueFull
		}
	case <-task.ctx.Done():
		atomic.AddInt64(&p.metrics.TasksExpired, 1)
		return task.ctx.Err()
	}
}

// close shuts down the worker pool gracefully: no new submissions, queued
// tasks drain, workers exit.
func (p *workerPool) close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	close(p.tasks)
	p.wg.Wait()
}

// worker is the main loop for worker goroutines.
func (p *workerPool) worker() {
	defer p.wg.Done()

	for task := range p.tasks {
		atomic.AddInt64(&p.metrics.QueueDepth, -1)

		// Tasks whose context expired while queued are abandoned rather
		// than dispatched stale.
		if task.ctx.Err() != nil {
			atomic.AddInt64(&p.metrics.TasksExpired, 1)
			continue
		}

		p.executeSafely(task)
	}
}

// executeSafely runs a dispatch with panic recovery. Synchronous dispatch
// lets callback panics escalate to the caller; here there is no caller, so
// the panic is recovered, reported and counted instead.
func (p *workerPool) executeSafely(task runTask) {
	defer func() {
		if r := recover(); r != nil {
			atomic.AddInt64(&p.metrics.TasksFailed, 1)
			p.logger.Error().
				Str("hook_point", task.point).
				Interface("panic", r).
				Msg("async dispatch panicked")
			return
		}
		atomic.AddInt64(&p.metrics.TasksProcessed, 1)
	}()

	p.execute(task)
}
