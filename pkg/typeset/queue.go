package typeset

import (
	"context"
	"sync"

	"github.com/aretw0/mathspan/pkg/domain"
)

// Task is one unit of queued work. The context is cancelled when the queue is
// closed or the watchdog fails the slot.
type Task func(ctx context.Context)

// Queue is a FIFO task queue with a single in-flight slot.
// Safe for concurrent use.
type Queue struct {
	opts options

	mu      sync.Mutex
	backlog []Task
	running bool
	closed  bool
	idle    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// NewQueue creates an empty queue.
func NewQueue(opts ...Option) *Queue {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	idle := make(chan struct{})
	close(idle)

	return &Queue{
		opts:   o,
		idle:   idle,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Enqueue appends task to the backlog and starts draining if the queue is idle.
func (q *Queue) Enqueue(task Task) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return domain.ErrQueueClosed
	}
	q.backlog = append(q.backlog, task)
	q.opts.metrics.setDepth(len(q.backlog))
	if q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = true
	q.idle = make(chan struct{})
	q.mu.Unlock()

	go q.drain()
	return nil
}

// Len returns the number of tasks waiting for the slot.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog)
}

// Wait blocks until the backlog is drained and no task is running.
func (q *Queue) Wait(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the queue. Tasks still in the backlog are invoked once with a
// cancelled context so they can report their abandonment; later Enqueue calls
// fail with domain.ErrQueueClosed.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	pending := q.backlog
	q.backlog = nil
	q.opts.metrics.setDepth(0)
	q.mu.Unlock()

	q.cancel()
	for _, task := range pending {
		q.invoke(q.ctx, task)
	}
}

func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if len(q.backlog) == 0 || q.closed {
			q.running = false
			close(q.idle)
			q.mu.Unlock()
			return
		}
		task := q.backlog[0]
		q.backlog[0] = nil
		q.backlog = q.backlog[1:]
		q.opts.metrics.setDepth(len(q.backlog))
		q.mu.Unlock()

		q.run(task)
	}
}

// run holds the slot until the task returns, the watchdog fires or the queue closes.
func (q *Queue) run(task Task) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if q.opts.taskTimeout > 0 {
		ctx, cancel = context.WithTimeout(q.ctx, q.opts.taskTimeout)
	} else {
		ctx, cancel = context.WithCancel(q.ctx)
	}
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		q.invoke(ctx, task)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			q.opts.logger.Warn("typeset slot timed out, advancing queue", "timeout", q.opts.taskTimeout)
		}
	}
}

func (q *Queue) invoke(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			q.opts.logger.Warn("typeset task panicked", "panic", r)
		}
	}()
	task(ctx)
}
