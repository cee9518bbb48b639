package typeset

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/aretw0/mathspan/pkg/ports"
)

// Service submits typeset requests through a Queue.
type Service struct {
	queue      *Queue
	typesetter ports.Typesetter
	opts       options
}

// NewService creates a Service rendering through typesetter on queue.
func NewService(queue *Queue, typesetter ports.Typesetter, opts ...Option) *Service {
	o := defaultOptions()
	o.metrics = queue.opts.metrics
	for _, opt := range opts {
		opt(&o)
	}
	return &Service{
		queue:      queue,
		typesetter: typesetter,
		opts:       o,
	}
}

// request is one typeset call, possibly spanning several queue slots.
type request struct {
	ctx     context.Context
	target  ports.Surface
	source  string
	attempt int

	once sync.Once
	out  chan error
}

// Typeset queues a render of source into target. The returned channel
// receives exactly one outcome and is then closed. Cancelling ctx stops any
// further retries of a detached surface.
func (s *Service) Typeset(ctx context.Context, target ports.Surface, source string) <-chan error {
	r := &request{
		ctx:    ctx,
		target: target,
		source: source,
		out:    make(chan error, 1),
	}
	s.submit(r)
	return r.out
}

// Render is Typeset waiting for the outcome.
func (s *Service) Render(ctx context.Context, target ports.Surface, source string) error {
	select {
	case err := <-s.Typeset(ctx, target, source):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) submit(r *request) {
	r.attempt++
	if err := s.queue.Enqueue(s.task(r)); err != nil {
		s.finish(r, s.event(r), err)
	}
}

func (s *Service) event(r *request) *domain.TypesetEvent {
	return &domain.TypesetEvent{
		Timestamp: time.Now(),
		Source:    r.source,
		Attempt:   r.attempt,
	}
}

func (s *Service) task(r *request) Task {
	return func(ctx context.Context) {
		event := s.event(r)
		if err := r.ctx.Err(); err != nil {
			s.finish(r, event, err)
			return
		}
		if ctx.Err() != nil {
			s.finish(r, event, domain.ErrQueueClosed)
			return
		}

		if !r.target.IsAttached() {
			s.retry(r, event)
			return
		}
		event.Attached = true
		if s.opts.hooks.OnTypeset != nil {
			s.opts.hooks.OnTypeset(r.ctx, event)
		}

		callCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		stopRequest := context.AfterFunc(r.ctx, cancel)
		defer stopRequest()

		start := time.Now()
		stopWatch := context.AfterFunc(ctx, func() {
			event.Duration = time.Since(start)
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				s.finish(r, event, domain.ErrTypesetTimeout)
				return
			}
			s.finish(r, event, domain.ErrQueueClosed)
		})
		defer stopWatch()

		err := s.typesetter.Typeset(callCtx, r.target, r.source)
		if stopWatch() {
			event.Duration = time.Since(start)
			s.finish(r, event, err)
		}
	}
}

// retry releases the current slot and resubmits r after the retry delay.
func (s *Service) retry(r *request, event *domain.TypesetEvent) {
	if s.opts.maxAttempts > 0 && r.attempt >= s.opts.maxAttempts {
		s.finish(r, event, domain.ErrDetached)
		return
	}

	s.opts.logger.Debug("surface detached, retrying typeset", "attempt", r.attempt, "delay", s.opts.retryDelay)
	s.opts.metrics.retry()
	if s.opts.hooks.OnRetry != nil {
		s.opts.hooks.OnRetry(r.ctx, event)
	}

	time.AfterFunc(s.opts.retryDelay, func() {
		if err := r.ctx.Err(); err != nil {
			s.finish(r, event, err)
			return
		}
		s.submit(r)
	})
}

func (s *Service) finish(r *request, event *domain.TypesetEvent, err error) {
	r.once.Do(func() {
		event.Err = err
		if err != nil && event.Attached {
			s.opts.logger.Debug("typeset failed", "attempt", event.Attempt, "error", err)
		}
		s.opts.metrics.observe(err, event.Attached, event.Duration)
		if s.opts.hooks.OnResult != nil {
			s.opts.hooks.OnResult(r.ctx, event)
		}
		r.out <- err
		close(r.out)
	})
}
