package typeset

import (
	"log/slog"
	"time"

	"github.com/aretw0/mathspan/internal/logging"
	"github.com/aretw0/mathspan/pkg/domain"
)

// DefaultRetryDelay is the wait before a detached request is resubmitted.
const DefaultRetryDelay = 100 * time.Millisecond

type options struct {
	logger      *slog.Logger
	taskTimeout time.Duration
	retryDelay  time.Duration
	maxAttempts int
	hooks       domain.TypesetHooks
	metrics     *Metrics
}

func defaultOptions() options {
	return options{
		logger:     logging.NewNop(),
		retryDelay: DefaultRetryDelay,
	}
}

// Option configures a Queue or a Service.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTaskTimeout fails a queue slot that runs longer than d and advances the
// queue. The task context is cancelled when the slot is failed. Zero disables
// the watchdog.
func WithTaskTimeout(d time.Duration) Option {
	return func(o *options) {
		o.taskTimeout = d
	}
}

// WithRetryDelay sets the delay before a detached request is resubmitted.
func WithRetryDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.retryDelay = d
		}
	}
}

// WithMaxAttempts caps the number of queue slots a request may consume while
// its surface stays detached. Zero means retry until the request context ends.
func WithMaxAttempts(n int) Option {
	return func(o *options) {
		o.maxAttempts = n
	}
}

// WithHooks registers typeset lifecycle callbacks.
func WithHooks(hooks domain.TypesetHooks) Option {
	return func(o *options) {
		o.hooks = hooks
	}
}

// WithMetrics records queue and typeset metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}
