package typeset

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/mathspan/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for the typeset counter.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeTimeout  = "timeout"
	OutcomeDetached = "detached"
	OutcomeCanceled = "canceled"
	OutcomeClosed   = "closed"
)

// Metrics holds the prometheus collectors of the typeset pipeline.
// A nil *Metrics records nothing.
type Metrics struct {
	QueueDepth prometheus.Gauge
	Typesets   *prometheus.CounterVec
	Retries    prometheus.Counter
	Duration   prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mathspan_typeset_queue_depth",
			Help: "Number of typeset tasks waiting for the render slot",
		}),
		Typesets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mathspan_typeset_total",
			Help: "Total number of typeset requests by outcome",
		}, []string{"outcome"}),
		Retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mathspan_typeset_retries_total",
			Help: "Total number of resubmissions caused by detached surfaces",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mathspan_typeset_duration_seconds",
			Help:    "Duration of typesetter calls",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.QueueDepth, m.Typesets, m.Retries, m.Duration)
	}
	return m
}

func (m *Metrics) setDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}

func (m *Metrics) retry() {
	if m == nil {
		return
	}
	m.Retries.Inc()
}

func (m *Metrics) observe(err error, attached bool, d time.Duration) {
	if m == nil {
		return
	}
	m.Typesets.WithLabelValues(Outcome(err)).Inc()
	if attached && d > 0 {
		m.Duration.Observe(d.Seconds())
	}
}

// Outcome maps a typeset result to its metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrTypesetTimeout):
		return OutcomeTimeout
	case errors.Is(err, domain.ErrDetached):
		return OutcomeDetached
	case errors.Is(err, domain.ErrQueueClosed):
		return OutcomeClosed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeFailure
	}
}
