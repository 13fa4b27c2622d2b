package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/eventchains/internal/chain"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics records one counter sample and one histogram observation per
// event call:
//
//	eventchains_events_total{event, outcome}
//	eventchains_event_duration_seconds{event}
type Metrics struct {
	events   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	now      func() time.Time
}

// NewMetrics registers the collectors with reg. Registering twice against the
// same registry reuses the existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	events := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventchains_events_total",
			Help: "Events executed through a chain, by outcome.",
		},
		[]string{"event", "outcome"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventchains_event_duration_seconds",
			Help:    "Wall-clock duration of event execution including inner middleware.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		},
		[]string{"event"},
	)

	var err error
	if events, err = register(reg, events); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}

	return &Metrics{events: events, duration: duration, now: time.Now}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register metrics: %w", err)
	}
	return c, nil
}

// Handle implements chain.Middleware.
func (m *Metrics) Handle(ev chain.Event, ec *chain.ExecContext, next chain.Next) error {
	start := m.now()
	err := next(ec)
	m.duration.WithLabelValues(ev.Name()).Observe(m.now().Sub(start).Seconds())

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.events.WithLabelValues(ev.Name(), outcome).Inc()
	return err
}
