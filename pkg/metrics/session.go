package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SessionMetrics records outcomes of session manager operations.
type SessionMetrics struct {
	operations *prometheus.CounterVec
	persist    *prometheus.HistogramVec
	hydrations *prometheus.CounterVec
}

// NewSessionMetrics registers the session metrics on the provided registerer.
func NewSessionMetrics(reg prometheus.Registerer) *SessionMetrics {
	if reg == nil {
		return &SessionMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_operations_total",
		Help: "Session manager operations by outcome.",
	}, []string{"op", "outcome"})
	persist := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_persist_duration_seconds",
		Help:    "Duration of remote profile persistence calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	hydrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_hydrations_total",
		Help: "Session store hydration attempts at startup.",
	}, []string{"outcome"})
	reg.MustRegister(operations, persist, hydrations)
	return &SessionMetrics{
		operations: operations,
		persist:    persist,
		hydrations: hydrations,
	}
}

// IncOperation increments the counter for the named operation and outcome.
func (s *SessionMetrics) IncOperation(op, outcome string) {
	if s == nil || s.operations == nil {
		return
	}
	s.operations.WithLabelValues(normalizeLabel(op), normalizeLabel(outcome)).Inc()
}

// ObservePersist records the duration of a remote persistence call.
func (s *SessionMetrics) ObservePersist(outcome string, duration time.Duration) {
	if s == nil || s.persist == nil {
		return
	}
	s.persist.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncHydration increments the hydration counter for the given outcome.
func (s *SessionMetrics) IncHydration(outcome string) {
	if s == nil || s.hydrations == nil {
		return
	}
	s.hydrations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
