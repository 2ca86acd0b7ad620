package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics tracks journal-writing operations: creations, instant
// trades, and review transitions.
type SettlementMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewSettlementMetrics registers settlement metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_operations_total",
		Help: "Settlement operations by name and outcome.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "settlement_operation_duration_seconds",
		Help:    "Duration of settlement operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(operations, duration)
	return &SettlementMetrics{
		operations: operations,
		duration:   duration,
	}
}

// Observe records one finished operation with its outcome and duration.
func (s *SettlementMetrics) Observe(operation string, err error, elapsed time.Duration) {
	if s == nil || s.operations == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	s.operations.WithLabelValues(normalizeLabel(operation), outcome).Inc()
	s.duration.WithLabelValues(normalizeLabel(operation)).Observe(elapsed.Seconds())
}
