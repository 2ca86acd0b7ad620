package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutboxMetrics tracks the publisher loop draining outbox_events.
type OutboxMetrics struct {
	published *prometheus.CounterVec
	failed    *prometheus.CounterVec
	latency   prometheus.Histogram
	backlog   prometheus.Gauge
}

// NewOutboxMetrics registers outbox publisher metrics on the provided registerer.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_published_total",
		Help: "Outbox events successfully published to Pub/Sub.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_publish_failures_total",
		Help: "Outbox publish attempts that failed.",
	}, []string{"event_type"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_publish_latency_seconds",
		Help:    "Time between event creation and successful publish.",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
	})
	backlog := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "outbox_backlog",
		Help: "Unpublished events seen by the last poll.",
	})
	reg.MustRegister(published, failed, latency, backlog)
	return &OutboxMetrics{
		published: published,
		failed:    failed,
		latency:   latency,
		backlog:   backlog,
	}
}

// IncPublished counts one published event of the given type.
func (o *OutboxMetrics) IncPublished(eventType string) {
	if o == nil || o.published == nil {
		return
	}
	o.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailed counts one failed publish attempt of the given type.
func (o *OutboxMetrics) IncFailed(eventType string) {
	if o == nil || o.failed == nil {
		return
	}
	o.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// ObserveLatency records the creation-to-publish delay of one event.
func (o *OutboxMetrics) ObserveLatency(delay time.Duration) {
	if o == nil || o.latency == nil {
		return
	}
	o.latency.Observe(delay.Seconds())
}

// SetBacklog records the unpublished backlog seen by a poll.
func (o *OutboxMetrics) SetBacklog(count int) {
	if o == nil || o.backlog == nil {
		return
	}
	o.backlog.Set(float64(count))
}
