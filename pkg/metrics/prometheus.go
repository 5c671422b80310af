package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	decisionsTotal *prometheus.CounterVec
	eventsSent     *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	pdEstimates    prometheus.Histogram
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		decisionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskdesk_decisions_total",
				Help: "Total number of scoring decisions by band and eligibility",
			},
			[]string{"band", "eligible"},
		),
		eventsSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskdesk_decision_events_sent_total",
				Help: "Total number of decision events delivered to a backend",
			},
			[]string{"backend"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskdesk_errors_total",
				Help: "Total number of errors encountered by kind",
			},
			[]string{"kind"},
		),
		pdEstimates: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "riskdesk_pd_estimate",
				Help:    "Distribution of default probability estimates",
				Buckets: []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.3, 0.4, 0.6},
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "riskdesk_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}
}

// RecordDecision records a completed scoring decision.
func (r *Recorder) RecordDecision(band string, eligible bool) {
	label := "false"
	if eligible {
		label = "true"
	}
	r.decisionsTotal.WithLabelValues(band, label).Inc()
}

// RecordEventSent records a decision event delivered to a backend.
func (r *Recorder) RecordEventSent(backend string) {
	r.eventsSent.WithLabelValues(backend).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordPD records a default probability estimate.
func (r *Recorder) RecordPD(pd float64) {
	r.pdEstimates.Observe(pd)
}

// RecordLatency records stage latency in seconds.
func (r *Recorder) RecordLatency(stage string, seconds float64) {
	r.latency.WithLabelValues(stage).Observe(seconds)
}
