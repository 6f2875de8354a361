package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	requests       *prometheus.CounterVec
	sequenceLength *prometheus.HistogramVec
	duration       *prometheus.HistogramVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hmm_inference_requests_total",
			Help: "Inference calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		sequenceLength: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hmm_sequence_length",
			Help:    "Observation sequence length per inference call.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"op"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hmm_inference_duration_seconds",
			Help:    "Time spent in one inference call.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"op"}),
	}
}

func (m *Metrics) observe(op string, length int, seconds float64, outcome string) {
	m.requests.WithLabelValues(op, outcome).Inc()
	m.sequenceLength.WithLabelValues(op).Observe(float64(length))
	m.duration.WithLabelValues(op).Observe(seconds)
}
