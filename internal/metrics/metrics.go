package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestCount counts HTTP requests
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// ChecksTotal counts similarity checks by outcome
	ChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "similarity_checks_total",
			Help: "Total number of similarity checks",
		},
		[]string{"status"},
	)

	// CheckDuration measures end-to-end check pipeline duration
	CheckDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "similarity_check_duration_seconds",
			Help:    "Similarity check duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
	)

	// CorpusSize tracks the number of admitted documents in the index
	CorpusSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "corpus_documents",
			Help: "Number of documents admitted to the fingerprint index",
		},
	)
)

// InitPrometheus registers all engine metrics
func InitPrometheus() {
	prometheus.MustRegister(RequestCount)
	prometheus.MustRegister(ChecksTotal)
	prometheus.MustRegister(CheckDuration)
	prometheus.MustRegister(CorpusSize)
}
