// Package metrics registers decrypt and initialization counters on the
// Prometheus default registry. Nothing in this module serves or pushes that
// registry: the kms-secrets CLI exits after one command, so the counters are
// only observable when a long-running host process embeds pkg/secrets and
// exposes the default registry itself (for example via promhttp.Handler).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DecryptTotal tracks KMS Decrypt calls by outcome.
	DecryptTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kms_secrets_decrypt_total",
			Help: "Total number of KMS decrypt calls (by status).",
		},
		[]string{"status"},
	)

	// DecryptDuration measures the latency of KMS Decrypt calls.
	DecryptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kms_secrets_decrypt_duration_seconds",
			Help:    "Duration of KMS decrypt calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"status"},
	)

	// InitializeTotal tracks Initialize batches by result.
	InitializeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kms_secrets_initialize_total",
			Help: "Number of secret initialization batches (by result).",
		},
		[]string{"result"},
	)
)

// IncDecrypt increments the decrypt counter for the given status.
func IncDecrypt(status string) {
	DecryptTotal.WithLabelValues(status).Inc()
}

// ObserveDuration records elapsed time since start into a HistogramVec or SummaryVec.
func ObserveDuration(v any, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()
	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case *prometheus.SummaryVec:
		metric.WithLabelValues(labels...).Observe(duration)
	}
}

// IncInitialize increments the initialize counter for the given result.
func IncInitialize(result string) {
	InitializeTotal.WithLabelValues(result).Inc()
}
