// Package observability provides Prometheus metrics for the transfer
// engine and its async processor.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics exported by the service.
type Metrics struct {
	// Transfer metrics
	TransfersTotal  prometheus.Counter
	TransfersFailed prometheus.Counter
	TransferLatency prometheus.Histogram

	// Async processor metrics
	QueueDepth         prometheus.Gauge
	QueuedTotal        prometheus.Counter
	AbandonedShutdowns prometheus.Counter
}

// NewMetrics creates a new Metrics instance with the given namespace and
// registers everything on the default registry.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		TransfersTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Total number of transfer attempts",
		}),
		TransfersFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_failed_total",
			Help:      "Total number of failed transfer attempts",
		}),
		TransferLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transfer_duration_seconds",
			Help:      "Transfer execution latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Number of transfer requests waiting in the async queue",
		}),
		QueuedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queued_total",
			Help:      "Total number of requests accepted by the async processor",
		}),
		AbandonedShutdowns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "abandoned_requests_total",
			Help:      "Queued requests abandoned because shutdown ran out of time",
		}),
	}
}
