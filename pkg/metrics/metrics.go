// Package metrics exposes Prometheus counters for transaction outcomes and
// request handling.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector aggregates the application's Prometheus metrics behind its own
// registry so tests can create isolated collectors.
type Collector struct {
	registry            *prometheus.Registry
	transactionOutcomes *prometheus.CounterVec
	lockRetries         prometheus.Counter
	transactionDuration prometheus.Histogram
}

// NewCollector creates a collector with a fresh registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	return &Collector{
		registry: registry,
		transactionOutcomes: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "revobank_transactions_total",
			Help: "Transaction outcomes by type and result",
		}, []string{"type", "outcome"}),
		lockRetries: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "revobank_lock_retries_total",
			Help: "Row lock acquisition retries in the transaction engine",
		}),
		transactionDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "revobank_transaction_duration_seconds",
			Help:    "Time taken to settle a transaction",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordTransaction counts one engine operation outcome.
func (c *Collector) RecordTransaction(txType, outcome string, duration time.Duration) {
	c.transactionOutcomes.WithLabelValues(txType, outcome).Inc()
	c.transactionDuration.Observe(duration.Seconds())
}

// RecordLockRetry counts one lock acquisition retry.
func (c *Collector) RecordLockRetry() {
	c.lockRetries.Inc()
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
