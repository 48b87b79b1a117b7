// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Refresh metrics
	RefreshesTotal     *prometheus.CounterVec
	RefreshDuration    prometheus.Histogram
	AddressesProcessed prometheus.Counter
	AddressesSkipped   *prometheus.CounterVec

	// Fetch metrics
	RecordsEmitted     *prometheus.CounterVec
	SignaturesSkipped  prometheus.Counter
	TransactionsFailed *prometheus.CounterVec
	RPCCallLatency     *prometheus.HistogramVec

	// Queue metrics
	QueueDepth   prometheus.Gauge
	QueueRetries prometheus.Counter
	QueueDrops   prometheus.Counter

	// Pricing metrics
	PriceFetchesTotal *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "wallet_ledger"
	}

	return &Metrics{
		RefreshesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "runs_total",
			Help:      "Total number of refresh cycles by status",
		}, []string{"status"}),
		RefreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "duration_seconds",
			Help:      "Refresh cycle duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		AddressesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "addresses_processed_total",
			Help:      "Total number of addresses fetched successfully",
		}),
		AddressesSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "addresses_skipped_total",
			Help:      "Total number of addresses skipped by reason",
		}, []string{"reason"}),

		RecordsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "records_emitted_total",
			Help:      "Total number of candidate records emitted by kind",
		}, []string{"kind"}),
		SignaturesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "signatures_skipped_total",
			Help:      "Total number of signatures skipped via the seen cache",
		}),
		TransactionsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "transactions_failed_total",
			Help:      "Total number of per-transaction fetch or parse failures by kind",
		}, []string{"kind"}),
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Current number of queued addresses",
		}),
		QueueRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "retries_total",
			Help:      "Total number of per-address retry attempts",
		}),
		QueueDrops: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "drops_total",
			Help:      "Total number of addresses dropped after retry exhaustion",
		}),

		PriceFetchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "fetches_total",
			Help:      "Total number of price refreshes by source (oracle or fallback)",
		}, []string{"source"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordRefresh records a completed refresh cycle.
func RecordRefresh(status string, durationSeconds float64) {
	DefaultMetrics.RefreshesTotal.WithLabelValues(status).Inc()
	DefaultMetrics.RefreshDuration.Observe(durationSeconds)
}

// RecordAddressProcessed increments the processed-address counter.
func RecordAddressProcessed() {
	DefaultMetrics.AddressesProcessed.Inc()
}

// RecordAddressSkipped increments the skipped-address counter.
func RecordAddressSkipped(reason string) {
	DefaultMetrics.AddressesSkipped.WithLabelValues(reason).Inc()
}

// RecordEmitted increments the candidate-record counter for a fetch kind.
func RecordEmitted(kind string) {
	DefaultMetrics.RecordsEmitted.WithLabelValues(kind).Inc()
}

// RecordSignatureSkipped increments the seen-cache skip counter.
func RecordSignatureSkipped() {
	DefaultMetrics.SignaturesSkipped.Inc()
}

// RecordTransactionFailed increments the per-transaction failure counter.
func RecordTransactionFailed(kind string) {
	DefaultMetrics.TransactionsFailed.WithLabelValues(kind).Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// UpdateQueueDepth updates the queue depth gauge.
func UpdateQueueDepth(depth int) {
	DefaultMetrics.QueueDepth.Set(float64(depth))
}

// RecordQueueRetry increments the retry counter.
func RecordQueueRetry() {
	DefaultMetrics.QueueRetries.Inc()
}

// RecordQueueDrop increments the exhaustion-drop counter.
func RecordQueueDrop() {
	DefaultMetrics.QueueDrops.Inc()
}

// RecordPriceFetch records a price refresh by source.
func RecordPriceFetch(source string) {
	DefaultMetrics.PriceFetchesTotal.WithLabelValues(source).Inc()
}
