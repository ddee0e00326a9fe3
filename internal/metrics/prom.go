// Package metrics exposes Prometheus instrumentation for the bridge.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rpbus_build_info",
			Help: "Build information",
		},
		[]string{"date", "sha", "version"},
	)

	transactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpbus_transactions_total",
			Help: "Wire transactions by command and outcome",
		},
		[]string{"command", "outcome"},
	)

	droppedResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpbus_dropped_responses_total",
			Help: "Inbound messages discarded by the delivery callback",
		},
		[]string{"reason"},
	)

	transactionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rpbus_transaction_duration_seconds",
			Help:    "Send-to-response latency of completed transactions",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
	)
)

// Register registers all bridge metrics with the given registerer.
func Register(r prometheus.Registerer) {
	r.MustRegister(buildInfo, transactions, droppedResponses, transactionDuration)
}

// SetBuildInfo records build metadata for the running daemon.
func SetBuildInfo(version, sha, date string) {
	buildInfo.WithLabelValues(date, sha, version).Set(1)
}

// RecordTransaction counts one transaction outcome for a command.
func RecordTransaction(command, outcome string) {
	transactions.WithLabelValues(command, outcome).Inc()
}

// RecordDrop counts one discarded inbound message.
func RecordDrop(reason string) {
	droppedResponses.WithLabelValues(reason).Inc()
}

// ObserveTransaction records the latency of a completed transaction.
func ObserveTransaction(d time.Duration) {
	transactionDuration.Observe(d.Seconds())
}
