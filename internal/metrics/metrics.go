package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "velvet_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "velvet_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	LedgerEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "velvet_ledger_entries_total",
			Help: "Total number of committed ledger entries",
		},
		[]string{"reason"},
	)

	InsufficientFundsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "velvet_insufficient_funds_total",
			Help: "Total number of debits rejected for insufficient funds",
		},
	)

	IdempotentReplaysTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "velvet_idempotent_replays_total",
			Help: "Total number of requests short-circuited by the idempotency guard",
		},
		[]string{"operation"},
	)

	PurchasesSettledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "velvet_purchases_settled_total",
			Help: "Total number of coin package purchases settled",
		},
	)

	GiftsSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "velvet_gifts_sent_total",
			Help: "Total number of gifts settled",
		},
	)

	AuditEventsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "velvet_audit_events_dropped_total",
			Help: "Total number of audit events dropped due to a full queue",
		},
	)

	AuditQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "velvet_audit_queue_length",
			Help: "Current length of the audit event queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordLedgerEntry(reason string) {
	LedgerEntriesTotal.WithLabelValues(reason).Inc()
}

func RecordReplay(operation string) {
	IdempotentReplaysTotal.WithLabelValues(operation).Inc()
}
