package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Chat session service metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "astra",
			Subsystem: "chats",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "astra",
			Subsystem: "chats",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Turn log writes
	TurnsLoggedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "astra",
			Subsystem: "chats",
			Name:      "turns_logged_total",
			Help:      "Total turns committed to the remote chat log",
		},
	)

	// Conversation lifecycle
	ConversationsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "astra",
			Subsystem: "chats",
			Name:      "conversations_started_total",
			Help:      "Total conversations minted client-side",
		},
	)

	ConversationsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "astra",
			Subsystem: "chats",
			Name:      "conversations_deleted_total",
			Help:      "Total conversations deleted from the remote chat log",
		},
	)

	// Remote log failures by operation
	RemoteErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "astra",
			Subsystem: "chats",
			Name:      "remote_errors_total",
			Help:      "Total remote chat log call failures",
		},
		[]string{"operation"},
	)

	// Token-guard discards: async results that arrived after the cursor or
	// list generation had moved on
	StaleResultsDiscardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "astra",
			Subsystem: "chats",
			Name:      "stale_results_discarded_total",
			Help:      "Async results discarded by the staleness guard",
		},
		[]string{"operation"},
	)

	// Live sessions
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "astra",
			Subsystem: "chats",
			Name:      "active_sessions",
			Help:      "Number of live owner sessions",
		},
	)
)

// RecordRequest records one completed HTTP request.
func RecordRequest(method, endpoint, status string, duration float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}
