package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code", "service"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "service"},
	)

	// Syndication metrics
	PublishAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syndicate_publish_attempts_total",
			Help: "Total number of publish attempts per platform",
		},
		[]string{"platform", "status"},
	)

	DedupSkips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syndicate_dedup_skips_total",
			Help: "Publishes skipped because the canonical URL already exists remotely",
		},
		[]string{"platform"},
	)

	FanoutRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "syndicate_fanout_runs_total",
			Help: "Total number of fan-out distributions executed",
		},
	)

	// Backfill metrics
	BackfillItemsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "syndicate_backfill_items_processed_total",
			Help: "Articles fully processed and checkpointed by the backfill",
		},
	)

	BackfillItemsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "syndicate_backfill_items_skipped_total",
			Help: "Articles skipped because they were already checkpointed",
		},
	)

	// NATS metrics
	NatsMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_published_total",
			Help: "Total number of NATS messages published",
		},
		[]string{"subject", "status"},
	)

	NatsMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_received_total",
			Help: "Total number of NATS messages received",
		},
		[]string{"subject", "status"},
	)

	// Application health metrics
	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "application_info",
			Help: "Application information",
		},
		[]string{"service", "version", "environment"},
	)
)

// Initialize metrics with default values
func Init(serviceName, version, environment string) {
	ApplicationInfo.WithLabelValues(serviceName, version, environment).Set(1)
}

// RecordPublish tracks one adapter outcome.
func RecordPublish(platform string, ok, skipped bool) {
	status := "failure"
	switch {
	case skipped:
		status = "skipped"
	case ok:
		status = "success"
	}
	PublishAttempts.WithLabelValues(platform, status).Inc()
}
