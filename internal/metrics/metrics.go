// Package metrics holds the prometheus collectors for the write path, the
// rate limiter, and the push delivery pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WritesTotal tracks accepted write operations by kind (post/comment/vote/delete).
	WritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_writes_total",
			Help: "Total accepted write operations by kind",
		},
		[]string{"kind"},
	)

	// RateLimitRejections tracks writes rejected by the sliding-window limiter.
	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Total writes rejected by the per-actor rate limiter",
		},
		[]string{"kind"},
	)

	// ModerationDeletions tracks content auto-deleted by the moderation gate.
	ModerationDeletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_deletions_total",
			Help: "Total content items soft-deleted for crossing the score threshold",
		},
		[]string{"target"},
	)

	// NotificationsCreated tracks notification rows written by type.
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total notifications created by type",
		},
		[]string{"type"},
	)

	// PushDeliveries tracks push attempts by outcome (sent/failed/gone).
	PushDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_deliveries_total",
			Help: "Total push delivery attempts by outcome",
		},
		[]string{"outcome"},
	)

	// PushFanoutDuration tracks the wall time of a full per-recipient fan-out.
	PushFanoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "push_fanout_duration_seconds",
			Help:    "Duration of a full push fan-out for one notification",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	// SubscriptionsCleaned tracks subscriptions removed after a gone response.
	SubscriptionsCleaned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "push_subscriptions_cleaned_total",
			Help: "Total push subscriptions deleted after a permanent delivery failure",
		},
	)

	// FeedQueries tracks feed reads by kind.
	FeedQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_queries_total",
			Help: "Total feed queries by kind",
		},
		[]string{"kind"},
	)

	// DBQueryDuration tracks database query latency by query type.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds by query type",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"query"},
	)

	// DBErrorsTotal tracks failed database queries by query type.
	DBErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Total failed database queries by query type",
		},
		[]string{"query"},
	)

	// RedisOpsTotal tracks Redis operations by operation and status.
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total Redis operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis operation latency in seconds.
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// CircuitBreakerStateChanges tracks circuit breaker state transitions.
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks current circuit breaker state (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)
