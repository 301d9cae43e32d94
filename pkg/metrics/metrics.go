package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueryDuration measures data-access operation latency per model and action.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pressfold_query_duration_seconds",
			Help:    "Data access operation latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model", "action"},
	)

	// SlowQueries counts operations exceeding the slow-query threshold.
	SlowQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pressfold_slow_queries_total",
			Help: "Total number of slow data access operations",
		},
		[]string{"model", "action"},
	)

	// TenantAuditWarnings counts tenant-scoped reads issued without a tenant filter.
	TenantAuditWarnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pressfold_tenant_audit_warnings_total",
			Help: "Reads against tenant-scoped models missing a tenant filter",
		},
		[]string{"model", "action"},
	)

	// CacheOperations counts cache lookups by result (hit|miss|error).
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pressfold_cache_operations_total",
			Help: "Cache operations by outcome",
		},
		[]string{"operation", "result"},
	)

	// TxRetries counts transaction attempts that failed and were retried.
	TxRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pressfold_tx_retries_total",
			Help: "Total number of retried transaction attempts",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pressfold_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
