// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	InsightBatchRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "insight_batch_runs_total",
		Help: "Number of insight generation batches started",
	})
	InsightBatchUsers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_batch_users_total",
			Help: "Users processed by insight batches, by result",
		},
		[]string{"result"},
	)
	InsightsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_generated_total",
			Help: "Insights written, by type",
		},
		[]string{"type"},
	)
)
