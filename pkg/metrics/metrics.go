// Package metrics provides Prometheus metrics for the dahlia service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IngestionBatchesTotal tracks ingestion requests by outcome
	IngestionBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dahlia",
			Subsystem: "ingestion",
			Name:      "batches_total",
			Help:      "Total number of ingestion batches by status",
		},
		[]string{"status"},
	)

	// IngestionRecordsTotal counts CSV records persisted
	IngestionRecordsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dahlia",
			Subsystem: "ingestion",
			Name:      "records_total",
			Help:      "Total number of CSV records ingested",
		},
	)

	// IngestionFailuresTotal tracks failed batches by failure kind (fetch, parse, persist)
	IngestionFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dahlia",
			Subsystem: "ingestion",
			Name:      "failures_total",
			Help:      "Total number of failed ingestion batches by kind",
		},
		[]string{"kind"},
	)

	// IngestionDuration tracks end to end ingestion duration
	IngestionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "dahlia",
			Subsystem: "ingestion",
			Name:      "duration_seconds",
			Help:      "Duration of ingestion batches in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)

	// SourceFetchDuration tracks CSV fetch duration by scheme
	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dahlia",
			Subsystem: "source",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of CSV fetches in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"scheme"},
	)

	// ReportQueryDuration tracks analytics query duration by report
	ReportQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dahlia",
			Subsystem: "analytics",
			Name:      "query_duration_seconds",
			Help:      "Duration of analytics queries in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"report"},
	)

	// ReportCacheTotal tracks report cache lookups by result (hit, miss, error)
	ReportCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dahlia",
			Subsystem: "analytics",
			Name:      "cache_lookups_total",
			Help:      "Total number of report cache lookups by result",
		},
		[]string{"report", "result"},
	)

	// EventsPublishedTotal tracks ingestion events sent to Kafka
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dahlia",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Total number of events published by status",
		},
		[]string{"topic", "status"},
	)

	// HTTPRequestsTotal tracks inbound HTTP requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dahlia",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of inbound HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	// HTTPRequestDuration tracks inbound HTTP request duration
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dahlia",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of inbound HTTP requests in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)
)
