// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics track feed items as they move through the pipeline
var (
	// FeedFetchTotal counts feed fetches by result (success, error, parse_error)
	FeedFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetch_total",
			Help: "Total number of feed fetch attempts by result",
		},
		[]string{"result"},
	)

	// FeedProcessDuration measures time to process one feed end to end
	FeedProcessDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_process_duration_seconds",
			Help:    "Time taken to process all items of one feed",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
		[]string{"source"},
	)

	// ItemsTotal counts feed items by outcome (seen, saved, skipped, errored)
	ItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_items_total",
			Help: "Total number of feed items by pipeline outcome",
		},
		[]string{"group", "outcome"},
	)

	// GroupRunDuration measures one group execution
	GroupRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "group_run_duration_seconds",
			Help:    "Duration of one processing group run",
			Buckets: []float64{1, 5, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"group"},
	)

	// ContentResolvedTotal counts resolved bodies by source tag
	ContentResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_resolved_total",
			Help: "Total number of resolved item bodies by content source",
		},
		[]string{"source"},
	)

	// DetailPageTotal counts detail-page extractions by result
	// (selector, readability, body, empty, error)
	DetailPageTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "detail_page_extractions_total",
			Help: "Total number of detail-page extractions by result",
		},
		[]string{"result"},
	)

	// DetailPageDuration measures detail-page fetch and extraction
	DetailPageDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "detail_page_duration_seconds",
			Help:    "Time taken to fetch and extract a detail page",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)
)

// AI metrics track the classification and summarization oracles
var (
	// ClassificationsTotal counts classifier decisions
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifications_total",
			Help: "Total number of classifications by decision and category",
		},
		[]string{"decision", "category"},
	)

	// SummarizationsTotal counts summarizer calls by status (success, passthrough)
	SummarizationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summarizations_total",
			Help: "Total number of summarizations by status",
		},
		[]string{"status"},
	)

	// SummaryLength is the rune length of produced summaries
	SummaryLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "summary_length_runes",
			Help:    "Length of produced summaries in runes",
			Buckets: []float64{50, 100, 200, 300, 400, 500, 700, 1000},
		},
	)

	// SummaryOverLimitTotal counts summaries longer than the requested budget
	SummaryOverLimitTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "summary_over_limit_total",
			Help: "Summaries that came back longer than the requested character budget",
		},
	)

	// SummaryDuration measures one successful summarization, oracle call included
	SummaryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "summary_duration_seconds",
			Help:    "Time taken to produce a summary",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// OracleRequestDuration measures one oracle round trip
	OracleRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oracle_request_duration_seconds",
			Help:    "Duration of text oracle requests",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
		[]string{"oracle", "provider", "status"},
	)
)

// Storage metrics track the collection store
var (
	// RecordsWrittenTotal counts record writes by status (created, replaced, failed)
	RecordsWrittenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_written_total",
			Help: "Total number of news record writes by status",
		},
		[]string{"store", "status"},
	)

	// StoreOperationDuration measures store operations
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Collection store operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"store", "operation"},
	)
)

// Resilience metrics track the circuit breakers in front of each dependency
var (
	// CircuitBreakerState is 0 closed, 1 half-open, 2 open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"circuit"},
	)

	// CircuitBreakerRejectedTotal counts calls refused without reaching the dependency
	CircuitBreakerRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_rejected_total",
			Help: "Total number of calls rejected by an open or half-open circuit",
		},
		[]string{"circuit"},
	)
)
