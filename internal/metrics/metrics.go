// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package metrics

import (
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Entity sync runs (per kind and direction)
// - Remote Notion API calls and rate limiter waits
// - Circuit breaker state
// - DuckDB repository queries
// - HTTP trigger API and WebSocket clients

var (
	// Sync Operation Metrics
	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atwsync_sync_duration_seconds",
			Help:    "Duration of entity sync operations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600}, // Full Notion pulls can take minutes
		},
		[]string{"kind", "direction"},
	)

	SyncRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atwsync_sync_records_total",
			Help: "Total number of entities handled during sync by outcome",
		},
		[]string{"kind", "outcome"}, // "created", "updated", "error"
	)

	SyncErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atwsync_sync_errors_total",
			Help: "Total number of failed sync operations",
		},
		[]string{"kind", "error_type"}, // "remote", "database", "disabled", "other"
	)

	SyncLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "atwsync_sync_last_success_timestamp",
			Help: "Unix timestamp of last successful sync per entity kind",
		},
		[]string{"kind"},
	)

	SyncBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "atwsync_batch_size",
			Help:    "Number of items per batch-runner batch",
			Buckets: []float64{1, 5, 10, 25, 50, 100},
		},
	)

	SyncItemFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atwsync_batch_item_failures_total",
			Help: "Total number of batch items whose work function failed",
		},
		[]string{"operation"},
	)

	ProgressActiveOperations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "atwsync_progress_active_operations",
			Help: "Number of sync operations currently tracked as running",
		},
	)

	// Remote API Metrics
	RemoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atwsync_remote_requests_total",
			Help: "Total number of Notion API requests",
		},
		[]string{"operation", "status"},
	)

	RemoteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atwsync_remote_request_duration_seconds",
			Help:    "Duration of Notion API requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	RemoteRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atwsync_remote_retries_total",
			Help: "Total number of retry attempts by policy",
		},
		[]string{"operation", "policy"},
	)

	RateLimitWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "atwsync_rate_limit_wait_seconds",
			Help:    "Time spent waiting for a rate limiter permit",
			Buckets: []float64{0.001, 0.01, 0.1, 0.25, 0.5, 1, 5, 30},
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "atwsync_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atwsync_circuit_breaker_requests_total",
			Help: "Total requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "atwsync_circuit_breaker_consecutive_failures",
			Help: "Current count of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atwsync_circuit_breaker_transitions_total",
			Help: "Total circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atwsync_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB repository queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "kind"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atwsync_duckdb_query_errors_total",
			Help: "Total number of DuckDB repository query errors",
		},
		[]string{"operation", "kind"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atwsync_api_requests_total",
			Help: "Total number of trigger API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atwsync_api_request_duration_seconds",
			Help:    "Duration of trigger API requests in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "atwsync_websocket_connections",
			Help: "Current number of WebSocket clients receiving sync progress",
		},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "atwsync_websocket_messages_dropped_total",
			Help: "Total WebSocket broadcast messages dropped because the hub was saturated",
		},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atwsync_events_published_total",
			Help: "Total sync events published by topic and result",
		},
		[]string{"topic", "result"},
	)

	// Narration Metrics
	NarrationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atwsync_narration_requests_total",
			Help: "Total narration provider calls by provider and result",
		},
		[]string{"provider", "result"},
	)
)

// ErrorClassifier lets callers report a stable error_type label.
type ErrorClassifier interface {
	ErrorType() string
}

// RecordSyncOperation records the outcome of one entity sync run.
func RecordSyncOperation(kind, direction string, duration time.Duration, created, updated, failed int, err error) {
	SyncDuration.WithLabelValues(kind, direction).Observe(duration.Seconds())
	SyncRecords.WithLabelValues(kind, "created").Add(float64(created))
	SyncRecords.WithLabelValues(kind, "updated").Add(float64(updated))
	SyncRecords.WithLabelValues(kind, "error").Add(float64(failed))

	if err != nil {
		SyncErrors.WithLabelValues(kind, classifyError(err)).Inc()
		return
	}
	SyncLastSuccess.WithLabelValues(kind).Set(float64(time.Now().Unix()))
}

// RecordRemoteRequest records one Notion API call.
func RecordRemoteRequest(operation, status string, duration time.Duration) {
	RemoteRequests.WithLabelValues(operation, status).Inc()
	RemoteRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordDBQuery records a repository query metric
func RecordDBQuery(operation, kind string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, kind).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, kind).Inc()
	}
}

// RecordAPIRequest records a trigger API request metric
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func classifyError(err error) string {
	var classified ErrorClassifier
	if errors.As(err, &classified) {
		return classified.ErrorType()
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "notion"), strings.Contains(msg, "remote"):
		return "remote"
	case strings.Contains(msg, "database"), strings.Contains(msg, "duckdb"):
		return "database"
	case strings.Contains(msg, "disabled"):
		return "disabled"
	default:
		return "other"
	}
}
