// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

/*
Package metrics provides Prometheus metrics for the sync engine.

All collectors are registered with promauto against the default registry
and exposed by the API router at /metrics:

	curl http://localhost:8088/metrics

# Available Metrics

Sync:
  - atwsync_sync_duration_seconds{kind,direction}
  - atwsync_sync_records_total{kind,outcome}
  - atwsync_sync_errors_total{kind,error_type}
  - atwsync_sync_last_success_timestamp{kind}
  - atwsync_batch_size, atwsync_batch_item_failures_total{operation}
  - atwsync_progress_active_operations

Remote:
  - atwsync_remote_requests_total{operation,status}
  - atwsync_remote_request_duration_seconds{operation}
  - atwsync_remote_retries_total{operation,policy}
  - atwsync_rate_limit_wait_seconds

Circuit breaker:
  - atwsync_circuit_breaker_state{name} (0=closed, 1=half-open, 2=open)
  - atwsync_circuit_breaker_requests_total{name,result}
  - atwsync_circuit_breaker_consecutive_failures{name}
  - atwsync_circuit_breaker_transitions_total{name,from_state,to_state}

Errors passed to RecordSyncOperation are labelled through the
ErrorClassifier interface when they implement it, and by message
inspection otherwise.
*/
package metrics
