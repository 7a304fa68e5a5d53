// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

/*
Package middleware provides HTTP middleware for the trigger API.

Key Components:

  - RequestID: reuses or generates X-Request-ID and seeds the logging context
    with request and correlation ids
  - PrometheusMetrics: request counts and latency labelled by the chi route
    pattern, so /api/v1/sync/status/{operationId} stays one series
  - AccessLog: one zerolog line per request

All middleware use the chi signature func(http.Handler) http.Handler.
Typical order:

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
