// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

/*
Package api exposes the sync engine over HTTP using the chi router.

Routes:

	POST /api/v1/sync/{entityKind}?direction=inbound|outbound   202 {operation_id}
	POST /api/v1/sync?direction=inbound|outbound                202 {operation_id}
	GET  /api/v1/sync/status/{operationId}                      SyncProgress or 404
	GET  /api/v1/sync/operations                                active operations
	GET  /api/v1/sync/health                                    200 up, 503 down
	GET  /api/v1/sync/entities                                  enabled kinds
	GET  /api/v1/narration/providers                            provider fallback order
	GET  /api/v1/ws                                             sync_progress stream
	GET  /metrics                                               Prometheus

Every JSON body uses the models.APIResponse envelope. Unknown kinds and
directions are 400 VALIDATION_ERROR, disabled kinds 409 ENTITY_DISABLED.
Sync triggers are rate limited per client IP with go-chi/httprate; CORS is
handled by go-chi/cors from server.cors_origins.
*/
package api
