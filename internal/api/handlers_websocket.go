// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package api

import (
	"net/http"

	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/websocket"
)

// WebSocket upgrades the connection and registers it with the hub. Clients
// receive sync_progress messages for every tracked operation, or only for
// the one named by the operation query parameter.
//
// @Summary Sync progress stream
// @Tags Sync
// @Param operation query string false "Only stream this operation and its per-kind runs"
// @Router /ws [get]
func (rt *Router) WebSocket(w http.ResponseWriter, r *http.Request) {
	if rt.deps.Hub == nil {
		NewResponseWriter(w, r).NotFound("progress stream not enabled")
		return
	}

	conn, err := rt.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := websocket.NewClient(rt.deps.Hub, conn, r.URL.Query().Get("operation"))
	rt.deps.Hub.Register <- client
	client.Start()
}

// checkWebSocketOrigin accepts browsers from configured CORS origins.
// Requests without an Origin header are rejected.
func (rt *Router) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}
	for _, allowed := range rt.deps.Server.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", origin).Msg("WebSocket connection rejected: origin not allowed")
	return false
}
