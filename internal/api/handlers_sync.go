// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/models"
	"github.com/tomtom215/atwsync/internal/progress"
	atwsync "github.com/tomtom215/atwsync/internal/sync"
	"github.com/tomtom215/atwsync/internal/validation"
)

// parseSyncRequest validates entity (may be empty for a full run) and the
// direction query parameter, which defaults to inbound.
func parseSyncRequest(r *http.Request, entity string) (models.SyncRequest, *models.APIError) {
	req := models.SyncRequest{
		Entity:    entity,
		Direction: r.URL.Query().Get("direction"),
	}
	if req.Direction == "" {
		req.Direction = string(atwsync.Inbound)
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		return req, verr.APIError()
	}
	return req, nil
}

// TriggerSync starts a sync of one entity kind.
//
// @Summary Trigger entity sync
// @Description Starts an inbound or outbound sync for one entity kind and returns immediately
// @Tags Sync
// @Produce json
// @Param entityKind path string true "Entity kind (wrestler, show, segment, ...)"
// @Param direction query string false "inbound (default) or outbound"
// @Success 202 {object} models.APIResponse{data=models.SyncAccepted}
// @Failure 400 {object} models.APIResponse "Unknown kind or direction"
// @Failure 409 {object} models.APIResponse "Kind disabled"
// @Router /sync/{entityKind} [post]
func (rt *Router) TriggerSync(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, apiErr := parseSyncRequest(r, chi.URLParam(r, "entityKind"))
	if apiErr != nil {
		rw.BadRequest(apiErr.Message, apiErr.Details)
		return
	}
	kind, _ := models.ParseKind(req.Entity)
	dir := atwsync.Direction(req.Direction)

	op, err := rt.deps.Manager.Start(kind, dir)
	if err != nil {
		writeSyncError(rw, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("operation_id", op).
		Str("entity", req.Entity).
		Str("direction", req.Direction).
		Msg("Sync triggered")
	rw.Accepted(models.SyncAccepted{OperationID: op, Entity: req.Entity, Direction: req.Direction})
}

// TriggerSyncAll starts a full sync of every enabled kind in dependency
// order.
//
// @Summary Trigger full sync
// @Tags Sync
// @Produce json
// @Param direction query string false "inbound (default) or outbound"
// @Success 202 {object} models.APIResponse{data=models.SyncAccepted}
// @Router /sync [post]
func (rt *Router) TriggerSyncAll(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, apiErr := parseSyncRequest(r, "")
	if apiErr != nil {
		rw.BadRequest(apiErr.Message, apiErr.Details)
		return
	}

	op, err := rt.deps.Manager.StartAll(atwsync.Direction(req.Direction))
	if err != nil {
		writeSyncError(rw, err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("operation_id", op).Str("direction", req.Direction).Msg("Full sync triggered")
	rw.Accepted(models.SyncAccepted{OperationID: op, Direction: req.Direction})
}

// SyncStatus returns the progress of one operation. Live operations come
// from the tracker; evicted ones from the history store when configured.
//
// @Summary Get sync operation status
// @Tags Sync
// @Produce json
// @Param operationId path string true "Operation id"
// @Success 200 {object} models.APIResponse{data=progress.SyncProgress}
// @Failure 404 {object} models.APIResponse
// @Router /sync/status/{operationId} [get]
func (rt *Router) SyncStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id := chi.URLParam(r, "operationId")

	if p, ok := rt.deps.Manager.Tracker().Get(id); ok {
		rw.Success(p)
		return
	}
	if rt.deps.History != nil {
		p, ok, err := rt.deps.History.Load(r.Context(), id)
		if err != nil {
			rw.InternalError(err)
			return
		}
		if ok {
			rw.Success(p)
			return
		}
	}
	rw.NotFound("operation " + id + " not found")
}

// Operations lists operations that have not finished yet.
//
// @Summary List active sync operations
// @Tags Sync
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]progress.SyncProgress}
// @Router /sync/operations [get]
func (rt *Router) Operations(w http.ResponseWriter, r *http.Request) {
	active := rt.deps.Manager.Tracker().Active()
	if active == nil {
		active = []progress.SyncProgress{}
	}
	NewResponseWriter(w, r).Success(active)
}

// Health reports sync health: 200 when up, 503 when down. The body is the
// same report in both cases.
//
// @Summary Sync health
// @Tags Sync
// @Produce json
// @Success 200 {object} models.APIResponse{data=sync.HealthReport}
// @Failure 503 {object} models.APIResponse{data=sync.HealthReport}
// @Router /sync/health [get]
func (rt *Router) Health(w http.ResponseWriter, r *http.Request) {
	report := rt.deps.Manager.HealthCheck()
	status := http.StatusOK
	if !report.Up() {
		status = http.StatusServiceUnavailable
	}
	NewResponseWriter(w, r).JSON(status, report)
}

// Integrity checks the local store. The report is returned with 200 even
// when it lists errors; a store failure is a 500.
//
// @Summary Local data integrity
// @Tags Sync
// @Produce json
// @Success 200 {object} models.APIResponse{data=sync.IntegrityReport}
// @Failure 500 {object} models.APIResponse{error=models.APIError}
// @Router /sync/integrity [get]
func (rt *Router) Integrity(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	report, err := rt.deps.Manager.Integrity(r.Context())
	if err != nil {
		rw.InternalError(err)
		return
	}
	rw.Success(report)
}

// Entities lists the enabled entity kinds in sync order.
//
// @Summary Enabled entity kinds
// @Tags Sync
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]string}
// @Router /sync/entities [get]
func (rt *Router) Entities(w http.ResponseWriter, r *http.Request) {
	kinds := rt.deps.Manager.Kinds()
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	NewResponseWriter(w, r).Success(out)
}

// NarrationProviders lists the configured narration providers in the order
// they are tried.
func (rt *Router) NarrationProviders(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if rt.deps.Narration == nil {
		rw.Success([]any{})
		return
	}
	rw.Success(rt.deps.Narration.Providers())
}
