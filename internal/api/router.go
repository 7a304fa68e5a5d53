// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package api

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	gorillaws "github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/atwsync/internal/config"
	"github.com/tomtom215/atwsync/internal/middleware"
	"github.com/tomtom215/atwsync/internal/narration"
	"github.com/tomtom215/atwsync/internal/progress"
	atwsync "github.com/tomtom215/atwsync/internal/sync"
	"github.com/tomtom215/atwsync/internal/websocket"
)

// ProviderLister reports the narration providers in fallback order.
type ProviderLister interface {
	Providers() []narration.ProviderInfo
}

// Deps are the collaborators behind the HTTP surface. Manager is required;
// the rest are optional and their endpoints degrade to 404 or empty data.
type Deps struct {
	Manager   *atwsync.Manager
	Hub       *websocket.Hub
	History   progress.HistoryStore
	Narration ProviderLister
	Server    config.ServerConfig
}

// Router owns the handlers and middleware for the trigger API.
type Router struct {
	deps     Deps
	mw       *ChiMiddleware
	upgrader gorillaws.Upgrader
}

// NewRouter creates a Router from deps.
func NewRouter(deps Deps) *Router {
	mwCfg := DefaultChiMiddlewareConfig()
	if len(deps.Server.CORSOrigins) > 0 {
		mwCfg.CORSAllowedOrigins = deps.Server.CORSOrigins
	}
	if deps.Server.RateLimitRequests != 0 {
		mwCfg.RateLimitRequests = deps.Server.RateLimitRequests
	}
	if deps.Server.RateLimitWindow > 0 {
		mwCfg.RateLimitWindow = deps.Server.RateLimitWindow
	}

	rt := &Router{deps: deps, mw: NewChiMiddleware(mwCfg)}
	rt.upgrader = gorillaws.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      rt.checkWebSocketOrigin,
	}
	return rt
}

// Handler builds the chi route tree.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(rt.mw.CORS())

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)

		r.Route("/sync", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(rt.mw.RateLimitTriggers())
				r.Post("/", rt.TriggerSyncAll)
				r.Post("/{entityKind}", rt.TriggerSync)
			})
			r.Get("/status/{operationId}", rt.SyncStatus)
			r.Get("/operations", rt.Operations)
			r.Get("/health", rt.Health)
			r.Get("/integrity", rt.Integrity)
			r.Get("/entities", rt.Entities)
		})

		r.Get("/narration/providers", rt.NarrationProviders)
		r.Get("/ws", rt.WebSocket)
	})

	return r
}

// NewHTTPServer wraps handler in an http.Server configured from cfg.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		IdleTimeout:       2 * timeout,
	}
}
