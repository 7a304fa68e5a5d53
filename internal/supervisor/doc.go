// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

/*
Package supervisor runs the long-lived parts of the sync server under a
suture v4 supervisor tree.

	atwsync
	├── sync-layer
	│   ├── sync-scheduler    (when sync.scheduler_enabled)
	│   ├── sync-health
	│   └── resources         closes manager, publisher, history, store
	├── messaging-layer
	│   └── websocket-hub
	└── api-layer
	    └── http-server

Crashed services restart with suture's backoff. Supervisor events are
logged through sutureslog into the zerolog-backed slog logger.

Usage:

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddSyncService(atwsync.NewScheduler(manager, cfg.Sync.SchedulerInterval, false))
	tree.AddMessagingService(hub)
	tree.AddAPIService(services.NewHTTPServerService(srv, srv.Addr, cfg.Server.ShutdownTimeout))
	err := tree.Serve(ctx)
*/
package supervisor
