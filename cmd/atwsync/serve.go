// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/atwsync/internal/api"
	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/progress"
	"github.com/tomtom215/atwsync/internal/supervisor"
	"github.com/tomtom215/atwsync/internal/supervisor/services"
	atwsync "github.com/tomtom215/atwsync/internal/sync"
	"github.com/tomtom215/atwsync/internal/websocket"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var runOnStart bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sync trigger API, progress stream and scheduler",
		Long: `Run the HTTP trigger API with the websocket progress stream.

When sync.scheduler_enabled is set, a full inbound sync runs every
sync.scheduler_interval. Every long-lived component runs under a suture
supervisor and restarts on failure.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, root, runOnStart)
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "sync-on-start", false, "run a full inbound sync when the scheduler starts")
	return cmd
}

func serve(ctx context.Context, root *rootOptions, runOnStart bool) error {
	cfg := root.cfg
	logging.Info().
		Str("db_path", cfg.Database.Path).
		Int("port", cfg.Server.Port).
		Bool("sync_enabled", cfg.Sync.Enabled).
		Msg("Starting ATW Sync with supervisor tree")

	hub := websocket.NewHub()
	a, err := newApp(ctx, cfg, appOptions{listeners: []progress.Listener{hub}})
	if err != nil {
		logging.Error().Err(err).Msg("Failed to initialize sync engine")
		return err
	}

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	tree.AddSyncService(services.NewCloserService("resources", a.closers...))
	tree.AddSyncService(a.manager.Health())
	if cfg.Sync.Enabled && cfg.Sync.SchedulerEnabled {
		tree.AddSyncService(atwsync.NewScheduler(a.manager, cfg.Sync.SchedulerInterval, runOnStart))
		logging.Info().Dur("interval", cfg.Sync.SchedulerInterval).Msg("Sync scheduler enabled")
	}

	tree.AddMessagingService(hub)

	deps := api.Deps{
		Manager: a.manager,
		Hub:     hub,
		History: a.history,
		Server:  cfg.Server,
	}
	if a.narration != nil {
		deps.Narration = a.narration
	}
	srv := api.NewHTTPServer(cfg.Server, api.NewRouter(deps).Handler())
	tree.AddAPIService(services.NewHTTPServerService(srv, srv.Addr, cfg.Server.ShutdownTimeout))

	err = tree.Serve(ctx)

	if report, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within shutdown timeout")
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
		return err
	}
	logging.Info().Msg("ATW Sync stopped")
	return nil
}
