// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/atwsync/internal/config"
	"github.com/tomtom215/atwsync/internal/database"
	"github.com/tomtom215/atwsync/internal/eventprocessor"
	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/narration"
	"github.com/tomtom215/atwsync/internal/notion"
	"github.com/tomtom215/atwsync/internal/progress"
	"github.com/tomtom215/atwsync/internal/ratelimit"
	"github.com/tomtom215/atwsync/internal/resilience"
	"github.com/tomtom215/atwsync/internal/supervisor/services"
	atwsync "github.com/tomtom215/atwsync/internal/sync"
)

// appOptions select how the components are built.
type appOptions struct {
	// dryRun keeps every local write in memory.
	dryRun bool
	// listeners receive tracker events in addition to the event publisher.
	listeners []progress.Listener
}

// app holds the wired sync engine and everything that must be closed with it.
type app struct {
	cfg       *config.Config
	manager   *atwsync.Manager
	history   progress.HistoryStore
	narration *narration.Chain

	closers []services.NamedCloser
}

// newApp wires config into the store, remote client, tracker, event
// publisher, narration chain and sync manager. On error everything opened
// so far is closed.
func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (a *app, err error) {
	a = &app{cfg: cfg}
	defer func() {
		if err != nil {
			_ = a.Close()
			a = nil
		}
	}()

	breakers := resilience.NewBreakers(resilience.BreakerSettings{
		FailureThreshold: cfg.CircuitBreaker.FailureThreshold,
		OpenTimeout:      cfg.CircuitBreaker.OpenTimeout,
		HalfOpenRequests: cfg.CircuitBreaker.HalfOpenRequests,
		Interval:         cfg.CircuitBreaker.Interval,
	})

	var store database.Store
	if opts.dryRun {
		store = database.NewMemoryStore()
		logging.Info().Msg("Dry run: local writes stay in memory")
	} else {
		db, dbErr := database.New(&cfg.Database)
		if dbErr != nil {
			return nil, fmt.Errorf("open database: %w", dbErr)
		}
		a.closers = append(a.closers, services.NamedCloser{Name: "database", Closer: db})
		store = db
	}

	trackerOpts := []progress.Option{progress.WithTTL(cfg.Sync.ProgressTTL)}
	if cfg.State.HistoryEnabled {
		if cfg.State.Path != "" {
			bh, hErr := progress.OpenBadgerHistory(cfg.State.Path, cfg.State.HistoryTTL)
			if hErr != nil {
				return nil, fmt.Errorf("open progress history: %w", hErr)
			}
			a.closers = append(a.closers, services.NamedCloser{Name: "history", Closer: bh})
			a.history = bh
		} else {
			a.history = progress.NewMemoryHistory()
		}
		trackerOpts = append(trackerOpts, progress.WithHistory(a.history))
	}
	tracker := progress.NewTracker(trackerOpts...)
	for _, l := range opts.listeners {
		tracker.AddListener(l)
	}

	var publisher *eventprocessor.Publisher
	if cfg.Events.Enabled {
		events := cfg.Events
		if events.Embedded && events.NATSURL == "" {
			var ns *eventprocessor.EmbeddedServer
			ns, events, err = eventprocessor.StartEmbedded(events)
			if err != nil {
				return nil, fmt.Errorf("start embedded nats: %w", err)
			}
			a.closers = append(a.closers, services.NamedCloser{Name: "nats-server", Closer: ns})
		}
		publisher, err = eventprocessor.NewFromConfig(ctx, events, breakers)
		if err != nil {
			return nil, fmt.Errorf("start event publisher: %w", err)
		}
		a.closers = append(a.closers, services.NamedCloser{Name: "events", Closer: publisher})
		tracker.AddListener(publisher)
	}

	var summarizer atwsync.Summarizer
	if cfg.Narration.Enabled {
		a.narration, err = narration.New(ctx, cfg.Narration)
		if err != nil {
			return nil, fmt.Errorf("configure narration: %w", err)
		}
		a.closers = append(a.closers, services.NamedCloser{Name: "narration", Closer: a.narration})
		if cfg.Narration.SummarizeSegments {
			summarizer = a.narration
		}
	}

	tokenConfigured := cfg.Notion.Token != ""
	databases := cfg.Notion.Databases
	if !tokenConfigured {
		logging.Warn().Msg("NOTION_TOKEN not set: every sync reports the remote as not configured")
		databases = nil
	}
	limiter := ratelimit.New(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.RequestsPerHour)
	logging.Info().
		Float64("requests_per_second", float64(limiter.Limit())).
		Int("requests_per_hour", cfg.RateLimit.RequestsPerHour).
		Msg("Notion rate limit configured")
	client := notion.NewResilientClient(
		notion.NewHTTPClient(cfg.Notion),
		limiter,
		resilience.DefaultPolicies(cfg.Retry.MaxRetries, cfg.Retry.BaseDelay, cfg.Retry.MaxDelay),
		breakers,
	)

	health := atwsync.NewHealthMonitor(atwsync.HealthConfig{
		Enabled:          cfg.Sync.Enabled,
		TokenConfigured:  tokenConfigured,
		FailureThreshold: cfg.Sync.FailureThreshold,
		StaleAfter:       cfg.Sync.StaleAfter,
		ActiveOperations: func() int { return len(tracker.Active()) },
	})

	a.manager = atwsync.NewManager(atwsync.Options{
		Config:     cfg.Sync,
		Databases:  databases,
		Client:     client,
		Store:      store,
		Tracker:    tracker,
		Health:     health,
		Summarizer: summarizer,
	})
	if publisher != nil {
		a.manager.OnResult(publisher.OnResult)
	}
	// the manager drains running syncs before the stores close
	a.closers = append(a.closers, services.NamedCloser{Name: "sync-manager", Closer: a.manager})

	logging.Info().
		Bool("dry_run", opts.dryRun).
		Bool("events", cfg.Events.Enabled).
		Bool("narration", cfg.Narration.Enabled).
		Int("databases", len(databases)).
		Msg("Sync engine wired")
	return a, nil
}

// Close releases every resource in reverse order of creation.
func (a *app) Close() error {
	return services.NewCloserService("app", a.closers...).Close()
}
