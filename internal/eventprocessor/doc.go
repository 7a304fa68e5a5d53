// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

// Package eventprocessor publishes sync lifecycle events through Watermill.
//
// Two transports are supported:
//
//   - In-process (default): a Watermill gochannel. Useful for tests and for
//     single-binary deployments that only need the websocket stream.
//   - NATS: when events.nats_url is set, events go to NATS subjects under
//     events.topic_prefix. With events.jetstream the stream is created or
//     updated on startup so events survive subscriber restarts.
//   - Embedded NATS: with events.embedded and no URL, an in-process
//     JetStream server (nats-server) listens on events.embedded_host and
//     events.embedded_port so external consumers can still subscribe.
//
// # Topics
//
//	<prefix>.sync.started    operation started (progress snapshot)
//	<prefix>.sync.progress   operation advanced a step
//	<prefix>.sync.completed  operation finished or failed
//	<prefix>.sync.result     one entity kind finished (SyncResult)
//
// The Publisher implements progress.Listener and can be registered with
// sync.Manager.OnResult, so the engine never imports this package.
// Publishing goes through a circuit breaker; publish failures are logged and
// counted but never fail a sync.
package eventprocessor
