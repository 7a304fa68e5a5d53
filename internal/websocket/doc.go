// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

/*
Package websocket streams sync progress to connected clients.

The package uses gorilla/websocket with a hub-and-spoke layout:

	┌──────────┐
	│   Hub    │ ← progress.Listener, broadcasts to all clients
	└────┬─────┘
	     │
	┌────┴─────┬─────────┬─────────┐
	│ Client1  │ Client2 │ Client3 │
	└──────────┴─────────┴─────────┘

Each client runs a readPump (reads commands, tracks pong deadlines) and a
writePump (drains the send channel, sends websocket pings).

Client commands:

  - {"type": "ping"}: answered with "pong"
  - {"type": "subscribe", "operation_id": "..."}: only that operation and
    its per-kind runs ("<id>:<kind>") are streamed from now on
  - {"type": "unsubscribe"}: every operation is streamed again

The ?operation= query parameter on the upgrade request sets the initial
subscription.

Message Types:

  - sync_progress: a progress.SyncProgress snapshot (start, step, completion)
  - sync_completed: terminal snapshot for an operation
  - subscribed: acknowledges subscribe and unsubscribe
  - pong: application-level keepalive reply

Example message:

	{
	  "type": "sync_progress",
	  "data": {"operation_id": "...", "label": "Wrestlers", "status": "RUNNING", ...}
	}

The hub never blocks the tracker: when the broadcast buffer is full the
message is dropped and counted in atwsync_websocket_messages_dropped_total.
Hub implements suture.Service through Serve, so the supervisor restarts it
if it exits unexpectedly.
*/
package websocket
