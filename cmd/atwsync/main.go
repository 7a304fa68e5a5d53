// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

// Command atwsync keeps the All Time Wrestling Notion workspace and the
// local DuckDB store in step.
//
// # Commands
//
//	atwsync serve                       run the trigger API, scheduler and progress stream
//	atwsync sync wrestler               one inbound sync of a single kind
//	atwsync sync all --direction outbound
//	atwsync sync show --dry-run         read Notion, write to an in-memory store
//	atwsync status [operation-id]       query a running server
//
// # Configuration
//
// Configuration is loaded with Koanf v2 (highest priority wins):
//   - Environment variables (NOTION_TOKEN, NOTION_DB_WRESTLER, SYNC_BATCH_SIZE, ...)
//   - Config file (CONFIG_PATH, ./config.yaml, /etc/atwsync/config.yaml)
//   - Built-in defaults
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. serve stops the supervisor
// tree, which shuts the HTTP server down, waits for running syncs and closes
// the stores. sync cancels the in-flight run.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
