// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

/*
Package config provides layered configuration for ATW Sync using Koanf v2.

# Configuration Sources

Highest priority wins:
  - Environment variables (NOTION_TOKEN, SYNC_BATCH_SIZE, NOTION_DB_WRESTLER, ...)
  - YAML file (CONFIG_PATH, ./config.yaml, /etc/atwsync/config.yaml)
  - Built-in defaults

# Entity databases

Each entity kind is bound to a Notion database id, either in YAML:

	notion:
	  databases:
	    wrestler: 1f2e...
	    show_type: 9a8b...

or through NOTION_DB_<KIND> variables. A kind without a database id is
reported as misconfigured when synced.

# Narration priority table

Narration providers (gemini, claude) each carry a priority, cost and tier.
The narration package orders providers by priority and falls back down the
list; no other component hardcodes provider ordering.
*/
package config
