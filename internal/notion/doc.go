// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

/*
Package notion is the boundary to the Notion workspace.

Pages are decoded once into Page, whose Properties map holds typed values
(Title, RichText, Number, Select, Relation, Checkbox, Date, Unsupported).
The extractor functions (Name, String, NumberValue, Int, Bool, DateValue,
Relations) read those values tolerantly: a missing key, wrong type or
unparsable value yields the zero value and false, with a warning log.

Three Client implementations exist:

  - HTTPClient: the REST API (database query pagination, pages, block children)
  - ResilientClient: rate limit, retry and circuit breaker decorator
  - MemoryClient: in-process workspace for tests and offline runs

Usage:

	inner := notion.NewHTTPClient(cfg.Notion)
	client := notion.NewResilientClient(inner, limiter, policies, breakers)
	ids, err := client.ListPageIDs(ctx, cfg.Notion.Databases["wrestler"])
*/
package notion
