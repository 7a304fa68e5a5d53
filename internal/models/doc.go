// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

/*
Package models defines the local entities kept in sync with Notion and the
HTTP response envelope shared by the API.

Every entity embeds Base, which carries the local id, the Notion page id
(ExternalID), the natural-key Name and the time of the last successful
sync. Relationships between entities are stored as local ids; the sync
engine resolves them through the referenced entity's ExternalID.

Entity Kinds:

  - Wrestler, NPC, Injury: roster and card-game attributes
  - Show, ShowType, ShowTemplate, Season: the calendar
  - Segment: one match or promo on a show, with participants and winners
  - Title, TitleReign: championships and their holders
  - Faction, Team, Rivalry: relationships between wrestlers

Kind values are the lower-case keys used in configuration, metrics labels
and API paths ("wrestler", "show_type", "title_reign", ...).
*/
package models
