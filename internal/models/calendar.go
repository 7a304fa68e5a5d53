// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package models

import "time"

// Season groups shows.
type Season struct {
	Base
	Description string     `json:"description"`
	IsActive    bool       `json:"is_active"`
	ShowsPerPPV int        `json:"shows_per_ppv,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

func (*Season) Kind() Kind { return KindSeason }

// ShowType classifies shows ("Weekly", "Premium Live Event (PLE)").
type ShowType struct {
	Base
	Description     string `json:"description,omitempty"`
	ExpectedMatches int    `json:"expected_matches,omitempty"`
	ExpectedPromos  int    `json:"expected_promos,omitempty"`
}

func (*ShowType) Kind() Kind { return KindShowType }

// ShowTemplate is a reusable show layout bound to a ShowType.
type ShowTemplate struct {
	Base
	Description string `json:"description,omitempty"`
	ShowTypeID  *int64 `json:"show_type_id,omitempty"`
}

func (*ShowTemplate) Kind() Kind { return KindShowTemplate }

// Show is a single card on a date.
type Show struct {
	Base
	Description string     `json:"description,omitempty"`
	ShowDate    *time.Time `json:"show_date,omitempty"`
	ShowTypeID  *int64     `json:"show_type_id,omitempty"`
	SeasonID    *int64     `json:"season_id,omitempty"`
	TemplateID  *int64     `json:"template_id,omitempty"`
}

func (*Show) Kind() Kind { return KindShow }

// Segment is one match or promo on a show. Narration holds the page body
// text; Summary is filled by a narration provider when enabled.
type Segment struct {
	Base
	ShowID         int64      `json:"show_id"`
	SegmentType    string     `json:"segment_type,omitempty"`
	SegmentDate    *time.Time `json:"segment_date,omitempty"`
	Narration      string     `json:"narration,omitempty"`
	Summary        string     `json:"summary,omitempty"`
	ParticipantIDs []int64    `json:"participant_ids,omitempty"`
	WinnerIDs      []int64    `json:"winner_ids,omitempty"`
}

func (*Segment) Kind() Kind { return KindSegment }
