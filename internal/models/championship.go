// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package models

import "time"

// Championship types.
const (
	ChampionshipSingle = "SINGLE"
	ChampionshipTeam   = "TEAM"
)

// Title is a championship belt.
type Title struct {
	Base
	Description       string `json:"description,omitempty"`
	Tier              string `json:"tier,omitempty"`
	ChampionshipType  string `json:"championship_type"`
	Gender            string `json:"gender,omitempty"`
	IncludeInRankings bool   `json:"include_in_rankings"`
	IsActive          bool   `json:"is_active"`
	DefenseFrequency  int    `json:"defense_frequency,omitempty"`
}

func (*Title) Kind() Kind { return KindTitle }

// TitleReign is one holder's (or team's) run with a title. Without an
// ExternalID a reign is identified by TitleID and ReignNumber.
type TitleReign struct {
	Base
	TitleID        int64      `json:"title_id"`
	ChampionIDs    []int64    `json:"champion_ids,omitempty"`
	ReignNumber    int        `json:"reign_number"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	WonAtSegmentID *int64     `json:"won_at_segment_id,omitempty"`
}

func (*TitleReign) Kind() Kind { return KindTitleReign }

// Current reports whether the reign has not ended.
func (r *TitleReign) Current() bool { return r.EndDate == nil }
