// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package models

import "time"

// Team statuses.
const (
	TeamActive   = "ACTIVE"
	TeamInactive = "INACTIVE"
)

// Faction is a stable of wrestlers.
type Faction struct {
	Base
	Description   string     `json:"description,omitempty"`
	IsActive      bool       `json:"is_active"`
	LeaderID      *int64     `json:"leader_id,omitempty"`
	MemberIDs     []int64    `json:"member_ids,omitempty"`
	FormedDate    *time.Time `json:"formed_date,omitempty"`
	DisbandedDate *time.Time `json:"disbanded_date,omitempty"`
}

func (*Faction) Kind() Kind { return KindFaction }

// Team is a tag team of two wrestlers.
type Team struct {
	Base
	Description  string `json:"description,omitempty"`
	Wrestler1ID  *int64 `json:"wrestler1_id,omitempty"`
	Wrestler2ID  *int64 `json:"wrestler2_id,omitempty"`
	ManagerID    *int64 `json:"manager_id,omitempty"`
	FactionID    *int64 `json:"faction_id,omitempty"`
	Status       string `json:"status"`
	ThemeSong    string `json:"theme_song,omitempty"`
	Artist       string `json:"artist,omitempty"`
	TeamFinisher string `json:"team_finisher,omitempty"`
}

func (*Team) Kind() Kind { return KindTeam }

// Rivalry is a feud between two wrestlers. Heat grows with every
// confrontation.
type Rivalry struct {
	Base
	Wrestler1ID int64 `json:"wrestler1_id"`
	Wrestler2ID int64 `json:"wrestler2_id"`
	Heat        int   `json:"heat"`
	IsActive    bool  `json:"is_active"`
}

func (*Rivalry) Kind() Kind { return KindRivalry }
