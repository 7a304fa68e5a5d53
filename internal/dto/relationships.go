// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package dto

import (
	"time"

	"github.com/tomtom215/atwsync/internal/models"
	"github.com/tomtom215/atwsync/internal/notion"
)

// Relationship page properties.
const (
	PropLeader        = "Leader"
	PropMembers       = "Members"
	PropFormedDate    = "Formed Date"
	PropDisbandedDate = "Disbanded Date"
	PropHeat          = "Heat"
	PropWrestler1     = "Wrestler 1"
	PropWrestler2     = "Wrestler 2"
	PropMember1       = "Member 1"
	PropMember2       = "Member 2"
	PropManager       = "Manager"
	PropThemeSong     = "Theme Song"
	PropArtist        = "Artist"
	PropTeamFinisher  = "Team Finisher"
)

// Faction is the transfer form of a faction page.
type Faction struct {
	Identity
	Description   string             `json:"description,omitempty"`
	IsActive      *bool              `json:"is_active,omitempty"`
	Leader        notion.RelationRef `json:"-"`
	Members       notion.RelationRef `json:"-"`
	FormedDate    *time.Time         `json:"formed_date,omitempty"`
	DisbandedDate *time.Time         `json:"disbanded_date,omitempty"`
}

// FactionFromPage converts a faction page.
func FactionFromPage(page *notion.Page, _ string) (*Faction, error) {
	id, err := identityOf(page)
	if err != nil {
		return nil, err
	}
	return &Faction{
		Identity:      id,
		Description:   notion.String(page, PropDescription),
		IsActive:      optBool(page, PropActive),
		Leader:        notion.Relations(page, PropLeader),
		Members:       notion.Relations(page, PropMembers),
		FormedDate:    optTime(page, PropFormedDate),
		DisbandedDate: optTime(page, PropDisbandedDate),
	}, nil
}

// MergeFaction merges a converted page into the existing faction. A
// faction without an explicit flag is active unless it has disbanded.
func MergeFaction(existing, remote *Faction) *Faction {
	if existing == nil {
		existing = &Faction{}
	}
	merged := &Faction{
		Identity:      mergeIdentity(remote.Identity),
		Description:   pickString(remote.Description, existing.Description, ""),
		Leader:        pickRelation(remote.Leader, existing.Leader),
		Members:       pickRelation(remote.Members, existing.Members),
		FormedDate:    pick(remote.FormedDate, existing.FormedDate, nil),
		DisbandedDate: pick(remote.DisbandedDate, existing.DisbandedDate, nil),
	}
	merged.IsActive = pick(remote.IsActive, existing.IsActive, Ptr(merged.DisbandedDate == nil))
	return merged
}

// Rivalry is the transfer form of a rivalry page.
type Rivalry struct {
	Identity
	Wrestler1 notion.RelationRef `json:"-"`
	Wrestler2 notion.RelationRef `json:"-"`
	Heat      *int               `json:"heat,omitempty" validate:"omitempty,gte=0"`
	IsActive  *bool              `json:"is_active,omitempty"`
}

// RivalryFromPage converts a rivalry page.
func RivalryFromPage(page *notion.Page, _ string) (*Rivalry, error) {
	id, err := identityOf(page)
	if err != nil {
		return nil, err
	}
	return &Rivalry{
		Identity:  id,
		Wrestler1: notion.Relations(page, PropWrestler1),
		Wrestler2: notion.Relations(page, PropWrestler2),
		Heat:      optInt(page, PropHeat),
		IsActive:  optBool(page, PropActive),
	}, nil
}

// MergeRivalry merges a converted page into the existing rivalry.
func MergeRivalry(existing, remote *Rivalry) *Rivalry {
	if existing == nil {
		existing = &Rivalry{}
	}
	return &Rivalry{
		Identity:  mergeIdentity(remote.Identity),
		Wrestler1: pickRelation(remote.Wrestler1, existing.Wrestler1),
		Wrestler2: pickRelation(remote.Wrestler2, existing.Wrestler2),
		Heat:      pick(remote.Heat, existing.Heat, Ptr(0)),
		IsActive:  pick(remote.IsActive, existing.IsActive, Ptr(true)),
	}
}

// Team is the transfer form of a team page.
type Team struct {
	Identity
	Description  string             `json:"description,omitempty"`
	Member1      notion.RelationRef `json:"-"`
	Member2      notion.RelationRef `json:"-"`
	Manager      notion.RelationRef `json:"-"`
	Faction      notion.RelationRef `json:"-"`
	Status       string             `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	ThemeSong    string             `json:"theme_song,omitempty"`
	Artist       string             `json:"artist,omitempty"`
	TeamFinisher string             `json:"team_finisher,omitempty"`
}

// TeamFromPage converts a team page. Status is a checkbox in Notion and
// maps to ACTIVE or INACTIVE.
func TeamFromPage(page *notion.Page, _ string) (*Team, error) {
	id, err := identityOf(page)
	if err != nil {
		return nil, err
	}
	var status string
	if active, ok := notion.Bool(page, PropStatus); ok {
		status = models.TeamInactive
		if active {
			status = models.TeamActive
		}
	}
	return &Team{
		Identity:     id,
		Description:  notion.String(page, PropDescription),
		Member1:      notion.Relations(page, PropMember1),
		Member2:      notion.Relations(page, PropMember2),
		Manager:      notion.Relations(page, PropManager),
		Faction:      notion.Relations(page, PropFaction),
		Status:       status,
		ThemeSong:    notion.String(page, PropThemeSong),
		Artist:       notion.String(page, PropArtist),
		TeamFinisher: notion.String(page, PropTeamFinisher),
	}, nil
}

// MergeTeam merges a converted page into the existing team.
func MergeTeam(existing, remote *Team) *Team {
	if existing == nil {
		existing = &Team{}
	}
	return &Team{
		Identity:     mergeIdentity(remote.Identity),
		Description:  pickString(remote.Description, existing.Description, ""),
		Member1:      pickRelation(remote.Member1, existing.Member1),
		Member2:      pickRelation(remote.Member2, existing.Member2),
		Manager:      pickRelation(remote.Manager, existing.Manager),
		Faction:      pickRelation(remote.Faction, existing.Faction),
		Status:       pickString(remote.Status, existing.Status, models.TeamActive),
		ThemeSong:    pickString(remote.ThemeSong, existing.ThemeSong, ""),
		Artist:       pickString(remote.Artist, existing.Artist, ""),
		TeamFinisher: pickString(remote.TeamFinisher, existing.TeamFinisher, ""),
	}
}
