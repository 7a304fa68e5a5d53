// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package dto

import (
	"strings"
	"time"

	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/models"
	"github.com/tomtom215/atwsync/internal/notion"
)

// Title and reign page properties.
const (
	PropChampionshipType  = "Championship Type"
	PropIncludeInRankings = "Include In Rankings"
	PropDefenseFrequency  = "Defense Frequency"
	PropTitle             = "Title"
	PropChampions         = "Champions"
	PropReignNumber       = "Reign Number"
	PropNotes             = "Notes"
	PropWonAtSegment      = "Won At Segment"
)

// Wrestler tiers.
const (
	TierRookie      = "ROOKIE"
	TierRiser       = "RISER"
	TierContender   = "CONTENDER"
	TierMidcarder   = "MIDCARDER"
	TierMainEventer = "MAIN_EVENTER"
	TierIcon        = "ICON"
)

var tierLabels = map[string]string{
	"main event":    TierMainEventer,
	"main_eventer":  TierMainEventer,
	"midcard":       TierMidcarder,
	"midcarder":     TierMidcarder,
	"lower midcard": TierContender,
	"contender":     TierContender,
	"rookie":        TierRookie,
	"riser":         TierRiser,
	"icon":          TierIcon,
}

// NormalizeTier maps a Notion tier label ("Main Event", "Lower Midcard")
// to its tier constant. Unknown labels return "" and false.
func NormalizeTier(label string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(label))
	if key == "" {
		return "", false
	}
	if tier, ok := tierLabels[key]; ok {
		return tier, true
	}
	return "", false
}

// ChampionshipTypeFor derives TEAM or SINGLE from a title name.
func ChampionshipTypeFor(name string) string {
	if strings.Contains(strings.ToLower(name), "tag") {
		return models.ChampionshipTeam
	}
	return models.ChampionshipSingle
}

// Title is the transfer form of a title page.
type Title struct {
	Identity
	Description       string `json:"description,omitempty"`
	Tier              string `json:"tier,omitempty"`
	ChampionshipType  string `json:"championship_type,omitempty" validate:"omitempty,oneof=SINGLE TEAM"`
	Gender            string `json:"gender,omitempty"`
	IncludeInRankings *bool  `json:"include_in_rankings,omitempty"`
	IsActive          *bool  `json:"is_active,omitempty"`
	DefenseFrequency  *int   `json:"defense_frequency,omitempty" validate:"omitempty,gte=0"`
}

// TitleFromPage converts a title page. Tier labels are normalized and an
// unrecognized championship type is dropped so the merge can derive it.
func TitleFromPage(page *notion.Page, _ string) (*Title, error) {
	id, err := identityOf(page)
	if err != nil {
		return nil, err
	}

	var tier string
	if raw := notion.String(page, PropTier); raw != "" {
		var ok bool
		if tier, ok = NormalizeTier(raw); !ok {
			logging.Warn().Str("title", id.Name).Str("tier", raw).Msg("Invalid tier for title")
		}
	}

	ctype := strings.ToUpper(notion.String(page, PropChampionshipType))
	if ctype != models.ChampionshipSingle && ctype != models.ChampionshipTeam {
		ctype = ""
	}

	active := optBool(page, PropActive)
	if active == nil {
		active = optBool(page, "Is Active")
	}

	return &Title{
		Identity:          id,
		Description:       notion.String(page, PropDescription),
		Tier:              tier,
		ChampionshipType:  ctype,
		Gender:            strings.ToUpper(notion.String(page, PropGender)),
		IncludeInRankings: optBool(page, PropIncludeInRankings),
		IsActive:          active,
		DefenseFrequency:  optInt(page, PropDefenseFrequency),
	}, nil
}

// MergeTitle merges a converted page into the existing title. The
// championship type defaults to TEAM for names containing "tag".
func MergeTitle(existing, remote *Title) *Title {
	if existing == nil {
		existing = &Title{}
	}
	return &Title{
		Identity:          mergeIdentity(remote.Identity),
		Description:       pickString(remote.Description, existing.Description, ""),
		Tier:              pickString(remote.Tier, existing.Tier, ""),
		ChampionshipType:  pickString(remote.ChampionshipType, existing.ChampionshipType, ChampionshipTypeFor(remote.Name)),
		Gender:            pickString(remote.Gender, existing.Gender, ""),
		IncludeInRankings: pick(remote.IncludeInRankings, existing.IncludeInRankings, Ptr(true)),
		IsActive:          pick(remote.IsActive, existing.IsActive, Ptr(true)),
		DefenseFrequency:  pick(remote.DefenseFrequency, existing.DefenseFrequency, nil),
	}
}

// TitleReign is the transfer form of a title reign page.
type TitleReign struct {
	Identity
	Title        notion.RelationRef `json:"-"`
	Champions    notion.RelationRef `json:"-"`
	ReignNumber  *int               `json:"reign_number,omitempty" validate:"omitempty,gte=1"`
	StartDate    *time.Time         `json:"start_date,omitempty"`
	EndDate      *time.Time         `json:"end_date,omitempty"`
	Notes        string             `json:"notes,omitempty"`
	WonAtSegment notion.RelationRef `json:"-"`
}

// TitleReignFromPage converts a title reign page.
func TitleReignFromPage(page *notion.Page, _ string) (*TitleReign, error) {
	id, err := identityOf(page)
	if err != nil {
		return nil, err
	}
	return &TitleReign{
		Identity:     id,
		Title:        notion.Relations(page, PropTitle),
		Champions:    notion.Relations(page, PropChampions),
		ReignNumber:  optInt(page, PropReignNumber),
		StartDate:    optTime(page, PropStartDate),
		EndDate:      optTime(page, PropEndDate),
		Notes:        notion.String(page, PropNotes),
		WonAtSegment: notion.Relations(page, PropWonAtSegment),
	}, nil
}

// MergeTitleReign merges a converted page into the existing reign. The
// reign number defaults to 1.
func MergeTitleReign(existing, remote *TitleReign) *TitleReign {
	if existing == nil {
		existing = &TitleReign{}
	}
	return &TitleReign{
		Identity:     mergeIdentity(remote.Identity),
		Title:        pickRelation(remote.Title, existing.Title),
		Champions:    pickRelation(remote.Champions, existing.Champions),
		ReignNumber:  pick(remote.ReignNumber, existing.ReignNumber, Ptr(1)),
		StartDate:    pick(remote.StartDate, existing.StartDate, nil),
		EndDate:      pick(remote.EndDate, existing.EndDate, nil),
		Notes:        pickString(remote.Notes, existing.Notes, ""),
		WonAtSegment: pickRelation(remote.WonAtSegment, existing.WonAtSegment),
	}
}
