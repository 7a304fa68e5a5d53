// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package dto

import (
	"strings"
	"time"

	"github.com/tomtom215/atwsync/internal/notion"
)

// Calendar page properties.
const (
	PropShowsPerPPV     = "Shows Per PPV"
	PropExpectedMatches = "Expected Matches"
	PropExpectedPromos  = "Expected Promos"
	PropShowType        = "Show Type"
	PropSeason          = "Season"
	PropTemplate        = "Template"
	PropShow            = "Shows"
	PropShowName        = "Show Name"
	PropSegmentType     = "Segment Type"
	PropParticipants    = "Participants"
	PropWinners         = "Winners"
)

// DefaultSeasonDescription is used when a season page has no description.
const DefaultSeasonDescription = "Season synced from Notion"

// Season is the transfer form of a season page.
type Season struct {
	Identity
	Description string     `json:"description"`
	IsActive    *bool      `json:"is_active,omitempty"`
	ShowsPerPPV *int       `json:"shows_per_ppv,omitempty" validate:"omitempty,gte=0"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

// SeasonFromPage converts a season page.
func SeasonFromPage(page *notion.Page, _ string) (*Season, error) {
	id, err := identityOf(page)
	if err != nil {
		return nil, err
	}
	return &Season{
		Identity:    id,
		Description: notion.String(page, PropDescription),
		IsActive:    optBool(page, PropActive),
		ShowsPerPPV: optInt(page, PropShowsPerPPV),
		StartDate:   optTime(page, PropStartDate),
		EndDate:     optTime(page, PropEndDate),
	}, nil
}

// MergeSeason merges a converted page into the existing season.
func MergeSeason(existing, remote *Season) *Season {
	if existing == nil {
		existing = &Season{}
	}
	return &Season{
		Identity:    mergeIdentity(remote.Identity),
		Description: pickString(remote.Description, existing.Description, DefaultSeasonDescription),
		IsActive:    pick(remote.IsActive, existing.IsActive, Ptr(false)),
		ShowsPerPPV: pick(remote.ShowsPerPPV, existing.ShowsPerPPV, nil),
		StartDate:   pick(remote.StartDate, existing.StartDate, nil),
		EndDate:     pick(remote.EndDate, existing.EndDate, nil),
	}
}

// ShowType is the transfer form of a show type page.
type ShowType struct {
	Identity
	Description     string `json:"description,omitempty"`
	ExpectedMatches *int   `json:"expected_matches,omitempty" validate:"omitempty,gte=0"`
	ExpectedPromos  *int   `json:"expected_promos,omitempty" validate:"omitempty,gte=0"`
}

// DefaultShowTypes are ensured locally when Notion defines no show types.
var DefaultShowTypes = []ShowType{
	{Identity: Identity{Name: "Weekly"}, Description: "Weekly television show format", ExpectedMatches: Ptr(4), ExpectedPromos: Ptr(2)},
	{Identity: Identity{Name: "Premium Live Event (PLE)"}, Description: "Premium live event or pay-per-view format", ExpectedMatches: Ptr(7), ExpectedPromos: Ptr(3)},
}

// ShowTypeDescription derives a description from a show type name.
func ShowTypeDescription(name string) string {
	lower := strings.ToLower(name)
	switch {
	case name == "":
		return "Show type"
	case strings.Contains(lower, "weekly"):
		return "Weekly television show format"
	case strings.Contains(lower, "ple"), strings.Contains(lower, "premium"):
		return "Premium live event or pay-per-view format"
	case strings.Contains(lower, "ppv"), strings.Contains(lower, "pay-per-view"):
		return "Pay-per-view event format"
	case strings.Contains(lower, "special"):
		return "Special event show format"
	case strings.Contains(lower, "house"):
		return "House show or live event format"
	case strings.Contains(lower, "tournament"):
		return "Tournament-style show format"
	}
	return name + " show format"
}

// ShowTypeFromPage converts a show type page.
func ShowTypeFromPage(page *notion.Page, _ string) (*ShowType, error) {
	id, err := identityOf(page)
	if err != nil {
		return nil, err
	}
	return &ShowType{
		Identity:        id,
		Description:     notion.String(page, PropDescription),
		ExpectedMatches: optInt(page, PropExpectedMatches),
		ExpectedPromos:  optInt(page, PropExpectedPromos),
	}, nil
}

// MergeShowType merges a converted page into the existing show type. The
// description defaults to one derived from the name.
func MergeShowType(existing, remote *ShowType) *ShowType {
	if existing == nil {
		existing = &ShowType{}
	}
	return &ShowType{
		Identity:        mergeIdentity(remote.Identity),
		Description:     pickString(remote.Description, existing.Description, ShowTypeDescription(remote.Name)),
		ExpectedMatches: pick(remote.ExpectedMatches, existing.ExpectedMatches, nil),
		ExpectedPromos:  pick(remote.ExpectedPromos, existing.ExpectedPromos, nil),
	}
}

// ShowTemplate is the transfer form of a show template page.
type ShowTemplate struct {
	Identity
	Description string             `json:"description,omitempty"`
	ShowType    notion.RelationRef `json:"-"`
}

// ShowTemplateFromPage converts a show template page.
func ShowTemplateFromPage(page *notion.Page, content string) (*ShowTemplate, error) {
	id, err := identityOf(page)
	if err != nil {
		return nil, err
	}
	description := notion.String(page, PropDescription)
	if description == "" {
		description = strings.TrimSpace(content)
	}
	return &ShowTemplate{
		Identity:    id,
		Description: description,
		ShowType:    notion.Relations(page, PropShowType),
	}, nil
}

// MergeShowTemplate merges a converted page into the existing template.
func MergeShowTemplate(existing, remote *ShowTemplate) *ShowTemplate {
	if existing == nil {
		existing = &ShowTemplate{}
	}
	return &ShowTemplate{
		Identity:    mergeIdentity(remote.Identity),
		Description: pickString(remote.Description, existing.Description, ""),
		ShowType:    pickRelation(remote.ShowType, existing.ShowType),
	}
}

// Show is the transfer form of a show page.
type Show struct {
	Identity
	Description string             `json:"description,omitempty"`
	ShowDate    *time.Time         `json:"show_date,omitempty"`
	ShowType    notion.RelationRef `json:"-"`
	Season      notion.RelationRef `json:"-"`
	Template    notion.RelationRef `json:"-"`
}

// ShowFromPage converts a show page.
func ShowFromPage(page *notion.Page, _ string) (*Show, error) {
	id, err := identityOf(page)
	if err != nil {
		return nil, err
	}
	return &Show{
		Identity:    id,
		Description: notion.String(page, PropDescription),
		ShowDate:    optTime(page, PropDate),
		ShowType:    notion.Relations(page, PropShowType),
		Season:      notion.Relations(page, PropSeason),
		Template:    notion.Relations(page, PropTemplate),
	}, nil
}

// MergeShow merges a converted page into the existing show.
func MergeShow(existing, remote *Show) *Show {
	if existing == nil {
		existing = &Show{}
	}
	return &Show{
		Identity:    mergeIdentity(remote.Identity),
		Description: pickString(remote.Description, existing.Description, ""),
		ShowDate:    pick(remote.ShowDate, existing.ShowDate, nil),
		ShowType:    pickRelation(remote.ShowType, existing.ShowType),
		Season:      pickRelation(remote.Season, existing.Season),
		Template:    pickRelation(remote.Template, existing.Template),
	}
}

// Segment is the transfer form of a segment page. Narration is the page
// body.
type Segment struct {
	Identity
	SegmentType  string             `json:"segment_type,omitempty"`
	SegmentDate  *time.Time         `json:"segment_date,omitempty"`
	Narration    string             `json:"narration,omitempty"`
	Show         notion.RelationRef `json:"-"`
	ShowName     string             `json:"-"`
	Participants notion.RelationRef `json:"-"`
	Winners      notion.RelationRef `json:"-"`
}

// ShowLabel names the segment's show for messages: its title when the page
// carries one, else the related page id.
func (s *Segment) ShowLabel() string {
	if s.ShowName != "" {
		return s.ShowName
	}
	return s.Show.First()
}

// SegmentFromPage converts a segment page. The show relation is read from
// "Shows", falling back to "Show". The show title comes from a "Show Name"
// rollup or from a relation that surfaced as text.
func SegmentFromPage(page *notion.Page, content string) (*Segment, error) {
	id, err := identityOf(page)
	if err != nil {
		return nil, err
	}
	show := notion.Relations(page, PropShow)
	if len(show.IDs) == 0 && !show.Unresolved {
		show = notion.Relations(page, "Show")
	}
	return &Segment{
		Identity:     id,
		SegmentType:  notion.String(page, PropSegmentType),
		SegmentDate:  optTime(page, PropDate),
		Narration:    notion.CleanContent(strings.TrimSpace(content)),
		Show:         show,
		ShowName:     segmentShowName(page, show),
		Participants: notion.Relations(page, PropParticipants),
		Winners:      notion.Relations(page, PropWinners),
	}, nil
}

func segmentShowName(page *notion.Page, show notion.RelationRef) string {
	if name := strings.TrimSpace(notion.String(page, PropShowName)); name != "" && !notion.IsUnresolvedText(name) {
		return name
	}
	if len(show.Names) > 0 {
		return show.Names[0]
	}
	return ""
}

// MergeSegment merges a converted page into the existing segment.
func MergeSegment(existing, remote *Segment) *Segment {
	if existing == nil {
		existing = &Segment{}
	}
	return &Segment{
		Identity:     mergeIdentity(remote.Identity),
		SegmentType:  pickString(remote.SegmentType, existing.SegmentType, ""),
		SegmentDate:  pick(remote.SegmentDate, existing.SegmentDate, nil),
		Narration:    pickString(remote.Narration, existing.Narration, ""),
		Show:         pickRelation(remote.Show, existing.Show),
		ShowName:     pickString(remote.ShowName, existing.ShowName, ""),
		Participants: pickRelation(remote.Participants, existing.Participants),
		Winners:      pickRelation(remote.Winners, existing.Winners),
	}
}
