// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package sync

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/atwsync/internal/database"
	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/models"
)

// Integrity issue severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Integrity checks.
const (
	CheckDuplicateExternalID = "duplicate_external_id"
	CheckMissingName         = "missing_name"
	CheckShowWithoutType     = "show_without_type"
	CheckBrokenReference     = "broken_reference"
	CheckTeamWithoutMembers  = "team_without_members"
	CheckTeamOneMember       = "team_one_member"
	CheckFactionNoMembers    = "faction_without_members"
)

// IntegrityIssue is one finding of an integrity check.
type IntegrityIssue struct {
	Severity string      `json:"severity"`
	Check    string      `json:"check"`
	Kind     models.Kind `json:"kind"`
	IDs      []int64     `json:"ids"`
	Detail   string      `json:"detail"`
}

// IntegrityReport summarizes the local store. Valid is false when any issue
// has error severity; warnings alone keep it valid.
type IntegrityReport struct {
	Valid      bool             `json:"valid"`
	CheckedAt  time.Time        `json:"checked_at"`
	Errors     []string         `json:"errors"`
	Warnings   []string         `json:"warnings"`
	Statistics map[string]int   `json:"statistics"`
	Issues     []IntegrityIssue `json:"issues"`
}

func (r *IntegrityReport) add(issue IntegrityIssue) {
	r.Issues = append(r.Issues, issue)
	if issue.Severity == SeverityError {
		r.Errors = append(r.Errors, issue.Detail)
	} else {
		r.Warnings = append(r.Warnings, issue.Detail)
	}
}

// refField is a payload key holding local ids of Target.
type refField struct {
	Key    string
	Target models.Kind
}

var referenceFields = map[models.Kind][]refField{
	models.KindShowTemplate: {{"show_type_id", models.KindShowType}},
	models.KindWrestler:     {{"faction_id", models.KindFaction}},
	models.KindFaction: {
		{"leader_id", models.KindWrestler},
		{"member_ids", models.KindWrestler},
	},
	models.KindTeam: {
		{"wrestler1_id", models.KindWrestler},
		{"wrestler2_id", models.KindWrestler},
		{"manager_id", models.KindNPC},
		{"faction_id", models.KindFaction},
	},
	models.KindShow: {
		{"show_type_id", models.KindShowType},
		{"season_id", models.KindSeason},
		{"template_id", models.KindShowTemplate},
	},
	models.KindTitleReign: {
		{"title_id", models.KindTitle},
		{"champion_ids", models.KindWrestler},
		{"won_at_segment_id", models.KindSegment},
	},
	models.KindRivalry: {
		{"wrestler1_id", models.KindWrestler},
		{"wrestler2_id", models.KindWrestler},
	},
	models.KindSegment: {
		{"show_id", models.KindShow},
		{"participant_ids", models.KindWrestler},
		{"winner_ids", models.KindWrestler},
	},
}

// Integrity reads every kind from store and reports duplicate page links,
// unnamed rows, shows without a show type, incomplete teams and factions,
// and references to local ids that do not exist.
func Integrity(ctx context.Context, store database.Store) (IntegrityReport, error) {
	report := IntegrityReport{
		CheckedAt:  time.Now().UTC(),
		Errors:     []string{},
		Warnings:   []string{},
		Statistics: make(map[string]int, len(models.AllKinds)),
		Issues:     []IntegrityIssue{},
	}

	rows := make(map[models.Kind][]database.Record, len(models.AllKinds))
	ids := make(map[models.Kind]map[int64]bool, len(models.AllKinds))
	for _, kind := range models.AllKinds {
		records, err := store.All(ctx, kind)
		if err != nil {
			return IntegrityReport{}, fmt.Errorf("integrity: load %s: %w", kind, err)
		}
		rows[kind] = records
		ids[kind] = make(map[int64]bool, len(records))
		for _, rec := range records {
			ids[kind][rec.ID] = true
		}
		report.Statistics[string(kind)] = len(records)
	}

	for _, kind := range models.AllKinds {
		checkDuplicates(&report, kind, rows[kind])
		for _, rec := range rows[kind] {
			if rec.Name == "" {
				report.add(IntegrityIssue{
					Severity: SeverityError, Check: CheckMissingName, Kind: kind, IDs: []int64{rec.ID},
					Detail: fmt.Sprintf("%s %d has no name", kind, rec.ID),
				})
			}
			refs, err := payloadRefs(rec.Payload, referenceFields[kind])
			if err != nil {
				logging.Ctx(ctx).Warn().Err(err).Str("kind", string(kind)).Int64("id", rec.ID).Msg("Integrity check skipped an undecodable payload")
				continue
			}
			checkShape(&report, kind, rec, refs)
			for _, f := range referenceFields[kind] {
				for _, id := range refs[f.Key] {
					if !ids[f.Target][id] {
						report.add(IntegrityIssue{
							Severity: SeverityError, Check: CheckBrokenReference, Kind: kind, IDs: []int64{rec.ID},
							Detail: fmt.Sprintf("%s %q references missing %s %d (%s)", kind, rec.Name, f.Target, id, f.Key),
						})
					}
				}
			}
		}
	}

	report.Valid = len(report.Errors) == 0
	return report, nil
}

func checkDuplicates(report *IntegrityReport, kind models.Kind, records []database.Record) {
	byExternal := make(map[string][]int64)
	for _, rec := range records {
		if rec.ExternalID != "" {
			byExternal[rec.ExternalID] = append(byExternal[rec.ExternalID], rec.ID)
		}
	}
	externalIDs := make([]string, 0, len(byExternal))
	for ext, dup := range byExternal {
		if len(dup) > 1 {
			externalIDs = append(externalIDs, ext)
		}
	}
	sort.Strings(externalIDs)
	for _, ext := range externalIDs {
		report.add(IntegrityIssue{
			Severity: SeverityWarning, Check: CheckDuplicateExternalID, Kind: kind, IDs: byExternal[ext],
			Detail: fmt.Sprintf("%d %s rows share external id %s", len(byExternal[ext]), kind, ext),
		})
	}
}

// checkShape applies the per-kind completeness rules.
func checkShape(report *IntegrityReport, kind models.Kind, rec database.Record, refs map[string][]int64) {
	switch kind {
	case models.KindShow:
		if len(refs["show_type_id"]) == 0 {
			report.add(IntegrityIssue{
				Severity: SeverityError, Check: CheckShowWithoutType, Kind: kind, IDs: []int64{rec.ID},
				Detail: fmt.Sprintf("show %q has no show type", rec.Name),
			})
		}
	case models.KindTeam:
		members := len(refs["wrestler1_id"]) + len(refs["wrestler2_id"])
		switch members {
		case 0:
			report.add(IntegrityIssue{
				Severity: SeverityError, Check: CheckTeamWithoutMembers, Kind: kind, IDs: []int64{rec.ID},
				Detail: fmt.Sprintf("team %q has no wrestlers", rec.Name),
			})
		case 1:
			report.add(IntegrityIssue{
				Severity: SeverityWarning, Check: CheckTeamOneMember, Kind: kind, IDs: []int64{rec.ID},
				Detail: fmt.Sprintf("team %q has only one wrestler", rec.Name),
			})
		}
	case models.KindFaction:
		if len(refs["member_ids"]) == 0 {
			report.add(IntegrityIssue{
				Severity: SeverityWarning, Check: CheckFactionNoMembers, Kind: kind, IDs: []int64{rec.ID},
				Detail: fmt.Sprintf("faction %q has no members", rec.Name),
			})
		}
	}
}

// payloadRefs reads the non-zero ids stored under each field key.
func payloadRefs(payload []byte, fields []refField) (map[string][]int64, error) {
	out := make(map[string][]int64, len(fields))
	if len(fields) == 0 || len(payload) == 0 {
		return out, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	for _, f := range fields {
		v, ok := raw[f.Key]
		if !ok || string(v) == "null" {
			continue
		}
		var many []int64
		if err := json.Unmarshal(v, &many); err != nil {
			var one int64
			if err := json.Unmarshal(v, &one); err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Key, err)
			}
			many = []int64{one}
		}
		for _, id := range many {
			if id != 0 {
				out[f.Key] = append(out[f.Key], id)
			}
		}
	}
	return out, nil
}
