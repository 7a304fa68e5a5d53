// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/atwsync/internal/database"
	"github.com/tomtom215/atwsync/internal/dto"
	"github.com/tomtom215/atwsync/internal/models"
	"github.com/tomtom215/atwsync/internal/notion"
)

// TitleKind describes championship titles.
func TitleKind() Kind[*dto.Title, *models.Title] {
	return Kind[*dto.Title, *models.Title]{
		Name:  models.KindTitle,
		New:   func() *models.Title { return &models.Title{} },
		ToDTO: dto.TitleFromPage,
		Merge: dto.MergeTitle,
		EntityToDTO: func(_ context.Context, _ *Refs, t *models.Title) (*dto.Title, error) {
			return &dto.Title{
				Identity:          dto.Identity{ExternalID: t.ExternalID, Name: t.Name},
				Description:       t.Description,
				Tier:              t.Tier,
				ChampionshipType:  t.ChampionshipType,
				Gender:            t.Gender,
				IncludeInRankings: dto.Ptr(t.IncludeInRankings),
				IsActive:          dto.Ptr(t.IsActive),
				DefenseFrequency:  dto.Ptr(t.DefenseFrequency),
			}, nil
		},
		ApplyToEntity: func(_ context.Context, _ *Refs, d *dto.Title, t *models.Title) error {
			t.Description = d.Description
			t.Tier = d.Tier
			t.ChampionshipType = d.ChampionshipType
			t.Gender = d.Gender
			t.IncludeInRankings = dto.Deref(d.IncludeInRankings)
			t.IsActive = dto.Deref(d.IsActive)
			t.DefenseFrequency = dto.Deref(d.DefenseFrequency)
			return nil
		},
		ToProperties: func(d *dto.Title) map[string]notion.Property {
			return newProperties(d.Name).
				text(dto.PropDescription, d.Description).
				choice(dto.PropTier, d.Tier).
				choice(dto.PropChampionshipType, d.ChampionshipType).
				choice(dto.PropGender, d.Gender).
				check(dto.PropIncludeInRankings, d.IncludeInRankings).
				check(dto.PropActive, d.IsActive).
				integer(dto.PropDefenseFrequency, d.DefenseFrequency).
				build()
		},
	}
}

// TitleReignKind describes title reigns. A reign without a page link is
// matched by its title and reign number.
func TitleReignKind() Kind[*dto.TitleReign, *models.TitleReign] {
	return Kind[*dto.TitleReign, *models.TitleReign]{
		Name:            models.KindTitleReign,
		New:             func() *models.TitleReign { return &models.TitleReign{} },
		ToDTO:           dto.TitleReignFromPage,
		Merge:           dto.MergeTitleReign,
		Depends:         []models.Kind{models.KindTitle, models.KindWrestler},
		ResolveIdentity: resolveTitleReign,
		DisplayName: func(r *models.TitleReign) string {
			return fmt.Sprintf("%s (reign %d)", r.Name, r.ReignNumber)
		},
		EntityToDTO: func(ctx context.Context, refs *Refs, r *models.TitleReign) (*dto.TitleReign, error) {
			title, err := refs.Ref(ctx, models.KindTitle, r.TitleID)
			if err != nil {
				return nil, err
			}
			champions, err := refs.Ref(ctx, models.KindWrestler, r.ChampionIDs...)
			if err != nil {
				return nil, err
			}
			segment, err := refs.RefPtr(ctx, models.KindSegment, r.WonAtSegmentID)
			if err != nil {
				return nil, err
			}
			return &dto.TitleReign{
				Identity:     dto.Identity{ExternalID: r.ExternalID, Name: r.Name},
				Title:        title,
				Champions:    champions,
				ReignNumber:  dto.Ptr(r.ReignNumber),
				StartDate:    r.StartDate,
				EndDate:      r.EndDate,
				Notes:        r.Notes,
				WonAtSegment: segment,
			}, nil
		},
		ApplyToEntity: func(ctx context.Context, refs *Refs, d *dto.TitleReign, r *models.TitleReign) error {
			titleID, err := refs.Required(ctx, models.KindTitle, d.Title, r.TitleID)
			if err != nil {
				if errors.Is(err, ErrMissingReference) {
					return skipf(err, "Skipping title reign %s as title '%s' could not be found or synced.", d.Name, d.Title.First())
				}
				return err
			}
			r.TitleID = titleID

			if r.ChampionIDs, err = refs.Many(ctx, models.KindWrestler, d.Champions, r.ChampionIDs); err != nil {
				return err
			}
			if r.WonAtSegmentID, err = refs.One(ctx, models.KindSegment, d.WonAtSegment, r.WonAtSegmentID); err != nil {
				return err
			}
			r.ReignNumber = dto.Deref(d.ReignNumber)
			r.StartDate = d.StartDate
			r.EndDate = d.EndDate
			r.Notes = d.Notes
			return nil
		},
		ToProperties: func(d *dto.TitleReign) map[string]notion.Property {
			return newProperties(d.Name).
				relation(dto.PropTitle, d.Title).
				relation(dto.PropChampions, d.Champions).
				integer(dto.PropReignNumber, d.ReignNumber).
				date(dto.PropStartDate, d.StartDate).
				date(dto.PropEndDate, d.EndDate).
				text(dto.PropNotes, d.Notes).
				relation(dto.PropWonAtSegment, d.WonAtSegment).
				build()
		},
	}
}

func resolveTitleReign(ctx context.Context, refs *Refs, repo *database.Repository[*models.TitleReign], d *dto.TitleReign) (*models.TitleReign, bool, error) {
	if d.ExternalID != "" {
		r, found, err := repo.FindByExternalID(ctx, d.ExternalID)
		if err != nil || found {
			return r, found, err
		}
	}
	if d.Title.Unresolved || d.Title.First() == "" {
		return nil, false, nil
	}
	titleID, found, err := refs.Lookup(ctx, models.KindTitle, d.Title.First())
	if err != nil || !found {
		return nil, false, err
	}
	number := 1
	if d.ReignNumber != nil {
		number = *d.ReignNumber
	}

	reigns, err := repo.FindAll(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, r := range reigns {
		if r.TitleID != titleID || r.ReignNumber != number {
			continue
		}
		if r.ExternalID == "" || r.ExternalID == d.ExternalID {
			return r, true, nil
		}
	}
	return nil, false, nil
}
