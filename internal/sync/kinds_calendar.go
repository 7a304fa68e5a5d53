// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/atwsync/internal/dto"
	"github.com/tomtom215/atwsync/internal/models"
	"github.com/tomtom215/atwsync/internal/notion"
)

// Summarizer condenses segment narration. Implementations may call out to
// a language model, so Summarize must honor ctx.
type Summarizer interface {
	Summarize(ctx context.Context, title, text string) (string, error)
}

// SeasonKind describes seasons.
func SeasonKind() Kind[*dto.Season, *models.Season] {
	return Kind[*dto.Season, *models.Season]{
		Name:  models.KindSeason,
		New:   func() *models.Season { return &models.Season{} },
		ToDTO: dto.SeasonFromPage,
		Merge: dto.MergeSeason,
		EntityToDTO: func(_ context.Context, _ *Refs, s *models.Season) (*dto.Season, error) {
			return &dto.Season{
				Identity:    dto.Identity{ExternalID: s.ExternalID, Name: s.Name},
				Description: s.Description,
				IsActive:    dto.Ptr(s.IsActive),
				ShowsPerPPV: dto.Ptr(s.ShowsPerPPV),
				StartDate:   s.StartDate,
				EndDate:     s.EndDate,
			}, nil
		},
		ApplyToEntity: func(_ context.Context, _ *Refs, d *dto.Season, s *models.Season) error {
			s.Description = d.Description
			s.IsActive = dto.Deref(d.IsActive)
			s.ShowsPerPPV = dto.Deref(d.ShowsPerPPV)
			s.StartDate = d.StartDate
			s.EndDate = d.EndDate
			return nil
		},
		ToProperties: func(d *dto.Season) map[string]notion.Property {
			return newProperties(d.Name).
				text(dto.PropDescription, d.Description).
				check(dto.PropActive, d.IsActive).
				integer(dto.PropShowsPerPPV, d.ShowsPerPPV).
				date(dto.PropStartDate, d.StartDate).
				date(dto.PropEndDate, d.EndDate).
				build()
		},
	}
}

// ShowTypeKind describes show types. When the Notion database is empty the
// default types are created locally.
func ShowTypeKind() Kind[*dto.ShowType, *models.ShowType] {
	return Kind[*dto.ShowType, *models.ShowType]{
		Name:  models.KindShowType,
		New:   func() *models.ShowType { return &models.ShowType{} },
		ToDTO: dto.ShowTypeFromPage,
		Merge: dto.MergeShowType,
		EntityToDTO: func(_ context.Context, _ *Refs, t *models.ShowType) (*dto.ShowType, error) {
			return &dto.ShowType{
				Identity:        dto.Identity{ExternalID: t.ExternalID, Name: t.Name},
				Description:     t.Description,
				ExpectedMatches: dto.Ptr(t.ExpectedMatches),
				ExpectedPromos:  dto.Ptr(t.ExpectedPromos),
			}, nil
		},
		ApplyToEntity: func(_ context.Context, _ *Refs, d *dto.ShowType, t *models.ShowType) error {
			t.Description = d.Description
			t.ExpectedMatches = dto.Deref(d.ExpectedMatches)
			t.ExpectedPromos = dto.Deref(d.ExpectedPromos)
			return nil
		},
		ToProperties: func(d *dto.ShowType) map[string]notion.Property {
			return newProperties(d.Name).
				text(dto.PropDescription, d.Description).
				integer(dto.PropExpectedMatches, d.ExpectedMatches).
				integer(dto.PropExpectedPromos, d.ExpectedPromos).
				build()
		},
		Defaults: func() []*dto.ShowType {
			out := make([]*dto.ShowType, len(dto.DefaultShowTypes))
			for i := range dto.DefaultShowTypes {
				d := dto.DefaultShowTypes[i]
				out[i] = &d
			}
			return out
		},
	}
}

// ShowTemplateKind describes show templates. The page body is used when
// the description property is empty.
func ShowTemplateKind() Kind[*dto.ShowTemplate, *models.ShowTemplate] {
	return Kind[*dto.ShowTemplate, *models.ShowTemplate]{
		Name:         models.KindShowTemplate,
		New:          func() *models.ShowTemplate { return &models.ShowTemplate{} },
		ToDTO:        dto.ShowTemplateFromPage,
		Merge:        dto.MergeShowTemplate,
		NeedsContent: true,
		Depends:      []models.Kind{models.KindShowType},
		EntityToDTO: func(ctx context.Context, refs *Refs, t *models.ShowTemplate) (*dto.ShowTemplate, error) {
			showType, err := refs.RefPtr(ctx, models.KindShowType, t.ShowTypeID)
			if err != nil {
				return nil, err
			}
			return &dto.ShowTemplate{
				Identity:    dto.Identity{ExternalID: t.ExternalID, Name: t.Name},
				Description: t.Description,
				ShowType:    showType,
			}, nil
		},
		ApplyToEntity: func(ctx context.Context, refs *Refs, d *dto.ShowTemplate, t *models.ShowTemplate) error {
			t.Description = d.Description
			id, err := refs.One(ctx, models.KindShowType, d.ShowType, t.ShowTypeID)
			t.ShowTypeID = id
			return err
		},
		ToProperties: func(d *dto.ShowTemplate) map[string]notion.Property {
			return newProperties(d.Name).
				text(dto.PropDescription, d.Description).
				relation(dto.PropShowType, d.ShowType).
				build()
		},
	}
}

// ShowKind describes shows.
func ShowKind() Kind[*dto.Show, *models.Show] {
	return Kind[*dto.Show, *models.Show]{
		Name:    models.KindShow,
		New:     func() *models.Show { return &models.Show{} },
		ToDTO:   dto.ShowFromPage,
		Merge:   dto.MergeShow,
		Depends: []models.Kind{models.KindShowType, models.KindSeason, models.KindShowTemplate},
		EntityToDTO: func(ctx context.Context, refs *Refs, s *models.Show) (*dto.Show, error) {
			showType, err := refs.RefPtr(ctx, models.KindShowType, s.ShowTypeID)
			if err != nil {
				return nil, err
			}
			season, err := refs.RefPtr(ctx, models.KindSeason, s.SeasonID)
			if err != nil {
				return nil, err
			}
			template, err := refs.RefPtr(ctx, models.KindShowTemplate, s.TemplateID)
			if err != nil {
				return nil, err
			}
			return &dto.Show{
				Identity:    dto.Identity{ExternalID: s.ExternalID, Name: s.Name},
				Description: s.Description,
				ShowDate:    s.ShowDate,
				ShowType:    showType,
				Season:      season,
				Template:    template,
			}, nil
		},
		ApplyToEntity: func(ctx context.Context, refs *Refs, d *dto.Show, s *models.Show) error {
			s.Description = d.Description
			s.ShowDate = d.ShowDate

			var err error
			if s.ShowTypeID, err = refs.One(ctx, models.KindShowType, d.ShowType, s.ShowTypeID); err != nil {
				return err
			}
			if s.SeasonID, err = refs.One(ctx, models.KindSeason, d.Season, s.SeasonID); err != nil {
				return err
			}
			s.TemplateID, err = refs.One(ctx, models.KindShowTemplate, d.Template, s.TemplateID)
			return err
		},
		ToProperties: func(d *dto.Show) map[string]notion.Property {
			return newProperties(d.Name).
				text(dto.PropDescription, d.Description).
				date(dto.PropDate, d.ShowDate).
				relation(dto.PropShowType, d.ShowType).
				relation(dto.PropSeason, d.Season).
				relation(dto.PropTemplate, d.Template).
				build()
		},
	}
}

// SegmentKind describes show segments. A segment is skipped when its show
// cannot be found or synced. When summarizer is non-nil, changed narration
// is summarized; a summarizer error leaves the previous summary in place.
func SegmentKind(summarizer Summarizer) Kind[*dto.Segment, *models.Segment] {
	return Kind[*dto.Segment, *models.Segment]{
		Name:         models.KindSegment,
		New:          func() *models.Segment { return &models.Segment{} },
		ToDTO:        dto.SegmentFromPage,
		Merge:        dto.MergeSegment,
		NeedsContent: true,
		Depends:      []models.Kind{models.KindShow, models.KindWrestler},
		EntityToDTO: func(ctx context.Context, refs *Refs, s *models.Segment) (*dto.Segment, error) {
			show, err := refs.Ref(ctx, models.KindShow, s.ShowID)
			if err != nil {
				return nil, err
			}
			participants, err := refs.Ref(ctx, models.KindWrestler, s.ParticipantIDs...)
			if err != nil {
				return nil, err
			}
			winners, err := refs.Ref(ctx, models.KindWrestler, s.WinnerIDs...)
			if err != nil {
				return nil, err
			}
			return &dto.Segment{
				Identity:     dto.Identity{ExternalID: s.ExternalID, Name: s.Name},
				SegmentType:  s.SegmentType,
				SegmentDate:  s.SegmentDate,
				Narration:    s.Narration,
				Show:         show,
				Participants: participants,
				Winners:      winners,
			}, nil
		},
		ApplyToEntity: func(ctx context.Context, refs *Refs, d *dto.Segment, s *models.Segment) error {
			showID, err := refs.Required(ctx, models.KindShow, d.Show, s.ShowID)
			if err != nil {
				if errors.Is(err, ErrMissingReference) {
					return skipf(err, "Skipping segment %s as show '%s' could not be found or synced.", d.Name, d.ShowLabel())
				}
				return err
			}
			s.ShowID = showID

			if s.ParticipantIDs, err = refs.Many(ctx, models.KindWrestler, d.Participants, s.ParticipantIDs); err != nil {
				return err
			}
			if s.WinnerIDs, err = refs.Many(ctx, models.KindWrestler, d.Winners, s.WinnerIDs); err != nil {
				return err
			}

			changed := d.Narration != s.Narration
			s.SegmentType = d.SegmentType
			s.SegmentDate = d.SegmentDate
			s.Narration = d.Narration
			if summarizer != nil && strings.TrimSpace(s.Narration) != "" && (changed || s.Summary == "") {
				summary, err := summarizer.Summarize(ctx, d.Name, s.Narration)
				if err != nil {
					refs.note(fmt.Sprintf("Could not summarize segment %s: %v", d.Name, err))
				} else {
					s.Summary = summary
				}
			}
			return nil
		},
		ToProperties: func(d *dto.Segment) map[string]notion.Property {
			return newProperties(d.Name).
				choice(dto.PropSegmentType, d.SegmentType).
				date(dto.PropDate, d.SegmentDate).
				relation(dto.PropShow, d.Show).
				relation(dto.PropParticipants, d.Participants).
				relation(dto.PropWinners, d.Winners).
				build()
		},
	}
}
