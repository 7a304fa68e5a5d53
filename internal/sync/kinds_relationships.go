// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package sync

import (
	"context"
	"errors"

	"github.com/tomtom215/atwsync/internal/database"
	"github.com/tomtom215/atwsync/internal/dto"
	"github.com/tomtom215/atwsync/internal/models"
	"github.com/tomtom215/atwsync/internal/notion"
)

// FactionKind describes factions.
func FactionKind() Kind[*dto.Faction, *models.Faction] {
	return Kind[*dto.Faction, *models.Faction]{
		Name:    models.KindFaction,
		New:     func() *models.Faction { return &models.Faction{} },
		ToDTO:   dto.FactionFromPage,
		Merge:   dto.MergeFaction,
		Depends: []models.Kind{models.KindWrestler},
		EntityToDTO: func(ctx context.Context, refs *Refs, f *models.Faction) (*dto.Faction, error) {
			leader, err := refs.RefPtr(ctx, models.KindWrestler, f.LeaderID)
			if err != nil {
				return nil, err
			}
			members, err := refs.Ref(ctx, models.KindWrestler, f.MemberIDs...)
			if err != nil {
				return nil, err
			}
			return &dto.Faction{
				Identity:      dto.Identity{ExternalID: f.ExternalID, Name: f.Name},
				Description:   f.Description,
				IsActive:      dto.Ptr(f.IsActive),
				Leader:        leader,
				Members:       members,
				FormedDate:    f.FormedDate,
				DisbandedDate: f.DisbandedDate,
			}, nil
		},
		ApplyToEntity: func(ctx context.Context, refs *Refs, d *dto.Faction, f *models.Faction) error {
			f.Description = d.Description
			f.IsActive = dto.Deref(d.IsActive)
			f.FormedDate = d.FormedDate
			f.DisbandedDate = d.DisbandedDate

			var err error
			if f.LeaderID, err = refs.One(ctx, models.KindWrestler, d.Leader, f.LeaderID); err != nil {
				return err
			}
			f.MemberIDs, err = refs.Many(ctx, models.KindWrestler, d.Members, f.MemberIDs)
			return err
		},
		ToProperties: func(d *dto.Faction) map[string]notion.Property {
			return newProperties(d.Name).
				text(dto.PropDescription, d.Description).
				check(dto.PropActive, d.IsActive).
				relation(dto.PropLeader, d.Leader).
				relation(dto.PropMembers, d.Members).
				date(dto.PropFormedDate, d.FormedDate).
				date(dto.PropDisbandedDate, d.DisbandedDate).
				build()
		},
	}
}

// TeamKind describes tag teams.
func TeamKind() Kind[*dto.Team, *models.Team] {
	return Kind[*dto.Team, *models.Team]{
		Name:    models.KindTeam,
		New:     func() *models.Team { return &models.Team{} },
		ToDTO:   dto.TeamFromPage,
		Merge:   dto.MergeTeam,
		Depends: []models.Kind{models.KindWrestler, models.KindNPC, models.KindFaction},
		EntityToDTO: func(ctx context.Context, refs *Refs, t *models.Team) (*dto.Team, error) {
			member1, err := refs.RefPtr(ctx, models.KindWrestler, t.Wrestler1ID)
			if err != nil {
				return nil, err
			}
			member2, err := refs.RefPtr(ctx, models.KindWrestler, t.Wrestler2ID)
			if err != nil {
				return nil, err
			}
			manager, err := refs.RefPtr(ctx, models.KindNPC, t.ManagerID)
			if err != nil {
				return nil, err
			}
			faction, err := refs.RefPtr(ctx, models.KindFaction, t.FactionID)
			if err != nil {
				return nil, err
			}
			return &dto.Team{
				Identity:     dto.Identity{ExternalID: t.ExternalID, Name: t.Name},
				Description:  t.Description,
				Member1:      member1,
				Member2:      member2,
				Manager:      manager,
				Faction:      faction,
				Status:       t.Status,
				ThemeSong:    t.ThemeSong,
				Artist:       t.Artist,
				TeamFinisher: t.TeamFinisher,
			}, nil
		},
		ApplyToEntity: func(ctx context.Context, refs *Refs, d *dto.Team, t *models.Team) error {
			t.Description = d.Description
			t.Status = d.Status
			t.ThemeSong = d.ThemeSong
			t.Artist = d.Artist
			t.TeamFinisher = d.TeamFinisher

			var err error
			if t.Wrestler1ID, err = refs.One(ctx, models.KindWrestler, d.Member1, t.Wrestler1ID); err != nil {
				return err
			}
			if t.Wrestler2ID, err = refs.One(ctx, models.KindWrestler, d.Member2, t.Wrestler2ID); err != nil {
				return err
			}
			if t.ManagerID, err = refs.One(ctx, models.KindNPC, d.Manager, t.ManagerID); err != nil {
				return err
			}
			t.FactionID, err = refs.One(ctx, models.KindFaction, d.Faction, t.FactionID)
			return err
		},
		ToProperties: func(d *dto.Team) map[string]notion.Property {
			props := newProperties(d.Name).
				text(dto.PropDescription, d.Description).
				relation(dto.PropMember1, d.Member1).
				relation(dto.PropMember2, d.Member2).
				relation(dto.PropManager, d.Manager).
				relation(dto.PropFaction, d.Faction).
				text(dto.PropThemeSong, d.ThemeSong).
				text(dto.PropArtist, d.Artist).
				text(dto.PropTeamFinisher, d.TeamFinisher)
			if d.Status != "" {
				props.check(dto.PropStatus, dto.Ptr(d.Status == models.TeamActive))
			}
			return props.build()
		},
	}
}

// RivalryKind describes rivalries. A rivalry without a page link is matched
// by its wrestler pair in either order.
func RivalryKind() Kind[*dto.Rivalry, *models.Rivalry] {
	return Kind[*dto.Rivalry, *models.Rivalry]{
		Name:            models.KindRivalry,
		New:             func() *models.Rivalry { return &models.Rivalry{} },
		ToDTO:           dto.RivalryFromPage,
		Merge:           dto.MergeRivalry,
		Depends:         []models.Kind{models.KindWrestler},
		ResolveIdentity: resolveRivalry,
		EntityToDTO: func(ctx context.Context, refs *Refs, r *models.Rivalry) (*dto.Rivalry, error) {
			w1, err := refs.Ref(ctx, models.KindWrestler, r.Wrestler1ID)
			if err != nil {
				return nil, err
			}
			w2, err := refs.Ref(ctx, models.KindWrestler, r.Wrestler2ID)
			if err != nil {
				return nil, err
			}
			return &dto.Rivalry{
				Identity:  dto.Identity{ExternalID: r.ExternalID, Name: r.Name},
				Wrestler1: w1,
				Wrestler2: w2,
				Heat:      dto.Ptr(r.Heat),
				IsActive:  dto.Ptr(r.IsActive),
			}, nil
		},
		ApplyToEntity: func(ctx context.Context, refs *Refs, d *dto.Rivalry, r *models.Rivalry) error {
			w1, err := refs.Required(ctx, models.KindWrestler, d.Wrestler1, r.Wrestler1ID)
			if err != nil {
				return rivalrySkip(d, err)
			}
			w2, err := refs.Required(ctx, models.KindWrestler, d.Wrestler2, r.Wrestler2ID)
			if err != nil {
				return rivalrySkip(d, err)
			}
			if w1 == w2 {
				return skipf(nil, "Skipping rivalry %s as a wrestler cannot feud with themselves.", d.Name)
			}
			r.Wrestler1ID, r.Wrestler2ID = w1, w2
			r.Heat = dto.Deref(d.Heat)
			r.IsActive = dto.Deref(d.IsActive)
			return nil
		},
		ToProperties: func(d *dto.Rivalry) map[string]notion.Property {
			return newProperties(d.Name).
				relation(dto.PropWrestler1, d.Wrestler1).
				relation(dto.PropWrestler2, d.Wrestler2).
				integer(dto.PropHeat, d.Heat).
				check(dto.PropActive, d.IsActive).
				build()
		},
	}
}

func rivalrySkip(d *dto.Rivalry, err error) error {
	if errors.Is(err, ErrMissingReference) {
		return skipf(err, "Skipping rivalry %s as both wrestlers must be synced first.", d.Name)
	}
	return err
}

func resolveRivalry(ctx context.Context, refs *Refs, repo *database.Repository[*models.Rivalry], d *dto.Rivalry) (*models.Rivalry, bool, error) {
	if d.ExternalID != "" {
		r, found, err := repo.FindByExternalID(ctx, d.ExternalID)
		if err != nil || found {
			return r, found, err
		}
	}

	pairFound := false
	var w1, w2 int64
	if !d.Wrestler1.Unresolved && !d.Wrestler2.Unresolved && d.Wrestler1.First() != "" && d.Wrestler2.First() != "" {
		var ok1, ok2 bool
		var err error
		if w1, ok1, err = refs.Lookup(ctx, models.KindWrestler, d.Wrestler1.First()); err != nil {
			return nil, false, err
		}
		if w2, ok2, err = refs.Lookup(ctx, models.KindWrestler, d.Wrestler2.First()); err != nil {
			return nil, false, err
		}
		pairFound = ok1 && ok2
	}

	if pairFound {
		rivalries, err := repo.FindAll(ctx)
		if err != nil {
			return nil, false, err
		}
		for _, r := range rivalries {
			samePair := (r.Wrestler1ID == w1 && r.Wrestler2ID == w2) || (r.Wrestler1ID == w2 && r.Wrestler2ID == w1)
			if samePair && (r.ExternalID == "" || r.ExternalID == d.ExternalID) {
				return r, true, nil
			}
		}
	}
	return identify(ctx, repo, &d.Identity)
}
