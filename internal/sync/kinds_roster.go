// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package sync

import (
	"context"

	"github.com/tomtom215/atwsync/internal/dto"
	"github.com/tomtom215/atwsync/internal/models"
	"github.com/tomtom215/atwsync/internal/notion"
)

// WrestlerKind describes wrestlers. The page body is the description.
func WrestlerKind() Kind[*dto.Wrestler, *models.Wrestler] {
	return Kind[*dto.Wrestler, *models.Wrestler]{
		Name:         models.KindWrestler,
		New:          func() *models.Wrestler { return &models.Wrestler{} },
		ToDTO:        dto.WrestlerFromPage,
		Merge:        dto.MergeWrestler,
		EntityToDTO:  wrestlerToDTO,
		ToProperties: wrestlerProperties,
		NeedsContent: true,
		ApplyToEntity: func(ctx context.Context, refs *Refs, d *dto.Wrestler, w *models.Wrestler) error {
			w.Description = d.Description
			w.Fans = dto.Deref(d.Fans)
			w.Gender = d.Gender
			w.Bumps = dto.Deref(d.Bumps)
			w.IsPlayer = dto.Deref(d.IsPlayer)
			w.Tier = d.Tier
			w.StartingHealth = dto.Deref(d.StartingHealth)
			w.LowHealth = dto.Deref(d.LowHealth)
			w.StartingStamina = dto.Deref(d.StartingStamina)
			w.LowStamina = dto.Deref(d.LowStamina)
			w.DeckSize = dto.Deref(d.DeckSize)

			factionID, err := refs.One(ctx, models.KindFaction, d.Faction, w.FactionID)
			w.FactionID = factionID
			return err
		},
	}
}

func wrestlerToDTO(ctx context.Context, refs *Refs, w *models.Wrestler) (*dto.Wrestler, error) {
	faction, err := refs.RefPtr(ctx, models.KindFaction, w.FactionID)
	if err != nil {
		return nil, err
	}
	return &dto.Wrestler{
		Identity:        dto.Identity{ExternalID: w.ExternalID, Name: w.Name},
		Description:     w.Description,
		Fans:            dto.Ptr(w.Fans),
		Gender:          w.Gender,
		Bumps:           dto.Ptr(w.Bumps),
		IsPlayer:        dto.Ptr(w.IsPlayer),
		Tier:            w.Tier,
		StartingHealth:  dto.Ptr(w.StartingHealth),
		LowHealth:       dto.Ptr(w.LowHealth),
		StartingStamina: dto.Ptr(w.StartingStamina),
		LowStamina:      dto.Ptr(w.LowStamina),
		DeckSize:        dto.Ptr(w.DeckSize),
		Faction:         faction,
	}, nil
}

func wrestlerProperties(d *dto.Wrestler) map[string]notion.Property {
	return newProperties(d.Name).
		text(dto.PropDescription, d.Description).
		integer64(dto.PropFans, d.Fans).
		choice(dto.PropGender, d.Gender).
		integer(dto.PropBumps, d.Bumps).
		check(dto.PropPlayer, d.IsPlayer).
		choice(dto.PropTier, d.Tier).
		integer(dto.PropStartingHealth, d.StartingHealth).
		integer(dto.PropLowHealth, d.LowHealth).
		integer(dto.PropStartingStamina, d.StartingStamina).
		integer(dto.PropLowStamina, d.LowStamina).
		integer(dto.PropDeckSize, d.DeckSize).
		relation(dto.PropFaction, d.Faction).
		build()
}

// NPCKind describes non-wrestling characters.
func NPCKind() Kind[*dto.NPC, *models.NPC] {
	return Kind[*dto.NPC, *models.NPC]{
		Name:         models.KindNPC,
		New:          func() *models.NPC { return &models.NPC{} },
		ToDTO:        dto.NPCFromPage,
		Merge:        dto.MergeNPC,
		NeedsContent: true,
		EntityToDTO: func(_ context.Context, _ *Refs, n *models.NPC) (*dto.NPC, error) {
			return &dto.NPC{
				Identity:       dto.Identity{ExternalID: n.ExternalID, Name: n.Name},
				Role:           n.Role,
				Description:    n.Description,
				Gender:         n.Gender,
				Alignment:      n.Alignment,
				Status:         n.Status,
				Origin:         n.Origin,
				Likeness:       n.Likeness,
				Catchphrase:    n.Catchphrase,
				SignatureStyle: n.SignatureStyle,
			}, nil
		},
		ApplyToEntity: func(_ context.Context, _ *Refs, d *dto.NPC, n *models.NPC) error {
			n.Role = d.Role
			n.Description = d.Description
			n.Gender = d.Gender
			n.Alignment = d.Alignment
			n.Status = d.Status
			n.Origin = d.Origin
			n.Likeness = d.Likeness
			n.Catchphrase = d.Catchphrase
			n.SignatureStyle = d.SignatureStyle
			return nil
		},
		ToProperties: func(d *dto.NPC) map[string]notion.Property {
			return newProperties(d.Name).
				choice(dto.PropRole, d.Role).
				text(dto.PropDescription, d.Description).
				choice(dto.PropSex, d.Gender).
				choice(dto.PropAlignment, d.Alignment).
				choice(dto.PropStatus, d.Status).
				text(dto.PropOrigin, d.Origin).
				text(dto.PropLikeness, d.Likeness).
				text(dto.PropCatchphrase, d.Catchphrase).
				text(dto.PropSignatureStyle, d.SignatureStyle).
				build()
		},
	}
}

// InjuryKind describes injury types.
func InjuryKind() Kind[*dto.Injury, *models.Injury] {
	return Kind[*dto.Injury, *models.Injury]{
		Name:         models.KindInjury,
		New:          func() *models.Injury { return &models.Injury{} },
		ToDTO:        dto.InjuryFromPage,
		Merge:        dto.MergeInjury,
		NeedsContent: true,
		EntityToDTO: func(_ context.Context, _ *Refs, i *models.Injury) (*dto.Injury, error) {
			return &dto.Injury{
				Identity:       dto.Identity{ExternalID: i.ExternalID, Name: i.Name},
				Description:    i.Description,
				HealthEffect:   dto.Ptr(i.HealthEffect),
				StaminaEffect:  dto.Ptr(i.StaminaEffect),
				CardEffect:     dto.Ptr(i.CardEffect),
				SpecialEffects: i.SpecialEffects,
			}, nil
		},
		ApplyToEntity: func(_ context.Context, _ *Refs, d *dto.Injury, i *models.Injury) error {
			i.Description = d.Description
			i.HealthEffect = dto.Deref(d.HealthEffect)
			i.StaminaEffect = dto.Deref(d.StaminaEffect)
			i.CardEffect = dto.Deref(d.CardEffect)
			i.SpecialEffects = d.SpecialEffects
			return nil
		},
		ToProperties: func(d *dto.Injury) map[string]notion.Property {
			return newProperties(d.Name).
				text(dto.PropDescription, d.Description).
				integer(dto.PropHealthEffect, d.HealthEffect).
				integer(dto.PropStaminaEffect, d.StaminaEffect).
				integer(dto.PropCardEffect, d.CardEffect).
				text(dto.PropSpecialEffects, d.SpecialEffects).
				build()
		},
	}
}
