// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package dto

import (
	"strings"

	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/notion"
)

// Wrestler page properties.
const (
	PropFans            = "Fans"
	PropBumps           = "Bumps"
	PropPlayer          = "Player"
	PropTier            = "Tier"
	PropStartingHealth  = "Starting Health"
	PropLowHealth       = "Low Health"
	PropStartingStamina = "Starting Stamina"
	PropLowStamina      = "Low Stamina"
	PropDeckSize        = "Deck Size"
	PropFaction         = "Faction"
)

// Wrestler defaults applied when neither side has a value.
const (
	DefaultWrestlerDescription = "Professional wrestler competing in All Time Wrestling"
	DefaultDeckSize            = 15
	MaxDescriptionLength       = 1000
)

// Wrestler is the transfer form of a wrestler page.
type Wrestler struct {
	Identity
	Description     string             `json:"description"`
	Fans            *int64             `json:"fans,omitempty" validate:"omitempty,gte=0"`
	Gender          string             `json:"gender,omitempty"`
	Bumps           *int               `json:"bumps,omitempty" validate:"omitempty,gte=0"`
	IsPlayer        *bool              `json:"is_player,omitempty"`
	Tier            string             `json:"tier,omitempty"`
	StartingHealth  *int               `json:"starting_health,omitempty"`
	LowHealth       *int               `json:"low_health,omitempty"`
	StartingStamina *int               `json:"starting_stamina,omitempty"`
	LowStamina      *int               `json:"low_stamina,omitempty"`
	DeckSize        *int               `json:"deck_size,omitempty" validate:"omitempty,gte=0"`
	Faction         notion.RelationRef `json:"-"`
}

// WrestlerFromPage converts a wrestler page. The page body, when present,
// is the description.
func WrestlerFromPage(page *notion.Page, content string) (*Wrestler, error) {
	id, err := identityOf(page)
	if err != nil {
		return nil, err
	}
	description := strings.TrimSpace(content)
	if description == "" {
		description = notion.String(page, PropDescription)
	}
	return &Wrestler{
		Identity:        id,
		Description:     TruncateDescription(id.Name, description),
		Fans:            optInt64(page, PropFans),
		Gender:          notion.String(page, PropGender),
		Bumps:           optInt(page, PropBumps),
		IsPlayer:        optBool(page, PropPlayer),
		Tier:            notion.String(page, PropTier),
		StartingHealth:  optInt(page, PropStartingHealth),
		LowHealth:       optInt(page, PropLowHealth),
		StartingStamina: optInt(page, PropStartingStamina),
		LowStamina:      optInt(page, PropLowStamina),
		DeckSize:        optInt(page, PropDeckSize),
		Faction:         notion.Relations(page, PropFaction),
	}, nil
}

// TruncateDescription cuts s to MaxDescriptionLength runes, ending in "...".
func TruncateDescription(name, s string) string {
	runes := []rune(s)
	if len(runes) <= MaxDescriptionLength {
		return s
	}
	logging.Debug().Str("name", name).Int("length", len(runes)).Msg("Truncating description")
	return string(runes[:MaxDescriptionLength-3]) + "..."
}

// MergeWrestler merges a converted page into the existing wrestler.
// Game fields the page leaves blank keep their local values.
func MergeWrestler(existing, remote *Wrestler) *Wrestler {
	if existing == nil {
		existing = &Wrestler{}
	}
	return &Wrestler{
		Identity:        mergeIdentity(remote.Identity),
		Description:     pickString(remote.Description, existing.Description, DefaultWrestlerDescription),
		Fans:            pick(remote.Fans, existing.Fans, Ptr[int64](0)),
		Gender:          pickString(remote.Gender, existing.Gender, ""),
		Bumps:           pick(remote.Bumps, existing.Bumps, Ptr(0)),
		IsPlayer:        pick(remote.IsPlayer, existing.IsPlayer, Ptr(false)),
		Tier:            pickString(remote.Tier, existing.Tier, ""),
		StartingHealth:  pick(remote.StartingHealth, existing.StartingHealth, Ptr(0)),
		LowHealth:       pick(remote.LowHealth, existing.LowHealth, Ptr(0)),
		StartingStamina: pick(remote.StartingStamina, existing.StartingStamina, Ptr(0)),
		LowStamina:      pick(remote.LowStamina, existing.LowStamina, Ptr(0)),
		DeckSize:        pick(remote.DeckSize, existing.DeckSize, Ptr(DefaultDeckSize)),
		Faction:         pickRelation(remote.Faction, existing.Faction),
	}
}

// NPC page properties.
const (
	PropRole           = "Role"
	PropSex            = "Sex"
	PropAlignment      = "Alignment"
	PropStatus         = "Status"
	PropOrigin         = "Origin"
	PropLikeness       = "Likeness"
	PropCatchphrase    = "Catchphrase"
	PropSignatureStyle = "Signature Style"
)

// NPC is the transfer form of an NPC page.
type NPC struct {
	Identity
	Role           string `json:"role,omitempty"`
	Description    string `json:"description,omitempty"`
	Gender         string `json:"gender,omitempty"`
	Alignment      string `json:"alignment,omitempty"`
	Status         string `json:"status,omitempty"`
	Origin         string `json:"origin,omitempty"`
	Likeness       string `json:"likeness,omitempty"`
	Catchphrase    string `json:"catchphrase,omitempty"`
	SignatureStyle string `json:"signature_style,omitempty"`
}

// NPCFromPage converts an NPC page. Gender is read from "Sex", falling back
// to "Gender".
func NPCFromPage(page *notion.Page, content string) (*NPC, error) {
	id, err := identityOf(page)
	if err != nil {
		return nil, err
	}
	gender := notion.String(page, PropSex)
	if gender == "" {
		gender = notion.String(page, PropGender)
	}
	description := notion.String(page, PropDescription)
	if description == "" {
		description = strings.TrimSpace(content)
	}
	return &NPC{
		Identity:       id,
		Role:           notion.String(page, PropRole),
		Description:    description,
		Gender:         gender,
		Alignment:      notion.String(page, PropAlignment),
		Status:         notion.String(page, PropStatus),
		Origin:         notion.String(page, PropOrigin),
		Likeness:       notion.String(page, PropLikeness),
		Catchphrase:    notion.String(page, PropCatchphrase),
		SignatureStyle: notion.String(page, PropSignatureStyle),
	}, nil
}

// MergeNPC merges a converted page into the existing NPC.
func MergeNPC(existing, remote *NPC) *NPC {
	if existing == nil {
		existing = &NPC{}
	}
	return &NPC{
		Identity:       mergeIdentity(remote.Identity),
		Role:           pickString(remote.Role, existing.Role, ""),
		Description:    pickString(remote.Description, existing.Description, ""),
		Gender:         pickString(remote.Gender, existing.Gender, ""),
		Alignment:      pickString(remote.Alignment, existing.Alignment, ""),
		Status:         pickString(remote.Status, existing.Status, ""),
		Origin:         pickString(remote.Origin, existing.Origin, ""),
		Likeness:       pickString(remote.Likeness, existing.Likeness, ""),
		Catchphrase:    pickString(remote.Catchphrase, existing.Catchphrase, ""),
		SignatureStyle: pickString(remote.SignatureStyle, existing.SignatureStyle, ""),
	}
}

// Injury page properties.
const (
	PropHealthEffect   = "Health Effect"
	PropStaminaEffect  = "Stamina Effect"
	PropCardEffect     = "Card Effect"
	PropSpecialEffects = "Special Effects"
)

// Injury is the transfer form of an injury type page.
type Injury struct {
	Identity
	Description    string `json:"description,omitempty"`
	HealthEffect   *int   `json:"health_effect,omitempty"`
	StaminaEffect  *int   `json:"stamina_effect,omitempty"`
	CardEffect     *int   `json:"card_effect,omitempty"`
	SpecialEffects string `json:"special_effects,omitempty"`
}

// InjuryFromPage converts an injury type page.
func InjuryFromPage(page *notion.Page, content string) (*Injury, error) {
	id, err := identityOf(page)
	if err != nil {
		return nil, err
	}
	description := notion.String(page, PropDescription)
	if description == "" {
		description = strings.TrimSpace(content)
	}
	return &Injury{
		Identity:       id,
		Description:    description,
		HealthEffect:   optInt(page, PropHealthEffect),
		StaminaEffect:  optInt(page, PropStaminaEffect),
		CardEffect:     optInt(page, PropCardEffect),
		SpecialEffects: notion.String(page, PropSpecialEffects),
	}, nil
}

// MergeInjury merges a converted page into the existing injury type.
func MergeInjury(existing, remote *Injury) *Injury {
	if existing == nil {
		existing = &Injury{}
	}
	return &Injury{
		Identity:       mergeIdentity(remote.Identity),
		Description:    pickString(remote.Description, existing.Description, ""),
		HealthEffect:   pick(remote.HealthEffect, existing.HealthEffect, Ptr(0)),
		StaminaEffect:  pick(remote.StaminaEffect, existing.StaminaEffect, Ptr(0)),
		CardEffect:     pick(remote.CardEffect, existing.CardEffect, Ptr(0)),
		SpecialEffects: pickString(remote.SpecialEffects, existing.SpecialEffects, ""),
	}
}
