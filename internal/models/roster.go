// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package models

// Wrestler is a roster member. Health, stamina and deck fields drive the
// card game; Fans and Tier drive booking.
type Wrestler struct {
	Base
	Description     string `json:"description"`
	Fans            int64  `json:"fans"`
	Gender          string `json:"gender,omitempty"`
	Bumps           int    `json:"bumps"`
	IsPlayer        bool   `json:"is_player"`
	Tier            string `json:"tier,omitempty"`
	StartingHealth  int    `json:"starting_health"`
	LowHealth       int    `json:"low_health"`
	StartingStamina int    `json:"starting_stamina"`
	LowStamina      int    `json:"low_stamina"`
	DeckSize        int    `json:"deck_size"`
	FactionID       *int64 `json:"faction_id,omitempty"`
}

func (*Wrestler) Kind() Kind { return KindWrestler }

// NPC is a non-wrestling character: referee, manager, commentator.
type NPC struct {
	Base
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

func (*NPC) Kind() Kind { return KindNPC }

// Injury is an injury type and its effect on a wrestler's card-game stats.
type Injury struct {
	Base
	Description    string `json:"description,omitempty"`
	HealthEffect   int    `json:"health_effect"`
	StaminaEffect  int    `json:"stamina_effect"`
	CardEffect     int    `json:"card_effect"`
	SpecialEffects string `json:"special_effects,omitempty"`
}

func (*Injury) Kind() Kind { return KindInjury }
