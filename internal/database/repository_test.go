// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package database

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/atwsync/internal/models"
)

func newWrestler() *models.Wrestler { return &models.Wrestler{} }

// storeImplementations runs fn against both Store implementations.
func storeImplementations(t *testing.T, fn func(t *testing.T, store Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("duckdb", func(t *testing.T) { fn(t, setupTestDB(t)) })
}

func TestRepository_SaveAndFind(t *testing.T) {
	storeImplementations(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		repo := NewRepository(store, models.KindWrestler, newWrestler)

		faction := int64(7)
		synced := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
		w := &models.Wrestler{
			Base:        models.Base{ExternalID: "page-rvd", Name: "Rob Van Dam", LastSync: synced},
			Description: "Mr. Monday Night",
			Fans:        85000,
			DeckSize:    15,
			FactionID:   &faction,
		}
		if err := repo.Save(ctx, w); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if w.ID == 0 || w.UpdatedAt.IsZero() {
			t.Fatalf("Save() did not assign id/timestamps: %+v", w.Base)
		}

		byExt, found, err := repo.FindByExternalID(ctx, "page-rvd")
		if err != nil || !found {
			t.Fatalf("FindByExternalID() = %v, %v", found, err)
		}
		if byExt.ID != w.ID || byExt.Fans != 85000 || byExt.FactionID == nil || *byExt.FactionID != 7 {
			t.Errorf("FindByExternalID() = %+v", byExt)
		}
		if !byExt.LastSync.Equal(synced) {
			t.Errorf("LastSync = %v, want %v", byExt.LastSync, synced)
		}

		byName, found, err := repo.FindByName(ctx, "Rob Van Dam")
		if err != nil || !found || byName.ID != w.ID {
			t.Errorf("FindByName() = %+v, %v, %v", byName, found, err)
		}

		byID, found, err := repo.FindByID(ctx, w.ID)
		if err != nil || !found || byID.Description != "Mr. Monday Night" {
			t.Errorf("FindByID() = %+v, %v, %v", byID, found, err)
		}

		if _, found, err := repo.FindByExternalID(ctx, "missing"); found || err != nil {
			t.Errorf("missing external id: found=%v err=%v", found, err)
		}
		if _, found, err := repo.FindByExternalID(ctx, ""); found || err != nil {
			t.Errorf("blank external id: found=%v err=%v", found, err)
		}
	})
}

func TestRepository_UpdateKeepsID(t *testing.T) {
	storeImplementations(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		repo := NewRepository(store, models.KindWrestler, newWrestler)

		w := &models.Wrestler{Base: models.Base{Name: "Kurt Angle"}, Fans: 1}
		if err := repo.Save(ctx, w); err != nil {
			t.Fatal(err)
		}
		id := w.ID

		w.ExternalID = "page-angle"
		w.Fans = 2
		if err := repo.Save(ctx, w); err != nil {
			t.Fatal(err)
		}
		if w.ID != id {
			t.Errorf("update changed id %d -> %d", id, w.ID)
		}

		all, err := repo.FindAll(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != 1 || all[0].Fans != 2 || all[0].ExternalID != "page-angle" {
			t.Errorf("FindAll() = %+v", all)
		}
	})
}

func TestRepository_KindsAreIsolated(t *testing.T) {
	storeImplementations(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		wrestlers := NewRepository(store, models.KindWrestler, newWrestler)
		shows := NewRepository(store, models.KindShow, func() *models.Show { return &models.Show{} })

		if err := wrestlers.Save(ctx, &models.Wrestler{Base: models.Base{ExternalID: "p1", Name: "Same"}}); err != nil {
			t.Fatal(err)
		}
		if err := shows.Save(ctx, &models.Show{Base: models.Base{ExternalID: "p2", Name: "Same"}}); err != nil {
			t.Fatal(err)
		}

		if _, found, _ := shows.FindByExternalID(ctx, "p1"); found {
			t.Error("show repository must not see wrestler rows")
		}
		ids, err := wrestlers.ExternalIDs(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(ids, []string{"p1"}) {
			t.Errorf("ExternalIDs() = %v", ids)
		}
		if n, _ := store.Count(ctx, models.KindShow); n != 1 {
			t.Errorf("Count(show) = %d", n)
		}
	})
}

func TestRepository_ExternalIDsSkipsUnsynced(t *testing.T) {
	storeImplementations(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		repo := NewRepository(store, models.KindSeason, func() *models.Season { return &models.Season{} })
		for _, s := range []*models.Season{
			{Base: models.Base{ExternalID: "s-2", Name: "Season 2"}},
			{Base: models.Base{Name: "Local only"}},
			{Base: models.Base{ExternalID: "s-1", Name: "Season 1"}},
		} {
			if err := repo.Save(ctx, s); err != nil {
				t.Fatal(err)
			}
		}
		ids, err := repo.ExternalIDs(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(ids, []string{"s-1", "s-2"}) {
			t.Errorf("ExternalIDs() = %v", ids)
		}
	})
}

func TestRepository_IdentityConflictFirstWins(t *testing.T) {
	storeImplementations(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		repo := NewRepository(store, models.KindTeam, func() *models.Team { return &models.Team{} })

		a := &models.Team{Base: models.Base{ExternalID: "t-a", Name: "The Dudleys"}}
		b := &models.Team{Base: models.Base{ExternalID: "t-b", Name: "The Dudleys"}}
		for _, team := range []*models.Team{a, b} {
			if err := repo.Save(ctx, team); err != nil {
				t.Fatal(err)
			}
		}

		got, found, err := repo.FindByName(ctx, "The Dudleys")
		if err != nil || !found {
			t.Fatalf("FindByName() = %v, %v", found, err)
		}
		if got.ID != a.ID {
			t.Errorf("got id %d, want first match %d", got.ID, a.ID)
		}
	})
}

func TestStore_RejectsTakenExternalID(t *testing.T) {
	storeImplementations(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		repo := NewRepository(store, models.KindShow, func() *models.Show { return &models.Show{} })

		first := &models.Show{Base: models.Base{ExternalID: "s1", Name: "Monday Night"}}
		if err := repo.Save(ctx, first); err != nil {
			t.Fatal(err)
		}

		tests := []struct {
			name string
			show *models.Show
		}{
			{"insert", &models.Show{Base: models.Base{ExternalID: "s1", Name: "Monday Night"}}},
			{"relink", &models.Show{Base: models.Base{ExternalID: "s2", Name: "Other"}}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if tt.name == "relink" {
					if err := repo.Save(ctx, tt.show); err != nil {
						t.Fatal(err)
					}
					tt.show.ExternalID = "s1"
				}
				err := repo.Save(ctx, tt.show)
				if !errors.Is(err, ErrExternalIDTaken) {
					t.Errorf("Save() error = %v, want %v", err, ErrExternalIDTaken)
				}
			})
		}

		// re-saving the owner is an update, not a conflict
		first.Name = "Monday Night Wars"
		if err := repo.Save(ctx, first); err != nil {
			t.Errorf("Save() of owner = %v", err)
		}
		if n, _ := store.Count(ctx, models.KindShow); n != 2 {
			t.Errorf("Count(show) = %d, want 2", n)
		}
	})
}

func TestMemoryStore_FailSave(t *testing.T) {
	store := NewMemoryStore()
	repo := NewRepository(store, models.KindInjury, func() *models.Injury { return &models.Injury{} })
	boom := errors.New("disk full")
	store.FailSave(models.KindInjury, boom)

	err := repo.Save(context.Background(), &models.Injury{Base: models.Base{Name: "Concussion"}})
	if !errors.Is(err, boom) || !IsQueryError(err) {
		t.Errorf("Save() = %v, want wrapped %v", err, boom)
	}

	store.FailSave(models.KindInjury, nil)
	if err := repo.Save(context.Background(), &models.Injury{Base: models.Base{Name: "Concussion"}}); err != nil {
		t.Errorf("Save() after clearing = %v", err)
	}
	if store.Saves() != 1 {
		t.Errorf("Saves() = %d, want 1", store.Saves())
	}
}
