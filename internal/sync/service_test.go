// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/atwsync/internal/dto"
	"github.com/tomtom215/atwsync/internal/models"
	"github.com/tomtom215/atwsync/internal/notion"
)

func TestInbound_CreatesThenSkipsWrestlers(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addPage(models.KindWrestler, "r1", "Rob Van Dam", nil)
	env.addPage(models.KindWrestler, "r2", "Kurt Angle", nil)

	first := env.sync(t, models.KindWrestler, Inbound)
	if !first.Success || first.CreatedCount != 2 || first.UpdatedCount != 0 {
		t.Fatalf("first run = %+v, want 2 created", first)
	}

	got := map[string]string{}
	for _, w := range wrestlers(t, env.store) {
		got[w.ExternalID] = w.Name
	}
	if got["r1"] != "Rob Van Dam" || got["r2"] != "Kurt Angle" || len(got) != 2 {
		t.Errorf("local wrestlers = %v", got)
	}

	second := env.sync(t, models.KindWrestler, Inbound)
	if !second.Success || second.CreatedCount != 0 || second.UpdatedCount != 0 {
		t.Errorf("second run = %+v, want nothing synced", second)
	}
	if !hasMessage(second, "already synced in this session") {
		t.Errorf("second run messages = %v, want session dedup message", second.Messages)
	}

	env.manager.dedup.Reset()
	third := env.sync(t, models.KindWrestler, Inbound)
	if !third.Success || third.Synced() != 0 {
		t.Errorf("run after reset = %+v, want empty delta", third)
	}
	if !hasMessage(third, "No new wrestlers to sync.") {
		t.Errorf("run after reset messages = %v", third.Messages)
	}
	if n := len(wrestlers(t, env.store)); n != 2 {
		t.Errorf("wrestler count = %d, want 2", n)
	}
}

func TestInbound_NameMatchLinksExistingEntity(t *testing.T) {
	env := newTestEnv(t, nil)
	wr := repo(env.store, models.KindWrestler, func() *models.Wrestler { return &models.Wrestler{} })
	local := &models.Wrestler{Base: models.Base{Name: "Rob Van Dam"}, Fans: 500, DeckSize: 20}
	if err := wr.Save(context.Background(), local); err != nil {
		t.Fatalf("seed: %v", err)
	}

	env.addPage(models.KindWrestler, "r1", "Rob Van Dam", map[string]notion.Property{
		dto.PropBumps: notion.NumberOf(2),
	})
	r := env.sync(t, models.KindWrestler, Inbound)
	if r.CreatedCount != 0 || r.UpdatedCount != 1 {
		t.Fatalf("result = %+v, want 1 updated", r)
	}

	all := wrestlers(t, env.store)
	if len(all) != 1 {
		t.Fatalf("wrestler count = %d, want 1", len(all))
	}
	w := all[0]
	if w.ExternalID != "r1" || w.Bumps != 2 {
		t.Errorf("wrestler = %+v, want linked to r1 with 2 bumps", w)
	}
	if w.Fans != 500 || w.DeckSize != 20 {
		t.Errorf("blank remote fields overwrote local values: fans=%d deck=%d", w.Fans, w.DeckSize)
	}
	if w.LastSync.IsZero() {
		t.Error("LastSync not set")
	}
}

func TestInbound_NameMatchLinkedElsewhereCreatesNew(t *testing.T) {
	env := newTestEnv(t, nil)
	wr := repo(env.store, models.KindWrestler, func() *models.Wrestler { return &models.Wrestler{} })
	if err := wr.Save(context.Background(), &models.Wrestler{Base: models.Base{Name: "Sting", ExternalID: "other"}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	env.addPage(models.KindWrestler, "r9", "Sting", nil)

	r := env.sync(t, models.KindWrestler, Inbound)
	if r.CreatedCount != 1 {
		t.Errorf("result = %+v, want a new entity", r)
	}
}

func TestInbound_ItemFailuresDoNotAbortRun(t *testing.T) {
	env := newTestEnv(t, nil)
	for i, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		env.addPage(models.KindNPC, name, name, nil)
		if i%3 == 2 {
			env.client.FailGetPage(name, errors.New("boom"))
		}
	}

	r := env.sync(t, models.KindNPC, Inbound)
	if !r.Success {
		t.Fatalf("result = %+v, want success with item errors", r)
	}
	if r.CreatedCount != 5 || r.ErrorCount != 2 {
		t.Errorf("created=%d errors=%d, want 5 and 2", r.CreatedCount, r.ErrorCount)
	}
	if len(r.Messages) == 0 {
		t.Error("expected messages for failed items")
	}
	if env.manager.dedup.IsSynced(string(models.KindNPC)) {
		t.Error("kind with item errors must not be marked synced")
	}
}

func TestInbound_ListFailureFailsRun(t *testing.T) {
	env := newTestEnv(t, nil)
	env.client.FailList(dbID(models.KindTitle), errors.New("unauthorized"))

	r := env.sync(t, models.KindTitle, Inbound)
	if r.Success {
		t.Fatal("expected failure")
	}
	if r.Err() == nil {
		t.Error("Err() = nil for failed result")
	}
}

func TestInbound_NotConfigured(t *testing.T) {
	env := newTestEnv(t, func(o *Options) {
		o.Databases = map[string]string{}
	})
	r := env.sync(t, models.KindSeason, Inbound)
	if r.Success || !errors.Is(r.Err(), ErrRemoteNotConfigured) {
		t.Errorf("result = %+v, want ErrRemoteNotConfigured", r)
	}
}

func TestInbound_SegmentSyncsMissingShow(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addPage(models.KindShow, "s1", "Monday Night Mayhem", nil)
	env.addPage(models.KindSegment, "seg1", "Opening Match", map[string]notion.Property{
		dto.PropShow: rel("s1"),
	})

	r := env.sync(t, models.KindSegment, Inbound)
	if !r.Success || r.CreatedCount != 1 || r.ErrorCount != 0 {
		t.Fatalf("result = %+v, want segment created", r)
	}
	if !hasMessage(r, "Attempting to sync it") {
		t.Errorf("messages = %v, want on-demand sync notice", r.Messages)
	}

	show, found, err := env.store.ByExternalID(context.Background(), models.KindShow, "s1")
	if err != nil || !found {
		t.Fatalf("show not synced: found=%v err=%v", found, err)
	}
	segs, err := repo(env.store, models.KindSegment, func() *models.Segment { return &models.Segment{} }).FindAll(context.Background())
	if err != nil || len(segs) != 1 {
		t.Fatalf("segments = %v, err = %v", segs, err)
	}
	if segs[0].ShowID != show.ID {
		t.Errorf("segment show id = %d, want %d", segs[0].ShowID, show.ID)
	}
}

func TestInbound_SegmentSkippedWhenShowSyncFails(t *testing.T) {
	tests := []struct {
		name  string
		props map[string]notion.Property
		label string
	}{
		{"show name rollup", map[string]notion.Property{
			dto.PropShow:     rel("s1"),
			dto.PropShowName: notion.RichText{Text: "Monday Night Mayhem"},
		}, "Monday Night Mayhem"},
		{"placeholder name falls back to id", map[string]notion.Property{
			dto.PropShow:     rel("s1"),
			dto.PropShowName: notion.RichText{Text: "1 relation"},
		}, "s1"},
		{"no name", map[string]notion.Property{dto.PropShow: rel("s1")}, "s1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			env.addPage(models.KindShow, "s1", "Monday Night Mayhem", nil)
			env.client.FailGetPage("s1", errors.New("server error"))
			env.addPage(models.KindSegment, "seg1", "Opening Match", tt.props)

			r := env.sync(t, models.KindSegment, Inbound)
			if !r.Success || r.CreatedCount != 0 || r.ErrorCount != 1 {
				t.Fatalf("result = %+v, want one skipped segment", r)
			}
			want := "Skipping segment Opening Match as show '" + tt.label + "' could not be found or synced."
			if !hasMessage(r, want) {
				t.Errorf("messages = %v, want %q", r.Messages, want)
			}
			if n, _ := env.store.Count(context.Background(), models.KindSegment); n != 0 {
				t.Errorf("segment count = %d, want 0", n)
			}
		})
	}
}

func TestInbound_SegmentSummarized(t *testing.T) {
	summarizer := &stubSummarizer{summary: "RVD wins"}
	env := newTestEnv(t, func(o *Options) { o.Summarizer = summarizer })
	env.addPage(models.KindShow, "s1", "Show", nil)
	env.addPage(models.KindSegment, "seg1", "Main Event", map[string]notion.Property{dto.PropShow: rel("s1")})
	env.client.SetContent("seg1", "Rob Van Dam hits the Five Star Frog Splash.")

	r := env.sync(t, models.KindSegment, Inbound)
	if r.CreatedCount != 1 {
		t.Fatalf("result = %+v", r)
	}
	segs, _ := repo(env.store, models.KindSegment, func() *models.Segment { return &models.Segment{} }).FindAll(context.Background())
	if len(segs) != 1 || segs[0].Summary != "RVD wins" || segs[0].Narration == "" {
		t.Errorf("segment = %+v, want narration and summary", segs)
	}
	if summarizer.count() != 1 {
		t.Errorf("summarizer calls = %d, want 1", summarizer.count())
	}
}

func TestInbound_SummarizerErrorKeepsSegment(t *testing.T) {
	summarizer := &stubSummarizer{err: errors.New("quota")}
	env := newTestEnv(t, func(o *Options) { o.Summarizer = summarizer })
	env.addPage(models.KindShow, "s1", "Show", nil)
	env.addPage(models.KindSegment, "seg1", "Promo", map[string]notion.Property{dto.PropShow: rel("s1")})
	env.client.SetContent("seg1", "A fiery promo.")

	r := env.sync(t, models.KindSegment, Inbound)
	if r.CreatedCount != 1 || r.ErrorCount != 0 {
		t.Errorf("result = %+v, want segment saved", r)
	}
	if !hasMessage(r, "Could not summarize segment Promo") {
		t.Errorf("messages = %v", r.Messages)
	}
}

func TestInbound_UnresolvedRelationKeepsLocalLink(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addPage(models.KindFaction, "f1", "The Alliance", nil)
	env.addPage(models.KindWrestler, "w1", "Kurt Angle", map[string]notion.Property{dto.PropFaction: rel("f1")})

	env.sync(t, models.KindFaction, Inbound)
	env.sync(t, models.KindWrestler, Inbound)
	all := wrestlers(t, env.store)
	if len(all) != 1 || all[0].FactionID == nil {
		t.Fatalf("wrestler faction not linked: %+v", all)
	}
	factionID := *all[0].FactionID

	// The page is re-read with a relation reported only as a count.
	env.addPage(models.KindWrestler, "w1", "Kurt Angle", map[string]notion.Property{
		dto.PropFaction: notion.Relation{HasMore: true},
	})
	svc, _ := env.manager.Service(models.KindWrestler)
	r := svc.syncPages(context.Background(), newResolver(env.store, env.manager), []string{"w1"})
	if r.UpdatedCount != 1 {
		t.Fatalf("result = %+v, want 1 updated", r)
	}
	all = wrestlers(t, env.store)
	if all[0].FactionID == nil || *all[0].FactionID != factionID {
		t.Errorf("faction link lost: %v", all[0].FactionID)
	}
}

func TestInbound_TeamMembersAsText(t *testing.T) {
	tests := []struct {
		name    string
		member1 string
		linked  bool
	}{
		{"title resolves by name", "Edge", true},
		{"count stays unresolved", "2 items", false},
		{"unknown name", "Rhyno", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			env.addPage(models.KindWrestler, "w-edge", "Edge", nil)
			env.addPage(models.KindTeam, "t1", "E&C", map[string]notion.Property{
				dto.PropMember1: notion.RichText{Text: tt.member1},
			})
			env.sync(t, models.KindWrestler, Inbound)
			if r := env.sync(t, models.KindTeam, Inbound); !r.Success || r.CreatedCount != 1 {
				t.Fatalf("result = %+v", r)
			}

			edge, _, _ := env.store.ByExternalID(context.Background(), models.KindWrestler, "w-edge")
			teams, err := repo(env.store, models.KindTeam, func() *models.Team { return &models.Team{} }).FindAll(context.Background())
			if err != nil || len(teams) != 1 {
				t.Fatalf("teams = %v, err = %v", teams, err)
			}
			got := teams[0].Wrestler1ID
			if tt.linked && (got == nil || *got != edge.ID) {
				t.Errorf("Wrestler1ID = %v, want %d", got, edge.ID)
			}
			if !tt.linked && got != nil {
				t.Errorf("Wrestler1ID = %d, want unset", *got)
			}
		})
	}
}

func TestInbound_ShowTypeDefaultsWhenRemoteEmpty(t *testing.T) {
	env := newTestEnv(t, nil)
	r := env.sync(t, models.KindShowType, Inbound)
	if !r.Success || r.CreatedCount != len(dto.DefaultShowTypes) {
		t.Fatalf("result = %+v, want defaults created", r)
	}

	env.manager.dedup.Reset()
	r = env.sync(t, models.KindShowType, Inbound)
	if r.CreatedCount != 0 {
		t.Errorf("second run created %d, want 0", r.CreatedCount)
	}
}

func TestInbound_TitleReignMatchedByTitleAndNumber(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addPage(models.KindTitle, "t1", "World Tag Team Championship", nil)
	env.sync(t, models.KindTitle, Inbound)

	title, _, _ := env.store.ByExternalID(context.Background(), models.KindTitle, "t1")
	reigns := repo(env.store, models.KindTitleReign, func() *models.TitleReign { return &models.TitleReign{} })
	if err := reigns.Save(context.Background(), &models.TitleReign{
		Base: models.Base{Name: "Old name"}, TitleID: title.ID, ReignNumber: 2,
	}); err != nil {
		t.Fatal(err)
	}

	env.addPage(models.KindTitleReign, "tr1", "The Dudleys", map[string]notion.Property{
		dto.PropTitle:       rel("t1"),
		dto.PropReignNumber: notion.NumberOf(2),
	})
	r := env.sync(t, models.KindTitleReign, Inbound)
	if r.CreatedCount != 0 || r.UpdatedCount != 1 {
		t.Fatalf("result = %+v, want existing reign updated", r)
	}
	all, _ := reigns.FindAll(context.Background())
	if len(all) != 1 || all[0].ExternalID != "tr1" || all[0].Name != "The Dudleys" {
		t.Errorf("reigns = %+v", all)
	}
}

func TestInbound_RivalryRejectsSelfFeud(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addPage(models.KindWrestler, "w1", "Edge", nil)
	env.addPage(models.KindRivalry, "rv1", "Edge vs Edge", map[string]notion.Property{
		dto.PropWrestler1: rel("w1"),
		dto.PropWrestler2: rel("w1"),
	})

	r := env.sync(t, models.KindRivalry, Inbound)
	if r.CreatedCount != 0 || r.ErrorCount != 1 {
		t.Errorf("result = %+v, want rivalry skipped", r)
	}
	if !hasMessage(r, "cannot feud with themselves") {
		t.Errorf("messages = %v", r.Messages)
	}
}

func TestOutbound_CreatesAndUpdatesPages(t *testing.T) {
	env := newTestEnv(t, nil)
	wr := repo(env.store, models.KindWrestler, func() *models.Wrestler { return &models.Wrestler{} })
	ctx := context.Background()
	if err := wr.Save(ctx, &models.Wrestler{Base: models.Base{Name: "Rob Van Dam"}, Fans: 90}); err != nil {
		t.Fatal(err)
	}
	env.addPage(models.KindWrestler, "r2", "Kurt Angle", nil)
	if err := wr.Save(ctx, &models.Wrestler{Base: models.Base{Name: "Kurt Angle", ExternalID: "r2"}, Fans: 80}); err != nil {
		t.Fatal(err)
	}

	r := env.sync(t, models.KindWrestler, Outbound)
	if !r.Success || r.CreatedCount != 1 || r.UpdatedCount != 1 {
		t.Fatalf("result = %+v, want 1 created and 1 updated", r)
	}
	if env.client.Calls("create") != 1 || env.client.Calls("update") != 1 {
		t.Errorf("create=%d update=%d", env.client.Calls("create"), env.client.Calls("update"))
	}

	for _, w := range wrestlers(t, env.store) {
		if w.ExternalID == "" || w.LastSync.IsZero() {
			t.Errorf("wrestler %s not linked after push: %+v", w.Name, w.Base)
		}
	}
	for _, p := range env.client.Pages(dbID(models.KindWrestler)) {
		if notion.Name(p) == "Rob Van Dam" {
			if fans, ok := notion.Int(p, dto.PropFans); !ok || fans != 90 {
				t.Errorf("pushed fans = %d, %v", fans, ok)
			}
		}
	}
}

func TestOutbound_FailsWhenAnyEntityFails(t *testing.T) {
	env := newTestEnv(t, nil)
	wr := repo(env.store, models.KindWrestler, func() *models.Wrestler { return &models.Wrestler{} })
	if err := wr.Save(context.Background(), &models.Wrestler{Base: models.Base{Name: "Ghost", ExternalID: "missing"}}); err != nil {
		t.Fatal(err)
	}

	r := env.sync(t, models.KindWrestler, Outbound)
	if r.Success || r.ErrorCount != 1 {
		t.Errorf("result = %+v, want failure with 1 error", r)
	}
}
