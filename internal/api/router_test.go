// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gorillaws "github.com/gorilla/websocket"

	"github.com/tomtom215/atwsync/internal/config"
	"github.com/tomtom215/atwsync/internal/database"
	"github.com/tomtom215/atwsync/internal/dto"
	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/models"
	"github.com/tomtom215/atwsync/internal/narration"
	"github.com/tomtom215/atwsync/internal/notion"
	"github.com/tomtom215/atwsync/internal/progress"
	atwsync "github.com/tomtom215/atwsync/internal/sync"
	"github.com/tomtom215/atwsync/internal/websocket"
)

//nolint:gochecknoinits // quiet logs for tests
func init() {
	logging.Init(logging.Config{Level: "error", Format: "console", Output: io.Discard})
}

type testAPI struct {
	client  *notion.MemoryClient
	store   *database.MemoryStore
	manager *atwsync.Manager
	history *progress.MemoryHistory
	router  *Router
	handler http.Handler
}

func newTestAPI(t *testing.T, server config.ServerConfig, hub *websocket.Hub) *testAPI {
	t.Helper()
	databases := make(map[string]string, len(models.AllKinds))
	for _, k := range models.AllKinds {
		databases[string(k)] = "db-" + string(k)
	}

	client := notion.NewMemoryClient()
	store := database.NewMemoryStore()
	tracker := progress.NewTracker()
	if hub != nil {
		tracker.AddListener(hub)
	}
	manager := atwsync.NewManager(atwsync.Options{
		Config: config.SyncConfig{
			Enabled:          true,
			BatchSize:        5,
			DisabledEntities: []string{string(models.KindInjury)},
		},
		Databases: databases,
		Client:    client,
		Store:     store,
		Tracker:   tracker,
	})
	t.Cleanup(func() { _ = manager.Close() })

	history := progress.NewMemoryHistory()
	router := NewRouter(Deps{Manager: manager, Hub: hub, History: history, Server: server})
	return &testAPI{client: client, store: store, manager: manager, history: history, router: router, handler: router.Handler()}
}

func (a *testAPI) do(t *testing.T, method, path string) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	var body models.APIResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return rec, body
}

// dataField decodes one field of an APIResponse data object.
func dataField(t *testing.T, body models.APIResponse, key string) any {
	t.Helper()
	m, ok := body.Data.(map[string]any)
	if !ok {
		t.Fatalf("data is %T, want object", body.Data)
	}
	return m[key]
}

func waitDone(t *testing.T, a *testAPI, op string) progress.SyncProgress {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if p, ok := a.manager.Tracker().Get(op); ok && p.Done() {
			return p
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("operation %s did not finish", op)
	return progress.SyncProgress{}
}

func TestTriggerSync(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantCode   string
	}{
		{"inbound default", "/api/v1/sync/wrestler", http.StatusAccepted, ""},
		{"outbound", "/api/v1/sync/show?direction=outbound", http.StatusAccepted, ""},
		{"unknown kind", "/api/v1/sync/match", http.StatusBadRequest, ErrCodeValidation},
		{"bad direction", "/api/v1/sync/wrestler?direction=sideways", http.StatusBadRequest, ErrCodeValidation},
		{"disabled kind", "/api/v1/sync/injury", http.StatusConflict, ErrCodeEntityDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAPI(t, config.ServerConfig{}, nil)
			rec, body := a.do(t, http.MethodPost, tt.path)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" {
				if body.Error == nil || body.Error.Code != tt.wantCode {
					t.Errorf("error = %+v, want code %s", body.Error, tt.wantCode)
				}
				return
			}
			if body.Status != "success" {
				t.Errorf("status field = %q", body.Status)
			}
			op, _ := dataField(t, body, "operation_id").(string)
			if op == "" {
				t.Fatal("operation_id missing")
			}
			waitDone(t, a, op)
		})
	}
}

func TestTriggerSync_ThenStatus(t *testing.T) {
	a := newTestAPI(t, config.ServerConfig{}, nil)
	a.client.AddPage("db-wrestler", notion.NewPage("w1", map[string]notion.Property{
		dto.PropName: notion.Title{Text: "Rob Van Dam"},
	}))

	_, body := a.do(t, http.MethodPost, "/api/v1/sync/wrestler?direction=inbound")
	op := dataField(t, body, "operation_id").(string)
	final := waitDone(t, a, op)
	if final.Status != progress.StatusCompleted {
		t.Fatalf("final status = %s (%s)", final.Status, final.Message)
	}

	rec, body := a.do(t, http.MethodGet, "/api/v1/sync/status/"+op)
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}
	if got := dataField(t, body, "status"); got != string(progress.StatusCompleted) {
		t.Errorf("status = %v", got)
	}
}

func TestSyncStatus_FallsBackToHistory(t *testing.T) {
	a := newTestAPI(t, config.ServerConfig{}, nil)
	_ = a.history.Save(context.Background(), progress.SyncProgress{OperationID: "old-op", Status: progress.StatusFailed})

	rec, body := a.do(t, http.MethodGet, "/api/v1/sync/status/old-op")
	if rec.Code != http.StatusOK || dataField(t, body, "status") != string(progress.StatusFailed) {
		t.Errorf("history lookup = %d %s", rec.Code, rec.Body.String())
	}

	rec, body = a.do(t, http.MethodGet, "/api/v1/sync/status/missing")
	if rec.Code != http.StatusNotFound || body.Error == nil || body.Error.Code != ErrCodeNotFound {
		t.Errorf("missing lookup = %d %s", rec.Code, rec.Body.String())
	}
}

func TestTriggerSyncAll(t *testing.T) {
	a := newTestAPI(t, config.ServerConfig{}, nil)
	rec, body := a.do(t, http.MethodPost, "/api/v1/sync")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	op := dataField(t, body, "operation_id").(string)
	final := waitDone(t, a, op)
	if final.Label != "Full Sync" {
		t.Errorf("label = %q", final.Label)
	}
}

func TestOperationsAndEntities(t *testing.T) {
	a := newTestAPI(t, config.ServerConfig{}, nil)

	rec, body := a.do(t, http.MethodGet, "/api/v1/sync/operations")
	if rec.Code != http.StatusOK {
		t.Fatalf("operations status = %d", rec.Code)
	}
	if ops, ok := body.Data.([]any); !ok || len(ops) != 0 {
		t.Errorf("operations = %#v, want empty list", body.Data)
	}

	_, body = a.do(t, http.MethodGet, "/api/v1/sync/entities")
	kinds, _ := body.Data.([]any)
	if len(kinds) != len(models.AllKinds)-1 {
		t.Errorf("entities = %v, want all but injury", kinds)
	}
	for _, k := range kinds {
		if k == string(models.KindInjury) {
			t.Error("disabled kind listed")
		}
	}
}

func TestHealth(t *testing.T) {
	a := newTestAPI(t, config.ServerConfig{}, nil)
	rec, _ := a.do(t, http.MethodGet, "/api/v1/sync/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthy status = %d", rec.Code)
	}

	for i := 0; i < 3; i++ {
		a.manager.Health().RecordFailure("wrestler", atwsync.Inbound, "boom")
	}
	rec, body := a.do(t, http.MethodGet, "/api/v1/sync/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("down status = %d", rec.Code)
	}
	if got := dataField(t, body, "status"); got != string(atwsync.HealthDown) {
		t.Errorf("report status = %v", got)
	}
}

func TestIntegrity(t *testing.T) {
	a := newTestAPI(t, config.ServerConfig{}, nil)
	rec, body := a.do(t, http.MethodGet, "/api/v1/sync/integrity")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := dataField(t, body, "valid"); got != true {
		t.Errorf("empty store valid = %v", got)
	}

	shows := database.NewRepository(a.store, models.KindShow, func() *models.Show { return &models.Show{} })
	if err := shows.Save(context.Background(), &models.Show{Base: models.Base{ExternalID: "s1", Name: "Monday Night Mayhem"}}); err != nil {
		t.Fatal(err)
	}
	rec, body = a.do(t, http.MethodGet, "/api/v1/sync/integrity")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := dataField(t, body, "valid"); got != false {
		t.Errorf("valid = %v, want false for a show without a type", got)
	}
	errs, _ := dataField(t, body, "errors").([]any)
	if len(errs) != 1 {
		t.Errorf("errors = %v, want one", errs)
	}
}

type fakeProviders []narration.ProviderInfo

func (f fakeProviders) Providers() []narration.ProviderInfo { return f }

func TestNarrationProviders(t *testing.T) {
	a := newTestAPI(t, config.ServerConfig{}, nil)
	a.router.deps.Narration = fakeProviders{{Name: "gemini", Priority: 1}, {Name: "claude", Priority: 2}}
	a.handler = a.router.Handler()

	_, body := a.do(t, http.MethodGet, "/api/v1/narration/providers")
	list, _ := body.Data.([]any)
	if len(list) != 2 {
		t.Fatalf("providers = %#v", body.Data)
	}
	if first := list[0].(map[string]any)["name"]; first != "gemini" {
		t.Errorf("first provider = %v", first)
	}
}

func TestRateLimitTriggers(t *testing.T) {
	a := newTestAPI(t, config.ServerConfig{RateLimitRequests: 2, RateLimitWindow: time.Minute}, nil)
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec, _ := a.do(t, http.MethodPost, "/api/v1/sync/title")
		codes = append(codes, rec.Code)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want third request limited", codes)
	}
	// status reads are not limited
	rec, _ := a.do(t, http.MethodGet, "/api/v1/sync/operations")
	if rec.Code != http.StatusOK {
		t.Errorf("operations after limit = %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	a := newTestAPI(t, config.ServerConfig{}, nil)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "atwsync_") {
		t.Errorf("/metrics = %d", rec.Code)
	}
}

func TestWebSocket_StreamsProgress(t *testing.T) {
	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = hub.Serve(ctx) }()

	a := newTestAPI(t, config.ServerConfig{CORSOrigins: []string{"http://localhost:3000"}}, hub)
	srv := httptest.NewServer(a.handler)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"

	if _, resp, err := gorillaws.DefaultDialer.Dial(wsURL, nil); err == nil {
		t.Fatal("dial without Origin should fail")
	} else if resp != nil && resp.StatusCode != http.StatusForbidden {
		t.Errorf("status without Origin = %d", resp.StatusCode)
	}

	header := http.Header{"Origin": []string{"http://localhost:3000"}}
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	_, body := a.do(t, http.MethodPost, "/api/v1/sync/season")
	op := dataField(t, body, "operation_id").(string)

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg struct {
			Type string                `json:"type"`
			Data progress.SyncProgress `json:"data"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		if msg.Type == websocket.MessageTypeSyncCompleted && msg.Data.OperationID == op {
			return
		}
	}
}
