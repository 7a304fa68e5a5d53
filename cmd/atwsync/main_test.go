// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/atwsync/internal/config"
	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/models"
	atwsync "github.com/tomtom215/atwsync/internal/sync"
)

//nolint:gochecknoinits // quiet logs for tests
func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

func dryRunConfig() *config.Config {
	return &config.Config{
		Notion: config.NotionConfig{BaseURL: "https://api.notion.com/v1", PageSize: 100, Timeout: time.Second},
		Sync:   config.SyncConfig{Enabled: true, BatchSize: 5, MaxParallelKinds: 2},
		State:  config.StateConfig{HistoryEnabled: true},
		RateLimit: config.RateLimitConfig{
			RequestsPerMinute: 60,
			RequestsPerHour:   1000,
		},
	}
}

func TestNewApp_DryRunWithoutToken(t *testing.T) {
	a, err := newApp(context.Background(), dryRunConfig(), appOptions{dryRun: true})
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	defer func() { _ = a.Close() }()

	if a.history == nil {
		t.Error("history should default to memory when enabled without a path")
	}
	if a.narration != nil {
		t.Error("narration should stay off")
	}
	if got := a.manager.Health().Check(); got.Up() {
		t.Errorf("health without token = %+v, want DOWN", got)
	}

	results, err := runSync(context.Background(), a.manager, models.KindWrestler, false, atwsync.Inbound)
	if err != nil {
		t.Fatalf("runSync() error = %v", err)
	}
	if len(results) != 1 || results[0].Success {
		t.Fatalf("results = %+v, want one not-configured failure", results)
	}
	if !errors.Is(results[0].Err(), atwsync.ErrRemoteNotConfigured) {
		t.Errorf("error = %v", results[0].Err())
	}
}

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	err := printResults(&buf, []atwsync.SyncResult{atwsync.Success("Wrestlers", 2, 1, 0)})
	if err != nil {
		t.Fatalf("printResults() error = %v", err)
	}
	var decoded []atwsync.SyncResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if decoded[0].CreatedCount != 2 || decoded[0].UpdatedCount != 1 {
		t.Errorf("decoded = %+v", decoded[0])
	}
}

func TestFetchStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    models.APIResponse
		wantErr string
		wantOut string
	}{
		{
			name:    "progress",
			status:  http.StatusOK,
			body:    models.APIResponse{Status: "success", Data: map[string]any{"status": "COMPLETED"}},
			wantOut: "COMPLETED",
		},
		{
			name:    "not found",
			status:  http.StatusNotFound,
			body:    models.APIResponse{Status: "error", Error: &models.APIError{Code: "NOT_FOUND", Message: "operation x not found"}},
			wantErr: "NOT_FOUND",
		},
		{
			name:    "health down",
			status:  http.StatusServiceUnavailable,
			body:    models.APIResponse{Status: "success", Data: map[string]any{"status": "DOWN"}},
			wantErr: "DOWN",
			wantOut: "DOWN",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(tt.body)
			}))
			defer srv.Close()

			var out bytes.Buffer
			err := fetchStatus(context.Background(), &out, srv.URL+"/api/v1/sync/health")
			if tt.wantErr == "" && err != nil {
				t.Fatalf("fetchStatus() error = %v", err)
			}
			if tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)) {
				t.Fatalf("fetchStatus() error = %v, want %q", err, tt.wantErr)
			}
			if !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("output = %q, want %q", out.String(), tt.wantOut)
			}
		})
	}
}

func TestSyncCmd_RejectsBadArgs(t *testing.T) {
	for _, args := range [][]string{{"match"}, {"wrestler", "--direction", "sideways"}} {
		cmd := newSyncCmd(&rootOptions{cfg: dryRunConfig()})
		cmd.SetArgs(args)
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		if err := cmd.Execute(); err == nil {
			t.Errorf("args %v: expected error", args)
		}
	}
}
