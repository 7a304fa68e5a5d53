// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package notion

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/atwsync/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPClient(config.NotionConfig{
		Token:    "secret_test",
		BaseURL:  server.URL,
		Timeout:  5 * time.Second,
		PageSize: 2,
	})
}

func TestHTTPClient_ListPageIDsPaginates(t *testing.T) {
	var mu sync.Mutex
	var cursors []string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/databases/db-1/query" {
			http.Error(w, "unexpected route", http.StatusBadRequest)
			return
		}
		if got := r.Header.Get("Notion-Version"); got != DefaultVersion {
			t.Errorf("Notion-Version = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret_test" {
			t.Errorf("Authorization = %q", got)
		}

		var body queryRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		mu.Lock()
		cursors = append(cursors, body.StartCursor)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if body.StartCursor == "" {
			_, _ = io.WriteString(w, `{"results":[{"id":"p1"},{"id":"p2","archived":true}],"has_more":true,"next_cursor":"c2"}`)
			return
		}
		_, _ = io.WriteString(w, `{"results":[{"id":"p3"}],"has_more":false,"next_cursor":null}`)
	})

	ids, err := client.ListPageIDs(context.Background(), "db-1")
	if err != nil {
		t.Fatalf("ListPageIDs: %v", err)
	}
	if strings.Join(ids, ",") != "p1,p3" {
		t.Errorf("ids = %v, want [p1 p3]", ids)
	}
	if len(cursors) != 2 || cursors[1] != "c2" {
		t.Errorf("cursors = %v", cursors)
	}
}

func TestHTTPClient_APIError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
	}{
		{"rate limited", http.StatusTooManyRequests, `{"object":"error","status":429,"code":"rate_limited","message":"slow down"}`, "rate_limited"},
		{"not found", http.StatusNotFound, `{"object":"error","status":404,"code":"object_not_found","message":"gone"}`, "object_not_found"},
		{"plain text", http.StatusBadGateway, `upstream died`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := client.GetPage(context.Background(), "p1")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.StatusCode() != tt.status || apiErr.Code != tt.wantCode {
				t.Errorf("APIError = %+v", apiErr)
			}
		})
	}
}

func TestDecodeAPIError_RetryAfter(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Header:     http.Header{"Retry-After": []string{"7"}},
		Body:       io.NopCloser(strings.NewReader(`{"object":"error","status":429,"code":"rate_limited","message":"slow down"}`)),
	}
	err := decodeAPIError(resp)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if got := apiErr.RetryAfter(); got != 7*time.Second {
		t.Errorf("RetryAfter() = %v, want 7s", got)
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"seconds", "3", 3 * time.Second},
		{"padded", " 2 ", 2 * time.Second},
		{"http date", now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{"past date", now.Add(-time.Minute).Format(http.TimeFormat), 0},
		{"negative", "-4", 0},
		{"garbage", "soon", 0},
		{"absent", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseRetryAfter(tt.value, now); got != tt.want {
				t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestHTTPClient_NotConfigured(t *testing.T) {
	client := NewHTTPClient(config.NotionConfig{BaseURL: "http://127.0.0.1:1"})
	if _, err := client.ListPageIDs(context.Background(), "db"); !errors.Is(err, ErrRemoteNotConfigured) {
		t.Errorf("expected ErrRemoteNotConfigured, got %v", err)
	}
}

func TestHTTPClient_GetPageContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v1/blocks/p1/children") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("start_cursor") == "" {
			_, _ = io.WriteString(w, `{"results":[
				{"type":"heading_2","heading_2":{"rich_text":[{"plain_text":"Finish"}]}},
				{"type":"paragraph","paragraph":{"rich_text":[{"plain_text":"Five Star Frog Splash."}]}},
				{"type":"paragraph","paragraph":{"rich_text":[]}},
				{"type":"paragraph","paragraph":{"rich_text":[]}},
				{"type":"image","image":{}}
			],"has_more":true,"next_cursor":"n2"}`)
			return
		}
		_, _ = io.WriteString(w, `{"results":[{"type":"bulleted_list_item","bulleted_list_item":{"rich_text":[{"plain_text":"pin"}]}}],"has_more":false}`)
	})

	content, err := client.GetPageContent(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetPageContent: %v", err)
	}
	want := "## Finish\nFive Star Frog Splash.\n\n- pin"
	if content != want {
		t.Errorf("content = %q, want %q", content, want)
	}
}

func TestHTTPClient_CreateAndUpdate(t *testing.T) {
	var created map[string]any
	var patched map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/pages":
			_ = json.NewDecoder(r.Body).Decode(&created)
			_, _ = io.WriteString(w, `{"object":"page","id":"new-page"}`)
		case r.Method == http.MethodPatch && r.URL.Path == "/v1/pages/new-page":
			_ = json.NewDecoder(r.Body).Decode(&patched)
			_, _ = io.WriteString(w, `{"object":"page","id":"new-page"}`)
		default:
			http.NotFound(w, r)
		}
	})

	ctx := context.Background()
	id, err := client.CreatePage(ctx, "db-w", map[string]Property{"Name": Title{Text: "Rob Van Dam"}})
	if err != nil || id != "new-page" {
		t.Fatalf("CreatePage = %q, %v", id, err)
	}
	parent, _ := created["parent"].(map[string]any)
	if parent["database_id"] != "db-w" {
		t.Errorf("parent = %v", created["parent"])
	}

	if err := client.UpdatePage(ctx, "new-page", map[string]Property{"Fans": NumberOf(10)}); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}
	props, _ := patched["properties"].(map[string]any)
	if _, ok := props["Fans"]; !ok {
		t.Errorf("patched properties = %v", patched)
	}
}
