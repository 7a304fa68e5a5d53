// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package notion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/atwsync/internal/ratelimit"
	"github.com/tomtom215/atwsync/internal/resilience"
)

// flakyClient fails GetPage a fixed number of times before delegating.
type flakyClient struct {
	*MemoryClient
	failures int
	err      error
	attempts int
}

func (f *flakyClient) GetPage(ctx context.Context, id string) (*Page, error) {
	f.attempts++
	if f.attempts <= f.failures {
		return nil, f.err
	}
	return f.MemoryClient.GetPage(ctx, id)
}

func fastPolicies() []resilience.RetryPolicy {
	return resilience.DefaultPolicies(3, time.Millisecond, 2*time.Millisecond)
}

func TestResilientClient_RetriesTransientFailures(t *testing.T) {
	mem := NewMemoryClient()
	mem.AddPage("db", NewPage("p1", map[string]Property{"Name": Title{Text: "Kurt Angle"}}))
	inner := &flakyClient{MemoryClient: mem, failures: 2, err: &APIError{Status: 503, Message: "busy"}}

	rc := NewResilientClient(inner, ratelimit.Unlimited(), fastPolicies(), resilience.NewBreakers(resilience.BreakerSettings{FailureThreshold: 5, OpenTimeout: time.Hour}))

	page, err := rc.GetPage(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if Name(page) != "Kurt Angle" || inner.attempts != 3 {
		t.Errorf("got %q after %d attempts", Name(page), inner.attempts)
	}
}

func TestResilientClient_NotFoundIsNotRetried(t *testing.T) {
	mem := NewMemoryClient()
	inner := &flakyClient{MemoryClient: mem}
	rc := NewResilientClient(inner, nil, fastPolicies(), nil)

	_, err := rc.GetPage(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Fatalf("expected 404, got %v", err)
	}
	if inner.attempts != 1 {
		t.Errorf("attempts = %d, want 1", inner.attempts)
	}
	if state := rc.Breakers().State(OpGetPage); state != "closed" {
		t.Errorf("breaker = %s, want closed", state)
	}
}

func TestResilientClient_BreakerOpensAfterExhaustedRetries(t *testing.T) {
	mem := NewMemoryClient()
	inner := &flakyClient{MemoryClient: mem, failures: 1000, err: &APIError{Status: 502, Message: "bad gateway"}}
	breakers := resilience.NewBreakers(resilience.BreakerSettings{FailureThreshold: 2, OpenTimeout: time.Hour})
	policies := []resilience.RetryPolicy{resilience.ServerErrorPolicy(1, time.Millisecond, time.Millisecond)}
	rc := NewResilientClient(inner, nil, policies, breakers)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := rc.GetPage(ctx, "p1"); !errors.Is(err, resilience.ErrServiceUnavailable) {
			t.Fatalf("call %d: expected ErrServiceUnavailable, got %v", i, err)
		}
	}
	before := inner.attempts

	_, err := rc.GetPage(ctx, "p1")
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if inner.attempts != before {
		t.Error("open breaker must not reach the inner client")
	}

	// Other operation classes keep working.
	if _, err := rc.ListPageIDs(ctx, "db"); err != nil {
		t.Errorf("ListPageIDs with a closed breaker: %v", err)
	}
}

func TestMemoryClient_CreateUpdate(t *testing.T) {
	mem := NewMemoryClient()
	ctx := context.Background()

	id, err := mem.CreatePage(ctx, "db", map[string]Property{"Name": Title{Text: "Lita"}})
	if err != nil || id == "" {
		t.Fatalf("CreatePage = %q, %v", id, err)
	}
	if err := mem.UpdatePage(ctx, id, map[string]Property{"Fans": NumberOf(5)}); err != nil {
		t.Fatal(err)
	}
	page, err := mem.GetPage(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if Name(page) != "Lita" {
		t.Errorf("name = %q", Name(page))
	}
	if v, _ := Int(page, "Fans"); v != 5 {
		t.Errorf("fans = %d", v)
	}
	if mem.Calls("create") != 1 || mem.Calls("update") != 1 {
		t.Errorf("calls create=%d update=%d", mem.Calls("create"), mem.Calls("update"))
	}
	if err := mem.UpdatePage(ctx, "nope", nil); !IsNotFound(err) {
		t.Errorf("update missing page = %v", err)
	}
}
