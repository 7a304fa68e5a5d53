// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingCloser struct {
	name  string
	err   error
	mu    *sync.Mutex
	order *[]string
}

func (r recordingCloser) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.order = append(*r.order, r.name)
	return r.err
}

func TestCloserService_ClosesInReverseOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string
	mk := func(name string, err error) NamedCloser {
		return NamedCloser{Name: name, Closer: recordingCloser{name: name, err: err, mu: &mu, order: &order}}
	}

	boom := errors.New("boom")
	svc := NewCloserService("resources",
		mk("store", nil),
		mk("history", boom),
		mk("manager", nil),
		NamedCloser{Name: "absent"},
	)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(10 * time.Millisecond)
	mu.Lock()
	if len(order) != 0 {
		t.Fatalf("closed before shutdown: %v", order)
	}
	mu.Unlock()

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, boom) {
			t.Errorf("Serve() error = %v, want joined %v", err, boom)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return")
	}

	want := []string{"manager", "history", "store"}
	mu.Lock()
	defer mu.Unlock()
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}

	// second Close is a no-op returning the first result
	if err := svc.Close(); !errors.Is(err, boom) {
		t.Errorf("second Close() = %v", err)
	}
	if len(order) != len(want) {
		t.Errorf("closers ran twice: %v", order)
	}
	if svc.String() != "resources" {
		t.Errorf("String() = %q", svc.String())
	}
}
