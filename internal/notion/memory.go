// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package notion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryClient is an in-process Client holding pages in maps. It backs the
// sync engine and API tests. Failures can be injected per page or per
// database.
type MemoryClient struct {
	mu        sync.Mutex
	databases map[string][]string
	pages     map[string]*Page
	content   map[string]string
	getErrs   map[string]error
	listErrs  map[string]error
	calls     map[string]int
}

// NewMemoryClient creates an empty in-memory workspace.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		databases: make(map[string][]string),
		pages:     make(map[string]*Page),
		content:   make(map[string]string),
		getErrs:   make(map[string]error),
		listErrs:  make(map[string]error),
		calls:     make(map[string]int),
	}
}

// AddPage stores page in databaseID, replacing any page with the same id.
func (m *MemoryClient) AddPage(databaseID string, page *Page) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.pages[page.ID]; !exists {
		m.databases[databaseID] = append(m.databases[databaseID], page.ID)
	}
	m.pages[page.ID] = copyPage(page)
}

// SetContent sets the body text returned by GetPageContent.
func (m *MemoryClient) SetContent(pageID, content string) {
	m.mu.Lock()
	m.content[pageID] = content
	m.mu.Unlock()
}

// FailGetPage makes GetPage and GetPageContent for pageID return err.
// A nil err clears the failure.
func (m *MemoryClient) FailGetPage(pageID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.getErrs, pageID)
		return
	}
	m.getErrs[pageID] = err
}

// FailList makes ListPageIDs for databaseID return err.
func (m *MemoryClient) FailList(databaseID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.listErrs, databaseID)
		return
	}
	m.listErrs[databaseID] = err
}

// Calls returns how many times op ("list", "get", "content", "create",
// "update") was invoked.
func (m *MemoryClient) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Pages returns copies of every page in databaseID in insertion order.
func (m *MemoryClient) Pages(databaseID string) []*Page {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.databases[databaseID]
	out := make([]*Page, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyPage(m.pages[id]))
	}
	return out
}

func (m *MemoryClient) ListPageIDs(ctx context.Context, databaseID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["list"]++
	if err := m.listErrs[databaseID]; err != nil {
		return nil, err
	}
	return append([]string(nil), m.databases[databaseID]...), nil
}

func (m *MemoryClient) GetPage(ctx context.Context, pageID string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["get"]++
	if err := m.getErrs[pageID]; err != nil {
		return nil, err
	}
	page, ok := m.pages[pageID]
	if !ok {
		return nil, &APIError{Status: 404, Code: "object_not_found", Message: fmt.Sprintf("Could not find page with ID: %s.", pageID)}
	}
	return copyPage(page), nil
}

func (m *MemoryClient) GetPageContent(ctx context.Context, pageID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["content"]++
	if err := m.getErrs[pageID]; err != nil {
		return "", err
	}
	return CleanContent(m.content[pageID]), nil
}

func (m *MemoryClient) CreatePage(ctx context.Context, databaseID string, props map[string]Property) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["create"]++
	if err := m.listErrs[databaseID]; err != nil {
		return "", err
	}
	id := uuid.NewString()
	now := time.Now().UTC()
	page := NewPage(id, copyProps(props))
	page.CreatedTime, page.LastEditedTime = now, now
	m.pages[id] = page
	m.databases[databaseID] = append(m.databases[databaseID], id)
	return id, nil
}

func (m *MemoryClient) UpdatePage(ctx context.Context, pageID string, props map[string]Property) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["update"]++
	if err := m.getErrs[pageID]; err != nil {
		return err
	}
	page, ok := m.pages[pageID]
	if !ok {
		return &APIError{Status: 404, Code: "object_not_found", Message: "page not found"}
	}
	for k, v := range props {
		page.Properties[k] = v
	}
	page.LastEditedTime = time.Now().UTC()
	return nil
}

func copyPage(p *Page) *Page {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Properties = copyProps(p.Properties)
	return &cp
}

func copyProps(props map[string]Property) map[string]Property {
	out := make(map[string]Property, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

var _ Client = (*MemoryClient)(nil)
