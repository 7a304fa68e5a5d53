// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package notion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/atwsync/internal/config"
	"github.com/tomtom215/atwsync/internal/metrics"
)

// DefaultVersion is the Notion-Version header sent with every request.
const DefaultVersion = "2022-06-28"

// maxErrorBodySize bounds how much of an error response is read.
const maxErrorBodySize = 64 * 1024

// ErrRemoteNotConfigured is returned when no Notion token is configured.
var ErrRemoteNotConfigured = errors.New("notion client not configured")

// Client is the remote document API used by the sync engine.
// Implementations must be safe for concurrent use.
type Client interface {
	// ListPageIDs returns the ids of every page in a database.
	ListPageIDs(ctx context.Context, databaseID string) ([]string, error)
	// GetPage returns one page with its properties.
	GetPage(ctx context.Context, pageID string) (*Page, error)
	// GetPageContent returns the page body as plain text.
	GetPageContent(ctx context.Context, pageID string) (string, error)
	// CreatePage creates a page in a database and returns its id.
	CreatePage(ctx context.Context, databaseID string, props map[string]Property) (string, error)
	// UpdatePage overwrites the given properties of a page.
	UpdatePage(ctx context.Context, pageID string, props map[string]Property) error
}

// APIError is a non-2xx response from the Notion API.
type APIError struct {
	Status  int
	Code    string
	Message string
	// Wait is the server's Retry-After hint, zero when absent.
	Wait time.Duration
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("notion: HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("notion: HTTP %d %s: %s", e.Status, e.Code, e.Message)
}

// StatusCode lets the retry predicates classify the error.
func (e *APIError) StatusCode() int { return e.Status }

// RetryAfter lets the rate-limit policy honor the server's hint.
func (e *APIError) RetryAfter() time.Duration { return e.Wait }

// ErrorType labels the error for sync metrics.
func (e *APIError) ErrorType() string { return "remote" }

// IsNotFound reports a 404 from the Notion API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// HTTPClient talks to the Notion REST API.
type HTTPClient struct {
	baseURL  string
	token    string
	version  string
	pageSize int
	client   *http.Client
}

// NewHTTPClient creates a client from configuration.
func NewHTTPClient(cfg config.NotionConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	version := cfg.Version
	if version == "" {
		version = DefaultVersion
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}
	return &HTTPClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		token:    cfg.Token,
		version:  version,
		pageSize: pageSize,
		client:   &http.Client{Timeout: timeout},
	}
}

type queryRequest struct {
	PageSize    int    `json:"page_size"`
	StartCursor string `json:"start_cursor,omitempty"`
}

type queryResponse struct {
	Results []struct {
		ID       string `json:"id"`
		Archived bool   `json:"archived"`
	} `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// ListPageIDs pages through /v1/databases/{id}/query. Archived pages are skipped.
func (c *HTTPClient) ListPageIDs(ctx context.Context, databaseID string) ([]string, error) {
	var ids []string
	cursor := ""
	for {
		var resp queryResponse
		body := queryRequest{PageSize: c.pageSize, StartCursor: cursor}
		if err := c.do(ctx, "query", http.MethodPost, "/v1/databases/"+databaseID+"/query", body, &resp); err != nil {
			return nil, fmt.Errorf("query database %s: %w", databaseID, err)
		}
		for _, r := range resp.Results {
			if !r.Archived {
				ids = append(ids, r.ID)
			}
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return ids, nil
		}
		cursor = resp.NextCursor
	}
}

// GetPage retrieves /v1/pages/{id}.
func (c *HTTPClient) GetPage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	if err := c.do(ctx, "get_page", http.MethodGet, "/v1/pages/"+pageID, nil, &page); err != nil {
		return nil, fmt.Errorf("get page %s: %w", pageID, err)
	}
	return &page, nil
}

type blockText struct {
	RichText []wireText `json:"rich_text"`
}

type block struct {
	Type             string     `json:"type"`
	Paragraph        *blockText `json:"paragraph"`
	Heading1         *blockText `json:"heading_1"`
	Heading2         *blockText `json:"heading_2"`
	Heading3         *blockText `json:"heading_3"`
	BulletedListItem *blockText `json:"bulleted_list_item"`
	NumberedListItem *blockText `json:"numbered_list_item"`
	Quote            *blockText `json:"quote"`
	Callout          *blockText `json:"callout"`
	ToDo             *blockText `json:"to_do"`
}

func (b block) text() (string, bool) {
	var t *blockText
	prefix := ""
	switch b.Type {
	case "paragraph":
		t = b.Paragraph
	case "heading_1":
		t, prefix = b.Heading1, "# "
	case "heading_2":
		t, prefix = b.Heading2, "## "
	case "heading_3":
		t, prefix = b.Heading3, "### "
	case "bulleted_list_item":
		t, prefix = b.BulletedListItem, "- "
	case "numbered_list_item":
		t, prefix = b.NumberedListItem, "1. "
	case "quote":
		t, prefix = b.Quote, "> "
	case "callout":
		t = b.Callout
	case "to_do":
		t, prefix = b.ToDo, "- [ ] "
	}
	if t == nil {
		return "", false
	}
	return prefix + joinText(t.RichText), true
}

type blocksResponse struct {
	Results    []block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor string  `json:"next_cursor"`
}

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// GetPageContent reads the top-level text blocks of a page and joins them
// with newlines. Runs of three or more newlines collapse to one blank line.
func (c *HTTPClient) GetPageContent(ctx context.Context, pageID string) (string, error) {
	var lines []string
	cursor := ""
	for {
		path := "/v1/blocks/" + pageID + "/children?page_size=" + strconv.Itoa(c.pageSize)
		if cursor != "" {
			path += "&start_cursor=" + cursor
		}
		var resp blocksResponse
		if err := c.do(ctx, "get_content", http.MethodGet, path, nil, &resp); err != nil {
			return "", fmt.Errorf("get content %s: %w", pageID, err)
		}
		for _, b := range resp.Results {
			if text, ok := b.text(); ok {
				lines = append(lines, text)
			}
		}
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	return CleanContent(strings.Join(lines, "\n")), nil
}

// CleanContent trims page body text and collapses blank line runs.
func CleanContent(s string) string {
	return strings.TrimSpace(excessNewlines.ReplaceAllString(s, "\n\n"))
}

type createRequest struct {
	Parent     map[string]string `json:"parent"`
	Properties map[string]any    `json:"properties"`
}

type updateRequest struct {
	Properties map[string]any `json:"properties"`
}

type pageRef struct {
	ID string `json:"id"`
}

// CreatePage posts /v1/pages under the given database.
func (c *HTTPClient) CreatePage(ctx context.Context, databaseID string, props map[string]Property) (string, error) {
	body := createRequest{
		Parent:     map[string]string{"database_id": databaseID},
		Properties: EncodeProperties(props),
	}
	var ref pageRef
	if err := c.do(ctx, "create_page", http.MethodPost, "/v1/pages", body, &ref); err != nil {
		return "", fmt.Errorf("create page in %s: %w", databaseID, err)
	}
	return ref.ID, nil
}

// UpdatePage patches /v1/pages/{id}.
func (c *HTTPClient) UpdatePage(ctx context.Context, pageID string, props map[string]Property) error {
	body := updateRequest{Properties: EncodeProperties(props)}
	if err := c.do(ctx, "update_page", http.MethodPatch, "/v1/pages/"+pageID, body, nil); err != nil {
		return fmt.Errorf("update page %s: %w", pageID, err)
	}
	return nil
}

type errorBody struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// do sends one request and decodes a 2xx body into out (when non-nil).
func (c *HTTPClient) do(ctx context.Context, operation, method, path string, in, out any) error {
	if c.token == "" {
		return ErrRemoteNotConfigured
	}

	var body io.Reader = http.NoBody
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordRemoteRequest(operation, "error", time.Since(start))
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.RecordRemoteRequest(operation, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	apiErr := &APIError{
		Status:  resp.StatusCode,
		Message: http.StatusText(resp.StatusCode),
		Wait:    parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
	}

	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil && eb.Object == "error" {
		apiErr.Code = eb.Code
		if eb.Message != "" {
			apiErr.Message = eb.Message
		}
	} else if len(raw) > 0 {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

// parseRetryAfter reads a Retry-After header given in seconds or as an
// HTTP date (RFC 9110).
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}
