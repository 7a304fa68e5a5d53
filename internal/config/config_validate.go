// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that configuration values are usable.
// A missing Notion token is not an error here: the sync manager reports
// ErrRemoteNotConfigured per operation so the API can still serve status.
func (c *Config) Validate() error {
	if err := c.validateNotion(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateResilience(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateNotion() error {
	u, err := url.Parse(c.Notion.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("NOTION_BASE_URL must be an absolute URL, got %q", c.Notion.BaseURL)
	}
	if c.Notion.PageSize < 1 || c.Notion.PageSize > 100 {
		return fmt.Errorf("NOTION_PAGE_SIZE must be between 1 and 100, got %d", c.Notion.PageSize)
	}
	if c.Notion.Timeout <= 0 {
		return fmt.Errorf("NOTION_TIMEOUT must be positive, got %v", c.Notion.Timeout)
	}
	for kind, id := range c.Notion.Databases {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("notion database id for %q is empty", kind)
		}
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.BatchSize < 1 {
		return fmt.Errorf("SYNC_BATCH_SIZE must be at least 1, got %d", c.Sync.BatchSize)
	}
	if c.Sync.ItemTimeout <= 0 {
		return fmt.Errorf("SYNC_ITEM_TIMEOUT must be positive, got %v", c.Sync.ItemTimeout)
	}
	if c.Sync.BatchPause < 0 {
		return fmt.Errorf("SYNC_BATCH_PAUSE must not be negative, got %v", c.Sync.BatchPause)
	}
	if c.Sync.MaxParallelKinds < 1 {
		return fmt.Errorf("SYNC_MAX_PARALLEL_KINDS must be at least 1, got %d", c.Sync.MaxParallelKinds)
	}
	if c.Sync.SchedulerEnabled && c.Sync.SchedulerInterval <= 0 {
		return fmt.Errorf("SYNC_SCHEDULER_INTERVAL must be positive when the scheduler is enabled")
	}
	return nil
}

func (c *Config) validateResilience() error {
	if c.RateLimit.RequestsPerMinute < 1 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be at least 1, got %d", c.RateLimit.RequestsPerMinute)
	}
	if c.RateLimit.RequestsPerHour < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_HOUR must not be negative, got %d", c.RateLimit.RequestsPerHour)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("RETRY_MAX_RETRIES must not be negative, got %d", c.Retry.MaxRetries)
	}
	if c.Retry.MaxDelay < c.Retry.BaseDelay {
		return fmt.Errorf("RETRY_MAX_DELAY (%v) must be >= RETRY_BASE_DELAY (%v)", c.Retry.MaxDelay, c.Retry.BaseDelay)
	}
	if c.CircuitBreaker.FailureThreshold == 0 {
		return fmt.Errorf("CIRCUIT_BREAKER_FAILURE_THRESHOLD must be at least 1")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 1 {
		return fmt.Errorf("DUCKDB_THREADS must be at least 1, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimitRequests < 1 {
		return fmt.Errorf("API_RATE_LIMIT must be at least 1, got %d", c.Server.RateLimitRequests)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
