// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package config

import (
	"strings"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables (in that order of precedence,
// lowest first).
//
// Configuration Categories:
//
//  1. Remote: Notion credentials, API version and the entity kind to database id map
//  2. Engine: batch size, timeouts, per-entity enable flags, scheduler
//  3. Resilience: rate limits, retry policy, circuit breaker thresholds
//  4. Storage: DuckDB entity store and Badger progress history
//  5. Collaborators: events, narration providers
//  6. Surface: HTTP server and logging
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return fmt.Errorf("load config: %w", err)
//	}
//	limiter := ratelimit.New(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.RequestsPerHour)
type Config struct {
	Notion         NotionConfig         `koanf:"notion"`
	Sync           SyncConfig           `koanf:"sync"`
	RateLimit      RateLimitConfig      `koanf:"rate_limit"`
	Retry          RetryConfig          `koanf:"retry"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
	Database       DatabaseConfig       `koanf:"database"`
	State          StateConfig          `koanf:"state"`
	Events         EventsConfig         `koanf:"events"`
	Narration      NarrationConfig      `koanf:"narration"`
	Server         ServerConfig         `koanf:"server"`
	Logging        LoggingConfig        `koanf:"logging"`
}

// NotionConfig configures the remote document API.
type NotionConfig struct {
	Token   string        `koanf:"token"`
	BaseURL string        `koanf:"base_url"`
	Version string        `koanf:"version"`
	Timeout time.Duration `koanf:"timeout"`
	// PageSize is the page_size sent on database queries (Notion caps it at 100).
	PageSize int `koanf:"page_size"`
	// Databases maps an entity kind ("wrestler", "show_type", ...) to a Notion database id.
	Databases map[string]string `koanf:"databases"`
}

// SyncConfig configures the sync engine.
type SyncConfig struct {
	Enabled          bool          `koanf:"enabled"`
	BatchSize        int           `koanf:"batch_size"`
	ItemTimeout      time.Duration `koanf:"item_timeout"`
	BatchPause       time.Duration `koanf:"batch_pause"`
	MaxParallelKinds int           `koanf:"max_parallel_kinds"`
	ProgressTTL      time.Duration `koanf:"progress_ttl"`
	// DisabledEntities lists entity kinds that must not be synced.
	DisabledEntities []string `koanf:"disabled_entities"`
	// SchedulerEnabled runs a full inbound sync every SchedulerInterval.
	SchedulerEnabled  bool          `koanf:"scheduler_enabled"`
	SchedulerInterval time.Duration `koanf:"scheduler_interval"`
	// StaleAfter marks health as degraded when no sync succeeded for this long.
	StaleAfter time.Duration `koanf:"stale_after"`
	// FailureThreshold marks health as down after this many consecutive failures.
	FailureThreshold int `koanf:"failure_threshold"`
}

// IsEntityEnabled reports whether kind may be synced.
func (s SyncConfig) IsEntityEnabled(kind string) bool {
	if !s.Enabled {
		return false
	}
	for _, disabled := range s.DisabledEntities {
		if strings.EqualFold(strings.TrimSpace(disabled), kind) {
			return false
		}
	}
	return true
}

// RateLimitConfig bounds outbound Notion calls.
type RateLimitConfig struct {
	RequestsPerMinute int `koanf:"requests_per_minute"`
	RequestsPerHour   int `koanf:"requests_per_hour"`
}

// RetryConfig configures both escalating retry policies (rate-limit, then server error).
type RetryConfig struct {
	MaxRetries int           `koanf:"max_retries"`
	BaseDelay  time.Duration `koanf:"base_delay"`
	MaxDelay   time.Duration `koanf:"max_delay"`
}

// CircuitBreakerConfig configures the per-operation-class breakers.
type CircuitBreakerConfig struct {
	FailureThreshold uint32        `koanf:"failure_threshold"`
	OpenTimeout      time.Duration `koanf:"open_timeout"`
	HalfOpenRequests uint32        `koanf:"half_open_requests"`
	Interval         time.Duration `koanf:"interval"`
}

// DatabaseConfig configures the DuckDB entity store.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// StateConfig configures the Badger store for progress history.
// An empty Path keeps history in memory.
type StateConfig struct {
	Path           string        `koanf:"path"`
	HistoryTTL     time.Duration `koanf:"history_ttl"`
	HistoryEnabled bool          `koanf:"history_enabled"`
}

// EventsConfig configures sync event publishing.
// With an empty NATSURL events go to an in-process channel unless Embedded
// starts a local JetStream server.
type EventsConfig struct {
	Enabled     bool   `koanf:"enabled"`
	NATSURL     string `koanf:"nats_url"`
	TopicPrefix string `koanf:"topic_prefix"`
	JetStream   bool   `koanf:"jetstream"`
	// Embedded runs a NATS server in-process; external subscribers
	// connect to EmbeddedHost:EmbeddedPort.
	Embedded     bool   `koanf:"embedded"`
	EmbeddedHost string `koanf:"embedded_host"`
	EmbeddedPort int    `koanf:"embedded_port"`
	// StoreDir holds JetStream data for the embedded server.
	StoreDir string `koanf:"store_dir"`
}

// NarrationConfig configures text generation providers.
// Providers are tried in ascending Priority order; the table replaces
// per-service hardcoded priority switches.
type NarrationConfig struct {
	Enabled           bool          `koanf:"enabled"`
	SummarizeSegments bool          `koanf:"summarize_segments"`
	Timeout           time.Duration `koanf:"timeout"`
	Gemini            ProviderInfo  `koanf:"gemini"`
	Claude            ProviderInfo  `koanf:"claude"`
}

// Providers returns the priority table keyed by provider name.
func (n NarrationConfig) Providers() map[string]ProviderInfo {
	return map[string]ProviderInfo{
		"gemini": n.Gemini,
		"claude": n.Claude,
	}
}

// ProviderInfo is one row of the narration priority table.
type ProviderInfo struct {
	Enabled     bool    `koanf:"enabled"`
	APIKey      string  `koanf:"api_key"`
	Model       string  `koanf:"model"`
	Priority    int     `koanf:"priority"`
	CostPer1K   float64 `koanf:"cost_per_1k"`
	Tier        string  `koanf:"tier"`
	Description string  `koanf:"description"`
	MaxTokens   int     `koanf:"max_tokens"`
}

// ServerConfig configures the HTTP trigger API.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	Timeout           time.Duration `koanf:"timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
	File   string `koanf:"file"`
}

// Load loads configuration from all sources.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
