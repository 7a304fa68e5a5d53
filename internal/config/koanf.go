// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is not set.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/atwsync/config.yaml",
	"/etc/atwsync/config.yml",
}

// ConfigPathEnvVar names the environment variable holding an explicit config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// notionDatabaseEnvPrefix maps NOTION_DB_<KIND> to notion.databases.<kind>.
const notionDatabaseEnvPrefix = "notion_db_"

func defaultConfig() *Config {
	return &Config{
		Notion: NotionConfig{
			BaseURL:  "https://api.notion.com",
			Version:  "2022-06-28",
			Timeout:  30 * time.Second,
			PageSize: 100,
		},
		Sync: SyncConfig{
			Enabled:           true,
			BatchSize:         10,
			ItemTimeout:       2 * time.Minute,
			BatchPause:        500 * time.Millisecond,
			MaxParallelKinds:  4,
			ProgressTTL:       30 * time.Second,
			SchedulerEnabled:  false,
			SchedulerInterval: time.Hour,
			StaleAfter:        24 * time.Hour,
			FailureThreshold:  3,
		},
		RateLimit: RateLimitConfig{
			// Notion allows an average of three requests per second per integration.
			RequestsPerMinute: 150,
			RequestsPerHour:   6000,
		},
		Retry: RetryConfig{
			MaxRetries: 3,
			BaseDelay:  time.Second,
			MaxDelay:   5 * time.Second,
		},
		CircuitBreaker: CircuitBreakerConfig{
			FailureThreshold: 5,
			OpenTimeout:      time.Minute,
			HalfOpenRequests: 1,
			Interval:         time.Minute,
		},
		Database: DatabaseConfig{
			Path:      "/data/atwsync.duckdb",
			MaxMemory: "1GB",
			Threads:   4,
		},
		State: StateConfig{
			Path:           "",
			HistoryEnabled: true,
			HistoryTTL:     7 * 24 * time.Hour,
		},
		Events: EventsConfig{
			Enabled:      true,
			NATSURL:      "",
			TopicPrefix:  "atwsync",
			JetStream:    false,
			Embedded:     false,
			EmbeddedHost: "127.0.0.1",
			EmbeddedPort: 4222,
			StoreDir:     "/data/nats",
		},
		Narration: NarrationConfig{
			Enabled:           false,
			SummarizeSegments: false,
			Timeout:           60 * time.Second,
			Gemini: ProviderInfo{
				Enabled:     true,
				Model:       "gemini-1.5-flash",
				Priority:    1,
				CostPer1K:   0,
				Tier:        "FREE",
				Description: "Free tier: 15 req/min, 1.5K req/day",
				MaxTokens:   1024,
			},
			Claude: ProviderInfo{
				Enabled:     true,
				Model:       "claude-3-5-haiku-latest",
				Priority:    2,
				CostPer1K:   0.25,
				Tier:        "PAID",
				Description: "Haiku: $0.25/1K input, $1.25/1K output",
				MaxTokens:   1024,
			},
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8088,
			Timeout:           30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 60,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in defaults above
//  2. Config File: optional YAML file
//  3. Environment Variables: override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// NOTION_TOKEN -> notion.token, NOTION_DB_WRESTLER -> notion.databases.wrestler
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set via env.
var sliceConfigPaths = []string{
	"sync.disabled_entities",
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercase environment variable names to koanf paths.
var envMappings = map[string]string{
	// Notion
	"notion_token":     "notion.token",
	"notion_base_url":  "notion.base_url",
	"notion_version":   "notion.version",
	"notion_timeout":   "notion.timeout",
	"notion_page_size": "notion.page_size",

	// Sync engine
	"sync_enabled":            "sync.enabled",
	"sync_batch_size":         "sync.batch_size",
	"sync_item_timeout":       "sync.item_timeout",
	"sync_batch_pause":        "sync.batch_pause",
	"sync_max_parallel_kinds": "sync.max_parallel_kinds",
	"sync_progress_ttl":       "sync.progress_ttl",
	"sync_disabled_entities":  "sync.disabled_entities",
	"sync_scheduler_enabled":  "sync.scheduler_enabled",
	"sync_scheduler_interval": "sync.scheduler_interval",
	"sync_stale_after":        "sync.stale_after",
	"sync_failure_threshold":  "sync.failure_threshold",

	// Resilience
	"rate_limit_per_minute":              "rate_limit.requests_per_minute",
	"rate_limit_per_hour":                "rate_limit.requests_per_hour",
	"retry_max_retries":                  "retry.max_retries",
	"retry_base_delay":                   "retry.base_delay",
	"retry_max_delay":                    "retry.max_delay",
	"circuit_breaker_failure_threshold":  "circuit_breaker.failure_threshold",
	"circuit_breaker_open_timeout":       "circuit_breaker.open_timeout",
	"circuit_breaker_half_open_requests": "circuit_breaker.half_open_requests",

	// Storage
	"duckdb_path":           "database.path",
	"duckdb_max_memory":     "database.max_memory",
	"duckdb_threads":        "database.threads",
	"state_path":            "state.path",
	"state_history_enabled": "state.history_enabled",
	"state_history_ttl":     "state.history_ttl",

	// Events
	"events_enabled":      "events.enabled",
	"nats_url":            "events.nats_url",
	"events_topic_prefix": "events.topic_prefix",
	"nats_jetstream":      "events.jetstream",
	"nats_embedded":       "events.embedded",
	"nats_host":           "events.embedded_host",
	"nats_port":           "events.embedded_port",
	"nats_store_dir":      "events.store_dir",

	// Narration
	"narration_enabled":            "narration.enabled",
	"narration_summarize_segments": "narration.summarize_segments",
	"narration_timeout":            "narration.timeout",
	"gemini_api_key":               "narration.gemini.api_key",
	"gemini_model":                 "narration.gemini.model",
	"gemini_priority":              "narration.gemini.priority",
	"claude_api_key":               "narration.claude.api_key",
	"anthropic_api_key":            "narration.claude.api_key",
	"claude_model":                 "narration.claude.model",
	"claude_priority":              "narration.claude.priority",

	// Server
	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_timeout":        "server.timeout",
	"cors_origins":        "server.cors_origins",
	"api_rate_limit":      "server.rate_limit_requests",
	"api_rate_limit_span": "server.rate_limit_window",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
	"log_file":   "logging.file",
}

// envTransformFunc transforms environment variable names to koanf paths.
// Unknown variables return "" and are ignored.
//
// Examples:
//   - NOTION_TOKEN -> notion.token
//   - NOTION_DB_SHOW_TYPE -> notion.databases.show_type
//   - SYNC_BATCH_SIZE -> sync.batch_size
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	if strings.HasPrefix(key, notionDatabaseEnvPrefix) && len(key) > len(notionDatabaseEnvPrefix) {
		return "notion.databases." + strings.TrimPrefix(key, notionDatabaseEnvPrefix)
	}
	return ""
}
