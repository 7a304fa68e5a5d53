// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Notion.Version != "2022-06-28" {
		t.Errorf("Notion.Version = %q, want 2022-06-28", cfg.Notion.Version)
	}
	if cfg.Sync.BatchSize != 10 {
		t.Errorf("Sync.BatchSize = %d, want 10", cfg.Sync.BatchSize)
	}
	if cfg.Sync.ItemTimeout != 2*time.Minute {
		t.Errorf("Sync.ItemTimeout = %v, want 2m", cfg.Sync.ItemTimeout)
	}
	if cfg.Sync.BatchPause != 500*time.Millisecond {
		t.Errorf("Sync.BatchPause = %v, want 500ms", cfg.Sync.BatchPause)
	}
	if cfg.Sync.ProgressTTL != 30*time.Second {
		t.Errorf("Sync.ProgressTTL = %v, want 30s", cfg.Sync.ProgressTTL)
	}
	if cfg.Retry.MaxRetries != 3 || cfg.Retry.BaseDelay != time.Second || cfg.Retry.MaxDelay != 5*time.Second {
		t.Errorf("Retry = %+v, want 3 retries 1s..5s", cfg.Retry)
	}
	if cfg.Narration.Gemini.Priority >= cfg.Narration.Claude.Priority {
		t.Error("gemini should be preferred over claude by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"NOTION_TOKEN", "notion.token"},
		{"SYNC_BATCH_SIZE", "sync.batch_size"},
		{"NOTION_DB_WRESTLER", "notion.databases.wrestler"},
		{"NOTION_DB_SHOW_TYPE", "notion.databases.show_type"},
		{"NOTION_DB_", ""},
		{"ANTHROPIC_API_KEY", "narration.claude.api_key"},
		{"HOME", ""},
		{"PATH", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestLoadWithKoanf_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
notion:
  token: file-token
  databases:
    wrestler: db-wrestlers
    show: db-shows
sync:
  batch_size: 25
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("NOTION_TOKEN", "env-token")
	t.Setenv("NOTION_DB_SEGMENT", "db-segments")
	t.Setenv("SYNC_DISABLED_ENTITIES", "npc, injury")
	t.Setenv("SYNC_BATCH_PAUSE", "0s")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Notion.Token != "env-token" {
		t.Errorf("env should override file, token = %q", cfg.Notion.Token)
	}
	if cfg.Sync.BatchSize != 25 {
		t.Errorf("BatchSize = %d, want 25 from file", cfg.Sync.BatchSize)
	}
	if cfg.Sync.BatchPause != 0 {
		t.Errorf("BatchPause = %v, want 0", cfg.Sync.BatchPause)
	}
	for kind, want := range map[string]string{"wrestler": "db-wrestlers", "show": "db-shows", "segment": "db-segments"} {
		if got := cfg.Notion.Databases[kind]; got != want {
			t.Errorf("Databases[%s] = %q, want %q", kind, got, want)
		}
	}
	if cfg.Sync.IsEntityEnabled("npc") || cfg.Sync.IsEntityEnabled("injury") {
		t.Error("npc and injury should be disabled")
	}
	if !cfg.Sync.IsEntityEnabled("wrestler") {
		t.Error("wrestler should be enabled")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero batch size", func(c *Config) { c.Sync.BatchSize = 0 }, true},
		{"page size over cap", func(c *Config) { c.Notion.PageSize = 101 }, true},
		{"relative base url", func(c *Config) { c.Notion.BaseURL = "api.notion.com" }, true},
		{"empty database id", func(c *Config) { c.Notion.Databases = map[string]string{"show": " "} }, true},
		{"max delay below base", func(c *Config) { c.Retry.MaxDelay = 10 * time.Millisecond }, true},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"scheduler without interval", func(c *Config) { c.Sync.SchedulerEnabled = true; c.Sync.SchedulerInterval = 0 }, true},
		{"zero breaker threshold", func(c *Config) { c.CircuitBreaker.FailureThreshold = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsEntityEnabled_GlobalSwitch(t *testing.T) {
	cfg := defaultConfig()
	cfg.Sync.Enabled = false
	if cfg.Sync.IsEntityEnabled("wrestler") {
		t.Error("all kinds are disabled when sync is disabled")
	}
}

func TestNarrationProvidersTable(t *testing.T) {
	table := defaultConfig().Narration.Providers()
	if len(table) != 2 {
		t.Fatalf("providers = %d, want 2", len(table))
	}
	if table["gemini"].Tier != "FREE" || table["claude"].CostPer1K != 0.25 {
		t.Errorf("unexpected table: %+v", table)
	}
}
