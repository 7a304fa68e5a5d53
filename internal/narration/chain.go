// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package narration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/atwsync/internal/config"
	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/metrics"
)

// ErrNoProvider is returned when no provider is configured or every
// provider failed.
var ErrNoProvider = errors.New("no narration provider available")

// Provider generates text from a prompt.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// ProviderInfo describes a configured provider for status endpoints.
type ProviderInfo struct {
	Name        string  `json:"name"`
	Model       string  `json:"model"`
	Priority    int     `json:"priority"`
	CostPer1K   float64 `json:"cost_per_1k"`
	Tier        string  `json:"tier"`
	Description string  `json:"description,omitempty"`
}

type entry struct {
	provider Provider
	info     ProviderInfo
}

// Chain tries providers in ascending priority until one succeeds.
type Chain struct {
	entries []entry
	timeout time.Duration
}

// NewChain orders providers by their row in the priority table. Providers
// without a row sort last by name.
func NewChain(providers []Provider, table map[string]config.ProviderInfo, timeout time.Duration) *Chain {
	entries := make([]entry, 0, len(providers))
	for _, p := range providers {
		row, ok := table[p.Name()]
		priority := row.Priority
		if !ok {
			priority = int(^uint(0) >> 1)
		}
		entries = append(entries, entry{provider: p, info: ProviderInfo{
			Name:        p.Name(),
			Model:       row.Model,
			Priority:    priority,
			CostPer1K:   row.CostPer1K,
			Tier:        row.Tier,
			Description: row.Description,
		}})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].info.Priority != entries[j].info.Priority {
			return entries[i].info.Priority < entries[j].info.Priority
		}
		return entries[i].info.Name < entries[j].info.Name
	})
	return &Chain{entries: entries, timeout: timeout}
}

// New builds the chain from configuration. Providers that are disabled or
// have no API key are left out; an empty chain is valid and always fails
// with ErrNoProvider.
func New(ctx context.Context, cfg config.NarrationConfig) (*Chain, error) {
	var providers []Provider
	if p := cfg.Gemini; p.Enabled && p.APIKey != "" {
		gemini, err := NewGemini(ctx, p.APIKey, p.Model, p.MaxTokens)
		if err != nil {
			return nil, err
		}
		providers = append(providers, gemini)
	}
	if p := cfg.Claude; p.Enabled && p.APIKey != "" {
		providers = append(providers, NewClaude(p.APIKey, p.Model, p.MaxTokens))
	}

	chain := NewChain(providers, cfg.Providers(), cfg.Timeout)
	if len(providers) == 0 {
		logging.Warn().Msg("Narration enabled but no provider has an API key")
	} else {
		logging.Info().Strs("providers", chain.names()).Msg("Narration providers configured")
	}
	return chain, nil
}

func (c *Chain) names() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.info.Name
	}
	return out
}

// Providers returns the providers in the order they are tried.
func (c *Chain) Providers() []ProviderInfo {
	out := make([]ProviderInfo, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.info
	}
	return out
}

// Generate runs prompt through the providers in priority order and returns
// the first non-empty answer.
func (c *Chain) Generate(ctx context.Context, prompt string) (string, error) {
	var errs []error
	for _, e := range c.entries {
		text, err := c.try(ctx, e.provider, prompt)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logging.Ctx(ctx).Warn().Err(err).Str("provider", e.info.Name).Msg("Narration provider failed, trying next")
		errs = append(errs, fmt.Errorf("%s: %w", e.info.Name, err))
	}
	if len(errs) == 0 {
		return "", ErrNoProvider
	}
	return "", fmt.Errorf("%w: %w", ErrNoProvider, errors.Join(errs...))
}

func (c *Chain) try(ctx context.Context, p Provider, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	text, err := p.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty response")
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	metrics.NarrationRequests.WithLabelValues(p.Name(), result).Inc()
	return strings.TrimSpace(text), err
}

// Summarize condenses a segment narration into a few sentences.
func (c *Chain) Summarize(ctx context.Context, title, text string) (string, error) {
	return c.Generate(ctx, SummaryPrompt(title, text))
}

// SummaryPrompt builds the prompt used by Summarize.
func SummaryPrompt(title, narration string) string {
	var b strings.Builder
	b.WriteString("Summarize the following wrestling narration in 2-3 sentences, focusing on the key moments and the outcome")
	if title != "" {
		b.WriteString(" of \"")
		b.WriteString(title)
		b.WriteString("\"")
	}
	b.WriteString(":\n\n")
	b.WriteString(narration)
	return b.String()
}

// Close releases providers that hold client connections.
func (c *Chain) Close() error {
	var errs []error
	for _, e := range c.entries {
		if closer, ok := e.provider.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", e.info.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}
