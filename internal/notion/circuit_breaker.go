// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package notion

import (
	"context"

	"github.com/tomtom215/atwsync/internal/ratelimit"
	"github.com/tomtom215/atwsync/internal/resilience"
)

// Breaker names, one per operation class.
const (
	OpQuery      = "notion.query"
	OpGetPage    = "notion.get_page"
	OpGetContent = "notion.get_content"
	OpCreatePage = "notion.create_page"
	OpUpdatePage = "notion.update_page"
)

// ResilientClient decorates a Client with rate limiting, escalating retry
// policies and per-operation circuit breakers.
//
// Layering, outermost first: breaker, retry, rate limit, inner call. Every
// attempt (including retries) takes a rate-limit permit, and one exhausted
// retry sequence counts as a single breaker failure.
type ResilientClient struct {
	inner    Client
	limiter  *ratelimit.Limiter
	policies []resilience.RetryPolicy
	breakers *resilience.Breakers
}

// NewResilientClient wraps inner. A nil limiter means unlimited and a nil
// breaker registry gets default settings.
func NewResilientClient(inner Client, limiter *ratelimit.Limiter, policies []resilience.RetryPolicy, breakers *resilience.Breakers) *ResilientClient {
	if limiter == nil {
		limiter = ratelimit.Unlimited()
	}
	if breakers == nil {
		breakers = resilience.NewBreakers(resilience.BreakerSettings{})
	}
	return &ResilientClient{
		inner:    inner,
		limiter:  limiter,
		policies: policies,
		breakers: breakers,
	}
}

// Breakers exposes the breaker registry for health reporting.
func (c *ResilientClient) Breakers() *resilience.Breakers { return c.breakers }

func call[T any](ctx context.Context, c *ResilientClient, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	return resilience.Execute(c.breakers, op, func() (T, error) {
		return resilience.ExecuteWithRetry(ctx, op, c.policies, func(ctx context.Context) (T, error) {
			if err := c.limiter.Wait(ctx); err != nil {
				var zero T
				return zero, err
			}
			return fn(ctx)
		})
	})
}

func (c *ResilientClient) ListPageIDs(ctx context.Context, databaseID string) ([]string, error) {
	return call(ctx, c, OpQuery, func(ctx context.Context) ([]string, error) {
		return c.inner.ListPageIDs(ctx, databaseID)
	})
}

func (c *ResilientClient) GetPage(ctx context.Context, pageID string) (*Page, error) {
	return call(ctx, c, OpGetPage, func(ctx context.Context) (*Page, error) {
		return c.inner.GetPage(ctx, pageID)
	})
}

func (c *ResilientClient) GetPageContent(ctx context.Context, pageID string) (string, error) {
	return call(ctx, c, OpGetContent, func(ctx context.Context) (string, error) {
		return c.inner.GetPageContent(ctx, pageID)
	})
}

func (c *ResilientClient) CreatePage(ctx context.Context, databaseID string, props map[string]Property) (string, error) {
	return call(ctx, c, OpCreatePage, func(ctx context.Context) (string, error) {
		return c.inner.CreatePage(ctx, databaseID, props)
	})
}

func (c *ResilientClient) UpdatePage(ctx context.Context, pageID string, props map[string]Property) error {
	_, err := call(ctx, c, OpUpdatePage, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.inner.UpdatePage(ctx, pageID, props)
	})
	return err
}

var _ Client = (*ResilientClient)(nil)
var _ Client = (*HTTPClient)(nil)
