// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tomtom215/atwsync/internal/logging"
)

// Closer is anything released at shutdown: the sync manager, the event
// publisher, the history store, the local database.
type Closer interface {
	Close() error
}

// NamedCloser pairs a Closer with a name for logs.
type NamedCloser struct {
	Name   string
	Closer Closer
}

// CloserService holds resources open for the life of the supervisor tree
// and closes them in reverse registration order once its context ends.
// The sync manager is registered last so it drains before the stores it
// writes to are closed.
type CloserService struct {
	name    string
	closers []NamedCloser

	once sync.Once
	err  error
}

// NewCloserService creates a service that closes closers on shutdown.
func NewCloserService(name string, closers ...NamedCloser) *CloserService {
	return &CloserService{name: name, closers: closers}
}

// Serve implements suture.Service. It blocks until ctx is done and then
// closes everything exactly once; a restart after shutdown is a no-op.
func (c *CloserService) Serve(ctx context.Context) error {
	<-ctx.Done()
	if err := c.Close(); err != nil {
		return err
	}
	return ctx.Err()
}

// Close releases every resource. Safe to call more than once.
func (c *CloserService) Close() error {
	c.once.Do(func() {
		var errs []error
		for i := len(c.closers) - 1; i >= 0; i-- {
			nc := c.closers[i]
			if nc.Closer == nil {
				continue
			}
			if err := nc.Closer.Close(); err != nil {
				logging.Error().Err(err).Str("resource", nc.Name).Msg("Close failed")
				errs = append(errs, fmt.Errorf("close %s: %w", nc.Name, err))
				continue
			}
			logging.Debug().Str("resource", nc.Name).Msg("Closed")
		}
		c.err = errors.Join(errs...)
	})
	return c.err
}

func (c *CloserService) String() string {
	return c.name
}
