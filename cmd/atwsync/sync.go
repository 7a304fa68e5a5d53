// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/models"
	atwsync "github.com/tomtom215/atwsync/internal/sync"
)

func newSyncCmd(root *rootOptions) *cobra.Command {
	var (
		direction string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "sync <kind|all>",
		Short: "Run one sync in the foreground and print the results",
		Long: `Run one sync of a single entity kind, or of every enabled kind in
dependency order, and print the per-kind results as JSON.

Kinds: ` + kindList() + `

With --dry-run the remote is read as usual but local writes go to an
in-memory store; outbound dry runs still write to Notion.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := atwsync.ParseDirection(direction)
			if err != nil {
				return err
			}
			all := strings.EqualFold(args[0], "all")
			var kind models.Kind
			if !all {
				var ok bool
				if kind, ok = models.ParseKind(args[0]); !ok {
					return fmt.Errorf("%w: %q", atwsync.ErrUnknownKind, args[0])
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = logging.ContextWithCorrelationID(ctx, logging.GenerateCorrelationID())

			a, err := newApp(ctx, root.cfg, appOptions{dryRun: dryRun})
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.Close(); cerr != nil {
					logging.Error().Err(cerr).Msg("Shutdown failed")
				}
			}()

			results, err := runSync(ctx, a.manager, kind, all, dir)
			if err != nil {
				return err
			}
			if err := printResults(cmd.OutOrStdout(), results); err != nil {
				return err
			}
			for _, r := range results {
				if !r.Success {
					return fmt.Errorf("%s sync failed: %s", r.EntityName, r.ErrorMessage)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&direction, "direction", "d", string(atwsync.Inbound), "inbound (Notion to local) or outbound (local to Notion)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "keep local writes in memory")
	return cmd
}

// runSync runs kind, or every enabled kind when all is set, under one
// operation id.
func runSync(ctx context.Context, m *atwsync.Manager, kind models.Kind, all bool, dir atwsync.Direction) ([]atwsync.SyncResult, error) {
	op := "cli-" + logging.GenerateRequestID()
	if all {
		return m.SyncAll(ctx, dir, op), nil
	}
	r, err := m.Sync(ctx, kind, dir, op)
	if err != nil {
		return nil, err
	}
	return []atwsync.SyncResult{r}, nil
}

func printResults(w io.Writer, results []atwsync.SyncResult) error {
	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func kindList() string {
	names := make([]string, len(models.AllKinds))
	for i, k := range models.AllKinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
