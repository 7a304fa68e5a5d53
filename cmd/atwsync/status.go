// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/atwsync/internal/models"
)

func newStatusCmd(root *rootOptions) *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "status [operation-id]",
		Short: "Show sync health or the progress of one operation on a running server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := server
			if base == "" {
				host := root.cfg.Server.Host
				if host == "" || host == "0.0.0.0" {
					host = "localhost"
				}
				base = "http://" + net.JoinHostPort(host, strconv.Itoa(root.cfg.Server.Port))
			}
			path := "/api/v1/sync/health"
			if len(args) == 1 {
				path = "/api/v1/sync/status/" + url.PathEscape(args[0])
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			return fetchStatus(ctx, cmd.OutOrStdout(), base+path)
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "server base URL (default from server.host and server.port)")
	return cmd
}

// fetchStatus prints the data of an APIResponse, or returns its error.
// A 503 from the health endpoint still carries the report.
func fetchStatus(ctx context.Context, w io.Writer, endpoint string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("query %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	var body models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if body.Error != nil {
		return fmt.Errorf("%s: %s", body.Error.Code, body.Error.Message)
	}

	out, err := json.MarshalIndent(body.Data, "", "  ")
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, string(out)); err != nil {
		return err
	}
	if resp.StatusCode == http.StatusServiceUnavailable {
		return errors.New("sync health is DOWN")
	}
	return nil
}
