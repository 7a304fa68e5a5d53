// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/atwsync/internal/config"
	"github.com/tomtom215/atwsync/internal/logging"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "atwsync",
		Short:         "Synchronize All Time Wrestling data between Notion and the local store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logging.Close()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (overrides "+config.ConfigPathEnvVar+")")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides LOGGING_LEVEL)")

	cmd.AddCommand(
		newServeCmd(opts),
		newSyncCmd(opts),
		newStatusCmd(opts),
	)
	return cmd
}

// load reads configuration and initializes the global logger.
func (o *rootOptions) load() error {
	if o.configPath != "" {
		if err := os.Setenv(config.ConfigPathEnvVar, o.configPath); err != nil {
			return err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return fmt.Errorf("load configuration: %w", err)
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		File:      logging.FileConfig{Path: cfg.Logging.File, MaxBackups: 5, MaxAgeDays: 28, Compress: true},
	})
	o.cfg = cfg
	return nil
}
