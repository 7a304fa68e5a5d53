// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package eventprocessor

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"

	"github.com/tomtom215/atwsync/internal/config"
	"github.com/tomtom215/atwsync/internal/logging"
)

const embeddedReadyTimeout = 30 * time.Second

// EmbeddedServer is an in-process NATS server with JetStream, used when
// events.embedded is set and no external URL is configured.
type EmbeddedServer struct {
	server *server.Server
}

// NewEmbeddedServer starts a JetStream-enabled server on host:port and
// waits until it accepts connections. A port of -1 picks a free port.
func NewEmbeddedServer(host string, port int, storeDir string) (*EmbeddedServer, error) {
	ns, err := server.NewServer(&server.Options{
		ServerName: "atwsync-events",
		Host:       host,
		Port:       port,
		JetStream:  true,
		StoreDir:   storeDir,
		NoSigs:     true,
		MaxPayload: 8 * 1024 * 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}
	ns.ConfigureLogger()

	go ns.Start()
	if !ns.ReadyForConnections(embeddedReadyTimeout) {
		ns.Shutdown()
		return nil, errors.New("embedded NATS server not ready within timeout")
	}

	logging.Info().
		Str("url", ns.ClientURL()).
		Str("store_dir", storeDir).
		Msg("Embedded NATS server started")
	return &EmbeddedServer{server: ns}, nil
}

// ClientURL is the URL publishers and subscribers connect to.
func (s *EmbeddedServer) ClientURL() string {
	return s.server.ClientURL()
}

// Close shuts the server down and waits for it to exit.
func (s *EmbeddedServer) Close() error {
	s.server.Shutdown()
	s.server.WaitForShutdown()
	return nil
}

// StartEmbedded starts the embedded server from cfg and returns a copy of
// cfg pointing NATSURL at it with JetStream on.
func StartEmbedded(cfg config.EventsConfig) (*EmbeddedServer, config.EventsConfig, error) {
	srv, err := NewEmbeddedServer(cfg.EmbeddedHost, cfg.EmbeddedPort, cfg.StoreDir)
	if err != nil {
		return nil, cfg, err
	}
	cfg.NATSURL = srv.ClientURL()
	cfg.JetStream = true
	return srv, cfg, nil
}
