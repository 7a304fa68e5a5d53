// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package eventprocessor

import (
	"context"
	"testing"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/atwsync/internal/config"
	atwsync "github.com/tomtom215/atwsync/internal/sync"
)

func TestEmbeddedServer_JetStreamPublish(t *testing.T) {
	if testing.Short() {
		t.Skip("starts an embedded NATS server")
	}

	srv, events, err := StartEmbedded(config.EventsConfig{
		Enabled:      true,
		TopicPrefix:  "atw-test",
		EmbeddedHost: "127.0.0.1",
		EmbeddedPort: -1,
		StoreDir:     t.TempDir(),
	})
	if err != nil {
		t.Fatalf("StartEmbedded() error = %v", err)
	}
	defer srv.Close()

	if events.NATSURL == "" || !events.JetStream {
		t.Fatalf("config not pointed at embedded server: %+v", events)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pub, err := NewFromConfig(ctx, events, nil)
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}
	defer pub.Close()

	pub.OnResult("op-nats", atwsync.Inbound, atwsync.Success("Wrestlers", 3, 1, 0))

	nc, err := natsgo.Connect(srv.ClientURL())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer nc.Close()
	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatal(err)
	}

	stream, err := js.Stream(ctx, DefaultStreamConfig("atw-test").Name)
	if err != nil {
		t.Fatalf("stream not provisioned: %v", err)
	}
	msg, err := stream.GetLastMsgForSubject(ctx, pub.Topic(EventResult))
	if err != nil {
		t.Fatalf("GetLastMsgForSubject() error = %v", err)
	}
	event, err := DeserializeEvent(msg.Data)
	if err != nil {
		t.Fatalf("DeserializeEvent() error = %v", err)
	}
	if event.OperationID != "op-nats" || event.Result == nil || event.Result.CreatedCount != 3 {
		t.Errorf("event = %+v", event)
	}
}
