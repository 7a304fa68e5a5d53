// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/atwsync/internal/config"
	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/metrics"
	"github.com/tomtom215/atwsync/internal/progress"
	"github.com/tomtom215/atwsync/internal/resilience"
	atwsync "github.com/tomtom215/atwsync/internal/sync"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

const (
	defaultTopicPrefix = "atwsync"
	breakerName        = "events.publish"
)

// Publisher wraps a Watermill publisher with circuit breaker protection.
type Publisher struct {
	publisher message.Publisher
	prefix    string
	breakers  *resilience.Breakers

	mu     sync.RWMutex
	closed bool
}

// NewPublisher wraps pub. breakers may be nil.
func NewPublisher(pub message.Publisher, prefix string, breakers *resilience.Breakers) *Publisher {
	if prefix == "" {
		prefix = defaultTopicPrefix
	}
	return &Publisher{publisher: pub, prefix: prefix, breakers: breakers}
}

// NewInProcess creates a Publisher on a Watermill gochannel and returns the
// channel so callers can subscribe to the same topics.
func NewInProcess(prefix string, breakers *resilience.Breakers) (*Publisher, *gochannel.GoChannel) {
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, logging.NewWatermillAdapter())
	return NewPublisher(ch, prefix, breakers), ch
}

// NewFromConfig picks the transport from cfg: NATS when NATSURL is set,
// otherwise the in-process gochannel.
func NewFromConfig(ctx context.Context, cfg config.EventsConfig, breakers *resilience.Breakers) (*Publisher, error) {
	if cfg.NATSURL == "" {
		pub, _ := NewInProcess(cfg.TopicPrefix, breakers)
		logging.Info().Msg("Sync events published in-process")
		return pub, nil
	}

	prefix := cfg.TopicPrefix
	if prefix == "" {
		prefix = defaultTopicPrefix
	}
	if cfg.JetStream {
		if err := provisionStream(ctx, cfg.NATSURL, prefix); err != nil {
			return nil, err
		}
	}

	pub, err := newNATSPublisher(cfg.NATSURL, cfg.JetStream, logging.NewWatermillAdapter())
	if err != nil {
		return nil, err
	}
	logging.Info().
		Str("url", cfg.NATSURL).
		Str("prefix", prefix).
		Bool("jetstream", cfg.JetStream).
		Msg("Sync events published to NATS")
	return NewPublisher(pub, prefix, breakers), nil
}

func natsOptions(logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
}

func newNATSPublisher(url string, jetStream bool, logger watermill.LoggerAdapter) (message.Publisher, error) {
	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOptions(logger),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      !jetStream,
			AutoProvision: false,
			TrackMsgId:    jetStream,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	return pub, nil
}

func provisionStream(ctx context.Context, url, prefix string) error {
	nc, err := natsgo.Connect(url)
	if err != nil {
		return fmt.Errorf("connect nats: %w", err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("jetstream context: %w", err)
	}
	si, err := NewStreamInitializer(js, DefaultStreamConfig(prefix))
	if err != nil {
		return err
	}
	_, err = si.EnsureStream(ctx)
	return err
}

// Publish sends msg to topic. The message UUID doubles as Nats-Msg-Id so
// JetStream drops duplicates on retry.
func (p *Publisher) Publish(ctx context.Context, topic string, msg *message.Message) error {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return ErrPublisherClosed
	}

	if msg.Metadata.Get(natsgo.MsgIdHdr) == "" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}
	msg.SetContext(ctx)

	var err error
	if p.breakers != nil {
		_, err = p.breakers.Execute(breakerName, func() (any, error) {
			return nil, p.publisher.Publish(topic, msg)
		})
	} else {
		err = p.publisher.Publish(topic, msg)
	}

	result := "success"
	if err != nil {
		result = "error"
	}
	metrics.EventsPublished.WithLabelValues(topic, result).Inc()
	return err
}

// PublishEvent serializes and publishes event under the configured prefix.
func (p *Publisher) PublishEvent(ctx context.Context, event *SyncEvent) error {
	data, err := SerializeEvent(event)
	if err != nil {
		return err
	}
	msg := message.NewMessage(event.EventID, data)
	msg.Metadata.Set("type", string(event.Type))
	msg.Metadata.Set("operation_id", event.OperationID)
	if corr := logging.CorrelationIDFromContext(ctx); corr != "" {
		msg.Metadata.Set("correlation_id", corr)
	}
	return p.Publish(ctx, event.Topic(p.prefix), msg)
}

// Topic returns the full topic for an event type.
func (p *Publisher) Topic(t EventType) string {
	return p.prefix + "." + string(t)
}

func (p *Publisher) emit(event *SyncEvent) {
	if err := p.PublishEvent(context.Background(), event); err != nil {
		logging.Warn().Err(err).
			Str("type", string(event.Type)).
			Str("operation_id", event.OperationID).
			Msg("Failed to publish sync event")
	}
}

// OnStarted implements progress.Listener.
func (p *Publisher) OnStarted(sp progress.SyncProgress) {
	p.emit(NewProgressEvent(EventStarted, sp))
}

// OnUpdated implements progress.Listener.
func (p *Publisher) OnUpdated(sp progress.SyncProgress) {
	p.emit(NewProgressEvent(EventProgress, sp))
}

// OnCompleted implements progress.Listener.
func (p *Publisher) OnCompleted(sp progress.SyncProgress) {
	p.emit(NewProgressEvent(EventCompleted, sp))
}

// OnResult matches sync.ResultListener.
func (p *Publisher) OnResult(operationID string, dir atwsync.Direction, r atwsync.SyncResult) {
	p.emit(NewResultEvent(operationID, dir, r))
}

// Close closes the underlying publisher. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}

var _ progress.Listener = (*Publisher)(nil)
