// ATW Sync - Notion Synchronization Engine for All Time Wrestling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/atwsync

package websocket

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/atwsync/internal/logging"
	"github.com/tomtom215/atwsync/internal/progress"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	maxCommandSize  = 4 * 1024
	clientSendQueue = 256
)

// Commands a client may send.
const (
	CommandSubscribe   = "subscribe"
	CommandUnsubscribe = "unsubscribe"
)

var nextClientID atomic.Uint64

// Command is a message read from a client. "ping" is answered with "pong";
// "subscribe" narrows the stream to one operation and "unsubscribe"
// restores the full stream.
type Command struct {
	Type        string `json:"type"`
	OperationID string `json:"operation_id,omitempty"`
}

// Client is one progress stream connection registered with the hub.
type Client struct {
	id   uint64
	hub  *Hub
	conn *websocket.Conn
	send chan Message

	mu        sync.RWMutex
	operation string
}

// NewClient creates a client for conn. A non-empty operation limits the
// stream to that operation from the first message.
func NewClient(hub *Hub, conn *websocket.Conn, operation string) *Client {
	return &Client{
		id:        nextClientID.Add(1),
		hub:       hub,
		conn:      conn,
		send:      make(chan Message, clientSendQueue),
		operation: operation,
	}
}

// ID returns the client's identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// Operation returns the subscribed operation id, or "" for every operation.
func (c *Client) Operation() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.operation
}

func (c *Client) setOperation(op string) {
	c.mu.Lock()
	c.operation = op
	c.mu.Unlock()
}

// Wants reports whether msg passes the client's subscription. Per-kind runs
// of a full sync carry "<parent>:<kind>" ids and match their parent.
// Messages that are not progress snapshots always pass.
func (c *Client) Wants(msg Message) bool {
	op := c.Operation()
	if op == "" {
		return true
	}
	p, ok := msg.Data.(progress.SyncProgress)
	if !ok {
		return true
	}
	return p.OperationID == op || strings.HasPrefix(p.OperationID, op+":")
}

func (c *Client) handle(cmd Command) {
	switch cmd.Type {
	case MessageTypePing:
		c.hub.deliver(c, Message{Type: MessageTypePong})
	case CommandSubscribe:
		c.setOperation(cmd.OperationID)
		c.hub.deliver(c, Message{Type: MessageTypeSubscribed, Data: cmd})
	case CommandUnsubscribe:
		c.setOperation("")
		c.hub.deliver(c, Message{Type: MessageTypeSubscribed, Data: Command{Type: CommandUnsubscribe}})
	default:
		logging.Debug().Uint64("client_id", c.id).Str("type", cmd.Type).Msg("Ignoring unknown progress stream command")
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxCommandSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warn().Err(err).Uint64("client_id", c.id).Msg("Progress stream closed unexpectedly")
			}
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			logging.Debug().Err(err).Uint64("client_id", c.id).Msg("Malformed progress stream command")
			continue
		}
		c.handle(cmd)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// unregistered or dropped by the hub
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			data, err := MarshalMessage(msg)
			if err != nil {
				logging.Error().Err(err).Str("message_type", msg.Type).Msg("Failed to encode progress message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start runs the read and write pumps. The client must already be
// registered with the hub.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
