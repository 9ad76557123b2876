// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package websocket

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/xcrelay/internal/logging"
	"github.com/tomtom215/xcrelay/internal/metrics"
	"github.com/tomtom215/xcrelay/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// clientIDCounter generates unique, monotonically increasing IDs for clients.
var clientIDCounter atomic.Uint64

// Client is a middleman between the websocket connection and the hub
type Client struct {
	id         uint64
	hub        *Hub
	conn       *websocket.Conn
	send       chan models.Envelope
	ctx        context.Context
	remoteAddr string
	limiter    *rate.Limiter

	// mu guards closed; Send holds it for reading so the hub can close the
	// channel without racing a sender.
	mu     sync.RWMutex
	closed bool
}

// NewClient wraps an upgraded connection. Each client gets its own
// correlation ID for logging.
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	c := &Client{
		id:         clientIDCounter.Add(1),
		hub:        hub,
		conn:       conn,
		send:       make(chan models.Envelope, hub.cfg.SendBuffer),
		ctx:        logging.ContextWithNewCorrelationID(context.Background()),
		remoteAddr: remoteAddr,
	}
	if hub.cfg.MessagesPerSecond > 0 {
		burst := hub.cfg.MessageBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(hub.cfg.MessagesPerSecond), burst)
	}
	return c
}

// ID returns the client's unique identifier
func (c *Client) ID() uint64 {
	return c.id
}

// Context carries the client's correlation ID.
func (c *Client) Context() context.Context {
	return c.ctx
}

// RemoteAddr returns the peer address recorded at upgrade time.
func (c *Client) RemoteAddr() string {
	return c.remoteAddr
}

// Send queues env for delivery without blocking. A client whose queue is full
// is too slow to keep up; its connection is closed and Send returns false.
func (c *Client) Send(env models.Envelope) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- env:
		return true
	default:
		metrics.RecordDropped("buffer_full")
		logging.Ctx(c.ctx).Warn().
			Uint64("conn_id", c.id).
			Str("event", env.Type).
			Msg("send buffer full, closing slow client")
		c.closeConn()
		return false
	}
}

// closeSend closes the outbound queue once; writePump then sends a close frame.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) closeConn() {
	if c.conn != nil {
		_ = c.conn.Close() // best-effort; readPump observes the error
	}
}

// readPump pumps frames from the websocket connection to the handler
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.Unregister <- c:
		case <-c.hub.done:
		}
		c.closeConn()
	}()

	c.conn.SetReadLimit(c.hub.cfg.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Ctx(c.ctx).Error().Err(err).Msg("failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				metrics.WSErrors.WithLabelValues("read").Inc()
				logging.Ctx(c.ctx).Warn().Err(err).Msg("unexpected websocket close error")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		metrics.WSMessagesReceived.Inc()

		if c.limiter != nil && !c.limiter.Allow() {
			metrics.RecordDropped("rate_limited")
			continue
		}
		c.hub.handler.OnMessage(c, data)
	}
}

// writePump pumps queued envelopes to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConn()
	}()

	for {
		select {
		case env, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}

			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := MarshalMessage(env)
			if err != nil {
				metrics.WSErrors.WithLabelValues("marshal").Inc()
				logging.Ctx(c.ctx).Error().Err(err).Str("event", env.Type).Msg("failed to encode message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				metrics.WSErrors.WithLabelValues("write").Inc()
				return
			}
			metrics.WSMessagesSent.Inc()

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
