// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/xcrelay/internal/logging"
	"github.com/tomtom215/xcrelay/internal/metrics"
	"github.com/tomtom215/xcrelay/internal/models"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the parent context was canceled.
	// This is the normal graceful shutdown path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Handler receives connection lifecycle events and inbound frames.
//
// OnConnect runs on the hub goroutine before the client's pumps start, so no
// OnMessage for that client can precede it. OnMessage runs on the client's read
// goroutine; frames from one client are delivered in order. OnDisconnect runs on
// the hub goroutine after the client's send channel is closed.
type Handler interface {
	OnConnect(c *Client)
	OnMessage(c *Client, data []byte)
	OnDisconnect(c *Client)
}

// Config tunes per-connection limits.
type Config struct {
	// SendBuffer is the outbound queue length per client. A client whose queue
	// is full is disconnected.
	SendBuffer int

	// MaxMessageSize is the largest inbound frame accepted, in bytes.
	MaxMessageSize int64

	// MessagesPerSecond and MessageBurst bound inbound frames per client.
	// Zero disables the limit.
	MessagesPerSecond float64
	MessageBurst      int
}

// DefaultConfig returns the default per-connection limits.
func DefaultConfig() Config {
	return Config{
		SendBuffer:        256,
		MaxMessageSize:    512 * 1024,
		MessagesPerSecond: 20,
		MessageBurst:      40,
	}
}

// Hub owns the set of live clients and serializes their registration and
// removal. Delivery to clients does not go through the hub: callers hold a
// *Client and use Send directly.
type Hub struct {
	handler    Handler
	cfg        Config
	clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	doneOnce   sync.Once
	mu         sync.RWMutex
	logger     zerolog.Logger
}

// NewHub creates a new Hub dispatching to handler.
func NewHub(handler Handler, cfg Config) *Hub {
	def := DefaultConfig()
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = def.SendBuffer
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = def.MaxMessageSize
	}
	return &Hub{
		handler:    handler,
		cfg:        cfg,
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logging.WithComponent("hub"),
	}
}

// Attach hands a freshly upgraded client to the hub. It returns false, and
// closes the connection, when the hub has already stopped.
func (h *Hub) Attach(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		c.closeConn()
		return false
	}
}

// RunWithContext runs the hub until ctx is canceled. On shutdown every
// connected client is closed and ctx.Err() is returned.
//
// Lifecycle events are handled with priority: cancellation first, then
// pending Register/Unregister, then a blocking wait on all three.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.register(client)
			continue
		case client := <-h.Unregister:
			h.unregister(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.register(client)
		case client := <-h.Unregister:
			h.unregister(client)
		}
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Inc()
	h.handler.OnConnect(c)
	c.Start()

	logging.Ctx(c.Context()).Debug().
		Uint64("conn_id", c.ID()).
		Str("remote_addr", c.RemoteAddr()).
		Int("total_clients", total).
		Msg("websocket client connected")
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	c.closeSend()
	metrics.WSConnections.Dec()
	h.handler.OnDisconnect(c)

	logging.Ctx(c.Context()).Debug().
		Uint64("conn_id", c.ID()).
		Int("total_clients", total).
		Msg("websocket client disconnected")
}

// logGracefulShutdown closes all clients and logs the shutdown.
// ctx.Err() is not logged as an error: cancellation is the expected path.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	h.logger.Info().
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

// getShutdownReason determines the shutdown reason from the context error.
func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// closeAllClients closes every client in ID order and releases readers
// blocked on Unregister.
func (h *Hub) closeAllClients() {
	h.doneOnce.Do(func() { close(h.done) })

	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	for _, client := range clients {
		delete(h.clients, client)
	}
	h.mu.Unlock()

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		client.closeSend()
		metrics.WSConnections.Dec()
		h.handler.OnDisconnect(client)
	}
}

// Stopped reports whether the hub has shut down and no longer accepts clients.
func (h *Hub) Stopped() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalMessage encodes an envelope for the wire.
func MarshalMessage(env models.Envelope) ([]byte, error) {
	return json.Marshal(env)
}
