// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package activity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/xcrelay/internal/logging"
	"github.com/tomtom215/xcrelay/internal/metrics"
)

// ErrQueueFull is recorded when an event is dropped because Run is behind.
var ErrQueueFull = errors.New("activity queue full")

// Config holds publisher settings.
type Config struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
	QueueSize     int
	FlushTimeout  time.Duration
	Breaker       BreakerConfig
}

// DefaultConfig returns publisher defaults.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		SubjectPrefix: "xcrelay",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		QueueSize:     1024,
		FlushTimeout:  5 * time.Second,
		Breaker:       DefaultBreakerConfig(),
	}
}

// Publisher sends activity events to NATS.
type Publisher struct {
	cfg     Config
	conn    *nats.Conn
	breaker *gobreaker.CircuitBreaker[struct{}]
	queue   chan Event
	logger  zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPublisher connects to the broker. The connection retries in the
// background, so an unreachable broker does not fail startup.
func NewPublisher(cfg Config) (*Publisher, error) {
	def := DefaultConfig()
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = def.FlushTimeout
	}

	logger := logging.WithComponent("activity")

	opts := []nats.Option{
		nats.Name("xcrelay"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", cfg.URL, err)
	}

	return &Publisher{
		cfg:     cfg,
		conn:    nc,
		breaker: newBreaker("activity", cfg.Breaker),
		queue:   make(chan Event, cfg.QueueSize),
		logger:  logger,
	}, nil
}

// Publish enqueues ev without blocking.
func (p *Publisher) Publish(ev Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	select {
	case p.queue <- ev:
	default:
		metrics.RecordActivityPublish(string(ev.Kind), ErrQueueFull)
	}
}

// Run sends queued events until ctx is canceled, then flushes what is queued.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return ctx.Err()
		case ev := <-p.queue:
			p.send(ev)
		}
	}
}

func (p *Publisher) drain() {
	for {
		select {
		case ev := <-p.queue:
			p.send(ev)
		default:
			return
		}
	}
}

// send publishes one event through the breaker.
func (p *Publisher) send(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		metrics.RecordActivityPublish(string(ev.Kind), err)
		p.logger.Error().Err(err).Str("kind", string(ev.Kind)).Msg("encode activity event")
		return
	}

	subject := Subject(p.cfg.SubjectPrefix, ev.Kind)
	_, err = p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.conn.Publish(subject, data)
	})
	metrics.RecordActivityPublish(string(ev.Kind), err)
	if err != nil && !errors.Is(err, gobreaker.ErrOpenState) {
		p.logger.Debug().Err(err).Str("subject", subject).Msg("activity publish failed")
	}
}

// Connected reports whether the broker connection is up.
func (p *Publisher) Connected() bool {
	return p.conn.IsConnected()
}

// BreakerState returns the circuit breaker state name.
func (p *Publisher) BreakerState() string {
	return p.breaker.State().String()
}

// Close flushes pending broker writes and closes the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	var err error
	if p.conn.IsConnected() {
		err = p.conn.FlushTimeout(p.cfg.FlushTimeout)
	}
	p.conn.Close()
	return err
}
