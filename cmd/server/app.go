// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/xcrelay/internal/activity"
	"github.com/tomtom215/xcrelay/internal/api"
	"github.com/tomtom215/xcrelay/internal/config"
	"github.com/tomtom215/xcrelay/internal/flightplan"
	"github.com/tomtom215/xcrelay/internal/group"
	"github.com/tomtom215/xcrelay/internal/identity"
	"github.com/tomtom215/xcrelay/internal/logging"
	"github.com/tomtom215/xcrelay/internal/metrics"
	"github.com/tomtom215/xcrelay/internal/relay"
	"github.com/tomtom215/xcrelay/internal/session"
	"github.com/tomtom215/xcrelay/internal/supervisor"
	"github.com/tomtom215/xcrelay/internal/supervisor/services"
	ws "github.com/tomtom215/xcrelay/internal/websocket"
)

// app holds the wired components of one server instance.
type app struct {
	identity   *identity.Registry
	groups     *group.Registry
	sessions   *session.Table
	dispatcher *relay.Dispatcher
	hub        *ws.Hub
	publisher  *activity.Publisher
	embedded   *activity.EmbeddedServer
	server     *http.Server
	tree       *supervisor.SupervisorTree
	started    time.Time
}

// newApp builds every component from cfg and registers the supervised services.
// Nothing runs until the tree is served.
func newApp(cfg *config.Config) (*app, error) {
	hasher, err := flightplan.HasherFor(cfg.Relay.HashMode)
	if err != nil {
		return nil, err
	}

	a := &app{started: time.Now()}

	a.identity = identity.NewRegistry(identity.Config{
		AllowClientChosenID: cfg.Relay.AllowClientChosenID,
		SecretHashCost:      cfg.Identity.SecretHashCost,
		MaxAvatarBytes:      cfg.Identity.MaxAvatarBytes,
	})
	a.groups = group.NewRegistry(group.Config{
		MinIDLength:         cfg.Groups.MinIDLength,
		GeneratedIDLength:   cfg.Groups.GeneratedIDLength,
		AllowImplicitCreate: cfg.Groups.AllowImplicitCreate,
		EmptyTTL:            cfg.Groups.EmptyTTL,
		MaxChatLog:          cfg.Groups.MaxChatLog,
		Hasher:              hasher,
	}, a.identity)
	a.sessions = session.NewTable()

	a.dispatcher = relay.New(a.identity, a.groups, a.sessions)
	a.hub = ws.NewHub(a.dispatcher, ws.Config{
		SendBuffer:        cfg.Relay.SendBuffer,
		MaxMessageSize:    cfg.Relay.MaxMessageSize,
		MessagesPerSecond: cfg.Relay.MessagesPerSecond,
		MessageBurst:      cfg.Relay.MessageBurst,
	})

	if cfg.NATS.Enabled {
		if err := a.initActivity(cfg); err != nil {
			a.close()
			return nil, err
		}
	}

	deps := api.Deps{
		Identity:       a.identity,
		Groups:         a.groups,
		Sessions:       a.sessions,
		Hub:            a.hub,
		AllowedOrigins: cfg.Relay.AllowedOrigins,
	}
	if a.publisher != nil {
		deps.Activity = a.publisher
	}
	router := api.NewRouter(api.NewHandler(deps), api.MiddlewareConfigFromSecurity(cfg.Security))

	// WriteTimeout stays zero: hijacked WebSocket connections manage their own deadlines.
	a.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewComponentSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("create supervisor tree: %w", err)
	}
	a.tree = tree

	tree.AddStateService(services.NewReaperService(a.groups, cfg.Groups.ReapInterval, a.updateGauges))
	tree.AddMessagingService(services.NewHubService(a.hub))
	if a.publisher != nil {
		tree.AddMessagingService(services.NewActivityService(a.publisher))
	}
	tree.AddAPIService(services.NewHTTPServerService(a.server, cfg.Server.ShutdownTimeout))

	return a, nil
}

// initActivity connects the publisher, starting the embedded broker first when configured.
func (a *app) initActivity(cfg *config.Config) error {
	url := cfg.NATS.URL
	if cfg.NATS.EmbeddedServer {
		srv, err := activity.NewEmbeddedServer("127.0.0.1", cfg.NATS.EmbeddedPort)
		if err != nil {
			return fmt.Errorf("start embedded NATS: %w", err)
		}
		a.embedded = srv
		url = srv.ClientURL()
		logging.Info().Str("url", url).Msg("Embedded NATS server started")
	}

	pubCfg := activity.DefaultConfig()
	pubCfg.URL = url
	pubCfg.SubjectPrefix = cfg.NATS.SubjectPrefix
	pubCfg.MaxReconnects = cfg.NATS.MaxReconnects
	pubCfg.ReconnectWait = cfg.NATS.ReconnectWait
	pubCfg.QueueSize = cfg.NATS.QueueSize

	pub, err := activity.NewPublisher(pubCfg)
	if err != nil {
		return err
	}
	a.publisher = pub
	a.dispatcher.SetActivitySink(pub)
	logging.Info().
		Str("url", url).
		Str("subject_prefix", pubCfg.SubjectPrefix).
		Msg("Activity feed enabled")
	return nil
}

func (a *app) updateGauges() {
	_, authenticated := a.sessions.Count()
	metrics.UpdateRegistryGauges(a.identity.Count(), a.groups.Stats().Groups, authenticated)
	metrics.AppUptime.Set(time.Since(a.started).Seconds())
}

// close releases what outlives the supervisor tree. The publisher is closed by
// its service; close only covers a publisher that never ran.
func (a *app) close() {
	if a.publisher != nil && a.tree == nil {
		if err := a.publisher.Close(); err != nil {
			logging.Warn().Err(err).Msg("Activity publisher close failed")
		}
	}
	if a.embedded != nil {
		a.embedded.Shutdown()
	}
}
