// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

/*
Package main is the entry point for the xcRelay server.

xcRelay relays live coordination traffic between free-flight pilots flying
together: telemetry, chat, shared flight plans and waypoint selections. Pilots
register an identity, log in over a WebSocket and join a group; the relay fans
each message out to the rest of the group and keeps the group's flight plan
consistent through hash-checked edits.

# Application Architecture

	RootSupervisor ("xcrelay")
	├── StateSupervisor ("state-layer")
	│   └── Group reaper (empty groups, registry gauges)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket hub
	│   └── Activity publisher (optional, nats.enabled)
	└── APISupervisor ("api-layer")
	    └── HTTP server (/ws, health, stats, metrics)

Component initialization order:

 1. Configuration: koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog with JSON/console output
 3. Registries: identity, groups (with the configured flight plan hash), sessions
 4. Relay dispatcher and WebSocket hub
 5. Activity feed: embedded or external NATS, optional
 6. HTTP server: chi router
 7. Supervisor tree

All state is held in memory. A restart drops every identity, group and plan;
clients re-register.

# Configuration

Common environment variables:

	HTTP_PORT=8080              listen port
	HASH_MODE=legacy            flight plan hash: legacy (wire compatible) or latlng
	ALLOW_CLIENT_CHOSEN_ID=false
	CORS_ORIGINS=*              comma-separated
	NATS_ENABLED=false          publish group activity to NATS
	NATS_EMBEDDED=false         run an in-process NATS server
	LOG_LEVEL=info
	LOG_FORMAT=json

See package config for the full list and config.yaml layout.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains requests
for server.shutdown_timeout, the hub closes every WebSocket, and the activity
publisher flushes its queue before the broker connection is closed.
*/
package main
