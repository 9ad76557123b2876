// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

/*
Package supervisor runs the relay's long-lived goroutines under a suture v4
supervision tree.

Tree layout:

	xcrelay (root)
	├── state-layer
	│   └── group-reaper
	├── messaging-layer
	│   ├── websocket-hub
	│   └── activity-publisher (when nats.enabled)
	└── api-layer
	    └── http-server

Each layer is its own supervisor with the same failure parameters, so a service
that keeps failing backs off without restarting its siblings in other layers.
Supervisor events (restarts, backoff, panics) are logged through sutureslog,
which writes to the zerolog logger via logging.NewSlogLogger.

Service adapters live in the services subpackage.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddStateService(services.NewReaperService(groups, interval, gauges))
	tree.AddMessagingService(services.NewHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(srv, shutdownTimeout))
	err = tree.Serve(ctx)
*/
package supervisor
