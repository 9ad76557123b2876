// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

/*
Package api provides the HTTP surface of the relay.

The relay protocol itself runs over a single WebSocket endpoint; everything else
is operational: probes, counters and Prometheus metrics.

Routes:

	GET /ws                         WebSocket upgrade, handed to the hub
	GET /api/v1/health/live         liveness probe
	GET /api/v1/health/ready        readiness probe (503 once the hub has stopped)
	GET /api/v1/stats               pilots, groups, sessions, hub clients
	GET /api/v1/pilots/status?ids=  online flag per pilot ID
	GET /metrics                    Prometheus exposition

Middleware:

  - middleware.RequestID and middleware.PrometheusMetrics on every route
  - chi RealIP and Recoverer
  - go-chi/cors from security.cors_origins
  - go-chi/httprate per-IP limits: security.rate_limit_* on /api/v1, a fixed
    permissive limit on health probes, and a separate limit on /ws upgrades
  - APISecurityHeaders on JSON routes

JSON responses use the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}

Origin checking on /ws accepts requests without an Origin header (native flight
apps) and holds browsers to relay.allowed_origins.

Usage:

	h := api.NewHandler(api.Deps{Identity: ids, Groups: groups, Sessions: sessions, Hub: hub})
	router := api.NewRouter(h, api.MiddlewareConfigFromSecurity(cfg.Security))
	srv := &http.Server{Addr: addr, Handler: router.SetupChi()}
*/
package api
