// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

/*
Package middleware provides HTTP middleware for the operational API.

Key Components:

  - RequestID: X-Request-ID propagation and request/correlation IDs in the logging context
  - PrometheusMetrics: request count, latency and in-flight instrumentation

Both are chi-compatible (func(http.Handler) http.Handler). CORS and rate limiting come
from go-chi/cors and go-chi/httprate and are wired in package api.

Typical stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Route("/api/v1", func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    r.Get("/stats", h.Stats)
	})

Metrics are labelled with the chi route pattern (for example /api/v1/pilots/status),
so query strings and path parameters never create new series.
*/
package middleware
