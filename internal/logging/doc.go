// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

/*
Package logging provides centralized zerolog-based logging for xcRelay.

A single global zerolog logger is configured once at startup and shared by
every component. Component loggers add a "component" field; connection-scoped
code logs through Ctx so each line carries the connection's correlation ID.

# Quick Start

	logging.Init(logging.Config{
	    Level:  cfg.Logging.Level,
	    Format: cfg.Logging.Format,
	    Caller: cfg.Logging.Caller,
	    Timestamp: true,
	})

	logging.Info().Str("addr", addr).Msg("HTTP server listening")
	logging.Ctx(ctx).Warn().Str("pilot_id", id).Msg("Emergency message")

# Configuration

The config package maps these environment variables into Config:
  - LOG_LEVEL: trace, debug, info, warn, error, disabled (default: info)
  - LOG_FORMAT: json, console (default: json)
  - LOG_CALLER: true/false (default: false)

# Correlation

The WebSocket hub stamps every client context with ContextWithNewCorrelationID.
HTTP requests receive a request ID from the RequestID middleware. Ctx and
CtxWith pick up whichever is present.

# Security Events

SecurityLogger emits registration, login, profile and session-takeover events
under component=auth. Secrets are never logged; SanitizeSecret exists for the
rare case where a prefix is needed to correlate a report.

# slog Bridge

NewSlogLogger returns a log/slog logger writing into zerolog. The supervisor
tree hands it to sutureslog so restarts and panics land in the same stream.
*/
package logging
