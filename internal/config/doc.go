// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

/*
Package config provides centralized configuration management for xcRelay.

Configuration is layered with Koanf v2: struct defaults, then an optional YAML file,
then environment variables. The YAML file is taken from CONFIG_PATH, or the first of
config.yaml, config.yml, /etc/xcrelay/config.yaml and /etc/xcrelay/config.yml that
exists.

# Sections

  - server: HTTP listener (HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT, SHUTDOWN_TIMEOUT, ENVIRONMENT)
  - relay: WebSocket limits and protocol policy (HASH_MODE, ALLOW_CLIENT_CHOSEN_ID, WS_*)
  - identity: secret hashing (SECRET_HASH_COST, MAX_AVATAR_BYTES)
  - groups: group IDs and retention (GROUP_*)
  - security: CORS and rate limits (CORS_ORIGINS, RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT)
  - nats: optional activity feed (NATS_*)
  - logging: LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Environment variables not listed in the mapping table are ignored. Slice settings
(CORS_ORIGINS, WS_ALLOWED_ORIGINS) accept comma-separated values.

# Example YAML

	server:
	  port: 8080
	relay:
	  hash_mode: legacy
	groups:
	  empty_ttl: 10m
	nats:
	  enabled: true
	  url: nats://nats:4222

# Validation

Load returns an error for out-of-range values, an unknown hash mode or log level,
and wildcard CORS origins in production.
*/
package config
