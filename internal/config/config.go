// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an optional YAML
// file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Relay:
//     - Relay: WebSocket limits, flight plan hash mode, client-chosen pilot IDs
//     - Identity: Secret hashing and profile limits
//     - Groups: Group ID rules, chat log size, empty-group retention
//
//  2. Infrastructure:
//     - Server: HTTP listener (host, port, timeouts)
//     - NATS: Optional activity feed publisher
//
//  3. Security:
//     - CORS origins and per-IP rate limiting of the HTTP surface
//
//  4. Observability:
//     - Logging: Log levels and output formats
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load config")
//	}
//	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Relay    RelayConfig    `koanf:"relay"`
	Identity IdentityConfig `koanf:"identity"`
	Groups   GroupsConfig   `koanf:"groups"`
	Security SecurityConfig `koanf:"security"`
	NATS     NATSConfig     `koanf:"nats"` // Optional: activity feed
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // "development", "staging", "production" (default: "development")
}

// RelayConfig holds WebSocket relay settings.
//
// Environment Variables:
//   - ALLOW_CLIENT_CHOSEN_ID: Accept pilot IDs proposed at registration (default: false)
//   - HASH_MODE: Flight plan hash, "legacy" or "latlng" (default: legacy)
//   - WS_MAX_MESSAGE_SIZE: Largest accepted frame in bytes (default: 524288)
//   - WS_SEND_BUFFER: Outbound queue length per connection (default: 256)
//   - WS_MESSAGES_PER_SECOND: Sustained inbound frame rate per connection (default: 20)
//   - WS_MESSAGE_BURST: Inbound burst allowance per connection (default: 40)
//   - WS_ALLOWED_ORIGINS: Comma-separated origins allowed to open /ws (default: *)
type RelayConfig struct {
	AllowClientChosenID bool     `koanf:"allow_client_chosen_id"`
	HashMode            string   `koanf:"hash_mode"`
	MaxMessageSize      int64    `koanf:"max_message_size"`
	SendBuffer          int      `koanf:"send_buffer"`
	MessagesPerSecond   float64  `koanf:"messages_per_second"`
	MessageBurst        int      `koanf:"message_burst"`
	AllowedOrigins      []string `koanf:"allowed_origins"`
}

// IdentityConfig holds pilot identity settings
type IdentityConfig struct {
	// SecretHashCost is the bcrypt cost for stored secrets (4-31).
	SecretHashCost int `koanf:"secret_hash_cost"`

	// MaxAvatarBytes bounds the avatar field. Zero disables the check.
	MaxAvatarBytes int `koanf:"max_avatar_bytes"`
}

// GroupsConfig holds group registry settings.
//
// Empty groups keep their chat log and flight plan for EmptyTTL so pilots that
// reconnect find them again. The reaper runs every ReapInterval.
type GroupsConfig struct {
	MinIDLength         int           `koanf:"min_id_length"`
	GeneratedIDLength   int           `koanf:"generated_id_length"`
	AllowImplicitCreate bool          `koanf:"allow_implicit_create"`
	EmptyTTL            time.Duration `koanf:"empty_ttl"`
	ReapInterval        time.Duration `koanf:"reap_interval"`
	MaxChatLog          int           `koanf:"max_chat_log"`
}

// SecurityConfig holds CORS and rate limiting settings for the HTTP surface
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// NATSConfig holds the activity feed publisher settings.
//
// When enabled, membership changes, accepted flight plan changes and chat
// messages are published to <subject_prefix>.group.{joined,left,plan,chat}.
//
// Environment Variables:
//   - NATS_ENABLED: Enable the activity feed (default: false)
//   - NATS_URL: NATS server URL (default: nats://127.0.0.1:4222)
//   - NATS_EMBEDDED: Run an in-process NATS server (default: false)
//   - NATS_EMBEDDED_PORT: Port of the embedded server (default: 4222)
//   - NATS_SUBJECT_PREFIX: Subject prefix (default: xcrelay)
//   - NATS_MAX_RECONNECTS: Reconnect attempts, -1 for unlimited (default: -1)
//   - NATS_RECONNECT_WAIT: Delay between reconnects (default: 2s)
//   - NATS_QUEUE_SIZE: Events buffered while NATS is slow (default: 1024)
type NATSConfig struct {
	// Enabled controls whether the activity feed is published.
	Enabled bool `koanf:"enabled"`

	// URL is the NATS server connection URL. Ignored when EmbeddedServer is set.
	URL string `koanf:"url"`

	// EmbeddedServer starts an in-process NATS server.
	EmbeddedServer bool `koanf:"embedded_server"`

	// EmbeddedPort is the client port of the embedded server.
	EmbeddedPort int `koanf:"embedded_port"`

	SubjectPrefix string        `koanf:"subject_prefix"`
	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
	QueueSize     int           `koanf:"queue_size"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load loads and validates the configuration.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
