// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that the configuration is complete and within bounds
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateRelay(); err != nil {
		return err
	}

	if err := c.validateIdentity(); err != nil {
		return err
	}

	if err := c.validateGroups(); err != nil {
		return err
	}

	if err := c.validateNATS(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

var validHashModes = map[string]bool{
	"legacy": true,
	"latlng": true,
}

// Relay limits
const (
	minMessageSize = 4 * 1024
	maxMessageSize = 16 * 1024 * 1024
	maxSendBuffer  = 65536
)

func (c *Config) validateRelay() error {
	r := c.Relay
	if !validHashModes[r.HashMode] {
		return fmt.Errorf("HASH_MODE must be one of: legacy, latlng")
	}
	if r.MaxMessageSize < minMessageSize || r.MaxMessageSize > maxMessageSize {
		return fmt.Errorf("WS_MAX_MESSAGE_SIZE must be between %d and %d", minMessageSize, maxMessageSize)
	}
	if r.SendBuffer < 1 || r.SendBuffer > maxSendBuffer {
		return fmt.Errorf("WS_SEND_BUFFER must be between 1 and %d", maxSendBuffer)
	}
	if r.MessagesPerSecond <= 0 {
		return fmt.Errorf("WS_MESSAGES_PER_SECOND must be positive")
	}
	if r.MessageBurst < 1 {
		return fmt.Errorf("WS_MESSAGE_BURST must be at least 1")
	}
	return nil
}

func (c *Config) validateIdentity() error {
	// bcrypt.MinCost and bcrypt.MaxCost
	if c.Identity.SecretHashCost < 4 || c.Identity.SecretHashCost > 31 {
		return fmt.Errorf("SECRET_HASH_COST must be between 4 and 31")
	}
	if c.Identity.MaxAvatarBytes < 0 {
		return fmt.Errorf("MAX_AVATAR_BYTES must not be negative")
	}
	return nil
}

// Group ID lengths are bounded by the 64-character wire limit.
const maxGroupIDLength = 64

func (c *Config) validateGroups() error {
	g := c.Groups
	if g.MinIDLength < 1 || g.MinIDLength > maxGroupIDLength {
		return fmt.Errorf("GROUP_MIN_ID_LENGTH must be between 1 and %d", maxGroupIDLength)
	}
	if g.GeneratedIDLength < g.MinIDLength || g.GeneratedIDLength > maxGroupIDLength {
		return fmt.Errorf("GROUP_GENERATED_ID_LENGTH must be between GROUP_MIN_ID_LENGTH and %d", maxGroupIDLength)
	}
	if g.EmptyTTL < 0 {
		return fmt.Errorf("GROUP_EMPTY_TTL must not be negative")
	}
	if g.ReapInterval < time.Second {
		return fmt.Errorf("GROUP_REAP_INTERVAL must be at least 1s")
	}
	if g.MaxChatLog < 0 {
		return fmt.Errorf("GROUP_MAX_CHAT_LOG must not be negative")
	}
	return nil
}

// validateNATS validates the activity feed (only if enabled)
func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if !c.NATS.EmbeddedServer && c.NATS.URL == "" {
		return fmt.Errorf("NATS_URL is required when NATS_ENABLED=true and NATS_EMBEDDED=false")
	}
	if c.NATS.EmbeddedServer && (c.NATS.EmbeddedPort < 1 || c.NATS.EmbeddedPort > 65535) {
		return fmt.Errorf("NATS_EMBEDDED_PORT must be between 1 and 65535")
	}
	if strings.ContainsAny(c.NATS.SubjectPrefix, " *>") {
		return fmt.Errorf("NATS_SUBJECT_PREFIX must not contain spaces or wildcards")
	}
	if c.NATS.QueueSize < 1 {
		return fmt.Errorf("NATS_QUEUE_SIZE must be at least 1")
	}
	if c.NATS.ReconnectWait <= 0 {
		return fmt.Errorf("NATS_RECONNECT_WAIT must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if err := c.validateCORS(); err != nil {
		return err
	}
	return c.validateRateLimits()
}

// validateCORS rejects wildcard CORS in production.
func (c *Config) validateCORS() error {
	if c.IsProduction() && c.hasWildcardCORS() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production. " +
			"Set specific origins: CORS_ORIGINS=https://yourdomain.com " +
			"or use ENVIRONMENT=development for testing purposes")
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true if CORS configuration should be flagged at startup
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.hasWildcardCORS()
}

// Rate limit constants
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment returns true if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
