// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// SecurityLogger records credential events: registrations, logins, profile
// updates and session takeovers. Secrets never reach the log; names are
// masked because they are often real names.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates a new security logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{
		logger: With().Str("component", "auth").Logger(),
	}
}

// NewSecurityLoggerWithLogger creates a security logger with a custom zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// LogRegistration records a new pilot identity.
func (l *SecurityLogger) LogRegistration(pilotID, name, remoteAddr string, clientChosenID bool) {
	l.logger.Info().
		Str("event", "pilot_registered").
		Str("pilot_id", pilotID).
		Str("name", SanitizeName(name)).
		Str("ip", remoteAddr).
		Bool("client_chosen_id", clientChosenID).
		Msg("")
}

// LogLoginSuccess records a successful login on a connection.
func (l *SecurityLogger) LogLoginSuccess(pilotID string, connID uint64, remoteAddr string) {
	l.logger.Info().
		Str("event", "login_success").
		Str("pilot_id", pilotID).
		Uint64("conn_id", connID).
		Str("ip", remoteAddr).
		Msg("")
}

// LogLoginFailure records a rejected login. reason is a status name such as
// invalid_secret_id.
func (l *SecurityLogger) LogLoginFailure(pilotID, remoteAddr, reason string) {
	l.logger.Warn().
		Str("event", "login_failed").
		Str("pilot_id", truncateString(pilotID, 64)).
		Str("ip", remoteAddr).
		Str("reason", SanitizeError(reason)).
		Msg("")
}

// LogProfileUpdate records a profile change attempt.
func (l *SecurityLogger) LogProfileUpdate(pilotID string, success bool, reason string) {
	e := l.logger.Info()
	if !success {
		e = l.logger.Warn().Str("reason", SanitizeError(reason))
	}
	e.Str("event", "profile_update").
		Str("pilot_id", pilotID).
		Bool("success", success).
		Msg("")
}

// LogSessionReplaced records a re-login that took over another connection.
func (l *SecurityLogger) LogSessionReplaced(pilotID string, oldConnID, newConnID uint64) {
	l.logger.Info().
		Str("event", "session_replaced").
		Str("pilot_id", pilotID).
		Uint64("old_conn_id", oldConnID).
		Uint64("new_conn_id", newConnID).
		Msg("")
}

// ============================================================
// Sanitizers
// ============================================================

// SanitizeSecret masks a secret, showing only the first and last 4 characters.
// Example: "0b6f2f4c-8e1a-4c57-9d0e-5a4b3c2d1e0f" -> "0b6f...1e0f"
func SanitizeSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 12 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

// SanitizeName masks a display name, keeping the first 2 runes.
// Example: "Johanna" -> "Jo***"
func SanitizeName(name string) string {
	if name == "" {
		return ""
	}
	r := []rune(name)
	if len(r) <= 2 {
		return "***"
	}
	return string(r[:2]) + "***"
}

// SanitizeError replaces messages that look like they carry credentials.
func SanitizeError(err string) string {
	lowerErr := strings.ToLower(err)
	for _, pattern := range []string{"secret_id=", "password", "bearer", "authorization"} {
		if strings.Contains(lowerErr, pattern) {
			return "authentication error"
		}
	}
	return truncateString(err, 200)
}

// SanitizeValue sanitizes a value based on its key name.
func SanitizeValue(key, value string) string {
	switch strings.ToLower(key) {
	case "secret", "secret_id", "secretid", "token", "password", "authorization":
		return SanitizeSecret(value)
	case "name", "pilot_name":
		return SanitizeName(value)
	}
	return value
}

// truncateString truncates a string to a maximum length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
