// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

// Package identity holds the registry of pilot identities.
//
// A pilot is identified by a public ID and proves ownership of it with a secret
// handed out once at registration. The registry keeps only a bcrypt hash of the
// SHA-256 of each secret, so a memory dump does not leak usable credentials.
// Identities live for the lifetime of the process; nothing is persisted.
package identity
