// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package group

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	idAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxIDLength = 64
)

// NormalizeID upper-cases a group ID so lookups are case-insensitive.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// ValidID reports whether id (after NormalizeID) is an acceptable group ID:
// ASCII letters and digits only, between minLen and 64 characters.
func ValidID(id string, minLen int) bool {
	if len(id) < minLen || len(id) > maxIDLength || id == "" {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// generateID returns a random uppercase alphanumeric ID of length n.
func generateID(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	max := big.NewInt(int64(len(idAlphabet)))
	for i := 0; i < n; i++ {
		k, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(idAlphabet[k.Int64()])
	}
	return b.String(), nil
}
