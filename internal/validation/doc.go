// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built lazily and shared; it caches struct
// metadata, so validating the same payload type repeatedly is cheap. Two custom
// tags are registered for the relay protocol:
//
//   - groupid: ASCII letters and digits, at most 64 characters
//   - pilotid: printable characters without whitespace, at most 64 characters
//
// Coordinates use the built-in latitude and longitude tags.
//
// # Usage
//
//	var req models.JoinGroupRequest
//	if err := env.Decode(&req); err != nil {
//	    // undecodable frame
//	}
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    log.Debug().Str("error", verr.Error()).Msg("rejected request")
//	}
//
// HTTP handlers convert failures with ToAPIError, which yields the
// VALIDATION_ERROR code used by the rest of the API.
//
// # Thread Safety
//
// GetValidator and ValidateStruct are safe for concurrent use.
package validation
