// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package group

import "errors"

var (
	// ErrInvalidID is returned for malformed group IDs and unresolvable join targets.
	ErrInvalidID = errors.New("invalid group id")

	// ErrGroupExists is returned by Create when the requested ID is taken.
	ErrGroupExists = errors.New("group already exists")

	// ErrUnknownGroup is returned when a group ID is not registered.
	ErrUnknownGroup = errors.New("unknown group")

	// ErrNotMember is returned when a pilot addresses a group it does not belong to.
	ErrNotMember = errors.New("pilot is not a member of the group")

	// ErrNoGroup is returned when a pilot without a group performs a group operation.
	ErrNoGroup = errors.New("pilot is not in a group")

	// ErrAlreadyMember is returned when a pilot joins the group it is already in.
	ErrAlreadyMember = errors.New("pilot is already in the group")
)
