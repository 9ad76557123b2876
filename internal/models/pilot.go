// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package models

// Pilot is the public profile of a registered pilot. The secret credential never
// appears in this struct.
type Pilot struct {
	ID     string `json:"id" validate:"omitempty,pilotid"`
	Name   string `json:"name" validate:"max=64"`
	Avatar string `json:"avatar,omitempty"`
}

// RegisterRequest asks for a new pilot identity. Pilot.ID is optional and only
// honored when the server allows client-chosen IDs.
type RegisterRequest struct {
	Pilot   Pilot  `json:"pilot"`
	Sponsor string `json:"sponsor,omitempty" validate:"max=128"`
}

// RegisterResponse returns the new identity. SecretID is only ever sent here.
type RegisterResponse struct {
	Status   Status `json:"status"`
	PilotID  string `json:"pilot_id,omitempty"`
	SecretID string `json:"secret_id,omitempty"`
}

// LoginRequest authenticates the connection as PilotID.
type LoginRequest struct {
	PilotID    string `json:"pilot_id" validate:"required,pilotid"`
	SecretID   string `json:"secret_id" validate:"required,max=128"`
	APIVersion int    `json:"api_version,omitempty"`
}

// LoginResponse reports the login outcome. GroupID is the pilot's current group
// (membership survives disconnects) so a reconnecting client can resync at once.
type LoginResponse struct {
	Status     Status `json:"status"`
	PilotID    string `json:"pilot_id,omitempty"`
	Pilot      *Pilot `json:"pilot,omitempty"`
	GroupID    string `json:"group_id,omitempty"`
	APIVersion int    `json:"api_version"`
}

// UpdateProfileRequest changes the mutable profile fields of Pilot.ID. Only
// name and avatar are read; empty strings mean "leave unchanged".
type UpdateProfileRequest struct {
	Pilot    Pilot  `json:"pilot"`
	SecretID string `json:"secret_id" validate:"required,max=128"`
}

// UpdateProfileResponse reports the profile update outcome.
type UpdateProfileResponse struct {
	Status Status `json:"status"`
}
