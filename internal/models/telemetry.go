// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package models

import "github.com/goccy/go-json"

// PilotTelemetry is a position/instrument report. The Telemetry body is opaque to
// the relay and forwarded verbatim; PilotID is overwritten with the sender.
type PilotTelemetry struct {
	Timestamp int64           `json:"timestamp"`
	PilotID   string          `json:"pilot_id"`
	Telemetry json.RawMessage `json:"telemetry" validate:"required"`
}

// WaypointSelection is the waypoint a pilot is currently flying to.
type WaypointSelection struct {
	WaypointIndex int    `json:"waypoint_index" validate:"min=-1"`
	PlanName      string `json:"plan_name,omitempty" validate:"max=128"`
}

// PilotWaypointSelections maps pilot IDs to their selections. Inbound, only the
// sender's own entry is honored.
type PilotWaypointSelections map[string]WaypointSelection
