// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

/*
Package models defines the wire protocol shared by the relay and its browser clients.

Every frame on the WebSocket is an Envelope: an event name plus a JSON payload.
Requests carry a matching *Response event whose Status field reports the outcome
using the single Status enum defined here. Broadcast notifications (PilotJoinedGroup,
PilotLeftGroup) and relayed events (TextMessage, PilotTelemetry, FlightPlanUpdate,
FlightPlanSync, PilotWaypointSelections) reuse the same payload types in both
directions.

Model Categories:

 1. Identity: Pilot, RegisterRequest/Response, LoginRequest/Response,
    UpdateProfileRequest/Response.

 2. Groups: GroupInfoRequest/Response, JoinGroupRequest/Response,
    LeaveGroupRequest/Response, PilotJoinedGroup, PilotLeftGroup,
    PilotsStatusRequest/Response.

 3. Shared state: FlightPlan, Waypoint, LatLng, FlightPlanUpdate, FlightPlanSync,
    WaypointSelection, TextMessage, ChatLogRequest/Response, PilotTelemetry.

JSON field names are snake_case. Payload structs carry go-playground/validator tags
which the relay checks before touching any registry.
*/
package models
