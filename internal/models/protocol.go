// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package models

import (
	"fmt"

	"github.com/goccy/go-json"
)

// ProtocolVersion is reported in every LoginResponse. Clients compare it with their
// own version and log a warning on mismatch; the server never refuses a client.
const ProtocolVersion = 5

// Client -> server requests.
const (
	EventRegisterRequest      = "RegisterRequest"
	EventLoginRequest         = "LoginRequest"
	EventUpdateProfileRequest = "UpdateProfileRequest"
	EventGroupInfoRequest     = "GroupInfoRequest"
	EventChatLogRequest       = "ChatLogRequest"
	EventJoinGroupRequest     = "JoinGroupRequest"
	EventLeaveGroupRequest    = "LeaveGroupRequest"
	EventPilotsStatusRequest  = "PilotsStatusRequest"
)

// Server -> client responses.
const (
	EventRegisterResponse      = "RegisterResponse"
	EventLoginResponse         = "LoginResponse"
	EventUpdateProfileResponse = "UpdateProfileResponse"
	EventGroupInfoResponse     = "GroupInfoResponse"
	EventChatLogResponse       = "ChatLogResponse"
	EventJoinGroupResponse     = "JoinGroupResponse"
	EventLeaveGroupResponse    = "LeaveGroupResponse"
	EventPilotsStatusResponse  = "PilotsStatusResponse"
	EventErrorResponse         = "ErrorResponse"
)

// Notifications and relayed events. The relayed ones travel in both directions.
const (
	EventPilotJoinedGroup        = "PilotJoinedGroup"
	EventPilotLeftGroup          = "PilotLeftGroup"
	EventTextMessage             = "TextMessage"
	EventPilotTelemetry          = "PilotTelemetry"
	EventFlightPlanSync          = "FlightPlanSync"
	EventFlightPlanUpdate        = "FlightPlanUpdate"
	EventPilotWaypointSelections = "PilotWaypointSelections"
)

// responseFor maps each request event to its response event.
var responseFor = map[string]string{
	EventRegisterRequest:      EventRegisterResponse,
	EventLoginRequest:         EventLoginResponse,
	EventUpdateProfileRequest: EventUpdateProfileResponse,
	EventGroupInfoRequest:     EventGroupInfoResponse,
	EventChatLogRequest:       EventChatLogResponse,
	EventJoinGroupRequest:     EventJoinGroupResponse,
	EventLeaveGroupRequest:    EventLeaveGroupResponse,
	EventPilotsStatusRequest:  EventPilotsStatusResponse,
}

// ResponseEvent returns the response event name for a request event, or "" if the
// event is not a request.
func ResponseEvent(requestEvent string) string {
	return responseFor[requestEvent]
}

// Status is the outcome code carried by every response.
type Status int

const (
	StatusSuccess Status = iota
	StatusUnknownError
	StatusInvalidID
	StatusInvalidSecretID
	StatusDeniedGroupAccess
	StatusMissingData
	StatusNoOp
)

var statusNames = [...]string{
	StatusSuccess:           "success",
	StatusUnknownError:      "unknown_error",
	StatusInvalidID:         "invalid_id",
	StatusInvalidSecretID:   "invalid_secret_id",
	StatusDeniedGroupAccess: "denied_group_access",
	StatusMissingData:       "missing_data",
	StatusNoOp:              "no_op",
}

// String implements fmt.Stringer for logging.
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// OK reports whether the status means the request was accepted. A no_op is an
// accepted, idempotent repeat.
func (s Status) OK() bool {
	return s == StatusSuccess || s == StatusNoOp
}

// Envelope is a single WebSocket frame.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals payload into an envelope of the given event type.
func NewEnvelope(eventType string, payload interface{}) (Envelope, error) {
	if payload == nil {
		return Envelope{Type: eventType}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{Type: eventType, Data: data}, nil
}

// Decode unmarshals the envelope payload into v.
func (e Envelope) Decode(v interface{}) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("%s: empty payload", e.Type)
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// ErrorResponse is sent when a frame cannot be routed at all (unknown event,
// undecodable payload).
type ErrorResponse struct {
	Status      Status `json:"status"`
	RequestType string `json:"request_type"`
	Message     string `json:"message,omitempty"`
}
