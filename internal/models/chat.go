// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package models

// TextMessage is a group chat message. Index and Timestamp (ms since epoch) are
// assigned by the server at append time; client-provided values are overwritten.
type TextMessage struct {
	Timestamp int64  `json:"timestamp"`
	Index     int    `json:"index"`
	GroupID   string `json:"group_id" validate:"required,groupid"`
	PilotID   string `json:"pilot_id"`
	Text      string `json:"text" validate:"required,max=4096"`
	Emergency bool   `json:"emergency,omitempty"`
}

// TimeWindow bounds a chat log query, both ends inclusive, in ms since epoch.
// A zero End means "up to now".
type TimeWindow struct {
	Start int64 `json:"start" validate:"min=0"`
	End   int64 `json:"end" validate:"min=0"`
}

// ChatLogRequest asks for the messages of a group within a time window.
type ChatLogRequest struct {
	GroupID    string     `json:"group_id" validate:"required,groupid"`
	TimeWindow TimeWindow `json:"time_window"`
}

// ChatLogResponse returns the requested slice of the chat log in index order.
type ChatLogResponse struct {
	Status  Status        `json:"status"`
	GroupID string        `json:"group_id,omitempty"`
	Msgs    []TextMessage `json:"msgs"`
}
