// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package activity

import "time"

// Kind names an activity event and forms the subject suffix.
type Kind string

const (
	KindJoined Kind = "group.joined"
	KindLeft   Kind = "group.left"
	KindPlan   Kind = "group.plan"
	KindChat   Kind = "group.chat"
)

// Event is one entry of the activity feed.
type Event struct {
	Kind      Kind      `json:"kind"`
	GroupID   string    `json:"group_id"`
	PilotID   string    `json:"pilot_id"`
	Timestamp time.Time `json:"timestamp"`

	// Membership
	PreviousGroupID string `json:"previous_group_id,omitempty"`
	NewGroupID      string `json:"new_group_id,omitempty"`
	Created         bool   `json:"created,omitempty"`

	// Flight plan
	Action  string `json:"action,omitempty"`
	Verdict string `json:"verdict,omitempty"`
	Hash    string `json:"hash,omitempty"`

	// Chat
	ChatIndex int  `json:"chat_index,omitempty"`
	Emergency bool `json:"emergency,omitempty"`
}

// Subject returns the NATS subject for kind under prefix.
func Subject(prefix string, kind Kind) string {
	if prefix == "" {
		return string(kind)
	}
	return prefix + "." + string(kind)
}
