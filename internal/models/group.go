// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package models

// GroupInfoRequest asks for a full snapshot of a group the caller belongs to.
type GroupInfoRequest struct {
	GroupID string `json:"group_id" validate:"required,groupid"`
}

// GroupInfoResponse is the full resync payload: members, plan, plan hash and
// waypoint selections.
type GroupInfoResponse struct {
	Status             Status                  `json:"status"`
	GroupID            string                  `json:"group_id,omitempty"`
	Pilots             []Pilot                 `json:"pilots,omitempty"`
	FlightPlan         *FlightPlan             `json:"flight_plan,omitempty"`
	Hash               string                  `json:"hash,omitempty"`
	WaypointSelections PilotWaypointSelections `json:"waypoint_selections,omitempty"`
}

// JoinGroupRequest targets a group ID or another pilot's ID.
type JoinGroupRequest struct {
	TargetID string `json:"target_id" validate:"required,max=64"`
}

// JoinGroupResponse carries the group the caller ended up in.
type JoinGroupResponse struct {
	Status  Status `json:"status"`
	GroupID string `json:"group_id,omitempty"`
}

// LeaveGroupRequest leaves the current group; PromptSplit moves the caller into a
// fresh solo group instead of leaving it groupless.
type LeaveGroupRequest struct {
	PromptSplit bool `json:"prompt_split"`
}

// LeaveGroupResponse carries the caller's new group, empty when none.
type LeaveGroupResponse struct {
	Status  Status `json:"status"`
	GroupID string `json:"group_id,omitempty"`
}

// PilotJoinedGroup notifies a group that Pilot joined GroupID.
type PilotJoinedGroup struct {
	Pilot   Pilot  `json:"pilot"`
	GroupID string `json:"group_id"`
}

// PilotLeftGroup notifies a group that PilotID left; NewGroupID is where the pilot
// went, empty if nowhere.
type PilotLeftGroup struct {
	PilotID    string `json:"pilot_id"`
	NewGroupID string `json:"new_group_id,omitempty"`
}

// PilotsStatusRequest asks which of the given pilots are online. IDs are not
// validated one by one: an unknown or malformed ID is simply reported offline.
type PilotsStatusRequest struct {
	PilotIDs []string `json:"pilot_ids" validate:"max=256"`
}

// PilotsStatusResponse maps each requested pilot ID to its online flag.
type PilotsStatusResponse struct {
	Status Status          `json:"status"`
	Pilots map[string]bool `json:"pilots"`
}
