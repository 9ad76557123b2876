// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package models

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

// Waypoint is a named point or polyline of a flight plan. Icon and Color are
// presentation hints that do not take part in the plan hash.
type Waypoint struct {
	Name     string   `json:"name" validate:"max=128"`
	LatLng   []LatLng `json:"latlng" validate:"required,min=1,max=4096,dive"`
	Optional bool     `json:"optional"`
	Icon     string   `json:"icon,omitempty" validate:"max=64"`
	Color    string   `json:"color,omitempty" validate:"max=32"`
}

// Clone returns a deep copy of the waypoint.
func (w Waypoint) Clone() Waypoint {
	c := w
	if w.LatLng != nil {
		c.LatLng = make([]LatLng, len(w.LatLng))
		copy(c.LatLng, w.LatLng)
	}
	return c
}

// FlightPlan is the ordered waypoint list shared by a group.
type FlightPlan struct {
	Name      string     `json:"name" validate:"max=128"`
	Waypoints []Waypoint `json:"waypoints" validate:"max=1024,dive"`
}

// Clone returns a deep copy of the plan.
func (p FlightPlan) Clone() FlightPlan {
	c := FlightPlan{Name: p.Name}
	if p.Waypoints != nil {
		c.Waypoints = make([]Waypoint, len(p.Waypoints))
		for i, wp := range p.Waypoints {
			c.Waypoints[i] = wp.Clone()
		}
	}
	return c
}

// WaypointAction names a single ordered mutation of a flight plan.
type WaypointAction string

const (
	ActionNone   WaypointAction = "none"
	ActionNew    WaypointAction = "new"
	ActionModify WaypointAction = "modify"
	ActionDelete WaypointAction = "delete"
	ActionSort   WaypointAction = "sort"
)

// Valid reports whether a is one of the known actions.
func (a WaypointAction) Valid() bool {
	switch a {
	case ActionNone, ActionNew, ActionModify, ActionDelete, ActionSort:
		return true
	}
	return false
}

// FlightPlanUpdate is one waypoint action plus the hash the submitter expects the
// plan to have afterwards. Accepted updates are relayed unchanged to the group.
type FlightPlanUpdate struct {
	Timestamp int64          `json:"timestamp"`
	Hash      string         `json:"hash" validate:"required,max=16"`
	Index     int            `json:"index" validate:"min=0"`
	NewIndex  *int           `json:"new_index,omitempty" validate:"omitempty,min=0"`
	Action    WaypointAction `json:"action" validate:"required,oneof=none new modify delete sort"`
	Data      *Waypoint      `json:"data,omitempty"`
}

// FlightPlanSync carries a whole plan. Clients send it to replace the group plan;
// the server sends it to repair a desynced client.
type FlightPlanSync struct {
	Timestamp  int64      `json:"timestamp"`
	Hash       string     `json:"hash,omitempty"`
	FlightPlan FlightPlan `json:"flight_plan"`
}
