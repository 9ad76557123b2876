// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package flightplan

import (
	"errors"
	"fmt"

	"github.com/tomtom215/xcrelay/internal/models"
)

var (
	// ErrIndexOutOfRange is returned when an action addresses a waypoint that does not exist.
	ErrIndexOutOfRange = errors.New("waypoint index out of range")
	// ErrMissingData is returned for a new action without a waypoint.
	ErrMissingData = errors.New("waypoint data missing")
	// ErrUnknownAction is returned for actions outside the known set.
	ErrUnknownAction = errors.New("unknown waypoint action")
)

// Apply performs one waypoint action on plan in place and reports whether the plan
// changed. On error the plan is left untouched.
//
//   - new: insert data at index, 0 <= index <= len
//   - delete: remove the waypoint at index
//   - modify: replace the waypoint at index with data; nil data does nothing
//   - sort: move the waypoint at index so it ends up at newIndex; a move onto
//     itself still counts as a change so the client hash gets checked
//   - none: does nothing
func Apply(plan *models.FlightPlan, action models.WaypointAction, index int, data *models.Waypoint, newIndex *int) (bool, error) {
	n := len(plan.Waypoints)

	switch action {
	case models.ActionNone:
		return false, nil

	case models.ActionNew:
		if data == nil {
			return false, ErrMissingData
		}
		if index < 0 || index > n {
			return false, fmt.Errorf("new at %d of %d: %w", index, n, ErrIndexOutOfRange)
		}
		wps := make([]models.Waypoint, 0, n+1)
		wps = append(wps, plan.Waypoints[:index]...)
		wps = append(wps, data.Clone())
		wps = append(wps, plan.Waypoints[index:]...)
		plan.Waypoints = wps
		return true, nil

	case models.ActionDelete:
		if index < 0 || index >= n {
			return false, fmt.Errorf("delete at %d of %d: %w", index, n, ErrIndexOutOfRange)
		}
		plan.Waypoints = append(plan.Waypoints[:index:index], plan.Waypoints[index+1:]...)
		return true, nil

	case models.ActionModify:
		if data == nil {
			return false, nil
		}
		if index < 0 || index >= n {
			return false, fmt.Errorf("modify at %d of %d: %w", index, n, ErrIndexOutOfRange)
		}
		plan.Waypoints[index] = data.Clone()
		return true, nil

	case models.ActionSort:
		if newIndex == nil {
			return false, ErrMissingData
		}
		to := *newIndex
		if index < 0 || index >= n || to < 0 || to >= n {
			return false, fmt.Errorf("sort %d -> %d of %d: %w", index, to, n, ErrIndexOutOfRange)
		}
		moved := plan.Waypoints[index]
		wps := make([]models.Waypoint, 0, n)
		wps = append(wps, plan.Waypoints[:index]...)
		wps = append(wps, plan.Waypoints[index+1:]...)
		wps = append(wps[:to], append([]models.Waypoint{moved}, wps[to:]...)...)
		plan.Waypoints = wps
		return true, nil

	default:
		return false, fmt.Errorf("%q: %w", action, ErrUnknownAction)
	}
}
