// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package flightplan

import (
	"github.com/tomtom215/xcrelay/internal/models"
)

// Verdict is the result class of a reconciliation.
type Verdict int

const (
	// Unchanged means the action did not mutate the plan; nothing is sent.
	Unchanged Verdict = iota
	// Accepted means the update matched; the group adopts Outcome.Plan and the
	// update is relayed to the other members.
	Accepted
	// Rejected means the submitter diverged; it receives Outcome.Plan (the
	// unchanged current plan) and Outcome.Hash as a FlightPlanSync.
	Rejected
)

func (v Verdict) String() string {
	switch v {
	case Unchanged:
		return "unchanged"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// Outcome is the result of Reconcile. Plan and Hash always describe the plan the
// group holds after the call. Err is set when the action itself was malformed.
type Outcome struct {
	Verdict Verdict
	Plan    models.FlightPlan
	Hash    string
	Err     error
}

// Reconcile applies upd to a snapshot of current and compares the resulting hash
// with upd.Hash. current is never modified.
func Reconcile(current models.FlightPlan, upd models.FlightPlanUpdate, hash Hasher) Outcome {
	snapshot := current.Clone()

	changed, err := Apply(&snapshot, upd.Action, upd.Index, upd.Data, upd.NewIndex)
	if err != nil {
		return Outcome{Verdict: Rejected, Plan: current, Hash: hash(current), Err: err}
	}
	if !changed {
		return Outcome{Verdict: Unchanged, Plan: current, Hash: hash(current)}
	}

	if h := hash(snapshot); h == upd.Hash {
		return Outcome{Verdict: Accepted, Plan: snapshot, Hash: h}
	}
	return Outcome{Verdict: Rejected, Plan: current, Hash: hash(current)}
}
