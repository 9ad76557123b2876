// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package relay

import (
	"github.com/tomtom215/xcrelay/internal/activity"
	"github.com/tomtom215/xcrelay/internal/flightplan"
	"github.com/tomtom215/xcrelay/internal/metrics"
	"github.com/tomtom215/xcrelay/internal/models"
	"github.com/tomtom215/xcrelay/internal/validation"
)

// dropped logs a relayed event that could not be delivered and returns its outcome label.
func dropped(r *request, reason string, err error) string {
	r.log.Debug().Err(err).Str("reason", reason).Msg("dropping relayed event")
	return outcomeDropped
}

func (d *Dispatcher) handleTextMessage(r *request) string {
	var msg models.TextMessage
	if st := decode(r.env, &msg); st != models.StatusSuccess {
		return dropped(r, st.String(), nil)
	}

	stored, err := d.groups.AppendChat(r.pilotID, msg, func(m models.TextMessage, recipients []string) {
		d.fanout(models.EventTextMessage, m, recipients)
	})
	if err != nil {
		return dropped(r, statusOf(err).String(), err)
	}

	if stored.Emergency {
		metrics.RelayEmergencyMessages.Inc()
		r.log.Warn().
			Str("group_id", stored.GroupID).
			Int("index", stored.Index).
			Msg("emergency message relayed")
	}
	d.publish(activity.Event{
		Kind:      activity.KindChat,
		GroupID:   stored.GroupID,
		PilotID:   r.pilotID,
		ChatIndex: stored.Index,
		Emergency: stored.Emergency,
	})
	return outcomeRelayed
}

func (d *Dispatcher) handleTelemetry(r *request) string {
	var t models.PilotTelemetry
	if st := decode(r.env, &t); st != models.StatusSuccess {
		return dropped(r, st.String(), nil)
	}
	t.PilotID = r.pilotID

	env, err := models.NewEnvelope(models.EventPilotTelemetry, t)
	if err != nil {
		return dropped(r, "encode", err)
	}
	err = d.groups.Broadcast(r.pilotID, func(_ string, recipients []string) {
		d.fanoutEnvelope(env, recipients)
	})
	if err != nil {
		return dropped(r, statusOf(err).String(), err)
	}
	return outcomeRelayed
}

// handleFlightPlanUpdate relays an update whose hash matches and repairs the
// submitter otherwise.
func (d *Dispatcher) handleFlightPlanUpdate(r *request) string {
	var upd models.FlightPlanUpdate
	if st := decode(r.env, &upd); st != models.StatusSuccess {
		r.log.Debug().Str("reason", st.String()).Msg("malformed flight plan update")
		d.resync(r)
		metrics.RecordPlanUpdate("invalid", flightplan.Rejected.String())
		return flightplan.Rejected.String()
	}

	out, err := d.groups.UpdatePlan(r.pilotID, upd, func(out flightplan.Outcome, recipients []string) {
		switch out.Verdict {
		case flightplan.Accepted:
			d.fanout(models.EventFlightPlanUpdate, upd, recipients)
		case flightplan.Rejected:
			d.sendSync(r, out.Plan, out.Hash)
		}
	})
	if err != nil {
		return dropped(r, statusOf(err).String(), err)
	}

	metrics.RecordPlanUpdate(string(upd.Action), out.Verdict.String())
	switch out.Verdict {
	case flightplan.Rejected:
		r.log.Debug().
			Err(out.Err).
			Str("expected_hash", upd.Hash).
			Str("group_hash", out.Hash).
			Msg("flight plan desync, sent full plan")
	case flightplan.Accepted:
		groupID, _ := d.groups.GroupOf(r.pilotID)
		d.publish(activity.Event{
			Kind:    activity.KindPlan,
			GroupID: groupID,
			PilotID: r.pilotID,
			Action:  string(upd.Action),
			Verdict: out.Verdict.String(),
			Hash:    out.Hash,
		})
	}
	return out.Verdict.String()
}

// resync sends the submitter the plan its group currently holds.
func (d *Dispatcher) resync(r *request) {
	groupID, ok := d.groups.GroupOf(r.pilotID)
	if !ok {
		return
	}
	snap, err := d.groups.Info(r.pilotID, groupID)
	if err != nil {
		return
	}
	d.sendSync(r, snap.Plan, snap.Hash)
}

func (d *Dispatcher) sendSync(r *request, plan models.FlightPlan, hash string) {
	d.reply(r, models.EventFlightPlanSync, models.FlightPlanSync{
		Timestamp:  d.now().UnixMilli(),
		Hash:       hash,
		FlightPlan: plan,
	})
}

func (d *Dispatcher) handleFlightPlanSync(r *request) string {
	var sync models.FlightPlanSync
	if st := decode(r.env, &sync); st != models.StatusSuccess {
		d.resync(r)
		return dropped(r, st.String(), nil)
	}

	hash, err := d.groups.SyncPlan(r.pilotID, sync.FlightPlan, func(hash string, recipients []string) {
		d.fanout(models.EventFlightPlanSync, models.FlightPlanSync{
			Timestamp:  sync.Timestamp,
			Hash:       hash,
			FlightPlan: sync.FlightPlan,
		}, recipients)
	})
	if err != nil {
		return dropped(r, statusOf(err).String(), err)
	}

	metrics.PlanSyncsTotal.WithLabelValues("client").Inc()
	groupID, _ := d.groups.GroupOf(r.pilotID)
	d.publish(activity.Event{
		Kind:    activity.KindPlan,
		GroupID: groupID,
		PilotID: r.pilotID,
		Action:  "sync",
		Verdict: flightplan.Accepted.String(),
		Hash:    hash,
	})
	return outcomeRelayed
}

// handleSelections accepts only the sender's own entry; entries for other pilots
// are ignored.
func (d *Dispatcher) handleSelections(r *request) string {
	var sels models.PilotWaypointSelections
	if err := r.env.Decode(&sels); err != nil {
		return dropped(r, models.StatusMissingData.String(), err)
	}
	sel, ok := sels[r.pilotID]
	if !ok {
		return dropped(r, "no entry for sender", nil)
	}
	if verr := validation.ValidateStruct(&sel); verr != nil {
		return dropped(r, validationStatus(verr).String(), verr)
	}

	err := d.groups.SetSelection(r.pilotID, sel, func(_ string, recipients []string) {
		d.fanout(models.EventPilotWaypointSelections, models.PilotWaypointSelections{r.pilotID: sel}, recipients)
	})
	if err != nil {
		return dropped(r, statusOf(err).String(), err)
	}
	return outcomeRelayed
}
