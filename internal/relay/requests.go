// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package relay

import (
	"github.com/tomtom215/xcrelay/internal/activity"
	"github.com/tomtom215/xcrelay/internal/group"
	"github.com/tomtom215/xcrelay/internal/identity"
	"github.com/tomtom215/xcrelay/internal/metrics"
	"github.com/tomtom215/xcrelay/internal/models"
)

func (d *Dispatcher) handleRegister(r *request) string {
	var req models.RegisterRequest
	if st := decode(r.env, &req); st != models.StatusSuccess {
		d.reply(r, models.EventRegisterResponse, models.RegisterResponse{Status: st})
		return st.String()
	}

	creds, err := d.identity.Register(req.Pilot.Name, req.Pilot.Avatar, req.Pilot.ID)
	st := statusOf(err)
	resp := models.RegisterResponse{Status: st}
	if err != nil {
		if st == models.StatusUnknownError {
			r.log.Error().Err(err).Msg("registration failed")
		}
		d.reply(r, models.EventRegisterResponse, resp)
		return st.String()
	}

	resp.PilotID = creds.PilotID
	resp.SecretID = creds.SecretID
	d.security.LogRegistration(creds.PilotID, req.Pilot.Name, r.conn.RemoteAddr(), req.Pilot.ID != "" && creds.PilotID == req.Pilot.ID)
	d.reply(r, models.EventRegisterResponse, resp)
	return st.String()
}

func (d *Dispatcher) handleLogin(r *request) string {
	var req models.LoginRequest
	if st := decode(r.env, &req); st != models.StatusSuccess {
		d.security.LogLoginFailure(req.PilotID, r.conn.RemoteAddr(), st.String())
		metrics.LoginsTotal.WithLabelValues(st.String()).Inc()
		d.reply(r, models.EventLoginResponse, models.LoginResponse{Status: st, APIVersion: models.ProtocolVersion})
		return st.String()
	}

	pilot, err := d.identity.Login(req.PilotID, req.SecretID)
	if err != nil {
		st := statusOf(err)
		d.security.LogLoginFailure(req.PilotID, r.conn.RemoteAddr(), st.String())
		metrics.LoginsTotal.WithLabelValues(st.String()).Inc()
		d.reply(r, models.EventLoginResponse, models.LoginResponse{Status: st, APIVersion: models.ProtocolVersion})
		return st.String()
	}

	replaced, ok := d.sessions.Authenticate(r.conn.ID(), pilot.ID)
	if !ok {
		r.log.Debug().Msg("login on a closed connection")
		return models.StatusUnknownError.String()
	}
	if replaced != nil {
		d.security.LogSessionReplaced(pilot.ID, replaced.ID(), r.conn.ID())
	}
	metrics.LoginsTotal.WithLabelValues(models.StatusSuccess.String()).Inc()
	d.security.LogLoginSuccess(pilot.ID, r.conn.ID(), r.conn.RemoteAddr())

	if req.APIVersion != 0 && req.APIVersion != models.ProtocolVersion {
		r.log.Warn().
			Int("client_version", req.APIVersion).
			Int("server_version", models.ProtocolVersion).
			Msg("client protocol version differs")
	}

	groupID, _ := d.groups.GroupOf(pilot.ID)
	d.reply(r, models.EventLoginResponse, models.LoginResponse{
		Status:     models.StatusSuccess,
		PilotID:    pilot.ID,
		Pilot:      &pilot,
		GroupID:    groupID,
		APIVersion: models.ProtocolVersion,
	})
	return models.StatusSuccess.String()
}

// handleUpdateProfile authenticates with the pilot ID and secret in the request, so
// it does not need a logged-in connection.
func (d *Dispatcher) handleUpdateProfile(r *request) string {
	var req models.UpdateProfileRequest
	st := decode(r.env, &req)
	if st == models.StatusSuccess && req.Pilot.ID == "" {
		st = models.StatusInvalidID
	}
	if st != models.StatusSuccess {
		d.reply(r, models.EventUpdateProfileResponse, models.UpdateProfileResponse{Status: st})
		return st.String()
	}

	var upd identity.ProfileUpdate
	if req.Pilot.Name != "" {
		name := req.Pilot.Name
		upd.Name = &name
	}
	if req.Pilot.Avatar != "" {
		avatar := req.Pilot.Avatar
		upd.Avatar = &avatar
	}
	if upd.Name == nil && upd.Avatar == nil {
		d.reply(r, models.EventUpdateProfileResponse, models.UpdateProfileResponse{Status: models.StatusMissingData})
		return models.StatusMissingData.String()
	}

	_, err := d.identity.UpdateProfile(req.Pilot.ID, req.SecretID, upd)
	st = statusOf(err)
	reason := ""
	if err != nil {
		reason = st.String()
	}
	d.security.LogProfileUpdate(req.Pilot.ID, err == nil, reason)
	d.reply(r, models.EventUpdateProfileResponse, models.UpdateProfileResponse{Status: st})
	return st.String()
}

func (d *Dispatcher) handlePilotsStatus(r *request) string {
	var req models.PilotsStatusRequest
	if st := decode(r.env, &req); st != models.StatusSuccess {
		d.reply(r, models.EventPilotsStatusResponse, models.PilotsStatusResponse{Status: st, Pilots: map[string]bool{}})
		return st.String()
	}
	d.reply(r, models.EventPilotsStatusResponse, models.PilotsStatusResponse{
		Status: models.StatusSuccess,
		Pilots: d.sessions.Online(req.PilotIDs),
	})
	return models.StatusSuccess.String()
}

func (d *Dispatcher) handleGroupInfo(r *request) string {
	var req models.GroupInfoRequest
	if st := decode(r.env, &req); st != models.StatusSuccess {
		d.reply(r, models.EventGroupInfoResponse, models.GroupInfoResponse{Status: st})
		return st.String()
	}

	snap, err := d.groups.Info(r.pilotID, req.GroupID)
	if err != nil {
		st := statusOf(err)
		d.reply(r, models.EventGroupInfoResponse, models.GroupInfoResponse{Status: st, GroupID: group.NormalizeID(req.GroupID)})
		return st.String()
	}

	pilots := make([]models.Pilot, 0, len(snap.Members))
	for _, id := range snap.Members {
		p, ok := d.identity.Get(id)
		if !ok {
			p = models.Pilot{ID: id}
		}
		pilots = append(pilots, p)
	}
	d.reply(r, models.EventGroupInfoResponse, models.GroupInfoResponse{
		Status:             models.StatusSuccess,
		GroupID:            snap.ID,
		Pilots:             pilots,
		FlightPlan:         &snap.Plan,
		Hash:               snap.Hash,
		WaypointSelections: snap.Selections,
	})
	return models.StatusSuccess.String()
}

func (d *Dispatcher) handleChatLog(r *request) string {
	var req models.ChatLogRequest
	if st := decode(r.env, &req); st != models.StatusSuccess {
		d.reply(r, models.EventChatLogResponse, models.ChatLogResponse{Status: st, Msgs: []models.TextMessage{}})
		return st.String()
	}

	msgs, err := d.groups.ChatWindow(r.pilotID, req.GroupID, req.TimeWindow.Start, req.TimeWindow.End)
	st := statusOf(err)
	if msgs == nil {
		msgs = []models.TextMessage{}
	}
	d.reply(r, models.EventChatLogResponse, models.ChatLogResponse{
		Status:  st,
		GroupID: group.NormalizeID(req.GroupID),
		Msgs:    msgs,
	})
	return st.String()
}

func (d *Dispatcher) handleJoinGroup(r *request) string {
	var req models.JoinGroupRequest
	if st := decode(r.env, &req); st != models.StatusSuccess {
		d.reply(r, models.EventJoinGroupResponse, models.JoinGroupResponse{Status: st})
		return st.String()
	}

	pilot, ok := d.identity.Get(r.pilotID)
	if !ok {
		pilot = models.Pilot{ID: r.pilotID}
	}

	res, err := d.groups.Join(r.pilotID, req.TargetID, func(res group.JoinResult) {
		if res.PreviousGroupID != "" {
			d.fanout(models.EventPilotLeftGroup, models.PilotLeftGroup{
				PilotID:    res.PilotID,
				NewGroupID: res.GroupID,
			}, res.PreviousMembers)
		}
		d.fanout(models.EventPilotJoinedGroup, models.PilotJoinedGroup{
			Pilot:   pilot,
			GroupID: res.GroupID,
		}, res.Members)
	})
	st := statusOf(err)
	d.reply(r, models.EventJoinGroupResponse, models.JoinGroupResponse{Status: st, GroupID: res.GroupID})
	if err != nil {
		if st == models.StatusUnknownError {
			r.log.Error().Err(err).Msg("join failed")
		}
		return st.String()
	}

	r.log.Info().
		Str("group_id", res.GroupID).
		Str("previous_group_id", res.PreviousGroupID).
		Bool("created", res.Created).
		Msg("pilot joined group")
	d.publish(activity.Event{
		Kind:            activity.KindJoined,
		GroupID:         res.GroupID,
		PilotID:         res.PilotID,
		PreviousGroupID: res.PreviousGroupID,
		Created:         res.Created,
	})
	return st.String()
}

func (d *Dispatcher) handleLeaveGroup(r *request) string {
	var req models.LeaveGroupRequest
	if len(r.env.Data) > 0 {
		if st := decode(r.env, &req); st != models.StatusSuccess {
			d.reply(r, models.EventLeaveGroupResponse, models.LeaveGroupResponse{Status: st})
			return st.String()
		}
	}

	res, err := d.groups.Leave(r.pilotID, req.PromptSplit, func(res group.LeaveResult) {
		d.fanout(models.EventPilotLeftGroup, models.PilotLeftGroup{
			PilotID:    res.PilotID,
			NewGroupID: res.NewGroupID,
		}, res.RemainingMembers)
	})
	st := statusOf(err)
	d.reply(r, models.EventLeaveGroupResponse, models.LeaveGroupResponse{Status: st, GroupID: res.NewGroupID})
	if err != nil {
		return st.String()
	}

	r.log.Info().
		Str("group_id", res.GroupID).
		Str("new_group_id", res.NewGroupID).
		Msg("pilot left group")
	d.publish(activity.Event{
		Kind:       activity.KindLeft,
		GroupID:    res.GroupID,
		PilotID:    res.PilotID,
		NewGroupID: res.NewGroupID,
	})
	return st.String()
}
