// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package relay

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/xcrelay/internal/activity"
	"github.com/tomtom215/xcrelay/internal/group"
	"github.com/tomtom215/xcrelay/internal/identity"
	"github.com/tomtom215/xcrelay/internal/logging"
	"github.com/tomtom215/xcrelay/internal/metrics"
	"github.com/tomtom215/xcrelay/internal/models"
	"github.com/tomtom215/xcrelay/internal/session"
	"github.com/tomtom215/xcrelay/internal/validation"
	"github.com/tomtom215/xcrelay/internal/websocket"
)

// Outcome labels for relayed events.
const (
	outcomeRelayed = "relayed"
	outcomeDropped = "dropped"
)

// Conn is a live connection as seen by the dispatcher.
type Conn interface {
	session.Conn
	Context() context.Context
	RemoteAddr() string
}

// ActivitySink receives group activity for the optional activity feed.
type ActivitySink interface {
	Publish(ev activity.Event)
}

type handlerFunc func(d *Dispatcher, r *request) string

type route struct {
	fn   handlerFunc
	auth bool
}

// request is one inbound frame being handled.
type request struct {
	conn    Conn
	pilotID string
	env     models.Envelope
	log     zerolog.Logger
}

// Dispatcher handles every inbound frame. It implements websocket.Handler.
type Dispatcher struct {
	identity *identity.Registry
	groups   *group.Registry
	sessions *session.Table
	activity ActivitySink
	security *logging.SecurityLogger
	logger   zerolog.Logger
	routes   map[string]route
	now      func() time.Time
}

var _ websocket.Handler = (*Dispatcher)(nil)

// New creates a dispatcher over the given registries.
func New(ids *identity.Registry, groups *group.Registry, sessions *session.Table) *Dispatcher {
	d := &Dispatcher{
		identity: ids,
		groups:   groups,
		sessions: sessions,
		security: logging.NewSecurityLogger(),
		logger:   logging.WithComponent("relay"),
		now:      time.Now,
	}
	d.routes = map[string]route{
		models.EventRegisterRequest:      {fn: (*Dispatcher).handleRegister},
		models.EventLoginRequest:         {fn: (*Dispatcher).handleLogin},
		models.EventUpdateProfileRequest: {fn: (*Dispatcher).handleUpdateProfile},
		models.EventPilotsStatusRequest:  {fn: (*Dispatcher).handlePilotsStatus},
		models.EventGroupInfoRequest:     {fn: (*Dispatcher).handleGroupInfo, auth: true},
		models.EventChatLogRequest:       {fn: (*Dispatcher).handleChatLog, auth: true},
		models.EventJoinGroupRequest:     {fn: (*Dispatcher).handleJoinGroup, auth: true},
		models.EventLeaveGroupRequest:    {fn: (*Dispatcher).handleLeaveGroup, auth: true},

		models.EventTextMessage:             {fn: (*Dispatcher).handleTextMessage, auth: true},
		models.EventPilotTelemetry:          {fn: (*Dispatcher).handleTelemetry, auth: true},
		models.EventFlightPlanUpdate:        {fn: (*Dispatcher).handleFlightPlanUpdate, auth: true},
		models.EventFlightPlanSync:          {fn: (*Dispatcher).handleFlightPlanSync, auth: true},
		models.EventPilotWaypointSelections: {fn: (*Dispatcher).handleSelections, auth: true},
	}
	return d
}

// SetActivitySink enables the activity feed. A nil sink disables it.
func (d *Dispatcher) SetActivitySink(sink ActivitySink) {
	d.activity = sink
}

// Connect registers a new anonymous connection.
func (d *Dispatcher) Connect(c Conn) {
	d.sessions.Open(c)
	logging.Ctx(c.Context()).Debug().
		Uint64("conn_id", c.ID()).
		Str("remote_addr", c.RemoteAddr()).
		Msg("connection opened")
}

// Disconnect forgets the connection. Group membership is kept so the pilot can
// reconnect to the same group.
func (d *Dispatcher) Disconnect(c Conn) {
	pilotID, wasAuthenticated := d.sessions.Close(c.ID())
	ev := logging.Ctx(c.Context()).Debug().Uint64("conn_id", c.ID())
	if wasAuthenticated {
		ev = ev.Str("pilot_id", pilotID)
	}
	ev.Msg("connection closed")
}

// Handle processes one inbound text frame.
func (d *Dispatcher) Handle(c Conn, data []byte) {
	start := d.now()

	var env models.Envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
		logging.Ctx(c.Context()).Debug().Err(err).Uint64("conn_id", c.ID()).Msg("malformed frame")
		d.sendError(c, "", models.StatusMissingData, "malformed frame")
		metrics.RecordRelayEvent("malformed", models.StatusMissingData.String(), time.Since(start))
		return
	}

	rt, ok := d.routes[env.Type]
	if !ok {
		logging.Ctx(c.Context()).Debug().Str("event", env.Type).Msg("unknown event")
		d.sendError(c, env.Type, models.StatusUnknownError, "unknown event type")
		metrics.RecordRelayEvent("unknown", models.StatusUnknownError.String(), time.Since(start))
		return
	}

	pilotID, authenticated := d.sessions.PilotOf(c.ID())
	r := &request{
		conn:    c,
		pilotID: pilotID,
		env:     env,
		log:     logging.CtxWith(c.Context()).Str("event", env.Type).Str("pilot_id", pilotID).Logger(),
	}

	var outcome string
	if rt.auth && !authenticated {
		outcome = d.rejectAnonymous(r)
	} else {
		outcome = rt.fn(d, r)
	}
	metrics.RecordRelayEvent(env.Type, outcome, time.Since(start))
}

// rejectAnonymous answers requests from anonymous connections with
// invalid_secret_id and drops relayed events.
func (d *Dispatcher) rejectAnonymous(r *request) string {
	reply := models.ResponseEvent(r.env.Type)
	if reply == "" {
		r.log.Debug().Msg("dropping event from unauthenticated connection")
		return outcomeDropped
	}
	d.reply(r, reply, statusResponse{Status: models.StatusInvalidSecretID})
	return models.StatusInvalidSecretID.String()
}

// OnConnect implements websocket.Handler.
func (d *Dispatcher) OnConnect(c *websocket.Client) { d.Connect(c) }

// OnMessage implements websocket.Handler.
func (d *Dispatcher) OnMessage(c *websocket.Client, data []byte) { d.Handle(c, data) }

// OnDisconnect implements websocket.Handler.
func (d *Dispatcher) OnDisconnect(c *websocket.Client) { d.Disconnect(c) }

// statusResponse is the body sent when a request is refused before its handler runs.
type statusResponse struct {
	Status models.Status `json:"status"`
}

// decode unmarshals and validates the request payload.
func decode(env models.Envelope, v interface{}) models.Status {
	if err := env.Decode(v); err != nil {
		return models.StatusMissingData
	}
	if verr := validation.ValidateStruct(v); verr != nil {
		return validationStatus(verr)
	}
	return models.StatusSuccess
}

func validationStatus(verr *validation.RequestValidationError) models.Status {
	if verr.HasTag("groupid") || verr.HasTag("pilotid") {
		return models.StatusInvalidID
	}
	return models.StatusMissingData
}

// statusOf maps registry errors onto protocol status codes.
func statusOf(err error) models.Status {
	switch {
	case err == nil:
		return models.StatusSuccess
	case errors.Is(err, identity.ErrMissingName),
		errors.Is(err, identity.ErrInvalidProfile):
		return models.StatusMissingData
	case errors.Is(err, identity.ErrAlreadyRegistered),
		errors.Is(err, group.ErrGroupExists),
		errors.Is(err, group.ErrAlreadyMember),
		errors.Is(err, group.ErrNoGroup):
		return models.StatusNoOp
	case errors.Is(err, identity.ErrUnknownPilot),
		errors.Is(err, identity.ErrInvalidID),
		errors.Is(err, group.ErrInvalidID),
		errors.Is(err, group.ErrUnknownGroup):
		return models.StatusInvalidID
	case errors.Is(err, identity.ErrBadSecret):
		return models.StatusInvalidSecretID
	case errors.Is(err, group.ErrNotMember):
		return models.StatusDeniedGroupAccess
	default:
		return models.StatusUnknownError
	}
}

// reply sends a response on the requesting connection.
func (d *Dispatcher) reply(r *request, event string, payload interface{}) {
	env, err := models.NewEnvelope(event, payload)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to encode response")
		return
	}
	if !r.conn.Send(env) {
		r.log.Debug().Str("response", event).Msg("response not delivered")
	}
}

func (d *Dispatcher) sendError(c Conn, requestType string, status models.Status, msg string) {
	env, err := models.NewEnvelope(models.EventErrorResponse, models.ErrorResponse{
		Status:      status,
		RequestType: requestType,
		Message:     msg,
	})
	if err != nil {
		d.logger.Error().Err(err).Msg("failed to encode error response")
		return
	}
	c.Send(env)
}

// fanout encodes payload once and enqueues it for recipients.
func (d *Dispatcher) fanout(event string, payload interface{}, recipients []string) int {
	env, err := models.NewEnvelope(event, payload)
	if err != nil {
		d.logger.Error().Err(err).Str("event", event).Msg("failed to encode fan-out")
		return 0
	}
	return d.fanoutEnvelope(env, recipients)
}

func (d *Dispatcher) fanoutEnvelope(env models.Envelope, recipients []string) int {
	if len(recipients) == 0 {
		return 0
	}
	n := d.sessions.SendTo(recipients, env)
	metrics.RecordFanout(env.Type, n)
	return n
}

// publish forwards ev to the activity feed. Never call it with registry locks held.
func (d *Dispatcher) publish(ev activity.Event) {
	if d.activity == nil {
		return
	}
	d.activity.Publish(ev)
}
