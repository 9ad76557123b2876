// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/xcrelay/internal/group"
	"github.com/tomtom215/xcrelay/internal/identity"
	"github.com/tomtom215/xcrelay/internal/logging"
	"github.com/tomtom215/xcrelay/internal/models"
	"github.com/tomtom215/xcrelay/internal/session"
	"github.com/tomtom215/xcrelay/internal/validation"
	ws "github.com/tomtom215/xcrelay/internal/websocket"
)

// MaxStatusIDs caps the pilot IDs accepted by one pilot status query. It
// matches the max tag on models.PilotsStatusRequest.
const MaxStatusIDs = 256

// ActivityStatus reports the state of the optional activity feed.
type ActivityStatus interface {
	Connected() bool
	BreakerState() string
}

// Deps are the components the HTTP handlers read from.
type Deps struct {
	Identity *identity.Registry
	Groups   *group.Registry
	Sessions *session.Table
	Hub      *ws.Hub

	// Activity is nil when the NATS activity feed is disabled.
	Activity ActivityStatus

	// AllowedOrigins lists the Origin values accepted on /ws. "*" accepts any.
	AllowedOrigins []string
}

// Handler serves the operational HTTP surface and the /ws upgrade.
type Handler struct {
	deps      Deps
	startTime time.Time
}

// NewHandler creates a Handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps, startTime: time.Now()}
}

// HealthLive returns 200 while the process is alive.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// ReadyStatus is the readiness probe payload.
type ReadyStatus struct {
	Ready    bool            `json:"ready"`
	Hub      bool            `json:"hub"`
	Activity *ActivityHealth `json:"activity,omitempty"`
}

// ActivityHealth describes the activity feed connection.
type ActivityHealth struct {
	Connected bool   `json:"connected"`
	Breaker   string `json:"breaker"`
}

// HealthReady returns 200 while the hub accepts connections and 503 otherwise.
// The activity feed is reported but never fails readiness: relaying works
// without it.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	status := ReadyStatus{
		Hub: h.deps.Hub != nil && !h.deps.Hub.Stopped(),
	}
	status.Ready = status.Hub
	if h.deps.Activity != nil {
		status.Activity = &ActivityHealth{
			Connected: h.deps.Activity.Connected(),
			Breaker:   h.deps.Activity.BreakerState(),
		}
	}

	code := http.StatusOK
	if !status.Ready {
		code = http.StatusServiceUnavailable
	}
	NewResponseWriter(w, r).SuccessWithStatus(code, status)
}

// Stats is the /api/v1/stats payload.
type Stats struct {
	Pilots        int         `json:"pilots"`
	Groups        group.Stats `json:"groups"`
	Sessions      int         `json:"sessions"`
	Authenticated int         `json:"authenticated_sessions"`
	HubClients    int         `json:"hub_clients"`
	UptimeSeconds float64     `json:"uptime_seconds"`
}

// Stats reports registry and connection counts.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := Stats{
		Pilots:        h.deps.Identity.Count(),
		Groups:        h.deps.Groups.Stats(),
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	stats.Sessions, stats.Authenticated = h.deps.Sessions.Count()
	if h.deps.Hub != nil {
		stats.HubClients = h.deps.Hub.GetClientCount()
	}
	WriteSuccess(w, r, stats)
}

// PilotsStatus reports which of the comma-separated ids have an authenticated
// session. Unknown IDs are reported offline.
func (h *Handler) PilotsStatus(w http.ResponseWriter, r *http.Request) {
	ids := parseIDList(r.URL.Query().Get("ids"))
	if len(ids) == 0 {
		WriteBadRequest(w, r, "ids query parameter is required")
		return
	}
	if verr := validation.ValidateStruct(&models.PilotsStatusRequest{PilotIDs: ids}); verr != nil {
		apiErr := verr.ToAPIError()
		NewResponseWriter(w, r).ErrorWithDetails(http.StatusBadRequest, ErrCodeValidation, apiErr.Message, apiErr.Details)
		return
	}
	WriteSuccess(w, r, h.deps.Sessions.Online(ids))
}

func parseIDList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		ids = append(ids, p)
	}
	return ids
}

// getUpgrader creates a WebSocket upgrader with origin checking and a handshake timeout.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins. The flight apps
// are native clients that send no Origin header, so a missing Origin is accepted;
// browsers always send one and are held to the allow list.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.deps.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", sanitizeLogValue(truncate(origin, 200))).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades the request and hands the connection to the hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.deps.Hub == nil || h.deps.Hub.Stopped() {
		logging.Warn().Msg("WebSocket connection rejected: hub not running")
		NewResponseWriter(w, r).ServiceUnavailable("WebSocket service unavailable")
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.deps.Hub, conn, r.RemoteAddr)
	if !h.deps.Hub.Attach(client) {
		logging.Debug().Str("remote_addr", r.RemoteAddr).Msg("WebSocket connection dropped: hub stopped")
	}
}

// sanitizeLogValue escapes control characters so client input cannot forge log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
