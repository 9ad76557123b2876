// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the relay:
// - HTTP endpoint latency and throughput
// - WebSocket connections and frame counts
// - Relay dispatch per event type and fan-out size
// - Flight plan reconciliation verdicts
// - Registry sizes
// - Activity feed publishing and its circuit breaker

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
	)

	WSMessagesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "Total number of WebSocket messages dropped",
		},
		[]string{"reason"}, // "rate_limited", "buffer_full"
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Relay Metrics
	RelayEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_events_total",
			Help: "Total number of inbound relay events by type and outcome status",
		},
		[]string{"event", "status"},
	)

	RelayDispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_dispatch_duration_seconds",
			Help:    "Time spent handling one inbound relay event",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"event"},
	)

	RelayFanoutRecipients = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_fanout_recipients",
			Help:    "Number of sessions a group event was delivered to",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"event"},
	)

	RelayEmergencyMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_emergency_messages_total",
			Help: "Total number of chat messages flagged as emergency",
		},
	)

	// Flight Plan Metrics
	PlanUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightplan_updates_total",
			Help: "Total number of flight plan updates by action and verdict",
		},
		[]string{"action", "verdict"}, // verdict: "accepted", "rejected", "unchanged"
	)

	PlanSyncsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightplan_syncs_total",
			Help: "Total number of whole-plan syncs",
		},
		[]string{"direction"}, // "client" (replace), "resync" (server repair)
	)

	// Registry Metrics
	PilotsRegistered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "identity_pilots_registered",
			Help: "Current number of registered pilots",
		},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identity_logins_total",
			Help: "Total number of login attempts",
		},
		[]string{"status"},
	)

	GroupsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "groups_active",
			Help: "Current number of groups, including empty groups awaiting reaping",
		},
	)

	GroupsReaped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "groups_reaped_total",
			Help: "Total number of empty groups removed by the reaper",
		},
	)

	SessionsAuthenticated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_authenticated",
			Help: "Current number of authenticated sessions",
		},
	)

	// Activity Feed Metrics
	ActivityPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_events_published_total",
			Help: "Total number of activity events published to NATS",
		},
		[]string{"kind"},
	)

	ActivityPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_publish_errors_total",
			Help: "Total number of failed activity publishes",
		},
		[]string{"kind"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRelayEvent records the handling of one inbound event.
func RecordRelayEvent(event, status string, duration time.Duration) {
	RelayEventsTotal.WithLabelValues(event, status).Inc()
	RelayDispatchDuration.WithLabelValues(event).Observe(duration.Seconds())
}

// RecordFanout records how many sessions received a group event.
func RecordFanout(event string, delivered int) {
	RelayFanoutRecipients.WithLabelValues(event).Observe(float64(delivered))
}

// RecordPlanUpdate records a reconciliation verdict.
func RecordPlanUpdate(action, verdict string) {
	PlanUpdatesTotal.WithLabelValues(action, verdict).Inc()
	if verdict == "rejected" {
		PlanSyncsTotal.WithLabelValues("resync").Inc()
	}
}

// RecordDropped records a WebSocket message that was not delivered.
func RecordDropped(reason string) {
	WSMessagesDropped.WithLabelValues(reason).Inc()
}

// UpdateRegistryGauges refreshes the registry size gauges.
func UpdateRegistryGauges(pilots, groups, authenticatedSessions int) {
	PilotsRegistered.Set(float64(pilots))
	GroupsActive.Set(float64(groups))
	SessionsAuthenticated.Set(float64(authenticatedSessions))
}

// RecordActivityPublish records the result of an activity feed publish.
func RecordActivityPublish(kind string, err error) {
	if err != nil {
		ActivityPublishErrors.WithLabelValues(kind).Inc()
		return
	}
	ActivityPublished.WithLabelValues(kind).Inc()
}

// RecordCircuitBreakerTransition records a breaker state change. States follow
// gobreaker's numbering: 0=closed, 1=half-open, 2=open.
func RecordCircuitBreakerTransition(name string, to int, fromName, toName string) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(to))
	CircuitBreakerTransitions.WithLabelValues(name, fromName, toName).Inc()
}

// SetAppInfo publishes the build version.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}
