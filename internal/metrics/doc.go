// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are package-level globals registered with the default registry via
promauto, so any package can record without plumbing a registry through.

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

HTTP Metrics:
  - api_requests_total: Total HTTP requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
  - api_active_requests: Requests in flight (gauge)
  - api_rate_limit_hits_total: Requests rejected by httprate (counter)

WebSocket Metrics:
  - websocket_connections: Open connections (gauge)
  - websocket_messages_sent_total / websocket_messages_received_total (counter)
  - websocket_messages_dropped_total: Labels: reason (rate_limited, buffer_full)
  - websocket_errors_total: Labels: error_type

Relay Metrics:
  - relay_events_total: Inbound events. Labels: event, status
  - relay_dispatch_duration_seconds: Handling time per event (histogram)
  - relay_fanout_recipients: Sessions reached per group event (histogram)
  - relay_emergency_messages_total: Emergency chat messages (counter)

Flight Plan Metrics:
  - flightplan_updates_total: Labels: action, verdict (accepted, rejected, unchanged)
  - flightplan_syncs_total: Labels: direction (client, resync)

Registry Metrics:
  - identity_pilots_registered, groups_active, sessions_authenticated (gauge)
  - identity_logins_total: Labels: status
  - groups_reaped_total (counter)

Activity Feed Metrics:
  - activity_events_published_total / activity_publish_errors_total: Labels: kind
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open. Labels: name
  - circuit_breaker_state_transitions_total: Labels: name, from_state, to_state

# Usage Example

	metrics.RecordRelayEvent(models.EventJoinGroupRequest, status.String(), time.Since(start))
	metrics.RecordFanout(models.EventTextMessage, delivered)
*/
package metrics
