// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

/*
Package relay routes inbound WebSocket frames to the identity, group and session
registries and fans the results out to the affected pilots.

Every frame is an envelope {"type": ..., "data": ...}. Request events get exactly one
response on the same connection carrying a status code. Relayed events (chat,
telemetry, flight plan and waypoint selections) get no response; they are delivered
to the other members of the sender's group.

Authentication:

A connection starts anonymous. Only RegisterRequest, LoginRequest,
UpdateProfileRequest and PilotsStatusRequest are accepted before a successful login.
Other requests are answered with invalid_secret_id, and relayed events from anonymous
connections are dropped. A second login for the same pilot takes the pilot over;
the older connection is demoted to anonymous.

Flight plans:

FlightPlanUpdate carries the hash the submitter expects after applying the action.
When it matches, the update is relayed as-is. When it does not, the group plan is
left untouched and the submitter alone receives a FlightPlanSync with the current
plan and hash.

Ordering:

Fan-out is enqueued while the group lock is held, so every member observes the events
of one group in the same order. Activity feed events are published after the locks
are released.
*/
package relay
