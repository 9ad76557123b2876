// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

/*
Package activity publishes a feed of group events to NATS.

The feed is optional and one-way: the relay never consumes it. Dashboards,
archivers or alerting hooks subscribe to subjects of the form

	<prefix>.group.joined
	<prefix>.group.left
	<prefix>.group.plan
	<prefix>.group.chat

with the default prefix "xcrelay". Payloads are JSON-encoded Event values.
Chat events carry the message index and emergency flag, never the text.

# Delivery

Publish only enqueues. A Publisher's Run loop drains the queue and sends each
event through a gobreaker circuit breaker, so a broker outage costs one fast
failure per event instead of stalling the relay. When the queue is full the
event is dropped and counted in activity_publish_errors_total.

# Embedded Broker

Single-node deployments can set nats.embedded to start an in-process
nats-server; NewEmbeddedServer returns its client URL for the publisher and
for local subscribers.
*/
package activity
