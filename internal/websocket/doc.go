// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

/*
Package websocket provides the connection layer of the relay: a hub that owns
the set of live WebSocket clients and the per-client read and write pumps.

# Architecture

	HTTP /ws upgrade -> NewClient -> Hub.Attach
	                                   |
	                       Hub goroutine: Register -> Handler.OnConnect -> Client.Start
	                                   |
	   readPump (one per client) ------+---> Handler.OnMessage(client, frame)
	   writePump (one per client) <----- Client.Send(envelope) from any goroutine
	                                   |
	                       Hub goroutine: Unregister -> Handler.OnDisconnect

The hub does not route messages. The relay dispatcher holds *Client values
through its session table and calls Send directly; Send never blocks.

# Message Format

Every frame is a JSON text message:

	{"type": "TextMessage", "data": {"group_id": "XK42PQ", "text": "thermal at the ridge"}}

Binary frames are ignored.

# Flow Control

  - Inbound: frames larger than Config.MaxMessageSize close the connection;
    frames beyond the per-client token bucket (Config.MessagesPerSecond,
    Config.MessageBurst) are dropped and counted.
  - Outbound: each client has a queue of Config.SendBuffer envelopes. When it
    fills, the client is considered too slow and is disconnected; it recovers
    state with GroupInfoRequest after reconnecting.

# Keepalive

The server pings every 54 seconds and expects a pong within 60 seconds. Writes
time out after 10 seconds.

# Lifecycle

RunWithContext is meant to run under the supervisor tree. When its context is
canceled it closes every client (OnDisconnect is called for each) and returns
the context error. Attach fails once the hub has stopped.
*/
package websocket
