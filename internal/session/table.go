// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

// Package session tracks live connections and which pilot each one is
// authenticated as.
//
// A connection is opened unauthenticated. A successful login binds it to a pilot;
// registering alone does not. From then on it receives that pilot's group traffic.
// A pilot has at most one active session: logging in from a second connection takes
// the pilot over and demotes the first connection to unauthenticated. Closing a connection only
// removes the pilot binding if that connection still holds it.
package session

import (
	"sync"
	"time"

	"github.com/tomtom215/xcrelay/internal/models"
)

// Conn is the outbound half of a connection. Send must not block; it returns false
// when the message could not be queued.
type Conn interface {
	ID() uint64
	Send(env models.Envelope) bool
}

// Session is one live connection.
type Session struct {
	conn          Conn
	pilotID       string
	authenticated bool
	openedAt      time.Time
}

// Info is a read-only view of a session.
type Info struct {
	ConnID        uint64
	PilotID       string
	Authenticated bool
	OpenedAt      time.Time
}

// Table is the set of live sessions. It is safe for concurrent use.
type Table struct {
	mu      sync.RWMutex
	byConn  map[uint64]*Session
	byPilot map[string]*Session
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		byConn:  make(map[uint64]*Session),
		byPilot: make(map[string]*Session),
	}
}

// Open registers a new unauthenticated connection.
func (t *Table) Open(c Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byConn[c.ID()] = &Session{conn: c, openedAt: time.Now()}
}

// Authenticate binds connID to pilotID. If another connection held the pilot it is
// demoted and returned as replaced. ok is false for an unknown connection.
func (t *Table) Authenticate(connID uint64, pilotID string) (replaced Conn, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.byConn[connID]
	if !ok {
		return nil, false
	}

	// The connection switches identity: release its previous pilot.
	if s.authenticated && s.pilotID != pilotID && t.byPilot[s.pilotID] == s {
		delete(t.byPilot, s.pilotID)
	}

	if prev, held := t.byPilot[pilotID]; held && prev != s {
		prev.authenticated = false
		prev.pilotID = ""
		replaced = prev.conn
	}

	s.pilotID = pilotID
	s.authenticated = true
	t.byPilot[pilotID] = s
	return replaced, true
}

// Close removes a connection. It returns the pilot the connection was
// authenticated as, if any.
func (t *Table) Close(connID uint64) (pilotID string, wasAuthenticated bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.byConn[connID]
	if !ok {
		return "", false
	}
	delete(t.byConn, connID)
	if s.authenticated && t.byPilot[s.pilotID] == s {
		delete(t.byPilot, s.pilotID)
	}
	return s.pilotID, s.authenticated
}

// PilotOf returns the pilot connID is authenticated as.
func (t *Table) PilotOf(connID uint64) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.byConn[connID]
	if !ok || !s.authenticated {
		return "", false
	}
	return s.pilotID, true
}

// Get returns a view of the session for connID.
func (t *Table) Get(connID uint64) (Info, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.byConn[connID]
	if !ok {
		return Info{}, false
	}
	return Info{ConnID: connID, PilotID: s.pilotID, Authenticated: s.authenticated, OpenedAt: s.openedAt}, true
}

// Online reports for each ID whether an authenticated session exists.
func (t *Table) Online(pilotIDs []string) map[string]bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]bool, len(pilotIDs))
	for _, id := range pilotIDs {
		_, out[id] = t.byPilot[id]
	}
	return out
}

// SendTo queues env on the authenticated session of each pilot and returns how many
// accepted it. Pilots without a session are skipped.
func (t *Table) SendTo(pilotIDs []string, env models.Envelope) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, id := range pilotIDs {
		if s, ok := t.byPilot[id]; ok && s.conn.Send(env) {
			n++
		}
	}
	return n
}

// SendToPilot queues env on the pilot's authenticated session.
func (t *Table) SendToPilot(pilotID string, env models.Envelope) bool {
	return t.SendTo([]string{pilotID}, env) == 1
}

// Count returns the number of open connections and of authenticated sessions.
func (t *Table) Count() (connections, authenticated int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byConn), len(t.byPilot)
}
