// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package group

import (
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/xcrelay/internal/models"
)

// Group is the shared state of one group. All fields are guarded by mu.
type Group struct {
	id string

	mu         sync.Mutex
	members    map[string]struct{}
	chat       []models.TextMessage
	nextIndex  int
	lastStamp  int64
	plan       models.FlightPlan
	planHash   string
	selections models.PilotWaypointSelections
	emptySince time.Time
}

func newGroup(id, planHash string, now time.Time) *Group {
	return &Group{
		id:         id,
		members:    make(map[string]struct{}),
		planHash:   planHash,
		selections: make(models.PilotWaypointSelections),
		emptySince: now,
	}
}

// memberList returns the members sorted by ID, excluding skip. Caller holds g.mu or
// the registry write lock.
func (g *Group) memberList(skip string) []string {
	out := make([]string, 0, len(g.members))
	for id := range g.members {
		if id != skip {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func (g *Group) add(pilotID string) {
	g.members[pilotID] = struct{}{}
	g.emptySince = time.Time{}
}

func (g *Group) remove(pilotID string, now time.Time) {
	delete(g.members, pilotID)
	delete(g.selections, pilotID)
	if len(g.members) == 0 {
		g.emptySince = now
	}
}

// appendChat stamps msg with the next index and a timestamp that never goes
// backwards, then trims the log to maxLen entries.
func (g *Group) appendChat(msg models.TextMessage, now time.Time, maxLen int) models.TextMessage {
	ts := now.UnixMilli()
	if ts < g.lastStamp {
		ts = g.lastStamp
	}
	g.lastStamp = ts

	msg.Timestamp = ts
	msg.Index = g.nextIndex
	msg.GroupID = g.id
	g.nextIndex++

	g.chat = append(g.chat, msg)
	if maxLen > 0 && len(g.chat) > maxLen {
		trimmed := make([]models.TextMessage, maxLen)
		copy(trimmed, g.chat[len(g.chat)-maxLen:])
		g.chat = trimmed
	}
	return msg
}

// Window returns the messages of log whose timestamp lies in [start, end]. log must
// be sorted by timestamp. The result is a copy.
func Window(log []models.TextMessage, start, end int64) []models.TextMessage {
	lo := sort.Search(len(log), func(i int) bool { return log[i].Timestamp >= start })
	hi := sort.Search(len(log), func(i int) bool { return log[i].Timestamp > end })
	if lo >= hi {
		return []models.TextMessage{}
	}
	out := make([]models.TextMessage, hi-lo)
	copy(out, log[lo:hi])
	return out
}

// Snapshot is a consistent copy of a group's state.
type Snapshot struct {
	ID         string
	Members    []string
	Plan       models.FlightPlan
	Hash       string
	Selections models.PilotWaypointSelections
}

func (g *Group) snapshot() Snapshot {
	sel := make(models.PilotWaypointSelections, len(g.selections))
	for k, v := range g.selections {
		sel[k] = v
	}
	return Snapshot{
		ID:         g.id,
		Members:    g.memberList(""),
		Plan:       g.plan.Clone(),
		Hash:       g.planHash,
		Selections: sel,
	}
}
