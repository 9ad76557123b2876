// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package group

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/xcrelay/internal/flightplan"
	"github.com/tomtom215/xcrelay/internal/logging"
	"github.com/tomtom215/xcrelay/internal/models"
)

// PilotDirectory answers whether a pilot ID is registered. identity.Registry
// satisfies it.
type PilotDirectory interface {
	Exists(pilotID string) bool
}

// Config controls group creation and retention.
type Config struct {
	// MinIDLength is the minimum length of a client-requested group ID.
	MinIDLength int

	// GeneratedIDLength is the length of server-generated group IDs.
	GeneratedIDLength int

	// AllowImplicitCreate lets a join target that names no group or pilot create
	// a group with that ID.
	AllowImplicitCreate bool

	// EmptyTTL is how long an empty group is kept before Reap removes it.
	EmptyTTL time.Duration

	// MaxChatLog bounds the chat log of each group. Zero keeps everything.
	MaxChatLog int

	// Hasher computes flight plan hashes. Defaults to flightplan.HashLegacy.
	Hasher flightplan.Hasher
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		MinIDLength:         6,
		GeneratedIDLength:   8,
		AllowImplicitCreate: true,
		EmptyTTL:            10 * time.Minute,
		MaxChatLog:          500,
		Hasher:              flightplan.HashLegacy,
	}
}

// Stats is a point-in-time summary of the registry.
type Stats struct {
	Groups        int `json:"groups"`
	EmptyGroups   int `json:"empty_groups"`
	GroupedPilots int `json:"grouped_pilots"`
}

// Registry holds all groups and the pilot -> group index.
type Registry struct {
	cfg    Config
	pilots PilotDirectory
	logger zerolog.Logger
	now    func() time.Time

	mu         sync.RWMutex
	groups     map[string]*Group
	pilotGroup map[string]string
}

// NewRegistry creates an empty registry. pilots resolves join targets that name a pilot.
func NewRegistry(cfg Config, pilots PilotDirectory) *Registry {
	def := DefaultConfig()
	if cfg.MinIDLength <= 0 {
		cfg.MinIDLength = def.MinIDLength
	}
	if cfg.GeneratedIDLength < cfg.MinIDLength {
		cfg.GeneratedIDLength = max(def.GeneratedIDLength, cfg.MinIDLength)
	}
	if cfg.Hasher == nil {
		cfg.Hasher = def.Hasher
	}
	return &Registry{
		cfg:        cfg,
		pilots:     pilots,
		logger:     logging.WithComponent("group"),
		now:        time.Now,
		groups:     make(map[string]*Group),
		pilotGroup: make(map[string]string),
	}
}

// Create registers an empty group. With an empty requestedID a fresh ID is
// generated; otherwise the normalized requestedID must be valid and unused.
func (r *Registry) Create(requestedID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, err := r.createLocked(requestedID)
	if err != nil {
		return "", err
	}
	return g.id, nil
}

// createLocked requires r.mu held for writing.
func (r *Registry) createLocked(requestedID string) (*Group, error) {
	id := NormalizeID(requestedID)
	if id == "" {
		var err error
		for {
			id, err = generateID(r.cfg.GeneratedIDLength)
			if err != nil {
				return nil, fmt.Errorf("generate group id: %w", err)
			}
			if _, taken := r.groups[id]; !taken {
				break
			}
		}
	} else {
		if !ValidID(id, r.cfg.MinIDLength) {
			return nil, fmt.Errorf("%q: %w", requestedID, ErrInvalidID)
		}
		if _, taken := r.groups[id]; taken {
			return nil, ErrGroupExists
		}
	}

	g := newGroup(id, r.cfg.Hasher(models.FlightPlan{}), r.now())
	r.groups[id] = g
	r.logger.Debug().Str("group_id", id).Msg("group created")
	return g, nil
}

// JoinResult describes a completed membership change.
type JoinResult struct {
	PilotID string
	GroupID string
	Created bool

	// PreviousGroupID is the group the pilot left, empty if none.
	PreviousGroupID string

	// PreviousMembers are the members remaining in the previous group.
	PreviousMembers []string

	// Members are the members of the joined group other than the pilot.
	Members []string
}

// Join moves pilotID into the group named by target. On ErrAlreadyMember the
// result still carries the current GroupID. emit runs under the registry lock.
func (r *Registry) Join(pilotID, target string, emit func(JoinResult)) (JoinResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := JoinResult{PilotID: pilotID}
	current := r.pilotGroup[pilotID]

	if target == pilotID {
		if current == "" {
			return res, fmt.Errorf("cannot join self without a group: %w", ErrInvalidID)
		}
		res.GroupID = current
		return res, ErrAlreadyMember
	}

	dest, created, err := r.resolveTargetLocked(pilotID, target)
	if err != nil {
		return res, err
	}
	if dest.id == current {
		res.GroupID = current
		return res, ErrAlreadyMember
	}

	if current != "" {
		old := r.groups[current]
		old.remove(pilotID, r.now())
		res.PreviousGroupID = current
		res.PreviousMembers = old.memberList("")
	}
	dest.add(pilotID)
	r.pilotGroup[pilotID] = dest.id

	res.GroupID = dest.id
	res.Created = created
	res.Members = dest.memberList(pilotID)

	r.logger.Debug().
		Str("pilot_id", pilotID).
		Str("group_id", dest.id).
		Str("previous_group_id", res.PreviousGroupID).
		Bool("created", created).
		Msg("pilot joined group")

	if emit != nil {
		emit(res)
	}
	return res, nil
}

// resolveTargetLocked requires r.mu held for writing. A group created for a pilot
// target already contains that pilot.
func (r *Registry) resolveTargetLocked(pilotID, target string) (*Group, bool, error) {
	if g, ok := r.groups[NormalizeID(target)]; ok {
		return g, false, nil
	}

	if r.pilots != nil && r.pilots.Exists(target) {
		if gid, ok := r.pilotGroup[target]; ok {
			return r.groups[gid], false, nil
		}
		g, err := r.createLocked("")
		if err != nil {
			return nil, false, err
		}
		g.add(target)
		r.pilotGroup[target] = g.id
		return g, true, nil
	}

	if r.cfg.AllowImplicitCreate && ValidID(NormalizeID(target), r.cfg.MinIDLength) {
		g, err := r.createLocked(target)
		if err != nil {
			return nil, false, err
		}
		return g, true, nil
	}

	return nil, false, fmt.Errorf("join target %q: %w", target, ErrInvalidID)
}

// LeaveResult describes a completed leave.
type LeaveResult struct {
	PilotID string

	// GroupID is the group that was left.
	GroupID string

	// RemainingMembers are the members still in GroupID.
	RemainingMembers []string

	// NewGroupID is the solo group created on split, empty otherwise.
	NewGroupID string
}

// Leave removes pilotID from its group. With split the pilot is placed in a fresh
// solo group. emit runs under the registry lock.
func (r *Registry) Leave(pilotID string, split bool, emit func(LeaveResult)) (LeaveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := LeaveResult{PilotID: pilotID}
	current, ok := r.pilotGroup[pilotID]
	if !ok {
		return res, ErrNoGroup
	}

	var solo *Group
	if split {
		var err error
		if solo, err = r.createLocked(""); err != nil {
			return res, err
		}
	}

	old := r.groups[current]
	old.remove(pilotID, r.now())
	delete(r.pilotGroup, pilotID)
	res.GroupID = current
	res.RemainingMembers = old.memberList("")

	if solo != nil {
		solo.add(pilotID)
		r.pilotGroup[pilotID] = solo.id
		res.NewGroupID = solo.id
	}

	r.logger.Debug().
		Str("pilot_id", pilotID).
		Str("group_id", current).
		Str("new_group_id", res.NewGroupID).
		Msg("pilot left group")

	if emit != nil {
		emit(res)
	}
	return res, nil
}

// GroupOf returns the group of pilotID.
func (r *Registry) GroupOf(pilotID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gid, ok := r.pilotGroup[pilotID]
	return gid, ok
}

// Members returns the sorted member IDs of a group.
func (r *Registry) Members(groupID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[NormalizeID(groupID)]
	if !ok {
		return nil, ErrUnknownGroup
	}
	return g.memberList(""), nil
}

// Exists reports whether a group is registered.
func (r *Registry) Exists(groupID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.groups[NormalizeID(groupID)]
	return ok
}

// Info returns a snapshot of groupID for one of its members.
func (r *Registry) Info(pilotID, groupID string) (Snapshot, error) {
	var snap Snapshot
	err := r.withMemberGroup(pilotID, groupID, func(g *Group) error {
		snap = g.snapshot()
		return nil
	})
	return snap, err
}

// AppendChat appends msg to the sender's group and stamps its index and timestamp.
// msg.GroupID must name the sender's group. emit receives the stored message and
// the members other than the sender.
func (r *Registry) AppendChat(pilotID string, msg models.TextMessage, emit func(models.TextMessage, []string)) (models.TextMessage, error) {
	var stored models.TextMessage
	err := r.withMemberGroup(pilotID, msg.GroupID, func(g *Group) error {
		msg.PilotID = pilotID
		stored = g.appendChat(msg, r.now(), r.cfg.MaxChatLog)
		if emit != nil {
			emit(stored, g.memberList(pilotID))
		}
		return nil
	})
	return stored, err
}

// ChatWindow returns the messages of groupID stamped within [start, end]. An end of
// zero means no upper bound.
func (r *Registry) ChatWindow(pilotID, groupID string, start, end int64) ([]models.TextMessage, error) {
	if end == 0 {
		end = 1<<63 - 1
	}
	var msgs []models.TextMessage
	err := r.withMemberGroup(pilotID, groupID, func(g *Group) error {
		msgs = Window(g.chat, start, end)
		return nil
	})
	return msgs, err
}

// UpdatePlan reconciles upd against the sender's group plan. An accepted update
// replaces the plan. emit runs for accepted and rejected outcomes and receives the
// members other than the sender.
func (r *Registry) UpdatePlan(pilotID string, upd models.FlightPlanUpdate, emit func(flightplan.Outcome, []string)) (flightplan.Outcome, error) {
	var out flightplan.Outcome
	err := r.withOwnGroup(pilotID, func(g *Group) error {
		out = flightplan.Reconcile(g.plan, upd, r.cfg.Hasher)
		if out.Verdict == flightplan.Accepted {
			g.plan = out.Plan
			g.planHash = out.Hash
		}
		if emit != nil && out.Verdict != flightplan.Unchanged {
			emit(out, g.memberList(pilotID))
		}
		return nil
	})
	return out, err
}

// SyncPlan replaces the sender's group plan and returns its hash. emit receives the
// hash and the members other than the sender.
func (r *Registry) SyncPlan(pilotID string, plan models.FlightPlan, emit func(string, []string)) (string, error) {
	var hash string
	err := r.withOwnGroup(pilotID, func(g *Group) error {
		g.plan = plan.Clone()
		g.planHash = r.cfg.Hasher(g.plan)
		hash = g.planHash
		if emit != nil {
			emit(hash, g.memberList(pilotID))
		}
		return nil
	})
	return hash, err
}

// SetSelection records the sender's waypoint selection. emit receives the group
// ID and the members other than the sender.
func (r *Registry) SetSelection(pilotID string, sel models.WaypointSelection, emit func(string, []string)) error {
	return r.withOwnGroup(pilotID, func(g *Group) error {
		g.selections[pilotID] = sel
		if emit != nil {
			emit(g.id, g.memberList(pilotID))
		}
		return nil
	})
}

// Broadcast hands emit the sender's group and the members other than the sender,
// serialized with the group's other events.
func (r *Registry) Broadcast(pilotID string, emit func(string, []string)) error {
	return r.withOwnGroup(pilotID, func(g *Group) error {
		emit(g.id, g.memberList(pilotID))
		return nil
	})
}

// Reap removes groups that have been empty for at least EmptyTTL and returns their IDs.
func (r *Registry) Reap(now time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var reaped []string
	for id, g := range r.groups {
		if len(g.members) == 0 && !g.emptySince.IsZero() && now.Sub(g.emptySince) >= r.cfg.EmptyTTL {
			delete(r.groups, id)
			reaped = append(reaped, id)
		}
	}
	if len(reaped) > 0 {
		r.logger.Debug().Strs("group_ids", reaped).Msg("reaped empty groups")
	}
	return reaped
}

// Stats returns counts of groups and grouped pilots.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := Stats{Groups: len(r.groups), GroupedPilots: len(r.pilotGroup)}
	for _, g := range r.groups {
		if len(g.members) == 0 {
			s.EmptyGroups++
		}
	}
	return s
}

// withOwnGroup runs fn with the sender's group locked.
func (r *Registry) withOwnGroup(pilotID string, fn func(*Group) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gid, ok := r.pilotGroup[pilotID]
	if !ok {
		return ErrNoGroup
	}
	g := r.groups[gid]
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g)
}

// withMemberGroup runs fn with groupID locked after checking that pilotID is a member.
func (r *Registry) withMemberGroup(pilotID, groupID string, fn func(*Group) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.groups[NormalizeID(groupID)]
	if !ok {
		return fmt.Errorf("%q: %w", groupID, ErrUnknownGroup)
	}
	if r.pilotGroup[pilotID] != g.id {
		return ErrNotMember
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g)
}
