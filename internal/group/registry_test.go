// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

package group

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/xcrelay/internal/flightplan"
	"github.com/tomtom215/xcrelay/internal/logging"
	"github.com/tomtom215/xcrelay/internal/models"
)

func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

// fakePilots is a PilotDirectory backed by a set.
type fakePilots map[string]bool

func (f fakePilots) Exists(id string) bool { return f[id] }

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestRegistry(pilots ...string) (*Registry, *clock) {
	dir := fakePilots{}
	for _, p := range pilots {
		dir[p] = true
	}
	r := NewRegistry(DefaultConfig(), dir)
	c := &clock{t: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
	r.now = c.now
	return r, c
}

func mustJoin(t *testing.T, r *Registry, pilot, target string) JoinResult {
	t.Helper()
	res, err := r.Join(pilot, target, nil)
	if err != nil {
		t.Fatalf("Join(%s, %s): %v", pilot, target, err)
	}
	return res
}

func TestCreate(t *testing.T) {
	r, _ := newTestRegistry()

	id, err := r.Create("")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !ValidID(id, 8) || len(id) != 8 {
		t.Errorf("generated id %q is not 8 uppercase alphanumerics", id)
	}

	if _, err := r.Create("abc"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("short id: err = %v, want ErrInvalidID", err)
	}
	if _, err := r.Create("bad-id!"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("punctuation: err = %v, want ErrInvalidID", err)
	}
	got, err := r.Create("ridge01")
	if err != nil || got != "RIDGE01" {
		t.Fatalf("Create(ridge01) = %q, %v", got, err)
	}
	if _, err := r.Create("RIDGE01"); !errors.Is(err, ErrGroupExists) {
		t.Errorf("duplicate: err = %v, want ErrGroupExists", err)
	}
}

func TestJoin_ByPilotCreatesGroupWithBoth(t *testing.T) {
	r, _ := newTestRegistry("alice", "bob")

	var emitted []JoinResult
	res, err := r.Join("alice", "bob", func(jr JoinResult) { emitted = append(emitted, jr) })
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if !res.Created {
		t.Error("expected a new group")
	}
	if len(res.Members) != 1 || res.Members[0] != "bob" {
		t.Errorf("members to notify = %v, want [bob]", res.Members)
	}
	if len(emitted) != 1 {
		t.Fatalf("emit called %d times", len(emitted))
	}

	ga, _ := r.GroupOf("alice")
	gb, _ := r.GroupOf("bob")
	if ga != gb || ga != res.GroupID {
		t.Errorf("alice in %q, bob in %q, result %q", ga, gb, res.GroupID)
	}
}

func TestJoin_ByPilotJoinsExistingGroup(t *testing.T) {
	r, _ := newTestRegistry("alice", "bob", "carol")
	first := mustJoin(t, r, "alice", "bob")

	res := mustJoin(t, r, "carol", "alice")
	if res.GroupID != first.GroupID || res.Created {
		t.Errorf("carol joined %q (created=%v), want %q", res.GroupID, res.Created, first.GroupID)
	}
	if fmt.Sprint(res.Members) != "[alice bob]" {
		t.Errorf("members = %v", res.Members)
	}
}

func TestJoin_MovesBetweenGroups(t *testing.T) {
	r, _ := newTestRegistry("alice", "bob", "carol")
	ab := mustJoin(t, r, "alice", "bob")
	g2, _ := r.Create("SECOND")

	res := mustJoin(t, r, "alice", g2)
	if res.PreviousGroupID != ab.GroupID {
		t.Errorf("previous = %q, want %q", res.PreviousGroupID, ab.GroupID)
	}
	if fmt.Sprint(res.PreviousMembers) != "[bob]" {
		t.Errorf("previous members = %v", res.PreviousMembers)
	}
	if members, _ := r.Members(ab.GroupID); fmt.Sprint(members) != "[bob]" {
		t.Errorf("old group members = %v", members)
	}
}

func TestJoin_Idempotent(t *testing.T) {
	r, _ := newTestRegistry("alice", "bob")
	first := mustJoin(t, r, "alice", "bob")

	called := false
	res, err := r.Join("alice", first.GroupID, func(JoinResult) { called = true })
	if !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("err = %v, want ErrAlreadyMember", err)
	}
	if res.GroupID != first.GroupID || called {
		t.Errorf("no-op join changed state or emitted: %+v", res)
	}

	// Targeting a fellow member by pilot ID is the same no-op.
	if _, err := r.Join("alice", "bob", nil); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("join via member pilot: err = %v", err)
	}
}

func TestJoin_Self(t *testing.T) {
	r, _ := newTestRegistry("alice", "bob")
	if _, err := r.Join("alice", "alice", nil); !errors.Is(err, ErrInvalidID) {
		t.Errorf("self join without group: err = %v", err)
	}
	mustJoin(t, r, "alice", "bob")
	if _, err := r.Join("alice", "alice", nil); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("self join with group: err = %v", err)
	}
}

func TestJoin_ImplicitCreate(t *testing.T) {
	r, _ := newTestRegistry("alice")
	res := mustJoin(t, r, "alice", "meetup7")
	if res.GroupID != "MEETUP7" || !res.Created {
		t.Errorf("result = %+v", res)
	}

	r.cfg.AllowImplicitCreate = false
	if _, err := r.Join("alice", "ANOTHER1", nil); !errors.Is(err, ErrInvalidID) {
		t.Errorf("implicit create disabled: err = %v", err)
	}
	if _, err := r.Join("alice", "x", nil); !errors.Is(err, ErrInvalidID) {
		t.Errorf("unknown target: err = %v", err)
	}
}

func TestLeave(t *testing.T) {
	r, _ := newTestRegistry("alice", "bob")
	ab := mustJoin(t, r, "alice", "bob")

	res, err := r.Leave("alice", false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.GroupID != ab.GroupID || res.NewGroupID != "" || fmt.Sprint(res.RemainingMembers) != "[bob]" {
		t.Errorf("result = %+v", res)
	}
	if _, ok := r.GroupOf("alice"); ok {
		t.Error("alice still grouped")
	}
	if _, err := r.Leave("alice", false, nil); !errors.Is(err, ErrNoGroup) {
		t.Errorf("second leave: err = %v, want ErrNoGroup", err)
	}
}

func TestLeave_Split(t *testing.T) {
	r, _ := newTestRegistry("alice", "bob")
	ab := mustJoin(t, r, "alice", "bob")

	res, err := r.Leave("alice", true, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.NewGroupID == "" || res.NewGroupID == ab.GroupID {
		t.Fatalf("split produced %q", res.NewGroupID)
	}
	if members, _ := r.Members(res.NewGroupID); fmt.Sprint(members) != "[alice]" {
		t.Errorf("solo group members = %v", members)
	}
}

func TestLeave_DropsSelection(t *testing.T) {
	r, _ := newTestRegistry("alice", "bob")
	ab := mustJoin(t, r, "alice", "bob")
	if err := r.SetSelection("alice", models.WaypointSelection{WaypointIndex: 2}, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Leave("alice", false, nil); err != nil {
		t.Fatal(err)
	}
	snap, err := r.Info("bob", ab.GroupID)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := snap.Selections["alice"]; ok {
		t.Error("selection of departed pilot kept")
	}
}

func TestMembershipPartition_Concurrent(t *testing.T) {
	pilots := make([]string, 20)
	for i := range pilots {
		pilots[i] = fmt.Sprintf("p%02d", i)
	}
	r, _ := newTestRegistry(pilots...)
	groups := []string{"ALPHA1", "BRAVO2", "CHARLIE3"}
	for _, g := range groups {
		if _, err := r.Create(g); err != nil {
			t.Fatal(err)
		}
	}

	var wg sync.WaitGroup
	for i, p := range pilots {
		wg.Add(1)
		go func(seed int64, pilot string) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for n := 0; n < 200; n++ {
				switch rng.Intn(3) {
				case 0:
					_, _ = r.Join(pilot, groups[rng.Intn(len(groups))], nil)
				case 1:
					_, _ = r.Join(pilot, pilots[rng.Intn(len(pilots))], nil)
				default:
					_, _ = r.Leave(pilot, rng.Intn(2) == 0, nil)
				}
			}
		}(int64(i), p)
	}
	wg.Wait()

	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]string{}
	for gid, g := range r.groups {
		for p := range g.members {
			if other, dup := seen[p]; dup {
				t.Fatalf("pilot %s in both %s and %s", p, other, gid)
			}
			seen[p] = gid
			if r.pilotGroup[p] != gid {
				t.Errorf("index says %s is in %q, group %s lists it", p, r.pilotGroup[p], gid)
			}
		}
	}
	if len(seen) != len(r.pilotGroup) {
		t.Errorf("index has %d pilots, groups hold %d", len(r.pilotGroup), len(seen))
	}
}

func TestAppendChat(t *testing.T) {
	r, c := newTestRegistry("alice", "bob", "carol")
	ab := mustJoin(t, r, "alice", "bob")
	mustJoin(t, r, "carol", "alice")

	var recipients []string
	msg, err := r.AppendChat("alice", models.TextMessage{GroupID: ab.GroupID, PilotID: "spoofed", Text: "thermal here", Index: 99},
		func(_ models.TextMessage, to []string) { recipients = to })
	if err != nil {
		t.Fatal(err)
	}
	if msg.Index != 0 || msg.PilotID != "alice" || msg.Timestamp != c.t.UnixMilli() {
		t.Errorf("stored = %+v", msg)
	}
	if fmt.Sprint(recipients) != "[bob carol]" {
		t.Errorf("recipients = %v, sender must be excluded", recipients)
	}

	// Wall clock going backwards never reorders the log.
	c.t = c.t.Add(-time.Minute)
	second, err := r.AppendChat("bob", models.TextMessage{GroupID: ab.GroupID, Text: "on my way"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if second.Index != 1 || second.Timestamp < msg.Timestamp {
		t.Errorf("second = %+v", second)
	}

	if _, err := r.AppendChat("alice", models.TextMessage{GroupID: "OTHERGROUP", Text: "x"}, nil); !errors.Is(err, ErrUnknownGroup) {
		t.Errorf("unknown group: err = %v", err)
	}
	other, _ := r.Create("OTHER1")
	if _, err := r.AppendChat("alice", models.TextMessage{GroupID: other, Text: "x"}, nil); !errors.Is(err, ErrNotMember) {
		t.Errorf("foreign group: err = %v", err)
	}
}

func TestAppendChat_BoundedLog(t *testing.T) {
	r, c := newTestRegistry("alice", "bob")
	r.cfg.MaxChatLog = 3
	ab := mustJoin(t, r, "alice", "bob")

	for i := 0; i < 5; i++ {
		c.t = c.t.Add(time.Second)
		if _, err := r.AppendChat("alice", models.TextMessage{GroupID: ab.GroupID, Text: fmt.Sprint(i)}, nil); err != nil {
			t.Fatal(err)
		}
	}
	msgs, err := r.ChatWindow("bob", ab.GroupID, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 3 || msgs[0].Index != 2 || msgs[2].Index != 4 {
		t.Errorf("log = %+v", msgs)
	}
}

func TestWindow_MatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 500; trial++ {
		n := rng.Intn(40)
		log := make([]models.TextMessage, n)
		ts := int64(rng.Intn(5))
		for i := range log {
			ts += int64(rng.Intn(3)) // duplicates allowed
			log[i] = models.TextMessage{Index: i, Timestamp: ts}
		}
		start := int64(rng.Intn(int(ts) + 3))
		end := start + int64(rng.Intn(10)) - 2

		var want []int
		for _, m := range log {
			if m.Timestamp >= start && m.Timestamp <= end {
				want = append(want, m.Index)
			}
		}
		var got []int
		for _, m := range Window(log, start, end) {
			got = append(got, m.Index)
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Fatalf("trial %d: Window(%d, %d) = %v, linear scan = %v", trial, start, end, got, want)
		}
	}
}

func TestUpdatePlan(t *testing.T) {
	r, _ := newTestRegistry("alice", "bob")
	ab := mustJoin(t, r, "alice", "bob")

	wp := &models.Waypoint{Name: "TP1", LatLng: []models.LatLng{{Lat: 46.5, Lng: 7.9}}}
	expected := models.FlightPlan{Waypoints: []models.Waypoint{*wp}}
	upd := models.FlightPlanUpdate{Action: models.ActionNew, Index: 0, Data: wp, Hash: flightplan.HashLegacy(expected)}

	var emitted []string
	out, err := r.UpdatePlan("alice", upd, func(o flightplan.Outcome, to []string) { emitted = to })
	if err != nil {
		t.Fatal(err)
	}
	if out.Verdict != flightplan.Accepted || fmt.Sprint(emitted) != "[bob]" {
		t.Fatalf("outcome = %s, recipients = %v", out.Verdict, emitted)
	}

	// The same update again no longer matches: rejected, plan unchanged.
	out, err = r.UpdatePlan("bob", upd, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.Verdict != flightplan.Rejected || len(out.Plan.Waypoints) != 1 {
		t.Errorf("second outcome = %+v", out)
	}

	snap, _ := r.Info("bob", ab.GroupID)
	if snap.Hash != upd.Hash || len(snap.Plan.Waypoints) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}

	if _, err := r.UpdatePlan("nobody", upd, nil); !errors.Is(err, ErrNoGroup) {
		t.Errorf("ungrouped sender: err = %v", err)
	}
}

func TestSyncPlan(t *testing.T) {
	r, _ := newTestRegistry("alice", "bob")
	ab := mustJoin(t, r, "alice", "bob")

	plan := models.FlightPlan{Name: "Task 3", Waypoints: []models.Waypoint{{Name: "Goal", LatLng: []models.LatLng{{Lat: 1, Lng: 2}}}}}
	hash, err := r.SyncPlan("alice", plan, nil)
	if err != nil {
		t.Fatal(err)
	}
	if hash != flightplan.HashLegacy(plan) {
		t.Errorf("hash = %s", hash)
	}
	plan.Waypoints[0].Name = "mutated"
	snap, _ := r.Info("alice", ab.GroupID)
	if snap.Plan.Waypoints[0].Name != "Goal" {
		t.Error("stored plan aliases the caller's slice")
	}
}

func TestInfo_DeniedForNonMember(t *testing.T) {
	r, _ := newTestRegistry("alice", "bob", "eve")
	ab := mustJoin(t, r, "alice", "bob")
	if _, err := r.Info("eve", ab.GroupID); !errors.Is(err, ErrNotMember) {
		t.Errorf("err = %v, want ErrNotMember", err)
	}
}

func TestReap(t *testing.T) {
	r, c := newTestRegistry("alice", "bob")
	ab := mustJoin(t, r, "alice", "bob")
	empty, _ := r.Create("EMPTY1")

	if reaped := r.Reap(c.t.Add(5 * time.Minute)); len(reaped) != 0 {
		t.Errorf("reaped before ttl: %v", reaped)
	}
	reaped := r.Reap(c.t.Add(10 * time.Minute))
	if len(reaped) != 1 || reaped[0] != empty {
		t.Errorf("reaped = %v, want [%s]", reaped, empty)
	}
	if !r.Exists(ab.GroupID) {
		t.Error("occupied group reaped")
	}

	// A group becomes reapable only after it empties.
	if _, err := r.Leave("alice", false, nil); err != nil {
		t.Fatal(err)
	}
	c.t = c.t.Add(time.Hour)
	if _, err := r.Leave("bob", false, nil); err != nil {
		t.Fatal(err)
	}
	if reaped := r.Reap(c.t.Add(time.Minute)); len(reaped) != 0 {
		t.Errorf("reaped too early: %v", reaped)
	}
	if reaped := r.Reap(c.t.Add(10 * time.Minute)); len(reaped) != 1 {
		t.Errorf("reaped = %v", reaped)
	}

	if s := r.Stats(); s.Groups != 0 || s.GroupedPilots != 0 {
		t.Errorf("stats = %+v", s)
	}
}
