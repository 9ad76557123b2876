// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

/*
Package group implements the group registry: which pilots fly together, and the state
each group shares (chat log, flight plan, waypoint selections).

Membership:

A pilot belongs to at most one group. Joining a group implicitly leaves the previous
one. Join targets are resolved in order:

 1. an existing group ID: join it
 2. a registered pilot ID: join that pilot's group, or create a new group holding both
 3. with implicit creation enabled, a well-formed unused group ID: create and join it

Groups that lose their last member are kept for a grace period so a reconnecting pilot
finds its chat and plan again, then removed by Reap.

Locking:

The registry map and the pilot -> group index are guarded by a sync.RWMutex. Membership
changes hold it for writing. Operations on a single group (chat, plan, selections,
snapshots) hold it for reading plus the group's own mutex, so independent groups never
contend.

Every mutating operation takes an emit callback that runs while the locks are held.
Callers use it to enqueue notifications for the recipients it receives, which makes
delivery order per group equal to the order mutations were applied. emit must not
block and must not call back into the Registry.
*/
package group
