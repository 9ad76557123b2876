// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

/*
Package flightplan implements the shared flight plan of a group: the ordered waypoint
actions clients submit, the content hash both sides use to detect divergence, and the
reconciliation step that decides between accepting an update and resyncing the submitter.

Hash:

The plan hash is the only version a plan has. Clients compute it locally after applying
an action and send it along with the action; the server applies the same action to its
own copy and compares. The serialization is fixed:

	"Plan" + name + for each waypoint i:
	    decimal(i) + waypoint.name + ("O" if optional else "X")
	    + for each coordinate: toFixed4(lat) + toFixed4(lat)

The string is folded over its UTF-16 code units with h = int32(h*31 + c), the absolute
value is taken without overflow, and the result is printed as lowercase hex. toFixed4
reproduces ECMAScript Number.prototype.toFixed(4) digit for digit, including its rounding
of exact binary values and its treatment of negative zero.

The legacy hash writes the latitude twice. HashLatLng writes latitude then longitude; it
is selected with relay.hash_mode=latlng and is not compatible with older clients.

Reconciliation:

	snapshot := current.Clone()
	apply action to snapshot
	hash(snapshot) == update.Hash  -> Accepted (fan the update out)
	otherwise                      -> Rejected (send FlightPlanSync{current, hash(current)})

Actions that do not mutate (none, modify without data) yield Unchanged and are neither
relayed nor answered. A sort onto its own index leaves the plan as is but is still
checked against the client hash. Malformed actions (out-of-range index, new without data) are
treated like a hash mismatch so the submitter gets repaired.

The package is pure: no locking, no I/O. Callers serialize access per group.
*/
package flightplan
