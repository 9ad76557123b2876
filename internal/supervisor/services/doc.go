// xcRelay - Group Coordination Relay for Free-Flight Pilots
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xcrelay

/*
Package services adapts the relay's long-running components to suture.Service.

Each adapter takes a small interface rather than the concrete type, so this
package does not import the component packages and tests use doubles:

  - HTTPServerService: *http.Server (ListenAndServe/Shutdown)
  - HubService: *websocket.Hub (RunWithContext)
  - ReaperService: *group.Registry (Reap), on a ticker
  - ActivityService: *activity.Publisher (Run/Close)

Every adapter implements fmt.Stringer so suture's event log names it.
*/
package services
