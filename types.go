// Package osrv is the Server runtime at the core of this module: it binds
// a transport, dispatches requests through a middleware chain into a user
// fetch handler, attaches per-request runtime metadata, orchestrates
// plugin/lifecycle hooks, enforces resource limits, tracks fire-and-forget
// background work, and shuts down cleanly (spec.md §1-§5).
package osrv

import (
	"github.com/watt-toolkit/osrv/request"
	"github.com/watt-toolkit/osrv/response"
)

// Request and Response are re-exported here so package osrv is the only
// import most callers need, matching spec.md §6.1's handler contract
// naming. The concrete types live in request/response so transport
// implementations can depend on them without importing this package.
type (
	Request  = request.Request
	Response = response.Response
)
