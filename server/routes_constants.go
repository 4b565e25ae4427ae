package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex = "/{$}"

	// Authorization round trip
	RouteAuth         = "/auth"
	RouteAuthCallback = "/auth/callback"
	RouteAuthLogout   = "/auth/logout"

	// Re-runs an action with the session's cached API context
	RouteRun = "/run"

	RouteHealth = "/healthz"
)

// Query parameters read by the routes above.
const (
	queryAction = "action"
)
