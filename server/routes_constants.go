package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Entry: the identity authority redirects here with accessToken, refreshToken and sessionId
	RouteEntry = "/"
	RouteHome  = "/home"

	// Session lifecycle
	RouteSessionVerify = "/session/verify"
	RouteSessionLogout = "/session/logout"

	// Operations
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)
