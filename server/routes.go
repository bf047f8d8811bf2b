package server

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteEntry+"{$}", ChainMiddleware(s.EntryHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteHome, ChainMiddleware(s.HomeHandler(), s.HTMLMiddleWare()...))

	// Session lifecycle, called from the portal's user menu (usually via HTMX)
	s.RegisterRouteHandler("POST "+RouteSessionVerify, ChainMiddleware(s.VerifyHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteSessionVerify, ChainMiddleware(noContent, s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSessionLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteSessionLogout, ChainMiddleware(noContent, s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteSessionLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())
}
