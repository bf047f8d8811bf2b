package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-portal-session/gateway"
	"github.com/jrsteele09/go-portal-session/internal/config"
	"github.com/jrsteele09/go-portal-session/internal/metrics"
	"github.com/jrsteele09/go-portal-session/redirect"
	"github.com/jrsteele09/go-portal-session/roles"
	"github.com/jrsteele09/go-portal-session/session"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env         string // Environment (e.g., "DEV", "PROD")
	mux         *http.ServeMux
	routes      []string
	config      config.Config
	metrics     *metrics.Metrics
	controllers *Registry
}

// New wires the portal routes. Close releases the controller registry.
func New(c config.Config, store session.Store, gw gateway.AuthGateway, resolver roles.Resolver, m *metrics.Metrics) *Server {
	s := &Server{
		env:     c.GetEnv(),
		mux:     http.NewServeMux(),
		config:  c,
		metrics: m,
	}
	policy := redirect.NewPolicy(c.GetAuthorityURL(), c.GetLoginPagePath())
	s.controllers = NewRegistry(c.GetControllerIdleTTL(), NewControllerFactory(c, store, gw, resolver, policy, m), m)

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) Close() {
	s.controllers.Close()
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
