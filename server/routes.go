package server

import (
	"net/http"
	"time"
)

func (s *Server) initRoutes() {
	authLimit := RateLimitConfig{
		RequestsPerWindow: s.config.GetRateLimitAuth(),
		Window:            time.Minute,
		Burst:             s.config.GetRateLimitAuth(),
	}

	s.RegisterRouteHandler("GET "+RouteIndex, ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))

	// AUTHORIZATION
	s.RegisterRouteHandler("GET "+RouteAuth, ChainMiddleware(s.BeginAuthHandler(), s.HTMLMiddleWare(s.RateLimitByIP(authLimit))...))
	s.RegisterRouteHandler("GET "+RouteAuthCallback, ChainMiddleware(s.CallbackHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// ACTIONS
	s.RegisterRouteHandler("GET "+RouteRun, ChainMiddleware(s.RunHandler(), s.HTMLMiddleWare()...))

	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.RecoverMiddleware))
}

// HealthHandler reports that the process is serving requests.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
