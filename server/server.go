package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-esign-auth/actions"
	"github.com/jrsteele09/go-esign-auth/auth"
	"github.com/jrsteele09/go-esign-auth/internal/config"
	"github.com/jrsteele09/go-esign-auth/sessions"
	"github.com/rs/zerolog/log"
)

// Config is the part of the service configuration the HTTP layer reads.
type Config interface {
	config.EnvConfig
	config.SecurityConfig
}

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   Config
	auth     *auth.AuthorizationService
	sessions sessions.Repo
	actions  *actions.Registry
	pages    *pages
	nowTime  func() time.Time
}

type ServerOption func(*Server)

// WithNowTime sets the clock used to decide whether a session is signed in.
func WithNowTime(nowFunc func() time.Time) ServerOption {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

func New(cfg Config, authService *auth.AuthorizationService, repo sessions.Repo, registry *actions.Registry, options ...ServerOption) (*Server, error) {
	if cfg == nil || authService == nil || repo == nil || registry == nil {
		return nil, errors.New("[Server New] config, authorization service, session repo and action registry are required")
	}

	p, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}

	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		auth:     authService,
		sessions: repo,
		actions:  registry,
		pages:    p,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
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
