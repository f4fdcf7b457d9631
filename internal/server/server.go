package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"nutrilog/internal/handlers"
	applog "nutrilog/internal/log"
	"nutrilog/internal/workspace"
)

const (
	defaultSessionLifetime = 12 * time.Hour
	defaultCookieName      = "nutrilog_session"
	defaultShutdownTimeout = 5 * time.Second
)

// Config captures the runtime configuration for the HTTP server.
type Config struct {
	Addr            string
	Session         SessionConfig
	Workspace       *workspace.Workspace
	ShutdownTimeout time.Duration
}

// SessionConfig controls the theme and flash session cookie.
type SessionConfig struct {
	Lifetime     time.Duration
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.Lifetime <= 0 {
		c.Lifetime = defaultSessionLifetime
	}
	if strings.TrimSpace(c.CookieName) == "" {
		c.CookieName = defaultCookieName
	}
	return c
}

func newSessionManager(cfg SessionConfig) *scs.SessionManager {
	sm := scs.New()
	sm.Lifetime = cfg.Lifetime
	sm.Cookie.Name = cfg.CookieName
	sm.Cookie.Domain = cfg.CookieDomain
	sm.Cookie.HttpOnly = true
	sm.Cookie.Persist = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = cfg.CookieSecure
	return sm
}

// Server serves the tracker dashboard and JSON API over one workspace.
type Server struct {
	config     Config
	workspace  *workspace.Workspace
	httpServer *http.Server
}

// New wires the session manager and workspace into the handlers. A nil
// workspace is allowed; tracker routes then answer 503.
func New(cfg Config) (*Server, error) {
	ctx := context.Background()
	cfg.Session = cfg.Session.withDefaults()
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	sessionManager := newSessionManager(cfg.Session)
	applog.Debug(ctx, "session manager configured",
		"lifetime", cfg.Session.Lifetime.String(),
		"cookieName", cfg.Session.CookieName,
		"cookieDomain", cfg.Session.CookieDomain,
		"cookieSecure", cfg.Session.CookieSecure,
	)

	if cfg.Workspace == nil {
		applog.Warn(ctx, "server started without a workspace, tracker routes will answer 503")
	} else {
		applog.Debug(ctx, "workspace attached", "path", cfg.Workspace.Path(), "mirror", cfg.Workspace.HasMirror())
	}
	handlers.Configure(sessionManager, cfg.Workspace)

	return &Server{
		config:    cfg,
		workspace: cfg.Workspace,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           logRequests(sessionManager.LoadAndSave(newRouter())),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Start blocks serving HTTP until Stop is called.
func (s *Server) Start() error {
	applog.Debug(context.Background(), "server starting listener", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop drains in-flight requests. Edits that were never saved are reported,
// not written: saving stays an explicit action.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	applog.Debug(ctx, "server initiating graceful shutdown")
	err := s.httpServer.Shutdown(ctx)
	if s.workspace != nil && s.workspace.Dirty() {
		applog.Warn(ctx, "unsaved changes discarded on shutdown", "savefile", s.workspace.Path())
	}
	return err
}

// Handler exposes the configured HTTP handler, enabling integration tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests logs every request at debug level and server errors at warn.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		args := []any{"method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start)}
		if rec.status >= http.StatusInternalServerError {
			applog.Warn(r.Context(), "request failed", args...)
			return
		}
		applog.Debug(r.Context(), "request served", args...)
	})
}
