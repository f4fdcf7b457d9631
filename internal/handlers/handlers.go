package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	applog "nutrilog/internal/log"
	"nutrilog/internal/views/theme"
	"nutrilog/internal/workspace"
	"nutrilog/models"
)

const (
	sessionFlashKey = "flash:message"
	sessionThemeKey = "preferences:theme"
)

var (
	sessionManager *scs.SessionManager
	ws             *workspace.Workspace
)

var errWorkspaceUnavailable = errors.New("handlers: workspace not configured")

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(sm *scs.SessionManager, w *workspace.Workspace) {
	sessionManager = sm
	ws = w
}

func view(fn func(*models.Tracker) error) error {
	if ws == nil {
		return errWorkspaceUnavailable
	}
	return ws.View(fn)
}

func update(fn func(*models.Tracker) error) error {
	if ws == nil {
		return errWorkspaceUnavailable
	}
	return ws.Update(fn)
}

func putFlash(r *http.Request, message string) {
	if sessionManager == nil {
		applog.Debug(r.Context(), "session unavailable, dropping flash", "message", message)
		return
	}
	sessionManager.Put(r.Context(), sessionFlashKey, message)
}

func popFlash(r *http.Request) string {
	if sessionManager == nil {
		return ""
	}
	return sessionManager.PopString(r.Context(), sessionFlashKey)
}

func setSessionTheme(r *http.Request, key string) {
	if sessionManager == nil {
		return
	}
	sessionManager.Put(r.Context(), sessionThemeKey, key)
}

func sessionTheme(r *http.Request) string {
	if sessionManager == nil {
		return theme.DefaultKey
	}
	key := strings.TrimSpace(sessionManager.GetString(r.Context(), sessionThemeKey))
	if key == "" {
		return theme.DefaultKey
	}
	return key
}
