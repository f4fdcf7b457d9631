package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func preferencesRequest(t *testing.T, themeValue string) *http.Request {
	t.Helper()
	form := url.Values{"theme": {themeValue}}
	req := httptest.NewRequest(http.MethodPost, "/app/preferences/update", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestUpdatePreferencesStoresThemeInSession(t *testing.T) {
	sm := withTestSessionManager(t)
	req := withSession(t, sm, preferencesRequest(t, "LIGHT"))

	rr := httptest.NewRecorder()
	UpdatePreferences(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/app?status=Theme+updated." {
		t.Fatalf("unexpected redirect %q", loc)
	}
	if got := sessionTheme(req); got != "light" {
		t.Fatalf("expected light theme in session, got %q", got)
	}
}

func TestUpdatePreferencesJSONResponse(t *testing.T) {
	sm := withTestSessionManager(t)
	req := withSession(t, sm, preferencesRequest(t, "fusion"))
	req.Header.Set("Accept", "application/json")

	rr := httptest.NewRecorder()
	UpdatePreferences(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp preferencesResponse
	decodeBody(t, rr, &resp)
	if resp.Theme != "fusion" {
		t.Fatalf("expected fusion, got %q", resp.Theme)
	}
}

func TestUpdatePreferencesValidation(t *testing.T) {
	rr := httptest.NewRecorder()
	UpdatePreferences(rr, preferencesRequest(t, "neon"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown theme, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	UpdatePreferences(rr, httptest.NewRequest(http.MethodGet, "/app/preferences/update", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestSessionThemeDefaultsWithoutSession(t *testing.T) {
	original := sessionManager
	sessionManager = nil
	t.Cleanup(func() { sessionManager = original })

	if got := sessionTheme(httptest.NewRequest(http.MethodGet, "/app", nil)); got != "dark" {
		t.Fatalf("expected dark default, got %q", got)
	}
}
