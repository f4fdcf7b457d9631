package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nutrilog/models"
)

func TestHealthReportsWorkspace(t *testing.T) {
	w := withTestWorkspace(t)
	withFixedNow(t, time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC))
	_ = w.Update(func(tr *models.Tracker) error {
		tr.AddDailyIntake("2025-05-01")
		return nil
	})

	rr := httptest.NewRecorder()
	Health(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", ct)
	}

	var resp healthResponse
	decodeBody(t, rr, &resp)
	if resp.Status != "ok" || !resp.Time.Equal(time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected health header: %+v", resp)
	}
	want := workspaceHealth{Savefile: w.Path(), Dirty: true, Products: 2, Recipes: 1, Days: 1}
	if resp.Workspace == nil || *resp.Workspace != want {
		t.Fatalf("workspace = %+v, want %+v", resp.Workspace, want)
	}
}

func TestHealthWithoutWorkspaceIsDegraded(t *testing.T) {
	original := ws
	ws = nil
	t.Cleanup(func() { ws = original })

	rr := httptest.NewRecorder()
	Health(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp healthResponse
	decodeBody(t, rr, &resp)
	if resp.Status != "degraded" || resp.Workspace != nil {
		t.Fatalf("expected a degraded report without workspace details, got %+v", resp)
	}
}

func TestWantsPartial(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    bool
	}{
		{"plain", nil, false},
		{"htmx swap", map[string]string{"HX-Request": "true"}, true},
		{"boosted", map[string]string{"HX-Request": "true", "HX-Boosted": "true"}, false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/app", nil)
		for k, v := range tt.headers {
			req.Header.Set(k, v)
		}
		if got := wantsPartial(req); got != tt.want {
			t.Fatalf("%s: wantsPartial() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
