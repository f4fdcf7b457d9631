package handlers

import (
	"net/http"
	"time"

	applog "nutrilog/internal/log"
	"nutrilog/models"
)

type workspaceHealth struct {
	Savefile string `json:"savefile"`
	Dirty    bool   `json:"dirty"`
	Mirror   bool   `json:"mirror"`
	Products int    `json:"products"`
	Recipes  int    `json:"recipes"`
	Days     int    `json:"days"`
}

type healthResponse struct {
	Status    string           `json:"status"`
	Time      time.Time        `json:"time"`
	Workspace *workspaceHealth `json:"workspace,omitempty"`
}

// Health reports readiness and the state of the loaded tracker. A server
// without a workspace still answers 200 with status "degraded" so the
// process stays up while the savefile is fixed.
func Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "degraded", Time: nowFunc().UTC()}

	if ws != nil {
		state := workspaceHealth{Savefile: ws.Path(), Dirty: ws.Dirty(), Mirror: ws.HasMirror()}
		_ = ws.View(func(t *models.Tracker) error {
			// Counts leave out the null entries.
			state.Products = max(0, len(t.Products)-1)
			state.Recipes = max(0, len(t.Recipes)-1)
			state.Days = len(t.DailyIntakes)
			return nil
		})
		resp.Status = "ok"
		resp.Workspace = &state
	}

	applog.Debug(r.Context(), "health check", "status", resp.Status)
	writeJSON(w, http.StatusOK, resp)
}
