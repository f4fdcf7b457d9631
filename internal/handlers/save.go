package handlers

import (
	"fmt"
	"net/http"

	applog "nutrilog/internal/log"
)

// Save writes the workspace to its savefile and, when configured, the database mirror.
func Save(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if ws == nil {
		http.Error(w, "workspace not configured", http.StatusServiceUnavailable)
		return
	}

	if err := ws.Save(r.Context()); err != nil {
		applog.Error(r.Context(), "failed to save workspace", "path", ws.Path(), "error", err)
		if ws.Dirty() {
			putFlash(r, "Saving failed. Your changes are still in memory.")
			http.Error(w, "unable to write savefile", http.StatusInternalServerError)
			return
		}
		// The savefile was written; only the mirror failed.
		putFlash(r, fmt.Sprintf("Saved to %s, but the database copy failed.", ws.Path()))
		redirectToApp(w, r)
		return
	}

	applog.Info(r.Context(), "workspace saved", "path", ws.Path(), "mirror", ws.HasMirror())
	putFlash(r, fmt.Sprintf("Saved to %s.", ws.Path()))
	redirectToApp(w, r)
}
