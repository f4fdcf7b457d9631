package handlers

import (
	"net/http"

	templpkg "github.com/a-h/templ"

	applog "nutrilog/internal/log"
	"nutrilog/internal/views/pages"
	"nutrilog/models"
)

// Dashboard renders the workspace overview. HTMX requests receive only the body.
func Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	data, err := loadDashboardData(r)
	if err != nil {
		applog.Error(r.Context(), "failed to load dashboard", "error", err)
		http.Error(w, "workspace unavailable", statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	var component templpkg.Component
	if wantsPartial(r) {
		component = pages.DashboardPartial(data)
	} else {
		component = pages.Dashboard(data)
	}

	if err := component.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func loadDashboardData(r *http.Request) (pages.DashboardData, error) {
	productFilters := pages.ProductFiltersFromRequest(r)
	recipeFilters := pages.RecipeFiltersFromRequest(r)
	themeKey := sessionTheme(r)

	data := pages.DashboardData{
		Flash:  popFlash(r),
		Status: r.URL.Query().Get("status"),
	}
	dirty := ws != nil && ws.Dirty()
	err := view(func(t *models.Tracker) error {
		data.Snapshot = pages.NewSnapshot(t, productFilters, recipeFilters, dirty, themeKey)
		return nil
	})
	if err != nil {
		return pages.DashboardData{}, err
	}
	return data, nil
}
