package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"nutrilog/models"
)

func TestFavoritesToggle(t *testing.T) {
	w := withTestWorkspace(t)

	rr := httptest.NewRecorder()
	Favorites(rr, jsonRequest(t, http.MethodPost, "/app/api/favorites", favoriteRequest{Type: "RECIPE", ItemID: 1}))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var toggled favoriteResponse
	decodeBody(t, rr, &toggled)
	if !toggled.Favorite || toggled.Type != "RECIPE" {
		t.Fatalf("unexpected toggle: %+v", toggled)
	}

	rr = httptest.NewRecorder()
	Favorites(rr, httptest.NewRequest(http.MethodGet, "/app/api/favorites", nil))
	var listed favoritesResponse
	decodeBody(t, rr, &listed)
	if len(listed.Recipes) != 1 || listed.Recipes[0] != 1 || len(listed.Products) != 0 {
		t.Fatalf("unexpected favorites: %+v", listed)
	}

	rr = httptest.NewRecorder()
	Favorites(rr, jsonRequest(t, http.MethodPost, "/app/api/favorites", favoriteRequest{Type: "RECIPE", ItemID: 1}))
	decodeBody(t, rr, &toggled)
	if toggled.Favorite {
		t.Fatal("expected the second toggle to clear the favorite")
	}
	if trackerOf(t, w).IsFavorite(models.Serving{ItemID: 1, ItemType: models.ServingTypeRecipe}) {
		t.Fatal("expected recipe 1 not to be a favorite")
	}
}

func TestFavoritesValidation(t *testing.T) {
	withTestWorkspace(t)

	tests := []struct {
		name    string
		payload favoriteRequest
		want    int
	}{
		{"unknown type", favoriteRequest{Type: "MEAL", ItemID: 1}, http.StatusBadRequest},
		{"null product", favoriteRequest{Type: "PRODUCT", ItemID: 0}, http.StatusBadRequest},
		{"unknown product", favoriteRequest{Type: "PRODUCT", ItemID: 12}, http.StatusNotFound},
		{"unknown recipe", favoriteRequest{Type: "RECIPE", ItemID: 12}, http.StatusNotFound},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		Favorites(rr, jsonRequest(t, http.MethodPost, "/app/api/favorites", tt.payload))
		if rr.Code != tt.want {
			t.Fatalf("%s: expected %d, got %d", tt.name, tt.want, rr.Code)
		}
	}
}

func TestTargetsReadAndReplace(t *testing.T) {
	w := withTestWorkspace(t)

	rr := httptest.NewRecorder()
	Targets(rr, jsonRequest(t, http.MethodPut, "/app/api/targets", models.NutritionData{Calories: 2200, Fat: 70, Carbs: 250, Protein: 120}))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := trackerOf(t, w).Targets.Calories; got != 2200 {
		t.Fatalf("expected 2200 kcal target, got %v", got)
	}

	rr = httptest.NewRecorder()
	Targets(rr, httptest.NewRequest(http.MethodGet, "/app/api/targets", nil))
	var targets models.NutritionData
	decodeBody(t, rr, &targets)
	if targets.Protein != 120 {
		t.Fatalf("expected 120 g protein, got %+v", targets)
	}

	rr = httptest.NewRecorder()
	Targets(rr, jsonRequest(t, http.MethodPut, "/app/api/targets", models.NutritionData{Calories: -1}))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative targets, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	Targets(rr, httptest.NewRequest(http.MethodDelete, "/app/api/targets", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
