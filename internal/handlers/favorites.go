package handlers

import (
	"fmt"
	"net/http"

	"nutrilog/models"
)

type favoriteRequest struct {
	Type   string `json:"type"`
	ItemID int    `json:"item_id"`
}

type favoriteResponse struct {
	Type     string `json:"type"`
	ItemID   int    `json:"item_id"`
	Favorite bool   `json:"favorite"`
}

type favoritesResponse struct {
	Products []int `json:"products"`
	Recipes  []int `json:"recipes"`
}

// Favorites lists (GET) or toggles (POST) favorite products and recipes.
func Favorites(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var resp favoritesResponse
		err := view(func(t *models.Tracker) error {
			resp.Products = t.FavoriteIDs(models.ServingTypeProduct)
			resp.Recipes = t.FavoriteIDs(models.ServingTypeRecipe)
			return nil
		})
		if err != nil {
			writeModelError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	case http.MethodPost:
		toggleFavorite(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func toggleFavorite(w http.ResponseWriter, r *http.Request) {
	var payload favoriteRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeModelError(w, r, err)
		return
	}
	kind, ok := models.ParseServingType(payload.Type)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "type must be PRODUCT or RECIPE")
		return
	}

	resp := favoriteResponse{Type: kind.Name(), ItemID: payload.ItemID}
	err := update(func(t *models.Tracker) error {
		if payload.ItemID == 0 {
			return fmt.Errorf("favorite %s 0: %w", kind.Name(), models.ErrNullEntry)
		}
		if kind == models.ServingTypeRecipe {
			if _, ok := t.Recipe(payload.ItemID); !ok {
				return fmt.Errorf("favorite recipe %d: %w", payload.ItemID, models.ErrRecipeNotFound)
			}
		} else if _, ok := t.LookupProduct(payload.ItemID); !ok {
			return fmt.Errorf("favorite product %d: %w", payload.ItemID, models.ErrProductNotFound)
		}
		resp.Favorite = t.ToggleFavorite(models.Serving{ItemID: payload.ItemID, ItemType: kind})
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Targets reads (GET) or replaces (PUT) the daily nutrition targets.
func Targets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var targets models.NutritionData
		if err := view(func(t *models.Tracker) error {
			targets = t.Targets
			return nil
		}); err != nil {
			writeModelError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, targets)
	case http.MethodPut:
		var payload models.NutritionData
		if err := decodeJSON(r, &payload); err != nil {
			writeModelError(w, r, err)
			return
		}
		if payload.Calories < 0 || payload.Fat < 0 || payload.Carbs < 0 || payload.Protein < 0 {
			writeJSONError(w, http.StatusBadRequest, "targets must not be negative")
			return
		}
		if err := update(func(t *models.Tracker) error {
			t.Targets = payload
			return nil
		}); err != nil {
			writeModelError(w, r, err)
			return
		}
		putFlash(r, "Daily targets updated.")
		writeJSON(w, http.StatusOK, payload)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
