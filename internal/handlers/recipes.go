package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	applog "nutrilog/internal/log"
	"nutrilog/internal/views/pages"
	"nutrilog/models"
)

type recipeRequest struct {
	Name        string             `json:"name"`
	Category    string             `json:"category"`
	Description string             `json:"description"`
	PrepTime    float64            `json:"prep_time"`
	CookingTime float64            `json:"cooking_time"`
	TotalTime   float64            `json:"total_time"`
	NetMass     models.NetMassData `json:"net_mass"`
}

func (p recipeRequest) apply(recipe *models.Recipe) {
	recipe.Name = strings.TrimSpace(p.Name)
	recipe.Category = models.ParseRecipeCategory(p.Category)
	recipe.Details.Description = strings.TrimSpace(p.Description)
	recipe.Details.PrepTime = p.PrepTime
	recipe.Details.CookingTime = p.CookingTime
	recipe.Details.TotalTime = p.TotalTime
	recipe.NetMass = p.NetMass
}

type ingredientRequest struct {
	ProductID           int     `json:"product_id"`
	Amount              float64 `json:"amount"`
	AmountDefinition    string  `json:"amount_definition"`
	NetAmount           float64 `json:"net_amount"`
	NetAmountDefinition string  `json:"net_amount_definition"`
	RelativeTo          *int    `json:"relative_to"`
}

// RecipeResource handles REST-style interactions with recipes and their ingredients.
func RecipeResource(w http.ResponseWriter, r *http.Request) {
	segments := pathSegments(r, "/app/api/recipes")

	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			listRecipes(w, r)
		case http.MethodPost:
			createRecipe(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if segments[0] == "renumber" {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		renumberRecipes(w, r)
		return
	}

	recipeID, ok := parseID(segments[0])
	if !ok {
		applog.Debug(r.Context(), "invalid recipe identifier", "identifier", segments[0])
		http.NotFound(w, r)
		return
	}

	if len(segments) > 1 {
		switch segments[1] {
		case "ingredients":
			ingredientResource(w, r, recipeID, segments[2:])
		case "duplicate", "move":
			if r.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			if segments[1] == "duplicate" {
				duplicateRecipe(w, r, recipeID)
			} else {
				moveRecipe(w, r, recipeID)
			}
		default:
			http.NotFound(w, r)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		showRecipe(w, r, recipeID)
	case http.MethodPut:
		updateRecipe(w, r, recipeID)
	case http.MethodDelete:
		deleteRecipe(w, r, recipeID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func lookupRecipe(t *models.Tracker, id int) (*models.Recipe, error) {
	if id == 0 {
		return nil, fmt.Errorf("recipe 0: %w", models.ErrNullEntry)
	}
	recipe, ok := t.Recipe(id)
	if !ok {
		return nil, fmt.Errorf("recipe %d: %w", id, models.ErrRecipeNotFound)
	}
	return recipe, nil
}

func listRecipes(w http.ResponseWriter, r *http.Request) {
	filters := pages.RecipeFiltersFromRequest(r)
	var responses []recipeResponse
	err := view(func(t *models.Tracker) error {
		book := make([]*models.Recipe, 0, len(t.Recipes))
		for _, id := range t.RecipeIDs() {
			if id != 0 {
				book = append(book, t.Recipes[id])
			}
		}
		matched := pages.FilterRecipes(book, filters)
		responses = make([]recipeResponse, 0, len(matched))
		for _, recipe := range matched {
			responses = append(responses, projectRecipe(t, recipe))
		}
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, responses)
}

func showRecipe(w http.ResponseWriter, r *http.Request, id int) {
	var resp recipeResponse
	err := view(func(t *models.Tracker) error {
		recipe, ok := t.Recipe(id)
		if !ok {
			return fmt.Errorf("show recipe %d: %w", id, models.ErrRecipeNotFound)
		}
		resp = projectRecipe(t, recipe)
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func createRecipe(w http.ResponseWriter, r *http.Request) {
	var payload recipeRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeModelError(w, r, err)
		return
	}
	var resp recipeResponse
	err := update(func(t *models.Tracker) error {
		recipe := t.AddRecipe("", models.RecipeCategoryOther, "")
		created := recipe.Details.Created
		payload.apply(recipe)
		recipe.Details.Created = created
		if recipe.Name == "" {
			recipe.Name = pages.NextUntitledName(t.RecipeNames(), "Untitled Recipe")
		}
		resp = projectRecipe(t, recipe)
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	applog.Info(r.Context(), "recipe added", "recipe", resp.Label)
	putFlash(r, fmt.Sprintf("Added %s.", resp.Label))
	writeJSON(w, http.StatusCreated, resp)
}

func updateRecipe(w http.ResponseWriter, r *http.Request, id int) {
	var payload recipeRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeModelError(w, r, err)
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	var resp recipeResponse
	err := update(func(t *models.Tracker) error {
		recipe, err := lookupRecipe(t, id)
		if err != nil {
			return err
		}
		payload.apply(recipe)
		resp = projectRecipe(t, recipe)
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func deleteRecipe(w http.ResponseWriter, r *http.Request, id int) {
	err := update(func(t *models.Tracker) error {
		if _, err := lookupRecipe(t, id); err != nil {
			return err
		}
		t.RemoveRecipe(id)
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	applog.Info(r.Context(), "recipe removed", "recipe", id)
	putFlash(r, fmt.Sprintf("Removed recipe %d.", id))
	w.WriteHeader(http.StatusNoContent)
}

func duplicateRecipe(w http.ResponseWriter, r *http.Request, id int) {
	var resp recipeResponse
	err := update(func(t *models.Tracker) error {
		duplicate, err := t.DuplicateRecipe(id)
		if err != nil {
			return err
		}
		duplicate.Name = pages.NextCopiedName(t.RecipeNames(), duplicate.Name, "Untitled Recipe")
		resp = projectRecipe(t, duplicate)
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	putFlash(r, fmt.Sprintf("Duplicated as %s.", resp.Label))
	writeJSON(w, http.StatusCreated, resp)
}

func moveRecipe(w http.ResponseWriter, r *http.Request, id int) {
	var payload positionRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeModelError(w, r, err)
		return
	}
	var resp recipeResponse
	err := update(func(t *models.Tracker) error {
		if _, err := lookupRecipe(t, id); err != nil {
			return err
		}
		if err := t.SetRecipeID(id, payload.Position); err != nil {
			return err
		}
		recipe, _ := t.Recipe(payload.Position)
		resp = projectRecipe(t, recipe)
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func renumberRecipes(w http.ResponseWriter, r *http.Request) {
	var payload renumberRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeModelError(w, r, err)
		return
	}
	var ids []int
	err := update(func(t *models.Tracker) error {
		if len(payload.Order) == 0 {
			t.RenumberRecipes()
		} else if err := t.RenumberRecipeIDs(payload.Order); err != nil {
			return err
		}
		ids = t.RecipeIDs()
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int{"ids": ids})
}

func ingredientResource(w http.ResponseWriter, r *http.Request, recipeID int, segments []string) {
	if len(segments) == 0 {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		saveIngredient(w, r, recipeID, 0)
		return
	}

	if segments[0] == "renumber" {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		renumberIngredients(w, r, recipeID)
		return
	}

	ingredientID, ok := parseID(segments[0])
	if !ok || ingredientID == 0 {
		applog.Debug(r.Context(), "invalid ingredient identifier", "identifier", segments[0])
		http.NotFound(w, r)
		return
	}

	if len(segments) > 1 {
		if segments[1] != "move" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		moveIngredient(w, r, recipeID, ingredientID)
		return
	}

	switch r.Method {
	case http.MethodPut:
		saveIngredient(w, r, recipeID, ingredientID)
	case http.MethodDelete:
		deleteIngredient(w, r, recipeID, ingredientID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// saveIngredient creates an ingredient when ingredientID is 0 and updates it
// otherwise. A relative reference that would close a cycle is cleared while the
// rest of the edit is kept, and the caller gets 409.
func saveIngredient(w http.ResponseWriter, r *http.Request, recipeID, ingredientID int) {
	var payload ingredientRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeModelError(w, r, err)
		return
	}

	var (
		resp     ingredientResponse
		conflict error
	)
	err := update(func(t *models.Tracker) error {
		recipe, err := lookupRecipe(t, recipeID)
		if err != nil {
			return err
		}
		product, ok := t.LookupProduct(payload.ProductID)
		if !ok {
			return fmt.Errorf("ingredient product %d: %w", payload.ProductID, models.ErrProductNotFound)
		}
		if payload.RelativeTo != nil && *payload.RelativeTo != 0 && recipe.Ingredient(*payload.RelativeTo) == nil {
			return fmt.Errorf("reference %d of %s: %w", *payload.RelativeTo, recipe.Label(), models.ErrIngredientNotFound)
		}

		var ingredient *models.Ingredient
		if ingredientID == 0 {
			ingredient = recipe.AddIngredient(models.NewIngredient(product, payload.Amount))
		} else if ingredient = recipe.Ingredient(ingredientID); ingredient == nil {
			return fmt.Errorf("ingredient %d of %s: %w", ingredientID, recipe.Label(), models.ErrIngredientNotFound)
		}
		ingredient.Product = product
		ingredient.Amount = payload.Amount
		ingredient.AmountDefinition = models.ParseAmountDefinition(payload.AmountDefinition)
		ingredient.NetAmount = payload.NetAmount
		if payload.NetAmountDefinition == "" {
			ingredient.NetAmountDefinition = models.NetEqualToAmount
		} else {
			ingredient.NetAmountDefinition = models.ParseNetAmountDefinition(payload.NetAmountDefinition)
		}

		if payload.RelativeTo != nil {
			if *payload.RelativeTo == 0 {
				recipe.ClearRelativeReference(ingredient.ID)
			} else if err := recipe.SetRelativeReference(ingredient.ID, *payload.RelativeTo); err != nil {
				if !errors.Is(err, models.ErrCircularReference) {
					return err
				}
				conflict = err
			}
		}
		resp = projectIngredient(ingredient)
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	if conflict != nil {
		putFlash(r, "Circular reference detected. The relative reference was cleared.")
		writeJSON(w, http.StatusConflict, map[string]any{"error": conflict.Error(), "ingredient": resp})
		return
	}
	status := http.StatusOK
	if ingredientID == 0 {
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}

func deleteIngredient(w http.ResponseWriter, r *http.Request, recipeID, ingredientID int) {
	err := update(func(t *models.Tracker) error {
		recipe, err := lookupRecipe(t, recipeID)
		if err != nil {
			return err
		}
		if !recipe.RemoveIngredient(ingredientID) {
			return fmt.Errorf("remove ingredient %d: %w", ingredientID, models.ErrIngredientNotFound)
		}
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func moveIngredient(w http.ResponseWriter, r *http.Request, recipeID, ingredientID int) {
	var payload positionRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeModelError(w, r, err)
		return
	}
	var resp recipeResponse
	err := update(func(t *models.Tracker) error {
		recipe, err := lookupRecipe(t, recipeID)
		if err != nil {
			return err
		}
		if recipe.Ingredient(ingredientID) == nil {
			return fmt.Errorf("move ingredient %d: %w", ingredientID, models.ErrIngredientNotFound)
		}
		if err := recipe.SetIngredientID(ingredientID, payload.Position); err != nil {
			return err
		}
		resp = projectRecipe(t, recipe)
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func renumberIngredients(w http.ResponseWriter, r *http.Request, recipeID int) {
	var payload renumberRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeModelError(w, r, err)
		return
	}
	var resp recipeResponse
	err := update(func(t *models.Tracker) error {
		recipe, err := lookupRecipe(t, recipeID)
		if err != nil {
			return err
		}
		if len(payload.Order) == 0 {
			recipe.RenumberIngredients()
		} else if err := recipe.RenumberIngredientIDs(payload.Order); err != nil {
			return err
		}
		resp = projectRecipe(t, recipe)
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
