package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	applog "nutrilog/internal/log"
	"nutrilog/models"
)

var errInvalidPayload = errors.New("handlers: invalid request payload")

type positionRequest struct {
	Position int `json:"position"`
}

type renumberRequest struct {
	Order []int `json:"order"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		applog.Debug(r.Context(), "invalid json payload", "path", r.URL.Path, "error", err)
		return errInvalidPayload
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errWorkspaceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrProductNotFound),
		errors.Is(err, models.ErrRecipeNotFound),
		errors.Is(err, models.ErrIngredientNotFound),
		errors.Is(err, models.ErrDailyIntakeNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrCircularReference),
		errors.Is(err, models.ErrDailyIntakeExists):
		return http.StatusConflict
	case errors.Is(err, models.ErrNullEntry),
		errors.Is(err, models.ErrInvalidPosition),
		errors.Is(err, models.ErrInvalidOrder),
		errors.Is(err, errInvalidPayload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeModelError maps engine sentinels onto status codes.
func writeModelError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		applog.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeJSONError(w, status, "internal error")
		return
	}
	applog.Debug(r.Context(), "request rejected", "path", r.URL.Path, "status", status, "error", err)
	writeJSONError(w, status, err.Error())
}

// pathSegments trims prefix from the request path and splits the remainder.
func pathSegments(r *http.Request, prefix string) []string {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func parseID(value string) (int, bool) {
	id, err := strconv.Atoi(value)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

type productDetailsPayload struct {
	Description     string  `json:"description"`
	Store           string  `json:"store"`
	Manufacturer    string  `json:"manufacturer"`
	PackagingAmount float64 `json:"packaging_amount"`
	PackagingUnit   string  `json:"packaging_unit"`
	Density         float64 `json:"density"`
	Price           float64 `json:"price"`
	LastUpdate      string  `json:"last_update_date"`
}

type productResponse struct {
	ID         int                   `json:"id"`
	Name       string                `json:"name"`
	Label      string                `json:"label"`
	Category   string                `json:"category"`
	Nutrition  models.NutritionData  `json:"nutrition"`
	Details    productDetailsPayload `json:"details"`
	PricePerKg float64               `json:"price_per_kg"`
	Favorite   bool                  `json:"favorite"`
}

func projectProduct(t *models.Tracker, p *models.Product) productResponse {
	return productResponse{
		ID:        p.ID,
		Name:      p.Name,
		Label:     p.Label(),
		Category:  p.Category.Name(),
		Nutrition: p.Nutrition,
		Details: productDetailsPayload{
			Description:     p.Details.Description,
			Store:           p.Details.Store,
			Manufacturer:    p.Details.Manufacturer,
			PackagingAmount: p.Details.PackagingAmount,
			PackagingUnit:   p.Details.PackagingUnit.Name(),
			Density:         p.Details.Density,
			Price:           p.Details.Price,
			LastUpdate:      p.Details.LastUpdate,
		},
		PricePerKg: p.Details.PricePerGram() * 1000,
		Favorite:   t.IsFavorite(models.NewServing(p, 0)),
	}
}

type ingredientResponse struct {
	ID                  int                  `json:"id"`
	Label               string               `json:"label"`
	ProductID           int                  `json:"product_id"`
	ProductName         string               `json:"product_name"`
	Amount              float64              `json:"amount"`
	AmountDefinition    string               `json:"amount_definition"`
	NetAmount           float64              `json:"net_amount"`
	NetAmountDefinition string               `json:"net_amount_definition"`
	RelativeTo          int                  `json:"relative_to"`
	Mass                float64              `json:"mass"`
	NetMass             float64              `json:"net_mass"`
	Price               float64              `json:"price"`
	Nutrition           models.NutritionData `json:"nutrition"`
}

func projectIngredient(i *models.Ingredient) ingredientResponse {
	resp := ingredientResponse{
		ID:                  i.ID,
		Label:               i.Label(),
		Amount:              i.Amount,
		AmountDefinition:    i.AmountDefinition.Name(),
		NetAmount:           i.NetAmount,
		NetAmountDefinition: i.NetAmountDefinition.Name(),
		RelativeTo:          i.RelativeToID,
		Mass:                i.Mass(),
		NetMass:             i.NetMass(),
		Price:               i.Price(),
		Nutrition:           i.NutritionData(),
	}
	if i.Product != nil {
		resp.ProductID = i.Product.ID
		resp.ProductName = i.Product.Name
	}
	return resp
}

type recipeTotals struct {
	Amount           float64              `json:"amount"`
	NetMass          float64              `json:"net_mass"`
	NetMassRatio     float64              `json:"net_mass_ratio"`
	Nutrition        models.NutritionData `json:"nutrition"`
	Price            float64              `json:"price"`
	NutritionPer100g models.NutritionData `json:"nutrition_per_100g"`
	PricePer100g     float64              `json:"price_per_100g"`
}

type recipeResponse struct {
	ID          int                  `json:"id"`
	Name        string               `json:"name"`
	Label       string               `json:"label"`
	Category    string               `json:"category"`
	Details     models.RecipeDetails `json:"details"`
	NetMass     models.NetMassData   `json:"net_mass"`
	Ingredients []ingredientResponse `json:"ingredients"`
	Totals      recipeTotals         `json:"totals"`
	Favorite    bool                 `json:"favorite"`
}

func projectRecipe(t *models.Tracker, r *models.Recipe) recipeResponse {
	resp := recipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Label:       r.Label(),
		Category:    r.Category.Name(),
		Details:     r.Details,
		NetMass:     r.NetMass,
		Ingredients: make([]ingredientResponse, 0, len(r.Ingredients)),
		Totals: recipeTotals{
			Amount:           r.TotalAmount(),
			NetMass:          r.TotalNetMass(),
			NetMassRatio:     r.NetMassRatio(),
			Nutrition:        r.TotalNutrition(),
			Price:            r.TotalPrice(),
			NutritionPer100g: r.NutritionPer100g(),
			PricePer100g:     r.PricePer100g(),
		},
		Favorite: t.IsFavorite(models.NewServing(r, 0)),
	}
	for _, id := range r.IngredientIDs() {
		resp.Ingredients = append(resp.Ingredients, projectIngredient(r.Ingredients[id]))
	}
	return resp
}

type servingResponse struct {
	Index     int                  `json:"index"`
	ItemID    int                  `json:"item_id"`
	ItemName  string               `json:"item_name"`
	Type      string               `json:"type"`
	Portion   float64              `json:"portion"`
	Nutrition models.NutritionData `json:"nutrition"`
	Consumed  models.NutritionData `json:"consumed"`
}

type dayResponse struct {
	Date     string               `json:"date"`
	Products []servingResponse    `json:"products"`
	Recipes  []servingResponse    `json:"recipes"`
	Total    models.NutritionData `json:"total"`
}

func projectServings(servings []models.Serving) []servingResponse {
	out := make([]servingResponse, 0, len(servings))
	for i, s := range servings {
		out = append(out, servingResponse{
			Index:     i,
			ItemID:    s.ItemID,
			ItemName:  s.ItemName,
			Type:      s.ItemType.Name(),
			Portion:   s.Portion,
			Nutrition: s.Nutrition,
			Consumed:  s.ConsumedNutrition(),
		})
	}
	return out
}

func projectDay(d *models.DailyIntake) dayResponse {
	return dayResponse{
		Date:     d.Date,
		Products: projectServings(d.Products),
		Recipes:  projectServings(d.Recipes),
		Total:    d.TotalConsumedNutrition(),
	}
}
