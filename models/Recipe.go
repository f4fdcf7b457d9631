package models

import (
	"context"
	"errors"
	"fmt"

	applog "nutrilog/internal/log"
)

var (
	ErrIngredientNotFound = errors.New("models: ingredient not found")
	ErrCircularReference  = errors.New("models: circular relative reference")
)

// NetMassData holds the measured post-cooking mass used for evaporation correction.
type NetMassData struct {
	MeasuredValue        float64 `json:"measured_value"` // g
	Reduction            float64 `json:"reduction"`      // container mass, g
	AverageRatio         float64 `json:"average_ratio"`  // legacy, persisted only
	AdjustForEvaporation bool    `json:"adjust_for_evaporation"`
}

// RecipeDetails holds optional descriptive data. Times are in minutes.
type RecipeDetails struct {
	Description string  `json:"description"`
	PrepTime    float64 `json:"prep_time"`
	CookingTime float64 `json:"cooking_time"`
	TotalTime   float64 `json:"total_time"`
	Created     string  `json:"date_created"` // YYYY-MM-DD
}

// Recipe is an ID-keyed set of ingredients with optional evaporation data.
type Recipe struct {
	ID          int                 `json:"id"`
	Name        string              `json:"name"`
	Category    RecipeCategory      `json:"category"`
	Ingredients map[int]*Ingredient `json:"ingredients"`
	NetMass     NetMassData         `json:"net_mass"`
	Details     RecipeDetails       `json:"details"`
}

// NewRecipe returns an empty recipe.
func NewRecipe(id int, name string, category RecipeCategory) *Recipe {
	return &Recipe{
		ID:          id,
		Name:        name,
		Category:    category,
		Ingredients: make(map[int]*Ingredient),
		Details:     RecipeDetails{Created: defaultLastUpdate},
	}
}

func (r *Recipe) Label() string {
	return fmt.Sprintf("%d. %s", r.ID, r.Name)
}

func (r *Recipe) ItemID() int           { return r.ID }
func (r *Recipe) ItemName() string      { return r.Name }
func (r *Recipe) ItemType() ServingType { return ServingTypeRecipe }

// AddIngredient attaches ingredient under the next free ID and returns it.
func (r *Recipe) AddIngredient(ingredient *Ingredient) *Ingredient {
	if r.Ingredients == nil {
		r.Ingredients = make(map[int]*Ingredient)
	}
	id := 1
	for key := range r.Ingredients {
		if key >= id {
			id = key + 1
		}
	}
	ingredient.ID = id
	ingredient.recipe = r
	r.Ingredients[id] = ingredient
	return ingredient
}

// PutIngredient stores ingredient under its own ID, replacing any existing entry.
// Decoders use it before calling LinkIngredientReferences.
func (r *Recipe) PutIngredient(ingredient *Ingredient) {
	if r.Ingredients == nil {
		r.Ingredients = make(map[int]*Ingredient)
	}
	ingredient.recipe = r
	r.Ingredients[ingredient.ID] = ingredient
}

// RemoveIngredient deletes the ingredient and clears every sibling reference to it.
func (r *Recipe) RemoveIngredient(id int) bool {
	removed, ok := r.Ingredients[id]
	if !ok {
		applog.Debug(context.Background(), "ingredient not found", "recipe", r.Label(), "ingredient", id)
		return false
	}
	for _, ingredient := range r.Ingredients {
		if ingredient.RelativeToID == id {
			applog.Debug(context.Background(), "clearing relative reference", "from", ingredient.Label(), "to", removed.Label())
			ingredient.RelativeToID = 0
		}
	}
	removed.recipe = nil
	delete(r.Ingredients, id)
	return true
}

// Ingredient returns the ingredient with the given ID, or nil.
func (r *Recipe) Ingredient(id int) *Ingredient {
	return r.Ingredients[id]
}

// IngredientIDs returns the ingredient keys in ascending order.
func (r *Recipe) IngredientIDs() []int {
	return sortedKeys(r.Ingredients, 1)
}

// SetRelativeReference points ingredient id at target. When the new link closes a
// cycle it is rolled back to no reference and ErrCircularReference is returned.
func (r *Recipe) SetRelativeReference(id, target int) error {
	ingredient, ok := r.Ingredients[id]
	if !ok {
		return fmt.Errorf("set reference on %d: %w", id, ErrIngredientNotFound)
	}
	if _, ok := r.Ingredients[target]; !ok {
		return fmt.Errorf("set reference to %d: %w", target, ErrIngredientNotFound)
	}
	ingredient.RelativeToID = target
	if ingredient.DetectCircularReference() {
		ingredient.RelativeToID = 0
		applog.Debug(context.Background(), "relative reference rejected", "ingredient", ingredient.Label(), "target", target)
		return fmt.Errorf("set reference %d -> %d: %w", id, target, ErrCircularReference)
	}
	return nil
}

// ClearRelativeReference removes the ingredient's relative reference.
func (r *Recipe) ClearRelativeReference(id int) bool {
	ingredient, ok := r.Ingredients[id]
	if !ok {
		return false
	}
	ingredient.RelativeToID = 0
	return true
}

// LinkIngredientReferences binds every ingredient to this recipe and drops
// references to IDs that are not present. Call it after loading ingredients.
func (r *Recipe) LinkIngredientReferences() {
	for _, ingredient := range r.Ingredients {
		ingredient.recipe = r
		if ingredient.RelativeToID == 0 {
			continue
		}
		if _, ok := r.Ingredients[ingredient.RelativeToID]; !ok {
			applog.Debug(context.Background(), "dropping dangling relative reference", "ingredient", ingredient.Label(), "target", ingredient.RelativeToID)
			ingredient.RelativeToID = 0
		}
	}
}

func setIngredientID(i *Ingredient, id int) { i.ID = id }

func (r *Recipe) applyIngredientKeys(ingredients map[int]*Ingredient, mapping map[int]int) {
	for _, ingredient := range ingredients {
		if ingredient.RelativeToID != 0 {
			ingredient.RelativeToID = mapping[ingredient.RelativeToID]
		}
	}
	r.Ingredients = ingredients
}

// RenumberIngredients closes gaps, renumbering from 1 in ascending ID order.
func (r *Recipe) RenumberIngredients() {
	ingredients, mapping := compact(r.Ingredients, 1, setIngredientID)
	r.applyIngredientKeys(ingredients, mapping)
}

// RenumberIngredientIDs renumbers from 1 following order.
func (r *Recipe) RenumberIngredientIDs(order []int) error {
	ingredients, mapping, err := reorder(r.Ingredients, order, 1, setIngredientID)
	if err != nil {
		return fmt.Errorf("renumber ingredients of %s: %w", r.Label(), err)
	}
	r.applyIngredientKeys(ingredients, mapping)
	return nil
}

// SetIngredientID moves ingredient id to position target (1..N) and renumbers.
func (r *Recipe) SetIngredientID(id, target int) error {
	if target < 1 || target > len(r.Ingredients) {
		return fmt.Errorf("ingredient position %d outside 1..%d: %w", target, len(r.Ingredients), ErrInvalidPosition)
	}
	ingredients, mapping, err := move(r.Ingredients, id, target, 1, setIngredientID)
	if err != nil {
		return fmt.Errorf("move ingredient of %s: %w", r.Label(), err)
	}
	r.applyIngredientKeys(ingredients, mapping)
	return nil
}

// TotalAmount sums the raw amounts. It is a data-entry check, not a physical mass.
func (r *Recipe) TotalAmount() float64 {
	var total float64
	for _, ingredient := range r.Ingredients {
		total += ingredient.Amount
	}
	return total
}

// TotalNetMass sums the resolved net masses.
func (r *Recipe) TotalNetMass() float64 {
	var total float64
	for _, ingredient := range r.Ingredients {
		total += ingredient.NetMass()
	}
	return total
}

func (r *Recipe) TotalNutrition() NutritionData {
	var total NutritionData
	for _, ingredient := range r.Ingredients {
		total = total.Add(ingredient.NutritionData())
	}
	return total
}

func (r *Recipe) TotalPrice() float64 {
	var total float64
	for _, ingredient := range r.Ingredients {
		total += ingredient.Price()
	}
	return total
}

// NetMeasuredMass is the measured mass minus the container, never below zero.
func (r *Recipe) NetMeasuredMass() float64 {
	return max(0, r.NetMass.MeasuredValue-r.NetMass.Reduction)
}

// NetMassRatio is total net mass over net measured mass when evaporation
// correction is on, 1 when it is off, and 0 whenever either mass is zero.
func (r *Recipe) NetMassRatio() float64 {
	total := r.TotalNetMass()
	if total == 0 {
		return 0
	}
	ratio, ok := r.evaporationRatio(total)
	if !ok {
		return 0
	}
	return ratio
}

func (r *Recipe) evaporationRatio(totalNetMass float64) (float64, bool) {
	if !r.NetMass.AdjustForEvaporation {
		return 1, true
	}
	measured := r.NetMeasuredMass()
	if measured == 0 {
		return 0, false
	}
	return totalNetMass / measured, true
}

// NutritionPer100g normalizes the total nutrition to 100 g of the finished dish.
func (r *Recipe) NutritionPer100g() NutritionData {
	total := r.TotalNetMass()
	if total == 0 {
		return NutritionData{}
	}
	ratio, ok := r.evaporationRatio(total)
	if !ok {
		return NutritionData{}
	}
	perGram, err := r.TotalNutrition().Div(total)
	if err != nil {
		return NutritionData{}
	}
	return perGram.Scale(ratio * 100)
}

// PricePer100g normalizes the total price to 100 g of the finished dish.
func (r *Recipe) PricePer100g() float64 {
	total := r.TotalNetMass()
	if total == 0 {
		return 0
	}
	ratio, ok := r.evaporationRatio(total)
	if !ok {
		return 0
	}
	return r.TotalPrice() / total * ratio * 100
}

// Clone deep-copies the recipe. Ingredients keep their IDs and intra-recipe
// references but are bound to the clone.
func (r *Recipe) Clone() *Recipe {
	clone := *r
	clone.Ingredients = make(map[int]*Ingredient, len(r.Ingredients))
	for id, ingredient := range r.Ingredients {
		copied := ingredient.Clone()
		copied.recipe = &clone
		clone.Ingredients[id] = copied
	}
	return &clone
}
