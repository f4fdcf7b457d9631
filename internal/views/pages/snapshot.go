package pages

import (
	"nutrilog/internal/views/theme"
	"nutrilog/models"
)

type ProductRow struct {
	ID         int
	Label      string
	Category   string
	Store      string
	Nutrition  models.NutritionData
	PricePerKg float64
	Favorite   bool
}

type IngredientRow struct {
	ID      int
	Product string
	Amount  string
	Net     string
	Mass    float64
	NetMass float64
	Price   float64
}

type RecipeRow struct {
	ID           int
	Label        string
	Category     string
	NetMass      float64
	Per100g      models.NutritionData
	PricePer100g float64
	Favorite     bool
	Ingredients  []IngredientRow
}

type ServingRow struct {
	Index    int
	Label    string
	Type     string
	Portion  float64
	Consumed models.NutritionData
}

// DaySnapshot is the servings logged on one date.
type DaySnapshot struct {
	Date     string
	Products []ServingRow
	Recipes  []ServingRow
	Total    models.NutritionData
}

// Snapshot is a render-ready copy of the tracker, taken under the workspace lock
// so templates never touch live registry data.
type Snapshot struct {
	Name     string
	Path     string
	Dirty    bool
	Summary  models.Summary
	Products []ProductRow
	Recipes  []RecipeRow
	Today    DaySnapshot
	Dates    []string
	Theme    string
}

// NewSnapshot copies the non-null entries of t that pass the filters.
func NewSnapshot(t *models.Tracker, products ProductFilters, recipes RecipeFilters, dirty bool, themeKey string) Snapshot {
	s := Snapshot{
		Name:    t.Name,
		Path:    t.Path,
		Dirty:   dirty,
		Summary: t.Summary(),
		Dates:   t.Dates(),
		Theme:   theme.Resolve(themeKey).Key,
	}

	catalogue := make([]*models.Product, 0, len(t.Products))
	for _, id := range t.ProductIDs() {
		if id != 0 {
			catalogue = append(catalogue, t.Products[id])
		}
	}
	for _, p := range FilterProducts(catalogue, products) {
		s.Products = append(s.Products, ProductRow{
			ID:         p.ID,
			Label:      p.Label(),
			Category:   p.Category.String(),
			Store:      p.Details.Store,
			Nutrition:  p.Nutrition,
			PricePerKg: p.Details.PricePerGram() * 1000,
			Favorite:   t.IsFavorite(models.NewServing(p, 0)),
		})
	}

	book := make([]*models.Recipe, 0, len(t.Recipes))
	for _, id := range t.RecipeIDs() {
		if id != 0 {
			book = append(book, t.Recipes[id])
		}
	}
	for _, r := range FilterRecipes(book, recipes) {
		s.Recipes = append(s.Recipes, recipeRow(t, r))
	}

	s.Today = NewDaySnapshot(t, s.Summary.Today)
	return s
}

func recipeRow(t *models.Tracker, r *models.Recipe) RecipeRow {
	row := RecipeRow{
		ID:           r.ID,
		Label:        r.Label(),
		Category:     r.Category.String(),
		NetMass:      r.TotalNetMass(),
		Per100g:      r.NutritionPer100g(),
		PricePer100g: r.PricePer100g(),
		Favorite:     t.IsFavorite(models.Serving{ItemID: r.ID, ItemType: models.ServingTypeRecipe}),
	}
	for _, id := range r.IngredientIDs() {
		ingredient := r.Ingredients[id]
		name := DefaultDash("")
		if ingredient.Product != nil {
			name = DefaultDash(ingredient.Product.Name)
		}
		row.Ingredients = append(row.Ingredients, IngredientRow{
			ID:      id,
			Product: name,
			Amount:  AmountDescription(ingredient),
			Net:     NetDescription(ingredient),
			Mass:    ingredient.Mass(),
			NetMass: ingredient.NetMass(),
			Price:   ingredient.Price(),
		})
	}
	return row
}

// NewDaySnapshot copies the servings of date. A missing date yields an empty snapshot.
func NewDaySnapshot(t *models.Tracker, date string) DaySnapshot {
	day := DaySnapshot{Date: date}
	intake, ok := t.DailyIntake(date)
	if !ok {
		return day
	}
	for i, s := range intake.Products {
		day.Products = append(day.Products, servingRow(i, s))
	}
	for i, s := range intake.Recipes {
		day.Recipes = append(day.Recipes, servingRow(i, s))
	}
	day.Total = intake.TotalConsumedNutrition()
	return day
}

func servingRow(index int, s models.Serving) ServingRow {
	return ServingRow{
		Index:    index,
		Label:    s.Label(),
		Type:     s.ItemType.String(),
		Portion:  s.Portion,
		Consumed: s.ConsumedNutrition(),
	}
}

// EmptySnapshot returns a zero-value snapshot to simplify call sites when no data is available.
func EmptySnapshot() Snapshot {
	return Snapshot{Theme: theme.DefaultKey}
}
