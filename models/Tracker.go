package models

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	applog "nutrilog/internal/log"
)

var (
	ErrProductNotFound     = errors.New("models: product not found")
	ErrRecipeNotFound      = errors.New("models: recipe not found")
	ErrDailyIntakeNotFound = errors.New("models: daily intake not found")
	ErrDailyIntakeExists   = errors.New("models: daily intake already exists")
	ErrNullEntry           = errors.New("models: the null entry cannot be changed")
)

// DateLayout is the ISO date format used as the daily intake key.
const DateLayout = "2006-01-02"

var nowFunc = time.Now

// Tracker is the top-level registry: catalogue, recipes, daily intake, favorites
// and the daily target. Products and Recipes always hold a null entry at ID 0.
type Tracker struct {
	Name string
	Path string

	Products         map[int]*Product
	Recipes          map[int]*Recipe
	DailyIntakes     map[string]*DailyIntake
	FavoriteProducts map[int]struct{}
	FavoriteRecipes  map[int]struct{}
	Targets          NutritionData
}

// NewTracker returns an empty registry seeded with the null product and recipe.
func NewTracker(name string) *Tracker {
	t := &Tracker{
		Name:             name,
		Products:         make(map[int]*Product),
		Recipes:          make(map[int]*Recipe),
		DailyIntakes:     make(map[string]*DailyIntake),
		FavoriteProducts: make(map[int]struct{}),
		FavoriteRecipes:  make(map[int]struct{}),
	}
	t.seedNullProduct()
	t.seedNullRecipe()
	return t
}

func (t *Tracker) seedNullProduct() { t.Products[0] = NewProduct(0, "", ProductCategoryOther) }
func (t *Tracker) seedNullRecipe()  { t.Recipes[0] = NewRecipe(0, "", RecipeCategoryOther) }

func nextKey[T any](m map[int]T) int {
	if len(m) == 0 {
		return 1
	}
	keys := sortedKeys(m, 0)
	return keys[len(keys)-1] + 1
}

// Product returns the product with id, falling back to the null product.
func (t *Tracker) Product(id int) *Product {
	if p, ok := t.Products[id]; ok {
		return p
	}
	applog.Debug(context.Background(), "product not in catalogue, using null product", "product", id)
	if _, ok := t.Products[0]; !ok {
		t.seedNullProduct()
	}
	return t.Products[0]
}

// LookupProduct returns the product with id and whether it exists.
func (t *Tracker) LookupProduct(id int) (*Product, bool) {
	p, ok := t.Products[id]
	return p, ok
}

// Recipe returns the recipe with id and whether it exists.
func (t *Tracker) Recipe(id int) (*Recipe, bool) {
	r, ok := t.Recipes[id]
	return r, ok
}

// ProductIDs returns the catalogue keys in ascending order, null entry included.
func (t *Tracker) ProductIDs() []int { return sortedKeys(t.Products, 0) }

// RecipeIDs returns the recipe keys in ascending order, null entry included.
func (t *Tracker) RecipeIDs() []int { return sortedKeys(t.Recipes, 0) }

// AddProduct appends a product with default details under the next free ID.
func (t *Tracker) AddProduct(name string, category ProductCategory) *Product {
	product := NewProduct(nextKey(t.Products), name, category)
	t.Products[product.ID] = product
	return product
}

// RemoveProduct deletes a product. The null entry cannot be removed.
func (t *Tracker) RemoveProduct(id int) bool {
	if _, ok := t.Products[id]; !ok || id == 0 {
		applog.Debug(context.Background(), "product not removed", "product", id)
		return false
	}
	delete(t.Products, id)
	delete(t.FavoriteProducts, id)
	return true
}

// DuplicateProduct inserts a copy directly after the original, shifting every
// larger ID up by one.
func (t *Tracker) DuplicateProduct(id int) (*Product, error) {
	original, ok := t.Products[id]
	if !ok {
		return nil, fmt.Errorf("duplicate product %d: %w", id, ErrProductNotFound)
	}
	if id == 0 {
		return nil, fmt.Errorf("duplicate product 0: %w", ErrNullEntry)
	}
	mapping := make(map[int]int)
	shift := sortedKeys(t.Products, id+1)
	slices.Reverse(shift)
	for _, key := range shift {
		product := t.Products[key]
		delete(t.Products, key)
		product.ID = key + 1
		t.Products[key+1] = product
		mapping[key] = key + 1
	}
	duplicate := original.Clone()
	duplicate.ID = id + 1
	t.Products[duplicate.ID] = duplicate
	t.remapProductReferences(mapping)
	return duplicate, nil
}

func setProductID(p *Product, id int) { p.ID = id }

// RenumberProducts assigns dense IDs 0..N-1 in ascending ID order.
func (t *Tracker) RenumberProducts() {
	products, mapping := compact(t.Products, 0, setProductID)
	t.Products = products
	t.remapProductReferences(mapping)
}

// RenumberProductIDs assigns IDs 1..N following order. The null product stays at 0.
func (t *Tracker) RenumberProductIDs(order []int) error {
	products, mapping, err := reorder(t.Products, order, 1, setProductID)
	if err != nil {
		return fmt.Errorf("renumber products: %w", err)
	}
	t.Products = products
	t.remapProductReferences(mapping)
	return nil
}

// SetProductID moves product id to position target (1..N) and renumbers the
// catalogue 0..N-1.
func (t *Tracker) SetProductID(id, target int) error {
	if id == 0 {
		return fmt.Errorf("move product 0: %w", ErrNullEntry)
	}
	if target < 1 || target > len(t.Products) {
		return fmt.Errorf("product position %d outside 1..%d: %w", target, len(t.Products), ErrInvalidPosition)
	}
	products, mapping, err := move(t.Products, id, target, 0, setProductID)
	if err != nil {
		return fmt.Errorf("move product: %w", err)
	}
	t.Products = products
	t.remapProductReferences(mapping)
	return nil
}

// Ingredient products are shared pointers and follow the move on their own.
func (t *Tracker) remapProductReferences(mapping map[int]int) {
	t.FavoriteProducts = remapSet(t.FavoriteProducts, mapping)
}

// AddRecipe appends an empty recipe under the next free ID.
func (t *Tracker) AddRecipe(name string, category RecipeCategory, description string) *Recipe {
	recipe := NewRecipe(nextKey(t.Recipes), name, category)
	recipe.Details.Description = description
	recipe.Details.Created = nowFunc().Format(DateLayout)
	t.Recipes[recipe.ID] = recipe
	return recipe
}

// RemoveRecipe deletes a recipe. The null entry cannot be removed.
func (t *Tracker) RemoveRecipe(id int) bool {
	if _, ok := t.Recipes[id]; !ok || id == 0 {
		applog.Debug(context.Background(), "recipe not removed", "recipe", id)
		return false
	}
	delete(t.Recipes, id)
	delete(t.FavoriteRecipes, id)
	return true
}

// DuplicateRecipe appends a deep copy under the next free ID.
func (t *Tracker) DuplicateRecipe(id int) (*Recipe, error) {
	original, ok := t.Recipes[id]
	if !ok {
		return nil, fmt.Errorf("duplicate recipe %d: %w", id, ErrRecipeNotFound)
	}
	if id == 0 {
		return nil, fmt.Errorf("duplicate recipe 0: %w", ErrNullEntry)
	}
	duplicate := original.Clone()
	duplicate.ID = nextKey(t.Recipes)
	t.Recipes[duplicate.ID] = duplicate
	return duplicate, nil
}

func setRecipeID(r *Recipe, id int) { r.ID = id }

// RenumberRecipes assigns dense IDs 0..N-1 in ascending ID order.
func (t *Tracker) RenumberRecipes() {
	recipes, mapping := compact(t.Recipes, 0, setRecipeID)
	t.Recipes = recipes
	t.FavoriteRecipes = remapSet(t.FavoriteRecipes, mapping)
}

// RenumberRecipeIDs assigns IDs 1..N following order. The null recipe stays at 0.
func (t *Tracker) RenumberRecipeIDs(order []int) error {
	recipes, mapping, err := reorder(t.Recipes, order, 1, setRecipeID)
	if err != nil {
		return fmt.Errorf("renumber recipes: %w", err)
	}
	t.Recipes = recipes
	t.FavoriteRecipes = remapSet(t.FavoriteRecipes, mapping)
	return nil
}

// SetRecipeID moves recipe id to position target (1..N-1) and renumbers from 1.
func (t *Tracker) SetRecipeID(id, target int) error {
	if id == 0 {
		return fmt.Errorf("move recipe 0: %w", ErrNullEntry)
	}
	if target < 1 || target > len(t.Recipes)-1 {
		return fmt.Errorf("recipe position %d outside 1..%d: %w", target, len(t.Recipes)-1, ErrInvalidPosition)
	}
	recipes, mapping, err := move(t.Recipes, id, target, 1, setRecipeID)
	if err != nil {
		return fmt.Errorf("move recipe: %w", err)
	}
	t.Recipes = recipes
	t.FavoriteRecipes = remapSet(t.FavoriteRecipes, mapping)
	return nil
}

func remapSet(set map[int]struct{}, mapping map[int]int) map[int]struct{} {
	out := make(map[int]struct{}, len(set))
	for id := range set {
		if next, ok := mapping[id]; ok {
			out[next] = struct{}{}
			continue
		}
		out[id] = struct{}{}
	}
	return out
}

// AddDailyIntake creates, or replaces with an empty record, the entry for date.
func (t *Tracker) AddDailyIntake(date string) *DailyIntake {
	intake := NewDailyIntake(date)
	t.DailyIntakes[date] = intake
	return intake
}

// DailyIntake returns the record for date and whether it exists.
func (t *Tracker) DailyIntake(date string) (*DailyIntake, bool) {
	intake, ok := t.DailyIntakes[date]
	return intake, ok
}

func (t *Tracker) RemoveDailyIntake(date string) bool {
	if _, ok := t.DailyIntakes[date]; !ok {
		applog.Debug(context.Background(), "daily intake not found", "date", date)
		return false
	}
	delete(t.DailyIntakes, date)
	return true
}

// DuplicateDailyIntake copies the record of src over dst, creating dst if needed.
func (t *Tracker) DuplicateDailyIntake(src, dst string) error {
	source, ok := t.DailyIntakes[src]
	if !ok {
		return fmt.Errorf("duplicate daily intake %s: %w", src, ErrDailyIntakeNotFound)
	}
	copied := source.Clone()
	copied.Date = dst
	t.DailyIntakes[dst] = copied
	return nil
}

// DuplicateTodaysDailyIntake copies today's record to date. When today has no
// record a blank one is added for date instead.
func (t *Tracker) DuplicateTodaysDailyIntake(date string) error {
	if _, ok := t.DailyIntakes[date]; ok {
		return fmt.Errorf("duplicate today's intake to %s: %w", date, ErrDailyIntakeExists)
	}
	today := nowFunc().Format(DateLayout)
	if _, ok := t.DailyIntakes[today]; !ok {
		applog.Debug(context.Background(), "no record for today, adding blank daily intake", "today", today, "date", date)
		t.AddDailyIntake(date)
		return nil
	}
	return t.DuplicateDailyIntake(today, date)
}

// Dates returns the daily intake keys in ascending order.
func (t *Tracker) Dates() []string {
	dates := make([]string, 0, len(t.DailyIntakes))
	for date := range t.DailyIntakes {
		dates = append(dates, date)
	}
	slices.Sort(dates)
	return dates
}

func (t *Tracker) favorites(kind ServingType) map[int]struct{} {
	if kind == ServingTypeRecipe {
		if t.FavoriteRecipes == nil {
			t.FavoriteRecipes = make(map[int]struct{})
		}
		return t.FavoriteRecipes
	}
	if t.FavoriteProducts == nil {
		t.FavoriteProducts = make(map[int]struct{})
	}
	return t.FavoriteProducts
}

// ToggleFavorite flips the serving's item in the favorites and returns whether
// it is now a favorite.
func (t *Tracker) ToggleFavorite(s Serving) bool {
	set := t.favorites(s.ItemType)
	if _, ok := set[s.ItemID]; ok {
		delete(set, s.ItemID)
		return false
	}
	set[s.ItemID] = struct{}{}
	return true
}

func (t *Tracker) IsFavorite(s Serving) bool {
	_, ok := t.favorites(s.ItemType)[s.ItemID]
	return ok
}

// FavoriteIDs returns the favorite IDs of kind in ascending order.
func (t *Tracker) FavoriteIDs(kind ServingType) []int {
	return sortedKeys(t.favorites(kind), 0)
}

// ProductNames lists names in ascending ID order.
func (t *Tracker) ProductNames() []string {
	names := make([]string, 0, len(t.Products))
	for _, id := range t.ProductIDs() {
		names = append(names, t.Products[id].Name)
	}
	return names
}

func (t *Tracker) RecipeNames() []string {
	names := make([]string, 0, len(t.Recipes))
	for _, id := range t.RecipeIDs() {
		names = append(names, t.Recipes[id].Name)
	}
	return names
}

// ClearProducts empties the catalogue and re-seeds the null product.
func (t *Tracker) ClearProducts() {
	t.Products = make(map[int]*Product)
	t.FavoriteProducts = make(map[int]struct{})
	t.seedNullProduct()
}

// ClearRecipes empties the recipes and re-seeds the null recipe.
func (t *Tracker) ClearRecipes() {
	t.Recipes = make(map[int]*Recipe)
	t.FavoriteRecipes = make(map[int]struct{})
	t.seedNullRecipe()
}

func (t *Tracker) ClearDailyIntakes() {
	t.DailyIntakes = make(map[string]*DailyIntake)
}

// Summary is a read-only snapshot for dashboards.
type Summary struct {
	Products  int
	Recipes   int
	Days      int
	Today     string
	HasToday  bool
	Consumed  NutritionData
	Targets   NutritionData
	Remaining NutritionData
	Favorites int
}

// Summary counts the non-null entries and compares today's intake with the targets.
func (t *Tracker) Summary() Summary {
	today := nowFunc().Format(DateLayout)
	s := Summary{
		Products:  max(0, len(t.Products)-1),
		Recipes:   max(0, len(t.Recipes)-1),
		Days:      len(t.DailyIntakes),
		Today:     today,
		Targets:   t.Targets,
		Favorites: len(t.FavoriteProducts) + len(t.FavoriteRecipes),
	}
	if intake, ok := t.DailyIntakes[today]; ok {
		s.HasToday = true
		s.Consumed = intake.TotalConsumedNutrition()
	}
	s.Remaining = t.Targets.Add(s.Consumed.Scale(-1))
	return s
}
