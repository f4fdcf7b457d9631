package models

import "strings"

// ProductCategory classifies catalogue products.
type ProductCategory int

const (
	ProductCategoryMeat ProductCategory = iota
	ProductCategoryFish
	ProductCategoryVegetable
	ProductCategoryFruit
	ProductCategoryDairy
	ProductCategoryGrain
	ProductCategorySupplement
	ProductCategoryOil
	ProductCategorySoup
	ProductCategoryBeverage
	ProductCategoryCondiment
	ProductCategorySpice
	ProductCategorySnack
	ProductCategoryFrozen
	ProductCategoryOther
)

var productCategoryNames = [...]struct{ key, label string }{
	ProductCategoryMeat:       {"MEAT", "Meat"},
	ProductCategoryFish:       {"FISH", "Fish"},
	ProductCategoryVegetable:  {"VEGETABLE", "Vegetable"},
	ProductCategoryFruit:      {"FRUIT", "Fruit"},
	ProductCategoryDairy:      {"DAIRY", "Dairy"},
	ProductCategoryGrain:      {"GRAIN", "Grain"},
	ProductCategorySupplement: {"SUPPLEMENT", "Supplement"},
	ProductCategoryOil:        {"OIL", "Oil"},
	ProductCategorySoup:       {"SOUP", "Soup"},
	ProductCategoryBeverage:   {"BEVERAGE", "Beverage"},
	ProductCategoryCondiment:  {"CONDIMENT", "Condiment"},
	ProductCategorySpice:      {"SPICE", "Spice"},
	ProductCategorySnack:      {"SNACK", "Snack"},
	ProductCategoryFrozen:     {"FROZEN", "Frozen meal"},
	ProductCategoryOther:      {"OTHER", "Other"},
}

// ProductCategories lists every category in declaration order.
func ProductCategories() []ProductCategory {
	out := make([]ProductCategory, 0, len(productCategoryNames))
	for i := range productCategoryNames {
		out = append(out, ProductCategory(i))
	}
	return out
}

// Name returns the persisted identifier, e.g. "FROZEN".
func (c ProductCategory) Name() string {
	if c < 0 || int(c) >= len(productCategoryNames) {
		return productCategoryNames[ProductCategoryOther].key
	}
	return productCategoryNames[c].key
}

// String returns the display label, e.g. "Frozen meal".
func (c ProductCategory) String() string {
	if c < 0 || int(c) >= len(productCategoryNames) {
		return productCategoryNames[ProductCategoryOther].label
	}
	return productCategoryNames[c].label
}

// ParseProductCategory resolves a persisted name or display label. Unknown values map to Other.
func ParseProductCategory(value string) ProductCategory {
	value = strings.TrimSpace(value)
	for i, names := range productCategoryNames {
		if strings.EqualFold(value, names.key) || strings.EqualFold(value, names.label) {
			return ProductCategory(i)
		}
	}
	return ProductCategoryOther
}

// RecipeCategory classifies recipes.
type RecipeCategory int

const (
	RecipeCategoryMainCourse RecipeCategory = iota
	RecipeCategorySideDish
	RecipeCategorySalad
	RecipeCategoryDessert
	RecipeCategorySnack
	RecipeCategoryOther
)

var recipeCategoryNames = [...]struct{ key, label string }{
	RecipeCategoryMainCourse: {"MAIN_COURSE", "Main Course"},
	RecipeCategorySideDish:   {"SIDE_DISH", "Side Dish"},
	RecipeCategorySalad:      {"SALAD", "Salad"},
	RecipeCategoryDessert:    {"DESSERT", "Dessert"},
	RecipeCategorySnack:      {"SNACK", "Snack"},
	RecipeCategoryOther:      {"OTHER", "Other"},
}

// RecipeCategories lists every category in declaration order.
func RecipeCategories() []RecipeCategory {
	out := make([]RecipeCategory, 0, len(recipeCategoryNames))
	for i := range recipeCategoryNames {
		out = append(out, RecipeCategory(i))
	}
	return out
}

func (c RecipeCategory) Name() string {
	if c < 0 || int(c) >= len(recipeCategoryNames) {
		return recipeCategoryNames[RecipeCategoryOther].key
	}
	return recipeCategoryNames[c].key
}

func (c RecipeCategory) String() string {
	if c < 0 || int(c) >= len(recipeCategoryNames) {
		return recipeCategoryNames[RecipeCategoryOther].label
	}
	return recipeCategoryNames[c].label
}

// ParseRecipeCategory resolves a persisted name or display label. Unknown values map to Other.
func ParseRecipeCategory(value string) RecipeCategory {
	value = strings.TrimSpace(value)
	for i, names := range recipeCategoryNames {
		if strings.EqualFold(value, names.key) || strings.EqualFold(value, names.label) {
			return RecipeCategory(i)
		}
	}
	return RecipeCategoryOther
}

// ServingType tells whether a serving was taken from a product or a recipe.
type ServingType int

const (
	ServingTypeProduct ServingType = iota
	ServingTypeRecipe
)

func (t ServingType) Name() string {
	if t == ServingTypeRecipe {
		return "RECIPE"
	}
	return "PRODUCT"
}

func (t ServingType) String() string {
	if t == ServingTypeRecipe {
		return "Recipe"
	}
	return "Product"
}

// ParseServingType resolves "PRODUCT" or "RECIPE". The boolean is false for anything else.
func ParseServingType(value string) (ServingType, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "PRODUCT":
		return ServingTypeProduct, true
	case "RECIPE":
		return ServingTypeRecipe, true
	default:
		return ServingTypeProduct, false
	}
}

// MeasurementUnit is the unit a product's packaging amount is expressed in.
type MeasurementUnit int

const (
	UnitGram MeasurementUnit = iota
	UnitKilogram
	UnitMilliliter
	UnitLiter
)

func (u MeasurementUnit) Name() string {
	switch u {
	case UnitGram:
		return "G"
	case UnitKilogram:
		return "KG"
	case UnitMilliliter:
		return "ML"
	case UnitLiter:
		return "L"
	default:
		return "UNKNOWN"
	}
}

func (u MeasurementUnit) String() string {
	switch u {
	case UnitGram:
		return "g"
	case UnitKilogram:
		return "kg"
	case UnitMilliliter:
		return "ml"
	case UnitLiter:
		return "l"
	default:
		return "?"
	}
}

// ParseMeasurementUnit accepts "G", "KG", "ML", "L" in any case. Unknown values map to kilograms.
func ParseMeasurementUnit(value string) MeasurementUnit {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "G":
		return UnitGram
	case "ML":
		return UnitMilliliter
	case "L":
		return UnitLiter
	default:
		return UnitKilogram
	}
}
