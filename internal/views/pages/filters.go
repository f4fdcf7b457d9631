package pages

import (
	"net/http"
	"strings"

	"nutrilog/models"
)

// ProductFilters capture the client-driven state for catalogue lookups.
type ProductFilters struct {
	Query    string
	Category string
}

// ProductFiltersFromRequest extracts filter inputs from an HTTP request.
func ProductFiltersFromRequest(r *http.Request) ProductFilters {
	filters := ProductFilters{}
	if err := r.ParseForm(); err != nil {
		return filters
	}
	filters.Query = strings.TrimSpace(r.FormValue("q"))
	filters.Category = strings.ToUpper(strings.TrimSpace(r.FormValue("category")))
	return filters
}

// FilterProducts applies the filters to products, keeping their order.
func FilterProducts(all []*models.Product, filters ProductFilters) []*models.Product {
	if filters.Query == "" && filters.Category == "" {
		return all
	}
	query := strings.ToLower(filters.Query)
	filtered := make([]*models.Product, 0, len(all))
	for _, product := range all {
		if filters.Category != "" && product.Category.Name() != filters.Category {
			continue
		}
		if containsFold(product.Name, query) ||
			containsFold(product.Details.Store, query) ||
			containsFold(product.Details.Manufacturer, query) {
			filtered = append(filtered, product)
		}
	}
	return filtered
}

// RecipeFilters capture the client-driven state for recipe lookups.
type RecipeFilters struct {
	Query string
}

func RecipeFiltersFromRequest(r *http.Request) RecipeFilters {
	filters := RecipeFilters{}
	if err := r.ParseForm(); err != nil {
		return filters
	}
	filters.Query = strings.TrimSpace(r.FormValue("q"))
	return filters
}

// FilterRecipes matches the query against names and descriptions.
func FilterRecipes(all []*models.Recipe, filters RecipeFilters) []*models.Recipe {
	if filters.Query == "" {
		return all
	}
	query := strings.ToLower(filters.Query)
	filtered := make([]*models.Recipe, 0, len(all))
	for _, recipe := range all {
		if containsFold(recipe.Name, query) || containsFold(recipe.Details.Description, query) {
			filtered = append(filtered, recipe)
		}
	}
	return filtered
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), needle)
}
