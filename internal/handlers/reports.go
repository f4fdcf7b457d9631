package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	applog "nutrilog/internal/log"
	"nutrilog/internal/views/pages"
	"nutrilog/models"
)

var (
	errReportRecipeNotFound = errors.New("reports: recipe not found")
	errReportInvalidPortion = errors.New("reports: invalid target portion")
	errReportEmptyRecipe    = errors.New("reports: recipe has no ingredients")
	errReportNoFinishedMass = errors.New("reports: recipe has no finished mass")
	nowFunc                 = time.Now
)

// GenerateRecipeReport renders the ingredient breakdown of a recipe scaled to a portion.
func GenerateRecipeReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid submission.", http.StatusBadRequest)
		return
	}

	recipeID := pages.ParseInt(r.FormValue("recipe_id"))
	if recipeID <= 0 {
		http.Error(w, "Select a recipe before running the report.", http.StatusBadRequest)
		return
	}

	targetPortion, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("target_portion")), 64)
	if err != nil || targetPortion <= 0 {
		http.Error(w, "Provide a positive portion in grams.", http.StatusBadRequest)
		return
	}

	var report pages.RecipeReportData
	err = view(func(t *models.Tracker) error {
		var buildErr error
		report, buildErr = buildRecipeReportData(t, recipeID, targetPortion)
		return buildErr
	})
	if err != nil {
		switch {
		case errors.Is(err, errWorkspaceUnavailable):
			http.Error(w, "Reporting is unavailable because no workspace is loaded.", http.StatusServiceUnavailable)
		case errors.Is(err, errReportRecipeNotFound):
			http.Error(w, "The selected recipe no longer exists.", http.StatusNotFound)
		case errors.Is(err, errReportInvalidPortion):
			http.Error(w, "The portion cannot be computed for this recipe.", http.StatusBadRequest)
		case errors.Is(err, errReportEmptyRecipe):
			http.Error(w, "The selected recipe has no ingredients to report.", http.StatusBadRequest)
		case errors.Is(err, errReportNoFinishedMass):
			http.Error(w, "The recipe has no finished mass. Enter the measured mass or ingredient amounts first.", http.StatusBadRequest)
		default:
			applog.Error(r.Context(), "failed to build recipe report", "error", err, "recipeID", recipeID)
			http.Error(w, "We were unable to generate the report. Please try again.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.RecipeReport(report).Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render recipe report", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type reportProductTotal struct {
	Product *models.Product
	Gross   float64
	Net     float64
	Price   float64
}

// finishedMass is the mass of the cooked dish: the measured mass when
// evaporation is corrected for, the net ingredient mass otherwise.
func finishedMass(recipe *models.Recipe) float64 {
	if recipe.NetMass.AdjustForEvaporation {
		return recipe.NetMeasuredMass()
	}
	return recipe.TotalNetMass()
}

func buildRecipeReportData(t *models.Tracker, recipeID int, targetPortion float64) (pages.RecipeReportData, error) {
	recipe, ok := t.Recipe(recipeID)
	if !ok || recipeID == 0 {
		return pages.RecipeReportData{}, errReportRecipeNotFound
	}
	if len(recipe.Ingredients) == 0 {
		return pages.RecipeReportData{}, errReportEmptyRecipe
	}

	finished := finishedMass(recipe)
	if finished <= 0 {
		return pages.RecipeReportData{}, errReportNoFinishedMass
	}
	scale := targetPortion / finished
	if math.IsNaN(scale) || math.IsInf(scale, 0) {
		return pages.RecipeReportData{}, errReportInvalidPortion
	}

	// Ingredients sharing a product are reported once.
	byProduct := make(map[*models.Product]*reportProductTotal)
	var totalGross float64
	for _, id := range recipe.IngredientIDs() {
		ingredient := recipe.Ingredients[id]
		gross := ingredient.Mass()
		if gross <= 0 && ingredient.NetMass() <= 0 {
			continue
		}
		total, ok := byProduct[ingredient.Product]
		if !ok {
			total = &reportProductTotal{Product: ingredient.Product}
			byProduct[ingredient.Product] = total
		}
		total.Gross += gross
		total.Net += ingredient.NetMass()
		total.Price += ingredient.Price()
		totalGross += gross
	}

	ingredients := make([]pages.RecipeReportIngredient, 0, len(byProduct))
	for _, total := range byProduct {
		name := ""
		category := ""
		if total.Product != nil {
			name = total.Product.Name
			category = total.Product.Category.String()
		}
		share := 0.0
		if totalGross > 0 {
			share = total.Gross / totalGross
		}
		ingredients = append(ingredients, pages.RecipeReportIngredient{
			ProductName: pages.DefaultDash(name),
			Category:    category,
			BaseMass:    total.Gross,
			FinalMass:   total.Gross * scale,
			FinalNet:    total.Net * scale,
			Price:       total.Price * scale,
			Share:       share,
		})
	}

	sortRecipeReportIngredients(ingredients)
	for idx := range ingredients {
		ingredients[idx].Order = idx + 1
	}

	runTime := nowFunc().UTC()
	return pages.RecipeReportData{
		RecipeName:    recipe.Label(),
		TargetPortion: targetPortion,
		FinishedMass:  finished,
		ScaleFactor:   scale,
		Reference:     fmt.Sprintf("NUT-%s-%03d", runTime.Format("20060102"), recipe.ID),
		RunDate:       runTime,
		Nutrition:     recipe.TotalNutrition().Scale(scale),
		Price:         recipe.TotalPrice() * scale,
		Ingredients:   ingredients,
	}, nil
}

func sortRecipeReportIngredients(items []pages.RecipeReportIngredient) {
	sort.SliceStable(items, func(i, j int) bool {
		if !almostEqual(items[i].FinalMass, items[j].FinalMass) {
			return items[i].FinalMass > items[j].FinalMass
		}
		return strings.ToLower(items[i].ProductName) < strings.ToLower(items[j].ProductName)
	})
}

func almostEqual(a, b float64) bool {
	const epsilon = 1e-6
	return math.Abs(a-b) <= epsilon
}
