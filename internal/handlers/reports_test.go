package handlers

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"nutrilog/models"
)

func withFixedNow(t *testing.T, now time.Time) {
	t.Helper()
	original := nowFunc
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = original })
}

func TestBuildRecipeReportDataScalesToPortion(t *testing.T) {
	withFixedNow(t, time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC))
	tracker := kitchenTracker()

	report, err := buildRecipeReportData(tracker, 1, 140)
	if err != nil {
		t.Fatalf("buildRecipeReportData() error = %v", err)
	}
	if report.Reference != "NUT-20250102-001" {
		t.Fatalf("unexpected reference %q", report.Reference)
	}
	if report.RecipeName != "1. Porridge" || report.FinishedMass != 280 || report.ScaleFactor != 0.5 {
		t.Fatalf("unexpected report header: %+v", report)
	}
	if len(report.Ingredients) != 2 {
		t.Fatalf("expected 2 ingredients, got %d", len(report.Ingredients))
	}

	milk, oats := report.Ingredients[0], report.Ingredients[1]
	if milk.ProductName != "Milk" || milk.Order != 1 || milk.FinalMass != 100 {
		t.Fatalf("expected milk first at 100 g, got %+v", milk)
	}
	if oats.ProductName != "Oats" || oats.FinalMass != 40 || oats.BaseMass != 80 {
		t.Fatalf("expected oats second at 40 g, got %+v", oats)
	}
	if math.Abs(oats.Share-80.0/280) > 1e-9 {
		t.Fatalf("unexpected oats share %v", oats.Share)
	}
	if math.Abs(report.Price-0.18) > 1e-9 {
		t.Fatalf("expected price 0.18, got %v", report.Price)
	}
	wantKcal := (380*80 + 64*200) / 100.0 / 2
	if math.Abs(report.Nutrition.Calories-wantKcal) > 1e-9 {
		t.Fatalf("expected %v kcal, got %v", wantKcal, report.Nutrition.Calories)
	}
}

func TestBuildRecipeReportDataConsolidatesProducts(t *testing.T) {
	tracker := kitchenTracker()
	recipe, _ := tracker.Recipe(1)
	recipe.AddIngredient(models.NewIngredient(tracker.Product(1), 20))

	report, err := buildRecipeReportData(tracker, 1, 300)
	if err != nil {
		t.Fatalf("buildRecipeReportData() error = %v", err)
	}
	if len(report.Ingredients) != 2 {
		t.Fatalf("expected oats to be reported once, got %+v", report.Ingredients)
	}
	for _, ingredient := range report.Ingredients {
		if ingredient.ProductName == "Oats" && ingredient.BaseMass != 100 {
			t.Fatalf("expected 100 g of oats in total, got %v", ingredient.BaseMass)
		}
	}
}

func TestBuildRecipeReportDataUsesMeasuredMass(t *testing.T) {
	tracker := kitchenTracker()
	recipe, _ := tracker.Recipe(1)
	recipe.NetMass = models.NetMassData{MeasuredValue: 250, Reduction: 50, AdjustForEvaporation: true}

	report, err := buildRecipeReportData(tracker, 1, 100)
	if err != nil {
		t.Fatalf("buildRecipeReportData() error = %v", err)
	}
	if report.FinishedMass != 200 || report.ScaleFactor != 0.5 {
		t.Fatalf("expected the measured 200 g to drive the scale, got %+v", report)
	}
}

func TestBuildRecipeReportDataErrors(t *testing.T) {
	tracker := kitchenTracker()
	empty := tracker.AddRecipe("Empty", models.RecipeCategoryOther, "")
	weightless := tracker.AddRecipe("Weightless", models.RecipeCategoryOther, "")
	weightless.AddIngredient(models.NewIngredient(tracker.Product(1), 0))

	tests := []struct {
		name string
		id   int
		want error
	}{
		{"missing", 42, errReportRecipeNotFound},
		{"null recipe", 0, errReportRecipeNotFound},
		{"no ingredients", empty.ID, errReportEmptyRecipe},
		{"no mass", weightless.ID, errReportNoFinishedMass},
	}
	for _, tt := range tests {
		if _, err := buildRecipeReportData(tracker, tt.id, 100); !errors.Is(err, tt.want) {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}

func TestGenerateRecipeReportHandler(t *testing.T) {
	withTestWorkspace(t)

	form := url.Values{"recipe_id": {"1"}, "target_portion": {"140"}}
	req := httptest.NewRequest(http.MethodPost, "/app/reports/recipe", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	GenerateRecipeReport(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	if !strings.Contains(body, "1. Porridge") || !strings.Contains(body, "100.00 g") {
		t.Fatalf("expected the scaled breakdown, got %s", body)
	}
}

func TestGenerateRecipeReportRejectsBadInput(t *testing.T) {
	withTestWorkspace(t)

	tests := []struct {
		name   string
		method string
		form   url.Values
		want   int
	}{
		{"wrong method", http.MethodGet, nil, http.StatusMethodNotAllowed},
		{"missing recipe", http.MethodPost, url.Values{"target_portion": {"100"}}, http.StatusBadRequest},
		{"zero portion", http.MethodPost, url.Values{"recipe_id": {"1"}, "target_portion": {"0"}}, http.StatusBadRequest},
		{"unknown recipe", http.MethodPost, url.Values{"recipe_id": {"9"}, "target_portion": {"100"}}, http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, "/app/reports/recipe", strings.NewReader(tt.form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		GenerateRecipeReport(rr, req)
		if rr.Code != tt.want {
			t.Fatalf("%s: expected %d, got %d", tt.name, tt.want, rr.Code)
		}
	}
}
