package models

import "testing"

func TestServingSnapshotIsDecoupled(t *testing.T) {
	t.Parallel()

	product := NewProduct(1, "Yogurt", ProductCategoryDairy)
	product.Nutrition = NutritionData{Calories: 60, Fat: 3, Carbs: 4, Protein: 5}

	serving := NewServing(product, 150)
	product.Nutrition.Calories = 999

	if serving.Nutrition.Calories != 60 {
		t.Fatalf("serving followed a catalogue edit: %v", serving.Nutrition.Calories)
	}
	if got := serving.ConsumedNutrition(); got != (NutritionData{Calories: 90, Fat: 4.5, Carbs: 6, Protein: 7.5}) {
		t.Fatalf("ConsumedNutrition = %+v", got)
	}

	serving.Assign(product)
	if serving.Nutrition.Calories != 999 {
		t.Fatalf("Assign did not refresh the snapshot")
	}
}

func TestServingFromRecipe(t *testing.T) {
	t.Parallel()

	recipe, _, _ := newTestRecipe()
	serving := NewServing(recipe, 100)
	if serving.ItemType != ServingTypeRecipe || serving.ItemID != recipe.ID || serving.ItemName != "Pancakes" {
		t.Fatalf("unexpected serving: %+v", serving)
	}
	if !nutritionAlmostEqual(serving.Nutrition, recipe.NutritionPer100g(), 1e-12) {
		t.Fatalf("recipe snapshot = %+v", serving.Nutrition)
	}
}

func TestDailyIntakeTotals(t *testing.T) {
	t.Parallel()

	intake := NewDailyIntake("2025-01-02")
	if intake.HasData() {
		t.Fatalf("new intake should be empty")
	}
	intake.Add(Serving{ItemType: ServingTypeProduct, Portion: 200, Nutrition: NutritionData{Calories: 50}})
	intake.Add(Serving{ItemType: ServingTypeRecipe, Portion: 50, Nutrition: NutritionData{Calories: 200, Protein: 10}})

	if len(intake.Products) != 1 || len(intake.Recipes) != 1 {
		t.Fatalf("servings not split by type: %+v", intake)
	}
	if got := intake.TotalConsumedNutrition(); got != (NutritionData{Calories: 200, Protein: 5}) {
		t.Fatalf("TotalConsumedNutrition = %+v", got)
	}
	if !intake.RemoveRecipe(0) || intake.RemoveRecipe(0) || intake.RemoveProduct(3) {
		t.Fatalf("unexpected RemoveRecipe/RemoveProduct results")
	}
}

func TestDailyIntakeServingEditsInPlace(t *testing.T) {
	t.Parallel()

	oats := NewProduct(1, "Oats", ProductCategoryGrain)
	oats.Nutrition = NutritionData{Calories: 380}
	milk := NewProduct(2, "Milk", ProductCategoryDairy)
	milk.Nutrition = NutritionData{Calories: 64}

	day := NewDailyIntake("2025-03-01")
	day.Add(NewServing(oats, 50))

	serving, ok := day.Serving(ServingTypeProduct, 0)
	if !ok {
		t.Fatal("expected the logged serving")
	}
	serving.Portion = 100
	serving.Assign(milk)
	if got := day.TotalConsumedNutrition().Calories; got != 64 {
		t.Fatalf("expected the edit to reach the day, got %v kcal", got)
	}

	if _, ok := day.Serving(ServingTypeProduct, 1); ok {
		t.Fatal("expected an out-of-range index to be refused")
	}
	if _, ok := day.Serving(ServingTypeRecipe, 0); ok {
		t.Fatal("expected the recipe list to be empty")
	}
}
