package models

import (
	"errors"
	"testing"
)

func newTestRecipe() (*Recipe, *Ingredient, *Ingredient) {
	flour := NewProduct(1, "Flour", ProductCategoryGrain)
	flour.Nutrition = NutritionData{Calories: 300, Fat: 1, Carbs: 60, Protein: 10}
	milk := NewProduct(2, "Milk", ProductCategoryDairy)
	milk.Nutrition = NutritionData{Calories: 150, Fat: 5, Carbs: 10, Protein: 8}

	recipe := NewRecipe(1, "Pancakes", RecipeCategoryDessert)
	a := recipe.AddIngredient(NewIngredient(flour, 200))
	b := recipe.AddIngredient(NewIngredient(milk, 250))
	return recipe, a, b
}

func TestIngredientGramsResolution(t *testing.T) {
	t.Parallel()

	ing := NewIngredient(NewProduct(1, "Rice", ProductCategoryGrain), 123.4)
	if got := ing.Mass(); got != 123.4 {
		t.Fatalf("Mass = %v, want 123.4", got)
	}
	if got := ing.NetMass(); got != ing.Mass() {
		t.Fatalf("NetMass = %v, want equal to Mass", got)
	}
	if got := ing.NetAmountValue(); got != 123.4 {
		t.Fatalf("NetAmountValue = %v, want mass for equal definition", got)
	}

	ing.NetAmountDefinition = NetGrams
	ing.NetAmount = 80
	if got := ing.NetMass(); got != 80 {
		t.Fatalf("NetMass in grams = %v, want 80", got)
	}

	ing.NetAmountDefinition = NetRelativeToAmount
	ing.NetAmount = 50
	if got := ing.NetMass(); !almostEqual(got, 61.7, 1e-9) {
		t.Fatalf("NetMass relative = %v, want 61.7", got)
	}
	if ing.AmountUnit() != "g" || ing.NetAmountUnit() != "%" {
		t.Fatalf("units = %q/%q", ing.AmountUnit(), ing.NetAmountUnit())
	}
}

func TestIngredientRelativeResolution(t *testing.T) {
	t.Parallel()

	product := NewProduct(1, "Water", ProductCategoryBeverage)
	recipe := NewRecipe(1, "Broth", RecipeCategoryOther)
	b := recipe.AddIngredient(&Ingredient{Product: product, Amount: 200, NetAmount: 150, NetAmountDefinition: NetGrams})
	a := recipe.AddIngredient(&Ingredient{Product: product, Amount: 50, AmountDefinition: AmountRelativeToAmount, NetAmountDefinition: NetEqualToAmount})

	if got := a.Mass(); got != 0 {
		t.Fatalf("Mass without reference = %v, want 0", got)
	}
	if err := recipe.SetRelativeReference(a.ID, b.ID); err != nil {
		t.Fatalf("SetRelativeReference returned error: %v", err)
	}
	if got := a.Mass(); got != 100 {
		t.Fatalf("relative to amount = %v, want 100", got)
	}

	a.AmountDefinition = AmountRelativeToNetMass
	if got := a.Mass(); got != 75 {
		t.Fatalf("relative to net mass = %v, want 75", got)
	}

	b.NetAmount = 100
	if got := a.Mass(); got != 50 {
		t.Fatalf("edits upstream not visible: got %v, want 50", got)
	}
}

func TestIngredientRelativeToAmountReadsRawAmount(t *testing.T) {
	t.Parallel()

	product := NewProduct(1, "Sugar", ProductCategoryOther)
	recipe := NewRecipe(1, "Syrup", RecipeCategoryOther)
	base := recipe.AddIngredient(&Ingredient{Product: product, Amount: 400, NetAmountDefinition: NetEqualToAmount})
	middle := recipe.AddIngredient(&Ingredient{Product: product, Amount: 50, AmountDefinition: AmountRelativeToAmount, NetAmountDefinition: NetEqualToAmount})
	top := recipe.AddIngredient(&Ingredient{Product: product, Amount: 10, AmountDefinition: AmountRelativeToAmount, NetAmountDefinition: NetEqualToAmount})

	if err := recipe.SetRelativeReference(middle.ID, base.ID); err != nil {
		t.Fatal(err)
	}
	if err := recipe.SetRelativeReference(top.ID, middle.ID); err != nil {
		t.Fatal(err)
	}

	if got := middle.Mass(); got != 200 {
		t.Fatalf("middle mass = %v, want 200", got)
	}
	// 10% of middle's raw amount (50), not of its resolved 200.
	if got := top.Mass(); got != 5 {
		t.Fatalf("top mass = %v, want 5", got)
	}
}

func TestInvalidDefinitionsResolveToZero(t *testing.T) {
	t.Parallel()

	ing := &Ingredient{Amount: 10, AmountDefinition: AmountDefinition(42), NetAmountDefinition: NetEqualToAmount}
	if got := ing.Mass(); got != 0 {
		t.Fatalf("invalid amount definition mass = %v, want 0", got)
	}
	ing.NetAmountDefinition = NetAmountDefinition(9)
	if got := ing.NetMass(); got != 0 {
		t.Fatalf("invalid net definition = %v, want 0", got)
	}
	if got := ing.NetAmountValue(); got != 0 {
		t.Fatalf("invalid net amount value = %v, want 0", got)
	}
}

func TestCircularReferenceDetection(t *testing.T) {
	t.Parallel()

	product := NewProduct(1, "Salt", ProductCategorySpice)
	recipe := NewRecipe(1, "Brine", RecipeCategoryOther)
	x := recipe.AddIngredient(&Ingredient{Product: product, Amount: 10, AmountDefinition: AmountRelativeToNetMass, NetAmountDefinition: NetEqualToAmount})
	y := recipe.AddIngredient(&Ingredient{Product: product, Amount: 10, AmountDefinition: AmountRelativeToNetMass, NetAmountDefinition: NetEqualToAmount})

	x.RelativeToID = y.ID
	y.RelativeToID = x.ID
	if !x.DetectCircularReference() || !y.DetectCircularReference() {
		t.Fatalf("expected both ingredients to report a cycle")
	}
	// Resolution through a cycle terminates instead of recursing forever.
	if got := x.Mass(); got != 0 {
		t.Fatalf("cyclic mass = %v, want 0", got)
	}

	x.RelativeToID = 0
	y.RelativeToID = 0
	chain := []*Ingredient{x, y}
	for i := 0; i < 4; i++ {
		chain = append(chain, recipe.AddIngredient(&Ingredient{Product: product, Amount: 50}))
	}
	for i := 0; i < len(chain)-1; i++ {
		if err := recipe.SetRelativeReference(chain[i].ID, chain[i+1].ID); err != nil {
			t.Fatalf("chain link %d rejected: %v", i, err)
		}
	}
	for _, ing := range chain {
		if ing.DetectCircularReference() {
			t.Fatalf("acyclic chain member %d reported a cycle", ing.ID)
		}
	}
}

func TestSetRelativeReferenceRollsBackCycle(t *testing.T) {
	t.Parallel()

	recipe, a, b := newTestRecipe()
	if err := recipe.SetRelativeReference(a.ID, b.ID); err != nil {
		t.Fatalf("first link rejected: %v", err)
	}
	err := recipe.SetRelativeReference(b.ID, a.ID)
	if !errors.Is(err, ErrCircularReference) {
		t.Fatalf("expected ErrCircularReference, got %v", err)
	}
	if b.RelativeToID != 0 {
		t.Fatalf("rejected reference not rolled back: %d", b.RelativeToID)
	}
	if a.RelativeToID != b.ID {
		t.Fatalf("unrelated reference changed: %d", a.RelativeToID)
	}

	if err := recipe.SetRelativeReference(a.ID, a.ID); !errors.Is(err, ErrCircularReference) {
		t.Fatalf("self reference should be circular, got %v", err)
	}
	if err := recipe.SetRelativeReference(a.ID, 99); !errors.Is(err, ErrIngredientNotFound) {
		t.Fatalf("missing target should fail, got %v", err)
	}
}

func TestRecipeTotals(t *testing.T) {
	t.Parallel()

	recipe, _, _ := newTestRecipe()

	if got := recipe.TotalAmount(); got != 450 {
		t.Fatalf("TotalAmount = %v, want 450", got)
	}
	if got := recipe.TotalNetMass(); got != 450 {
		t.Fatalf("TotalNetMass = %v, want 450", got)
	}
	wantTotal := NutritionData{Calories: 975, Fat: 14.5, Carbs: 145, Protein: 40}
	if got := recipe.TotalNutrition(); !nutritionAlmostEqual(got, wantTotal, 1e-9) {
		t.Fatalf("TotalNutrition = %+v, want %+v", got, wantTotal)
	}
	wantPer100 := NutritionData{Calories: 216.67, Fat: 3.22, Carbs: 32.22, Protein: 8.89}
	if got := recipe.NutritionPer100g(); !nutritionAlmostEqual(got, wantPer100, 0.01) {
		t.Fatalf("NutritionPer100g = %+v, want %+v", got, wantPer100)
	}
	if got := recipe.NetMassRatio(); got != 1 {
		t.Fatalf("NetMassRatio without correction = %v, want 1", got)
	}
}

func TestRecipeEvaporationCorrection(t *testing.T) {
	t.Parallel()

	recipe, _, _ := newTestRecipe()
	recipe.NetMass = NetMassData{MeasuredValue: 500, Reduction: 50, AdjustForEvaporation: true}
	if got := recipe.NetMassRatio(); got != 1 {
		t.Fatalf("NetMassRatio = %v, want 1", got)
	}

	recipe.NetMass.MeasuredValue = 350
	if got, want := recipe.NetMassRatio(), 450.0/300.0; !almostEqual(got, want, 1e-12) {
		t.Fatalf("NetMassRatio = %v, want %v", got, want)
	}
	per100 := recipe.NutritionPer100g()
	if want := 975.0 / 300 * 100; !almostEqual(per100.Calories, want, 1e-9) {
		t.Fatalf("corrected calories = %v, want %v", per100.Calories, want)
	}

	recipe.NetMass.Reduction = 400
	if got := recipe.NetMeasuredMass(); got != 0 {
		t.Fatalf("NetMeasuredMass = %v, want 0", got)
	}
	if got := recipe.NetMassRatio(); got != 0 {
		t.Fatalf("NetMassRatio with empty measurement = %v, want 0", got)
	}
	if got := recipe.NutritionPer100g(); !got.IsZero() {
		t.Fatalf("NutritionPer100g with empty measurement = %+v, want zero", got)
	}
	if got := recipe.PricePer100g(); got != 0 {
		t.Fatalf("PricePer100g with empty measurement = %v, want 0", got)
	}
}

func TestEmptyRecipeTotals(t *testing.T) {
	t.Parallel()

	recipe := NewRecipe(1, "Nothing", RecipeCategoryOther)
	if recipe.NetMassRatio() != 0 || !recipe.NutritionPer100g().IsZero() || recipe.PricePer100g() != 0 {
		t.Fatalf("empty recipe should yield zero totals")
	}
}

func TestRecipePricing(t *testing.T) {
	t.Parallel()

	recipe, a, b := newTestRecipe()
	a.Product.Details = ProductDetails{PackagingAmount: 1, PackagingUnit: UnitKilogram, Density: 1, Price: 2}
	b.Product.Details = ProductDetails{PackagingAmount: 1, PackagingUnit: UnitLiter, Density: 1, Price: 1}
	b.NetAmountDefinition = NetRelativeToAmount
	b.NetAmount = 50

	// Price follows the gross mass, the per-100g figure the net mass.
	if got, want := recipe.TotalPrice(), 0.4+0.25; !almostEqual(got, want, 1e-12) {
		t.Fatalf("TotalPrice = %v, want %v", got, want)
	}
	if got, want := recipe.PricePer100g(), 0.65/325*100; !almostEqual(got, want, 1e-12) {
		t.Fatalf("PricePer100g = %v, want %v", got, want)
	}
}

func TestRemoveIngredientClearsReferences(t *testing.T) {
	t.Parallel()

	recipe, a, b := newTestRecipe()
	if err := recipe.SetRelativeReference(b.ID, a.ID); err != nil {
		t.Fatal(err)
	}
	if !recipe.RemoveIngredient(a.ID) {
		t.Fatalf("RemoveIngredient returned false")
	}
	if b.RelativeToID != 0 {
		t.Fatalf("dangling reference left behind: %d", b.RelativeToID)
	}
	if recipe.RemoveIngredient(a.ID) {
		t.Fatalf("second removal should fail")
	}
	if len(recipe.Ingredients) != 1 {
		t.Fatalf("expected one ingredient, got %d", len(recipe.Ingredients))
	}
}

func TestRenumberIngredientsRemapsReferences(t *testing.T) {
	t.Parallel()

	product := NewProduct(1, "Egg", ProductCategoryOther)
	recipe := NewRecipe(1, "Omelette", RecipeCategoryMainCourse)
	for i := 0; i < 4; i++ {
		recipe.AddIngredient(&Ingredient{Product: product, Amount: float64(10 * (i + 1))})
	}
	recipe.RemoveIngredient(2)
	if err := recipe.SetRelativeReference(4, 3); err != nil {
		t.Fatal(err)
	}

	recipe.RenumberIngredients()

	if got := recipe.IngredientIDs(); len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("IngredientIDs = %v, want [1 2 3]", got)
	}
	last := recipe.Ingredient(3)
	if last.Amount != 40 || last.RelativeToID != 2 || last.RelativeTo().Amount != 30 {
		t.Fatalf("reference not remapped: %+v", last)
	}
}

func TestRenumberIngredientIDsByOrder(t *testing.T) {
	t.Parallel()

	recipe, a, b := newTestRecipe()
	if err := recipe.SetRelativeReference(b.ID, a.ID); err != nil {
		t.Fatal(err)
	}
	if err := recipe.RenumberIngredientIDs([]int{2, 1}); err != nil {
		t.Fatalf("RenumberIngredientIDs returned error: %v", err)
	}
	if recipe.Ingredient(1) != b || recipe.Ingredient(2) != a {
		t.Fatalf("order not applied")
	}
	if b.ID != 1 || b.RelativeToID != 2 {
		t.Fatalf("b = id %d ref %d, want id 1 ref 2", b.ID, b.RelativeToID)
	}

	for _, order := range [][]int{{1}, {1, 1}, {1, 3}} {
		if err := recipe.RenumberIngredientIDs(order); !errors.Is(err, ErrInvalidOrder) {
			t.Fatalf("order %v: expected ErrInvalidOrder, got %v", order, err)
		}
	}
	if recipe.Ingredient(1) != b {
		t.Fatalf("rejected order mutated the recipe")
	}
}

func TestSetIngredientID(t *testing.T) {
	t.Parallel()

	product := NewProduct(1, "Bean", ProductCategoryVegetable)
	recipe := NewRecipe(1, "Chili", RecipeCategoryMainCourse)
	var all []*Ingredient
	for i := 0; i < 4; i++ {
		all = append(all, recipe.AddIngredient(&Ingredient{Product: product, Amount: float64(i + 1)}))
	}

	if err := recipe.SetIngredientID(4, 1); err != nil {
		t.Fatalf("SetIngredientID returned error: %v", err)
	}
	want := []*Ingredient{all[3], all[0], all[1], all[2]}
	for i, ing := range want {
		if recipe.Ingredient(i+1) != ing || ing.ID != i+1 {
			t.Fatalf("position %d holds amount %v", i+1, recipe.Ingredient(i+1).Amount)
		}
	}

	if err := recipe.SetIngredientID(1, 5); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("out of range target: got %v", err)
	}
	if err := recipe.SetIngredientID(9, 2); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("missing ingredient: got %v", err)
	}
}

func TestRecipeCloneDoesNotAlias(t *testing.T) {
	t.Parallel()

	recipe, a, b := newTestRecipe()
	if err := recipe.SetRelativeReference(b.ID, a.ID); err != nil {
		t.Fatal(err)
	}
	b.AmountDefinition = AmountRelativeToAmount
	b.Amount = 50

	clone := recipe.Clone()
	clone.Ingredient(a.ID).Amount = 1000

	if got := b.Mass(); got != 100 {
		t.Fatalf("original resolved through the clone: %v", got)
	}
	if got := clone.Ingredient(b.ID).Mass(); got != 500 {
		t.Fatalf("clone reference not bound to clone: %v", got)
	}
	if clone.Ingredient(a.ID).Product != a.Product {
		t.Fatalf("clone should share catalogue products")
	}
}

func TestLinkIngredientReferencesDropsDangling(t *testing.T) {
	t.Parallel()

	product := NewProduct(1, "Corn", ProductCategoryVegetable)
	recipe := NewRecipe(1, "Polenta", RecipeCategorySideDish)
	recipe.PutIngredient(&Ingredient{ID: 1, Product: product, Amount: 100})
	recipe.PutIngredient(&Ingredient{ID: 2, Product: product, Amount: 10, AmountDefinition: AmountRelativeToAmount, RelativeToID: 1})
	recipe.PutIngredient(&Ingredient{ID: 3, Product: product, Amount: 10, AmountDefinition: AmountRelativeToAmount, RelativeToID: 7})

	recipe.LinkIngredientReferences()

	if got := recipe.Ingredient(2).Mass(); got != 10 {
		t.Fatalf("linked reference mass = %v, want 10", got)
	}
	if got := recipe.Ingredient(3).RelativeToID; got != 0 {
		t.Fatalf("dangling reference kept: %d", got)
	}
}
