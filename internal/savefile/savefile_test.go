package savefile

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"nutrilog/models"
)

func withFixedClock(t *testing.T) {
	t.Helper()
	original := nowFunc
	nowFunc = func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { nowFunc = original })
}

func sampleProduct() *models.Product {
	p := models.NewProduct(3, "Rolled oats", models.ProductCategoryGrain)
	p.Nutrition = models.NutritionData{Calories: 372, Fat: 7.0, Carbs: 58.7, Protein: 13.5}
	p.Details = models.ProductDetails{
		Description:     "Whole grain",
		Store:           "Corner market",
		Manufacturer:    "Mill & Co",
		PackagingAmount: 500,
		PackagingUnit:   models.UnitGram,
		Density:         1,
		Price:           1.89,
		LastUpdate:      "2025-02-01",
	}
	return p
}

func sampleTracker() *models.Tracker {
	tracker := models.NewTracker("Household")
	oats := sampleProduct()
	tracker.Products[oats.ID] = oats
	milk := tracker.AddProduct("Milk", models.ProductCategoryDairy)
	milk.Nutrition = models.NutritionData{Calories: 64, Fat: 3.5, Carbs: 4.8, Protein: 3.3}
	milk.Details.PackagingUnit = models.UnitLiter
	milk.Details.PackagingAmount = 1
	milk.Details.Density = 1.03
	milk.Details.Price = 1.19

	recipe := models.NewRecipe(1, "Porridge", models.RecipeCategoryMainCourse)
	recipe.Details = models.RecipeDetails{Description: "Breakfast", PrepTime: 2, CookingTime: 8, TotalTime: 10, Created: "2025-01-10"}
	recipe.NetMass = models.NetMassData{MeasuredValue: 900, Reduction: 350, AverageRatio: 1.1, AdjustForEvaporation: true}
	base := recipe.AddIngredient(models.NewIngredient(oats, 80))
	liquid := models.NewIngredient(milk, 250)
	liquid.AmountDefinition = models.AmountRelativeToNetMass
	liquid.NetAmountDefinition = models.NetRelativeToAmount
	liquid.NetAmount = 95
	recipe.AddIngredient(liquid)
	if err := recipe.SetRelativeReference(liquid.ID, base.ID); err != nil {
		panic(err)
	}
	tracker.Recipes[recipe.ID] = recipe

	day := tracker.AddDailyIntake("2025-03-14")
	day.AddProduct(models.NewServing(milk, 200))
	day.AddProduct(models.NewServing(oats, 40))
	day.AddRecipe(models.NewServing(recipe, 320))
	tracker.AddDailyIntake("2025-03-13")

	tracker.ToggleFavorite(models.NewServing(oats, 0))
	tracker.ToggleFavorite(models.NewServing(recipe, 0))
	tracker.Targets = models.NutritionData{Calories: 2200, Fat: 70, Carbs: 250, Protein: 120}
	return tracker
}

func assertIngredientEqual(t *testing.T, got, want *models.Ingredient) {
	t.Helper()
	if got.ID != want.ID || got.Amount != want.Amount || got.NetAmount != want.NetAmount ||
		got.AmountDefinition != want.AmountDefinition || got.NetAmountDefinition != want.NetAmountDefinition ||
		got.RelativeToID != want.RelativeToID {
		t.Fatalf("ingredient = %+v, want %+v", got, want)
	}
	if got.Product.ID != want.Product.ID {
		t.Fatalf("ingredient product = %d, want %d", got.Product.ID, want.Product.ID)
	}
}

func assertRecipeEqual(t *testing.T, got, want *models.Recipe) {
	t.Helper()
	if got.ID != want.ID || got.Name != want.Name || got.Category != want.Category {
		t.Fatalf("recipe = %d %q %v, want %d %q %v", got.ID, got.Name, got.Category, want.ID, want.Name, want.Category)
	}
	if got.NetMass != want.NetMass {
		t.Fatalf("net mass = %+v, want %+v", got.NetMass, want.NetMass)
	}
	if got.Details != want.Details {
		t.Fatalf("details = %+v, want %+v", got.Details, want.Details)
	}
	if len(got.Ingredients) != len(want.Ingredients) {
		t.Fatalf("ingredients = %d, want %d", len(got.Ingredients), len(want.Ingredients))
	}
	for id, ingredient := range want.Ingredients {
		decoded, ok := got.Ingredients[id]
		if !ok {
			t.Fatalf("ingredient %d missing", id)
		}
		assertIngredientEqual(t, decoded, ingredient)
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Oat\"meal | Del;uxe, New\nLine\tTest", "Oatmeal  Deluxe, NewLineTest"},
		{"  padded  ", "padded"},
		{"plain", "plain"},
		{"\r\n", ""},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Fatalf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProductRoundTrip(t *testing.T) {
	t.Parallel()

	want := sampleProduct()
	line, err := EncodeProduct(want)
	if err != nil {
		t.Fatalf("EncodeProduct() error = %v", err)
	}
	got, err := DecodeProduct(line)
	if err != nil {
		t.Fatalf("DecodeProduct() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip = %+v, want %+v", got, want)
	}
}

func TestDecodeProductToleratesMissingFields(t *testing.T) {
	t.Parallel()

	got, err := DecodeProduct(`7;Salt;SPICE;{"calories":0};{"store":"Shop"}`)
	if err != nil {
		t.Fatalf("DecodeProduct() error = %v", err)
	}
	if got.Category != models.ProductCategorySpice {
		t.Fatalf("category = %v, want spice", got.Category)
	}
	if got.Details.Store != "Shop" || got.Details.Density != 1 || got.Details.PackagingUnit != models.UnitKilogram {
		t.Fatalf("details = %+v, want defaults with store", got.Details)
	}

	sparse, err := DecodeProduct("8")
	if err != nil {
		t.Fatalf("DecodeProduct(id only) error = %v", err)
	}
	if sparse.Category != models.ProductCategoryOther || sparse.Details != models.DefaultProductDetails() {
		t.Fatalf("sparse product = %+v", sparse)
	}

	if _, err := DecodeProduct("x;broken"); !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("DecodeProduct(bad id) error = %v, want ErrMalformedRecord", err)
	}
}

func TestEncodeProductSanitizesText(t *testing.T) {
	t.Parallel()

	p := models.NewProduct(1, "Oat\"meal | Del;uxe", models.ProductCategoryGrain)
	p.Details.Store = "A;B"
	line, err := EncodeProduct(p)
	if err != nil {
		t.Fatalf("EncodeProduct() error = %v", err)
	}
	if got := strings.Count(line, ";"); got != 4 {
		t.Fatalf("line %q has %d delimiters, want 4", line, got)
	}
	decoded, _ := DecodeProduct(line)
	if decoded.Name != "Oatmeal  Deluxe" || decoded.Details.Store != "AB" {
		t.Fatalf("decoded = %q / %q", decoded.Name, decoded.Details.Store)
	}
}

func TestIngredientRoundTrip(t *testing.T) {
	t.Parallel()

	tracker := sampleTracker()
	recipe, _ := tracker.Recipe(1)
	for _, id := range recipe.IngredientIDs() {
		want := recipe.Ingredient(id)
		line := EncodeIngredient(want)
		got, err := DecodeIngredient(line, tracker)
		if err != nil {
			t.Fatalf("DecodeIngredient(%q) error = %v", line, err)
		}
		assertIngredientEqual(t, got, want)
	}
}

func TestDecodeIngredient(t *testing.T) {
	t.Parallel()

	tracker := sampleTracker()
	tests := []struct {
		name        string
		line        string
		wantProduct int
		wantNet     models.NetAmountDefinition
		wantRel     int
	}{
		{"legacy equal", "1|3|100.0|0.0|GRAMS|EQUAL|None", 3, models.NetEqualToAmount, 0},
		{"missing product", "2|99|10.0|0.0|GRAMS|GRAMS|None", 0, models.NetGrams, 0},
		{"unknown net definition", "3|3|10.0|5.0|GRAMS|WHATEVER|1", 3, models.NetGrams, 1},
		{"truncated", "4|3", 3, models.NetGrams, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeIngredient(tt.line, tracker)
			if err != nil {
				t.Fatalf("DecodeIngredient() error = %v", err)
			}
			if got.Product.ID != tt.wantProduct {
				t.Fatalf("product = %d, want %d", got.Product.ID, tt.wantProduct)
			}
			if got.NetAmountDefinition != tt.wantNet {
				t.Fatalf("net definition = %v, want %v", got.NetAmountDefinition, tt.wantNet)
			}
			if got.RelativeToID != tt.wantRel {
				t.Fatalf("relative = %d, want %d", got.RelativeToID, tt.wantRel)
			}
		})
	}
}

func TestRecipeRoundTrip(t *testing.T) {
	t.Parallel()

	tracker := sampleTracker()
	want, _ := tracker.Recipe(1)
	line, err := EncodeRecipe(want)
	if err != nil {
		t.Fatalf("EncodeRecipe() error = %v", err)
	}
	got, err := DecodeRecipe(line, tracker)
	if err != nil {
		t.Fatalf("DecodeRecipe() error = %v", err)
	}
	assertRecipeEqual(t, got, want)
	if got.TotalNetMass() != want.TotalNetMass() {
		t.Fatalf("TotalNetMass = %v, want %v", got.TotalNetMass(), want.TotalNetMass())
	}
}

func TestDecodeRecipeDropsDanglingReference(t *testing.T) {
	t.Parallel()

	tracker := sampleTracker()
	line := `5;Soup;OTHER;1;{};{};{"1":"1|3|100.0|0.0|GRAMS|EQUAL_TO_AMOUNT|9"}`
	recipe, err := DecodeRecipe(line, tracker)
	if err != nil {
		t.Fatalf("DecodeRecipe() error = %v", err)
	}
	if got := recipe.Ingredient(1).RelativeToID; got != 0 {
		t.Fatalf("RelativeToID = %d, want 0", got)
	}
	if recipe.Details.Created != "2025-01-01" {
		t.Fatalf("Created = %q, want default", recipe.Details.Created)
	}
}

func TestServingRoundTrip(t *testing.T) {
	t.Parallel()

	want := models.Serving{
		ItemID:    4,
		ItemName:  "Apple",
		ItemType:  models.ServingTypeRecipe,
		Portion:   150,
		Nutrition: models.NutritionData{Calories: 52, Fat: 0.2, Carbs: 14, Protein: 0.3},
	}
	line, err := EncodeServing(want)
	if err != nil {
		t.Fatalf("EncodeServing() error = %v", err)
	}
	got, err := DecodeServing(line)
	if err != nil {
		t.Fatalf("DecodeServing() error = %v", err)
	}
	if got != want {
		t.Fatalf("round trip = %+v, want %+v", got, want)
	}
}

func TestDailyIntakeRoundTrip(t *testing.T) {
	t.Parallel()

	tracker := sampleTracker()
	want, _ := tracker.DailyIntake("2025-03-14")
	line, err := EncodeDailyIntake(want)
	if err != nil {
		t.Fatalf("EncodeDailyIntake() error = %v", err)
	}
	got, err := DecodeDailyIntake(line)
	if err != nil {
		t.Fatalf("DecodeDailyIntake() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip = %+v, want %+v", got, want)
	}
}

func TestDecodeDailyIntakeOrdersNumerically(t *testing.T) {
	t.Parallel()

	servings := make([]models.Serving, 12)
	for i := range servings {
		servings[i] = models.Serving{ItemID: i, ItemName: "item", Portion: float64(i)}
	}
	intake := &models.DailyIntake{Date: "2025-01-02", Products: servings, Recipes: []models.Serving{}}
	line, err := EncodeDailyIntake(intake)
	if err != nil {
		t.Fatalf("EncodeDailyIntake() error = %v", err)
	}
	got, err := DecodeDailyIntake(line)
	if err != nil {
		t.Fatalf("DecodeDailyIntake() error = %v", err)
	}
	for i, s := range got.Products {
		if s.ItemID != i {
			t.Fatalf("Products[%d].ItemID = %d, want %d", i, s.ItemID, i)
		}
	}
}

func TestEncodeDecodeTracker(t *testing.T) {
	withFixedClock(t)

	want := sampleTracker()
	var buf bytes.Buffer
	if err := Encode(&buf, want); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if got.Name != want.Name {
		t.Fatalf("Name = %q, want %q", got.Name, want.Name)
	}
	if !reflect.DeepEqual(got.Products, want.Products) {
		t.Fatalf("Products = %+v, want %+v", got.Products, want.Products)
	}
	if len(got.Recipes) != len(want.Recipes) {
		t.Fatalf("Recipes = %d, want %d", len(got.Recipes), len(want.Recipes))
	}
	for id, recipe := range want.Recipes {
		assertRecipeEqual(t, got.Recipes[id], recipe)
	}
	if !reflect.DeepEqual(got.DailyIntakes, want.DailyIntakes) {
		t.Fatalf("DailyIntakes = %+v, want %+v", got.DailyIntakes, want.DailyIntakes)
	}
	if !reflect.DeepEqual(got.FavoriteProducts, want.FavoriteProducts) || !reflect.DeepEqual(got.FavoriteRecipes, want.FavoriteRecipes) {
		t.Fatalf("favorites = %v/%v, want %v/%v", got.FavoriteProducts, got.FavoriteRecipes, want.FavoriteProducts, want.FavoriteRecipes)
	}
	if got.Targets != want.Targets {
		t.Fatalf("Targets = %+v, want %+v", got.Targets, want.Targets)
	}

	recipe, _ := got.Recipe(1)
	if recipe.Ingredient(1).Product != got.Products[3] {
		t.Fatal("decoded ingredient does not share the catalogue product")
	}
}

func TestEntryHeader(t *testing.T) {
	withFixedClock(t)

	data, err := EncodeCatalogue(models.NewTracker("x"))
	if err != nil {
		t.Fatalf("EncodeCatalogue() error = %v", err)
	}
	lines := splitLines(data)
	if !strings.HasPrefix(lines[0], "CTR Catalogue Data savefile. Warning:") {
		t.Fatalf("line 0 = %q", lines[0])
	}
	if HeaderVersion(lines) != Version {
		t.Fatalf("HeaderVersion = %q, want %q", HeaderVersion(lines), Version)
	}
	if lines[2] != "Date: 2025-03-14 09:30:00" {
		t.Fatalf("line 2 = %q", lines[2])
	}
	if lines[3] != "" || lines[4] != "1" {
		t.Fatalf("lines 3-4 = %q %q, want blank and count", lines[3], lines[4])
	}
}

func TestImportRefusesOtherEntryKinds(t *testing.T) {
	withFixedClock(t)

	path := filepath.Join(t.TempDir(), "recipes.ctr")
	if err := ExportRecipes(path, sampleTracker()); err != nil {
		t.Fatalf("ExportRecipes() error = %v", err)
	}
	target := sampleTracker()
	if err := ImportCatalogue(path, target); !errors.Is(err, ErrMalformedEntry) {
		t.Fatalf("ImportCatalogue() error = %v, want ErrMalformedEntry", err)
	}
	if target.Products[3].Name != "Rolled oats" {
		t.Fatal("catalogue changed after a refused import")
	}

	tests := map[string]string{
		"CTR Recipe Data savefile. Warning: ...": "Recipe Data",
		"CTR Daily Intake Data savefile.":        "Daily Intake Data",
		"Recipe Data":                            "",
		"":                                       "",
	}
	for line, want := range tests {
		if got := HeaderKind([]string{line}); got != want {
			t.Fatalf("HeaderKind(%q) = %q, want %q", line, got, want)
		}
	}
}

func TestDecodeCatalogueRejectsShortEntry(t *testing.T) {
	t.Parallel()

	data := "h\nv\nd\n\n3\n1;A;OTHER\n"
	if err := DecodeCatalogue(data, models.NewTracker("x")); !errors.Is(err, ErrMalformedEntry) {
		t.Fatalf("DecodeCatalogue() error = %v, want ErrMalformedEntry", err)
	}
}

func TestWriteRead(t *testing.T) {
	withFixedClock(t)

	path := filepath.Join(t.TempDir(), "nested", "food.ct")
	tracker := sampleTracker()
	if err := Write(path, tracker); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if tracker.Path != path {
		t.Fatalf("Path = %q, want %q", tracker.Path, path)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.Path != path {
		t.Fatalf("read Path = %q, want %q", got.Path, path)
	}
	if !reflect.DeepEqual(got.ProductNames(), tracker.ProductNames()) {
		t.Fatalf("ProductNames = %v, want %v", got.ProductNames(), tracker.ProductNames())
	}

	if _, err := Read(filepath.Join(t.TempDir(), "missing.ct")); err == nil {
		t.Fatal("Read(missing) error = nil")
	}
}

func TestExportImportCatalogue(t *testing.T) {
	withFixedClock(t)

	source := sampleTracker()
	path := filepath.Join(t.TempDir(), "catalogue.ctc")
	if err := ExportCatalogue(path, source); err != nil {
		t.Fatalf("ExportCatalogue() error = %v", err)
	}

	target := sampleTracker()
	target.Products[3].Name = "Stale oats"
	if err := ImportCatalogue(path, target); err != nil {
		t.Fatalf("ImportCatalogue() error = %v", err)
	}
	if target.Products[3].Name != "Rolled oats" {
		t.Fatalf("Products[3].Name = %q", target.Products[3].Name)
	}
	recipe, _ := target.Recipe(1)
	if recipe.Ingredient(1).Product != target.Products[3] {
		t.Fatal("ingredients were not relinked to the imported catalogue")
	}
	if !target.IsFavorite(models.NewServing(target.Products[3], 0)) {
		t.Fatal("favorite lost on catalogue import")
	}
}

func TestExportImportRecipesAndDays(t *testing.T) {
	withFixedClock(t)

	source := sampleTracker()
	dir := t.TempDir()
	recipes := filepath.Join(dir, "recipes.ctr")
	days := filepath.Join(dir, "days.ctd")
	if err := ExportRecipes(recipes, source); err != nil {
		t.Fatalf("ExportRecipes() error = %v", err)
	}
	if err := ExportDailyIntakes(days, source); err != nil {
		t.Fatalf("ExportDailyIntakes() error = %v", err)
	}

	target := sampleTracker()
	target.ClearRecipes()
	target.ClearDailyIntakes()
	if err := ImportRecipes(recipes, target); err != nil {
		t.Fatalf("ImportRecipes() error = %v", err)
	}
	if err := ImportDailyIntakes(days, target); err != nil {
		t.Fatalf("ImportDailyIntakes() error = %v", err)
	}
	if !reflect.DeepEqual(target.RecipeNames(), source.RecipeNames()) {
		t.Fatalf("RecipeNames = %v, want %v", target.RecipeNames(), source.RecipeNames())
	}
	if !reflect.DeepEqual(target.Dates(), source.Dates()) {
		t.Fatalf("Dates = %v, want %v", target.Dates(), source.Dates())
	}
}

func TestFormatFloat(t *testing.T) {
	t.Parallel()

	tests := map[float64]string{0: "0.0", 100: "100.0", 12.5: "12.5", -3: "-3.0"}
	for in, want := range tests {
		if got := formatFloat(in); got != want {
			t.Fatalf("formatFloat(%v) = %q, want %q", in, got, want)
		}
	}
}
