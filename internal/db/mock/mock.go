package mock

import (
	"context"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nutrilog/internal/db"
	applog "nutrilog/internal/log"
	"nutrilog/models"
)

// TrackerName is the name the demo tracker is mirrored under.
const TrackerName = "Demo Kitchen"

// New returns an in-memory sqlite database seeded with the demo tracker.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	database, err := gorm.Open(sqlite.Open("file:nutrilog-mock?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}

	if err := db.NewStore(database).SaveTracker(ctx, Tracker()); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

// Tracker builds a small, self-consistent demo tracker.
func Tracker() *models.Tracker {
	t := models.NewTracker(TrackerName)
	t.Targets = models.NutritionData{Calories: 2200, Fat: 70, Carbs: 260, Protein: 130}

	oats := t.AddProduct("Rolled Oats", models.ProductCategoryGrain)
	oats.Nutrition = models.NutritionData{Calories: 372, Fat: 7, Carbs: 58.7, Protein: 13.5}
	oats.Details.Store = "Corner Market"
	oats.Details.PackagingAmount = 0.5
	oats.Details.Price = 1.49

	milk := t.AddProduct("Whole Milk", models.ProductCategoryDairy)
	milk.Nutrition = models.NutritionData{Calories: 64, Fat: 3.6, Carbs: 4.7, Protein: 3.3}
	milk.Details.PackagingUnit = models.UnitLiter
	milk.Details.PackagingAmount = 1
	milk.Details.Density = 1.03
	milk.Details.Price = 1.19

	banana := t.AddProduct("Banana", models.ProductCategoryFruit)
	banana.Nutrition = models.NutritionData{Calories: 89, Fat: 0.3, Carbs: 22.8, Protein: 1.1}
	banana.Details.PackagingAmount = 1
	banana.Details.Price = 1.99

	lentils := t.AddProduct("Red Lentils", models.ProductCategoryGrain)
	lentils.Nutrition = models.NutritionData{Calories: 358, Fat: 2.2, Carbs: 52.6, Protein: 24.6}
	lentils.Details.PackagingUnit = models.UnitGram
	lentils.Details.PackagingAmount = 500
	lentils.Details.Price = 2.29

	water := t.AddProduct("Water", models.ProductCategoryBeverage)
	water.Details.PackagingUnit = models.UnitLiter
	water.Details.PackagingAmount = 1

	porridge := t.AddRecipe("Banana Porridge", models.RecipeCategoryMainCourse, "Oats simmered in milk, topped with banana.")
	porridge.Details.PrepTime = 2
	porridge.Details.CookingTime = 8
	porridge.Details.TotalTime = 10
	base := porridge.AddIngredient(models.NewIngredient(oats, 80))
	liquid := models.NewIngredient(milk, 300)
	liquid.AmountDefinition = models.AmountRelativeToAmount
	porridge.AddIngredient(liquid)
	_ = porridge.SetRelativeReference(liquid.ID, base.ID)
	porridge.AddIngredient(models.NewIngredient(banana, 120))

	dal := t.AddRecipe("Red Lentil Dal", models.RecipeCategoryMainCourse, "Simmer until thick.")
	dal.NetMass = models.NetMassData{MeasuredValue: 1350, Reduction: 450, AdjustForEvaporation: true}
	dal.AddIngredient(models.NewIngredient(lentils, 250))
	broth := models.NewIngredient(water, 900)
	dal.AddIngredient(broth)

	today := time.Now().Format(models.DateLayout)
	day := t.AddDailyIntake(today)
	day.AddProduct(models.NewServing(banana, 120))
	day.AddRecipe(models.NewServing(porridge, 350))
	day.AddRecipe(models.NewServing(dal, 400))

	t.ToggleFavorite(models.NewServing(banana, 0))
	t.ToggleFavorite(models.NewServing(porridge, 0))
	return t
}
