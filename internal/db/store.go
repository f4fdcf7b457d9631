package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"

	applog "nutrilog/internal/log"
	"nutrilog/models"
)

// ErrTrackerNotFound is returned when no mirror exists under the requested name.
var ErrTrackerNotFound = errors.New("db: tracker not found")

const batchSize = 200

// Store mirrors a models.Tracker into the database and loads it back. A save
// replaces every row belonging to the tracker.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// SaveTracker writes t under t.Name, replacing any previous mirror.
func (s *Store) SaveTracker(ctx context.Context, t *models.Tracker) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("database handle is nil")
	}
	record, err := trackerRecord(t)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing TrackerRecord
		err := tx.Where("name = ?", t.Name).First(&existing).Error
		switch {
		case err == nil:
			if err := deleteChildren(tx, existing.ID); err != nil {
				return err
			}
			record.ID = existing.ID
			if err := tx.Model(&existing).Select("path", "favorite_products", "favorite_recipes",
				"target_calories", "target_fat", "target_carbs", "target_protein").Updates(&record).Error; err != nil {
				return fmt.Errorf("update tracker: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Omit("Products", "Recipes", "DailyIntakes").Create(&record).Error; err != nil {
				return fmt.Errorf("create tracker: %w", err)
			}
		default:
			return fmt.Errorf("find tracker: %w", err)
		}
		return createChildren(tx, record.ID, t)
	})
	if err != nil {
		return err
	}

	applog.Info(ctx, "tracker mirrored to database", "name", t.Name, "products", len(t.Products), "recipes", len(t.Recipes), "days", len(t.DailyIntakes))
	return nil
}

func trackerRecord(t *models.Tracker) (TrackerRecord, error) {
	products, err := json.Marshal(t.FavoriteIDs(models.ServingTypeProduct))
	if err != nil {
		return TrackerRecord{}, fmt.Errorf("encode favorite products: %w", err)
	}
	recipes, err := json.Marshal(t.FavoriteIDs(models.ServingTypeRecipe))
	if err != nil {
		return TrackerRecord{}, fmt.Errorf("encode favorite recipes: %w", err)
	}
	return TrackerRecord{
		Name:             t.Name,
		Path:             t.Path,
		FavoriteProducts: string(products),
		FavoriteRecipes:  string(recipes),
		Targets:          nutritionColumns(t.Targets),
	}, nil
}

func deleteChildren(tx *gorm.DB, trackerID uint) error {
	recipes := tx.Model(&RecipeRecord{}).Select("id").Where("tracker_id = ?", trackerID)
	if err := tx.Unscoped().Where("recipe_record_id IN (?)", recipes).Delete(&IngredientRecord{}).Error; err != nil {
		return fmt.Errorf("delete ingredients: %w", err)
	}
	days := tx.Model(&DailyIntakeRecord{}).Select("id").Where("tracker_id = ?", trackerID)
	if err := tx.Unscoped().Where("daily_intake_record_id IN (?)", days).Delete(&ServingRecord{}).Error; err != nil {
		return fmt.Errorf("delete servings: %w", err)
	}
	for _, model := range []any{&RecipeRecord{}, &DailyIntakeRecord{}, &ProductRecord{}} {
		if err := tx.Unscoped().Where("tracker_id = ?", trackerID).Delete(model).Error; err != nil {
			return fmt.Errorf("delete %T: %w", model, err)
		}
	}
	return nil
}

func createChildren(tx *gorm.DB, trackerID uint, t *models.Tracker) error {
	products := make([]ProductRecord, 0, len(t.Products))
	for _, id := range t.ProductIDs() {
		products = append(products, productRecord(trackerID, t.Products[id]))
	}
	if len(products) > 0 {
		if err := tx.CreateInBatches(&products, batchSize).Error; err != nil {
			return fmt.Errorf("create products: %w", err)
		}
	}

	for _, id := range t.RecipeIDs() {
		record := recipeRecord(trackerID, t.Recipes[id])
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("create recipe %d: %w", id, err)
		}
	}

	for _, date := range t.Dates() {
		record := dailyIntakeRecord(trackerID, t.DailyIntakes[date])
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("create daily intake %s: %w", date, err)
		}
	}
	return nil
}

func productRecord(trackerID uint, p *models.Product) ProductRecord {
	return ProductRecord{
		TrackerID:       trackerID,
		ProductID:       p.ID,
		Name:            p.Name,
		Category:        p.Category.Name(),
		Nutrition:       nutritionColumns(p.Nutrition),
		Description:     p.Details.Description,
		Store:           p.Details.Store,
		Manufacturer:    p.Details.Manufacturer,
		PackagingAmount: p.Details.PackagingAmount,
		PackagingUnit:   p.Details.PackagingUnit.Name(),
		Density:         p.Details.Density,
		Price:           p.Details.Price,
		LastUpdate:      p.Details.LastUpdate,
	}
}

func (r ProductRecord) product() *models.Product {
	p := models.NewProduct(r.ProductID, r.Name, models.ParseProductCategory(r.Category))
	p.Nutrition = r.Nutrition.data()
	p.Details = models.ProductDetails{
		Description:     r.Description,
		Store:           r.Store,
		Manufacturer:    r.Manufacturer,
		PackagingAmount: r.PackagingAmount,
		PackagingUnit:   models.ParseMeasurementUnit(r.PackagingUnit),
		Density:         r.Density,
		Price:           r.Price,
		LastUpdate:      r.LastUpdate,
	}
	return p
}

func recipeRecord(trackerID uint, r *models.Recipe) RecipeRecord {
	record := RecipeRecord{
		TrackerID:            trackerID,
		RecipeID:             r.ID,
		Name:                 r.Name,
		Category:             r.Category.Name(),
		MeasuredValue:        r.NetMass.MeasuredValue,
		Reduction:            r.NetMass.Reduction,
		AverageRatio:         r.NetMass.AverageRatio,
		AdjustForEvaporation: r.NetMass.AdjustForEvaporation,
		Description:          r.Details.Description,
		PrepTime:             r.Details.PrepTime,
		CookingTime:          r.Details.CookingTime,
		TotalTime:            r.Details.TotalTime,
		Created:              r.Details.Created,
	}
	for _, id := range r.IngredientIDs() {
		ingredient := r.Ingredients[id]
		productID := 0
		if ingredient.Product != nil {
			productID = ingredient.Product.ID
		}
		record.Ingredients = append(record.Ingredients, IngredientRecord{
			IngredientID:        ingredient.ID,
			ProductID:           productID,
			Amount:              ingredient.Amount,
			NetAmount:           ingredient.NetAmount,
			AmountDefinition:    ingredient.AmountDefinition.Name(),
			NetAmountDefinition: ingredient.NetAmountDefinition.Name(),
			RelativeToID:        ingredient.RelativeToID,
		})
	}
	return record
}

func (r RecipeRecord) recipe(ctx context.Context, t *models.Tracker) *models.Recipe {
	recipe := models.NewRecipe(r.RecipeID, r.Name, models.ParseRecipeCategory(r.Category))
	recipe.NetMass = models.NetMassData{
		MeasuredValue:        r.MeasuredValue,
		Reduction:            r.Reduction,
		AverageRatio:         r.AverageRatio,
		AdjustForEvaporation: r.AdjustForEvaporation,
	}
	recipe.Details = models.RecipeDetails{
		Description: r.Description,
		PrepTime:    r.PrepTime,
		CookingTime: r.CookingTime,
		TotalTime:   r.TotalTime,
		Created:     r.Created,
	}
	for _, row := range r.Ingredients {
		product, ok := t.LookupProduct(row.ProductID)
		if !ok {
			applog.Error(ctx, "ingredient product not found in catalogue", "product", row.ProductID, "recipe", r.RecipeID)
			product = t.Product(0)
		}
		recipe.PutIngredient(&models.Ingredient{
			ID:                  row.IngredientID,
			Product:             product,
			Amount:              row.Amount,
			NetAmount:           row.NetAmount,
			AmountDefinition:    models.ParseAmountDefinition(row.AmountDefinition),
			NetAmountDefinition: models.ParseNetAmountDefinition(row.NetAmountDefinition),
			RelativeToID:        row.RelativeToID,
		})
	}
	recipe.LinkIngredientReferences()
	return recipe
}

func dailyIntakeRecord(trackerID uint, d *models.DailyIntake) DailyIntakeRecord {
	record := DailyIntakeRecord{TrackerID: trackerID, Date: d.Date}
	for _, list := range [][]models.Serving{d.Products, d.Recipes} {
		for position, s := range list {
			record.Servings = append(record.Servings, ServingRecord{
				Position:  position,
				ItemID:    s.ItemID,
				ItemName:  s.ItemName,
				ItemType:  s.ItemType.Name(),
				Portion:   s.Portion,
				Nutrition: nutritionColumns(s.Nutrition),
			})
		}
	}
	return record
}

func (r DailyIntakeRecord) dailyIntake() *models.DailyIntake {
	servings := append([]ServingRecord(nil), r.Servings...)
	sort.SliceStable(servings, func(i, j int) bool { return servings[i].Position < servings[j].Position })
	intake := models.NewDailyIntake(r.Date)
	for _, row := range servings {
		kind, _ := models.ParseServingType(row.ItemType)
		intake.Add(models.Serving{
			ItemID:    row.ItemID,
			ItemName:  row.ItemName,
			ItemType:  kind,
			Portion:   row.Portion,
			Nutrition: row.Nutrition.data(),
		})
	}
	return intake
}

// LoadTracker rebuilds the tracker mirrored under name.
func (s *Store) LoadTracker(ctx context.Context, name string) (*models.Tracker, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("database handle is nil")
	}
	var record TrackerRecord
	err := s.db.WithContext(ctx).
		Preload("Products").
		Preload("Recipes.Ingredients").
		Preload("DailyIntakes.Servings").
		Where("name = ?", name).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load %q: %w", name, ErrTrackerNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}

	t := models.NewTracker(record.Name)
	t.Path = record.Path
	t.Targets = record.Targets.data()
	for _, row := range record.Products {
		t.Products[row.ProductID] = row.product()
	}
	for _, row := range record.Recipes {
		t.Recipes[row.RecipeID] = row.recipe(ctx, t)
	}
	for _, row := range record.DailyIntakes {
		t.DailyIntakes[row.Date] = row.dailyIntake()
	}
	for kind, raw := range map[models.ServingType]string{
		models.ServingTypeProduct: record.FavoriteProducts,
		models.ServingTypeRecipe:  record.FavoriteRecipes,
	} {
		var ids []int
		if raw != "" {
			if err := json.Unmarshal([]byte(raw), &ids); err != nil {
				return nil, fmt.Errorf("decode favorites of %q: %w", name, err)
			}
		}
		for _, id := range ids {
			t.ToggleFavorite(models.Serving{ItemID: id, ItemType: kind})
		}
	}
	return t, nil
}

// TrackerNames lists the mirrored trackers by name.
func (s *Store) TrackerNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.WithContext(ctx).Model(&TrackerRecord{}).Order("name").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("list trackers: %w", err)
	}
	return names, nil
}

// DeleteTracker removes the mirror and all of its rows.
func (s *Store) DeleteTracker(ctx context.Context, name string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record TrackerRecord
		if err := tx.Where("name = ?", name).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("delete %q: %w", name, ErrTrackerNotFound)
			}
			return fmt.Errorf("delete %q: %w", name, err)
		}
		if err := deleteChildren(tx, record.ID); err != nil {
			return err
		}
		return tx.Unscoped().Delete(&record).Error
	})
}
