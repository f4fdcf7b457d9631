package db

import (
	"gorm.io/gorm"

	"nutrilog/models"
)

// NutritionColumns stores a models.NutritionData inline.
type NutritionColumns struct {
	Calories float64 `json:"calories"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
	Protein  float64 `json:"protein"`
}

func nutritionColumns(n models.NutritionData) NutritionColumns {
	return NutritionColumns{Calories: n.Calories, Fat: n.Fat, Carbs: n.Carbs, Protein: n.Protein}
}

func (c NutritionColumns) data() models.NutritionData {
	return models.NutritionData{Calories: c.Calories, Fat: c.Fat, Carbs: c.Carbs, Protein: c.Protein}
}

// TrackerRecord is one mirrored savefile.
type TrackerRecord struct {
	gorm.Model
	Name             string              `gorm:"uniqueIndex;not null" json:"name"`
	Path             string              `json:"path"`
	FavoriteProducts string              `gorm:"type:text" json:"favorite_products"` // JSON list of IDs
	FavoriteRecipes  string              `gorm:"type:text" json:"favorite_recipes"`
	Targets          NutritionColumns    `gorm:"embedded;embeddedPrefix:target_" json:"targets"`
	Products         []ProductRecord     `gorm:"foreignKey:TrackerID" json:"products"`
	Recipes          []RecipeRecord      `gorm:"foreignKey:TrackerID" json:"recipes"`
	DailyIntakes     []DailyIntakeRecord `gorm:"foreignKey:TrackerID" json:"daily_intakes"`
}

type ProductRecord struct {
	gorm.Model
	TrackerID       uint             `gorm:"not null;index:idx_tracker_product,unique" json:"tracker_id"`
	ProductID       int              `gorm:"not null;index:idx_tracker_product,unique" json:"product_id"`
	Name            string           `gorm:"not null" json:"name"`
	Category        string           `json:"category"`
	Nutrition       NutritionColumns `gorm:"embedded" json:"nutrition"`
	Description     string           `gorm:"type:text" json:"description"`
	Store           string           `json:"store"`
	Manufacturer    string           `json:"manufacturer"`
	PackagingAmount float64          `json:"packaging_amount"`
	PackagingUnit   string           `json:"packaging_unit"`
	Density         float64          `json:"density"`
	Price           float64          `json:"price"`
	LastUpdate      string           `json:"last_update_date"`
}

type RecipeRecord struct {
	gorm.Model
	TrackerID            uint               `gorm:"not null;index:idx_tracker_recipe,unique" json:"tracker_id"`
	RecipeID             int                `gorm:"not null;index:idx_tracker_recipe,unique" json:"recipe_id"`
	Name                 string             `gorm:"not null" json:"name"`
	Category             string             `json:"category"`
	MeasuredValue        float64            `json:"measured_value"`
	Reduction            float64            `json:"reduction"`
	AverageRatio         float64            `json:"average_ratio"`
	AdjustForEvaporation bool               `gorm:"not null;default:false" json:"adjust_for_evaporation"`
	Description          string             `gorm:"type:text" json:"description"`
	PrepTime             float64            `json:"prep_time"`
	CookingTime          float64            `json:"cooking_time"`
	TotalTime            float64            `json:"total_time"`
	Created              string             `json:"date_created"`
	Ingredients          []IngredientRecord `gorm:"foreignKey:RecipeRecordID" json:"ingredients"`
}

type IngredientRecord struct {
	gorm.Model
	RecipeRecordID      uint    `gorm:"not null;index" json:"recipe_record_id"`
	IngredientID        int     `gorm:"not null" json:"ingredient_id"`
	ProductID           int     `gorm:"not null" json:"product_id"`
	Amount              float64 `json:"amount"`
	NetAmount           float64 `json:"net_amount"`
	AmountDefinition    string  `json:"amount_definition"`
	NetAmountDefinition string  `json:"net_amount_definition"`
	RelativeToID        int     `json:"relative_to_id"` // 0 means no reference
}

type DailyIntakeRecord struct {
	gorm.Model
	TrackerID uint            `gorm:"not null;index:idx_tracker_date,unique" json:"tracker_id"`
	Date      string          `gorm:"not null;index:idx_tracker_date,unique" json:"date"`
	Servings  []ServingRecord `gorm:"foreignKey:DailyIntakeRecordID" json:"servings"`
}

// ServingRecord keeps its list (PRODUCT or RECIPE) and position within it.
type ServingRecord struct {
	gorm.Model
	DailyIntakeRecordID uint             `gorm:"not null;index" json:"daily_intake_record_id"`
	Position            int              `gorm:"not null" json:"position"`
	ItemID              int              `json:"item_id"`
	ItemName            string           `json:"item_name"`
	ItemType            string           `gorm:"not null" json:"item_type"`
	Portion             float64          `json:"portion"`
	Nutrition           NutritionColumns `gorm:"embedded" json:"nutrition"`
}
