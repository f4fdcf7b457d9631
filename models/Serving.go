package models

import "fmt"

// Consumable is anything a serving can be taken from.
type Consumable interface {
	ItemID() int
	ItemName() string
	ItemType() ServingType
	NutritionPer100g() NutritionData
}

// Serving records a consumed portion. Nutrition is a per-100g snapshot captured
// when the item was assigned and is not affected by later catalogue edits.
type Serving struct {
	ItemID    int           `json:"item_id"`
	ItemName  string        `json:"item_name"`
	ItemType  ServingType   `json:"item_type"`
	Portion   float64       `json:"portion"` // g
	Nutrition NutritionData `json:"nutrition"`
}

// NewServing builds a serving of portion grams of item.
func NewServing(item Consumable, portion float64) Serving {
	s := Serving{Portion: portion}
	s.Assign(item)
	return s
}

// Assign re-targets the serving and snapshots the item's nutrition.
func (s *Serving) Assign(item Consumable) {
	s.ItemID = item.ItemID()
	s.ItemName = item.ItemName()
	s.ItemType = item.ItemType()
	s.Nutrition = item.NutritionPer100g()
}

func (s Serving) Label() string {
	return fmt.Sprintf("%d. %s", s.ItemID, s.ItemName)
}

// ConsumedNutrition scales the snapshot to the portion.
func (s Serving) ConsumedNutrition() NutritionData {
	return s.Nutrition.Scale(s.Portion / 100)
}
