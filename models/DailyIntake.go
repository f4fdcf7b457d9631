package models

import "slices"

// DailyIntake lists the servings consumed on one ISO date.
type DailyIntake struct {
	Date     string    `json:"date"`
	Products []Serving `json:"products"`
	Recipes  []Serving `json:"recipes"`
}

func NewDailyIntake(date string) *DailyIntake {
	return &DailyIntake{Date: date}
}

func (d *DailyIntake) AddProduct(s Serving) { d.Products = append(d.Products, s) }
func (d *DailyIntake) AddRecipe(s Serving)  { d.Recipes = append(d.Recipes, s) }

// Add appends the serving to the list matching its type.
func (d *DailyIntake) Add(s Serving) {
	if s.ItemType == ServingTypeRecipe {
		d.AddRecipe(s)
		return
	}
	d.AddProduct(s)
}

func (d *DailyIntake) RemoveProduct(index int) bool {
	if index < 0 || index >= len(d.Products) {
		return false
	}
	d.Products = slices.Delete(d.Products, index, index+1)
	return true
}

func (d *DailyIntake) RemoveRecipe(index int) bool {
	if index < 0 || index >= len(d.Recipes) {
		return false
	}
	d.Recipes = slices.Delete(d.Recipes, index, index+1)
	return true
}

// Serving returns the serving at index in the list for kind.
func (d *DailyIntake) Serving(kind ServingType, index int) (*Serving, bool) {
	list := d.Products
	if kind == ServingTypeRecipe {
		list = d.Recipes
	}
	if index < 0 || index >= len(list) {
		return nil, false
	}
	return &list[index], true
}

// HasData reports whether any serving was logged.
func (d *DailyIntake) HasData() bool {
	return len(d.Products) > 0 || len(d.Recipes) > 0
}

// TotalConsumedNutrition sums the snapshots of every serving. It never looks at
// the catalogue or the recipes.
func (d *DailyIntake) TotalConsumedNutrition() NutritionData {
	var total NutritionData
	for _, s := range d.Products {
		total = total.Add(s.ConsumedNutrition())
	}
	for _, s := range d.Recipes {
		total = total.Add(s.ConsumedNutrition())
	}
	return total
}

func (d *DailyIntake) Clone() *DailyIntake {
	return &DailyIntake{
		Date:     d.Date,
		Products: slices.Clone(d.Products),
		Recipes:  slices.Clone(d.Recipes),
	}
}
