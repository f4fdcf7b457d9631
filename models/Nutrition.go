package models

import (
	"errors"
	"fmt"
)

// ErrDivideByZero is returned when NutritionData is divided by zero.
var ErrDivideByZero = errors.New("models: division by zero")

// NutritionData holds the four tracked macro quantities. Depending on the caller it
// is either a total for some mass or a rate per 100 g.
type NutritionData struct {
	Calories float64 `json:"calories"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
	Protein  float64 `json:"protein"`
}

// Add returns the elementwise sum of n and other.
func (n NutritionData) Add(other NutritionData) NutritionData {
	return NutritionData{
		Calories: n.Calories + other.Calories,
		Fat:      n.Fat + other.Fat,
		Carbs:    n.Carbs + other.Carbs,
		Protein:  n.Protein + other.Protein,
	}
}

// Scale multiplies every field by factor.
func (n NutritionData) Scale(factor float64) NutritionData {
	return NutritionData{
		Calories: n.Calories * factor,
		Fat:      n.Fat * factor,
		Carbs:    n.Carbs * factor,
		Protein:  n.Protein * factor,
	}
}

// Div divides every field by divisor.
func (n NutritionData) Div(divisor float64) (NutritionData, error) {
	if divisor == 0 {
		return NutritionData{}, fmt.Errorf("divide nutrition data: %w", ErrDivideByZero)
	}
	return NutritionData{
		Calories: n.Calories / divisor,
		Fat:      n.Fat / divisor,
		Carbs:    n.Carbs / divisor,
		Protein:  n.Protein / divisor,
	}, nil
}

// IsZero reports whether all fields are zero.
func (n NutritionData) IsZero() bool {
	return n == NutritionData{}
}

// MacroCalories converts the macro grams into kcal (9 per gram of fat, 4 per gram
// of carbs and protein).
func (n NutritionData) MacroCalories() (fat, carbs, protein float64) {
	return n.Fat * 9, n.Carbs * 4, n.Protein * 4
}
