package pages

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"nutrilog/models"
)

// RecipeReportIngredient captures the scaled contribution of a single product.
type RecipeReportIngredient struct {
	Order       int
	ProductName string
	Category    string
	BaseMass    float64
	FinalMass   float64
	FinalNet    float64
	Price       float64
	Share       float64 // of the total gross mass
}

// RecipeReportData aggregates the metadata required to render a portion breakdown.
type RecipeReportData struct {
	RecipeName    string
	TargetPortion float64
	FinishedMass  float64
	ScaleFactor   float64
	Reference     string
	RunDate       time.Time
	Nutrition     models.NutritionData
	Price         float64
	Ingredients   []RecipeReportIngredient
}

// FormatReportGrams renders a mass with two decimals, e.g. "12.35 g".
func FormatReportGrams(value float64) string {
	return fmt.Sprintf("%.2f g", value)
}

// FormatReportDate renders the supplied time using a report-friendly layout.
func FormatReportDate(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.Format("02 Jan 2006")
}

// RecipeReport renders the breakdown table.
func RecipeReport(data RecipeReportData) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.open("section", "class", "report", "data-reference", data.Reference)
		h.element("h2", "", data.RecipeName)
		h.element("p", "", fmt.Sprintf("%s · %s · portion %s of %s finished (×%s)",
			data.Reference,
			FormatReportDate(data.RunDate),
			FormatReportGrams(data.TargetPortion),
			FormatReportGrams(data.FinishedMass),
			strconv.FormatFloat(data.ScaleFactor, 'f', 3, 64)))
		h.raw("<table>")
		h.headerRow("#", "Product", "Category", "Gross", "Net", "Share", "Price")
		for _, i := range data.Ingredients {
			h.row(
				strconv.Itoa(i.Order),
				i.ProductName,
				i.Category,
				FormatReportGrams(i.FinalMass),
				FormatReportGrams(i.FinalNet),
				FormatPercent(i.Share),
				FormatPrice(i.Price),
			)
		}
		h.raw("</table>")
		h.element("p", "", fmt.Sprintf("%s · fat %s · carbs %s · protein %s · price %s",
			FormatKcal(data.Nutrition.Calories),
			FormatGrams(data.Nutrition.Fat),
			FormatGrams(data.Nutrition.Carbs),
			FormatGrams(data.Nutrition.Protein),
			FormatPrice(data.Price)))
		h.raw("</section>")
	})
}
