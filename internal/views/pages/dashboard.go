package pages

import (
	"context"
	"fmt"
	"strconv"

	"github.com/a-h/templ"

	"nutrilog/internal/views/theme"
	"nutrilog/models"
)

// DashboardData is everything the dashboard renders.
type DashboardData struct {
	Snapshot Snapshot
	Flash    string
	Status   string
}

// Dashboard renders the full HTML document.
func Dashboard(data DashboardData) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		t := theme.Resolve(data.Snapshot.Theme)
		h.raw("<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\">")
		h.raw("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">")
		h.element("title", "", "Nutrilog · "+DefaultDash(data.Snapshot.Name))
		h.raw("<script src=\"https://unpkg.com/htmx.org@1.9.12\"></script></head>")
		h.open("body", "class", t.BodyClass, "data-theme", t.Key)
		h.open("div", "id", "dashboard", "class", t.ShellClass)
		h.render(ctx, DashboardPartial(data))
		h.raw("</div></body></html>")
	})
}

// DashboardPartial renders the dashboard body for HTMX swaps.
func DashboardPartial(data DashboardData) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		s := data.Snapshot
		t := theme.Resolve(s.Theme)

		h.open("header", "class", classes(t.PanelClass, t.BorderClass))
		h.element("h1", t.AccentClass, DefaultDash(s.Name))
		h.element("p", t.MutedClass, DefaultDash(s.Path))
		if s.Dirty {
			h.element("span", "badge", "Unsaved changes")
		}
		h.raw(`<form method="post" action="/app/save"><button type="submit">Save</button></form>`)
		h.raw("</header>")

		if data.Flash != "" {
			h.open("div", "class", "flash", "role", "status")
			h.text(data.Flash)
			h.raw("</div>")
		}

		h.render(ctx, summaryPanel(s.Summary, t))
		h.render(ctx, dayPanel(s.Today, t))
		h.render(ctx, productPanel(s.Products, t))
		h.render(ctx, recipePanel(s.Recipes, t))
		h.render(ctx, preferencesPanel(s.Theme, data.Status, t))
	})
}

func nutritionCells(n models.NutritionData) []string {
	return []string{
		FormatKcal(n.Calories),
		FormatGrams(n.Fat),
		FormatGrams(n.Carbs),
		FormatGrams(n.Protein),
	}
}

func summaryPanel(s models.Summary, t theme.WindowTheme) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.open("section", "class", t.PanelClass, "data-module-key", "summary")
		h.element("h2", "", "Today · "+formatDate(s.Today))
		h.open("dl", "class", "stats")
		stat := func(label, value string) {
			h.element("dt", t.MutedClass, label)
			h.element("dd", "", value)
		}
		stat("Products", strconv.Itoa(s.Products))
		stat("Recipes", strconv.Itoa(s.Recipes))
		stat("Days logged", strconv.Itoa(s.Days))
		stat("Favorites", strconv.Itoa(s.Favorites))
		h.raw("</dl>")

		h.raw("<table>")
		h.headerRow("", "Calories", "Fat", "Carbs", "Protein")
		h.row(append([]string{"Consumed"}, nutritionCells(s.Consumed)...)...)
		h.row(append([]string{"Target"}, nutritionCells(s.Targets)...)...)
		h.raw("<tr>")
		h.element("td", "", "Remaining")
		for i, cell := range nutritionCells(s.Remaining) {
			value := []float64{s.Remaining.Calories, s.Remaining.Fat, s.Remaining.Carbs, s.Remaining.Protein}[i]
			class := t.UnderClass
			if value < 0 {
				class = t.OverClass
			}
			h.element("td", class, cell)
		}
		h.raw("</tr></table>")

		fat, carbs, protein := s.Consumed.MacroCalories()
		total := fat + carbs + protein
		h.open("div", "class", "macro-split", "data-total", strconv.FormatFloat(total, 'f', 0, 64))
		for i, part := range []struct {
			label string
			kcal  float64
		}{{"Fat", fat}, {"Carbs", carbs}, {"Protein", protein}} {
			share := ""
			if total > 0 {
				share = FormatPercent(part.kcal / total)
			}
			h.open("span", "style", "color:"+t.ChartPalette[i])
			h.text(fmt.Sprintf("%s %s", part.label, DefaultDash(share)))
			h.raw("</span>")
		}
		h.raw("</div></section>")
	})
}

func dayPanel(day DaySnapshot, t theme.WindowTheme) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.open("section", "class", t.PanelClass, "data-module-key", "daily-intake", "data-date", day.Date)
		h.element("h2", "", "Daily intake")
		if len(day.Products) == 0 && len(day.Recipes) == 0 {
			h.element("p", t.MutedClass, "Nothing logged for "+formatDate(day.Date)+".")
			h.raw("</section>")
			return
		}
		h.raw("<table>")
		h.headerRow("Item", "Type", "Portion", "Calories", "Fat", "Carbs", "Protein")
		for _, list := range [][]ServingRow{day.Products, day.Recipes} {
			for _, s := range list {
				h.row(append([]string{s.Label, s.Type, FormatGrams(s.Portion)}, nutritionCells(s.Consumed)...)...)
			}
		}
		h.row(append([]string{"Total", "", ""}, nutritionCells(day.Total)...)...)
		h.raw("</table></section>")
	})
}

func productPanel(products []ProductRow, t theme.WindowTheme) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.open("section", "class", t.PanelClass, "data-module-key", "products")
		h.element("h2", "", "Product catalogue")
		h.raw(`<form hx-get="/app" hx-target="#dashboard" hx-trigger="keyup changed delay:300ms from:input"><input type="search" name="q" placeholder="Search products"></form>`)
		if len(products) == 0 {
			h.element("p", t.MutedClass, "No products yet.")
			h.raw("</section>")
			return
		}
		h.raw("<table>")
		h.headerRow("Product", "Category", "Store", "Calories", "Fat", "Carbs", "Protein", "Price / kg", "")
		for _, p := range products {
			h.open("tr", "data-product-id", strconv.Itoa(p.ID))
			for _, cell := range append([]string{p.Label, p.Category, DefaultDash(p.Store)}, nutritionCells(p.Nutrition)...) {
				h.element("td", "", cell)
			}
			h.element("td", "", FormatPrice(p.PricePerKg))
			h.element("td", "", favoriteMark(p.Favorite))
			h.raw("</tr>")
		}
		h.raw("</table></section>")
	})
}

func recipePanel(recipes []RecipeRow, t theme.WindowTheme) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.open("section", "class", t.PanelClass, "data-module-key", "recipes")
		h.element("h2", "", "Recipes")
		if len(recipes) == 0 {
			h.element("p", t.MutedClass, "No recipes yet.")
			h.raw("</section>")
			return
		}
		for _, r := range recipes {
			h.open("article", "data-recipe-id", strconv.Itoa(r.ID), "class", t.BorderClass)
			h.element("h3", "", r.Label+" "+favoriteMark(r.Favorite))
			h.element("p", t.MutedClass, fmt.Sprintf("%s · %s net · %s / 100 g · %s per 100 g",
				r.Category, FormatGrams(r.NetMass), FormatKcal(r.Per100g.Calories), FormatPrice(r.PricePer100g)))
			h.raw("<table>")
			h.headerRow("#", "Product", "Amount", "Net", "Mass", "Net mass", "Price")
			for _, i := range r.Ingredients {
				h.row(strconv.Itoa(i.ID), i.Product, i.Amount, i.Net, FormatGrams(i.Mass), FormatGrams(i.NetMass), FormatPrice(i.Price))
			}
			h.raw("</table>")
			h.open("form", "method", "post", "action", "/app/reports/recipe", "hx-post", "/app/reports/recipe", "hx-target", "#report")
			h.open("input", "type", "hidden", "name", "recipe_id", "value", strconv.Itoa(r.ID))
			h.raw(`<input type="number" name="target_portion" min="1" step="any" placeholder="Portion, g"><button type="submit">Breakdown</button></form>`)
			h.raw("</article>")
		}
		h.raw(`<div id="report"></div></section>`)
	})
}

func preferencesPanel(current, status string, t theme.WindowTheme) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.open("section", "class", t.PanelClass, "data-module-key", "preferences")
		h.element("h2", "", "Preferences")
		h.raw(`<form method="post" action="/app/preferences/update"><select name="theme">`)
		for _, option := range theme.Options() {
			selected := ""
			if option.Value == current {
				selected = "selected"
			}
			h.open("option", "value", option.Value, "selected", selected)
			h.text(option.Label)
			h.raw("</option>")
		}
		h.raw(`</select><button type="submit">Apply</button></form>`)
		h.element("p", t.MutedClass, PreferenceStatusMessage(status))
		h.raw("</section>")
	})
}

func favoriteMark(favorite bool) string {
	if favorite {
		return "★"
	}
	return ""
}
