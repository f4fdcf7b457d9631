package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"nutrilog/internal/workspace"
	"nutrilog/models"
)

// view opens the savefile read-only.
func (a *app) view(fn func(*models.Tracker) error) error {
	ws, err := workspace.Open(a.file, nil)
	if err != nil {
		return err
	}
	return ws.View(fn)
}

// update applies fn and saves the savefile when it succeeds.
func (a *app) update(ctx context.Context, fn func(*models.Tracker) error) error {
	ws, err := workspace.Open(a.file, nil)
	if err != nil {
		return err
	}
	if err := ws.Update(fn); err != nil {
		return err
	}
	return ws.Save(ctx)
}

func (a *app) savefileExists() (bool, error) {
	_, err := os.Stat(a.file)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func parseIDArg(name, value string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must be >= 0", name)
	}
	return v, nil
}

func parseIDArgs(name string, values []string) ([]int, error) {
	ids := make([]int, 0, len(values))
	for _, value := range values {
		id, err := parseIDArg(name, value)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parsePositiveFloat(name, value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

// parseDateArg accepts YYYY-MM-DD or "today".
func parseDateArg(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "today") {
		return nowFunc().Format(models.DateLayout), nil
	}
	if _, err := time.Parse(models.DateLayout, value); err != nil {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", value)
	}
	return value, nil
}

var nowFunc = time.Now

func lookupProduct(t *models.Tracker, id int) (*models.Product, error) {
	if id == 0 {
		return nil, fmt.Errorf("product 0: %w", models.ErrNullEntry)
	}
	product, ok := t.LookupProduct(id)
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, models.ErrProductNotFound)
	}
	return product, nil
}

func lookupRecipe(t *models.Tracker, id int) (*models.Recipe, error) {
	if id == 0 {
		return nil, fmt.Errorf("recipe 0: %w", models.ErrNullEntry)
	}
	recipe, ok := t.Recipe(id)
	if !ok {
		return nil, fmt.Errorf("recipe %d: %w", id, models.ErrRecipeNotFound)
	}
	return recipe, nil
}

func formatNutrition(n models.NutritionData) string {
	return fmt.Sprintf("%.1f\t%.1f\t%.1f\t%.1f", n.Calories, n.Fat, n.Carbs, n.Protein)
}
