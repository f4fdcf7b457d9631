package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	applog "nutrilog/internal/log"
	"nutrilog/models"
)

type servingRequest struct {
	Type    string  `json:"type"`
	ItemID  int     `json:"item_id"`
	Portion float64 `json:"portion"`
}

type duplicateDayRequest struct {
	Target string `json:"target"`
}

type daySummaryResponse struct {
	Date     string               `json:"date"`
	Servings int                  `json:"servings"`
	Total    models.NutritionData `json:"total"`
}

// resolveDate accepts YYYY-MM-DD or "today".
func resolveDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "today") {
		return nowFunc().Format(models.DateLayout), true
	}
	if _, err := time.Parse(models.DateLayout, value); err != nil {
		return "", false
	}
	return value, true
}

// DayResource handles the daily intake log.
func DayResource(w http.ResponseWriter, r *http.Request) {
	segments := pathSegments(r, "/app/api/days")

	if len(segments) == 0 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		listDays(w, r)
		return
	}

	date, ok := resolveDate(segments[0])
	if !ok {
		applog.Debug(r.Context(), "invalid daily intake date", "date", segments[0])
		writeJSONError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	if len(segments) > 1 {
		switch segments[1] {
		case "servings":
			servingResource(w, r, date, segments[2:])
		case "duplicate":
			if r.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			duplicateDay(w, r, date)
		default:
			http.NotFound(w, r)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		showDay(w, r, date)
	case http.MethodPost:
		createDay(w, r, date)
	case http.MethodDelete:
		deleteDay(w, r, date)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listDays(w http.ResponseWriter, r *http.Request) {
	var responses []daySummaryResponse
	err := view(func(t *models.Tracker) error {
		dates := t.Dates()
		responses = make([]daySummaryResponse, 0, len(dates))
		for _, date := range dates {
			day, _ := t.DailyIntake(date)
			responses = append(responses, daySummaryResponse{
				Date:     date,
				Servings: len(day.Products) + len(day.Recipes),
				Total:    day.TotalConsumedNutrition(),
			})
		}
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, responses)
}

func showDay(w http.ResponseWriter, r *http.Request, date string) {
	var resp dayResponse
	err := view(func(t *models.Tracker) error {
		day, ok := t.DailyIntake(date)
		if !ok {
			return fmt.Errorf("show %s: %w", date, models.ErrDailyIntakeNotFound)
		}
		resp = projectDay(day)
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func createDay(w http.ResponseWriter, r *http.Request, date string) {
	var resp dayResponse
	err := update(func(t *models.Tracker) error {
		if _, ok := t.DailyIntake(date); ok {
			return fmt.Errorf("add %s: %w", date, models.ErrDailyIntakeExists)
		}
		resp = projectDay(t.AddDailyIntake(date))
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	putFlash(r, fmt.Sprintf("Started a log for %s.", date))
	writeJSON(w, http.StatusCreated, resp)
}

func deleteDay(w http.ResponseWriter, r *http.Request, date string) {
	err := update(func(t *models.Tracker) error {
		if !t.RemoveDailyIntake(date) {
			return fmt.Errorf("remove %s: %w", date, models.ErrDailyIntakeNotFound)
		}
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// duplicateDay copies date onto the requested target. Copying "today" onto an
// empty date falls back to a blank record when nothing was logged today.
func duplicateDay(w http.ResponseWriter, r *http.Request, date string) {
	var payload duplicateDayRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeModelError(w, r, err)
		return
	}
	target, ok := resolveDate(payload.Target)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "target must be YYYY-MM-DD")
		return
	}

	var resp dayResponse
	err := update(func(t *models.Tracker) error {
		if _, exists := t.DailyIntake(target); exists {
			return fmt.Errorf("duplicate onto %s: %w", target, models.ErrDailyIntakeExists)
		}
		if date == nowFunc().Format(models.DateLayout) {
			if err := t.DuplicateTodaysDailyIntake(target); err != nil {
				return err
			}
		} else if err := t.DuplicateDailyIntake(date, target); err != nil {
			return err
		}
		day, _ := t.DailyIntake(target)
		resp = projectDay(day)
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	putFlash(r, fmt.Sprintf("Copied %s to %s.", date, target))
	writeJSON(w, http.StatusCreated, resp)
}

func servingResource(w http.ResponseWriter, r *http.Request, date string, segments []string) {
	switch {
	case len(segments) == 0 && r.Method == http.MethodPost:
		addServing(w, r, date)
	case len(segments) == 2 && (r.Method == http.MethodDelete || r.Method == http.MethodPut):
		kind, ok := models.ParseServingType(segments[0])
		index, valid := parseID(segments[1])
		if !ok || !valid {
			http.NotFound(w, r)
			return
		}
		if r.Method == http.MethodPut {
			editServing(w, r, date, kind, index)
			return
		}
		removeServing(w, r, date, kind, index)
	case len(segments) == 0 || len(segments) == 2:
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

// addServing logs a portion of a product or recipe, creating the day on demand.
// The serving keeps a snapshot of the item's nutrition per 100 g.
func addServing(w http.ResponseWriter, r *http.Request, date string) {
	var payload servingRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeModelError(w, r, err)
		return
	}
	kind, ok := models.ParseServingType(payload.Type)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "type must be PRODUCT or RECIPE")
		return
	}
	if payload.Portion <= 0 {
		writeJSONError(w, http.StatusBadRequest, "portion must be positive")
		return
	}

	var resp dayResponse
	err := update(func(t *models.Tracker) error {
		item, err := lookupConsumable(t, kind, payload.ItemID)
		if err != nil {
			return err
		}
		day, ok := t.DailyIntake(date)
		if !ok {
			day = t.AddDailyIntake(date)
		}
		day.Add(models.NewServing(item, payload.Portion))
		resp = projectDay(day)
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func lookupConsumable(t *models.Tracker, kind models.ServingType, id int) (models.Consumable, error) {
	if kind == models.ServingTypeRecipe {
		return lookupRecipe(t, id)
	}
	product, ok := t.LookupProduct(id)
	if !ok || id == 0 {
		return nil, fmt.Errorf("serving product %d: %w", id, models.ErrProductNotFound)
	}
	return product, nil
}

// editServing changes the portion of a logged serving. An item_id re-assigns
// the serving and takes a fresh nutrition snapshot; without one the snapshot
// is kept.
func editServing(w http.ResponseWriter, r *http.Request, date string, kind models.ServingType, index int) {
	var payload servingRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeModelError(w, r, err)
		return
	}
	if payload.Type != "" {
		if requested, ok := models.ParseServingType(payload.Type); !ok || requested != kind {
			writeJSONError(w, http.StatusBadRequest, "type cannot change on an existing serving")
			return
		}
	}
	if payload.Portion <= 0 {
		writeJSONError(w, http.StatusBadRequest, "portion must be positive")
		return
	}

	var resp dayResponse
	err := update(func(t *models.Tracker) error {
		day, ok := t.DailyIntake(date)
		if !ok {
			return fmt.Errorf("edit serving on %s: %w", date, models.ErrDailyIntakeNotFound)
		}
		serving, ok := day.Serving(kind, index)
		if !ok {
			return fmt.Errorf("serving %d on %s: %w", index, date, models.ErrInvalidPosition)
		}
		if payload.ItemID != 0 {
			item, err := lookupConsumable(t, kind, payload.ItemID)
			if err != nil {
				return err
			}
			serving.Assign(item)
		}
		serving.Portion = payload.Portion
		resp = projectDay(day)
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func removeServing(w http.ResponseWriter, r *http.Request, date string, kind models.ServingType, index int) {
	var resp dayResponse
	err := update(func(t *models.Tracker) error {
		day, ok := t.DailyIntake(date)
		if !ok {
			return fmt.Errorf("remove serving on %s: %w", date, models.ErrDailyIntakeNotFound)
		}
		removed := false
		if kind == models.ServingTypeRecipe {
			removed = day.RemoveRecipe(index)
		} else {
			removed = day.RemoveProduct(index)
		}
		if !removed {
			return fmt.Errorf("serving %d on %s: %w", index, date, models.ErrInvalidPosition)
		}
		resp = projectDay(day)
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
