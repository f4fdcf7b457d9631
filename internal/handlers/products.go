package handlers

import (
	"fmt"
	"net/http"
	"strings"

	applog "nutrilog/internal/log"
	"nutrilog/internal/views/pages"
	"nutrilog/models"
)

type productRequest struct {
	Name      string                `json:"name"`
	Category  string                `json:"category"`
	Nutrition models.NutritionData  `json:"nutrition"`
	Details   productDetailsPayload `json:"details"`
}

func (p productRequest) apply(product *models.Product) {
	product.Name = strings.TrimSpace(p.Name)
	product.Category = models.ParseProductCategory(p.Category)
	product.Nutrition = p.Nutrition
	details := models.DefaultProductDetails()
	details.Description = strings.TrimSpace(p.Details.Description)
	details.Store = strings.TrimSpace(p.Details.Store)
	details.Manufacturer = strings.TrimSpace(p.Details.Manufacturer)
	details.PackagingAmount = p.Details.PackagingAmount
	if p.Details.PackagingUnit != "" {
		details.PackagingUnit = models.ParseMeasurementUnit(p.Details.PackagingUnit)
	}
	if p.Details.Density > 0 {
		details.Density = p.Details.Density
	}
	details.Price = p.Details.Price
	if p.Details.LastUpdate != "" {
		details.LastUpdate = p.Details.LastUpdate
	}
	product.Details = details
}

// ProductResource handles REST-style interactions with the product catalogue.
func ProductResource(w http.ResponseWriter, r *http.Request) {
	segments := pathSegments(r, "/app/api/products")

	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			listProducts(w, r)
		case http.MethodPost:
			createProduct(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if segments[0] == "renumber" {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		renumberProducts(w, r)
		return
	}

	productID, ok := parseID(segments[0])
	if !ok {
		applog.Debug(r.Context(), "invalid product identifier", "identifier", segments[0])
		http.NotFound(w, r)
		return
	}

	if len(segments) > 1 {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		switch segments[1] {
		case "duplicate":
			duplicateProduct(w, r, productID)
		case "move":
			moveProduct(w, r, productID)
		default:
			http.NotFound(w, r)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		showProduct(w, r, productID)
	case http.MethodPut:
		updateProduct(w, r, productID)
	case http.MethodDelete:
		deleteProduct(w, r, productID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listProducts(w http.ResponseWriter, r *http.Request) {
	filters := pages.ProductFiltersFromRequest(r)
	var responses []productResponse
	err := view(func(t *models.Tracker) error {
		catalogue := make([]*models.Product, 0, len(t.Products))
		for _, id := range t.ProductIDs() {
			if id != 0 {
				catalogue = append(catalogue, t.Products[id])
			}
		}
		matched := pages.FilterProducts(catalogue, filters)
		responses = make([]productResponse, 0, len(matched))
		for _, p := range matched {
			responses = append(responses, projectProduct(t, p))
		}
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, responses)
}

func showProduct(w http.ResponseWriter, r *http.Request, id int) {
	var resp productResponse
	err := view(func(t *models.Tracker) error {
		product, ok := t.LookupProduct(id)
		if !ok {
			return fmt.Errorf("show product %d: %w", id, models.ErrProductNotFound)
		}
		resp = projectProduct(t, product)
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func createProduct(w http.ResponseWriter, r *http.Request) {
	var payload productRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeModelError(w, r, err)
		return
	}

	var resp productResponse
	err := update(func(t *models.Tracker) error {
		product := t.AddProduct("", models.ProductCategoryOther)
		payload.apply(product)
		if product.Name == "" {
			product.Name = pages.NextUntitledName(t.ProductNames(), "Untitled Product")
		}
		resp = projectProduct(t, product)
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	applog.Info(r.Context(), "product added", "product", resp.Label)
	putFlash(r, fmt.Sprintf("Added %s.", resp.Label))
	writeJSON(w, http.StatusCreated, resp)
}

func updateProduct(w http.ResponseWriter, r *http.Request, id int) {
	var payload productRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeModelError(w, r, err)
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	var resp productResponse
	err := update(func(t *models.Tracker) error {
		if id == 0 {
			return fmt.Errorf("update product 0: %w", models.ErrNullEntry)
		}
		product, ok := t.LookupProduct(id)
		if !ok {
			return fmt.Errorf("update product %d: %w", id, models.ErrProductNotFound)
		}
		payload.apply(product)
		resp = projectProduct(t, product)
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func deleteProduct(w http.ResponseWriter, r *http.Request, id int) {
	err := update(func(t *models.Tracker) error {
		if id == 0 {
			return fmt.Errorf("remove product 0: %w", models.ErrNullEntry)
		}
		if !t.RemoveProduct(id) {
			return fmt.Errorf("remove product %d: %w", id, models.ErrProductNotFound)
		}
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	applog.Info(r.Context(), "product removed", "product", id)
	putFlash(r, fmt.Sprintf("Removed product %d.", id))
	w.WriteHeader(http.StatusNoContent)
}

func duplicateProduct(w http.ResponseWriter, r *http.Request, id int) {
	var resp productResponse
	err := update(func(t *models.Tracker) error {
		duplicate, err := t.DuplicateProduct(id)
		if err != nil {
			return err
		}
		duplicate.Name = pages.NextCopiedName(t.ProductNames(), duplicate.Name, "Untitled Product")
		resp = projectProduct(t, duplicate)
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	putFlash(r, fmt.Sprintf("Duplicated as %s.", resp.Label))
	writeJSON(w, http.StatusCreated, resp)
}

func moveProduct(w http.ResponseWriter, r *http.Request, id int) {
	var payload positionRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeModelError(w, r, err)
		return
	}
	var resp productResponse
	err := update(func(t *models.Tracker) error {
		if _, ok := t.LookupProduct(id); !ok {
			return fmt.Errorf("move product %d: %w", id, models.ErrProductNotFound)
		}
		if err := t.SetProductID(id, payload.Position); err != nil {
			return err
		}
		resp = projectProduct(t, t.Product(payload.Position))
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func renumberProducts(w http.ResponseWriter, r *http.Request) {
	var payload renumberRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeModelError(w, r, err)
		return
	}
	var ids []int
	err := update(func(t *models.Tracker) error {
		if len(payload.Order) == 0 {
			t.RenumberProducts()
		} else if err := t.RenumberProductIDs(payload.Order); err != nil {
			return err
		}
		ids = t.ProductIDs()
		return nil
	})
	if err != nil {
		writeModelError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int{"ids": ids})
}
