package models

import (
	"context"
	"fmt"

	applog "nutrilog/internal/log"
)

const defaultLastUpdate = "2025-01-01"

// ProductDetails holds optional packaging and pricing metadata.
type ProductDetails struct {
	Description     string          `json:"description"`
	Store           string          `json:"store"`
	Manufacturer    string          `json:"manufacturer"`
	PackagingAmount float64         `json:"packaging_amount"`
	PackagingUnit   MeasurementUnit `json:"packaging_unit"`
	Density         float64         `json:"density"` // kg/L
	Price           float64         `json:"price"`
	LastUpdate      string          `json:"last_update_date"` // YYYY-MM-DD
}

// DefaultProductDetails returns the metadata a freshly created product starts with.
func DefaultProductDetails() ProductDetails {
	return ProductDetails{
		PackagingUnit: UnitKilogram,
		Density:       1.0,
		LastUpdate:    defaultLastUpdate,
	}
}

// MassInGrams converts amount, expressed in the packaging unit, into grams.
func (d ProductDetails) MassInGrams(amount float64) float64 {
	switch d.PackagingUnit {
	case UnitGram:
		return amount
	case UnitKilogram:
		return amount * 1000
	case UnitLiter:
		return amount * d.Density * 1000
	case UnitMilliliter:
		return amount * d.Density
	default:
		applog.Error(context.Background(), "unsupported measurement unit", "unit", int(d.PackagingUnit))
		return 0
	}
}

// PricePerGram is the package price divided by its mass. A massless package costs nothing.
func (d ProductDetails) PricePerGram() float64 {
	mass := d.MassInGrams(d.PackagingAmount)
	if mass == 0 {
		return 0
	}
	return d.Price / mass
}

// PriceForMass returns the price of grams of the product.
func (d ProductDetails) PriceForMass(grams float64) float64 {
	return d.PricePerGram() * grams
}

// Product is a catalogue entry. Nutrition is per 100 g.
type Product struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Category  ProductCategory `json:"category"`
	Nutrition NutritionData   `json:"nutrition"`
	Details   ProductDetails  `json:"details"`
}

// NewProduct builds a product with default details.
func NewProduct(id int, name string, category ProductCategory) *Product {
	return &Product{
		ID:       id,
		Name:     name,
		Category: category,
		Details:  DefaultProductDetails(),
	}
}

// Label renders the "<id>. <name>" identifier used in pickers and listings.
func (p *Product) Label() string {
	return fmt.Sprintf("%d. %s", p.ID, p.Name)
}

// Clone returns an independent copy.
func (p *Product) Clone() *Product {
	clone := *p
	return &clone
}

func (p *Product) ItemID() int                     { return p.ID }
func (p *Product) ItemName() string                { return p.Name }
func (p *Product) ItemType() ServingType           { return ServingTypeProduct }
func (p *Product) NutritionPer100g() NutritionData { return p.Nutrition }
