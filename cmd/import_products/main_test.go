package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nutrilog/internal/savefile"
	"nutrilog/models"
)

const priceListCSV = `Name,Category,Calories,Fat,Carbs,Protein,Packaging Amount,Packaging Unit,Density,Price,Store,Manufacturer
Rolled Oats,GRAIN,380,7,60,13,500,G,,"1,49",Corner Shop,Mills & Co
Whole Milk,Dairy,64,3.5,4.8,3.3,1,L,1.03,1.19 EUR,Corner Shop,
 ,OTHER,1,1,1,1,,,,,,
`

func withFixedNow(t *testing.T) {
	t.Helper()
	original := nowFunc
	nowFunc = func() time.Time { return time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { nowFunc = original })
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRunImportsCSVIntoSavefile(t *testing.T) {
	withFixedNow(t)
	source := writeFile(t, "prices.csv", priceListCSV)
	target := filepath.Join(t.TempDir(), "kitchen.ct")

	if err := run(context.Background(), source, target); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	tracker, err := savefile.Read(target)
	if err != nil {
		t.Fatalf("savefile.Read() error = %v", err)
	}
	if len(tracker.Products) != 3 {
		t.Fatalf("expected null entry plus 2 products, got %d", len(tracker.Products))
	}

	oats := tracker.Product(1)
	if oats.Name != "Rolled Oats" || oats.Category != models.ProductCategoryGrain {
		t.Fatalf("unexpected oats: %+v", oats)
	}
	if oats.Details.Price != 1.49 || oats.Details.PackagingUnit != models.UnitGram || oats.Details.PackagingAmount != 500 {
		t.Fatalf("unexpected oats packaging: %+v", oats.Details)
	}
	if oats.Details.Manufacturer != "Mills & Co" || oats.Details.LastUpdate != "2025-04-01" {
		t.Fatalf("unexpected oats details: %+v", oats.Details)
	}

	milk := tracker.Product(2)
	if milk.Category != models.ProductCategoryDairy || milk.Details.Density != 1.03 || milk.Details.Price != 1.19 {
		t.Fatalf("unexpected milk: %+v", milk)
	}
}

func TestRunUpdatesExistingProductsByName(t *testing.T) {
	withFixedNow(t)
	target := filepath.Join(t.TempDir(), "kitchen.ct")
	tracker := models.NewTracker("kitchen")
	existing := tracker.AddProduct("rolled oats", models.ProductCategoryOther)
	existing.Nutrition = models.NutritionData{Calories: 370}
	if err := savefile.Write(target, tracker); err != nil {
		t.Fatalf("savefile.Write() error = %v", err)
	}

	source := writeFile(t, "prices.csv", "Name,Price,Packaging Amount,Packaging Unit\nROLLED OATS,0.99,1,KG\n")
	if err := run(context.Background(), source, target); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	reloaded, err := savefile.Read(target)
	if err != nil {
		t.Fatalf("savefile.Read() error = %v", err)
	}
	if len(reloaded.Products) != 2 {
		t.Fatalf("expected the product to be updated in place, got %d products", len(reloaded.Products))
	}
	oats := reloaded.Product(1)
	if oats.Name != "rolled oats" || oats.Details.Price != 0.99 || oats.Details.PackagingUnit != models.UnitKilogram {
		t.Fatalf("unexpected update: %+v", oats)
	}
	if oats.Nutrition.Calories != 370 {
		t.Fatalf("expected nutrition to be kept when the list has none, got %+v", oats.Nutrition)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	target := filepath.Join(t.TempDir(), "kitchen.ct")

	tests := []struct {
		name   string
		source string
		want   error
	}{
		{"header only", writeFile(t, "empty.csv", "Name,Price\n"), errNoEntries},
		{"missing file", filepath.Join(t.TempDir(), "missing.csv"), os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(context.Background(), tt.source, target); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if err := run(context.Background(), "", target); err == nil {
		t.Fatal("expected an error for an empty source path")
	}
	if _, err := os.Stat(target); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("expected no savefile to be written on failure")
	}
}

func TestParsePriceLines(t *testing.T) {
	text := "Weekly offers\nRolled oats 500 g 2,49\nWhole milk ... 1 l ... 1.19 EUR\nPage 1 of 2\nButter 250g 1.99 €\nParmesan wheel 38 kg 1,234.50\n"

	entries := parsePriceLines(text)
	if len(entries) != 4 {
		t.Fatalf("expected 3 entries, got %+v", entries)
	}

	tests := []struct {
		name   string
		amount float64
		unit   models.MeasurementUnit
		price  float64
	}{
		{"Rolled oats", 500, models.UnitGram, 2.49},
		{"Whole milk", 1, models.UnitLiter, 1.19},
		{"Butter", 250, models.UnitGram, 1.99},
		{"Parmesan wheel", 38, models.UnitKilogram, 1234.5},
	}
	for i, tt := range tests {
		got := entries[i]
		if got.Name != tt.name || got.Amount != tt.amount || got.Unit != tt.unit || got.Price != tt.price {
			t.Fatalf("entry %d: got %+v, want %+v", i, got, tt)
		}
		if got.Nutrition != nil {
			t.Fatalf("entry %d: expected no nutrition from a price list line", i)
		}
	}
}

func TestParseFirstNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1,49", 1.49},
		{"2.50 EUR", 2.5},
		{"N/A", 0},
		{"", 0},
		{"approx. 12 g", 12},
		{"1,234.50", 1234.5},
		{"1.234,50 EUR", 1234.5},
		{"1,234", 1234},
		{"0,500", 0.5},
		{"12.000.000", 12000000},
		{"2.49.", 2.49},
		{",5", 0.5},
	}
	for _, tt := range tests {
		if got := parseFirstNumber(tt.in); got != tt.want {
			t.Fatalf("parseFirstNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
