package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"nutrilog/internal/config"
	applog "nutrilog/internal/log"
	"nutrilog/internal/savefile"
	"nutrilog/internal/workspace"
	"nutrilog/models"
)

var (
	cleanWhitespace = regexp.MustCompile(`\s+`)
	numberPattern   = regexp.MustCompile(`[-+]?[.,]?\d[\d.,]*`)
	// "Rolled oats 500 g 2,49" or "Whole milk ... 1 l ... 1.19 EUR"
	priceLinePattern = regexp.MustCompile(`(?i)^(.+?)[\s.]+(\d+(?:[.,]\d+)?)\s*(kg|g|ml|l)\b.*?\s(\d[\d.,]*)\s*(?:€|eur|\$|usd)?\s*$`)
)

var nowFunc = time.Now

var errNoEntries = errors.New("no products found")

type priceEntry struct {
	Name         string
	Category     string
	Nutrition    *models.NutritionData
	Amount       float64
	Unit         models.MeasurementUnit
	Density      float64
	Price        float64
	Store        string
	Manufacturer string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: import_products <price-list.csv|price-list.pdf> [savefile]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	target := cfg.Savefile.Path
	if len(os.Args) > 2 {
		target = os.Args[2]
	}

	if err := run(context.Background(), os.Args[1], target); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, source, savefilePath string) error {
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("price list path must not be empty")
	}
	if strings.TrimSpace(savefilePath) == "" {
		return fmt.Errorf("savefile path must not be empty")
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("read price list: %w", err)
	}

	var entries []priceEntry
	switch strings.ToLower(filepath.Ext(source)) {
	case ".pdf":
		text, err := extractTextFromPDF(data)
		if err != nil {
			return fmt.Errorf("extract pdf text: %w", err)
		}
		entries = parsePriceLines(text)
	default:
		entries, err = readCSV(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("read csv: %w", err)
		}
	}
	if len(entries) == 0 {
		return fmt.Errorf("%s: %w", filepath.Base(source), errNoEntries)
	}

	ws, err := workspace.Open(savefilePath, nil)
	if err != nil {
		return fmt.Errorf("open savefile: %w", err)
	}

	var created, updated int
	if err := ws.Update(func(t *models.Tracker) error {
		for _, entry := range entries {
			if upsertProduct(t, entry) {
				created++
			} else {
				updated++
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if err := ws.Save(ctx); err != nil {
		return fmt.Errorf("save %s: %w", savefilePath, err)
	}

	applog.Info(ctx, "price list imported", "source", source, "created", created, "updated", updated)
	fmt.Fprintf(os.Stdout, "Imported %d products from %s (%d new, %d updated)\n", created+updated, filepath.Base(source), created, updated)
	return nil
}

// upsertProduct matches on the case-insensitive name and reports whether a new
// product was created. Entries without nutrition leave the existing values alone.
func upsertProduct(t *models.Tracker, entry priceEntry) bool {
	product := findProduct(t, entry.Name)
	created := product == nil
	if created {
		product = t.AddProduct(entry.Name, models.ParseProductCategory(entry.Category))
	} else if entry.Category != "" {
		product.Category = models.ParseProductCategory(entry.Category)
	}

	if entry.Nutrition != nil {
		product.Nutrition = *entry.Nutrition
	}
	if entry.Amount > 0 {
		product.Details.PackagingAmount = entry.Amount
		product.Details.PackagingUnit = entry.Unit
	}
	if entry.Density > 0 {
		product.Details.Density = entry.Density
	}
	if entry.Price > 0 {
		product.Details.Price = entry.Price
	}
	if entry.Store != "" {
		product.Details.Store = entry.Store
	}
	if entry.Manufacturer != "" {
		product.Details.Manufacturer = entry.Manufacturer
	}
	product.Details.LastUpdate = nowFunc().Format(models.DateLayout)
	return created
}

func findProduct(t *models.Tracker, name string) *models.Product {
	for _, id := range t.ProductIDs() {
		if id == 0 {
			continue
		}
		if product := t.Products[id]; strings.EqualFold(product.Name, name) {
			return product
		}
	}
	return nil
}

func readCSV(r io.Reader) ([]priceEntry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	header := rows[0]
	entries := make([]priceEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(header))
		for idx, key := range header {
			if idx >= len(row) {
				continue
			}
			record[strings.TrimSpace(key)] = strings.TrimSpace(row[idx])
		}
		name := normalizeText(record["Name"])
		if savefile.Sanitize(name) == "" {
			continue
		}
		entries = append(entries, buildEntry(record))
	}
	return entries, nil
}

func buildEntry(record map[string]string) priceEntry {
	entry := priceEntry{
		Name:         savefile.Sanitize(normalizeText(record["Name"])),
		Category:     normalizeValue(record["Category"]),
		Amount:       parseFirstNumber(record["Packaging Amount"]),
		Unit:         models.ParseMeasurementUnit(record["Packaging Unit"]),
		Density:      parseFirstNumber(record["Density"]),
		Price:        parseFirstNumber(record["Price"]),
		Store:        savefile.Sanitize(normalizeText(record["Store"])),
		Manufacturer: savefile.Sanitize(normalizeText(record["Manufacturer"])),
	}
	if hasAny(record, "Calories", "Fat", "Carbs", "Protein") {
		entry.Nutrition = &models.NutritionData{
			Calories: parseFirstNumber(record["Calories"]),
			Fat:      parseFirstNumber(record["Fat"]),
			Carbs:    parseFirstNumber(record["Carbs"]),
			Protein:  parseFirstNumber(record["Protein"]),
		}
	}
	return entry
}

func hasAny(record map[string]string, keys ...string) bool {
	for _, key := range keys {
		if normalizeValue(record[key]) != "" {
			return true
		}
	}
	return false
}

// parsePriceLines reads one product per line of extracted PDF text. Lines
// without a package size and a trailing price are skipped.
func parsePriceLines(text string) []priceEntry {
	var entries []priceEntry
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(cleanWhitespace.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		match := priceLinePattern.FindStringSubmatch(line)
		if match == nil {
			applog.Debug(context.Background(), "skipping price list line", "line", line)
			continue
		}
		name := savefile.Sanitize(strings.TrimRight(match[1], " .:"))
		if name == "" {
			continue
		}
		entries = append(entries, priceEntry{
			Name:   name,
			Amount: parseFirstNumber(match[2]),
			Unit:   models.ParseMeasurementUnit(match[3]),
			Price:  parseFirstNumber(match[4]),
		})
	}
	return entries
}

func extractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

func normalizeValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "N/A") || value == "-" {
		return ""
	}
	return value
}

func normalizeText(value string) string {
	value = normalizeValue(value)
	if value == "" {
		return value
	}
	return strings.TrimSpace(cleanWhitespace.ReplaceAllString(value, " "))
}

// normalizeDecimal rewrites a number written with thousands separators or a
// decimal comma into ParseFloat form: "1,234.50", "1.234,50" and "1234,5"
// become "1234.50", "1234.50" and "1234.5". A lone comma followed by exactly
// three digits is read as a thousands separator unless the integer part is 0.
func normalizeDecimal(value string) string {
	value = strings.TrimRight(value, ".,")
	lastDot := strings.LastIndex(value, ".")
	lastComma := strings.LastIndex(value, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			return strings.Replace(strings.ReplaceAll(value, ".", ""), ",", ".", 1)
		}
		return strings.ReplaceAll(value, ",", "")
	case lastComma >= 0:
		if strings.Count(value, ",") > 1 {
			return strings.ReplaceAll(value, ",", "")
		}
		whole, frac := value[:lastComma], value[lastComma+1:]
		if len(frac) == 3 && strings.TrimLeft(whole, "+-0") != "" {
			return whole + frac
		}
		return whole + "." + frac
	case strings.Count(value, ".") > 1:
		return strings.ReplaceAll(value, ".", "")
	}
	return value
}

// parseFirstNumber accepts a decimal comma and ignores surrounding units or currency.
func parseFirstNumber(value string) float64 {
	value = normalizeValue(value)
	if value == "" {
		return 0
	}
	match := numberPattern.FindString(value)
	if match == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(normalizeDecimal(match), 64)
	if err != nil {
		return 0
	}
	return parsed
}
