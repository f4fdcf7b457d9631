// Package savefile reads and writes the .ct savefile: a ZIP archive holding one
// delimited-text entry per registry of a models.Tracker.
package savefile

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	applog "nutrilog/internal/log"
	"nutrilog/models"
)

// Entry names inside the archive.
const (
	InformationEntry = "CTR Information.cti"
	CatalogueEntry   = "Product Catalogue.ctc"
	RecipesEntry     = "Recipes.ctr"
	DailyIntakeEntry = "Daily Intake Data.ctd"
)

const (
	informationType = "Information"
	catalogueType   = "Catalogue Data"
	recipesType     = "Recipe Data"
	dailyIntakeType = "Daily Intake Data"

	headerLines    = 4
	timestampField = "2006-01-02 15:04:05"
)

// Version is written into every entry header.
var Version = "1.0.0"

var nowFunc = time.Now

// ErrMalformedEntry reports an entry whose header or count line is unusable.
var ErrMalformedEntry = errors.New("savefile: malformed entry")

func header(kind string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CTR %s savefile. Warning: Do not manually edit or modify this file. Incorrect data structure may lead to unexpected errors.\n", kind)
	fmt.Fprintf(&b, "Version: %s\n", Version)
	fmt.Fprintf(&b, "Date: %s\n", nowFunc().Format(timestampField))
	b.WriteString("\n")
	return b.String()
}

// HeaderKind returns the entry kind named on the first header line, e.g.
// "Catalogue Data", or "" when the line is not a savefile header.
func HeaderKind(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	rest, ok := strings.CutPrefix(strings.TrimSpace(lines[0]), "CTR ")
	if !ok {
		return ""
	}
	kind, _, ok := strings.Cut(rest, " savefile.")
	if !ok {
		return ""
	}
	return kind
}

// HeaderVersion returns the version recorded in an entry, or "" when absent.
func HeaderVersion(lines []string) string {
	if len(lines) < 2 {
		return ""
	}
	version, ok := strings.CutPrefix(strings.TrimSpace(lines[1]), "Version:")
	if !ok {
		return ""
	}
	return strings.TrimSpace(version)
}

func splitLines(data string) []string {
	return strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")
}

// records returns the record lines that follow the count line.
func records(entry string, lines []string) ([]string, error) {
	count, ok := intAt(lines, headerLines)
	if !ok || count < 0 {
		return nil, fmt.Errorf("%s: missing record count: %w", entry, ErrMalformedEntry)
	}
	first := headerLines + 1
	if first+count > len(lines) {
		return nil, fmt.Errorf("%s: %d records announced, %d present: %w", entry, count, max(0, len(lines)-first), ErrMalformedEntry)
	}
	return lines[first : first+count], nil
}

func writeRecords(b *strings.Builder, count int, each func(i int) (string, error)) error {
	b.WriteString(strconv.Itoa(count))
	b.WriteString("\n")
	for i := 0; i < count; i++ {
		line, err := each(i)
		if err != nil {
			return err
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return nil
}

// EncodeCatalogue renders the product catalogue entry, null product included.
func EncodeCatalogue(t *models.Tracker) (string, error) {
	var b strings.Builder
	b.WriteString(header(catalogueType))
	ids := t.ProductIDs()
	err := writeRecords(&b, len(ids), func(i int) (string, error) {
		return EncodeProduct(t.Products[ids[i]])
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// DecodeCatalogue replaces the catalogue of t with the products in data and
// points existing ingredients at the new product values.
func DecodeCatalogue(data string, t *models.Tracker) error {
	lines, err := records(CatalogueEntry, splitLines(data))
	if err != nil {
		return err
	}
	products := make([]*models.Product, 0, len(lines))
	for _, line := range lines {
		product, err := DecodeProduct(line)
		if err != nil {
			return fmt.Errorf("%s: %w", CatalogueEntry, err)
		}
		products = append(products, product)
	}
	favorites := t.FavoriteProducts
	t.ClearProducts()
	for _, product := range products {
		t.Products[product.ID] = product
	}
	for id := range favorites {
		if _, ok := t.Products[id]; ok {
			t.FavoriteProducts[id] = struct{}{}
		}
	}
	relinkProducts(t)
	return nil
}

func relinkProducts(t *models.Tracker) {
	for _, recipe := range t.Recipes {
		for _, ingredient := range recipe.Ingredients {
			if ingredient.Product == nil {
				ingredient.Product = t.Product(0)
				continue
			}
			ingredient.Product = t.Product(ingredient.Product.ID)
		}
	}
}

// EncodeRecipes renders the recipes entry, null recipe included.
func EncodeRecipes(t *models.Tracker) (string, error) {
	var b strings.Builder
	b.WriteString(header(recipesType))
	ids := t.RecipeIDs()
	err := writeRecords(&b, len(ids), func(i int) (string, error) {
		return EncodeRecipe(t.Recipes[ids[i]])
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// DecodeRecipes replaces the recipes of t. Ingredient products resolve against
// the catalogue already present in t.
func DecodeRecipes(data string, t *models.Tracker) error {
	lines, err := records(RecipesEntry, splitLines(data))
	if err != nil {
		return err
	}
	recipes := make([]*models.Recipe, 0, len(lines))
	for _, line := range lines {
		recipe, err := DecodeRecipe(line, t)
		if err != nil {
			return fmt.Errorf("%s: %w", RecipesEntry, err)
		}
		recipes = append(recipes, recipe)
	}
	favorites := t.FavoriteRecipes
	t.ClearRecipes()
	for _, recipe := range recipes {
		t.Recipes[recipe.ID] = recipe
	}
	for id := range favorites {
		if _, ok := t.Recipes[id]; ok {
			t.FavoriteRecipes[id] = struct{}{}
		}
	}
	return nil
}

// EncodeDailyIntakes renders the daily intake entry in date order.
func EncodeDailyIntakes(t *models.Tracker) (string, error) {
	var b strings.Builder
	b.WriteString(header(dailyIntakeType))
	dates := t.Dates()
	err := writeRecords(&b, len(dates), func(i int) (string, error) {
		return EncodeDailyIntake(t.DailyIntakes[dates[i]])
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

func DecodeDailyIntakes(data string, t *models.Tracker) error {
	lines, err := records(DailyIntakeEntry, splitLines(data))
	if err != nil {
		return err
	}
	intakes := make(map[string]*models.DailyIntake, len(lines))
	for _, line := range lines {
		intake, err := DecodeDailyIntake(line)
		if err != nil {
			return fmt.Errorf("%s: %w", DailyIntakeEntry, err)
		}
		intakes[intake.Date] = intake
	}
	t.DailyIntakes = intakes
	return nil
}

// EncodeInformation renders name, path, favorites and targets.
func EncodeInformation(t *models.Tracker) (string, error) {
	products, err := json.Marshal(t.FavoriteIDs(models.ServingTypeProduct))
	if err != nil {
		return "", fmt.Errorf("encode favorite products: %w", err)
	}
	recipes, err := json.Marshal(t.FavoriteIDs(models.ServingTypeRecipe))
	if err != nil {
		return "", fmt.Errorf("encode favorite recipes: %w", err)
	}
	targets, err := json.Marshal(t.Targets)
	if err != nil {
		return "", fmt.Errorf("encode targets: %w", err)
	}
	var b strings.Builder
	b.WriteString(header(informationType))
	for _, line := range []string{Sanitize(t.Name), Sanitize(t.Path), string(products), string(recipes), string(targets)} {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// DecodeInformation applies the information entry to t. Missing lines leave the
// corresponding value untouched.
func DecodeInformation(data string, t *models.Tracker) error {
	lines := splitLines(data)
	if len(lines) <= headerLines {
		return fmt.Errorf("%s: no data after header: %w", InformationEntry, ErrMalformedEntry)
	}
	if name := stringAt(lines, headerLines, ""); name != "" {
		t.Name = name
	}
	if path := stringAt(lines, headerLines+1, ""); path != "" {
		t.Path = path
	}
	var products, recipes []int
	decodeJSONField(lines, headerLines+2, &products)
	decodeJSONField(lines, headerLines+3, &recipes)
	for _, id := range products {
		t.FavoriteProducts[id] = struct{}{}
	}
	for _, id := range recipes {
		t.FavoriteRecipes[id] = struct{}{}
	}
	decodeJSONField(lines, headerLines+4, &t.Targets)
	return nil
}

type entryCodec struct {
	name   string
	encode func(*models.Tracker) (string, error)
	decode func(string, *models.Tracker) error
}

// Catalogue before recipes so ingredients resolve; information last so
// favorites survive the registry resets.
var entries = []entryCodec{
	{CatalogueEntry, EncodeCatalogue, DecodeCatalogue},
	{RecipesEntry, EncodeRecipes, DecodeRecipes},
	{DailyIntakeEntry, EncodeDailyIntakes, DecodeDailyIntakes},
	{InformationEntry, EncodeInformation, DecodeInformation},
}

// Encode writes the four entries of t as a ZIP archive to w.
func Encode(w io.Writer, t *models.Tracker) error {
	archive := zip.NewWriter(w)
	for _, entry := range entries {
		data, err := entry.encode(t)
		if err != nil {
			return fmt.Errorf("encode %s: %w", entry.name, err)
		}
		f, err := archive.Create(entry.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", entry.name, err)
		}
		if _, err := io.WriteString(f, data); err != nil {
			return fmt.Errorf("write %s: %w", entry.name, err)
		}
	}
	if err := archive.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

// Decode reads a ZIP archive into a new Tracker. Absent entries leave the
// matching registry empty.
func Decode(r io.ReaderAt, size int64) (*models.Tracker, error) {
	archive, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	files := make(map[string]*zip.File, len(archive.File))
	for _, f := range archive.File {
		files[f.Name] = f
	}

	t := models.NewTracker("Nutrilog Savefile")
	for _, entry := range entries {
		f, ok := files[entry.name]
		if !ok {
			applog.Debug(context.Background(), "savefile entry missing", "entry", entry.name)
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			return nil, err
		}
		applog.Debug(context.Background(), "decoding savefile entry", "entry", entry.name, "version", HeaderVersion(splitLines(data)))
		if err := entry.decode(data, t); err != nil {
			return nil, fmt.Errorf("decode %s: %w", entry.name, err)
		}
	}
	return t, nil
}

func readEntry(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name, err)
	}
	return string(data), nil
}

// Write saves t to path through a temporary file in the same directory and
// records path on the tracker.
func Write(path string, t *models.Tracker) error {
	start := time.Now()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create savefile directory: %w", err)
	}

	previous := t.Path
	t.Path = path
	var buf bytes.Buffer
	if err := Encode(&buf, t); err != nil {
		t.Path = previous
		return err
	}

	tmp, err := os.CreateTemp(dir, ".nutrilog-*.ct")
	if err != nil {
		t.Path = previous
		return fmt.Errorf("create temporary savefile: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		t.Path = previous
		return fmt.Errorf("write temporary savefile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		t.Path = previous
		return fmt.Errorf("close temporary savefile: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		t.Path = previous
		return fmt.Errorf("replace savefile: %w", err)
	}

	applog.Info(context.Background(), "savefile written", "path", path, "bytes", buf.Len(), "duration", time.Since(start))
	return nil
}

// Read loads the savefile at path.
func Read(path string) (*models.Tracker, error) {
	start := time.Now()
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open savefile: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat savefile: %w", err)
	}
	t, err := Decode(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	t.Path = path
	applog.Info(context.Background(), "savefile read", "path", path, "products", len(t.Products), "recipes", len(t.Recipes), "days", len(t.DailyIntakes), "duration", time.Since(start))
	return t, nil
}

func exportEntry(path string, t *models.Tracker, encode func(*models.Tracker) (string, error)) error {
	data, err := encode(t)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

// importEntry refuses a file whose header names a different entry, so a
// recipes file never lands in the catalogue.
func importEntry(path, kind string, t *models.Tracker, decode func(string, *models.Tracker) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	if got := HeaderKind(splitLines(string(data))); got != kind {
		return fmt.Errorf("import %s: expected %q entry, found %q: %w", path, kind, got, ErrMalformedEntry)
	}
	return decode(string(data), t)
}

// ExportCatalogue writes the catalogue alone to a .ctc file.
func ExportCatalogue(path string, t *models.Tracker) error {
	return exportEntry(path, t, EncodeCatalogue)
}

// ImportCatalogue replaces the catalogue of t with a .ctc file.
func ImportCatalogue(path string, t *models.Tracker) error {
	return importEntry(path, catalogueType, t, DecodeCatalogue)
}

func ExportRecipes(path string, t *models.Tracker) error {
	return exportEntry(path, t, EncodeRecipes)
}

func ImportRecipes(path string, t *models.Tracker) error {
	return importEntry(path, recipesType, t, DecodeRecipes)
}

func ExportDailyIntakes(path string, t *models.Tracker) error {
	return exportEntry(path, t, EncodeDailyIntakes)
}

func ImportDailyIntakes(path string, t *models.Tracker) error {
	return importEntry(path, dailyIntakeType, t, DecodeDailyIntakes)
}
