package savefile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	applog "nutrilog/internal/log"
	"nutrilog/models"
)

const (
	fieldDelimiter  = ";"
	recordDelimiter = "|"
	noneValue       = "None"
)

// ErrMalformedRecord reports a record line that cannot be decoded at all.
var ErrMalformedRecord = errors.New("savefile: malformed record")

type detailsRecord struct {
	Description     string  `json:"description"`
	Store           string  `json:"store"`
	Manufacturer    string  `json:"manufacturer"`
	PackagingAmount float64 `json:"packaging_amount"`
	PackagingUnit   string  `json:"packaging_unit"`
	Density         float64 `json:"density"`
	Price           float64 `json:"price"`
	LastUpdate      string  `json:"last_update_date"`
}

func toDetailsRecord(d models.ProductDetails) detailsRecord {
	return detailsRecord{
		Description:     Sanitize(d.Description),
		Store:           Sanitize(d.Store),
		Manufacturer:    Sanitize(d.Manufacturer),
		PackagingAmount: d.PackagingAmount,
		PackagingUnit:   d.PackagingUnit.Name(),
		Density:         d.Density,
		Price:           d.Price,
		LastUpdate:      Sanitize(d.LastUpdate),
	}
}

func (r detailsRecord) details() models.ProductDetails {
	return models.ProductDetails{
		Description:     r.Description,
		Store:           r.Store,
		Manufacturer:    r.Manufacturer,
		PackagingAmount: r.PackagingAmount,
		PackagingUnit:   models.ParseMeasurementUnit(r.PackagingUnit),
		Density:         r.Density,
		Price:           r.Price,
		LastUpdate:      r.LastUpdate,
	}
}

func marshalString(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeJSONField unmarshals fields[index] into v, leaving v untouched when the
// field is absent or invalid.
func decodeJSONField(fields []string, index int, v any) {
	raw := stringAt(fields, index, "")
	if raw == "" {
		return
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		applog.Debug(context.Background(), "ignoring invalid json field", "index", index, "error", err)
	}
}

// EncodeProduct renders id;name;CATEGORY;{nutrition};{details}.
func EncodeProduct(p *models.Product) (string, error) {
	nutrition, err := marshalString(p.Nutrition)
	if err != nil {
		return "", fmt.Errorf("encode nutrition of product %d: %w", p.ID, err)
	}
	details, err := marshalString(toDetailsRecord(p.Details))
	if err != nil {
		return "", fmt.Errorf("encode details of product %d: %w", p.ID, err)
	}
	return strings.Join([]string{
		strconv.Itoa(p.ID),
		Sanitize(p.Name),
		p.Category.Name(),
		nutrition,
		details,
	}, fieldDelimiter), nil
}

// DecodeProduct parses a product line. Only the ID is mandatory.
func DecodeProduct(line string) (*models.Product, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), fieldDelimiter)
	id, ok := intAt(fields, 0)
	if !ok {
		return nil, fmt.Errorf("product line %q: %w", line, ErrMalformedRecord)
	}
	product := models.NewProduct(id, stringAt(fields, 1, ""), models.ParseProductCategory(stringAt(fields, 2, "")))
	decodeJSONField(fields, 3, &product.Nutrition)
	record := toDetailsRecord(models.DefaultProductDetails())
	decodeJSONField(fields, 4, &record)
	product.Details = record.details()
	return product, nil
}

// EncodeIngredient renders id|productID|amount|net|AMOUNT_DEF|NET_DEF|relativeID.
func EncodeIngredient(i *models.Ingredient) string {
	productID := 0
	if i.Product != nil {
		productID = i.Product.ID
	}
	relative := noneValue
	if i.RelativeToID != 0 {
		relative = strconv.Itoa(i.RelativeToID)
	}
	return strings.Join([]string{
		strconv.Itoa(i.ID),
		strconv.Itoa(productID),
		formatFloat(i.Amount),
		formatFloat(i.NetAmount),
		i.AmountDefinition.Name(),
		i.NetAmountDefinition.Name(),
		relative,
	}, recordDelimiter)
}

// ProductLookup resolves catalogue IDs while decoding ingredients.
type ProductLookup interface {
	LookupProduct(id int) (*models.Product, bool)
	Product(id int) *models.Product
}

// DecodeIngredient parses an ingredient line. Unknown product IDs resolve to the
// null product. The relative reference is kept as a plain ID until the owning
// recipe links its ingredients.
func DecodeIngredient(line string, products ProductLookup) (*models.Ingredient, error) {
	fields := strings.Split(strings.TrimSpace(line), recordDelimiter)
	id, ok := intAt(fields, 0)
	if !ok {
		return nil, fmt.Errorf("ingredient line %q: %w", line, ErrMalformedRecord)
	}
	productID, _ := intAt(fields, 1)
	product, found := products.LookupProduct(productID)
	if !found {
		applog.Error(context.Background(), "ingredient product not found in catalogue", "product", productID, "ingredient", id)
		product = products.Product(0)
	}
	ingredient := &models.Ingredient{
		ID:                  id,
		Product:             product,
		Amount:              floatAt(fields, 2, 0),
		NetAmount:           floatAt(fields, 3, 0),
		AmountDefinition:    models.ParseAmountDefinition(stringAt(fields, 4, "")),
		NetAmountDefinition: models.ParseNetAmountDefinition(stringAt(fields, 5, "")),
	}
	if relative, ok := intAt(fields, 6); ok {
		ingredient.RelativeToID = relative
	}
	return ingredient, nil
}

// EncodeRecipe renders id;name;CATEGORY;count;{net mass};{details};{id: ingredient}.
func EncodeRecipe(r *models.Recipe) (string, error) {
	netMass, err := marshalString(r.NetMass)
	if err != nil {
		return "", fmt.Errorf("encode net mass of recipe %d: %w", r.ID, err)
	}
	details := r.Details
	details.Description = Sanitize(details.Description)
	details.Created = Sanitize(details.Created)
	detailsJSON, err := marshalString(details)
	if err != nil {
		return "", fmt.Errorf("encode details of recipe %d: %w", r.ID, err)
	}
	ingredients := make(map[string]string, len(r.Ingredients))
	for id, ingredient := range r.Ingredients {
		ingredients[strconv.Itoa(id)] = EncodeIngredient(ingredient)
	}
	ingredientsJSON, err := marshalString(ingredients)
	if err != nil {
		return "", fmt.Errorf("encode ingredients of recipe %d: %w", r.ID, err)
	}
	return strings.Join([]string{
		strconv.Itoa(r.ID),
		Sanitize(r.Name),
		r.Category.Name(),
		strconv.Itoa(len(r.Ingredients)),
		netMass,
		detailsJSON,
		ingredientsJSON,
	}, fieldDelimiter), nil
}

// DecodeRecipe parses a recipe line and links its relative references.
func DecodeRecipe(line string, products ProductLookup) (*models.Recipe, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), fieldDelimiter)
	id, ok := intAt(fields, 0)
	if !ok {
		return nil, fmt.Errorf("recipe line %q: %w", line, ErrMalformedRecord)
	}
	recipe := models.NewRecipe(id, stringAt(fields, 1, ""), models.ParseRecipeCategory(stringAt(fields, 2, "")))
	decodeJSONField(fields, 4, &recipe.NetMass)
	decodeJSONField(fields, 5, &recipe.Details)

	if count, _ := intAt(fields, 3); count > 0 {
		var lines map[string]string
		decodeJSONField(fields, 6, &lines)
		for _, ingredientLine := range lines {
			ingredient, err := DecodeIngredient(ingredientLine, products)
			if err != nil {
				return nil, fmt.Errorf("recipe %d: %w", id, err)
			}
			recipe.PutIngredient(ingredient)
		}
	}
	recipe.LinkIngredientReferences()
	return recipe, nil
}

// EncodeServing renders itemID|name|TYPE|portion|{nutrition}.
func EncodeServing(s models.Serving) (string, error) {
	nutrition, err := marshalString(s.Nutrition)
	if err != nil {
		return "", fmt.Errorf("encode serving nutrition: %w", err)
	}
	return strings.Join([]string{
		strconv.Itoa(s.ItemID),
		Sanitize(s.ItemName),
		s.ItemType.Name(),
		formatFloat(s.Portion),
		nutrition,
	}, recordDelimiter), nil
}

func DecodeServing(line string) (models.Serving, error) {
	fields := strings.Split(strings.TrimSpace(line), recordDelimiter)
	id, ok := intAt(fields, 0)
	if !ok {
		return models.Serving{}, fmt.Errorf("serving line %q: %w", line, ErrMalformedRecord)
	}
	kind, ok := models.ParseServingType(stringAt(fields, 2, ""))
	if !ok {
		applog.Debug(context.Background(), "unknown serving type, assuming product", "serving", id)
	}
	s := models.Serving{
		ItemID:   id,
		ItemName: stringAt(fields, 1, ""),
		ItemType: kind,
		Portion:  floatAt(fields, 3, 0),
	}
	decodeJSONField(fields, 4, &s.Nutrition)
	return s, nil
}

func encodeServings(servings []models.Serving) (string, error) {
	lines := make(map[string]string, len(servings))
	for index, s := range servings {
		line, err := EncodeServing(s)
		if err != nil {
			return "", err
		}
		lines[strconv.Itoa(index)] = line
	}
	return marshalString(lines)
}

// decodeServings restores list order from the numeric JSON keys.
func decodeServings(fields []string, index int) ([]models.Serving, error) {
	var lines map[string]string
	decodeJSONField(fields, index, &lines)
	keys := make([]string, 0, len(lines))
	for key := range lines {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})
	var servings []models.Serving
	for _, key := range keys {
		s, err := DecodeServing(lines[key])
		if err != nil {
			return nil, err
		}
		servings = append(servings, s)
	}
	return servings, nil
}

// EncodeDailyIntake renders date;{index: product serving};{index: recipe serving}.
func EncodeDailyIntake(d *models.DailyIntake) (string, error) {
	products, err := encodeServings(d.Products)
	if err != nil {
		return "", fmt.Errorf("encode products of %s: %w", d.Date, err)
	}
	recipes, err := encodeServings(d.Recipes)
	if err != nil {
		return "", fmt.Errorf("encode recipes of %s: %w", d.Date, err)
	}
	return strings.Join([]string{Sanitize(d.Date), products, recipes}, fieldDelimiter), nil
}

func DecodeDailyIntake(line string) (*models.DailyIntake, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), fieldDelimiter)
	date := stringAt(fields, 0, "")
	if date == "" {
		return nil, fmt.Errorf("daily intake line %q: %w", line, ErrMalformedRecord)
	}
	intake := models.NewDailyIntake(date)
	var err error
	if intake.Products, err = decodeServings(fields, 1); err != nil {
		return nil, fmt.Errorf("daily intake %s: %w", date, err)
	}
	if intake.Recipes, err = decodeServings(fields, 2); err != nil {
		return nil, fmt.Errorf("daily intake %s: %w", date, err)
	}
	return intake, nil
}
