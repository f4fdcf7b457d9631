package models

import (
	"context"
	"fmt"
	"strings"

	applog "nutrilog/internal/log"
)

// AmountDefinition selects how an ingredient's gross amount is interpreted.
type AmountDefinition int

const (
	// AmountGrams is an absolute mass.
	AmountGrams AmountDefinition = iota
	// AmountRelativeToAmount is a percentage of the referenced ingredient's raw amount.
	AmountRelativeToAmount
	// AmountRelativeToNetMass is a percentage of the referenced ingredient's resolved net mass.
	AmountRelativeToNetMass
)

func (d AmountDefinition) Name() string {
	switch d {
	case AmountGrams:
		return "GRAMS"
	case AmountRelativeToAmount:
		return "RELATIVE_TO_AMOUNT"
	case AmountRelativeToNetMass:
		return "RELATIVE_TO_NET_MASS"
	default:
		return fmt.Sprintf("AmountDefinition(%d)", int(d))
	}
}

func (d AmountDefinition) String() string {
	switch d {
	case AmountGrams:
		return "Mass, g"
	case AmountRelativeToAmount:
		return "Relative to Another Amount, %"
	case AmountRelativeToNetMass:
		return "Relative to Another Net Mass, %"
	default:
		return d.Name()
	}
}

// ParseAmountDefinition maps a persisted name to a definition, defaulting to grams.
func ParseAmountDefinition(value string) AmountDefinition {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "RELATIVE_TO_AMOUNT":
		return AmountRelativeToAmount
	case "RELATIVE_TO_NET_MASS":
		return AmountRelativeToNetMass
	default:
		return AmountGrams
	}
}

// NetAmountDefinition selects how an ingredient's net amount is interpreted.
type NetAmountDefinition int

const (
	// NetGrams is an absolute net mass, independent of the gross mass.
	NetGrams NetAmountDefinition = iota
	// NetEqualToAmount makes the net mass equal to the resolved gross mass.
	NetEqualToAmount
	// NetRelativeToAmount is a percentage of this ingredient's resolved gross mass.
	NetRelativeToAmount
)

func (d NetAmountDefinition) Name() string {
	switch d {
	case NetGrams:
		return "GRAMS"
	case NetEqualToAmount:
		return "EQUAL_TO_AMOUNT"
	case NetRelativeToAmount:
		return "RELATIVE_TO_AMOUNT"
	default:
		return fmt.Sprintf("NetAmountDefinition(%d)", int(d))
	}
}

func (d NetAmountDefinition) String() string {
	switch d {
	case NetGrams:
		return "Mass, g"
	case NetEqualToAmount:
		return "Equal to Amount"
	case NetRelativeToAmount:
		return "Relative to Amount, %"
	default:
		return d.Name()
	}
}

// ParseNetAmountDefinition maps a persisted name to a definition. The short "EQUAL"
// form written by older savefiles is accepted. Unknown names default to grams.
func ParseNetAmountDefinition(value string) NetAmountDefinition {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "EQUAL", "EQUAL_TO_AMOUNT":
		return NetEqualToAmount
	case "RELATIVE_TO_AMOUNT":
		return NetRelativeToAmount
	default:
		return NetGrams
	}
}

// Ingredient binds a product to a recipe with a gross amount and a net amount.
//
// RelativeToID is a key into the owning recipe's ingredient map (0 means no
// reference). It is resolved on every call, so edits to the referenced ingredient
// are visible immediately.
type Ingredient struct {
	ID                  int                 `json:"id"`
	Product             *Product            `json:"-"`
	Amount              float64             `json:"amount"`
	NetAmount           float64             `json:"net_amount"`
	AmountDefinition    AmountDefinition    `json:"amount_definition"`
	NetAmountDefinition NetAmountDefinition `json:"net_amount_definition"`
	RelativeToID        int                 `json:"relative_to_id,omitempty"`

	recipe *Recipe
}

// NewIngredient returns an unattached ingredient measured in grams with a net mass equal to its amount.
func NewIngredient(product *Product, amount float64) *Ingredient {
	return &Ingredient{
		Product:             product,
		Amount:              amount,
		AmountDefinition:    AmountGrams,
		NetAmountDefinition: NetEqualToAmount,
	}
}

// Label renders "<id>. <product name>".
func (i *Ingredient) Label() string {
	name := ""
	if i.Product != nil {
		name = i.Product.Name
	}
	return fmt.Sprintf("%d. %s", i.ID, name)
}

// AmountUnit is "g" for absolute amounts and "%" otherwise.
func (i *Ingredient) AmountUnit() string {
	if i.AmountDefinition == AmountGrams {
		return "g"
	}
	return "%"
}

// NetAmountUnit is "%" for relative net amounts and "g" otherwise.
func (i *Ingredient) NetAmountUnit() string {
	if i.NetAmountDefinition == NetRelativeToAmount {
		return "%"
	}
	return "g"
}

// RelativeTo returns the referenced sibling, or nil when there is none or the
// ingredient is not attached to a recipe.
func (i *Ingredient) RelativeTo() *Ingredient {
	if i.RelativeToID == 0 || i.recipe == nil {
		return nil
	}
	return i.recipe.Ingredients[i.RelativeToID]
}

// DetectCircularReference walks the relative-reference chain and reports whether
// it revisits an ingredient.
func (i *Ingredient) DetectCircularReference() bool {
	visited := make(map[int]bool)
	for current := i; current != nil; current = current.RelativeTo() {
		if visited[current.ID] {
			return true
		}
		visited[current.ID] = true
	}
	return false
}

// Mass returns the resolved gross mass in grams.
func (i *Ingredient) Mass() float64 {
	return i.mass(make(map[*Ingredient]bool))
}

// NetMass returns the resolved net (edible or cooked) mass in grams.
func (i *Ingredient) NetMass() float64 {
	return i.netMass(make(map[*Ingredient]bool))
}

// NetAmountValue returns NetAmount in its own unit, or the gross mass when the net
// amount is defined as equal to it.
func (i *Ingredient) NetAmountValue() float64 {
	switch i.NetAmountDefinition {
	case NetGrams, NetRelativeToAmount:
		return i.NetAmount
	case NetEqualToAmount:
		return i.Mass()
	default:
		applog.Error(context.Background(), "invalid net amount definition", "definition", i.NetAmountDefinition.Name(), "ingredient", i.ID)
		return 0
	}
}

// The resolving set guards against cycles that slipped past DetectCircularReference,
// for instance in hand-edited savefiles.
func (i *Ingredient) mass(resolving map[*Ingredient]bool) float64 {
	switch i.AmountDefinition {
	case AmountGrams:
		return i.Amount
	case AmountRelativeToAmount:
		ref := i.RelativeTo()
		if ref == nil {
			return 0
		}
		return (i.Amount / 100) * ref.Amount
	case AmountRelativeToNetMass:
		ref := i.RelativeTo()
		if ref == nil {
			return 0
		}
		if resolving[i] {
			applog.Error(context.Background(), "circular reference during mass resolution", "ingredient", i.ID)
			return 0
		}
		resolving[i] = true
		defer delete(resolving, i)
		return (i.Amount / 100) * ref.netMass(resolving)
	default:
		applog.Error(context.Background(), "invalid amount definition", "definition", i.AmountDefinition.Name(), "ingredient", i.ID)
		return 0
	}
}

func (i *Ingredient) netMass(resolving map[*Ingredient]bool) float64 {
	switch i.NetAmountDefinition {
	case NetGrams:
		return i.NetAmount
	case NetRelativeToAmount:
		return i.mass(resolving) * (i.NetAmount / 100)
	case NetEqualToAmount:
		return i.mass(resolving)
	default:
		applog.Error(context.Background(), "invalid net amount definition", "definition", i.NetAmountDefinition.Name(), "ingredient", i.ID)
		return 0
	}
}

// NutritionData is the product's nutrition scaled to the net mass.
func (i *Ingredient) NutritionData() NutritionData {
	if i.Product == nil {
		return NutritionData{}
	}
	return i.Product.Nutrition.Scale(i.NetMass() / 100)
}

// Price is the product price for the gross mass.
func (i *Ingredient) Price() float64 {
	if i.Product == nil {
		return 0
	}
	return i.Product.Details.PriceForMass(i.Mass())
}

// Clone copies the values. The clone is not attached to any recipe.
func (i *Ingredient) Clone() *Ingredient {
	clone := *i
	clone.recipe = nil
	return &clone
}
