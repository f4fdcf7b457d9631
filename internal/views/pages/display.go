package pages

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"nutrilog/models"
)

// DefaultDash returns an em dash when the provided value is empty or whitespace.
func DefaultDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	return value
}

// FormatGrams renders a mass with one decimal place.
func FormatGrams(value float64) string {
	return fmt.Sprintf("%.1f g", value)
}

func FormatKcal(value float64) string {
	return fmt.Sprintf("%.0f kcal", value)
}

func FormatPrice(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

// FormatPercent renders a ratio (0.25) as "25.0 %".
func FormatPercent(ratio float64) string {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return DefaultDash("")
	}
	return fmt.Sprintf("%.1f %%", ratio*100)
}

// formatDate renders YYYY-MM-DD dates in a friendly day month year format.
func formatDate(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	parsed, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return value
	}
	return parsed.Format("02 Jan 2006")
}

// PreferenceStatusMessage normalises the text displayed in the preferences status banner.
func PreferenceStatusMessage(message string) string {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return "Pick a theme and save to update the window."
	}
	return trimmed
}

// ParseInt extracts an int from value, returning zero on failure.
func ParseInt(value string) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0
	}
	return parsed
}

// AmountDescription explains how an ingredient's gross amount is defined.
func AmountDescription(i *models.Ingredient) string {
	value := strconv.FormatFloat(i.Amount, 'f', -1, 64)
	switch i.AmountDefinition {
	case models.AmountGrams:
		return value + " g"
	case models.AmountRelativeToAmount, models.AmountRelativeToNetMass:
		target := "nothing"
		if ref := i.RelativeTo(); ref != nil {
			target = ref.Label()
		}
		basis := "amount"
		if i.AmountDefinition == models.AmountRelativeToNetMass {
			basis = "net mass"
		}
		return fmt.Sprintf("%s %% of %s of %s", value, basis, target)
	default:
		return i.AmountDefinition.String()
	}
}

// NetDescription explains how an ingredient's net mass is defined.
func NetDescription(i *models.Ingredient) string {
	switch i.NetAmountDefinition {
	case models.NetEqualToAmount:
		return "equal to amount"
	case models.NetRelativeToAmount:
		return strconv.FormatFloat(i.NetAmount, 'f', -1, 64) + " % of amount"
	default:
		return strconv.FormatFloat(i.NetAmount, 'f', -1, 64) + " g"
	}
}

// NextUntitledName returns "<base>", or "<base> N" when that is taken.
func NextUntitledName(existing []string, base string) string {
	used := usedNames(existing)
	if _, ok := used[strings.ToLower(base)]; !ok {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s %d", base, i)
		if _, ok := used[strings.ToLower(candidate)]; !ok {
			return candidate
		}
	}
}

// NextCopiedName generates a non-conflicting name for a duplicate.
func NextCopiedName(existing []string, base, fallback string) string {
	baseTrim := strings.TrimSpace(base)
	if baseTrim == "" {
		return NextUntitledName(existing, fallback)
	}
	used := usedNames(existing)
	candidate := fmt.Sprintf("%s (Copy)", baseTrim)
	if _, ok := used[strings.ToLower(candidate)]; !ok {
		return candidate
	}
	for i := 2; ; i++ {
		candidate = fmt.Sprintf("%s (Copy %d)", baseTrim, i)
		if _, ok := used[strings.ToLower(candidate)]; !ok {
			return candidate
		}
	}
}

func usedNames(existing []string) map[string]struct{} {
	used := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		used[strings.ToLower(name)] = struct{}{}
	}
	return used
}
