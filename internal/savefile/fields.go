package savefile

import (
	"math"
	"strconv"
	"strings"
)

var forbiddenCharacters = strings.NewReplacer(
	`"`, "",
	"|", "",
	";", "",
	"\n", "",
	"\r", "",
	"\t", "",
)

// Sanitize strips the characters that would corrupt the delimited format
// (" | ; \n \r \t) and trims surrounding whitespace.
func Sanitize(s string) string {
	return strings.TrimSpace(forbiddenCharacters.Replace(s))
}

func stringAt(fields []string, index int, def string) string {
	if index >= len(fields) {
		return def
	}
	return strings.TrimSpace(fields[index])
}

func intAt(fields []string, index int) (int, bool) {
	if index >= len(fields) {
		return 0, false
	}
	value, err := strconv.Atoi(strings.TrimSpace(fields[index]))
	if err != nil {
		return 0, false
	}
	return value, true
}

func floatAt(fields []string, index int, def float64) float64 {
	if index >= len(fields) {
		return def
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(fields[index]), 64)
	if err != nil {
		return def
	}
	return value
}

// formatFloat writes integral values with a trailing ".0" so files stay
// readable by older builds that always wrote floats that way.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !math.IsInf(v, 0) && !math.IsNaN(v) && !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
