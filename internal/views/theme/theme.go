package theme

import "strings"

// Option represents a selectable theme exposed to the UI.
type Option struct {
	Value string
	Label string
}

// WindowTheme contains resolved styling primitives for the application shell.
type WindowTheme struct {
	Key          string
	BodyClass    string
	ShellClass   string
	PanelClass   string
	BorderClass  string
	AccentClass  string
	MutedClass   string
	OverClass    string // remaining nutrition below zero
	UnderClass   string
	ChartPalette [3]string // fat, carbs, protein
}

const (
	// DefaultKey defines the fallback theme when no preference is stored.
	DefaultKey = "dark"
)

var catalogue = map[string]WindowTheme{
	"dark": {
		Key:          "dark",
		BodyClass:    "min-h-screen bg-neutral-900 text-neutral-100",
		ShellClass:   "shell dark",
		PanelClass:   "panel bg-neutral-800",
		BorderClass:  "border-neutral-700",
		AccentClass:  "text-sky-400",
		MutedClass:   "text-neutral-400",
		OverClass:    "text-rose-400",
		UnderClass:   "text-emerald-400",
		ChartPalette: [3]string{"#f2b134", "#4fb0c6", "#e05d5d"},
	},
	"light": {
		Key:          "light",
		BodyClass:    "min-h-screen bg-stone-50 text-stone-900",
		ShellClass:   "shell light",
		PanelClass:   "panel bg-white",
		BorderClass:  "border-stone-300",
		AccentClass:  "text-sky-700",
		MutedClass:   "text-stone-500",
		OverClass:    "text-rose-700",
		UnderClass:   "text-emerald-700",
		ChartPalette: [3]string{"#d18f00", "#2b7a99", "#b83b3b"},
	},
	"fusion": {
		Key:          "fusion",
		BodyClass:    "min-h-screen bg-zinc-200 text-zinc-900",
		ShellClass:   "shell fusion",
		PanelClass:   "panel bg-zinc-100",
		BorderClass:  "border-zinc-400",
		AccentClass:  "text-indigo-700",
		MutedClass:   "text-zinc-600",
		OverClass:    "text-red-700",
		UnderClass:   "text-green-700",
		ChartPalette: [3]string{"#e0a526", "#3c8dbc", "#c9302c"},
	},
}

var options = []Option{
	{Value: "dark", Label: "Dark"},
	{Value: "light", Label: "Light"},
	{Value: "fusion", Label: "Fusion"},
}

// Resolve returns the registered theme for key, falling back to the default.
func Resolve(key string) WindowTheme {
	normalized := strings.ToLower(strings.TrimSpace(key))
	if value, ok := catalogue[normalized]; ok {
		return value
	}
	return catalogue[DefaultKey]
}

// Valid reports whether key names a registered theme.
func Valid(key string) bool {
	_, ok := catalogue[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

// Options exposes the available theme selections for rendering in a form control.
func Options() []Option {
	return options
}
