package render

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// swatch pairs a card color's terminal color with its SVG fill.
type swatch struct {
	term lipgloss.Color
	hex  string
}

// palette maps card color names to display colors. Unknown names fall back to
// the base swatch.
var palette = map[string]swatch{
	"base":        {term: "250", hex: "#e5e5e5"},
	"transparent": {term: "245", hex: "#fafafa"},
	"accent":      {term: "36", hex: "#14b8a6"},
	"red":         {term: "167", hex: "#ef4444"},
	"orange":      {term: "208", hex: "#f97316"},
	"amber":       {term: "214", hex: "#f59e0b"},
	"yellow":      {term: "220", hex: "#eab308"},
	"lime":        {term: "148", hex: "#84cc16"},
	"green":       {term: "35", hex: "#22c55e"},
	"emerald":     {term: "42", hex: "#10b981"},
	"teal":        {term: "37", hex: "#14b8a6"},
	"cyan":        {term: "44", hex: "#06b6d4"},
	"sky":         {term: "75", hex: "#0ea5e9"},
	"blue":        {term: "69", hex: "#3b82f6"},
	"indigo":      {term: "62", hex: "#6366f1"},
	"violet":      {term: "99", hex: "#8b5cf6"},
	"purple":      {term: "135", hex: "#a855f7"},
	"fuchsia":     {term: "170", hex: "#d946ef"},
	"pink":        {term: "205", hex: "#ec4899"},
	"rose":        {term: "204", hex: "#f43f5e"},
}

// colorOrder is the order colors are offered in pickers.
var colorOrder = []string{
	"base", "accent", "red", "orange", "amber", "yellow", "lime", "green", "emerald",
	"teal", "cyan", "sky", "blue", "indigo", "violet", "purple", "fuchsia", "pink", "rose",
	"transparent",
}

// Colors returns the known card color names in picker order.
func Colors() []string {
	return slices.Clone(colorOrder)
}

func swatchFor(color string) swatch {
	if s, ok := palette[color]; ok {
		return s
	}
	return palette["base"]
}
