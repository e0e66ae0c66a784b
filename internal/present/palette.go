// Package present binds catalog panels to render-ready views: colored table
// cells, chart series and formatted highlight values.
package present

import (
	"errors"
	"fmt"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrUnknownPalette is returned for a palette name that is not registered.
var ErrUnknownPalette = errors.New("unknown palette")

const reversedSuffix = "_r"

// Palette is a named color ramp. Sequential palettes interpolate between
// stops in Lab space; qualitative palettes cycle through their stops.
type Palette struct {
	Name        string
	qualitative bool
	stops       []colorful.Color
}

var paletteHex = map[string][]string{
	"Blues":    {"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b"},
	"Reds":     {"#fff5f0", "#fee0d2", "#fcbba1", "#fc9272", "#fb6a4a", "#ef3b2c", "#cb181d", "#a50f15", "#67000d"},
	"Greys":    {"#ffffff", "#f0f0f0", "#d9d9d9", "#bdbdbd", "#969696", "#737373", "#525252", "#252525", "#000000"},
	"Greens":   {"#f7fcf5", "#e5f5e0", "#c7e9c0", "#a1d99b", "#74c476", "#41ab5d", "#238b45", "#006d2c", "#00441b"},
	"Oranges":  {"#fff5eb", "#fee6ce", "#fdd0a2", "#fdae6b", "#fd8d3c", "#f16913", "#d94801", "#a63603", "#7f2704"},
	"Purples":  {"#fcfbfd", "#efedf5", "#dadaeb", "#bcbddc", "#9e9ac8", "#807dba", "#6a51a3", "#54278f", "#3f007d"},
	"YlOrRd":   {"#ffffcc", "#ffeda0", "#fed976", "#feb24c", "#fd8d3c", "#fc4e2a", "#e31a1c", "#bd0026", "#800026"},
	"Magma":    {"#000004", "#3b0f70", "#8c2981", "#de4968", "#fe9f6d", "#fcfdbf"},
	"Coolwarm": {"#3b4cc0", "#7396f5", "#b0cbfc", "#dddddd", "#f6bfa6", "#ea7b60", "#b40426"},
	"Thermal":  {"#042333", "#2c3395", "#744992", "#b15f82", "#eb7958", "#fbb43d", "#e8fa5b"},
	"Safe":     {"#88CCEE", "#CC6677", "#DDCC77", "#117733", "#332288", "#AA4499", "#44AA99", "#999933", "#882255", "#661100", "#6699CC", "#888888"},
}

var qualitative = map[string]bool{"Safe": true}

var palettes = func() map[string]Palette {
	out := make(map[string]Palette, len(paletteHex))
	for name, hexes := range paletteHex {
		stops := make([]colorful.Color, len(hexes))
		for i, h := range hexes {
			c, err := colorful.Hex(h)
			if err != nil {
				panic(fmt.Sprintf("palette %s: %v", name, err))
			}
			stops[i] = c
		}
		out[name] = Palette{Name: name, qualitative: qualitative[name], stops: stops}
	}
	return out
}()

// LookupPalette resolves a palette by name; a "_r" suffix reverses it.
func LookupPalette(name string) (Palette, error) {
	base, reversed := strings.CutSuffix(name, reversedSuffix)
	p, ok := palettes[base]
	if !ok {
		return Palette{}, fmt.Errorf("%w: %q", ErrUnknownPalette, name)
	}
	if reversed {
		return p.Reversed(), nil
	}
	return p, nil
}

// PaletteNames lists the registered base palette names.
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	return names
}

// Reversed returns the palette with its stops in reverse order.
func (p Palette) Reversed() Palette {
	stops := make([]colorful.Color, len(p.stops))
	for i, c := range p.stops {
		stops[len(stops)-1-i] = c
	}
	name := p.Name + reversedSuffix
	if base, ok := strings.CutSuffix(p.Name, reversedSuffix); ok {
		name = base
	}
	return Palette{Name: name, qualitative: p.qualitative, stops: stops}
}

// At returns the color at position t in [0, 1]; t is clamped.
func (p Palette) At(t float64) colorful.Color {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	n := len(p.stops)
	if n == 1 {
		return p.stops[0]
	}
	pos := t * float64(n-1)
	i := int(pos)
	if i >= n-1 {
		return p.stops[n-1]
	}
	if p.qualitative {
		return p.stops[int(math.Round(pos))]
	}
	frac := pos - float64(i)
	if frac == 0 {
		return p.stops[i]
	}
	return p.stops[i].BlendLab(p.stops[i+1], frac).Clamped()
}

// Discrete returns n colors: cycled stops for qualitative palettes, evenly
// spaced samples otherwise.
func (p Palette) Discrete(n int) []string {
	out := make([]string, n)
	for i := range out {
		switch {
		case p.qualitative:
			out[i] = p.stops[i%len(p.stops)].Hex()
		case n == 1:
			out[i] = p.At(1).Hex()
		default:
			out[i] = p.At(float64(i) / float64(n-1)).Hex()
		}
	}
	return out
}

// ColorFor maps value within [lo, hi] to a hex color of the palette. Values
// outside the range clamp to its ends; a degenerate range maps to the start.
func ColorFor(value, lo, hi float64, p Palette) string {
	if hi <= lo {
		return p.At(0).Hex()
	}
	return p.At((value - lo) / (hi - lo)).Hex()
}

// TextColor returns the foreground that stays readable on a background:
// white when the perceived brightness is below 128, black otherwise.
func TextColor(background string) string {
	c, err := colorful.Hex(background)
	if err != nil {
		return "#000000"
	}
	r, g, b := c.RGB255()
	brightness := (299*int(r) + 587*int(g) + 114*int(b)) / 1000
	if brightness < 128 {
		return "#ffffff"
	}
	return "#000000"
}
