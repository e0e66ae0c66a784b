// Package catalog is the registry of the dashboard's fifteen analytical
// questions. Each definition owns its SQL, its optional hazard input, its
// result shaping and the presentation hints (color scales, chart) that the
// present package turns into views.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchcryptid/neo-explorer-service/internal/adapter/store"
	"github.com/couchcryptid/neo-explorer-service/internal/domain"
	"github.com/couchcryptid/neo-explorer-service/internal/table"
)

// ErrUnknownQuery is returned by Lookup when no definition matches.
var ErrUnknownQuery = errors.New("unknown query")

// NoDataMessage is the default empty-state text of a panel.
const NoDataMessage = "No data found for the selected filter."

// Input names.
const InputHazard = "hazard"

const (
	hazardColumn = "a.is_potentially_hazardous_asteroid"
	earth        = domain.OrbitingBodyEarth
)

// Option is one choice of a categorical input.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Input is a user-adjustable control revealed by a question.
type Input struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Options []Option `json:"options"`
}

// Params carries the values of a question's inputs.
type Params struct {
	Hazard domain.HazardFilter
}

type runFunc func(ctx context.Context, gw store.Gateway, p Params) ([]Panel, error)

// Definition is one catalog entry.
type Definition struct {
	ID       string   `json:"id"`
	Slug     string   `json:"slug"`
	Question string   `json:"question"`
	Inputs   []Input  `json:"inputs"`
	Notes    []string `json:"notes,omitempty"`

	run runFunc
}

// HazardAware reports whether the question exposes the hazard input.
func (d Definition) HazardAware() bool {
	for _, in := range d.Inputs {
		if in.Name == InputHazard {
			return true
		}
	}
	return false
}

// Label returns the numbered question text shown in the selector.
func (d Definition) Label() string {
	return d.ID + "." + d.Question
}

// Result is the shaped output of one question run.
type Result struct {
	Query  Definition          `json:"query"`
	Hazard domain.HazardFilter `json:"hazard"`
	Panels []Panel             `json:"panels"`
}

// Panel returns the panel with the given key.
func (r *Result) Panel(key string) (Panel, bool) {
	for _, p := range r.Panels {
		if p.Key == key {
			return p, true
		}
	}
	return Panel{}, false
}

// Panel is one table + chart block of a result. Table holds the full shaped
// result; DisplayLimit caps the rows shown in the table view.
type Panel struct {
	Key          string       `json:"key"`
	Title        string       `json:"title"`
	TitleColor   string       `json:"title_color,omitempty"`
	Table        *table.Table `json:"table"`
	DisplayLimit int          `json:"display_limit,omitempty"`
	Highlight    *Highlight   `json:"highlight,omitempty"`
	Metrics      []Metric     `json:"metrics,omitempty"`
	ColorScales  []ColorScale `json:"color_scales,omitempty"`
	Chart        *Chart       `json:"chart,omitempty"`
	EmptyMessage string       `json:"empty_message,omitempty"`
}

// Highlight is the detail box for a panel's top row.
type Highlight struct {
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Field is one labelled value of a highlight. Format is a printf verb for
// numeric values; empty selects the default.
type Field struct {
	Label  string `json:"label"`
	Value  any    `json:"value"`
	Unit   string `json:"unit,omitempty"`
	Format string `json:"format,omitempty"`
}

// Metric is a headline number.
type Metric struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ColorScale colors one numeric column of the table view with a named palette.
type ColorScale struct {
	Column  string `json:"column"`
	Palette string `json:"palette"`
}

// ChartType is the kind of chart a panel renders.
type ChartType string

// Chart types.
const (
	ChartBar  ChartType = "bar"
	ChartHBar ChartType = "hbar"
	ChartPie  ChartType = "pie"
	ChartLine ChartType = "line"
)

// Chart is a declarative chart spec over a panel's table. X names the
// category (label) column; Y the value column, or Series for multi-series
// line charts. Limit caps the rows charted.
type Chart struct {
	Type         ChartType         `json:"type"`
	Title        string            `json:"title,omitempty"`
	X            string            `json:"x"`
	Y            string            `json:"y,omitempty"`
	Series       []string          `json:"series,omitempty"`
	SeriesColors map[string]string `json:"series_colors,omitempty"`
	XLabel       string            `json:"x_label,omitempty"`
	YLabel       string            `json:"y_label,omitempty"`
	Palette      string            `json:"palette,omitempty"`
	Limit        int               `json:"limit,omitempty"`
	Ascending    bool              `json:"ascending,omitempty"`
	Hole         float64           `json:"hole,omitempty"`
}

var registry = []Definition{
	approachCounts,
	averageVelocity,
	fastestTopTen,
	frequentHazardous,
	busiestMonth,
	fastestApproach,
	largestDiameter,
	gettingCloser,
	closestApproaches,
	overFiftyThousand,
	approachesPerMonth,
	brightest,
	hazardousVsNot,
	closerThanMoon,
	withinTwentiethAU,
}

// Registry returns the fifteen definitions in display order.
func Registry() []Definition {
	out := make([]Definition, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds a definition by id ("1".."15"), slug, question text or
// numbered label. Matching is exact.
func Lookup(key string) (Definition, error) {
	for _, d := range registry {
		if key == d.ID || key == d.Slug || key == d.Question || key == d.Label() {
			return d, nil
		}
	}
	return Definition{}, fmt.Errorf("%w: %q", ErrUnknownQuery, key)
}

// Run executes a definition. Questions without a hazard input ignore p.Hazard.
func Run(ctx context.Context, gw store.Gateway, d Definition, p Params) (*Result, error) {
	if !d.HazardAware() {
		p.Hazard = domain.HazardAll
	}
	panels, err := d.run(ctx, gw, p)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", d.ID, err)
	}
	return &Result{Query: d, Hazard: p.Hazard, Panels: panels}, nil
}

// --- shared inputs and themes ---

func hazardInput() Input {
	return Input{
		Name:  InputHazard,
		Label: "Filter by Hazardous Status:",
		Options: []Option{
			{Value: domain.HazardAll.Key(), Label: "All"},
			{Value: domain.HazardOnly.Key(), Label: "Only Hazardous"},
			{Value: domain.HazardExcluded.Key(), Label: "Only Non-Hazardous"},
		},
	}
}

func asteroidTypeInput() Input {
	return Input{
		Name:  InputHazard,
		Label: "Select Asteroid Type:",
		Options: []Option{
			{Value: domain.HazardAll.Key(), Label: "All"},
			{Value: domain.HazardOnly.Key(), Label: "Hazardous"},
			{Value: domain.HazardExcluded.Key(), Label: "Non-Hazardous"},
		},
	}
}

// theme is the palette and accent color selected by a hazard filter.
type theme struct {
	palette string
	color   string
}

// hazardTheme maps the filter to Blues, Reds or Greys; reversed ramps put the
// dark end on small values.
func hazardTheme(h domain.HazardFilter, reversed bool) theme {
	var t theme
	switch h {
	case domain.HazardOnly:
		t = theme{palette: "Reds", color: "#D81F0B"}
	case domain.HazardExcluded:
		t = theme{palette: "Greys", color: "#555555"}
	default:
		t = theme{palette: "Blues", color: "#1f77b4"}
	}
	if reversed {
		t.palette += "_r"
	}
	return t
}

// guard clears the highlight of an empty panel and sets its empty message.
func (p *Panel) guard(msg string) {
	if !p.Table.Empty() {
		return
	}
	p.Highlight = nil
	if msg == "" {
		msg = NoDataMessage
	}
	p.EmptyMessage = msg
}
