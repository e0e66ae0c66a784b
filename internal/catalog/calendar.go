package catalog

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/couchcryptid/neo-explorer-service/internal/adapter/store"
	"github.com/couchcryptid/neo-explorer-service/internal/predicate"
	"github.com/couchcryptid/neo-explorer-service/internal/table"
)

const busiestMonthLimit = 6

// Years compared by the monthly questions.
var busiestMonthYears = []struct {
	year    int
	palette string
	color   string
}{
	{2024, "Blues", "#003366"},
	{2025, "Reds", "#660000"},
}

// Series colors for the per-month pivot; years beyond the list cycle.
var yearPalettes = []struct{ palette, color string }{
	{"Blues", "#1f77b4"},
	{"Reds", "#d62728"},
	{"Greens", "#2ca02c"},
	{"Purples", "#9467bd"},
	{"Oranges", "#ff7f0e"},
}

var busiestMonth = Definition{
	ID:       "5",
	Slug:     "busiest-month",
	Question: "Find the month with the most asteroid approaches",
	run:      runBusiestMonth,
}

func runBusiestMonth(ctx context.Context, gw store.Gateway, _ Params) ([]Panel, error) {
	d := gw.Dialect()
	month := d.Month("close_approach_date")
	sql := fmt.Sprintf(`
		SELECT %s AS month_number, COUNT(*) AS approach_count
		FROM close_approach
		WHERE %s = ?
		GROUP BY %s
		ORDER BY approach_count DESC, month_number
		LIMIT ?`, month, d.Year("close_approach_date"), month)

	panels := make([]Panel, 0, len(busiestMonthYears))
	for _, y := range busiestMonthYears {
		raw, err := gw.Query(ctx, "catalog.busiest_month", sql, y.year, busiestMonthLimit)
		if err != nil {
			return nil, err
		}
		t := monthNames(raw)

		p := Panel{
			Key:         strconv.Itoa(y.year),
			Title:       fmt.Sprintf("Top %d Months with Most Asteroid Approaches (%d)", busiestMonthLimit, y.year),
			TitleColor:  y.color,
			Table:       t,
			ColorScales: []ColorScale{{Column: "approach_count", Palette: y.palette}},
			Chart: &Chart{
				Type:    ChartBar,
				X:       "month",
				Y:       "approach_count",
				XLabel:  "Month",
				YLabel:  "Approaches",
				Palette: y.palette,
			},
		}
		if !t.Empty() {
			p.Highlight = &Highlight{
				Title: fmt.Sprintf("Month with Highest Approaches in %d", y.year),
				Fields: []Field{
					{Label: "Month", Value: t.Value(0, "month")},
					{Label: "Total Approaches", Value: t.Value(0, "approach_count")},
				},
			}
		}
		p.guard(fmt.Sprintf("No approaches recorded in %d.", y.year))
		panels = append(panels, p)
	}
	return panels, nil
}

// monthNames replaces month_number with the English month name.
func monthNames(raw *table.Table) *table.Table {
	out := table.New(
		table.Column{Name: "month", Kind: table.String},
		table.Column{Name: "approach_count", Kind: table.Int},
	)
	for r := range raw.Rows {
		out.Append(monthName(raw.Int(r, "month_number")), raw.Int(r, "approach_count"))
	}
	return out
}

func monthName(n int64) string {
	if n < 1 || n > 12 {
		return strconv.FormatInt(n, 10)
	}
	return time.Month(n).String()
}

var approachesPerMonth = Definition{
	ID:       "11",
	Slug:     "approaches-per-month",
	Question: "Count how many approaches happened per month",
	Inputs:   []Input{asteroidTypeInput()},
	run:      runApproachesPerMonth,
}

func runApproachesPerMonth(ctx context.Context, gw store.Gateway, p Params) ([]Panel, error) {
	d := gw.Dialect()
	year := d.Year("c.close_approach_date")
	month := d.Month("c.close_approach_date")
	where, args := predicate.Set{}.Hazard(hazardColumn, p.Hazard).Clause()

	raw, err := gw.Query(ctx, "catalog.approaches_per_month", fmt.Sprintf(`
		SELECT %s AS approach_year, %s AS approach_month, COUNT(*) AS total_approaches
		FROM close_approach c
		JOIN asteroids a ON c.neo_reference_id = a.id%s
		GROUP BY %s, %s
		ORDER BY approach_year, approach_month`, year, month, where, year, month), args...)
	if err != nil {
		return nil, err
	}

	th := hazardTheme(p.Hazard, false)
	pivot, years := pivotMonths(raw)
	panel := Panel{
		Key:        "monthly",
		Title:      fmt.Sprintf("Monthly Approaches - %s Asteroids", hazardLabel(p.Hazard)),
		TitleColor: th.color,
		Table:      pivot,
		Metrics:    []Metric{{Label: "Total approaches", Value: raw.Sum("total_approaches")}},
	}
	if len(years) == 0 {
		panel.Table = table.New(table.Column{Name: "month", Kind: table.String})
		panel.guard("")
		return []Panel{panel}, nil
	}

	series := make([]string, len(years))
	colors := make(map[string]string, len(years))
	for i, y := range years {
		name := strconv.FormatInt(y, 10)
		yp := yearPalettes[i%len(yearPalettes)]
		series[i] = name
		colors[name] = yp.color
		panel.ColorScales = append(panel.ColorScales, ColorScale{Column: name, Palette: yp.palette})
	}
	panel.Chart = &Chart{
		Type:         ChartLine,
		Title:        fmt.Sprintf("Asteroid Approaches Per Month (%s - %s)", series[0], series[len(series)-1]),
		X:            "month",
		Series:       series,
		SeriesColors: colors,
		XLabel:       "Month",
		YLabel:       "Total Approaches",
	}
	return []Panel{panel}, nil
}

// pivotMonths turns (year, month, count) rows into a Jan..Dec table with one
// zero-filled column per year.
func pivotMonths(raw *table.Table) (*table.Table, []int64) {
	counts := make(map[int64]map[int64]int64)
	var years []int64
	for r := range raw.Rows {
		y := raw.Int(r, "approach_year")
		if _, ok := counts[y]; !ok {
			counts[y] = make(map[int64]int64, 12)
			years = append(years, y)
		}
		counts[y][raw.Int(r, "approach_month")] += raw.Int(r, "total_approaches")
	}
	slices.Sort(years)

	cols := []table.Column{{Name: "month", Kind: table.String}}
	for _, y := range years {
		cols = append(cols, table.Column{Name: strconv.FormatInt(y, 10), Kind: table.Int})
	}
	out := table.New(cols...)
	for m := int64(1); m <= 12; m++ {
		row := make([]any, 0, len(cols))
		row = append(row, time.Month(m).String()[:3])
		for _, y := range years {
			row = append(row, counts[y][m])
		}
		out.Append(row...)
	}
	return out, years
}
