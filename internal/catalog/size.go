package catalog

import (
	"context"
	"fmt"

	"github.com/couchcryptid/neo-explorer-service/internal/adapter/store"
	"github.com/couchcryptid/neo-explorer-service/internal/domain"
	"github.com/couchcryptid/neo-explorer-service/internal/predicate"
	"github.com/couchcryptid/neo-explorer-service/internal/table"
	"gorm.io/gorm"
)

const (
	largestDiameterLimit = 20
	brightestLimit       = 10
	diameterFormat       = "%.3f"
)

var largestDiameter = Definition{
	ID:       "7",
	Slug:     "largest-diameter",
	Question: "Sort asteroids by maximum estimated diameter (descending)",
	Inputs:   []Input{hazardInput()},
	run:      runLargestDiameter,
}

func runLargestDiameter(ctx context.Context, gw store.Gateway, p Params) ([]Panel, error) {
	preds := predicate.Set{}.Hazard(hazardColumn, p.Hazard)
	sql, args := gw.Statement(func(tx *gorm.DB) *gorm.DB {
		return preds.Apply(tx.Table("asteroids a").
			Select("a.name AS asteroid_name, a.estimated_diameter_max_km, a.estimated_diameter_min_km, a.is_potentially_hazardous_asteroid")).
			Order("a.estimated_diameter_max_km DESC, a.name, a.id").
			Limit(largestDiameterLimit)
	})
	t, err := gw.Query(ctx, "catalog.largest_diameter", sql, args...)
	if err != nil {
		return nil, err
	}

	th := hazardTheme(p.Hazard, false)
	panel := Panel{
		Key:         "largest",
		Title:       fmt.Sprintf("Top %d Largest Asteroids - %s", largestDiameterLimit, hazardLabel(p.Hazard)),
		TitleColor:  th.color,
		Table:       t,
		ColorScales: []ColorScale{{Column: "estimated_diameter_max_km", Palette: th.palette}},
		Chart: &Chart{
			Type:      ChartHBar,
			Title:     fmt.Sprintf("Top %d Asteroids by Max Diameter", largestDiameterLimit),
			X:         "asteroid_name",
			Y:         "estimated_diameter_max_km",
			XLabel:    "Asteroid Name",
			YLabel:    "Max Diameter (km)",
			Palette:   th.palette,
			Ascending: true,
		},
	}
	if !t.Empty() {
		panel.Highlight = &Highlight{
			Title: "Largest Diameter Asteroid",
			Fields: []Field{
				{Label: "Name", Value: t.Value(0, "asteroid_name")},
				{Label: "Max Diameter", Value: t.Value(0, "estimated_diameter_max_km"), Unit: "km", Format: diameterFormat},
				{Label: "Min Diameter", Value: t.Value(0, "estimated_diameter_min_km"), Unit: "km", Format: diameterFormat},
				{Label: "Hazardous", Value: domain.YesNo(t.Bool(0, "is_potentially_hazardous_asteroid"))},
			},
		}
	}
	panel.guard("")
	return []Panel{panel}, nil
}

var brightest = Definition{
	ID:       "12",
	Slug:     "brightest",
	Question: "Find asteroid with the highest brightness (lowest magnitude value)",
	Notes:    []string{"Absolute magnitude is inverse: a lower value means a brighter object."},
	run:      runBrightest,
}

func runBrightest(ctx context.Context, gw store.Gateway, _ Params) ([]Panel, error) {
	t, err := gw.Query(ctx, "catalog.brightest", `
		SELECT a.id, a.name, a.absolute_magnitude_h AS brightness,
		       a.is_potentially_hazardous_asteroid,
		       COUNT(ca.close_approach_date) AS approach_count
		FROM asteroids a
		JOIN close_approach ca ON a.id = ca.neo_reference_id
		GROUP BY a.id, a.name, a.absolute_magnitude_h, a.is_potentially_hazardous_asteroid
		ORDER BY brightness, a.name, a.id
		LIMIT ?`, brightestLimit)
	if err != nil {
		return nil, err
	}

	panel := Panel{
		Key:         "brightest",
		Title:       fmt.Sprintf("Top %d Brightest Asteroids", brightestLimit),
		Table:       t.Select("name", "brightness", "approach_count"),
		ColorScales: []ColorScale{{Column: "brightness", Palette: "YlOrRd_r"}},
		Chart: &Chart{
			Type:    ChartBar,
			Title:   "Brightness Bar Chart (Lower = Brighter)",
			X:       "name",
			Y:       "brightness",
			XLabel:  "Asteroid Name",
			YLabel:  "Absolute Magnitude (H)",
			Palette: "YlOrRd_r",
		},
	}
	if !t.Empty() {
		panel.Highlight = &Highlight{
			Title: "Brightest Asteroid",
			Fields: []Field{
				{Label: "Name", Value: t.Value(0, "name")},
				{Label: "ID", Value: t.Value(0, "id")},
				{Label: "Brightness (Magnitude)", Value: t.Value(0, "brightness")},
				{Label: "Hazardous", Value: domain.YesNo(t.Bool(0, "is_potentially_hazardous_asteroid"))},
				{Label: "Total Approaches", Value: t.Value(0, "approach_count")},
			},
		}
	}
	panel.guard("")
	return []Panel{panel}, nil
}

var hazardousVsNot = Definition{
	ID:       "13",
	Slug:     "hazardous-vs-non-hazardous",
	Question: "Get number of hazardous vs non-hazardous asteroids",
	run:      runHazardousVsNot,
}

func runHazardousVsNot(ctx context.Context, gw store.Gateway, _ Params) ([]Panel, error) {
	const listing = `
		SELECT a.id, a.name, a.absolute_magnitude_h, a.estimated_diameter_max_km,
		       a.is_potentially_hazardous_asteroid, c.close_approach_date,
		       c.astronomical AS miss_distance_au
		FROM asteroids a
		JOIN close_approach c ON a.id = c.neo_reference_id
		WHERE a.is_potentially_hazardous_asteroid = ?
		ORDER BY a.estimated_diameter_max_km DESC, a.name, c.close_approach_date, c.id`

	sides := []struct {
		key     string
		title   string
		flag    int
		palette string
		color   string
	}{
		{"hazardous", "Hazardous Asteroids", 1, "Oranges", "#D81F0B"},
		{"non_hazardous", "Non-Hazardous Asteroids", 0, "Greys", "#555555"},
	}

	panels := make([]Panel, 0, len(sides)+1)
	split := table.New(
		table.Column{Name: "category", Kind: table.String},
		table.Column{Name: "count", Kind: table.Int},
	)
	for _, side := range sides {
		t, err := gw.Query(ctx, "catalog.hazard_split."+side.key, listing, side.flag)
		if err != nil {
			return nil, err
		}
		split.Append(side.title, int64(t.Len()))

		p := Panel{
			Key:        side.key,
			Title:      fmt.Sprintf("%s : %d", side.title, t.Len()),
			TitleColor: side.color,
			Table:      t,
			Metrics: []Metric{
				{Label: "Approach records", Value: float64(t.Len())},
				{Label: "Distinct asteroids", Value: float64(distinct(t, "id"))},
			},
			ColorScales: []ColorScale{{Column: "estimated_diameter_max_km", Palette: side.palette}},
		}
		if !t.Empty() {
			p.Highlight = &Highlight{
				Title: "Largest " + side.title[:len(side.title)-1],
				Fields: []Field{
					{Label: "Name", Value: t.Value(0, "name")},
					{Label: "Max Diameter", Value: t.Value(0, "estimated_diameter_max_km"), Unit: "km", Format: diameterFormat},
					{Label: "Absolute Magnitude", Value: t.Value(0, "absolute_magnitude_h")},
				},
			}
		}
		p.guard(fmt.Sprintf("No %s found.", side.title))
		panels = append(panels, p)
	}

	panels = append(panels, Panel{
		Key:   "comparison",
		Title: "Hazardous vs Non-Hazardous Asteroids",
		Table: split,
		Chart: &Chart{
			Type:         ChartPie,
			Title:        "Hazardous vs Non-Hazardous Asteroids",
			X:            "category",
			Y:            "count",
			SeriesColors: map[string]string{"Hazardous Asteroids": "#D81F0B", "Non-Hazardous Asteroids": "#555555"},
		},
	})
	return panels, nil
}

func distinct(t *table.Table, column string) int {
	seen := make(map[any]struct{}, t.Len())
	for _, v := range t.Column(column) {
		seen[v] = struct{}{}
	}
	return len(seen)
}
