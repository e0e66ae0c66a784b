package catalog

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/couchcryptid/neo-explorer-service/internal/adapter/store"
	"github.com/couchcryptid/neo-explorer-service/internal/domain"
	"github.com/couchcryptid/neo-explorer-service/internal/predicate"
	"github.com/couchcryptid/neo-explorer-service/internal/table"
	"gorm.io/gorm"
)

const (
	trendTableLimit    = 30
	trendChartLimit    = 40
	closestListLimit   = 1000
	closestDisplay     = 20
	nearListLimit      = 100
	nearChartLimit     = 20
	lunarThreshold     = 1.0
	astronomicalCutoff = 0.05
)

var gettingCloser = Definition{
	ID:       "8",
	Slug:     "getting-closer",
	Question: "An asteroid whose closest approach is getting nearer over time",
	Inputs:   []Input{hazardInput()},
	run:      runGettingCloser,
}

func runGettingCloser(ctx context.Context, gw store.Gateway, p Params) ([]Panel, error) {
	where, args := predicate.Set{}.Hazard(hazardColumn, p.Hazard).Clause()
	raw, err := gw.Query(ctx, "catalog.getting_closer", `
		SELECT a.id AS asteroid_id, a.name, a.is_potentially_hazardous_asteroid,
		       ca.close_approach_date, ca.miss_distance_km
		FROM asteroids a
		JOIN close_approach ca ON a.id = ca.neo_reference_id`+where+`
		ORDER BY a.id, ca.close_approach_date, ca.miss_distance_km`, args...)
	if err != nil {
		return nil, err
	}

	trends := approachTrends(raw)
	th := hazardTheme(p.Hazard, true)
	panel := Panel{
		Key:          "trend",
		Title:        fmt.Sprintf("Asteroids Getting Closer Over Time - %s", hazardLabel(p.Hazard)),
		TitleColor:   th.color,
		Table:        trends.Select("name", "approach_count", "first_date", "first_distance_km", "last_date", "last_distance_km", "distance_diff_km"),
		DisplayLimit: trendTableLimit,
		ColorScales:  []ColorScale{{Column: "last_distance_km", Palette: th.palette}},
		Chart: &Chart{
			Type:   ChartLine,
			Title:  "Approach Distance Change per Asteroid",
			X:      "name",
			Series: []string{"first_distance_km", "last_distance_km"},
			SeriesColors: map[string]string{
				"first_distance_km": "#9ecae1",
				"last_distance_km":  th.color,
			},
			XLabel: "Asteroid Name",
			YLabel: "Distance (km)",
			Limit:  trendChartLimit,
		},
	}
	if !trends.Empty() {
		panel.Highlight = &Highlight{
			Title: "Closest Approaching Asteroid",
			Fields: []Field{
				{Label: "Name", Value: trends.Value(0, "name")},
				{Label: "Hazardous", Value: domain.YesNo(trends.Bool(0, "is_potentially_hazardous_asteroid"))},
				{Label: "First Approach", Value: trends.Value(0, "first_date")},
				{Label: "First Distance", Value: trends.Value(0, "first_distance_km"), Unit: "km"},
				{Label: "Last Approach", Value: trends.Value(0, "last_date")},
				{Label: "Last Distance", Value: trends.Value(0, "last_distance_km"), Unit: "km"},
				{Label: "Distance Reduced By", Value: trends.Value(0, "distance_diff_km"), Unit: "km"},
			},
		}
	}
	panel.guard("No asteroid is getting closer for the selected filter.")
	return []Panel{panel}, nil
}

type trend struct {
	id         int64
	name       string
	hazardous  bool
	count      int64
	firstDate  string
	firstDist  float64
	lastDate   string
	lastDist   float64
	difference float64
}

// approachTrends reduces per-approach rows (ordered by asteroid, date) to one
// row per asteroid whose last recorded approach is nearer than its first.
// Several approaches on the first date keep the nearest; several on the last
// date keep the farthest, so a same-day pair never counts as a trend.
func approachTrends(raw *table.Table) *table.Table {
	var trends []trend
	var cur *trend
	for r := range raw.Rows {
		id := raw.Int(r, "asteroid_id")
		date := raw.String(r, "close_approach_date")
		dist := raw.Float(r, "miss_distance_km")
		if cur == nil || cur.id != id {
			trends = append(trends, trend{
				id:        id,
				name:      raw.String(r, "name"),
				hazardous: raw.Bool(r, "is_potentially_hazardous_asteroid"),
				firstDate: date,
				firstDist: dist,
				lastDate:  date,
				lastDist:  dist,
			})
			cur = &trends[len(trends)-1]
		}
		cur.count++
		if date == cur.firstDate && dist < cur.firstDist {
			cur.firstDist = dist
		}
		switch {
		case date > cur.lastDate:
			cur.lastDate, cur.lastDist = date, dist
		case date == cur.lastDate && dist > cur.lastDist:
			cur.lastDist = dist
		}
	}

	kept := trends[:0]
	for _, tr := range trends {
		tr.difference = math.Round((tr.firstDist-tr.lastDist)*100) / 100
		if tr.count >= minRepeatApproaches && tr.difference > 0 {
			kept = append(kept, tr)
		}
	}
	slices.SortStableFunc(kept, func(a, b trend) int {
		return cmp.Or(
			cmp.Compare(a.lastDist, b.lastDist),
			cmp.Compare(a.name, b.name),
			cmp.Compare(a.id, b.id),
		)
	})

	out := table.New(
		table.Column{Name: "asteroid_id", Kind: table.Int},
		table.Column{Name: "name", Kind: table.String},
		table.Column{Name: "is_potentially_hazardous_asteroid", Kind: table.Bool},
		table.Column{Name: "approach_count", Kind: table.Int},
		table.Column{Name: "first_date", Kind: table.Date},
		table.Column{Name: "first_distance_km", Kind: table.Float},
		table.Column{Name: "last_date", Kind: table.Date},
		table.Column{Name: "last_distance_km", Kind: table.Float},
		table.Column{Name: "distance_diff_km", Kind: table.Float},
	)
	for _, tr := range kept {
		out.Append(tr.id, tr.name, tr.hazardous, tr.count, tr.firstDate, tr.firstDist, tr.lastDate, tr.lastDist, tr.difference)
	}
	return out
}

var closestApproaches = Definition{
	ID:       "9",
	Slug:     "closest-approaches",
	Question: "Display the name of each asteroid along with the date and miss distance of its closest approach to Earth",
	Inputs:   []Input{hazardInput()},
	run:      runClosestApproaches,
}

func runClosestApproaches(ctx context.Context, gw store.Gateway, p Params) ([]Panel, error) {
	preds := predicate.Set{}.
		Hazard(hazardColumn, p.Hazard).
		And("ca.miss_distance_km IS NOT NULL")
	sql, args := gw.Statement(func(tx *gorm.DB) *gorm.DB {
		return preds.Apply(tx.Table("asteroids a").
			Select("a.name, ca.close_approach_date, ca.miss_distance_km").
			Joins("JOIN close_approach ca ON a.id = ca.neo_reference_id")).
			Order("ca.miss_distance_km, a.name, ca.id").
			Limit(closestListLimit)
	})
	t, err := gw.Query(ctx, "catalog.closest_approaches", sql, args...)
	if err != nil {
		return nil, err
	}

	th := hazardTheme(p.Hazard, true)
	panel := Panel{
		Key:          "closest",
		Title:        fmt.Sprintf("Top %d Closest Approaches - %s", closestDisplay, hazardLabel(p.Hazard)),
		TitleColor:   th.color,
		Table:        t,
		DisplayLimit: closestDisplay,
		ColorScales:  []ColorScale{{Column: "miss_distance_km", Palette: th.palette}},
		Chart: &Chart{
			Type:    ChartBar,
			Title:   fmt.Sprintf("Top %d Closest Approaches", closestDisplay),
			X:       "name",
			Y:       "miss_distance_km",
			XLabel:  "Asteroid Name",
			YLabel:  "Miss Distance (km)",
			Palette: th.palette,
			Limit:   closestDisplay,
		},
	}
	if !t.Empty() {
		panel.Highlight = &Highlight{
			Title: "Closest Asteroid",
			Fields: []Field{
				{Label: "Name", Value: t.Value(0, "name")},
				{Label: "Miss Distance", Value: t.Value(0, "miss_distance_km"), Unit: "km"},
				{Label: "Date", Value: t.Value(0, "close_approach_date")},
			},
		}
	}
	panel.guard("")
	return []Panel{panel}, nil
}

var closerThanMoon = Definition{
	ID:       "14",
	Slug:     "closer-than-moon",
	Question: "Find asteroids that passed closer than the Moon (lesser than 1 LD), along with their close approach date and distance",
	Notes: []string{
		"1 Lunar Distance (LD) is the average distance from Earth to the Moon, about 384,400 km.",
	},
	run: runCloserThanMoon,
}

func runCloserThanMoon(ctx context.Context, gw store.Gateway, _ Params) ([]Panel, error) {
	t, err := gw.Query(ctx, "catalog.closer_than_moon", `
		SELECT a.id, a.name, a.is_potentially_hazardous_asteroid,
		       c.close_approach_date, c.miss_distance_lunar, c.miss_distance_km
		FROM asteroids a
		JOIN close_approach c ON a.id = c.neo_reference_id
		WHERE c.miss_distance_lunar < ?
		ORDER BY c.miss_distance_lunar, a.name, c.id
		LIMIT ?`, lunarThreshold, nearListLimit)
	if err != nil {
		return nil, err
	}

	view := t.Select("name", "miss_distance_lunar", "miss_distance_km", "close_approach_date", "is_potentially_hazardous_asteroid").
		Rename(map[string]string{
			"name":                              "Asteroid Name",
			"miss_distance_lunar":               "Lunar Distance (LD)",
			"miss_distance_km":                  "Distance km",
			"close_approach_date":               "Close Approach Date",
			"is_potentially_hazardous_asteroid": "Hazardous",
		})

	panel := Panel{
		Key:         "lunar",
		Title:       "Asteroids That Passed Closer Than the Moon",
		Table:       view,
		ColorScales: []ColorScale{{Column: "Lunar Distance (LD)", Palette: "Magma"}},
		Chart: &Chart{
			Type:    ChartBar,
			Title:   fmt.Sprintf("Top %d Closest Approaches (LD)", nearChartLimit),
			X:       "Asteroid Name",
			Y:       "Lunar Distance (LD)",
			XLabel:  "Asteroid Name",
			YLabel:  "Lunar Distance (LD)",
			Palette: "Magma",
			Limit:   nearChartLimit,
		},
	}
	if !t.Empty() {
		panel.Highlight = &Highlight{
			Title: "Closest Asteroid",
			Fields: []Field{
				{Label: "Name", Value: t.Value(0, "name")},
				{Label: "Distance", Value: t.Value(0, "miss_distance_lunar"), Unit: "LD", Format: "%.4f"},
				{Label: "Distance", Value: t.Value(0, "miss_distance_km"), Unit: "km"},
				{Label: "Date", Value: t.Value(0, "close_approach_date")},
			},
		}
	}
	panel.guard("No asteroid passed closer than the Moon.")
	return []Panel{panel}, nil
}

var withinTwentiethAU = Definition{
	ID:       "15",
	Slug:     "within-0.05-au",
	Question: "Find asteroids that came within 0.05 AU (astronomical distance)",
	Notes: []string{
		"1 Astronomical Unit (AU) is the average distance from Earth to the Sun, about 149.6 million km.",
	},
	run: runWithinTwentiethAU,
}

func runWithinTwentiethAU(ctx context.Context, gw store.Gateway, _ Params) ([]Panel, error) {
	t, err := gw.Query(ctx, "catalog.within_0_05_au", `
		SELECT a.id, a.name, a.is_potentially_hazardous_asteroid,
		       c.close_approach_date, c.astronomical AS au_distance
		FROM asteroids a
		JOIN close_approach c ON a.id = c.neo_reference_id
		WHERE c.astronomical < ?
		ORDER BY c.astronomical, a.name, c.id
		LIMIT ?`, astronomicalCutoff, nearListLimit)
	if err != nil {
		return nil, err
	}

	view := t.Select("name", "au_distance", "close_approach_date", "is_potentially_hazardous_asteroid").
		Rename(map[string]string{
			"name":                              "Asteroid Name",
			"au_distance":                       "Distance (AU)",
			"close_approach_date":               "Close Approach Date",
			"is_potentially_hazardous_asteroid": "Hazardous",
		})

	panel := Panel{
		Key:         "au",
		Title:       "Asteroids Within 0.05 AU",
		Table:       view,
		ColorScales: []ColorScale{{Column: "Distance (AU)", Palette: "Purples_r"}},
		Chart: &Chart{
			Type:    ChartBar,
			Title:   fmt.Sprintf("Top %d Closest Approaches (AU)", nearChartLimit),
			X:       "Asteroid Name",
			Y:       "Distance (AU)",
			XLabel:  "Asteroid Name",
			YLabel:  "Distance (AU)",
			Palette: "Purples_r",
			Limit:   nearChartLimit,
		},
	}
	if !t.Empty() {
		panel.Highlight = &Highlight{
			Title: "Closest Asteroid",
			Fields: []Field{
				{Label: "Name", Value: t.Value(0, "name")},
				{Label: "Distance", Value: t.Value(0, "au_distance"), Unit: "AU", Format: "%.6f"},
				{Label: "Date", Value: t.Value(0, "close_approach_date")},
			},
		}
	}
	panel.guard("No asteroid passed within 0.05 AU.")
	return []Panel{panel}, nil
}
