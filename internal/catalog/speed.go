package catalog

import (
	"context"
	"fmt"

	"github.com/couchcryptid/neo-explorer-service/internal/adapter/store"
	"github.com/couchcryptid/neo-explorer-service/internal/domain"
	"github.com/couchcryptid/neo-explorer-service/internal/predicate"
	"gorm.io/gorm"
)

const (
	fastestApproachLimit = 20
	fastThresholdKMPH    = 50000
	fastListLimit        = 1000
	fastDisplayLimit     = 20
)

var fastestApproach = Definition{
	ID:       "6",
	Slug:     "fastest-approach",
	Question: "Get the asteroid with the fastest ever approach speed",
	Inputs:   []Input{hazardInput()},
	run:      runFastestApproach,
}

// fastestTheme follows the filter; the non-hazardous side is green here.
func fastestTheme(h domain.HazardFilter) theme {
	if h == domain.HazardExcluded {
		return theme{palette: "Greens", color: "#75B909"}
	}
	return hazardTheme(h, false)
}

func runFastestApproach(ctx context.Context, gw store.Gateway, p Params) ([]Panel, error) {
	preds := predicate.Set{}.Hazard(hazardColumn, p.Hazard)
	sql, args := gw.Statement(func(tx *gorm.DB) *gorm.DB {
		return preds.Apply(tx.Table("asteroids a").
			Select("a.name AS asteroid_name, c.relative_velocity_kmph, c.close_approach_date, a.is_potentially_hazardous_asteroid").
			Joins("JOIN close_approach c ON a.id = c.neo_reference_id")).
			Order("c.relative_velocity_kmph DESC, a.name, c.id").
			Limit(fastestApproachLimit)
	})
	t, err := gw.Query(ctx, "catalog.fastest_approach", sql, args...)
	if err != nil {
		return nil, err
	}

	th := fastestTheme(p.Hazard)
	panel := Panel{
		Key:         "fastest",
		Title:       fmt.Sprintf("Top %d Fastest Approaches - %s Asteroids", fastestApproachLimit, hazardLabel(p.Hazard)),
		TitleColor:  th.color,
		Table:       t,
		ColorScales: []ColorScale{{Column: "relative_velocity_kmph", Palette: th.palette}},
		Chart: &Chart{
			Type:      ChartHBar,
			Title:     fmt.Sprintf("Top %d Fastest Asteroids", fastestApproachLimit),
			X:         "asteroid_name",
			Y:         "relative_velocity_kmph",
			XLabel:    "Asteroid Name",
			YLabel:    "Velocity (km/h)",
			Palette:   th.palette,
			Ascending: true,
		},
	}
	if !t.Empty() {
		panel.Highlight = &Highlight{
			Title: "Fastest Asteroid",
			Fields: []Field{
				{Label: "Name", Value: t.Value(0, "asteroid_name")},
				{Label: "Speed", Value: t.Value(0, "relative_velocity_kmph"), Unit: "km/h"},
				{Label: "Hazardous Status", Value: domain.YesNo(t.Bool(0, "is_potentially_hazardous_asteroid"))},
				{Label: "Close Approach Date", Value: t.Value(0, "close_approach_date")},
			},
		}
	}
	panel.guard("")
	return []Panel{panel}, nil
}

var overFiftyThousand = Definition{
	ID:       "10",
	Slug:     "over-50000-kmh",
	Question: "List names of asteroids that approached Earth with velocity > 50,000 km/h",
	Inputs:   []Input{hazardInput()},
	run:      runOverFiftyThousand,
}

func runOverFiftyThousand(ctx context.Context, gw store.Gateway, p Params) ([]Panel, error) {
	preds := predicate.Set{}.
		And("ca.relative_velocity_kmph > ?", fastThresholdKMPH).
		Hazard(hazardColumn, p.Hazard)
	sql, args := gw.Statement(func(tx *gorm.DB) *gorm.DB {
		return preds.Apply(tx.Table("asteroids a").
			Select("a.name, ca.close_approach_date, ca.relative_velocity_kmph").
			Joins("JOIN close_approach ca ON a.id = ca.neo_reference_id")).
			Order("ca.relative_velocity_kmph DESC, a.name, ca.id").
			Limit(fastListLimit)
	})
	t, err := gw.Query(ctx, "catalog.over_50000", sql, args...)
	if err != nil {
		return nil, err
	}

	th := hazardTheme(p.Hazard, false)
	panel := Panel{
		Key:          "fast",
		Title:        fmt.Sprintf("Fast Moving Asteroids (> 50,000 km/h) - %s", hazardLabel(p.Hazard)),
		TitleColor:   th.color,
		Table:        t,
		DisplayLimit: fastDisplayLimit,
		ColorScales:  []ColorScale{{Column: "relative_velocity_kmph", Palette: th.palette}},
		Chart: &Chart{
			Type:    ChartBar,
			Title:   fmt.Sprintf("Top %d Fastest Asteroids (> 50,000 km/h)", fastDisplayLimit),
			X:       "name",
			Y:       "relative_velocity_kmph",
			XLabel:  "Asteroid Name",
			YLabel:  "Velocity (km/h)",
			Palette: th.palette,
			Limit:   fastDisplayLimit,
		},
	}
	if !t.Empty() {
		panel.Highlight = &Highlight{
			Title: "Fastest Asteroid",
			Fields: []Field{
				{Label: "Name", Value: t.Value(0, "name")},
				{Label: "Speed", Value: t.Value(0, "relative_velocity_kmph"), Unit: "km/h"},
				{Label: "Date", Value: t.Value(0, "close_approach_date")},
			},
		}
	}
	panel.guard("No asteroid exceeded 50,000 km/h for the selected filter.")
	return []Panel{panel}, nil
}
