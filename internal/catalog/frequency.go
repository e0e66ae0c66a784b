package catalog

import (
	"context"
	"fmt"

	"github.com/couchcryptid/neo-explorer-service/internal/adapter/store"
	"github.com/couchcryptid/neo-explorer-service/internal/domain"
	"github.com/couchcryptid/neo-explorer-service/internal/table"
)

const (
	minRepeatApproaches   = 2
	frequentHazardMin     = 4
	averageVelocityLimit  = 30
	fastestTopLimit       = 10
	frequentHazardLimit   = 10
	frequentHazardBuckets = 3
)

var approachCounts = Definition{
	ID:       "1",
	Slug:     "approach-counts",
	Question: "Count how many times each asteroid has approached Earth",
	run:      runApproachCounts,
}

func runApproachCounts(ctx context.Context, gw store.Gateway, _ Params) ([]Panel, error) {
	detail, err := gw.Query(ctx, "catalog.approach_counts", `
		SELECT a.name AS asteroid_name, COUNT(*) AS approach_count, ca.neo_reference_id AS neo_reference_id
		FROM close_approach ca
		JOIN asteroids a ON ca.neo_reference_id = a.id
		WHERE ca.orbiting_body = ?
		GROUP BY ca.neo_reference_id, a.name
		HAVING COUNT(*) >= ?
		ORDER BY approach_count DESC, a.name, ca.neo_reference_id`,
		earth, minRepeatApproaches)
	if err != nil {
		return nil, err
	}

	hist, err := gw.Query(ctx, "catalog.approach_counts.histogram", `
		SELECT approach_count, COUNT(*) AS total_asteroids
		FROM (
			SELECT neo_reference_id, COUNT(*) AS approach_count
			FROM close_approach
			WHERE orbiting_body = ?
			GROUP BY neo_reference_id
			HAVING COUNT(*) >= ?
		) counts
		GROUP BY approach_count
		ORDER BY approach_count`,
		earth, minRepeatApproaches)
	if err != nil {
		return nil, err
	}

	detailPanel := Panel{
		Key:         "detail",
		Title:       fmt.Sprintf("Asteroids that Approached Earth (>= %d Times)", minRepeatApproaches),
		Table:       detail,
		ColorScales: []ColorScale{{Column: "approach_count", Palette: "Blues"}},
	}
	if !detail.Empty() {
		detailPanel.Highlight = &Highlight{
			Title: "Most Frequent Visitor",
			Fields: []Field{
				{Label: "Name", Value: detail.Value(0, "asteroid_name")},
				{Label: "Approaches", Value: detail.Value(0, "approach_count")},
			},
		}
	}
	detailPanel.guard("")

	freqPanel := Panel{
		Key:     "frequency",
		Title:   "Asteroid Approach Frequency Summary",
		Table:   hist,
		Metrics: []Metric{{Label: fmt.Sprintf("Total asteroids approached >= %d times", minRepeatApproaches), Value: hist.Sum("total_asteroids")}},
		Chart: &Chart{
			Type:    ChartPie,
			Title:   "Approach Frequency Distribution",
			X:       "approach_count",
			Y:       "total_asteroids",
			Palette: "Safe",
			Hole:    0.4,
		},
	}
	freqPanel.guard("")

	return []Panel{detailPanel, freqPanel}, nil
}

var averageVelocity = Definition{
	ID:       "2",
	Slug:     "average-velocity",
	Question: "Average velocity of each asteroid over multiple approaches",
	run:      runAverageVelocity,
}

func runAverageVelocity(ctx context.Context, gw store.Gateway, _ Params) ([]Panel, error) {
	t, err := gw.Query(ctx, "catalog.average_velocity", `
		WITH velocities AS (
			SELECT a.id AS asteroid_id, a.name AS asteroid_name,
			       ROUND(AVG(ca.relative_velocity_kmph), 2) AS average_velocity_kmph,
			       COUNT(*) AS total_approaches
			FROM asteroids a
			JOIN close_approach ca ON a.id = ca.neo_reference_id
			WHERE ca.orbiting_body = ?
			GROUP BY a.id, a.name
			HAVING COUNT(*) >= ?
		)
		SELECT asteroid_name, average_velocity_kmph, total_approaches
		FROM velocities
		ORDER BY average_velocity_kmph DESC, asteroid_name, asteroid_id
		LIMIT ?`,
		earth, minRepeatApproaches, averageVelocityLimit)
	if err != nil {
		return nil, err
	}

	p := Panel{
		Key:         "velocity",
		Title:       fmt.Sprintf("Top %d Asteroids by Average Velocity", averageVelocityLimit),
		Table:       t,
		ColorScales: []ColorScale{{Column: "average_velocity_kmph", Palette: "Coolwarm"}},
		Chart: &Chart{
			Type:      ChartHBar,
			Title:     "Average Velocity of Asteroids (Multiple Approaches)",
			X:         "asteroid_name",
			Y:         "average_velocity_kmph",
			XLabel:    "Asteroid Name",
			YLabel:    "Average Velocity (km/h)",
			Palette:   "Thermal",
			Ascending: true,
		},
	}
	if !t.Empty() {
		p.Highlight = &Highlight{
			Title: "Fastest on Average",
			Fields: []Field{
				{Label: "Name", Value: t.Value(0, "asteroid_name")},
				{Label: "Average Velocity", Value: t.Value(0, "average_velocity_kmph"), Unit: "km/h"},
				{Label: "Approaches", Value: t.Value(0, "total_approaches")},
			},
		}
	}
	p.guard("")
	return []Panel{p}, nil
}

var fastestTopTen = Definition{
	ID:       "3",
	Slug:     "fastest-top-10",
	Question: "List top 10 fastest asteroids",
	run:      runFastestTopTen,
}

func runFastestTopTen(ctx context.Context, gw store.Gateway, _ Params) ([]Panel, error) {
	t, err := gw.Query(ctx, "catalog.fastest_top", `
		SELECT a.name AS asteroid_name, MAX(ca.relative_velocity_kmph) AS max_velocity
		FROM asteroids a
		JOIN close_approach ca ON a.id = ca.neo_reference_id
		WHERE ca.orbiting_body = ?
		GROUP BY a.id, a.name
		ORDER BY max_velocity DESC, a.name, a.id
		LIMIT ?`,
		earth, fastestTopLimit)
	if err != nil {
		return nil, err
	}

	p := Panel{
		Key:         "fastest",
		Title:       fmt.Sprintf("Top %d Fastest Asteroids", fastestTopLimit),
		Table:       t,
		ColorScales: []ColorScale{{Column: "max_velocity", Palette: "Reds"}},
		Chart: &Chart{
			Type:    ChartPie,
			Title:   "Velocity Share of the Fastest Asteroids",
			X:       "asteroid_name",
			Y:       "max_velocity",
			Palette: "Reds",
		},
	}
	if !t.Empty() {
		p.Highlight = &Highlight{
			Title: "Fastest Asteroid",
			Fields: []Field{
				{Label: "Name", Value: t.Value(0, "asteroid_name")},
				{Label: "Max Velocity", Value: t.Value(0, "max_velocity"), Unit: "km/h"},
			},
		}
	}
	p.guard("")
	return []Panel{p}, nil
}

var frequentHazardous = Definition{
	ID:       "4",
	Slug:     "frequent-hazardous",
	Question: "Find potentially hazardous asteroids that have approached Earth more than 3 times",
	run:      runFrequentHazardous,
}

func runFrequentHazardous(ctx context.Context, gw store.Gateway, _ Params) ([]Panel, error) {
	closest, err := gw.Query(ctx, "catalog.frequent_hazardous", `
		WITH ranked AS (
			SELECT ca.neo_reference_id, a.name AS asteroid_name, ca.close_approach_date,
			       ca.miss_distance_km, ca.relative_velocity_kmph,
			       COUNT(*) OVER (PARTITION BY ca.neo_reference_id) AS total_approaches,
			       ROW_NUMBER() OVER (
			           PARTITION BY ca.neo_reference_id
			           ORDER BY ca.miss_distance_km, ca.close_approach_date
			       ) AS rn
			FROM close_approach ca
			JOIN asteroids a ON ca.neo_reference_id = a.id
			WHERE ca.orbiting_body = ? AND a.is_potentially_hazardous_asteroid = ?
		)
		SELECT asteroid_name, neo_reference_id, total_approaches,
		       miss_distance_km AS closest_distance_km,
		       close_approach_date AS closest_approach_date,
		       relative_velocity_kmph AS velocity_at_closest_kmph
		FROM ranked
		WHERE rn = 1 AND total_approaches >= ?
		ORDER BY total_approaches DESC, asteroid_name, neo_reference_id
		LIMIT ?`,
		earth, 1, frequentHazardMin, frequentHazardLimit)
	if err != nil {
		return nil, err
	}

	counts, err := gw.Query(ctx, "catalog.frequent_hazardous.buckets", `
		SELECT approach_count, COUNT(*) AS total_asteroids
		FROM (
			SELECT ca.neo_reference_id, COUNT(*) AS approach_count
			FROM close_approach ca
			JOIN asteroids a ON ca.neo_reference_id = a.id
			WHERE ca.orbiting_body = ? AND a.is_potentially_hazardous_asteroid = ?
			GROUP BY ca.neo_reference_id
		) counts
		WHERE approach_count <= ?
		GROUP BY approach_count
		ORDER BY approach_count`,
		earth, 1, frequentHazardBuckets)
	if err != nil {
		return nil, err
	}

	closestPanel := Panel{
		Key:         "closest",
		Title:       "Hazardous Asteroids with More Than 3 Earth Approaches",
		TitleColor:  "#D81F0B",
		Table:       closest,
		ColorScales: []ColorScale{{Column: "closest_distance_km", Palette: "Reds_r"}},
	}
	if !closest.Empty() {
		closestPanel.Highlight = &Highlight{
			Title: "Closest Approach",
			Fields: []Field{
				{Label: "Name", Value: closest.Value(0, "asteroid_name")},
				{Label: "Total Approaches", Value: closest.Value(0, "total_approaches")},
				{Label: "Closest Distance", Value: closest.Value(0, "closest_distance_km"), Unit: "km"},
				{Label: "Date", Value: closest.Value(0, "closest_approach_date")},
				{Label: "Velocity", Value: closest.Value(0, "velocity_at_closest_kmph"), Unit: "km/h"},
			},
		}
	}
	closestPanel.guard("No hazardous asteroid has approached Earth more than 3 times.")

	buckets := bucketCounts(counts, frequentHazardBuckets)
	metrics := make([]Metric, 0, frequentHazardBuckets)
	for r := range buckets.Rows {
		metrics = append(metrics, Metric{
			Label: fmt.Sprintf("Approached: %d times", buckets.Int(r, "approach_count")),
			Value: buckets.Float(r, "total_asteroids"),
		})
	}
	bucketPanel := Panel{
		Key:     "buckets",
		Title:   "Hazardous Asteroids by Approach Count",
		Table:   buckets,
		Metrics: metrics,
		Chart: &Chart{
			Type:    ChartBar,
			X:       "approach_count",
			Y:       "total_asteroids",
			XLabel:  "Earth Approaches",
			YLabel:  "Asteroids",
			Palette: "Reds",
		},
	}
	return []Panel{closestPanel, bucketPanel}, nil
}

// bucketCounts zero-fills approach counts max..1 from a sparse count table.
func bucketCounts(counts *table.Table, maxCount int) *table.Table {
	byCount := make(map[int64]int64, counts.Len())
	for r := range counts.Rows {
		byCount[counts.Int(r, "approach_count")] = counts.Int(r, "total_asteroids")
	}
	out := table.New(
		table.Column{Name: "approach_count", Kind: table.Int},
		table.Column{Name: "total_asteroids", Kind: table.Int},
	)
	for n := int64(maxCount); n >= 1; n-- {
		out.Append(n, byCount[n])
	}
	return out
}

// hazardLabel is the wording used in titles for a hazard selection.
func hazardLabel(h domain.HazardFilter) string {
	switch h {
	case domain.HazardOnly:
		return "Hazardous"
	case domain.HazardExcluded:
		return "Non-Hazardous"
	default:
		return "All"
	}
}
