package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"testing"

	"github.com/couchcryptid/neo-explorer-service/internal/adapter/store"
	"github.com/couchcryptid/neo-explorer-service/internal/domain"
	"github.com/couchcryptid/neo-explorer-service/internal/table"
	"github.com/couchcryptid/neo-explorer-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func run(t *testing.T, gw store.Gateway, key string, h domain.HazardFilter) *Result {
	t.Helper()
	def, err := Lookup(key)
	require.NoError(t, err)
	res, err := Run(context.Background(), gw, def, Params{Hazard: h})
	require.NoError(t, err)
	return res
}

func panel(t *testing.T, res *Result, key string) Panel {
	t.Helper()
	p, ok := res.Panel(key)
	require.True(t, ok, "panel %q", key)
	return p
}

func column(tb *table.Table, name string) []any {
	return tb.Column(name)
}

func TestRegistry_FifteenQuestionsInOrder(t *testing.T) {
	defs := Registry()
	require.Len(t, defs, 15)

	slugs := make(map[string]bool)
	var hazardAware []string
	for i, d := range defs {
		assert.Equal(t, strconv.Itoa(i+1), d.ID)
		assert.NotEmpty(t, d.Question)
		assert.False(t, slugs[d.Slug], "duplicate slug %s", d.Slug)
		slugs[d.Slug] = true
		if d.HazardAware() {
			hazardAware = append(hazardAware, d.ID)
		}
	}
	assert.Equal(t, []string{"6", "7", "8", "9", "10", "11"}, hazardAware)
}

func TestRegistry_HazardInputLabels(t *testing.T) {
	q6, err := Lookup("6")
	require.NoError(t, err)
	q11, err := Lookup("11")
	require.NoError(t, err)

	labels := func(in Input) []string {
		var out []string
		for _, o := range in.Options {
			out = append(out, o.Label)
		}
		return out
	}
	assert.Equal(t, []string{"All", "Only Hazardous", "Only Non-Hazardous"}, labels(q6.Inputs[0]))
	assert.Equal(t, []string{"All", "Hazardous", "Non-Hazardous"}, labels(q11.Inputs[0]))
}

func TestLookup(t *testing.T) {
	for _, key := range []string{
		"3",
		"fastest-top-10",
		"List top 10 fastest asteroids",
		"3.List top 10 fastest asteroids",
	} {
		d, err := Lookup(key)
		require.NoError(t, err, key)
		assert.Equal(t, "3", d.ID)
	}

	_, err := Lookup("16")
	require.ErrorIs(t, err, ErrUnknownQuery)
	_, err = Lookup("")
	require.ErrorIs(t, err, ErrUnknownQuery)
}

func TestLookup_SelectorLabels(t *testing.T) {
	labels := []string{
		"1.Count how many times each asteroid has approached Earth",
		"2.Average velocity of each asteroid over multiple approaches",
		"3.List top 10 fastest asteroids",
		"4.Find potentially hazardous asteroids that have approached Earth more than 3 times",
		"5.Find the month with the most asteroid approaches",
		"6.Get the asteroid with the fastest ever approach speed",
		"7.Sort asteroids by maximum estimated diameter (descending)",
		"8.An asteroid whose closest approach is getting nearer over time",
		"9.Display the name of each asteroid along with the date and miss distance of its closest approach to Earth",
		"10.List names of asteroids that approached Earth with velocity > 50,000 km/h",
		"11.Count how many approaches happened per month",
		"12.Find asteroid with the highest brightness (lowest magnitude value)",
		"13.Get number of hazardous vs non-hazardous asteroids",
		"14.Find asteroids that passed closer than the Moon (lesser than 1 LD), along with their close approach date and distance",
		"15.Find asteroids that came within 0.05 AU (astronomical distance)",
	}
	for i, label := range labels {
		d, err := Lookup(label)
		require.NoError(t, err, label)
		assert.Equal(t, strconv.Itoa(i+1), d.ID)
		assert.Equal(t, label, d.Label())
	}
}

func TestRun_IgnoresHazardForQuestionsWithoutInput(t *testing.T) {
	gw := testutil.SeedStore(t)
	res := run(t, gw, "3", domain.HazardOnly)
	assert.Equal(t, domain.HazardAll, res.Hazard)
	assert.Equal(t, 7, panel(t, res, "fastest").Table.Len())
}

func TestApproachCounts(t *testing.T) {
	res := run(t, testutil.SeedStore(t), "1", domain.HazardAll)

	detail := panel(t, res, "detail")
	assert.Equal(t, []any{"Apophis", "Ganymed", "Bennu", "Eros", "Itokawa"}, column(detail.Table, "asteroid_name"))
	assert.Equal(t, []any{int64(4), int64(3), int64(2), int64(2), int64(2)}, column(detail.Table, "approach_count"))
	require.NotNil(t, detail.Highlight)

	freq := panel(t, res, "frequency")
	assert.Equal(t, []any{int64(2), int64(3), int64(4)}, column(freq.Table, "approach_count"))
	assert.Equal(t, []any{int64(3), int64(1), int64(1)}, column(freq.Table, "total_asteroids"))
	require.Len(t, freq.Metrics, 1)
	assert.InDelta(t, 5, freq.Metrics[0].Value, 0)
	assert.Equal(t, ChartPie, freq.Chart.Type)
}

func TestAverageVelocity(t *testing.T) {
	res := run(t, testutil.SeedStore(t), "2", domain.HazardAll)
	p := panel(t, res, "velocity")

	assert.Equal(t, []any{"Bennu", "Eros", "Ganymed", "Apophis", "Itokawa"}, column(p.Table, "asteroid_name"))
	assert.InDelta(t, 71000, p.Table.Float(0, "average_velocity_kmph"), 0.001)
	// Apophis averages its four Earth approaches only.
	assert.InDelta(t, 26500, p.Table.Float(3, "average_velocity_kmph"), 0.001)
	assert.Equal(t, int64(4), p.Table.Int(3, "total_approaches"))
}

func TestFastestTopTen(t *testing.T) {
	res := run(t, testutil.SeedStore(t), "3", domain.HazardAll)
	p := panel(t, res, "fastest")

	assert.Equal(t,
		[]any{"Toutatis", "Bennu", "Eros", "Didymos", "Ganymed", "Apophis", "Itokawa"},
		column(p.Table, "asteroid_name"))
	assert.InDelta(t, 80000, p.Table.Float(0, "max_velocity"), 0)
	assert.Equal(t, "Toutatis", p.Highlight.Fields[0].Value)
}

func TestFrequentHazardous(t *testing.T) {
	res := run(t, testutil.SeedStore(t), "4", domain.HazardAll)

	closest := panel(t, res, "closest")
	require.Equal(t, 1, closest.Table.Len())
	assert.Equal(t, "Apophis", closest.Table.String(0, "asteroid_name"))
	assert.Equal(t, int64(4), closest.Table.Int(0, "total_approaches"))
	assert.InDelta(t, 38000, closest.Table.Float(0, "closest_distance_km"), 0)
	assert.Equal(t, "2025-01-11", closest.Table.String(0, "closest_approach_date"))

	buckets := panel(t, res, "buckets")
	assert.Equal(t, []any{int64(3), int64(2), int64(1)}, column(buckets.Table, "approach_count"))
	assert.Equal(t, []any{int64(0), int64(2), int64(1)}, column(buckets.Table, "total_asteroids"))
	require.Len(t, buckets.Metrics, 3)
	assert.Equal(t, "Approached: 3 times", buckets.Metrics[0].Label)
}

func TestBusiestMonth(t *testing.T) {
	res := run(t, testutil.SeedStore(t), "5", domain.HazardAll)

	y2024 := panel(t, res, "2024")
	assert.Equal(t, 6, y2024.Table.Len())
	// Every 2024 month ties at one approach; the earliest month wins.
	assert.Equal(t, "January", y2024.Highlight.Fields[0].Value)
	assert.Equal(t, "Blues", y2024.ColorScales[0].Palette)

	y2025 := panel(t, res, "2025")
	assert.Equal(t,
		[]any{"March", "September", "January", "February", "April", "June"},
		column(y2025.Table, "month"))
	assert.Equal(t, int64(2), y2025.Table.Int(0, "approach_count"))
	assert.Equal(t, "Reds", y2025.ColorScales[0].Palette)
}

func TestFastestApproach(t *testing.T) {
	gw := testutil.SeedStore(t)

	all := panel(t, run(t, gw, "6", domain.HazardAll), "fastest")
	assert.Equal(t, testutil.TotalApproaches, all.Table.Len())
	assert.Equal(t, "Toutatis", all.Table.String(0, "asteroid_name"))
	assert.Equal(t, "Blues", all.ColorScales[0].Palette)
	assert.Equal(t, "Yes", all.Highlight.Fields[2].Value)

	none := panel(t, run(t, gw, "6", domain.HazardExcluded), "fastest")
	assert.Equal(t, "Didymos", none.Table.String(0, "asteroid_name"))
	assert.Equal(t, "Greens", none.ColorScales[0].Palette)
	assert.Equal(t, "#75B909", none.TitleColor)
	assert.Equal(t, "No", none.Highlight.Fields[2].Value)
}

func TestLargestDiameter(t *testing.T) {
	gw := testutil.SeedStore(t)

	all := panel(t, run(t, gw, "7", domain.HazardAll), "largest")
	assert.Equal(t, testutil.TotalAsteroids, all.Table.Len())
	assert.Equal(t, "Phaethon", all.Table.String(0, "asteroid_name"))
	assert.Equal(t, "%.3f", all.Highlight.Fields[1].Format)

	hazardous := panel(t, run(t, gw, "7", domain.HazardOnly), "largest")
	assert.Equal(t, []any{"Toutatis", "Eros", "Apophis", "Bennu"}, column(hazardous.Table, "asteroid_name"))
	assert.Equal(t, "Reds", hazardous.ColorScales[0].Palette)
}

func TestGettingCloser(t *testing.T) {
	gw := testutil.SeedStore(t)

	all := panel(t, run(t, gw, "8", domain.HazardAll), "trend")
	assert.Equal(t, []any{"Eros", "Itokawa", "Ganymed"}, column(all.Table, "name"))
	assert.InDelta(t, 60000, all.Table.Float(0, "distance_diff_km"), 0)
	assert.Equal(t, "2024-01-01", all.Table.String(0, "first_date"))
	assert.Equal(t, "2025-06-01", all.Table.String(0, "last_date"))
	assert.Equal(t, "Blues_r", all.ColorScales[0].Palette)
	for r := range all.Table.Rows {
		assert.Less(t, all.Table.Float(r, "last_distance_km"), all.Table.Float(r, "first_distance_km"))
		assert.GreaterOrEqual(t, all.Table.Int(r, "approach_count"), int64(2))
	}

	hazardous := panel(t, run(t, gw, "8", domain.HazardOnly), "trend")
	assert.Equal(t, []any{"Eros"}, column(hazardous.Table, "name"))
	assert.Equal(t, "Reds_r", hazardous.ColorScales[0].Palette)
}

func TestApproachTrends_SameDayApproachesAreNotATrend(t *testing.T) {
	raw := table.New(
		table.Column{Name: "asteroid_id", Kind: table.Int},
		table.Column{Name: "name", Kind: table.String},
		table.Column{Name: "is_potentially_hazardous_asteroid", Kind: table.Bool},
		table.Column{Name: "close_approach_date", Kind: table.Date},
		table.Column{Name: "miss_distance_km", Kind: table.Float},
	)
	raw.Append(int64(1), "Sameday", false, "2024-05-01", 100.0)
	raw.Append(int64(1), "Sameday", false, "2024-05-01", 200.0)
	raw.Append(int64(2), "Nearing", true, "2024-01-01", 500.0)
	raw.Append(int64(2), "Nearing", true, "2024-01-01", 900.0)
	raw.Append(int64(2), "Nearing", true, "2024-06-01", 300.0)
	raw.Append(int64(2), "Nearing", true, "2024-06-01", 400.0)
	raw.Append(int64(3), "Single", false, "2024-02-02", 10.0)

	out := approachTrends(raw)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "Nearing", out.String(0, "name"))
	assert.InDelta(t, 500, out.Float(0, "first_distance_km"), 0)
	assert.InDelta(t, 400, out.Float(0, "last_distance_km"), 0)
	assert.InDelta(t, 100, out.Float(0, "distance_diff_km"), 0)
	assert.Equal(t, int64(4), out.Int(0, "approach_count"))
}

func TestClosestApproaches(t *testing.T) {
	p := panel(t, run(t, testutil.SeedStore(t), "9", domain.HazardAll), "closest")

	assert.Equal(t, testutil.TotalApproaches, p.Table.Len())
	assert.Equal(t, 20, p.DisplayLimit)
	assert.Equal(t, "Apophis", p.Table.String(0, "name"))
	assert.InDelta(t, 38000, p.Table.Float(0, "miss_distance_km"), 0)
	for r := 1; r < p.Table.Len(); r++ {
		assert.LessOrEqual(t, p.Table.Float(r-1, "miss_distance_km"), p.Table.Float(r, "miss_distance_km"))
	}
}

func TestOverFiftyThousand(t *testing.T) {
	gw := testutil.SeedStore(t)

	all := panel(t, run(t, gw, "10", domain.HazardAll), "fast")
	assert.Equal(t, []any{"Toutatis", "Bennu", "Bennu", "Eros", "Didymos"}, column(all.Table, "name"))
	assert.Equal(t, 20, all.Chart.Limit)

	none := panel(t, run(t, gw, "10", domain.HazardExcluded), "fast")
	assert.Equal(t, []any{"Didymos"}, column(none.Table, "name"))
}

func TestApproachesPerMonth(t *testing.T) {
	gw := testutil.SeedStore(t)

	all := panel(t, run(t, gw, "11", domain.HazardAll), "monthly")
	require.Equal(t, 12, all.Table.Len())
	assert.Equal(t, []string{"month", "2024", "2025"}, all.Table.Names())
	assert.Equal(t, "Jan", all.Table.String(0, "month"))
	assert.InDelta(t, 8, all.Table.Sum("2024"), 0)
	assert.InDelta(t, 8, all.Table.Sum("2025"), 0)
	assert.Equal(t, int64(2), all.Table.Int(2, "2025"), "March 2025")
	assert.Equal(t, int64(0), all.Table.Int(4, "2024"), "May 2024 is zero-filled")
	assert.Equal(t, []string{"2024", "2025"}, all.Chart.Series)
	assert.Equal(t, "Blues", all.ColorScales[0].Palette)
	assert.Equal(t, "Reds", all.ColorScales[1].Palette)

	hazardous := panel(t, run(t, gw, "11", domain.HazardOnly), "monthly")
	assert.InDelta(t, testutil.HazardousApproaches, hazardous.Metrics[0].Value, 0)
}

func TestBrightest(t *testing.T) {
	p := panel(t, run(t, testutil.SeedStore(t), "12", domain.HazardAll), "brightest")

	assert.Equal(t, []string{"name", "brightness", "approach_count"}, p.Table.Names())
	assert.Equal(t, "Ganymed", p.Table.String(0, "name"))
	assert.Equal(t, int64(3), p.Table.Int(0, "approach_count"))
	// Phaethon has no approaches and drops out of the join.
	assert.Equal(t, 7, p.Table.Len())
	assert.Equal(t, testutil.GanymedID, p.Highlight.Fields[1].Value)
}

func TestHazardousVsNot(t *testing.T) {
	res := run(t, testutil.SeedStore(t), "13", domain.HazardAll)

	hazardous := panel(t, res, "hazardous")
	assert.Equal(t, testutil.HazardousApproaches, hazardous.Table.Len())
	assert.Equal(t, "Toutatis", hazardous.Table.String(0, "name"))
	assert.Equal(t, "Hazardous Asteroids : 10", hazardous.Title)
	assert.InDelta(t, 4, hazardous.Metrics[1].Value, 0)

	safe := panel(t, res, "non_hazardous")
	assert.Equal(t, testutil.TotalApproaches-testutil.HazardousApproaches, safe.Table.Len())
	assert.Equal(t, "Ganymed", safe.Table.String(0, "name"))

	cmp := panel(t, res, "comparison")
	assert.Equal(t, []any{int64(10), int64(6)}, column(cmp.Table, "count"))
}

func TestCloserThanMoon(t *testing.T) {
	p := panel(t, run(t, testutil.SeedStore(t), "14", domain.HazardAll), "lunar")

	assert.Equal(t, []string{"Asteroid Name", "Lunar Distance (LD)", "Distance km", "Close Approach Date", "Hazardous"}, p.Table.Names())
	assert.Equal(t,
		[]any{38000.0, 40000.0, 100000.0, 180000.0, 200000.0, 200000.0, 250000.0, 300000.0},
		column(p.Table, "Distance km"))
	assert.Equal(t, table.Bool, p.Table.Columns[4].Kind)
	for r := range p.Table.Rows {
		assert.Less(t, p.Table.Float(r, "Lunar Distance (LD)"), 1.0)
	}
}

func TestWithinTwentiethAU(t *testing.T) {
	p := panel(t, run(t, testutil.SeedStore(t), "15", domain.HazardAll), "au")

	assert.Equal(t, []string{"Asteroid Name", "Distance (AU)", "Close Approach Date", "Hazardous"}, p.Table.Names())
	// Only the Mars approach of Apophis lies beyond 0.05 AU.
	assert.Equal(t, testutil.TotalApproaches-1, p.Table.Len())
	assert.Equal(t, "Apophis", p.Table.String(0, "Asteroid Name"))
}

// rowKeys renders every row of t so row sets can be compared across runs.
func rowKeys(t *table.Table) []string {
	keys := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		keys[i] = fmt.Sprint(row...)
	}
	return keys
}

func TestHazardFilterPartitionsRows(t *testing.T) {
	gw := testutil.SeedStore(t)

	// The fixture stays under every cap, so the union must equal All.
	for _, id := range []string{"6", "7", "8", "9", "10"} {
		t.Run(id, func(t *testing.T) {
			all := rowKeys(run(t, gw, id, domain.HazardAll).Panels[0].Table)
			only := rowKeys(run(t, gw, id, domain.HazardOnly).Panels[0].Table)
			excluded := rowKeys(run(t, gw, id, domain.HazardExcluded).Panels[0].Table)

			require.NotEmpty(t, all)
			for _, k := range only {
				assert.NotContains(t, excluded, k)
			}
			assert.ElementsMatch(t, all, append(slices.Clone(only), excluded...))
		})
	}
}

func TestHazardFilterPartitionsMonthlyPivot(t *testing.T) {
	gw := testutil.SeedStore(t)
	all := panel(t, run(t, gw, "11", domain.HazardAll), "monthly").Table
	only := panel(t, run(t, gw, "11", domain.HazardOnly), "monthly").Table
	excluded := panel(t, run(t, gw, "11", domain.HazardExcluded), "monthly").Table

	cell := func(tb *table.Table, r int, col string) int64 {
		if !tb.Has(col) {
			return 0
		}
		return tb.Int(r, col)
	}

	var total int64
	for r := range all.Rows {
		for _, col := range all.Names()[1:] {
			want := cell(all, r, col)
			assert.Equal(t, want, cell(only, r, col)+cell(excluded, r, col), "%s %s", all.String(r, "month"), col)
			total += want
		}
	}
	assert.Equal(t, int64(testutil.TotalApproaches), total)
}

func TestEmptyDatasetGuardsEveryPanel(t *testing.T) {
	gw := testutil.OpenStore(t)

	for _, def := range Registry() {
		t.Run(def.Slug, func(t *testing.T) {
			res, err := Run(context.Background(), gw, def, Params{})
			require.NoError(t, err)
			for _, p := range res.Panels {
				if p.Table.Empty() {
					assert.Nil(t, p.Highlight, p.Key)
					assert.NotEmpty(t, p.EmptyMessage, p.Key)
				}
			}
		})
	}
}

type failingGateway struct{ err error }

func (f failingGateway) Query(context.Context, string, string, ...any) (*table.Table, error) {
	return nil, f.err
}

func (f failingGateway) Dialect() store.Dialect {
	d, _ := store.DialectFor("sqlite")
	return d
}

func (f failingGateway) Statement(func(tx *gorm.DB) *gorm.DB) (string, []any) {
	return "SELECT 1", nil
}

func TestRun_PropagatesStoreErrors(t *testing.T) {
	boom := errors.New("connection refused")
	for _, def := range Registry() {
		_, err := Run(context.Background(), failingGateway{err: boom}, def, Params{})
		require.ErrorIs(t, err, boom, def.ID)
		assert.Contains(t, err.Error(), "query "+def.ID)
	}
}

func TestPivotMonths(t *testing.T) {
	raw := table.New(
		table.Column{Name: "approach_year", Kind: table.Int},
		table.Column{Name: "approach_month", Kind: table.Int},
		table.Column{Name: "total_approaches", Kind: table.Int},
	)
	raw.Append(int64(2025), int64(12), int64(4))
	raw.Append(int64(2024), int64(1), int64(2))

	out, years := pivotMonths(raw)
	assert.Equal(t, []int64{2024, 2025}, years)
	assert.Equal(t, "Dec", out.String(11, "month"))
	assert.Equal(t, int64(4), out.Int(11, "2025"))
	assert.Equal(t, int64(0), out.Int(11, "2024"))
	assert.Equal(t, int64(2), out.Int(0, "2024"))
}
