// Command validate runs integrity checks over a live dashboard database: the
// hazard filter partitions results, repeat-visitor questions only list repeat
// visitors, trends really get closer, monthly pivots add up, renders are
// repeatable and the widest filter returns every joined row.
//
// Usage:
//
//	go run ./cmd/validate
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/neo-explorer-service/internal/adapter/store"
	"github.com/couchcryptid/neo-explorer-service/internal/catalog"
	"github.com/couchcryptid/neo-explorer-service/internal/config"
	"github.com/couchcryptid/neo-explorer-service/internal/domain"
	"github.com/couchcryptid/neo-explorer-service/internal/filter"
	"github.com/couchcryptid/neo-explorer-service/internal/observability"
	"github.com/google/go-cmp/cmp"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var errValidationFailed = errors.New("validation failed")

// Fallback date span for the widest filter when the store has no approaches.
const (
	earliestDate = "1900-01-01"
	latestDate   = "2999-12-31"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "validate",
		Short:         "Check dashboard query invariants against the configured database",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "FATAL: load config: %v\n", err)
				return err
			}
			logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

			st, err := store.Open(cfg, logger, observability.NewMetrics())
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "FATAL: open store: %v\n", err)
				return err
			}
			defer st.Close()

			if !run(cmd.Context(), st, cmd.OutOrStdout()) {
				return errValidationFailed
			}
			return nil
		},
	}
}

func run(ctx context.Context, st *store.Store, out io.Writer) bool {
	fmt.Fprintln(out, "=== Asteroid Dashboard Integrity Validation ===")
	fmt.Fprintln(out)

	v := &validator{st: st}
	phases := []*phase{
		v.hazardPartition(ctx),
		v.repeatVisitors(ctx),
		v.trendsGetCloser(ctx),
		v.monthlyPivotTotals(ctx),
		v.idempotence(ctx),
		v.filterBoundary(ctx),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return true
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return false
}

type validator struct {
	st *store.Store
}

// result runs one catalog question in its own render pass.
func (v *validator) result(ctx context.Context, key string, h domain.HazardFilter) (*catalog.Result, error) {
	def, err := catalog.Lookup(key)
	if err != nil {
		return nil, err
	}
	return catalog.Run(ctx, v.st.Memo(), def, catalog.Params{Hazard: h})
}

func (v *validator) panel(ctx context.Context, p *phase, key, panel string, h domain.HazardFilter) (catalog.Panel, bool) {
	res, err := v.result(ctx, key, h)
	if err != nil {
		p.errorf("query %s (%s): %v", key, h, err)
		return catalog.Panel{}, false
	}
	out, ok := res.Panel(panel)
	if !ok {
		p.errorf("query %s: no panel %q", key, panel)
	}
	return out, ok
}

// ── Phases ──

func (v *validator) hazardPartition(ctx context.Context) *phase {
	p := &phase{name: "Hazard filter partitions results"}

	// Q8 is uncapped: the hazardous and non-hazardous trend lists are
	// disjoint and together make up the unfiltered list.
	names := make(map[domain.HazardFilter]map[string]bool, len(domain.HazardFilters))
	for _, h := range domain.HazardFilters {
		pn, ok := v.panel(ctx, p, "8", "trend", h)
		if !ok {
			return p
		}
		names[h] = make(map[string]bool)
		for _, n := range pn.Table.Column("name") {
			names[h][fmt.Sprint(n)] = true
		}
	}
	for n := range names[domain.HazardOnly] {
		if names[domain.HazardExcluded][n] {
			p.errorf("query 8: %s listed as both hazardous and non-hazardous", n)
		}
		if !names[domain.HazardAll][n] {
			p.errorf("query 8: hazardous %s missing from the unfiltered list", n)
		}
	}
	for n := range names[domain.HazardAll] {
		if !names[domain.HazardOnly][n] && !names[domain.HazardExcluded][n] {
			p.errorf("query 8: %s in neither filtered list", n)
		}
	}

	// Q11 totals add up across the partition.
	var totals [3]float64
	for i, h := range domain.HazardFilters {
		pn, ok := v.panel(ctx, p, "11", "monthly", h)
		if !ok {
			return p
		}
		if len(pn.Metrics) > 0 {
			totals[i] = pn.Metrics[0].Value
		}
	}
	if totals[0] != totals[1]+totals[2] {
		p.errorf("query 11: all=%.0f, hazardous+non-hazardous=%.0f", totals[0], totals[1]+totals[2])
	}

	// Q6 is capped, so only disjointness holds: every row matches its filter.
	for _, h := range []domain.HazardFilter{domain.HazardOnly, domain.HazardExcluded} {
		pn, ok := v.panel(ctx, p, "6", "fastest", h)
		if !ok {
			return p
		}
		for r := range pn.Table.Len() {
			if !h.Matches(pn.Table.Bool(r, "is_potentially_hazardous_asteroid")) {
				p.errorf("query 6 (%s): row %d has the wrong hazard flag", h, r)
			}
		}
	}

	// The filter screen partitions the joined rows.
	first, last, err := v.dateSpan(ctx)
	if err != nil {
		p.errorf("date span: %v", err)
		return p
	}
	var counts [3]int
	for i, h := range domain.HazardFilters {
		c := filter.Widest(first, last)
		c.Hazard = h
		res, err := filter.Run(ctx, v.st.Memo(), c)
		if err != nil {
			p.errorf("filter (%s): %v", h, err)
			return p
		}
		counts[i] = res.Count
	}
	if counts[0] != counts[1]+counts[2] {
		p.errorf("filter: all=%d, hazardous+non-hazardous=%d", counts[0], counts[1]+counts[2])
	}
	return p
}

func (v *validator) repeatVisitors(ctx context.Context) *phase {
	p := &phase{name: "Repeat-visitor questions need 2+ approaches"}
	checks := []struct{ key, panel, column string }{
		{"1", "detail", "approach_count"},
		{"2", "velocity", "total_approaches"},
	}
	for _, c := range checks {
		pn, ok := v.panel(ctx, p, c.key, c.panel, domain.HazardAll)
		if !ok {
			continue
		}
		for r := range pn.Table.Len() {
			if n := pn.Table.Int(r, c.column); n < 2 {
				p.errorf("query %s row %d: %s=%d", c.key, r, c.column, n)
			}
		}
	}
	return p
}

func (v *validator) trendsGetCloser(ctx context.Context) *phase {
	p := &phase{name: "Getting-closer trends strictly decrease"}
	pn, ok := v.panel(ctx, p, "8", "trend", domain.HazardAll)
	if !ok {
		return p
	}
	t := pn.Table
	for r := range t.Len() {
		first, last := t.Float(r, "first_distance_km"), t.Float(r, "last_distance_km")
		if last >= first || t.Float(r, "distance_diff_km") <= 0 {
			p.errorf("%s: first %.2f km, last %.2f km", t.String(r, "name"), first, last)
		}
		if t.Int(r, "approach_count") < 2 {
			p.errorf("%s: only %d approaches", t.String(r, "name"), t.Int(r, "approach_count"))
		}
	}
	return p
}

func (v *validator) monthlyPivotTotals(ctx context.Context) *phase {
	p := &phase{name: "Monthly pivot sums to total approaches"}
	pn, ok := v.panel(ctx, p, "11", "monthly", domain.HazardAll)
	if !ok {
		return p
	}
	var sum float64
	for _, c := range pn.Table.Columns {
		if c.Name != "month" {
			sum += pn.Table.Sum(c.Name)
		}
	}

	t, err := v.st.Query(ctx, "validate.total_approaches", "SELECT COUNT(*) AS total FROM close_approach")
	if err != nil {
		p.errorf("count approaches: %v", err)
		return p
	}
	if total := t.Int(0, "total"); sum != float64(total) {
		p.errorf("pivot sum %.0f, close_approach rows %d", sum, total)
	}
	return p
}

func (v *validator) idempotence(ctx context.Context) *phase {
	p := &phase{name: "Repeated renders are identical"}
	for _, def := range catalog.Registry() {
		filters := []domain.HazardFilter{domain.HazardAll}
		if def.HazardAware() {
			filters = domain.HazardFilters
		}
		for _, h := range filters {
			a, errA := v.result(ctx, def.ID, h)
			b, errB := v.result(ctx, def.ID, h)
			if errA != nil || errB != nil {
				p.errorf("query %s (%s): %v", def.ID, h, errors.Join(errA, errB))
				continue
			}
			if diff := cmp.Diff(a.Panels, b.Panels); diff != "" {
				p.errorf("query %s (%s) differs between runs (-first +second):\n%s", def.ID, h, diff)
			}
		}
	}
	return p
}

func (v *validator) filterBoundary(ctx context.Context) *phase {
	p := &phase{name: "Widest filter returns every joined row"}
	first, last, err := v.dateSpan(ctx)
	if err != nil {
		p.errorf("date span: %v", err)
		return p
	}
	res, err := filter.Run(ctx, v.st.Memo(), filter.Widest(first, last))
	if err != nil {
		p.errorf("filter: %v", err)
		return p
	}

	t, err := v.st.Query(ctx, "validate.joined_rows",
		"SELECT COUNT(*) AS total FROM asteroids a JOIN close_approach c ON a.id = c.neo_reference_id")
	if err != nil {
		p.errorf("count joined rows: %v", err)
		return p
	}
	if total := t.Int(0, "total"); int64(res.Count) != total {
		p.errorf("widest filter matched %d of %d joined rows", res.Count, total)
		p.errorf("rows outside the slider bounds: %s", outsideBounds(ctx, v.st))
	}
	return p
}

// dateSpan returns the first and last approach dates in the store.
func (v *validator) dateSpan(ctx context.Context) (first, last string, err error) {
	t, err := v.st.Query(ctx, "validate.date_span",
		"SELECT MIN(close_approach_date) AS first, MAX(close_approach_date) AS last FROM close_approach")
	if err != nil {
		return "", "", err
	}
	first, last = t.String(0, "first"), t.String(0, "last")
	if first == "" || last == "" {
		return earliestDate, latestDate, nil
	}
	return first, last, nil
}

// outsideBounds names the columns holding values beyond the slider ranges.
func outsideBounds(ctx context.Context, st *store.Store) string {
	b := filter.DefaultBounds()
	checks := []struct {
		column string
		max    float64
	}{
		{"a.absolute_magnitude_h", b.Magnitude.Max},
		{"c.relative_velocity_kmph", b.Velocity.Max},
		{"a.estimated_diameter_min_km", b.MinDiameter.Max},
		{"a.estimated_diameter_max_km", b.MaxDiameter.Max},
		{"c.astronomical", b.AU.Max},
	}
	var found []string
	for _, c := range checks {
		t, err := st.Query(ctx, "validate.outside_bounds",
			"SELECT COUNT(*) AS n FROM asteroids a JOIN close_approach c ON a.id = c.neo_reference_id WHERE "+c.column+" > ?", c.max)
		if err != nil {
			return err.Error()
		}
		if n := t.Int(0, "n"); n > 0 {
			found = append(found, fmt.Sprintf("%s (%d)", c.column, n))
		}
	}
	return fmt.Sprint(found)
}
