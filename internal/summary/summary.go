// Package summary builds the home screen: headline counts, the globally
// fastest approach and the fact of the day.
package summary

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/neo-explorer-service/internal/adapter/store"
	"github.com/couchcryptid/neo-explorer-service/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Fastest is the single fastest recorded approach and every approach date of
// its asteroid.
type Fastest struct {
	Name          string   `json:"name"`
	ReferenceID   int64    `json:"neo_reference_id"`
	VelocityKMPH  float64  `json:"velocity_kmph"`
	ApproachDates []string `json:"approach_dates"`
}

// Panel is the home screen content. Fastest is nil when there are no approaches.
type Panel struct {
	TotalAsteroids     int64       `json:"total_asteroids"`
	HazardousAsteroids int64       `json:"hazardous_asteroids"`
	CloseApproaches    int64       `json:"close_approaches"`
	Fastest            *Fastest    `json:"fastest,omitempty"`
	Fact               domain.Fact `json:"fact"`
	FactAvailable      bool        `json:"fact_available"`
}

// Build runs the summary statements and the fact lookup concurrently. A
// failing fact lookup degrades to the placeholder and never fails the panel;
// a failing statement cancels the lookup.
func Build(ctx context.Context, runner store.Runner, facts domain.FactProvider, logger *slog.Logger) (*Panel, error) {
	var (
		panel Panel
		fact  domain.FactResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fact = domain.LookupFact(gctx, facts, logger)
		return nil
	})
	g.Go(func() error {
		return counts(gctx, runner, &panel)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	panel.Fact = fact.Fact
	panel.FactAvailable = fact.Available
	return &panel, nil
}

func counts(ctx context.Context, runner store.Runner, panel *Panel) error {
	t, err := runner.Query(ctx, "summary.total_asteroids", "SELECT COUNT(*) AS total FROM asteroids")
	if err != nil {
		return err
	}
	panel.TotalAsteroids = t.Int(0, "total")

	t, err = runner.Query(ctx, "summary.hazardous_asteroids",
		"SELECT COUNT(*) AS total FROM asteroids WHERE is_potentially_hazardous_asteroid = ?", 1)
	if err != nil {
		return err
	}
	panel.HazardousAsteroids = t.Int(0, "total")

	t, err = runner.Query(ctx, "summary.close_approaches", "SELECT COUNT(*) AS total FROM close_approach")
	if err != nil {
		return err
	}
	panel.CloseApproaches = t.Int(0, "total")

	panel.Fastest, err = fastest(ctx, runner)
	return err
}

func fastest(ctx context.Context, runner store.Runner) (*Fastest, error) {
	t, err := runner.Query(ctx, "summary.fastest", `
		SELECT a.name, c.neo_reference_id, c.relative_velocity_kmph
		FROM close_approach c
		JOIN asteroids a ON a.id = c.neo_reference_id
		ORDER BY c.relative_velocity_kmph DESC, c.close_approach_date, c.id
		LIMIT 1`)
	if err != nil {
		return nil, err
	}
	if t.Empty() {
		return nil, nil
	}

	f := &Fastest{
		Name:         t.String(0, "name"),
		ReferenceID:  t.Int(0, "neo_reference_id"),
		VelocityKMPH: t.Float(0, "relative_velocity_kmph"),
	}
	dates, err := runner.Query(ctx, "summary.fastest_dates", `
		SELECT close_approach_date
		FROM close_approach
		WHERE neo_reference_id = ?
		ORDER BY close_approach_date`, f.ReferenceID)
	if err != nil {
		return nil, err
	}
	f.ApproachDates = make([]string, 0, dates.Len())
	for r := range dates.Rows {
		f.ApproachDates = append(f.ApproachDates, dates.String(r, "close_approach_date"))
	}
	return f, nil
}
