package filter

import (
	"context"
	"fmt"

	"github.com/couchcryptid/neo-explorer-service/internal/adapter/store"
	"github.com/couchcryptid/neo-explorer-service/internal/predicate"
	"github.com/couchcryptid/neo-explorer-service/internal/table"
	"gorm.io/gorm"
)

// NoMatchMessage is shown when the criteria match no records.
const NoMatchMessage = "No data matched the selected filters. You're using a very strict combination. Try relaxing one or more filters."

const selectColumns = "a.name, a.absolute_magnitude_h, a.estimated_diameter_min_km, " +
	"a.estimated_diameter_max_km, a.is_potentially_hazardous_asteroid, " +
	"c.relative_velocity_kmph, c.close_approach_date, c.astronomical"

// Result is the full, unpaginated match set of one submission.
type Result struct {
	Criteria Criteria     `json:"criteria"`
	Table    *table.Table `json:"table"`
	Count    int          `json:"count"`
	Message  string       `json:"message,omitempty"`
}

// Predicates returns the AND-list for c: five inclusive upper bounds, the
// inclusive date range, and the hazard flag unless the filter is All.
func Predicates(c Criteria) predicate.Set {
	return predicate.Set{}.
		And("a.absolute_magnitude_h <= ?", c.MaxMagnitude).
		And("a.estimated_diameter_min_km <= ?", c.MaxMinDiameterKM).
		And("a.estimated_diameter_max_km <= ?", c.MaxMaxDiameterKM).
		And("c.relative_velocity_kmph <= ?", c.MaxVelocityKMPH).
		And("c.astronomical <= ?", c.MaxAU).
		And("c.close_approach_date BETWEEN ? AND ?", c.StartDate, c.EndDate).
		Hazard("a.is_potentially_hazardous_asteroid", c.Hazard)
}

// Run validates c and returns every joined asteroid/approach row it matches.
// Zero matches is a normal result carrying NoMatchMessage.
func Run(ctx context.Context, gw store.Gateway, c Criteria) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	preds := Predicates(c)
	sql, args := gw.Statement(func(tx *gorm.DB) *gorm.DB {
		q := tx.Table("asteroids a").
			Select(selectColumns).
			Joins("JOIN close_approach c ON a.id = c.neo_reference_id")
		return preds.Apply(q).Order("c.close_approach_date, a.name, c.id")
	})

	t, err := gw.Query(ctx, "filter.criteria", sql, args...)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}

	res := &Result{Criteria: c, Table: t, Count: t.Len()}
	if t.Empty() {
		res.Message = NoMatchMessage
	}
	return res, nil
}
