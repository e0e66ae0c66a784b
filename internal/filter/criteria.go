// Package filter turns the filter screen's controls into one parameterized
// query over asteroids joined with their close approaches.
package filter

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/neo-explorer-service/internal/domain"
)

// ErrInvalidCriteria is returned for malformed or out-of-range filter input.
var ErrInvalidCriteria = errors.New("invalid filter criteria")

// Query parameter names accepted by ParseCriteria.
const (
	ParamMaxMagnitude   = "max_magnitude"
	ParamMaxVelocity    = "max_velocity_kmph"
	ParamStartDate      = "start_date"
	ParamEndDate        = "end_date"
	ParamMaxMinDiameter = "max_min_diameter_km"
	ParamMaxMaxDiameter = "max_max_diameter_km"
	ParamMaxAU          = "max_au"
	ParamHazard         = "hazard"
)

// Criteria holds one submission of the filter screen. Every numeric field is
// an inclusive upper bound; the dates form an inclusive range.
type Criteria struct {
	MaxMagnitude     float64             `json:"max_magnitude"`
	MaxVelocityKMPH  float64             `json:"max_velocity_kmph"`
	StartDate        string              `json:"start_date"`
	EndDate          string              `json:"end_date"`
	MaxMinDiameterKM float64             `json:"max_min_diameter_km"`
	MaxMaxDiameterKM float64             `json:"max_max_diameter_km"`
	MaxAU            float64             `json:"max_au"`
	Hazard           domain.HazardFilter `json:"hazard"`
}

// Range is the allowed interval and slider step of one numeric control.
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// Bounds lists the allowed range of every numeric control.
type Bounds struct {
	Magnitude   Range `json:"max_magnitude"`
	Velocity    Range `json:"max_velocity_kmph"`
	MinDiameter Range `json:"max_min_diameter_km"`
	MaxDiameter Range `json:"max_max_diameter_km"`
	AU          Range `json:"max_au"`
}

// DefaultBounds returns the slider ranges of the filter screen.
func DefaultBounds() Bounds {
	return Bounds{
		Magnitude:   Range{Min: 13.82, Max: 33.0, Step: 0.1},
		Velocity:    Range{Min: 1418.22, Max: 200000.0, Step: 100.0},
		MinDiameter: Range{Min: 0.000799015, Max: 4.57673, Step: 0.01},
		MaxDiameter: Range{Min: 0.00178665, Max: 10.2339, Step: 0.01},
		AU:          Range{Min: 0.0000516453, Max: 0.499952, Step: 0.01},
	}
}

// Defaults returns the criteria the filter screen starts with.
func Defaults() Criteria {
	return Criteria{
		MaxMagnitude:     20.0,
		MaxVelocityKMPH:  90000.0,
		StartDate:        "2024-01-01",
		EndDate:          "2025-12-31",
		MaxMinDiameterKM: 2.0,
		MaxMaxDiameterKM: 5.0,
		MaxAU:            0.30,
		Hazard:           domain.HazardAll,
	}
}

// Widest returns criteria with every bound at the top of its range and the
// given date span.
func Widest(start, end string) Criteria {
	b := DefaultBounds()
	return Criteria{
		MaxMagnitude:     b.Magnitude.Max,
		MaxVelocityKMPH:  b.Velocity.Max,
		StartDate:        start,
		EndDate:          end,
		MaxMinDiameterKM: b.MinDiameter.Max,
		MaxMaxDiameterKM: b.MaxDiameter.Max,
		MaxAU:            b.AU.Max,
	}
}

// Narrowest returns criteria with every bound at the bottom of its range.
func Narrowest(start, end string) Criteria {
	b := DefaultBounds()
	return Criteria{
		MaxMagnitude:     b.Magnitude.Min,
		MaxVelocityKMPH:  b.Velocity.Min,
		StartDate:        start,
		EndDate:          end,
		MaxMinDiameterKM: b.MinDiameter.Min,
		MaxMaxDiameterKM: b.MaxDiameter.Min,
		MaxAU:            b.AU.Min,
	}
}

// ParseCriteria reads criteria from query parameters, starting from Defaults.
// A start date after the end date is accepted and matches nothing. The two
// diameter bounds are not checked against each other.
func ParseCriteria(q url.Values) (Criteria, error) {
	c := Defaults()

	fields := []struct {
		param string
		dst   *float64
	}{
		{ParamMaxMagnitude, &c.MaxMagnitude},
		{ParamMaxVelocity, &c.MaxVelocityKMPH},
		{ParamMaxMinDiameter, &c.MaxMinDiameterKM},
		{ParamMaxMaxDiameter, &c.MaxMaxDiameterKM},
		{ParamMaxAU, &c.MaxAU},
	}
	for _, f := range fields {
		s := q.Get(f.param)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Criteria{}, fmt.Errorf("%w: %s: not a number: %q", ErrInvalidCriteria, f.param, s)
		}
		*f.dst = v
	}

	for _, d := range []struct {
		param string
		dst   *string
	}{
		{ParamStartDate, &c.StartDate},
		{ParamEndDate, &c.EndDate},
	} {
		if s := q.Get(d.param); s != "" {
			*d.dst = s
		}
	}

	if s := q.Get(ParamHazard); s != "" {
		h, err := domain.ParseHazardFilter(s)
		if err != nil {
			return Criteria{}, fmt.Errorf("%w: %w", ErrInvalidCriteria, err)
		}
		c.Hazard = h
	}

	if err := c.Validate(); err != nil {
		return Criteria{}, err
	}
	return c, nil
}

// Validate checks every bound against DefaultBounds and both dates for format.
func (c Criteria) Validate() error {
	b := DefaultBounds()
	checks := []struct {
		param string
		v     float64
		rng   Range
	}{
		{ParamMaxMagnitude, c.MaxMagnitude, b.Magnitude},
		{ParamMaxVelocity, c.MaxVelocityKMPH, b.Velocity},
		{ParamMaxMinDiameter, c.MaxMinDiameterKM, b.MinDiameter},
		{ParamMaxMaxDiameter, c.MaxMaxDiameterKM, b.MaxDiameter},
		{ParamMaxAU, c.MaxAU, b.AU},
	}
	for _, ch := range checks {
		if ch.v < ch.rng.Min || ch.v > ch.rng.Max {
			return fmt.Errorf("%w: %s=%g outside [%g, %g]", ErrInvalidCriteria, ch.param, ch.v, ch.rng.Min, ch.rng.Max)
		}
	}
	for _, d := range [][2]string{{ParamStartDate, c.StartDate}, {ParamEndDate, c.EndDate}} {
		if _, err := time.Parse(domain.DateLayout, d[1]); err != nil {
			return fmt.Errorf("%w: %s: want YYYY-MM-DD, got %q", ErrInvalidCriteria, d[0], d[1])
		}
	}
	return nil
}

// Values encodes the criteria as query parameters accepted by ParseCriteria.
func (c Criteria) Values() url.Values {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return url.Values{
		ParamMaxMagnitude:   {f(c.MaxMagnitude)},
		ParamMaxVelocity:    {f(c.MaxVelocityKMPH)},
		ParamStartDate:      {c.StartDate},
		ParamEndDate:        {c.EndDate},
		ParamMaxMinDiameter: {f(c.MaxMinDiameterKM)},
		ParamMaxMaxDiameter: {f(c.MaxMaxDiameterKM)},
		ParamMaxAU:          {f(c.MaxAU)},
		ParamHazard:         {c.Hazard.Key()},
	}
}
