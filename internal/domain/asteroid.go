package domain

import (
	"errors"
	"fmt"
	"math"
)

// DateLayout is the calendar date format used for close_approach_date.
const DateLayout = "2006-01-02"

// OrbitingBodyEarth is the orbiting_body value for Earth approaches.
const OrbitingBodyEarth = "Earth"

// Asteroid is one near-Earth object. Lower AbsoluteMagnitudeH means brighter.
type Asteroid struct {
	ID                     int64   `gorm:"column:id;primaryKey;autoIncrement:false" csv:"id"`
	Name                   string  `gorm:"column:name;size:255;not null" csv:"name"`
	AbsoluteMagnitudeH     float64 `gorm:"column:absolute_magnitude_h" csv:"absolute_magnitude_h"`
	EstimatedDiameterMinKM float64 `gorm:"column:estimated_diameter_min_km" csv:"estimated_diameter_min_km"`
	EstimatedDiameterMaxKM float64 `gorm:"column:estimated_diameter_max_km" csv:"estimated_diameter_max_km"`
	IsPotentiallyHazardous bool    `gorm:"column:is_potentially_hazardous_asteroid;index" csv:"is_potentially_hazardous_asteroid"`
}

// TableName maps Asteroid to the asteroids table.
func (Asteroid) TableName() string { return "asteroids" }

// Validate reports a diameter range that violates min <= max.
func (a Asteroid) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("asteroid %d: %w", a.ID, ErrMissingName)
	}
	if a.EstimatedDiameterMinKM > a.EstimatedDiameterMaxKM {
		return fmt.Errorf("asteroid %d: min %.6f > max %.6f: %w",
			a.ID, a.EstimatedDiameterMinKM, a.EstimatedDiameterMaxKM, ErrDiameterRange)
	}
	return nil
}

// CloseApproach is one recorded passage of an asteroid by an orbiting body.
type CloseApproach struct {
	ID                   int64   `gorm:"column:id;primaryKey;autoIncrement" csv:"-"`
	NeoReferenceID       int64   `gorm:"column:neo_reference_id;index;not null" csv:"neo_reference_id"`
	CloseApproachDate    string  `gorm:"column:close_approach_date;type:date;index" csv:"close_approach_date"`
	RelativeVelocityKMPH float64 `gorm:"column:relative_velocity_kmph" csv:"relative_velocity_kmph"`
	MissDistanceKM       float64 `gorm:"column:miss_distance_km" csv:"miss_distance_km"`
	MissDistanceLunar    float64 `gorm:"column:miss_distance_lunar" csv:"miss_distance_lunar"`
	Astronomical         float64 `gorm:"column:astronomical" csv:"astronomical"`
	OrbitingBody         string  `gorm:"column:orbiting_body;size:32" csv:"orbiting_body"`
}

// TableName maps CloseApproach to the close_approach table.
func (CloseApproach) TableName() string { return "close_approach" }

// Sentinel errors for seed-time validation.
var (
	ErrMissingName     = errors.New("missing name")
	ErrDiameterRange   = errors.New("estimated diameter min exceeds max")
	ErrMissingDistance = errors.New("no miss distance in any unit")
)

// Normalize fills whichever distance units are missing from the one that is
// present, preferring kilometers, then lunar distance, then AU. Units that are
// all present are left untouched.
func (c *CloseApproach) Normalize() error {
	switch {
	case c.MissDistanceKM > 0:
	case c.MissDistanceLunar > 0:
		c.MissDistanceKM = LunarToKM(c.MissDistanceLunar)
	case c.Astronomical > 0:
		c.MissDistanceKM = AUToKM(c.Astronomical)
	default:
		return fmt.Errorf("approach of %d on %s: %w", c.NeoReferenceID, c.CloseApproachDate, ErrMissingDistance)
	}
	if c.MissDistanceLunar <= 0 {
		c.MissDistanceLunar = KMToLunar(c.MissDistanceKM)
	}
	if c.Astronomical <= 0 {
		c.Astronomical = KMToAU(c.MissDistanceKM)
	}
	if c.OrbitingBody == "" {
		c.OrbitingBody = OrbitingBodyEarth
	}
	return nil
}

// Consistent reports whether the three distance units agree within a relative tolerance.
func (c CloseApproach) Consistent(tolerance float64) bool {
	if c.MissDistanceKM <= 0 {
		return false
	}
	return relClose(KMToLunar(c.MissDistanceKM), c.MissDistanceLunar, tolerance) &&
		relClose(KMToAU(c.MissDistanceKM), c.Astronomical, tolerance)
}

func relClose(want, got, tolerance float64) bool {
	if want == 0 {
		return got == 0
	}
	return math.Abs(want-got)/math.Abs(want) <= tolerance
}
