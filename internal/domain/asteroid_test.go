package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitConversions(t *testing.T) {
	assert.InDelta(t, 1.0, KMToLunar(LunarDistanceKM), 1e-12)
	assert.InDelta(t, 1.0, KMToAU(AstronomicalUnitKM), 1e-12)
	assert.InDelta(t, 384400.0, LunarToKM(1), 1e-9)
	assert.InDelta(t, 7479893.535, AUToKM(0.05), 1e-3)
	assert.InDelta(t, 0.25, KMToLunar(LunarToKM(0.25)), 1e-12)
}

func TestCloseApproachNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   CloseApproach
		km   float64
	}{
		{"from km", CloseApproach{MissDistanceKM: 768800}, 768800},
		{"from lunar", CloseApproach{MissDistanceLunar: 2}, 768800},
		{"from au", CloseApproach{Astronomical: 0.01}, 1495978.707},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.in
			require.NoError(t, c.Normalize())
			assert.InDelta(t, tt.km, c.MissDistanceKM, 1e-3)
			assert.True(t, c.Consistent(1e-9))
			assert.Equal(t, OrbitingBodyEarth, c.OrbitingBody)
		})
	}
}

func TestCloseApproachNormalize_KeepsExisting(t *testing.T) {
	c := CloseApproach{MissDistanceKM: 384400, MissDistanceLunar: 1, Astronomical: 0.00256955529, OrbitingBody: "Mars"}
	require.NoError(t, c.Normalize())
	assert.InDelta(t, 1.0, c.MissDistanceLunar, 0)
	assert.Equal(t, "Mars", c.OrbitingBody)
	assert.True(t, c.Consistent(1e-6))
}

func TestCloseApproachNormalize_NoDistance(t *testing.T) {
	c := CloseApproach{NeoReferenceID: 7, CloseApproachDate: "2024-01-01"}
	err := c.Normalize()
	require.ErrorIs(t, err, ErrMissingDistance)
}

func TestCloseApproachConsistent_Mismatch(t *testing.T) {
	c := CloseApproach{MissDistanceKM: 384400, MissDistanceLunar: 2, Astronomical: KMToAU(384400)}
	assert.False(t, c.Consistent(1e-6))
}

func TestAsteroidValidate(t *testing.T) {
	ok := Asteroid{ID: 1, Name: "433 Eros", EstimatedDiameterMinKM: 1, EstimatedDiameterMaxKM: 2}
	require.NoError(t, ok.Validate())

	bad := Asteroid{ID: 2, Name: "Bad", EstimatedDiameterMinKM: 3, EstimatedDiameterMaxKM: 2}
	require.ErrorIs(t, bad.Validate(), ErrDiameterRange)

	noName := Asteroid{ID: 3}
	require.ErrorIs(t, noName.Validate(), ErrMissingName)
}

func TestToday_UsesClock(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2025, time.June, 1, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))))
	defer SetClock(nil)

	assert.Equal(t, "2025-06-02", Today())
}
