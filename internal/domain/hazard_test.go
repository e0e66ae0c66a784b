package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHazardFilter(t *testing.T) {
	tests := []struct {
		in   string
		want HazardFilter
	}{
		{"", HazardAll},
		{"All", HazardAll},
		{"all", HazardAll},
		{"Yes", HazardOnly},
		{"hazardous", HazardOnly},
		{"Hazardous", HazardOnly},
		{"Only Hazardous", HazardOnly},
		{"No", HazardExcluded},
		{"non_hazardous", HazardExcluded},
		{"Non-Hazardous", HazardExcluded},
		{"Only Non-Hazardous", HazardExcluded},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHazardFilter(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHazardFilter_Invalid(t *testing.T) {
	_, err := ParseHazardFilter("maybe")
	require.ErrorIs(t, err, ErrInvalidHazardFilter)
}

func TestHazardFilterRoundTrip(t *testing.T) {
	for _, h := range HazardFilters {
		got, err := ParseHazardFilter(h.Key())
		require.NoError(t, err)
		assert.Equal(t, h, got)
	}
}

func TestHazardFilterFlagAndMatches(t *testing.T) {
	_, ok := HazardAll.Flag()
	assert.False(t, ok)

	v, ok := HazardOnly.Flag()
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = HazardExcluded.Flag()
	assert.True(t, ok)
	assert.Equal(t, 0, v)

	assert.True(t, HazardAll.Matches(true))
	assert.True(t, HazardAll.Matches(false))
	assert.True(t, HazardOnly.Matches(true))
	assert.False(t, HazardOnly.Matches(false))
	assert.False(t, HazardExcluded.Matches(true))
	assert.True(t, HazardExcluded.Matches(false))
}

func TestYesNo(t *testing.T) {
	assert.Equal(t, "Yes", YesNo(true))
	assert.Equal(t, "No", YesNo(false))
}
