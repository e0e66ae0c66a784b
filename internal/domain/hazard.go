package domain

import (
	"errors"
	"fmt"
	"strings"
)

// HazardFilter is the tri-state hazard selector shared by the filter screen
// and the hazard-aware catalog questions.
type HazardFilter int

const (
	HazardAll HazardFilter = iota
	HazardOnly
	HazardExcluded
)

// ErrInvalidHazardFilter is returned for an unrecognized hazard selector.
var ErrInvalidHazardFilter = errors.New("invalid hazard filter")

// HazardFilters lists the selector values in display order.
var HazardFilters = []HazardFilter{HazardAll, HazardOnly, HazardExcluded}

// ParseHazardFilter accepts the API keys ("all", "hazardous", "non_hazardous")
// as well as the screen labels ("All", "Yes", "No", "Only Hazardous",
// "Only Non-Hazardous", "Hazardous", "Non-Hazardous"). Empty means All.
func ParseHazardFilter(s string) (HazardFilter, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	switch key {
	case "", "all":
		return HazardAll, nil
	case "hazardous", "yes", "only_hazardous", "true", "1":
		return HazardOnly, nil
	case "non_hazardous", "no", "only_non_hazardous", "false", "0":
		return HazardExcluded, nil
	default:
		return HazardAll, fmt.Errorf("%w: %q", ErrInvalidHazardFilter, s)
	}
}

// Key returns the stable API value for the filter.
func (h HazardFilter) Key() string {
	switch h {
	case HazardOnly:
		return "hazardous"
	case HazardExcluded:
		return "non_hazardous"
	default:
		return "all"
	}
}

func (h HazardFilter) String() string { return h.Key() }

// MarshalText encodes the filter by its API key.
func (h HazardFilter) MarshalText() ([]byte, error) {
	return []byte(h.Key()), nil
}

// UnmarshalText accepts anything ParseHazardFilter does.
func (h *HazardFilter) UnmarshalText(b []byte) error {
	v, err := ParseHazardFilter(string(b))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// Flag returns the is_potentially_hazardous_asteroid value the filter selects
// and false for HazardAll, which selects no predicate.
func (h HazardFilter) Flag() (value int, ok bool) {
	switch h {
	case HazardOnly:
		return 1, true
	case HazardExcluded:
		return 0, true
	default:
		return 0, false
	}
}

// Matches reports whether an asteroid with the given flag passes the filter.
func (h HazardFilter) Matches(hazardous bool) bool {
	switch h {
	case HazardOnly:
		return hazardous
	case HazardExcluded:
		return !hazardous
	default:
		return true
	}
}

// YesNo renders a hazard flag the way detail boxes show it.
func YesNo(hazardous bool) string {
	if hazardous {
		return "Yes"
	}
	return "No"
}
