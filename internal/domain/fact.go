package domain

import (
	"context"
	"errors"
	"log/slog"
)

// PlaceholderExplanation is shown when the fact of the day cannot be fetched.
const PlaceholderExplanation = "Could not retrieve today's NASA fact."

// ErrMalformedFact is returned when a fact payload has neither title nor explanation.
var ErrMalformedFact = errors.New("malformed fact payload")

// Fact is one "fact of the day" entry. ImageURL is empty when there is no
// still image to show.
type Fact struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
	ImageURL    string `json:"image_url,omitempty"`
	Date        string `json:"date,omitempty"`
}

// FactProvider fetches the current fact of the day.
type FactProvider interface {
	FetchFact(ctx context.Context) (Fact, error)
}

// FactResult is the outcome of a fact lookup. Fact is always renderable;
// Available is false when it is the placeholder.
type FactResult struct {
	Fact      Fact
	Available bool
}

// PlaceholderFact returns the fixed fallback payload with no title or image.
func PlaceholderFact() Fact {
	return Fact{Explanation: PlaceholderExplanation}
}

// LookupFact attempts to fetch the fact of the day. If provider is nil or the
// lookup fails, the placeholder is returned (graceful degradation).
func LookupFact(ctx context.Context, provider FactProvider, logger *slog.Logger) FactResult {
	if provider == nil {
		return FactResult{Fact: PlaceholderFact()}
	}

	fact, err := provider.FetchFact(ctx)
	if err == nil && fact.Title == "" && fact.Explanation == "" {
		err = ErrMalformedFact
	}
	if err != nil {
		logger.Warn("fact of the day lookup failed", "error", err)
		return FactResult{Fact: PlaceholderFact()}
	}
	return FactResult{Fact: fact, Available: true}
}
