package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- mock provider ---

type mockFactProvider struct {
	fact  Fact
	err   error
	calls int
}

func (m *mockFactProvider) FetchFact(_ context.Context) (Fact, error) {
	m.calls++
	return m.fact, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- tests ---

func TestLookupFact_NilProvider(t *testing.T) {
	result := LookupFact(context.Background(), nil, discardLogger())

	assert.False(t, result.Available)
	assert.Equal(t, PlaceholderExplanation, result.Fact.Explanation)
	assert.Empty(t, result.Fact.ImageURL)
	assert.Empty(t, result.Fact.Title)
}

func TestLookupFact_Success(t *testing.T) {
	p := &mockFactProvider{fact: Fact{
		Title:       "The Pillars of Creation",
		Explanation: "Columns of cold gas and dust.",
		ImageURL:    "https://apod.nasa.gov/apod/image/pillars.jpg",
		Date:        "2025-03-14",
	}}

	result := LookupFact(context.Background(), p, discardLogger())

	assert.True(t, result.Available)
	assert.Equal(t, "The Pillars of Creation", result.Fact.Title)
	assert.Equal(t, "https://apod.nasa.gov/apod/image/pillars.jpg", result.Fact.ImageURL)
	assert.Equal(t, 1, p.calls)
}

func TestLookupFact_ErrorDegrades(t *testing.T) {
	p := &mockFactProvider{err: errors.New("connection refused")}

	result := LookupFact(context.Background(), p, discardLogger())

	assert.False(t, result.Available)
	assert.Equal(t, PlaceholderFact(), result.Fact)
}

func TestLookupFact_MalformedPayloadDegrades(t *testing.T) {
	p := &mockFactProvider{fact: Fact{ImageURL: "https://example.com/x.jpg"}}

	result := LookupFact(context.Background(), p, discardLogger())

	assert.False(t, result.Available)
	assert.Empty(t, result.Fact.ImageURL)
	assert.Equal(t, PlaceholderExplanation, result.Fact.Explanation)
}
