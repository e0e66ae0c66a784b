package apod

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/neo-explorer-service/internal/domain"
	"github.com/couchcryptid/neo-explorer-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingProvider struct {
	calls   atomic.Int32
	fact    domain.Fact
	err     error
	release chan struct{}
}

func (m *countingProvider) FetchFact(context.Context) (domain.Fact, error) {
	m.calls.Add(1)
	if m.release != nil {
		<-m.release
	}
	return m.fact, m.err
}

func freezeClock(t *testing.T) *clockwork.FakeClock {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 16, 23, 0, 0, 0, time.UTC))
	domain.SetClock(clock)
	t.Cleanup(func() { domain.SetClock(nil) })
	return clock
}

// --- CachedProvider tests ---

func TestCachedProvider_HitWithinDay(t *testing.T) {
	freezeClock(t)
	inner := &countingProvider{fact: domain.Fact{Title: "Nebula", Explanation: "Gas."}}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedProvider(inner, time.Hour, metrics)

	f1, err := cached.FetchFact(context.Background())
	require.NoError(t, err)
	f2, err := cached.FetchFact(context.Background())
	require.NoError(t, err)

	assert.Equal(t, f1, f2)
	assert.Equal(t, int32(1), inner.calls.Load(), "should only call inner once")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FactCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FactCache.WithLabelValues("miss")), 0)
}

func TestCachedProvider_NewDayRefetches(t *testing.T) {
	clock := freezeClock(t)
	inner := &countingProvider{fact: domain.Fact{Title: "Nebula"}}
	cached := NewCachedProvider(inner, 48*time.Hour, observability.NewMetricsForTesting())

	_, err := cached.FetchFact(context.Background())
	require.NoError(t, err)

	clock.Advance(2 * time.Hour) // crosses midnight UTC
	_, err = cached.FetchFact(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCachedProvider_FailuresAreNotCached(t *testing.T) {
	freezeClock(t)
	inner := &countingProvider{err: errors.New("rate limited")}
	cached := NewCachedProvider(inner, time.Hour, observability.NewMetricsForTesting())

	_, err := cached.FetchFact(context.Background())
	require.Error(t, err)

	inner.err = nil
	inner.fact = domain.Fact{Title: "Recovered"}
	fact, err := cached.FetchFact(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Recovered", fact.Title)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCachedProvider_ConcurrentMissesShareOneRequest(t *testing.T) {
	freezeClock(t)
	inner := &countingProvider{fact: domain.Fact{Title: "Comet"}, release: make(chan struct{})}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedProvider(inner, time.Hour, metrics)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]domain.Fact, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, err := cached.FetchFact(context.Background())
			assert.NoError(t, err)
			results[i] = f
		}()
	}

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.FactCache.WithLabelValues("miss")) == callers
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(inner.release)
	wg.Wait()

	assert.Equal(t, int32(1), inner.calls.Load())
	for _, f := range results {
		assert.Equal(t, "Comet", f.Title)
	}
}

func TestCachedProvider_LookupFactDegrades(t *testing.T) {
	freezeClock(t)
	inner := &countingProvider{err: errors.New("boom")}
	cached := NewCachedProvider(inner, time.Hour, observability.NewMetricsForTesting())

	res := domain.LookupFact(context.Background(), cached, slogDiscard())
	assert.False(t, res.Available)
	assert.Equal(t, domain.PlaceholderExplanation, res.Fact.Explanation)
}
