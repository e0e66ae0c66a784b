package apod

import (
	"context"
	"time"

	"github.com/couchcryptid/neo-explorer-service/internal/domain"
	"github.com/couchcryptid/neo-explorer-service/internal/observability"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// CachedProvider wraps a FactProvider with one cache entry per UTC calendar
// day. Concurrent misses for the same day share a single upstream request.
type CachedProvider struct {
	inner   domain.FactProvider
	cache   *gocache.Cache
	group   singleflight.Group
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a fact provider.
func NewCachedProvider(inner domain.FactProvider, ttl time.Duration, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		// No janitor goroutine; expired entries are swept on misses.
		cache:   gocache.New(ttl, 0),
		ttl:     ttl,
		metrics: metrics,
	}
}

// FetchFact returns today's cached fact or fetches it.
func (c *CachedProvider) FetchFact(ctx context.Context) (domain.Fact, error) {
	key := domain.Today()
	if v, ok := c.cache.Get(key); ok {
		c.metrics.FactCache.WithLabelValues("hit").Inc()
		return v.(domain.Fact), nil
	}
	c.metrics.FactCache.WithLabelValues("miss").Inc()

	v, err, _ := c.group.Do(key, func() (any, error) {
		fact, err := c.inner.FetchFact(ctx)
		if err != nil {
			return domain.Fact{}, err
		}
		// Only cache successes so a failed day can be retried.
		c.cache.DeleteExpired()
		c.cache.Set(key, fact, c.ttl)
		return fact, nil
	})
	if err != nil {
		return domain.Fact{}, err
	}
	return v.(domain.Fact), nil
}
