// Package cache keeps generated insight texts valid for one hour bucket, one
// day bucket and one input fingerprint.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/blaisecz/health-insights/internal/metrics"
	"github.com/rs/zerolog"
)

// Store persists cached insights. Get returns domain.ErrNotFound for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (*domain.CachedInsight, error)
	Put(ctx context.Context, entry *domain.CachedInsight) error
	Clear(ctx context.Context) error
}

// InsightCache wraps a Store with the validity predicate. Reads are lock-free;
// writes to the same key are serialized.
type InsightCache struct {
	store   Store
	now     func() time.Time
	loc     *time.Location
	metrics metrics.Recorder

	locks sync.Map // key -> *sync.Mutex
}

// Option configures an InsightCache.
type Option func(*InsightCache)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *InsightCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLocation sets the zone hour and day buckets are computed in.
func WithLocation(loc *time.Location) Option {
	return func(c *InsightCache) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithMetrics records hits and misses.
func WithMetrics(m metrics.Recorder) Option {
	return func(c *InsightCache) {
		if m != nil {
			c.metrics = m
		}
	}
}

// New creates an InsightCache over store.
func New(store Store, opts ...Option) *InsightCache {
	c := &InsightCache{
		store:   store,
		now:     time.Now,
		loc:     time.UTC,
		metrics: metrics.Noop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Buckets returns the hour and day bucket of t in the cache's location.
func (c *InsightCache) Buckets(t time.Time) (hour int, day string) {
	local := t.In(c.loc)
	return local.Hour(), local.Format(time.DateOnly)
}

// Get returns the cached text iff an entry exists for key and its hour bucket,
// day bucket and fingerprint all match the current ones. Store failures are
// logged and reported as a miss.
func (c *InsightCache) Get(ctx context.Context, key domain.CacheKey, fingerprint uint64) (string, bool) {
	logger := zerolog.Ctx(ctx).With().Str("cache_key", string(key)).Logger()

	entry, err := c.store.Get(ctx, string(key))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn().Err(err).Msg("insight cache read failed")
		}
		c.miss(&logger, "absent")
		return "", false
	}

	hour, day := c.Buckets(c.now())
	switch {
	case entry.DayBucket != day:
		c.miss(&logger, "day")
	case entry.HourBucket != hour:
		c.miss(&logger, "hour")
	case entry.Fingerprint != fingerprint:
		c.miss(&logger, "fingerprint")
	default:
		c.metrics.IncCacheHits()
		logger.Debug().Msg("insight cache hit")
		return entry.Text, true
	}
	return "", false
}

func (c *InsightCache) miss(logger *zerolog.Logger, reason string) {
	c.metrics.IncCacheMisses()
	logger.Debug().Str("reason", reason).Msg("insight cache miss")
}

// Put overwrites the entry for key with text under the current buckets and fingerprint.
func (c *InsightCache) Put(ctx context.Context, key domain.CacheKey, text string, fingerprint uint64) error {
	unlock := c.lock(key)
	defer unlock()

	now := c.now()
	hour, day := c.Buckets(now)
	return c.store.Put(ctx, &domain.CachedInsight{
		Key:         string(key),
		Text:        text,
		HourBucket:  hour,
		DayBucket:   day,
		Fingerprint: fingerprint,
		ProducedAt:  now.UTC(),
	})
}

// ClearAll removes every entry.
func (c *InsightCache) ClearAll(ctx context.Context) error {
	return c.store.Clear(ctx)
}

func (c *InsightCache) lock(key domain.CacheKey) func() {
	v, _ := c.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
