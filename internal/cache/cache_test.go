package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (*domain.CachedInsight, error) {
	return nil, errors.New("connection refused")
}
func (failingStore) Put(context.Context, *domain.CachedInsight) error { return errors.New("connection refused") }
func (failingStore) Clear(context.Context) error                      { return errors.New("connection refused") }

const key = domain.CacheKey("daily_overview_today")

func newTestCache(start time.Time) (*InsightCache, *fakeClock, *MemoryStore) {
	clock := &fakeClock{now: start}
	store := NewMemoryStore(8)
	return New(store, WithClock(clock.Now)), clock, store
}

func TestInsightCache_HitWithinSameBuckets(t *testing.T) {
	ctx := context.Background()
	c, clock, _ := newTestCache(time.Date(2024, 5, 10, 14, 5, 0, 0, time.UTC))

	require.NoError(t, c.Put(ctx, key, "Good day.", 42))
	clock.Set(time.Date(2024, 5, 10, 14, 55, 0, 0, time.UTC))

	for i := 0; i < 2; i++ {
		text, ok := c.Get(ctx, key, 42)
		assert.True(t, ok)
		assert.Equal(t, "Good day.", text)
	}
}

func TestInsightCache_Misses(t *testing.T) {
	start := time.Date(2024, 5, 10, 23, 59, 0, 0, time.UTC)

	tests := []struct {
		name        string
		at          time.Time
		fingerprint uint64
	}{
		{name: "fingerprint changed", at: start.Add(10 * time.Second), fingerprint: 43},
		{name: "day boundary", at: time.Date(2024, 5, 11, 0, 1, 0, 0, time.UTC), fingerprint: 42},
		{name: "same hour next day", at: start.AddDate(0, 0, 1), fingerprint: 42},
		{name: "hour changed", at: start.Add(-time.Hour), fingerprint: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			c, clock, _ := newTestCache(start)
			require.NoError(t, c.Put(ctx, key, "cached", 42))

			clock.Set(tt.at)
			text, ok := c.Get(ctx, key, tt.fingerprint)
			assert.False(t, ok)
			assert.Empty(t, text)
		})
	}
}

func TestInsightCache_UnknownKeyIsMiss(t *testing.T) {
	c, _, _ := newTestCache(time.Now())
	_, ok := c.Get(context.Background(), "metric_hrv", 1)
	assert.False(t, ok)
}

func TestInsightCache_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	c, _, store := newTestCache(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))

	require.NoError(t, c.Put(ctx, key, "first", 1))
	require.NoError(t, c.Put(ctx, key, "second", 2))

	_, ok := c.Get(ctx, key, 1)
	assert.False(t, ok)
	text, ok := c.Get(ctx, key, 2)
	assert.True(t, ok)
	assert.Equal(t, "second", text)
	assert.Equal(t, int64(1), store.Len())
}

func TestInsightCache_ClearAll(t *testing.T) {
	ctx := context.Background()
	c, _, store := newTestCache(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, c.Put(ctx, key, "a", 1))
	require.NoError(t, c.Put(ctx, "metric_hrv", "b", 1))

	require.NoError(t, c.ClearAll(ctx))

	_, ok := c.Get(ctx, key, 1)
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

func TestInsightCache_StoreErrorsDegradeToMiss(t *testing.T) {
	c := New(failingStore{})
	_, ok := c.Get(context.Background(), key, 1)
	assert.False(t, ok)
	assert.Error(t, c.Put(context.Background(), key, "x", 1))
}

func TestInsightCache_BucketsUseLocation(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)
	c := New(NewMemoryStore(8), WithLocation(warsaw))

	hour, day := c.Buckets(time.Date(2024, 5, 10, 22, 30, 0, 0, time.UTC))
	assert.Equal(t, 0, hour)
	assert.Equal(t, "2024-05-11", day)
}

func TestInsightCache_ConcurrentPutsSameKey(t *testing.T) {
	ctx := context.Background()
	c, _, store := newTestCache(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = c.Put(ctx, key, fmt.Sprintf("text-%d", i), uint64(i))
		}(i)
	}
	wg.Wait()

	entry, err := store.Get(ctx, string(key))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("text-%d", entry.Fingerprint), entry.Text)
	assert.Equal(t, int64(1), store.Len())
}
