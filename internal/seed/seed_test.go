package seed

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/blaisecz/health-insights/internal/healthdata"
	"github.com/blaisecz/health-insights/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seedNow = time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

func generate(days int) []domain.HealthSample {
	return Generate(Options{Days: days, Now: seedNow, Rand: rand.New(rand.NewSource(7))})
}

type fakeRepository struct {
	stored []domain.HealthSample
	err    error
}

func (f *fakeRepository) CreateBatch(ctx context.Context, samples []domain.HealthSample) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.stored = append(f.stored, samples...)
	return int64(len(samples)), nil
}

func (f *fakeRepository) Samples(ctx context.Context, kind domain.MetricKind, window domain.TimeWindow) ([]domain.HealthSample, error) {
	var out []domain.HealthSample
	for _, s := range f.stored {
		if s.Kind == kind && !s.StartAt.Before(window.Start) && s.StartAt.Before(window.End) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(f.stored)), nil
}

func TestGenerate_ExternalIDsUniqueAndStable(t *testing.T) {
	first := generate(5)
	second := generate(5)
	require.Equal(t, len(first), len(second))

	seen := make(map[string]bool, len(first))
	for i, s := range first {
		require.NotNil(t, s.ExternalID)
		assert.False(t, seen[*s.ExternalID], "duplicate external id %s", *s.ExternalID)
		seen[*s.ExternalID] = true
		assert.Equal(t, *s.ExternalID, *second[i].ExternalID)
		assert.False(t, s.EndAt.Before(s.StartAt))
	}
}

func TestGenerate_UnitsMatchKinds(t *testing.T) {
	for _, s := range generate(3) {
		if s.Kind.IsSleepStage() || s.Kind == domain.KindWorkout {
			assert.Empty(t, s.Unit, s.Kind)
			continue
		}
		unit, _ := healthdata.UnitAndOp(s.Kind)
		assert.Equal(t, unit, s.Unit, s.Kind)
	}
}

func TestGenerate_SleepFallsInSleepWindow(t *testing.T) {
	samples := generate(1)
	window := domain.SleepWindow(seedNow, time.UTC)

	var stages int
	for _, s := range samples {
		if !s.Kind.IsSleepStage() {
			continue
		}
		stages++
		assert.False(t, s.StartAt.Before(window.Start))
		assert.True(t, s.StartAt.Before(window.End))
	}
	assert.Greater(t, stages, 4)
}

func TestRun_AggregatesIntoPlausibleDays(t *testing.T) {
	repo := &fakeRepository{}
	inserted, err := Run(context.Background(), repo, Options{Days: 7, Now: seedNow, Rand: rand.New(rand.NewSource(3))})
	require.NoError(t, err)
	assert.Equal(t, int64(len(repo.stored)), inserted)

	aggregator := service.NewDailyAggregator(healthdata.NewQuerier(repo), time.UTC)
	for i := 0; i < 7; i++ {
		record, err := aggregator.AggregateDay(context.Background(), seedNow.AddDate(0, 0, -i))
		require.NoError(t, err)
		require.NotNil(t, record.Sleep)
		assert.InDelta(t, 7.5, record.Sleep.Hours(), 2)
		assert.Greater(t, record.Activity.Steps, 2000.0)
		assert.Greater(t, record.Heart.RestingHR, 0.0)
		require.NotNil(t, record.Heart.HRV)
	}
}

func TestRun_StoreFailure(t *testing.T) {
	repo := &fakeRepository{err: assert.AnError}
	_, err := Run(context.Background(), repo, Options{Days: 1, Now: seedNow})
	assert.ErrorIs(t, err, assert.AnError)
}
