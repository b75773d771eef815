package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/blaisecz/health-insights/internal/healthdata"
	"github.com/blaisecz/health-insights/internal/stats"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultSeriesDays is what callers pass when the user gives no day count.
	DefaultSeriesDays = 7
	// MaxSeriesDays bounds a single series or range request.
	MaxSeriesDays = 365
	// DefaultMaxConcurrentDays caps in-flight days of a series fan-out.
	DefaultMaxConcurrentDays = 4
)

// SeriesBuilder builds ordered per-day series and range aggregates ending today.
type SeriesBuilder interface {
	// BuildSeries returns one value per day for the selected metric, oldest first.
	BuildSeries(ctx context.Context, kind domain.SeriesKind, days int) (*domain.Series, error)
	// BuildRange aggregates full daily records over the range.
	BuildRange(ctx context.Context, days int) (*domain.WeeklyAggregate, error)
}

// SeriesConfig configures a SeriesBuilder.
type SeriesConfig struct {
	Location          *time.Location
	MaxConcurrentDays int
	Trend             TrendConfig
	// Now defaults to time.Now.
	Now func() time.Time
}

type seriesBuilder struct {
	aggregator DailyAggregator
	querier    MetricFetcher
	loc        *time.Location
	limit      int
	trend      TrendConfig
	now        func() time.Time
}

// NewSeriesBuilder creates a SeriesBuilder over the aggregator and querier.
func NewSeriesBuilder(aggregator DailyAggregator, querier MetricFetcher, cfg SeriesConfig) SeriesBuilder {
	b := &seriesBuilder{
		aggregator: aggregator,
		querier:    querier,
		loc:        cfg.Location,
		limit:      cfg.MaxConcurrentDays,
		trend:      cfg.Trend,
		now:        cfg.Now,
	}
	if b.loc == nil {
		b.loc = time.UTC
	}
	if b.limit <= 0 {
		b.limit = DefaultMaxConcurrentDays
	}
	if b.trend.Rules == nil {
		b.trend = DefaultTrendConfig()
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// dates returns the calendar days of the range, oldest first, ending today.
func (b *seriesBuilder) dates(days int) []time.Time {
	today := domain.StartOfDay(b.now(), b.loc)
	out := make([]time.Time, days)
	for i := range out {
		out[i] = today.AddDate(0, 0, i-(days-1))
	}
	return out
}

// checkDays rejects day counts outside 1..MaxSeriesDays. A series of N days
// has exactly N values, so there is no implicit default here.
func checkDays(days int) (int, error) {
	if days < 1 {
		return 0, fmt.Errorf("%w: days must be at least 1", domain.ErrInvalidInput)
	}
	if days > MaxSeriesDays {
		return 0, fmt.Errorf("%w: days must be at most %d", domain.ErrInvalidInput, MaxSeriesDays)
	}
	return days, nil
}

func (b *seriesBuilder) BuildSeries(ctx context.Context, kind domain.SeriesKind, days int) (*domain.Series, error) {
	if _, err := domain.ParseSeriesKind(string(kind)); err != nil {
		return nil, err
	}
	days, err := checkDays(days)
	if err != nil {
		return nil, err
	}

	tracer := otel.Tracer("health-insights/series")
	ctx, span := tracer.Start(ctx, "SeriesBuilder.BuildSeries",
		trace.WithAttributes(
			attribute.String("series.kind", string(kind)),
			attribute.Int("series.days", days),
		),
	)
	defer span.End()

	dates := b.dates(days)
	values := make([]domain.DailyValue, days)
	dayErrs := make([]error, days)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.limit)
	for i, date := range dates {
		g.Go(func() error {
			v, err := b.dayValue(gctx, kind, date)
			if err != nil {
				if !errors.Is(err, domain.ErrSourceUnavailable) {
					return err
				}
				dayErrs[i] = err
				v = 0
			}
			// placed by index so completion order never affects ordering
			values[i] = domain.DailyValue{Date: date, Value: v}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build series failed")
		return nil, err
	}

	failures, err := collectFailures(ctx, dates, dayErrs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "source unavailable for every day")
		return nil, err
	}

	unit := domain.UnitHour
	if metric, ok := kind.Metric(); ok {
		unit, _ = healthdata.UnitAndOp(metric)
	}

	return &domain.Series{
		Kind:     kind,
		Unit:     unit,
		Values:   values,
		Average:  stats.Round2(stats.Mean(rawValues(values), kind.ZeroIsMissing())),
		Trend:    ComputeTrend(kind, values, b.trend),
		Failures: failures,
	}, nil
}

// dayValue fetches the single scalar a series needs for date. A failed query
// is the whole fan-out for that day, so it escalates to a SourceError.
func (b *seriesBuilder) dayValue(ctx context.Context, kind domain.SeriesKind, date time.Time) (float64, error) {
	if kind == domain.SeriesSleepHours {
		summary, err := b.aggregator.FetchSleep(ctx, date)
		if err != nil {
			return 0, err
		}
		return summary.Hours(), nil
	}

	metric, _ := kind.Metric()
	out, err := b.querier.Fetch(ctx, metric, domain.DayWindow(date, b.loc))
	if err != nil {
		var qe *domain.QueryError
		if errors.As(err, &qe) {
			return 0, &domain.SourceError{Kind: qe.Kind, Cause: qe}
		}
		return 0, err
	}
	return out.Value, nil
}

// collectFailures lists failed days in date order. When every day failed the
// first failure is returned as the error.
func collectFailures(ctx context.Context, dates []time.Time, dayErrs []error) ([]domain.DayFailure, error) {
	var failures []domain.DayFailure
	for i, err := range dayErrs {
		if err == nil {
			continue
		}
		failures = append(failures, domain.DayFailure{Date: dates[i], Error: err.Error(), Err: err})
	}
	if len(failures) > 0 && len(failures) == len(dates) {
		return nil, failures[0].Err
	}
	if len(failures) > 0 {
		zerolog.Ctx(ctx).Warn().Int("failed_days", len(failures)).Int("days", len(dates)).Msg("series built with failed days")
	}
	return failures, nil
}

func (b *seriesBuilder) BuildRange(ctx context.Context, days int) (*domain.WeeklyAggregate, error) {
	days, err := checkDays(days)
	if err != nil {
		return nil, err
	}

	tracer := otel.Tracer("health-insights/series")
	ctx, span := tracer.Start(ctx, "SeriesBuilder.BuildRange",
		trace.WithAttributes(attribute.Int("range.days", days)),
	)
	defer span.End()

	dates := b.dates(days)
	records := make([]*domain.DailyHealthRecord, days)
	dayErrs := make([]error, days)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.limit)
	for i, date := range dates {
		g.Go(func() error {
			record, err := b.aggregator.AggregateDay(gctx, date)
			if err != nil {
				if !errors.Is(err, domain.ErrSourceUnavailable) {
					return err
				}
				dayErrs[i] = err
				return nil
			}
			records[i] = record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build range failed")
		return nil, err
	}

	failures, err := collectFailures(ctx, dates, dayErrs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "source unavailable for every day")
		return nil, err
	}

	return b.aggregateRange(dates, records, failures), nil
}

var rangeSeriesKinds = []domain.SeriesKind{
	domain.SeriesSteps,
	domain.SeriesActiveEnergy,
	domain.SeriesExerciseMinutes,
	domain.SeriesSleepHours,
	domain.SeriesRestingHR,
	domain.SeriesAvgHR,
	domain.SeriesHRV,
}

func recordValue(kind domain.SeriesKind, r *domain.DailyHealthRecord) float64 {
	if r == nil {
		return 0
	}
	switch kind {
	case domain.SeriesSteps:
		return r.Activity.Steps
	case domain.SeriesActiveEnergy:
		return r.Activity.ActiveEnergy
	case domain.SeriesExerciseMinutes:
		return r.Activity.ExerciseMinutes
	case domain.SeriesSleepHours:
		return r.Sleep.Hours()
	case domain.SeriesRestingHR:
		return r.Heart.RestingHR
	case domain.SeriesAvgHR:
		return r.Heart.AvgHR
	case domain.SeriesHRV:
		if r.Heart.HRV != nil {
			return *r.Heart.HRV
		}
	}
	return 0
}

func hasAnyData(r *domain.DailyHealthRecord) bool {
	return r != nil && (r.Sleep != nil ||
		r.Activity.Steps > 0 ||
		r.Activity.ActiveEnergy > 0 ||
		r.Activity.TotalEnergy > 0 ||
		r.Activity.Distance > 0 ||
		r.Activity.ExerciseMinutes > 0 ||
		r.Activity.StandHours > 0 ||
		len(r.Activity.Workouts) > 0 ||
		r.Heart.RestingHR > 0 ||
		r.Heart.AvgHR > 0 ||
		r.Heart.HRV != nil)
}

func (b *seriesBuilder) aggregateRange(dates []time.Time, records []*domain.DailyHealthRecord, failures []domain.DayFailure) *domain.WeeklyAggregate {
	agg := &domain.WeeklyAggregate{
		From:     dates[0],
		To:       dates[len(dates)-1].AddDate(0, 0, 1),
		Days:     len(dates),
		Records:  make([]domain.DailyHealthRecord, 0, len(records)),
		Series:   make(map[domain.SeriesKind][]domain.DailyValue, len(rangeSeriesKinds)),
		Trends:   make(map[domain.SeriesKind]domain.Trend, len(rangeSeriesKinds)),
		Failures: failures,
	}

	for _, r := range records {
		if r == nil {
			continue
		}
		agg.Records = append(agg.Records, *r)
		if hasAnyData(r) {
			agg.DaysWithData++
		}
		agg.TotalExerciseMinutes += r.Activity.ExerciseMinutes
		agg.TotalWorkouts += len(r.Activity.Workouts)
	}

	for _, kind := range rangeSeriesKinds {
		values := make([]domain.DailyValue, len(dates))
		for i, date := range dates {
			values[i] = domain.DailyValue{Date: date, Value: recordValue(kind, records[i])}
		}
		agg.Series[kind] = values
		agg.Trends[kind] = ComputeTrend(kind, values, b.trend)
	}

	mean := func(kind domain.SeriesKind) float64 {
		return stats.Round2(stats.Mean(rawValues(agg.Series[kind]), kind.ZeroIsMissing()))
	}
	agg.AvgSteps = mean(domain.SeriesSteps)
	agg.AvgSleepHours = mean(domain.SeriesSleepHours)
	agg.AvgRestingHR = mean(domain.SeriesRestingHR)
	agg.AvgHRV = mean(domain.SeriesHRV)
	agg.AvgActiveEnergy = mean(domain.SeriesActiveEnergy)
	agg.TotalExerciseMinutes = stats.Round2(agg.TotalExerciseMinutes)

	return agg
}
