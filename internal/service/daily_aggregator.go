package service

import (
	"context"
	"errors"
	"time"

	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/blaisecz/health-insights/internal/healthdata"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// MetricFetcher issues one bounded-window metric query. *healthdata.Querier implements it.
type MetricFetcher interface {
	Fetch(ctx context.Context, kind domain.MetricKind, window domain.TimeWindow) (healthdata.Outcome, error)
}

// DailyAggregator assembles per-day health records from concurrent metric queries.
type DailyAggregator interface {
	// AggregateDay builds the record for date's calendar day.
	AggregateDay(ctx context.Context, date time.Time) (*domain.DailyHealthRecord, error)
	// FetchSleep builds only the sleep summary for the night ending on date.
	// A nil summary with a nil error means no sleep was recorded.
	FetchSleep(ctx context.Context, date time.Time) (*domain.SleepSummary, error)
}

// dayMetricKinds are queried over the calendar day window.
var dayMetricKinds = []domain.MetricKind{
	domain.KindStepCount,
	domain.KindActiveEnergy,
	domain.KindBasalEnergy,
	domain.KindDistance,
	domain.KindExerciseMinutes,
	domain.KindStandTime,
	domain.KindHeartRate,
	domain.KindRestingHeartRate,
	domain.KindHRV,
	domain.KindWorkout,
}

type dailyAggregator struct {
	querier MetricFetcher
	loc     *time.Location
}

// NewDailyAggregator creates a DailyAggregator. Day boundaries are taken in loc.
func NewDailyAggregator(querier MetricFetcher, loc *time.Location) DailyAggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &dailyAggregator{
		querier: querier,
		loc:     loc,
	}
}

type metricTask struct {
	kind   domain.MetricKind
	window domain.TimeWindow
}

type metricResult struct {
	outcome healthdata.Outcome
	err     error
}

func (a *dailyAggregator) AggregateDay(ctx context.Context, date time.Time) (*domain.DailyHealthRecord, error) {
	dayWindow := domain.DayWindow(date, a.loc)

	tracer := otel.Tracer("health-insights/aggregation")
	ctx, span := tracer.Start(ctx, "DailyAggregator.AggregateDay",
		trace.WithAttributes(attribute.String("day", dayWindow.Start.Format(time.DateOnly))),
	)
	defer span.End()

	tasks := make([]metricTask, 0, len(dayMetricKinds)+5)
	for _, kind := range dayMetricKinds {
		tasks = append(tasks, metricTask{kind: kind, window: dayWindow})
	}
	sleepWindow := domain.SleepWindow(date, a.loc)
	for _, kind := range domain.SleepStageKinds() {
		tasks = append(tasks, metricTask{kind: kind, window: sleepWindow})
	}

	outcomes, err := a.fanOut(ctx, tasks)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "aggregate day failed")
		return nil, err
	}

	record := &domain.DailyHealthRecord{
		Date:     dayWindow.Start,
		Sleep:    buildSleepSummary(outcomes),
		Activity: buildActivitySummary(outcomes),
		Heart:    buildHeartSummary(outcomes),
	}
	span.SetAttributes(
		attribute.Bool("sleep.present", record.Sleep != nil),
		attribute.Float64("activity.steps", record.Activity.Steps),
	)
	return record, nil
}

func (a *dailyAggregator) FetchSleep(ctx context.Context, date time.Time) (*domain.SleepSummary, error) {
	sleepWindow := domain.SleepWindow(date, a.loc)
	tasks := make([]metricTask, 0, 5)
	for _, kind := range domain.SleepStageKinds() {
		tasks = append(tasks, metricTask{kind: kind, window: sleepWindow})
	}

	outcomes, err := a.fanOut(ctx, tasks)
	if err != nil {
		return nil, err
	}
	return buildSleepSummary(outcomes), nil
}

// fanOut runs every task concurrently and waits for all of them. A failed query
// counts as no data unless every task failed with the same error kind, in which
// case the source is unreachable and a *domain.SourceError is returned.
func (a *dailyAggregator) fanOut(ctx context.Context, tasks []metricTask) (map[domain.MetricKind]healthdata.Outcome, error) {
	results := make([]metricResult, len(tasks))

	var g errgroup.Group
	for i, task := range tasks {
		g.Go(func() error {
			out, err := a.querier.Fetch(ctx, task.kind, task.window)
			results[i] = metricResult{outcome: out, err: err}
			return nil
		})
	}
	_ = g.Wait()

	// A cancelled day yields no record, never a partial one.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := uniformFailure(results); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int("queries", len(tasks)).Msg("health data source unreachable")
		return nil, err
	}

	logger := zerolog.Ctx(ctx)
	outcomes := make(map[domain.MetricKind]healthdata.Outcome, len(tasks))
	for i, res := range results {
		if res.err != nil {
			var qe *domain.QueryError
			if !errors.As(res.err, &qe) {
				return nil, res.err
			}
			logger.Warn().Err(res.err).Str("metric", string(tasks[i].kind)).Msg("metric query failed, treating as no data")
			outcomes[tasks[i].kind] = healthdata.Outcome{Kind: tasks[i].kind}
			continue
		}
		outcomes[tasks[i].kind] = res.outcome
	}
	return outcomes, nil
}

// uniformFailure returns a SourceError when every result failed with the same QueryError kind.
func uniformFailure(results []metricResult) error {
	if len(results) == 0 {
		return nil
	}
	var first *domain.QueryError
	for _, res := range results {
		var qe *domain.QueryError
		if res.err == nil || !errors.As(res.err, &qe) {
			return nil
		}
		if first == nil {
			first = qe
			continue
		}
		if qe.Kind != first.Kind {
			return nil
		}
	}
	return &domain.SourceError{Kind: first.Kind, Cause: first}
}

// buildSleepSummary buckets stage intervals. A night whose deep+REM+light
// total is zero is reported as nil rather than zero hours.
func buildSleepSummary(outcomes map[domain.MetricKind]healthdata.Outcome) *domain.SleepSummary {
	sum := func(kind domain.MetricKind) time.Duration {
		var d time.Duration
		for _, s := range outcomes[kind].Samples {
			d += s.Duration()
		}
		return d
	}

	summary := &domain.SleepSummary{
		DeepSleep:  sum(domain.KindSleepDeep),
		REMSleep:   sum(domain.KindSleepREM),
		LightSleep: sum(domain.KindSleepLight),
		AwakeTime:  sum(domain.KindSleepAwake),
	}
	summary.TotalDuration = summary.DeepSleep + summary.REMSleep + summary.LightSleep
	if summary.TotalDuration == 0 {
		return nil
	}

	for _, s := range outcomes[domain.KindSleepInBed].Samples {
		if summary.Bedtime == nil || s.StartAt.Before(*summary.Bedtime) {
			start := s.StartAt
			summary.Bedtime = &start
		}
		if summary.WakeTime == nil || s.EndAt.After(*summary.WakeTime) {
			end := s.EndAt
			summary.WakeTime = &end
		}
	}
	return summary
}

func buildActivitySummary(outcomes map[domain.MetricKind]healthdata.Outcome) domain.ActivitySummary {
	active := outcomes[domain.KindActiveEnergy].Value
	workouts := outcomes[domain.KindWorkout].Workouts
	if workouts == nil {
		workouts = []domain.WorkoutSummary{}
	}
	return domain.ActivitySummary{
		Steps:           outcomes[domain.KindStepCount].Value,
		ActiveEnergy:    active,
		TotalEnergy:     active + outcomes[domain.KindBasalEnergy].Value,
		Distance:        outcomes[domain.KindDistance].Value,
		ExerciseMinutes: outcomes[domain.KindExerciseMinutes].Value,
		StandHours:      outcomes[domain.KindStandTime].Value,
		Workouts:        workouts,
	}
}

func buildHeartSummary(outcomes map[domain.MetricKind]healthdata.Outcome) domain.HeartSummary {
	hr := outcomes[domain.KindHeartRate].Stats
	heart := domain.HeartSummary{
		RestingHR: outcomes[domain.KindRestingHeartRate].Value,
		AvgHR:     hr.Avg,
		MinHR:     hr.Min,
		MaxHR:     hr.Max,
	}
	if hrv := outcomes[domain.KindHRV]; hrv.Present {
		v := hrv.Value
		heart.HRV = &v
	}
	return heart
}
