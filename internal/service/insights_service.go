package service

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/blaisecz/health-insights/internal/llm"
	"github.com/blaisecz/health-insights/internal/metrics"
	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const (
	dailyOverviewScope = "today"
	weeklySummaryScope = "last_7_days"
	weeklySummaryDays  = 7
	metricInsightDays  = 7
)

// InsightCache is the cache the orchestrator reads before generating and
// writes after. *cache.InsightCache implements it.
type InsightCache interface {
	Get(ctx context.Context, key domain.CacheKey, fingerprint uint64) (string, bool)
	Put(ctx context.Context, key domain.CacheKey, text string, fingerprint uint64) error
	ClearAll(ctx context.Context) error
}

// InsightOrchestrator produces natural-language insights, reusing cached text
// while the inputs and time buckets are unchanged.
type InsightOrchestrator interface {
	// GetOrGenerate returns cached text for the request or generates it. A
	// failed generation yields a fallback text, never an error.
	GetOrGenerate(ctx context.Context, req domain.InsightRequest) (*domain.Insight, error)
	// DailyOverview summarizes today's record.
	DailyOverview(ctx context.Context) (*domain.Insight, error)
	// WeeklySummary summarizes the last seven days.
	WeeklySummary(ctx context.Context) (*domain.Insight, error)
	// MetricInsight compares today's value of kind to yesterday, the weekly
	// average and goal. A zero goal is omitted.
	MetricInsight(ctx context.Context, kind domain.SeriesKind, goal float64) (*domain.Insight, error)
	// ClearCache purges every cached insight.
	ClearCache(ctx context.Context) error
}

// InsightConfig holds the orchestrator's optional collaborators.
type InsightConfig struct {
	Location *time.Location
	Now      func() time.Time
	Metrics  metrics.Recorder
}

type insightOrchestrator struct {
	aggregator DailyAggregator
	series     SeriesBuilder
	cache      InsightCache
	generator  llm.TextGenerator
	metrics    metrics.Recorder
	loc        *time.Location
	now        func() time.Time

	inflight singleflight.Group
}

// NewInsightOrchestrator creates an InsightOrchestrator.
func NewInsightOrchestrator(
	aggregator DailyAggregator,
	series SeriesBuilder,
	cache InsightCache,
	generator llm.TextGenerator,
	cfg InsightConfig,
) InsightOrchestrator {
	o := &insightOrchestrator{
		aggregator: aggregator,
		series:     series,
		cache:      cache,
		generator:  generator,
		metrics:    cfg.Metrics,
		loc:        cfg.Location,
		now:        cfg.Now,
	}
	if o.metrics == nil {
		o.metrics = metrics.Noop()
	}
	if o.loc == nil {
		o.loc = time.UTC
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// Fingerprint hashes topic, inputs and the free-text context that goes into
// the prompt. Inputs are ordered by name and each value is scaled by 100 and
// truncated, so jitter below 0.01 does not change it.
func Fingerprint(topic domain.InsightTopic, inputs []domain.InsightInput, note string) uint64 {
	sorted := make([]domain.InsightInput, len(inputs))
	copy(sorted, inputs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	h := xxhash.New()
	_, _ = h.WriteString(string(topic))
	var buf [8]byte
	for _, in := range sorted {
		_, _ = h.Write([]byte{0})
		_, _ = h.WriteString(in.Name)
		_, _ = h.Write([]byte{0})
		binary.LittleEndian.PutUint64(buf[:], uint64(scaledValue(in.Value)))
		_, _ = h.Write(buf[:])
	}
	_, _ = h.Write([]byte{1})
	_, _ = h.WriteString(note)
	return h.Sum64()
}

func scaledValue(v float64) int64 {
	switch {
	case math.IsNaN(v):
		return math.MinInt64
	case math.IsInf(v, 1) || v*100 >= math.MaxInt64:
		return math.MaxInt64
	case math.IsInf(v, -1) || v*100 <= math.MinInt64+1:
		return math.MinInt64 + 1
	}
	return int64(math.Trunc(v * 100))
}

type generation struct {
	text     string
	fallback bool
}

func (o *insightOrchestrator) GetOrGenerate(ctx context.Context, req domain.InsightRequest) (*domain.Insight, error) {
	key, err := domain.NewCacheKey(req.Topic, req.Scope)
	if err != nil {
		return nil, err
	}

	tracer := otel.Tracer("health-insights/insights")
	ctx, span := tracer.Start(ctx, "InsightOrchestrator.GetOrGenerate",
		trace.WithAttributes(attribute.String("insight.key", string(key))),
	)
	defer span.End()

	fingerprint := Fingerprint(req.Topic, req.Inputs, req.Context)
	insight := &domain.Insight{Key: key}
	if sc := span.SpanContext(); sc.HasTraceID() {
		insight.TraceID = sc.TraceID().String()
	}

	if text, ok := o.cache.Get(ctx, key, fingerprint); ok {
		span.SetAttributes(attribute.Bool("insight.cached", true))
		insight.Text = text
		insight.Cached = true
		return insight, nil
	}

	// Identical requests in flight share one generation. It runs detached from
	// the first caller's cancellation; each caller still stops waiting on its own.
	genCtx := context.WithoutCancel(ctx)
	ch := o.inflight.DoChan(fmt.Sprintf("%s:%x", key, fingerprint), func() (any, error) {
		return o.generate(genCtx, req, key, fingerprint), nil
	})

	select {
	case <-ctx.Done():
		span.SetStatus(codes.Error, "cancelled")
		return nil, ctx.Err()
	case res := <-ch:
		gen := res.Val.(generation)
		if res.Shared {
			o.metrics.IncGenerations(string(req.Topic), metrics.OutcomeCoalesced)
		}
		span.SetAttributes(attribute.Bool("insight.fallback", gen.fallback))
		insight.Text = gen.text
		insight.Fallback = gen.fallback
		return insight, nil
	}
}

func (o *insightOrchestrator) generate(ctx context.Context, req domain.InsightRequest, key domain.CacheKey, fingerprint uint64) generation {
	logger := zerolog.Ctx(ctx).With().Str("cache_key", string(key)).Logger()

	text, err := o.generator.Generate(ctx, llm.BuildPrompt(req))
	text = strings.TrimSpace(text)
	if err == nil && text == "" {
		err = llm.ErrEmptyResponse
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrGeneration, err)
		if errors.Is(err, llm.ErrUnavailable) {
			logger.Debug().Err(err).Msg("insight generation unavailable, using fallback")
		} else {
			logger.Warn().Err(err).Msg("insight generation failed, using fallback")
		}
		o.metrics.IncGenerations(string(req.Topic), metrics.OutcomeFallback)
		return generation{text: FallbackText(req.Topic), fallback: true}
	}

	o.metrics.IncGenerations(string(req.Topic), metrics.OutcomeGenerated)
	if err := o.cache.Put(ctx, key, text, fingerprint); err != nil {
		logger.Warn().Err(err).Msg("insight cache write failed")
	}
	return generation{text: text}
}

var fallbackTexts = map[domain.InsightTopic]string{
	domain.TopicDailyOverview: "Your daily overview isn't available right now. Your numbers for today are shown above.",
	domain.TopicMetric:        "An insight for this metric isn't available right now. Check back in a little while.",
	domain.TopicWeeklySummary: "Your weekly summary isn't available right now. Your weekly averages are shown above.",
	domain.TopicTrend:         "Trend insights aren't available right now. Check back in a little while.",
	domain.TopicLab:           "An explanation of these results isn't available right now. Check back in a little while.",
}

// FallbackText is the fixed text returned when generation fails.
func FallbackText(topic domain.InsightTopic) string {
	if text, ok := fallbackTexts[topic]; ok {
		return text
	}
	return "Insights aren't available right now. Check back in a little while."
}

func (o *insightOrchestrator) DailyOverview(ctx context.Context) (*domain.Insight, error) {
	record, err := o.aggregator.AggregateDay(ctx, o.now().In(o.loc))
	if err != nil {
		return nil, err
	}

	inputs := []domain.InsightInput{
		{Name: "steps", Value: record.Activity.Steps},
		{Name: "active_energy_kcal", Value: record.Activity.ActiveEnergy},
		{Name: "exercise_minutes", Value: record.Activity.ExerciseMinutes},
		{Name: "stand_hours", Value: record.Activity.StandHours},
		{Name: "workouts", Value: float64(len(record.Activity.Workouts))},
		{Name: "resting_hr_bpm", Value: record.Heart.RestingHR},
		{Name: "avg_hr_bpm", Value: record.Heart.AvgHR},
	}
	if record.Heart.HRV != nil {
		inputs = append(inputs, domain.InsightInput{Name: "hrv_ms", Value: *record.Heart.HRV})
	}
	var note string
	if record.Sleep != nil {
		inputs = append(inputs,
			domain.InsightInput{Name: "sleep_hours", Value: record.Sleep.Hours()},
			domain.InsightInput{Name: "deep_sleep_hours", Value: record.Sleep.DeepSleep.Hours()},
			domain.InsightInput{Name: "rem_sleep_hours", Value: record.Sleep.REMSleep.Hours()},
		)
	} else {
		note = "No sleep was recorded last night."
	}

	return o.GetOrGenerate(ctx, domain.InsightRequest{
		Topic:   domain.TopicDailyOverview,
		Scope:   dailyOverviewScope,
		Inputs:  inputs,
		Context: note,
	})
}

func (o *insightOrchestrator) WeeklySummary(ctx context.Context) (*domain.Insight, error) {
	agg, err := o.series.BuildRange(ctx, weeklySummaryDays)
	if err != nil {
		return nil, err
	}

	inputs := []domain.InsightInput{
		{Name: "days_with_data", Value: float64(agg.DaysWithData)},
		{Name: "avg_steps", Value: agg.AvgSteps},
		{Name: "avg_sleep_hours", Value: agg.AvgSleepHours},
		{Name: "avg_resting_hr_bpm", Value: agg.AvgRestingHR},
		{Name: "avg_hrv_ms", Value: agg.AvgHRV},
		{Name: "avg_active_energy_kcal", Value: agg.AvgActiveEnergy},
		{Name: "total_exercise_minutes", Value: agg.TotalExerciseMinutes},
		{Name: "total_workouts", Value: float64(agg.TotalWorkouts)},
	}

	kinds := make([]string, 0, len(agg.Trends))
	for kind := range agg.Trends {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	lines := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		trend := agg.Trends[domain.SeriesKind(kind)]
		lines = append(lines, fmt.Sprintf("%s is %s (%+.2f)", kind, trend.Direction, trend.Delta))
	}

	return o.GetOrGenerate(ctx, domain.InsightRequest{
		Topic:   domain.TopicWeeklySummary,
		Scope:   weeklySummaryScope,
		Inputs:  inputs,
		Context: strings.Join(lines, "\n"),
	})
}

func (o *insightOrchestrator) MetricInsight(ctx context.Context, kind domain.SeriesKind, goal float64) (*domain.Insight, error) {
	if goal < 0 || math.IsNaN(goal) || math.IsInf(goal, 0) {
		return nil, fmt.Errorf("%w: goal must be a non-negative number", domain.ErrInvalidInput)
	}
	series, err := o.series.BuildSeries(ctx, kind, metricInsightDays)
	if err != nil {
		return nil, err
	}

	n := len(series.Values)
	inputs := []domain.InsightInput{
		{Name: "today", Value: series.Values[n-1].Value},
		{Name: "yesterday", Value: series.Values[n-2].Value},
		{Name: "weekly_average", Value: series.Average},
	}
	if goal > 0 {
		inputs = append(inputs, domain.InsightInput{Name: "goal", Value: goal})
	}

	note := fmt.Sprintf("Unit: %s. The week is %s (recent %.2f vs earlier %.2f).",
		series.Unit, series.Trend.Direction, series.Trend.RecentAvg, series.Trend.OlderAvg)

	return o.GetOrGenerate(ctx, domain.InsightRequest{
		Topic:   domain.TopicMetric,
		Scope:   string(kind),
		Inputs:  inputs,
		Context: note,
	})
}

func (o *insightOrchestrator) ClearCache(ctx context.Context) error {
	if err := o.cache.ClearAll(ctx); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Msg("insight cache cleared")
	return nil
}
