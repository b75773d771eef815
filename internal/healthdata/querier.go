// Package healthdata wraps the external health data source. It is the only layer
// that talks to the source; everything above it sees reduced Outcomes.
package healthdata

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/blaisecz/health-insights/internal/metrics"
	"github.com/blaisecz/health-insights/internal/stats"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Source is the external health data collaborator. It returns the raw samples of
// one kind whose start lies in window. Authorization is the caller's concern.
type Source interface {
	Samples(ctx context.Context, kind domain.MetricKind, window domain.TimeWindow) ([]domain.HealthSample, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, kind domain.MetricKind, window domain.TimeWindow) ([]domain.HealthSample, error)

func (f SourceFunc) Samples(ctx context.Context, kind domain.MetricKind, window domain.TimeWindow) ([]domain.HealthSample, error) {
	return f(ctx, kind, window)
}

// Outcome is the reduced result of one metric query. Present=false is the
// NoData outcome, which is a success.
type Outcome struct {
	Kind    domain.MetricKind
	Unit    domain.Unit
	Op      domain.AggregationOp
	Present bool
	// Value is the sum, most recent value or average, in Unit.
	Value float64
	// Stats is set for statistics kinds.
	Stats stats.Descriptive
	// Samples holds the intervals of sleep stage kinds, ordered by start.
	Samples []domain.HealthSample
	// Workouts is set for the workout kind, ordered by start.
	Workouts []domain.WorkoutSummary
}

// NoData reports whether the metric had no sample in the window.
func (o Outcome) NoData() bool {
	return !o.Present
}

// Querier issues single bounded-window metric queries against a Source.
type Querier struct {
	source  Source
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	metrics metrics.Recorder
}

// Option configures a Querier.
type Option func(*Querier)

// WithMaxInFlight caps concurrent source calls across all fan-outs sharing the Querier.
func WithMaxInFlight(n int) Option {
	return func(q *Querier) {
		if n > 0 {
			q.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithRateLimit paces source calls to perSecond with the given burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(q *Querier) {
		if perSecond > 0 {
			if burst < 1 {
				burst = 1
			}
			q.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithMetrics records query durations and errors.
func WithMetrics(m metrics.Recorder) Option {
	return func(q *Querier) {
		if m != nil {
			q.metrics = m
		}
	}
}

// NewQuerier creates a Querier over source.
func NewQuerier(source Source, opts ...Option) *Querier {
	q := &Querier{
		source:  source,
		metrics: metrics.Noop(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Fetch queries one metric kind over window and reduces the samples with the
// kind's aggregation operator. Source failures come back as *domain.QueryError;
// cancellation of ctx is returned as ctx.Err().
func (q *Querier) Fetch(ctx context.Context, kind domain.MetricKind, window domain.TimeWindow) (Outcome, error) {
	if !window.Start.Before(window.End) {
		return Outcome{}, domain.ErrInvalidWindow
	}

	if q.sem != nil {
		if err := q.sem.Acquire(ctx, 1); err != nil {
			return Outcome{}, err
		}
		defer q.sem.Release(1)
	}
	if q.limiter != nil {
		if err := q.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return Outcome{}, ctx.Err()
			}
			return Outcome{}, q.queryError(kind, &domain.QueryError{Kind: domain.QueryErrTransport, Metric: kind, Err: err})
		}
	}

	start := time.Now()
	samples, err := q.source.Samples(ctx, kind, window)
	q.metrics.ObserveQueryDuration(string(kind), time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{}, ctx.Err()
		}
		return Outcome{}, q.queryError(kind, classify(kind, err))
	}

	return reduce(ctx, kind, samples), nil
}

func (q *Querier) queryError(kind domain.MetricKind, qe *domain.QueryError) error {
	q.metrics.IncQueryErrors(string(kind), string(qe.Kind))
	return qe
}

// classify turns a source error into a QueryError. Sources that already return
// a QueryError keep their kind; anything else is a transport fault.
func classify(kind domain.MetricKind, err error) *domain.QueryError {
	var qe *domain.QueryError
	if errors.As(err, &qe) {
		out := *qe
		if out.Metric == "" {
			out.Metric = kind
		}
		return &out
	}
	return &domain.QueryError{Kind: domain.QueryErrTransport, Metric: kind, Err: err}
}

func reduce(ctx context.Context, kind domain.MetricKind, samples []domain.HealthSample) Outcome {
	unit, op := UnitAndOp(kind)
	out := Outcome{Kind: kind, Unit: unit, Op: op}

	valid := make([]domain.HealthSample, 0, len(samples))
	for _, s := range samples {
		if s.EndAt.Before(s.StartAt) {
			continue
		}
		valid = append(valid, s)
	}
	if len(valid) == 0 {
		return out
	}
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].StartAt.Before(valid[j].StartAt)
	})

	switch {
	case kind.IsSleepStage():
		return reduceIntervals(out, valid)
	case kind == domain.KindWorkout:
		return reduceWorkouts(out, valid)
	}

	logger := zerolog.Ctx(ctx)
	values := make([]float64, 0, len(valid))
	converted := make([]domain.HealthSample, 0, len(valid))
	for _, s := range valid {
		v, err := domain.ConvertUnit(s.Value, s.Unit, unit)
		if err != nil {
			logger.Warn().Str("metric", string(kind)).Str("unit", string(s.Unit)).Msg("dropping sample with unconvertible unit")
			continue
		}
		s.Value = v
		values = append(values, v)
		converted = append(converted, s)
	}
	if len(values) == 0 {
		return out
	}

	out.Present = true
	switch op {
	case domain.OpSum:
		for _, v := range values {
			out.Value += v
		}
	case domain.OpMostRecent:
		latest := converted[0]
		for _, s := range converted[1:] {
			if s.EndAt.After(latest.EndAt) || (s.EndAt.Equal(latest.EndAt) && s.StartAt.After(latest.StartAt)) {
				latest = s
			}
		}
		out.Value = latest.Value
	case domain.OpStatistics:
		out.Stats = stats.Describe(values)
		out.Value = out.Stats.Avg
	}
	return out
}

func reduceIntervals(out Outcome, samples []domain.HealthSample) Outcome {
	var total time.Duration
	for _, s := range samples {
		total += s.Duration()
	}
	out.Present = true
	out.Samples = samples
	out.Value = total.Hours()
	return out
}

func reduceWorkouts(out Outcome, samples []domain.HealthSample) Outcome {
	var total time.Duration
	workouts := make([]domain.WorkoutSummary, 0, len(samples))
	for _, s := range samples {
		d := s.Duration()
		total += d
		workouts = append(workouts, domain.WorkoutSummary{
			Type:     s.WorkoutType,
			Start:    s.StartAt,
			End:      s.EndAt,
			Duration: d,
			Energy:   s.WorkoutEnergy,
			Distance: s.WorkoutDistance,
		})
	}
	out.Present = true
	out.Workouts = workouts
	out.Value = total.Minutes()
	return out
}
