package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/blaisecz/health-insights/internal/healthdata"
)

// MockSource is an in-memory health data source. failFn, when set, can fail
// any query; otherwise samples of the kind starting inside the window are returned.
type MockSource struct {
	mu      sync.Mutex
	samples map[domain.MetricKind][]domain.HealthSample
	failFn  func(kind domain.MetricKind, window domain.TimeWindow) error
	delay   time.Duration

	calls       atomic.Int64
	inFlight    atomic.Int64
	maxInFlight atomic.Int64
}

func NewMockSource() *MockSource {
	return &MockSource{samples: make(map[domain.MetricKind][]domain.HealthSample)}
}

func (m *MockSource) Add(kind domain.MetricKind, start, end time.Time, value float64, unit domain.Unit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples[kind] = append(m.samples[kind], domain.HealthSample{
		Kind:    kind,
		StartAt: start,
		EndAt:   end,
		Value:   value,
		Unit:    unit,
	})
}

func (m *MockSource) AddSample(s domain.HealthSample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples[s.Kind] = append(m.samples[s.Kind], s)
}

func (m *MockSource) Samples(ctx context.Context, kind domain.MetricKind, window domain.TimeWindow) ([]domain.HealthSample, error) {
	m.calls.Add(1)
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		cur := m.maxInFlight.Load()
		if n <= cur || m.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.failFn != nil {
		if err := m.failFn(kind, window); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.HealthSample
	for _, s := range m.samples[kind] {
		if !s.StartAt.Before(window.Start) && s.StartAt.Before(window.End) {
			out = append(out, s)
		}
	}
	return out, nil
}

func newTestQuerier(src *MockSource) *healthdata.Querier {
	return healthdata.NewQuerier(src)
}

// MockAggregator returns canned records and errors per calendar day.
type MockAggregator struct {
	records map[string]*domain.DailyHealthRecord
	errs    map[string]error
	err     error
	calls   atomic.Int64
}

func NewMockAggregator() *MockAggregator {
	return &MockAggregator{
		records: make(map[string]*domain.DailyHealthRecord),
		errs:    make(map[string]error),
	}
}

func (m *MockAggregator) AggregateDay(ctx context.Context, date time.Time) (*domain.DailyHealthRecord, error) {
	m.calls.Add(1)
	day := date.Format(time.DateOnly)
	if m.err != nil {
		return nil, m.err
	}
	if err, ok := m.errs[day]; ok {
		return nil, err
	}
	if r, ok := m.records[day]; ok {
		return r, nil
	}
	return &domain.DailyHealthRecord{
		Date:     domain.StartOfDay(date, time.UTC),
		Activity: domain.ActivitySummary{Workouts: []domain.WorkoutSummary{}},
	}, nil
}

func (m *MockAggregator) FetchSleep(ctx context.Context, date time.Time) (*domain.SleepSummary, error) {
	r, err := m.AggregateDay(ctx, date)
	if err != nil {
		return nil, err
	}
	return r.Sleep, nil
}

// MockSeriesBuilder returns a fixed series and range.
type MockSeriesBuilder struct {
	series    *domain.Series
	aggregate *domain.WeeklyAggregate
	err       error
	lastKind  domain.SeriesKind
	lastDays  int
}

func (m *MockSeriesBuilder) BuildSeries(ctx context.Context, kind domain.SeriesKind, days int) (*domain.Series, error) {
	m.lastKind, m.lastDays = kind, days
	if m.err != nil {
		return nil, m.err
	}
	return m.series, nil
}

func (m *MockSeriesBuilder) BuildRange(ctx context.Context, days int) (*domain.WeeklyAggregate, error) {
	m.lastDays = days
	if m.err != nil {
		return nil, m.err
	}
	return m.aggregate, nil
}

// MockGenerator counts calls and returns text or err. When block is set each
// call waits for it to be closed.
type MockGenerator struct {
	mu         sync.Mutex
	text       string
	err        error
	lastPrompt string
	block      chan struct{}
	started    chan struct{}
	calls      atomic.Int64
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.lastPrompt = prompt
	text, err, block, started := m.text, m.err, m.block, m.started
	m.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if block != nil {
		<-block
	}
	return text, err
}

func (m *MockGenerator) Prompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPrompt
}

// MockSampleRepository stores samples in memory, deduplicating external IDs.
type MockSampleRepository struct {
	samples  []domain.HealthSample
	external map[string]bool
	err      error
}

func NewMockSampleRepository() *MockSampleRepository {
	return &MockSampleRepository{external: make(map[string]bool)}
}

func (m *MockSampleRepository) CreateBatch(ctx context.Context, samples []domain.HealthSample) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var inserted int64
	for _, s := range samples {
		if s.ExternalID != nil {
			if m.external[*s.ExternalID] {
				continue
			}
			m.external[*s.ExternalID] = true
		}
		m.samples = append(m.samples, s)
		inserted++
	}
	return inserted, nil
}

func (m *MockSampleRepository) Samples(ctx context.Context, kind domain.MetricKind, window domain.TimeWindow) ([]domain.HealthSample, error) {
	return nil, nil
}

func (m *MockSampleRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(m.samples)), nil
}

func strPtr(s string) *string {
	return &s
}
