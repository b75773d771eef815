package handler

import (
	"context"
	"sync"
	"time"

	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/blaisecz/health-insights/internal/langfuse"
)

// MockAggregator is a mock implementation of service.DailyAggregator
type MockAggregator struct {
	aggregateFunc func(ctx context.Context, date time.Time) (*domain.DailyHealthRecord, error)
	lastDate      time.Time
}

func (m *MockAggregator) AggregateDay(ctx context.Context, date time.Time) (*domain.DailyHealthRecord, error) {
	m.lastDate = date
	if m.aggregateFunc != nil {
		return m.aggregateFunc(ctx, date)
	}
	return &domain.DailyHealthRecord{
		Date:     domain.StartOfDay(date, date.Location()),
		Activity: domain.ActivitySummary{Steps: 8421, Workouts: []domain.WorkoutSummary{}},
		Heart:    domain.HeartSummary{RestingHR: 58},
	}, nil
}

func (m *MockAggregator) FetchSleep(ctx context.Context, date time.Time) (*domain.SleepSummary, error) {
	return nil, nil
}

// MockSeriesBuilder is a mock implementation of service.SeriesBuilder
type MockSeriesBuilder struct {
	seriesFunc func(ctx context.Context, kind domain.SeriesKind, days int) (*domain.Series, error)
	rangeFunc  func(ctx context.Context, days int) (*domain.WeeklyAggregate, error)
	lastKind   domain.SeriesKind
	lastDays   int
}

func (m *MockSeriesBuilder) BuildSeries(ctx context.Context, kind domain.SeriesKind, days int) (*domain.Series, error) {
	m.lastKind = kind
	m.lastDays = days
	if m.seriesFunc != nil {
		return m.seriesFunc(ctx, kind, days)
	}
	return &domain.Series{Kind: kind, Unit: domain.UnitCount, Values: make([]domain.DailyValue, days)}, nil
}

func (m *MockSeriesBuilder) BuildRange(ctx context.Context, days int) (*domain.WeeklyAggregate, error) {
	m.lastDays = days
	if m.rangeFunc != nil {
		return m.rangeFunc(ctx, days)
	}
	return &domain.WeeklyAggregate{Days: days}, nil
}

// MockOrchestrator is a mock implementation of service.InsightOrchestrator
type MockOrchestrator struct {
	err        error
	lastReq    domain.InsightRequest
	lastKind   domain.SeriesKind
	lastGoal   float64
	clearCalls int
}

func (m *MockOrchestrator) insight(key domain.CacheKey) (*domain.Insight, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Insight{Key: key, Text: "You slept well.", TraceID: "4bf92f3577b34da6a3ce929d0e0e4736"}, nil
}

func (m *MockOrchestrator) GetOrGenerate(ctx context.Context, req domain.InsightRequest) (*domain.Insight, error) {
	m.lastReq = req
	return m.insight(domain.CacheKey(string(req.Topic) + "_" + req.Scope))
}

func (m *MockOrchestrator) DailyOverview(ctx context.Context) (*domain.Insight, error) {
	return m.insight("daily_overview_today")
}

func (m *MockOrchestrator) WeeklySummary(ctx context.Context) (*domain.Insight, error) {
	return m.insight("weekly_summary_last_7_days")
}

func (m *MockOrchestrator) MetricInsight(ctx context.Context, kind domain.SeriesKind, goal float64) (*domain.Insight, error) {
	m.lastKind = kind
	m.lastGoal = goal
	return m.insight(domain.CacheKey("metric_" + string(kind)))
}

func (m *MockOrchestrator) ClearCache(ctx context.Context) error {
	m.clearCalls++
	return m.err
}

// MockSampleService is a mock implementation of service.SampleService
type MockSampleService struct {
	ingestFunc func(ctx context.Context, req *domain.IngestSamplesRequest) (*domain.IngestSamplesResponse, error)
}

func (m *MockSampleService) Ingest(ctx context.Context, req *domain.IngestSamplesRequest) (*domain.IngestSamplesResponse, error) {
	if m.ingestFunc != nil {
		return m.ingestFunc(ctx, req)
	}
	return &domain.IngestSamplesResponse{Received: len(req.Samples), Inserted: len(req.Samples)}, nil
}

// MockLangfuseClient is a mock implementation of langfuse.Client
type MockLangfuseClient struct {
	mu      sync.Mutex
	enabled bool
	err     error
	scores  []langfuse.ScoreInput
}

func (m *MockLangfuseClient) IsEnabled() bool {
	return m.enabled
}

func (m *MockLangfuseClient) CreateScore(ctx context.Context, in langfuse.ScoreInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, in)
	return m.err
}
