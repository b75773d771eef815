// Package app wires configuration, storage and services into one graph shared
// by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/blaisecz/health-insights/internal/cache"
	"github.com/blaisecz/health-insights/internal/config"
	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/blaisecz/health-insights/internal/healthdata"
	"github.com/blaisecz/health-insights/internal/llm"
	"github.com/blaisecz/health-insights/internal/metrics"
	"github.com/blaisecz/health-insights/internal/repository"
	"github.com/blaisecz/health-insights/internal/seed"
	"github.com/blaisecz/health-insights/internal/service"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// App holds the wired services.
type App struct {
	Config   *config.Config
	Location *time.Location
	Metrics  metrics.Recorder
	DB       *gorm.DB

	Samples      repository.SampleRepository
	Aggregator   service.DailyAggregator
	Series       service.SeriesBuilder
	Insights     service.InsightOrchestrator
	SampleIngest service.SampleService
}

// New connects to the database, migrates the schema, optionally seeds it and
// builds every service.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := config.NewDatabase(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate database schema
	if err := db.AutoMigrate(&domain.HealthSample{}, &domain.CachedInsight{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info().Msg("database migration completed")

	sampleRepo := repository.NewSampleRepository(db)
	if cfg.Seed {
		logger.Info().Msg("seeding database with sample data (SEED=true)")
		if _, err := seed.Run(logger.WithContext(ctx), sampleRepo, seed.Options{Location: loc}); err != nil {
			return nil, err
		}
	}

	recorder := metrics.New(cfg.MetricsEnabled)

	generator, err := llm.NewGenerator(llm.ProviderConfig{
		Provider:       cfg.LLMProvider,
		OpenAIKey:      cfg.OpenAIAPIKey,
		OpenAIModel:    cfg.OpenAIInsightsModel,
		AnthropicKey:   cfg.AnthropicAPIKey,
		AnthropicModel: cfg.AnthropicInsightsModel,
	})
	if err != nil {
		return nil, err
	}

	var store cache.Store
	switch cfg.CacheBackend {
	case config.CacheBackendPostgres:
		store = repository.NewInsightRepository(db)
	default:
		store = cache.NewMemoryStore(cfg.CacheSizeMB)
	}
	logger.Info().Str("backend", cfg.CacheBackend).Str("llm_provider", cfg.LLMProvider).Msg("insight cache ready")

	querier := healthdata.NewQuerier(sampleRepo,
		healthdata.WithMaxInFlight(cfg.MaxInFlightQueries),
		healthdata.WithRateLimit(cfg.QueryRateLimit, cfg.QueryBurst),
		healthdata.WithMetrics(recorder),
	)
	aggregator := service.NewDailyAggregator(querier, loc)
	series := service.NewSeriesBuilder(aggregator, querier, service.SeriesConfig{
		Location:          loc,
		MaxConcurrentDays: cfg.MaxConcurrentDays,
	})
	insightCache := cache.New(store, cache.WithLocation(loc), cache.WithMetrics(recorder))
	insights := service.NewInsightOrchestrator(aggregator, series, insightCache, generator, service.InsightConfig{
		Location: loc,
		Metrics:  recorder,
	})

	return &App{
		Config:       cfg,
		Location:     loc,
		Metrics:      recorder,
		DB:           db,
		Samples:      sampleRepo,
		Aggregator:   aggregator,
		Series:       series,
		Insights:     insights,
		SampleIngest: service.NewSampleService(sampleRepo),
	}, nil
}

// Close releases the database connection pool.
func (a *App) Close() error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
