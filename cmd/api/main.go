// Health Insights API
//
// REST API for daily health aggregates, historical series and cached insights.
//
//	@title			Health Insights API
//	@version		1.0
//	@description	Aggregate raw health samples into daily records and series, and explain them in plain language.
//
//	@BasePath	/v1
//
//	@tag.name			health
//	@tag.description	Daily records, series and range aggregates
//
//	@tag.name			insights
//	@tag.description	Cached natural-language insights
//
//	@tag.name			samples
//	@tag.description	Raw sample ingestion
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blaisecz/health-insights/internal/api"
	"github.com/blaisecz/health-insights/internal/api/handler"
	"github.com/blaisecz/health-insights/internal/app"
	"github.com/blaisecz/health-insights/internal/config"
	"github.com/blaisecz/health-insights/internal/langfuse"
	"github.com/blaisecz/health-insights/internal/logging"
	"github.com/blaisecz/health-insights/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg, "health-insights-api")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to flush traces")
		}
	}()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start")
	}
	defer a.Close()

	langfuseClient := langfuse.NewClient(langfuse.Config{
		BaseURL:     cfg.LangfuseBaseURL,
		PublicKey:   cfg.LangfusePublicKey,
		SecretKey:   cfg.LangfuseSecretKey,
		Environment: cfg.LangfuseEnv,
	})

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(a.Aggregator, a.Series, a.Location)
	insightsHandler := handler.NewInsightsHandler(a.Insights, langfuseClient)
	sampleHandler := handler.NewSampleHandler(a.SampleIngest)

	// Setup router
	router := api.NewRouter(healthHandler, insightsHandler, sampleHandler, a.Metrics, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Str("timezone", a.Location.String()).Msg("starting server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server failed")
	}
	logger.Info().Msg("server stopped")
}
