package api

import (
	"net/http"

	_ "github.com/blaisecz/health-insights/docs"
	"github.com/blaisecz/health-insights/internal/api/handler"
	"github.com/blaisecz/health-insights/internal/api/middleware"
	"github.com/blaisecz/health-insights/internal/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	healthHandler   *handler.HealthHandler
	insightsHandler *handler.InsightsHandler
	sampleHandler   *handler.SampleHandler
	recorder        metrics.Recorder
	logger          zerolog.Logger
}

func NewRouter(
	healthHandler *handler.HealthHandler,
	insightsHandler *handler.InsightsHandler,
	sampleHandler *handler.SampleHandler,
	recorder metrics.Recorder,
	logger zerolog.Logger,
) *Router {
	if recorder == nil {
		recorder = metrics.Noop()
	}
	return &Router{
		healthHandler:   healthHandler,
		insightsHandler: insightsHandler,
		sampleHandler:   sampleHandler,
		recorder:        recorder,
		logger:          logger,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(rt.logger))
	r.Use(middleware.Recovery)
	r.Use(middleware.Tracing)
	r.Use(middleware.Metrics(rt.recorder))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", rt.recorder.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		r.Post("/samples", rt.sampleHandler.Ingest)

		r.Get("/days/{date}", rt.healthHandler.GetDay)
		r.Get("/series/{kind}", rt.healthHandler.GetSeries)
		r.Get("/range", rt.healthHandler.GetRange)

		r.Route("/insights", func(r chi.Router) {
			r.Post("/", rt.insightsHandler.Create)
			r.Get("/daily", rt.insightsHandler.GetDaily)
			r.Get("/weekly", rt.insightsHandler.GetWeekly)
			r.Get("/metrics/{kind}", rt.insightsHandler.GetMetric)
			r.Delete("/cache", rt.insightsHandler.ClearCache)
			r.Post("/feedback", rt.insightsHandler.PostFeedback)
		})
	})

	return r
}
