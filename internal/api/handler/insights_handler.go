package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/blaisecz/health-insights/internal/api/validation"
	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/blaisecz/health-insights/internal/langfuse"
	"github.com/blaisecz/health-insights/internal/service"
	"github.com/blaisecz/health-insights/pkg/problem"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// InsightsHandler handles natural-language insight endpoints.
type InsightsHandler struct {
	orchestrator   service.InsightOrchestrator
	langfuseClient langfuse.Client
}

// NewInsightsHandler creates a new InsightsHandler.
func NewInsightsHandler(orchestrator service.InsightOrchestrator, langfuseClient langfuse.Client) *InsightsHandler {
	return &InsightsHandler{
		orchestrator:   orchestrator,
		langfuseClient: langfuseClient,
	}
}

// Create handles POST /v1/insights
// @Summary Get or generate an insight
// @Description Return cached text for the topic and scope while the inputs and time buckets are unchanged, otherwise generate it. A failed generation returns a fallback text with fallback=true.
// @Tags insights
// @Accept json
// @Produce json
// @Param request body domain.InsightRequest true "Insight request"
// @Success 200 {object} domain.Insight
// @Failure 400 {object} problem.Problem
// @Failure 422 {object} problem.Problem
// @Failure 500 {object} problem.Problem
// @Router /insights [post]
func (h *InsightsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.InsightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.BadRequest("Invalid JSON body").Write(w)
		return
	}

	if fieldErrors := validation.Validate(req); fieldErrors != nil {
		problem.ValidationError("Request body contains invalid fields", fieldErrors).Write(w)
		return
	}

	insight, err := h.orchestrator.GetOrGenerate(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "Failed to produce insight")
		return
	}

	writeJSON(w, http.StatusOK, insight)
}

// GetDaily handles GET /v1/insights/daily
// @Summary Get today's overview
// @Description Natural-language overview of today's record and last night's sleep.
// @Tags insights
// @Produce json
// @Success 200 {object} domain.Insight
// @Failure 503 {object} problem.Problem "Health data source unavailable"
// @Failure 500 {object} problem.Problem
// @Router /insights/daily [get]
func (h *InsightsHandler) GetDaily(w http.ResponseWriter, r *http.Request) {
	insight, err := h.orchestrator.DailyOverview(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to produce daily overview")
		return
	}
	writeJSON(w, http.StatusOK, insight)
}

// GetWeekly handles GET /v1/insights/weekly
// @Summary Get the weekly summary
// @Description Natural-language summary of the last seven days.
// @Tags insights
// @Produce json
// @Success 200 {object} domain.Insight
// @Failure 503 {object} problem.Problem "Health data source unavailable"
// @Failure 500 {object} problem.Problem
// @Router /insights/weekly [get]
func (h *InsightsHandler) GetWeekly(w http.ResponseWriter, r *http.Request) {
	insight, err := h.orchestrator.WeeklySummary(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to produce weekly summary")
		return
	}
	writeJSON(w, http.StatusOK, insight)
}

// GetMetric handles GET /v1/insights/metrics/{kind}
// @Summary Get a metric insight
// @Description Compare today's value with yesterday, the weekly average and an optional goal.
// @Tags insights
// @Produce json
// @Param kind path string true "Series kind" example(steps)
// @Param goal query number false "Daily goal, omitted when 0" minimum(0)
// @Success 200 {object} domain.Insight
// @Failure 400 {object} problem.Problem
// @Failure 503 {object} problem.Problem "Health data source unavailable"
// @Failure 500 {object} problem.Problem
// @Router /insights/metrics/{kind} [get]
func (h *InsightsHandler) GetMetric(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseSeriesKind(chi.URLParam(r, "kind"))
	if err != nil {
		problem.BadRequest(err.Error()).Write(w)
		return
	}

	var goal float64
	if raw := r.URL.Query().Get("goal"); raw != "" {
		goal, err = strconv.ParseFloat(raw, 64)
		if err != nil || goal < 0 || math.IsNaN(goal) || math.IsInf(goal, 0) {
			problem.BadRequest("goal must be a non-negative number").Write(w)
			return
		}
	}

	insight, err := h.orchestrator.MetricInsight(r.Context(), kind, goal)
	if err != nil {
		writeServiceError(w, r, err, "Failed to produce metric insight")
		return
	}
	writeJSON(w, http.StatusOK, insight)
}

// ClearCache handles DELETE /v1/insights/cache
// @Summary Clear the insight cache
// @Description Remove every cached insight so the next request regenerates.
// @Tags insights
// @Success 204 "Cache cleared"
// @Failure 500 {object} problem.Problem
// @Router /insights/cache [delete]
func (h *InsightsHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.orchestrator.ClearCache(r.Context()); err != nil {
		writeServiceError(w, r, err, "Failed to clear insight cache")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FeedbackRequest is the request body for insight feedback.
// @Description Request body for rating a previously returned insight.
type FeedbackRequest struct {
	// Trace ID from the insight response
	TraceID string `json:"trace_id" validate:"required,max=64" example:"4bf92f3577b34da6a3ce929d0e0e4736"`
	// Rating score (1-5)
	Score int `json:"score" validate:"min=1,max=5" example:"4" minimum:"1" maximum:"5"`
	// Optional comment
	Comment string `json:"comment,omitempty" validate:"max=2000" example:"Spot on about my sleep"`
}

// PostFeedback handles POST /v1/insights/feedback
// @Summary Submit feedback on an insight
// @Description Attach a user rating and optional comment to the trace of a previous insight response.
// @Tags insights
// @Accept json
// @Param body body FeedbackRequest true "Feedback request"
// @Success 204 "Feedback accepted"
// @Failure 400 {object} problem.Problem
// @Failure 422 {object} problem.Problem
// @Router /insights/feedback [post]
func (h *InsightsHandler) PostFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.BadRequest("Invalid request body").Write(w)
		return
	}

	if fieldErrors := validation.Validate(req); fieldErrors != nil {
		problem.ValidationError("Request body contains invalid fields", fieldErrors).Write(w)
		return
	}

	// Feedback is accepted even when the score cannot be delivered.
	err := h.langfuseClient.CreateScore(r.Context(), langfuse.ScoreInput{
		TraceID: req.TraceID,
		Name:    langfuse.ScoreUserRating,
		Value:   float64(req.Score),
		Comment: req.Comment,
	})
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("trace_id", req.TraceID).Msg("failed to record insight feedback")
	}

	w.WriteHeader(http.StatusNoContent)
}
