package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/blaisecz/health-insights/internal/service"
	"github.com/blaisecz/health-insights/pkg/problem"
	"github.com/go-chi/chi/v5"
)

// @title Health Insights API
// @version 1.0
// @description Daily health aggregates, historical series and cached natural-language insights
// @BasePath /v1

const (
	defaultDays = service.DefaultSeriesDays
	maxHTTPDays = 90
)

// HealthHandler serves aggregated health data.
type HealthHandler struct {
	aggregator service.DailyAggregator
	series     service.SeriesBuilder
	loc        *time.Location
	now        func() time.Time
}

// NewHealthHandler creates a HealthHandler. Dates in paths are read in loc.
func NewHealthHandler(aggregator service.DailyAggregator, series service.SeriesBuilder, loc *time.Location) *HealthHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &HealthHandler{
		aggregator: aggregator,
		series:     series,
		loc:        loc,
		now:        time.Now,
	}
}

// GetDay handles GET /v1/days/{date}
// @Summary Get a daily health record
// @Description Aggregate sleep, activity and heart metrics for one calendar day. The sleep summary covers the night that ended on that day.
// @Tags health
// @Produce json
// @Param date path string true "Day as YYYY-MM-DD, or today" example(2024-05-10)
// @Success 200 {object} domain.DailyHealthRecord
// @Failure 400 {object} problem.Problem
// @Failure 503 {object} problem.Problem "Health data source unavailable"
// @Failure 500 {object} problem.Problem
// @Router /days/{date} [get]
func (h *HealthHandler) GetDay(w http.ResponseWriter, r *http.Request) {
	date, err := h.parseDate(chi.URLParam(r, "date"))
	if err != nil {
		problem.BadRequest("date must be YYYY-MM-DD or today").Write(w)
		return
	}

	record, err := h.aggregator.AggregateDay(r.Context(), date)
	if err != nil {
		writeServiceError(w, r, err, "Failed to aggregate day")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (h *HealthHandler) parseDate(s string) (time.Time, error) {
	if s == "" || strings.EqualFold(s, "today") {
		return h.now().In(h.loc), nil
	}
	return time.ParseInLocation(time.DateOnly, s, h.loc)
}

// GetSeries handles GET /v1/series/{kind}
// @Summary Get a metric series
// @Description One value per day for the metric, oldest first, ending today, with its average and trend.
// @Tags health
// @Produce json
// @Param kind path string true "Series kind" Enums(steps, active_energy, basal_energy, distance, exercise_minutes, stand_hours, sleep_hours, resting_hr, avg_hr, hrv, vo2_max, body_mass, body_fat, lean_body_mass)
// @Param days query integer false "Number of days" default(7) minimum(1) maximum(90)
// @Success 200 {object} domain.Series
// @Failure 400 {object} problem.Problem
// @Failure 503 {object} problem.Problem "Health data source unavailable"
// @Failure 500 {object} problem.Problem
// @Router /series/{kind} [get]
func (h *HealthHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseSeriesKind(chi.URLParam(r, "kind"))
	if err != nil {
		problem.BadRequest(err.Error()).Write(w)
		return
	}
	days, ok := daysParam(w, r)
	if !ok {
		return
	}

	series, err := h.series.BuildSeries(r.Context(), kind, days)
	if err != nil {
		writeServiceError(w, r, err, "Failed to build series")
		return
	}

	writeJSON(w, http.StatusOK, series)
}

// GetRange handles GET /v1/range
// @Summary Get a range aggregate
// @Description Daily records, per-metric series, averages and trends for the last days.
// @Tags health
// @Produce json
// @Param days query integer false "Number of days" default(7) minimum(1) maximum(90)
// @Success 200 {object} domain.WeeklyAggregate
// @Failure 400 {object} problem.Problem
// @Failure 503 {object} problem.Problem "Health data source unavailable"
// @Failure 500 {object} problem.Problem
// @Router /range [get]
func (h *HealthHandler) GetRange(w http.ResponseWriter, r *http.Request) {
	days, ok := daysParam(w, r)
	if !ok {
		return
	}

	agg, err := h.series.BuildRange(r.Context(), days)
	if err != nil {
		writeServiceError(w, r, err, "Failed to build range")
		return
	}

	writeJSON(w, http.StatusOK, agg)
}

func daysParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	days, err := parseIntParam(r, "days", defaultDays)
	if err != nil || days < 1 || days > maxHTTPDays {
		problem.BadRequest("days must be between 1 and 90").Write(w)
		return 0, false
	}
	return days, true
}
