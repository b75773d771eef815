package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInsightsRouter(h *InsightsHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/v1/insights", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/daily", h.GetDaily)
		r.Get("/weekly", h.GetWeekly)
		r.Get("/metrics/{kind}", h.GetMetric)
		r.Delete("/cache", h.ClearCache)
		r.Post("/feedback", h.PostFeedback)
	})
	return r
}

func TestInsightsHandler_Create(t *testing.T) {
	orch := &MockOrchestrator{}
	h := NewInsightsHandler(orch, &MockLangfuseClient{})

	body := `{"topic":"trend","scope":"steps","inputs":[{"name":"recent","value":9000},{"name":"older","value":7000}]}`
	rec := httptest.NewRecorder()
	newInsightsRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/insights", bytes.NewBufferString(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TopicTrend, orch.lastReq.Topic)
	assert.Equal(t, "steps", orch.lastReq.Scope)
	require.Len(t, orch.lastReq.Inputs, 2)

	var got domain.Insight
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domain.CacheKey("trend_steps"), got.Key)
	assert.Equal(t, "You slept well.", got.Text)
	assert.NotEmpty(t, got.TraceID)
}

func TestInsightsHandler_Create_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantField  string
	}{
		{name: "malformed json", body: `{"topic":`, wantStatus: http.StatusBadRequest},
		{name: "unknown topic", body: `{"topic":"horoscope","scope":"today"}`, wantStatus: http.StatusUnprocessableEntity, wantField: "topic"},
		{name: "missing scope", body: `{"topic":"lab"}`, wantStatus: http.StatusUnprocessableEntity, wantField: "scope"},
		{name: "unnamed input", body: `{"topic":"lab","scope":"latest","inputs":[{"value":1}]}`, wantStatus: http.StatusUnprocessableEntity, wantField: "inputs[0].name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orch := &MockOrchestrator{}
			h := NewInsightsHandler(orch, &MockLangfuseClient{})

			rec := httptest.NewRecorder()
			newInsightsRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/insights", bytes.NewBufferString(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Empty(t, orch.lastReq.Topic)
			if tt.wantField != "" {
				assert.Contains(t, rec.Body.String(), `"field":"`+tt.wantField+`"`)
			}
		})
	}
}

func TestInsightsHandler_Create_InvalidScopeFromService(t *testing.T) {
	orch := &MockOrchestrator{err: errors.Join(domain.ErrInvalidInput, errors.New(`invalid insight scope "Bad Scope"`))}
	h := NewInsightsHandler(orch, &MockLangfuseClient{})

	body := `{"topic":"lab","scope":"Bad Scope"}`
	rec := httptest.NewRecorder()
	newInsightsRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/insights", bytes.NewBufferString(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid insight scope")
}

func TestInsightsHandler_DailyAndWeekly(t *testing.T) {
	tests := []struct {
		path    string
		wantKey domain.CacheKey
	}{
		{path: "/v1/insights/daily", wantKey: "daily_overview_today"},
		{path: "/v1/insights/weekly", wantKey: "weekly_summary_last_7_days"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			h := NewInsightsHandler(&MockOrchestrator{}, &MockLangfuseClient{})

			rec := httptest.NewRecorder()
			newInsightsRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, http.StatusOK, rec.Code)
			var got domain.Insight
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantKey, got.Key)
		})
	}
}

func TestInsightsHandler_Daily_SourceUnavailable(t *testing.T) {
	orch := &MockOrchestrator{err: &domain.SourceError{Kind: domain.QueryErrUnauthorized}}
	h := NewInsightsHandler(orch, &MockLangfuseClient{})

	rec := httptest.NewRecorder()
	newInsightsRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/insights/daily", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
}

func TestInsightsHandler_GetMetric(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantKind   domain.SeriesKind
		wantGoal   float64
	}{
		{name: "with goal", path: "/v1/insights/metrics/steps?goal=10000", wantStatus: http.StatusOK, wantKind: domain.SeriesSteps, wantGoal: 10000},
		{name: "without goal", path: "/v1/insights/metrics/sleep_hours", wantStatus: http.StatusOK, wantKind: domain.SeriesSleepHours},
		{name: "negative goal", path: "/v1/insights/metrics/steps?goal=-5", wantStatus: http.StatusBadRequest},
		{name: "non-numeric goal", path: "/v1/insights/metrics/steps?goal=lots", wantStatus: http.StatusBadRequest},
		{name: "nan goal", path: "/v1/insights/metrics/steps?goal=NaN", wantStatus: http.StatusBadRequest},
		{name: "unknown kind", path: "/v1/insights/metrics/mood", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orch := &MockOrchestrator{}
			h := NewInsightsHandler(orch, &MockLangfuseClient{})

			rec := httptest.NewRecorder()
			newInsightsRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantKind, orch.lastKind)
				assert.Equal(t, tt.wantGoal, orch.lastGoal)
			} else {
				assert.Empty(t, orch.lastKind)
			}
		})
	}
}

func TestInsightsHandler_ClearCache(t *testing.T) {
	orch := &MockOrchestrator{}
	h := NewInsightsHandler(orch, &MockLangfuseClient{})

	rec := httptest.NewRecorder()
	newInsightsRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/insights/cache", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, orch.clearCalls)
}

func TestInsightsHandler_ClearCache_Error(t *testing.T) {
	orch := &MockOrchestrator{err: errors.New("store down")}
	h := NewInsightsHandler(orch, &MockLangfuseClient{})

	rec := httptest.NewRecorder()
	newInsightsRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/insights/cache", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "store down")
}

func TestInsightsHandler_PostFeedback(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		clientErr  error
		wantStatus int
		wantScores int
	}{
		{name: "valid", body: `{"trace_id":"abc123","score":4,"comment":"helpful"}`, wantStatus: http.StatusNoContent, wantScores: 1},
		{name: "delivery failure still accepted", body: `{"trace_id":"abc123","score":5}`, clientErr: errors.New("langfuse down"), wantStatus: http.StatusNoContent, wantScores: 1},
		{name: "missing trace id", body: `{"score":4}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "score too high", body: `{"trace_id":"abc123","score":6}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "score zero", body: `{"trace_id":"abc123","score":0}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "malformed", body: `not json`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &MockLangfuseClient{enabled: true, err: tt.clientErr}
			h := NewInsightsHandler(&MockOrchestrator{}, client)

			rec := httptest.NewRecorder()
			newInsightsRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/insights/feedback", bytes.NewBufferString(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			require.Len(t, client.scores, tt.wantScores)
			if tt.wantScores > 0 {
				assert.Equal(t, "abc123", client.scores[0].TraceID)
				assert.Equal(t, "user_rating", client.scores[0].Name)
			}
		})
	}
}
