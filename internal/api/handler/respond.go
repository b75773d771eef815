package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/blaisecz/health-insights/pkg/problem"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// sourceRetryAfter is the Retry-After hint sent with 503 source-unavailable.
const sourceRetryAfter = 30 * time.Second

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeServiceError maps a service error to a problem response. detail is used
// for unexpected errors so internals are not leaked to clients.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, detail string) {
	logger := zerolog.Ctx(r.Context())

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		problem.BadRequest(err.Error()).Write(w)
	case errors.Is(err, domain.ErrSourceUnavailable):
		logger.Error().Err(err).Msg("health data source unavailable")
		problem.SourceUnavailable("The health data source could not be reached. Try again later.").
			RetryAfter(sourceRetryAfter).
			Write(w)
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn().Err(err).Msg("request timed out")
		problem.GatewayTimeout("The request took too long to complete").Write(w)
	case errors.Is(err, context.Canceled):
		// client went away, nobody is reading the response
		logger.Debug().Err(err).Msg("request cancelled")
	default:
		logger.Error().Err(err).Msg(detail)
		problem.InternalError(detail).Write(w)
	}
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultValue int) (int, error) {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(val)
}
