// Package problem writes RFC 9457 problem+json responses.
package problem

import (
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

const (
	ContentType = "application/problem+json"
	BaseURI     = "http://localhost:8080/problems"
)

// Problem represents an RFC 9457 problem+json response
type Problem struct {
	Type   string       `json:"type"`
	Title  string       `json:"title"`
	Status int          `json:"status"`
	Detail string       `json:"detail,omitempty"`
	Errors []FieldError `json:"errors,omitempty"`

	retryAfter time.Duration
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type kind struct {
	status int
	slug   string
	title  string
}

var (
	badRequest        = kind{http.StatusBadRequest, "bad-request", "Bad Request"}
	validationError   = kind{http.StatusUnprocessableEntity, "validation-error", "Validation Error"}
	internalError     = kind{http.StatusInternalServerError, "internal-error", "Internal Server Error"}
	sourceUnavailable = kind{http.StatusServiceUnavailable, "source-unavailable", "Health Data Source Unavailable"}
	gatewayTimeout    = kind{http.StatusGatewayTimeout, "timeout", "Gateway Timeout"}
)

func (k kind) with(detail string) *Problem {
	return New(k.status, k.slug, k.title, detail)
}

func New(status int, problemType, title, detail string) *Problem {
	return &Problem{
		Type:   BaseURI + "/" + problemType,
		Title:  title,
		Status: status,
		Detail: detail,
	}
}

// WithErrors adds field errors to the problem
func (p *Problem) WithErrors(errors []FieldError) *Problem {
	p.Errors = errors
	return p
}

// RetryAfter makes Write send a Retry-After header, rounded up to whole seconds.
func (p *Problem) RetryAfter(d time.Duration) *Problem {
	p.retryAfter = d
	return p
}

func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", ContentType)
	if p.retryAfter > 0 {
		secs := int64((p.retryAfter + time.Second - 1) / time.Second)
		w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func BadRequest(detail string) *Problem { return badRequest.with(detail) }

func ValidationError(detail string, errors []FieldError) *Problem {
	return validationError.with(detail).WithErrors(errors)
}

func InternalError(detail string) *Problem { return internalError.with(detail) }

// SourceUnavailable reports that the health data source could not be reached
// at all. Clients may retry.
func SourceUnavailable(detail string) *Problem { return sourceUnavailable.with(detail) }

func GatewayTimeout(detail string) *Problem { return gatewayTimeout.with(detail) }
