package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidWindow = errors.New("time window must have start before end")

	// ErrNoData marks a metric with no sample in the window. It is never surfaced to clients.
	ErrNoData = errors.New("no data for window")

	// ErrSourceUnavailable is matched by every SourceError.
	ErrSourceUnavailable = errors.New("health data source unavailable")

	// ErrGeneration indicates the text generator failed or returned nothing.
	ErrGeneration = errors.New("insight generation failed")
)

// QueryErrorKind classifies a failed metric query.
type QueryErrorKind string

const (
	QueryErrUnauthorized QueryErrorKind = "unauthorized"
	QueryErrUnavailable  QueryErrorKind = "unavailable"
	QueryErrTransport    QueryErrorKind = "transport"
)

// QueryError is a failure of a single metric query against the health data source.
type QueryError struct {
	Kind   QueryErrorKind
	Metric MetricKind
	Err    error
}

func (e *QueryError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("query %s: %s", e.Metric, e.Kind)
	}
	return fmt.Sprintf("query %s: %s: %v", e.Metric, e.Kind, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// SourceError is raised when every query of a fan-out failed with the same kind,
// meaning the source as a whole is unreachable rather than one metric being absent.
type SourceError struct {
	Kind  QueryErrorKind
	Cause error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrSourceUnavailable, e.Kind, e.Cause)
}

func (e *SourceError) Unwrap() []error {
	return []error{ErrSourceUnavailable, e.Cause}
}
