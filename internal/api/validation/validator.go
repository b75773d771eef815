package validation

import (
	"errors"
	"strings"

	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/blaisecz/health-insights/pkg/problem"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("metric_kind", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseMetricKind(fl.Field().String())
		return err == nil
	})
	validate.RegisterValidation("insight_topic", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseInsightTopic(fl.Field().String())
		return err == nil
	})
}

// Validate validates a struct and returns field errors
func Validate(s interface{}) []problem.FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []problem.FieldError{{Field: "body", Message: "is invalid"}}
	}

	var fieldErrors []problem.FieldError
	for _, err := range validationErrors {
		fieldErrors = append(fieldErrors, problem.FieldError{
			Field:   fieldPath(err),
			Message: getValidationMessage(err),
		})
	}
	return fieldErrors
}

// fieldPath drops the root struct name, e.g. "IngestSamplesRequest.Samples[2].StartAt"
// becomes "samples[2].start_at".
func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return toSnakeCase(ns)
}

func getValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + err.Param()
	case "max":
		return "must be at most " + err.Param()
	case "gte":
		return "must be greater than or equal to " + err.Param()
	case "oneof":
		return "must be one of: " + err.Param()
	case "gtefield":
		return "must not be before " + toSnakeCase(err.Param())
	case "metric_kind":
		return "must be a known metric kind"
	case "insight_topic":
		return "must be one of: daily_overview metric weekly_summary trend lab"
	default:
		return "is invalid"
	}
}

func toSnakeCase(s string) string {
	var result []byte
	for i, c := range s {
		if c >= 'A' && c <= 'Z' {
			if i > 0 && isLowerOrDigit(s[i-1]) {
				result = append(result, '_')
			}
			result = append(result, byte(c+'a'-'A'))
		} else {
			result = append(result, byte(c))
		}
	}
	return string(result)
}

func isLowerOrDigit(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
