package validation

import (
	"testing"
	"time"

	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_IngestRequest(t *testing.T) {
	start := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

	valid := domain.IngestSamplesRequest{Samples: []domain.CreateSampleRequest{
		{Kind: domain.KindStepCount, StartAt: start, EndAt: start.Add(time.Hour), Value: 100},
	}}
	assert.Nil(t, Validate(valid))

	invalid := domain.IngestSamplesRequest{Samples: []domain.CreateSampleRequest{
		{Kind: domain.KindStepCount, StartAt: start, EndAt: start.Add(time.Hour), Value: 100},
		{Kind: "blood_pressure", StartAt: start, EndAt: start.Add(-time.Minute), Value: -1},
	}}
	errs := Validate(invalid)
	require.Len(t, errs, 3)
	assert.Equal(t, "samples[1].kind", errs[0].Field)
	assert.Equal(t, "must be a known metric kind", errs[0].Message)
	assert.Equal(t, "samples[1].end_at", errs[1].Field)
	assert.Equal(t, "must not be before start_at", errs[1].Message)
	assert.Equal(t, "samples[1].value", errs[2].Field)

	empty := Validate(domain.IngestSamplesRequest{})
	require.Len(t, empty, 1)
	assert.Equal(t, "samples", empty[0].Field)
}

func TestValidate_InsightRequest(t *testing.T) {
	assert.Nil(t, Validate(domain.InsightRequest{Topic: domain.TopicLab, Scope: "lipid_panel"}))

	errs := Validate(domain.InsightRequest{Topic: "horoscope"})
	require.Len(t, errs, 2)
	assert.Equal(t, "topic", errs[0].Field)
	assert.Equal(t, "scope", errs[1].Field)
	assert.Equal(t, "is required", errs[1].Message)
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"StartAt":          "start_at",
		"ExternalID":       "external_id",
		"Samples[0].EndAt": "samples[0].end_at",
		"WorkoutDistance":  "workout_distance",
		"Inputs[10].Name":  "inputs[10].name",
	}
	for in, want := range tests {
		assert.Equal(t, want, toSnakeCase(in), in)
	}
}
