package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Level(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{level: "debug", want: zerolog.DebugLevel},
		{level: " WARN ", want: zerolog.WarnLevel},
		{level: "", want: zerolog.InfoLevel},
		{level: "chatty", want: zerolog.InfoLevel},
	}
	for _, tt := range tests {
		logger := New(tt.level, &bytes.Buffer{})
		assert.Equal(t, tt.want, logger.GetLevel(), tt.level)
	}
}

func TestNew_DefaultContextLogger(t *testing.T) {
	var buf bytes.Buffer
	New("info", &buf)

	zerolog.Ctx(context.Background()).Info().Str("cache_key", "metric_steps").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "metric_steps", entry["cache_key"])
	assert.Equal(t, "health-insights", entry["service"])
}
