package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(domain.InsightRequest{
		Topic: domain.TopicMetric,
		Scope: "step_count",
		Inputs: []domain.InsightInput{
			{Name: "today", Value: 8123.456},
			{Name: "goal", Value: 10000},
		},
		Context: "  rest day yesterday ",
	})

	assert.Contains(t, prompt, "Topic: metric (step_count)")
	assert.Contains(t, prompt, "- today: 8123.46")
	assert.Contains(t, prompt, "- goal: 10000.00")
	assert.Contains(t, prompt, "rest day yesterday\n")
	assert.Less(t, strings.Index(prompt, "today"), strings.Index(prompt, "goal"))
}

func TestBuildPrompt_NoInputs(t *testing.T) {
	prompt := BuildPrompt(domain.InsightRequest{Topic: domain.TopicDailyOverview, Scope: "today"})
	assert.Contains(t, prompt, "no data recorded")
	assert.NotContains(t, prompt, "Additional context")
}

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProviderConfig
		want    any
		wantErr bool
	}{
		{name: "openai default", cfg: ProviderConfig{OpenAIKey: "k"}, want: &OpenAIClient{}},
		{name: "anthropic", cfg: ProviderConfig{Provider: "Anthropic", AnthropicKey: "k"}, want: &AnthropicClient{}},
		{name: "missing key", cfg: ProviderConfig{Provider: ProviderOpenAI}},
		{name: "none", cfg: ProviderConfig{Provider: ProviderNone, OpenAIKey: "k"}},
		{name: "unknown", cfg: ProviderConfig{Provider: "gemini"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := NewGenerator(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.want != nil {
				assert.IsType(t, tt.want, gen)
				return
			}
			_, err = gen.Generate(context.Background(), "p")
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}

func TestNilClientsAreUnavailable(t *testing.T) {
	var oc *OpenAIClient
	_, err := oc.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrUnavailable)

	var ac *AnthropicClient
	_, err = ac.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOpenAIClient_Generate(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":0,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  Nice work today. "}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient("k", "", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	text, err := client.Generate(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "Nice work today.", text)
	assert.True(t, strings.HasSuffix(gotPath, "/chat/completions"))
}

func TestOpenAIClient_EmptyAndFailing(t *testing.T) {
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":0,"model":"m","choices":[]}`))
	}))
	defer empty.Close()

	_, err := NewOpenAIClient("k", "m", option.WithBaseURL(empty.URL+"/"), option.WithMaxRetries(0)).
		Generate(context.Background(), "p")
	assert.True(t, errors.Is(err, ErrEmptyResponse))

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
	}))
	defer failing.Close()

	_, err = NewOpenAIClient("k", "m", option.WithBaseURL(failing.URL+"/"), option.WithMaxRetries(0)).
		Generate(context.Background(), "p")
	assert.True(t, errors.Is(err, ErrRequest))
}

func TestAnthropicClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"m1","type":"message","role":"assistant","model":"claude",
			"content":[{"type":"text","text":"Sleep was "},{"type":"text","text":"steady."}],
			"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":4}}`))
	}))
	defer srv.Close()

	client := NewAnthropicClient("k", "", anthropicoption.WithBaseURL(srv.URL+"/"), anthropicoption.WithMaxRetries(0))
	text, err := client.Generate(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "Sleep was steady.", text)
}

func recordSpans(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return exporter
}

func spanAttrs(span tracetest.SpanStub) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value, len(span.Attributes))
	for _, kv := range span.Attributes {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestOpenAIClient_SendsLimitsAndRecordsGeneration(t *testing.T) {
	exporter := recordSpans(t)

	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":0,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Keep going."}}],
			"usage":{"prompt_tokens":12,"completion_tokens":3,"total_tokens":15}}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient("k", "", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	_, err := client.Generate(context.Background(), "steps today: 8000")
	require.NoError(t, err)

	assert.Contains(t, body, `"max_completion_tokens":512`)
	assert.Contains(t, body, `"model":"gpt-4o-mini"`)
	assert.Contains(t, body, "non-medical health tracking assistant")

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "llm.generate", spans[0].Name)
	attrs := spanAttrs(spans[0])
	assert.Equal(t, "openai", attrs["gen_ai.system"].AsString())
	assert.Equal(t, "generation", attrs["langfuse.observation.type"].AsString())
	assert.Equal(t, "steps today: 8000", attrs["langfuse.observation.input"].AsString())
	assert.Equal(t, "Keep going.", attrs["langfuse.observation.output"].AsString())
	assert.Equal(t, int64(12), attrs["gen_ai.usage.input_tokens"].AsInt64())
	assert.Equal(t, int64(3), attrs["gen_ai.usage.output_tokens"].AsInt64())
}

func TestAnthropicClient_FailureMarksSpan(t *testing.T) {
	exporter := recordSpans(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`))
	}))
	defer srv.Close()

	client := NewAnthropicClient("k", "m", anthropicoption.WithBaseURL(srv.URL+"/"), anthropicoption.WithMaxRetries(0))
	_, err := client.Generate(context.Background(), "p")
	require.ErrorIs(t, err, ErrRequest)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	_, hasOutput := spanAttrs(spans[0])["langfuse.observation.output"]
	assert.False(t, hasOutput)
}
