package llm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultMaxTokens   = 512
	defaultTemperature = 0.4
)

// startGeneration opens a span shaped like a Langfuse generation observation.
func startGeneration(ctx context.Context, provider, model, prompt string) (context.Context, trace.Span) {
	return otel.Tracer("health-insights/llm").Start(ctx, "llm.generate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gen_ai.system", provider),
			attribute.String("gen_ai.request.model", model),
			attribute.String("langfuse.observation.type", "generation"),
			attribute.String("langfuse.observation.input", prompt),
		),
	)
}

func endGeneration(span trace.Span, output string, inputTokens, outputTokens int64, err error) {
	defer span.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return
	}
	span.SetAttributes(
		attribute.Int64("gen_ai.usage.input_tokens", inputTokens),
		attribute.Int64("gen_ai.usage.output_tokens", outputTokens),
		attribute.String("langfuse.observation.output", output),
	)
}
