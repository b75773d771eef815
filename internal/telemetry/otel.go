// Package telemetry configures the global OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/blaisecz/health-insights/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Exporter is where spans are sent, resolved from configuration.
type Exporter struct {
	EndpointURL string
	Headers     map[string]string
}

// ResolveExporter picks the span destination. An explicit OTLP endpoint wins;
// otherwise Langfuse's OTLP intake is used when its keys are set. ok is false
// when tracing should stay disabled.
func ResolveExporter(cfg *config.Config) (exp Exporter, ok bool) {
	if cfg.OTLPEndpoint != "" {
		return Exporter{EndpointURL: strings.TrimRight(cfg.OTLPEndpoint, "/") + "/v1/traces"}, true
	}
	if cfg.LangfuseBaseURL == "" || cfg.LangfusePublicKey == "" || cfg.LangfuseSecretKey == "" {
		return Exporter{}, false
	}

	creds := cfg.LangfusePublicKey + ":" + cfg.LangfuseSecretKey
	auth := base64.StdEncoding.EncodeToString([]byte(creds))
	return Exporter{
		EndpointURL: strings.TrimRight(cfg.LangfuseBaseURL, "/") + "/api/public/otel/v1/traces",
		Headers:     map[string]string{"Authorization": "Basic " + auth},
	}, true
}

// InitTracer initializes the global OpenTelemetry tracer provider.
// Without an exporter this is a no-op and spans go to the default noop provider.
func InitTracer(ctx context.Context, cfg *config.Config, serviceName string) (func(context.Context) error, error) {
	exp, ok := ResolveExporter(cfg)
	if !ok {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(exp.EndpointURL)}
	if len(exp.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(exp.Headers))
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("langfuse.environment", cfg.LangfuseEnv),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}
