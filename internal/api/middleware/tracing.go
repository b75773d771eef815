package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request, continuing any incoming W3C trace
// context. The span is renamed to the chi route pattern once routing is done,
// and carries Langfuse observation input/output so traces read well there.
func Tracing(next http.Handler) http.Handler {
	tracer := otel.Tracer("health-insights/http")
	propagator := propagation.TraceContext{}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			),
		)
		defer span.End()

		if id := chimw.GetReqID(ctx); id != "" {
			span.SetAttributes(attribute.String("http.request_id", id))
		}
		setJSONAttribute(span, "langfuse.observation.input", observationInput(r))

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if rctx := chi.RouteContext(ctx); rctx != nil && rctx.RoutePattern() != "" {
			span.SetName(r.Method + " " + rctx.RoutePattern())
			span.SetAttributes(attribute.String("http.route", rctx.RoutePattern()))
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		setJSONAttribute(span, "langfuse.observation.output", map[string]any{
			"status_code": status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})
}

func observationInput(r *http.Request) map[string]any {
	in := map[string]any{
		"method": r.Method,
		"path":   r.URL.Path,
	}
	if r.URL.RawQuery != "" {
		in["query"] = r.URL.RawQuery
	}
	if r.RemoteAddr != "" {
		in["remote_addr"] = r.RemoteAddr
	}
	return in
}

func setJSONAttribute(span trace.Span, key string, v any) {
	if b, err := json.Marshal(v); err == nil {
		span.SetAttributes(attribute.String(key, string(b)))
	}
}
