package httpclient

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// requestSpan aliases the otel span so the executor stays decoupled
// from the tracing wiring.
type requestSpan = trace.Span

// tracing opens one span per logical request. With no tracer provider
// configured the global provider is used, which is a no-op unless the
// application installed a real one.
type tracing struct {
	tracer trace.Tracer
}

func newTracing(provider trace.TracerProvider, serviceName string) *tracing {
	if serviceName == "" {
		serviceName = "pulse"
	}
	if provider == nil {
		return &tracing{tracer: otel.Tracer(serviceName)}
	}
	return &tracing{tracer: provider.Tracer(serviceName)}
}

// start opens the request span. The span covers every attempt of the
// request, including retry waits.
func (t *tracing) start(ctx context.Context, cfg *RequestConfig) (context.Context, requestSpan) {
	return t.tracer.Start(ctx, fmt.Sprintf("HTTP %s", cfg.Method),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", cfg.Method),
			attribute.String("url.full", cfg.URL),
		),
	)
}

// retry records one retry decision on the request span.
func (t *tracing) retry(span requestSpan, attempt int, delay time.Duration) {
	span.AddEvent("retry", trace.WithAttributes(
		attribute.Int("http.request.resend_count", attempt),
		attribute.String("retry.delay", delay.String()),
	))
}

// success records the final status on a settled request.
func (t *tracing) success(span requestSpan, status int) {
	span.SetAttributes(attribute.Int("http.response.status_code", status))
	span.SetStatus(codes.Ok, "")
}

// failure records an unrecovered failure on the span.
func (t *tracing) failure(span requestSpan, err error) {
	if he, ok := AsError(err); ok && he.Status > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", he.Status))
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
