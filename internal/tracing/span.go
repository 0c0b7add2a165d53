package tracing

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// StartCallSpan starts the client span of one call.
func StartCallSpan(ctx context.Context, tracer trace.Tracer, method, target string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("http.request.method", method)}
	if target != "" {
		attrs = append(attrs, attribute.String("url.full", target))
	}
	return tracer.Start(ctx, "HTTP "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// EndCallSpan records the status of a call and ends span. A local failure or a
// status other than 200 marks the span as an error.
func EndCallSpan(span trace.Span, statusCode int, failure error) {
	span.SetAttributes(attribute.Int("http.response.status_code", statusCode))
	switch {
	case failure != nil:
		span.RecordError(failure)
		span.SetStatus(codes.Error, failure.Error())
	case statusCode != http.StatusOK:
		span.SetStatus(codes.Error, fmt.Sprintf("status %d", statusCode))
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// InjectHTTPHeaders writes the W3C trace context of ctx into headers.
func InjectHTTPHeaders(ctx context.Context, headers http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}
