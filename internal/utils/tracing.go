package utils

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "app-login"

// TraceOperation traces an operation with timing and attributes
func TraceOperation(ctx context.Context, operationName string, attributes map[string]interface{}) (context.Context, trace.Span, func()) {
	start := time.Now()

	spanCtx, span := otel.Tracer(tracerName).Start(ctx, operationName, trace.WithAttributes(toAttributes(attributes)...))

	cleanup := func() {
		duration := time.Since(start)
		span.SetAttributes(
			attribute.Int64("duration_ms", duration.Milliseconds()),
			attribute.String("duration", duration.String()),
		)
		span.End()
	}

	return spanCtx, span, cleanup
}

// TraceStoreOperation traces a key/value store operation
func TraceStoreOperation(ctx context.Context, operation, backend, key string) (context.Context, trace.Span, func()) {
	return TraceOperation(ctx, "store."+operation, map[string]interface{}{
		"store.operation": operation,
		"store.backend":   backend,
		"store.key":       key,
	})
}

// TraceHTTPOperation traces an outbound HTTP operation
func TraceHTTPOperation(ctx context.Context, method, url, route string) (context.Context, trace.Span, func()) {
	return TraceOperation(ctx, "http."+method, map[string]interface{}{
		"http.method": method,
		"http.url":    url,
		"http.route":  route,
	})
}

// TraceFlowTransition traces one state machine transition
func TraceFlowTransition(ctx context.Context, trigger, fromStep string) (context.Context, trace.Span, func()) {
	return TraceOperation(ctx, "flow."+trigger, map[string]interface{}{
		"flow.trigger":   trigger,
		"flow.from_step": fromStep,
	})
}

// RecordError marks span as failed when err is non-nil.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func toAttributes(attributes map[string]interface{}) []attribute.KeyValue {
	otelAttrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			otelAttrs = append(otelAttrs, attribute.String(k, val))
		case int:
			otelAttrs = append(otelAttrs, attribute.Int(k, val))
		case int64:
			otelAttrs = append(otelAttrs, attribute.Int64(k, val))
		case bool:
			otelAttrs = append(otelAttrs, attribute.Bool(k, val))
		case float64:
			otelAttrs = append(otelAttrs, attribute.Float64(k, val))
		default:
			otelAttrs = append(otelAttrs, attribute.String(k, "unknown_type"))
		}
	}
	return otelAttrs
}
