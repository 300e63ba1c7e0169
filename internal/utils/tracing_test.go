package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func attrMap(kvs []attribute.KeyValue) map[string]string {
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}

func TestTraceOperation(t *testing.T) {
	recorder := withRecorder(t)

	_, span, cleanup := TraceOperation(context.Background(), "test_operation", map[string]interface{}{
		"string_attr":  "value",
		"int_attr":     42,
		"int64_attr":   int64(123),
		"bool_attr":    true,
		"float64_attr": 3.14,
		"unknown_attr": struct{}{},
	})
	require.NotNil(t, span)
	cleanup()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "test_operation", spans[0].Name())

	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "value", attrs["string_attr"])
	assert.Equal(t, "42", attrs["int_attr"])
	assert.Equal(t, "true", attrs["bool_attr"])
	assert.Equal(t, "unknown_type", attrs["unknown_attr"])
	assert.Contains(t, attrs, "duration_ms")
}

func TestTraceStoreOperation(t *testing.T) {
	recorder := withRecorder(t)

	_, _, cleanup := TraceStoreOperation(context.Background(), "get", "redis", "k")
	cleanup()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "store.get", spans[0].Name())
	assert.Equal(t, "redis", attrMap(spans[0].Attributes())["store.backend"])
}

func TestTraceFlowTransition(t *testing.T) {
	recorder := withRecorder(t)

	_, span, cleanup := TraceFlowTransition(context.Background(), "submit_phone", "phone")
	RecordError(span, errors.New("boom"))
	cleanup()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "flow.submit_phone", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestRecordError_Nil(t *testing.T) {
	recorder := withRecorder(t)

	_, span, cleanup := TraceHTTPOperation(context.Background(), "POST", "http://x", "/send")
	RecordError(span, nil)
	cleanup()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}
