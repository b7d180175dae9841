package tracing_test

import (
	"context"
	"testing"

	"storefront/pkg/tracing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func sampledContext(t *testing.T) (context.Context, trace.SpanContext) {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	return trace.ContextWithSpanContext(context.Background(), sc), sc
}

func headerValue(headers []kafka.Header, key string) (string, bool) {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value), true
		}
	}
	return "", false
}

func TestInjectKafkaHeaders(t *testing.T) {
	tracing.SetupPropagator()
	ctx, _ := sampledContext(t)

	headers := tracing.InjectKafkaHeaders(ctx, []kafka.Header{{Key: "event_type", Value: []byte("order.placed")}})

	v, ok := headerValue(headers, tracing.TraceparentHeader)
	require.True(t, ok)
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", v)

	et, ok := headerValue(headers, "event_type")
	require.True(t, ok)
	assert.Equal(t, "order.placed", et)
}

// トレースが無ければヘッダは増えない
func TestInjectKafkaHeaders_NoSpan(t *testing.T) {
	tracing.SetupPropagator()

	headers := tracing.InjectKafkaHeaders(context.Background(), nil)
	_, ok := headerValue(headers, tracing.TraceparentHeader)
	assert.False(t, ok)
}

func TestExtractKafkaHeaders_RoundTrip(t *testing.T) {
	tracing.SetupPropagator()
	ctx, sc := sampledContext(t)

	headers := tracing.InjectKafkaHeaders(ctx, nil)
	got := trace.SpanContextFromContext(tracing.ExtractKafkaHeaders(context.Background(), headers))

	assert.Equal(t, sc.TraceID(), got.TraceID())
	assert.Equal(t, sc.SpanID(), got.SpanID())
	assert.True(t, got.IsSampled())
}
