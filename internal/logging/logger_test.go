package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestLoggerAddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "gym-console", false)

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.InfoContext(ctx, "quote calculated", "coach_id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "gym-console", entry["service"])
	require.Equal(t, traceID.String(), entry["trace_id"])
	require.Equal(t, spanID.String(), entry["span_id"])
	require.EqualValues(t, 7, entry["coach_id"])
}

func TestLoggerWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "gym-console", false).Info("plain")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.NotContains(t, entry, "trace_id")
}

func TestLoggerDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "gym-console", false).Debug("hidden")
	require.Zero(t, buf.Len())

	New(&buf, "gym-console", true).Debug("shown")
	require.Contains(t, buf.String(), "shown")
}
