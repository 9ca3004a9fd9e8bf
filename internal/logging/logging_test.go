package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	loc := time.FixedZone("WIB", 7*60*60)
	logger := NewWithWriter(&buf, loc)

	logger.Info("tracing_configured", zap.Bool("tracing_enabled", false))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "tracing_configured", entry["msg"])
	assert.Equal(t, false, entry["tracing_enabled"])

	ts, ok := entry["ts"].(string)
	require.True(t, ok)
	assert.Contains(t, ts, "+07:00")
}

func TestNewWithWriter_NilLocation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, nil)

	logger.Warn("x")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Contains(t, entry["ts"], "Z")
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, time.UTC)

	logger.Info("no span", Trace(context.Background()))
	assert.NotContains(t, buf.String(), "trace_id")

	tid, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	sid, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    tid,
		SpanID:     sid,
		TraceFlags: trace.FlagsSampled,
	}))

	buf.Reset()
	logger.Info("with span", Trace(ctx))
	assert.Contains(t, buf.String(), `"trace_id":"4bf92f3577b34da6a3ce929d0e0e4736"`)
}
