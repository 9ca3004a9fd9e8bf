// Package logging builds the JSON logger shared by the server, the
// middleware and the startup routines. Every entry is one JSON object per
// line with ts, level and msg keys.
package logging

import (
	"context"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON logger writing to stdout with timestamps rendered in loc.
func New(loc *time.Location) *zap.Logger {
	return NewWithWriter(os.Stdout, loc)
}

// NewWithWriter returns a JSON logger writing to w.
func NewWithWriter(w io.Writer, loc *time.Location) *zap.Logger {
	if loc == nil {
		loc = time.UTC
	}
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		NameKey:        "logger",
		CallerKey:      zapcore.OmitKey,
		StacktraceKey:  zapcore.OmitKey,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.In(loc).Format(time.RFC3339Nano))
		},
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(w),
		zap.InfoLevel,
	)
	return zap.New(core)
}

// Nop returns a logger that discards everything. Used by tests and by
// components constructed without a logger.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// Trace returns the trace_id field for the span in ctx, or a skip field when
// ctx carries no sampled span.
func Trace(ctx context.Context) zap.Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return zap.Skip()
	}
	return zap.String("trace_id", sc.TraceID().String())
}
