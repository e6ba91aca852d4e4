// Package mylogger writes zap entries enriched with the trace and span ids
// of the span carried by ctx.
package mylogger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func Info(ctx context.Context, logger *zap.Logger, msg string, fields ...zap.Field) {
	write(ctx, logger, zapcore.InfoLevel, msg, fields)
}

func Error(ctx context.Context, logger *zap.Logger, msg string, fields ...zap.Field) {
	write(ctx, logger, zapcore.ErrorLevel, msg, fields)
}

func Warn(ctx context.Context, logger *zap.Logger, msg string, fields ...zap.Field) {
	write(ctx, logger, zapcore.WarnLevel, msg, fields)
}

func Debug(ctx context.Context, logger *zap.Logger, msg string, fields ...zap.Field) {
	write(ctx, logger, zapcore.DebugLevel, msg, fields)
}

// TraceFields returns the trace_id and span_id fields for ctx, or nil when
// ctx carries no valid span.
func TraceFields(ctx context.Context) []zap.Field {
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return nil
	}

	return []zap.Field{
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	}
}

func write(ctx context.Context, logger *zap.Logger, level zapcore.Level, msg string, fields []zap.Field) {
	ce := logger.WithOptions(zap.AddCallerSkip(2)).Check(level, msg)
	if ce == nil {
		return
	}

	ce.Write(append(fields, TraceFields(ctx)...)...)
}
