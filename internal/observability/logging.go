// Package observability carries build and request identifiers through a
// context so that every log line of one build or request can be correlated.
package observability

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// LogContext holds structured logging context information.
type LogContext struct {
	BuildID   string
	Stage     string
	RequestID string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithBuildID adds a build ID to the context.
func WithBuildID(ctx context.Context, buildID string) context.Context {
	lc := FromContext(ctx)
	lc.BuildID = buildID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStage adds a stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	lc := FromContext(ctx)
	lc.Stage = stage
	return context.WithValue(ctx, logContextKey, lc)
}

// WithRequestID adds an HTTP request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	lc := FromContext(ctx)
	lc.RequestID = requestID
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext returns the LogContext stored in ctx, or the zero value.
func FromContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

// Attrs returns the slog attributes of the context's LogContext.
func Attrs(ctx context.Context) []slog.Attr {
	lc := FromContext(ctx)
	var attrs []slog.Attr
	if lc.BuildID != "" {
		attrs = append(attrs, slog.String("build.id", lc.BuildID))
	}
	if lc.Stage != "" {
		attrs = append(attrs, slog.String(logfields.KeyStage, lc.Stage))
	}
	if lc.RequestID != "" {
		attrs = append(attrs, slog.String("request.id", lc.RequestID))
	}
	return attrs
}

func logContext(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	slog.LogAttrs(ctx, level, msg, append(Attrs(ctx), attrs...)...)
}

// InfoContext logs an info message with context information.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelInfo, msg, attrs)
}

// WarnContext logs a warning message with context information.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelWarn, msg, attrs)
}

// ErrorContext logs an error message with context information.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelError, msg, attrs)
}

// DebugContext logs a debug message with context information.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelDebug, msg, attrs)
}
