package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// NewLogger builds a structured logger from the given configuration.
// The configuration selects the minimum level, the record format (json or
// text), and the destination (stdout, stderr, or an absolute file path;
// files are opened in append mode).
func NewLogger(cfg LoggingConfig) (*slog.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, WrapObservabilityError(ErrInvalidLogConfig, "invalid logging configuration", err)
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, WrapObservabilityError(ErrInvalidLogConfig, "invalid logging configuration", err)
	}

	var w io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, WrapObservabilityError(ErrInvalidLogConfig, "failed to open log file", err)
		}
		w = f
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = NewTextHandler(w, level)
	} else {
		handler = NewJSONHandler(w, level)
	}

	return slog.New(handler), nil
}

// ParseLevel converts a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// NewJSONHandler creates a new JSON log handler with the specified output and level.
// JSON format is ideal for structured logging in production environments.
func NewJSONHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
}

// NewTextHandler creates a new text log handler with the specified output and level.
// Text format is human-readable and useful for development and debugging.
func NewTextHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
}

// WithTraceContext returns a logger that carries the trace and span IDs of the
// active span in ctx. When ctx holds no valid span context, the logger is
// returned unchanged. Log lines produced by the returned logger can be joined
// with exported spans through the trace_id field.
func WithTraceContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return logger
	}

	spanCtx := span.SpanContext()
	return logger.With(
		slog.String("trace_id", spanCtx.TraceID().String()),
		slog.String("span_id", spanCtx.SpanID().String()),
	)
}
