// Package logging provides structured logging configuration using log/slog.
//
// Every import run gets a run id. Loggers obtained through FromContext carry
// it as run_id, so all entries of one import can be correlated.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// New builds a logger writing to w.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json", "pretty" (default: "text")
//
// Use "json" when the output is collected by a log pipeline and "pretty" for
// interactive terminals.
func New(w io.Writer, level, format string) *slog.Logger {
	lvl := parseLevel(level)
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "pretty":
		handler = charmlog.NewWithOptions(w, charmlog.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           charmlog.Level(lvl),
		})
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type contextKey string

const ctxKeyRunID contextKey = "run_id"

// ContextWithRunID attaches an import run id to ctx.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ctxKeyRunID, runID)
}

// RunIDFromContext returns the run id stored in ctx, or "".
func RunIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRunID).(string); ok {
		return v
	}
	return ""
}

// FromContext returns the default logger enriched with the run id from ctx.
//
// Usage:
//
//	ctx = logging.ContextWithRunID(ctx, runID)
//	logging.FromContext(ctx).Info("table loaded", "table", "city", "count", 600)
func FromContext(ctx context.Context) *slog.Logger {
	return enrich(ctx, slog.Default())
}

// WithFields returns base (or the default logger when base is nil) carrying
// the run id from ctx plus the given fields.
//
// Usage:
//
//	tableLogger := logging.WithFields(ctx, logger, "table", "payment")
//	tableLogger.Info("table loaded", "count", 16049)
func WithFields(ctx context.Context, base *slog.Logger, args ...any) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	return enrich(ctx, base).With(args...)
}

func enrich(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if runID := RunIDFromContext(ctx); runID != "" {
		logger = logger.With("run_id", runID)
	}
	return logger
}
