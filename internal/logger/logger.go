// Package logger wraps a process-wide slog logger with helpers for method tracing,
// store and broker calls, and booking lifecycle events.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Initialize sets up the global logger on stdout with the given level and format
// (json or text).
func Initialize(level, format string) {
	InitializeWithWriter(os.Stdout, level, format)
}

// InitializeWithWriter is Initialize with an explicit destination
func InitializeWithWriter(w io.Writer, level, format string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func get() *slog.Logger {
	if defaultLogger == nil {
		Initialize("info", "text")
	}
	return defaultLogger
}

func Debug(msg string, args ...any) { get().Debug(msg, args...) }
func Info(msg string, args ...any)  { get().Info(msg, args...) }
func Warn(msg string, args ...any)  { get().Warn(msg, args...) }
func Error(msg string, args ...any) { get().Error(msg, args...) }

func DebugContext(ctx context.Context, msg string, args ...any) {
	get().DebugContext(ctx, msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	get().WarnContext(ctx, msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	get().ErrorContext(ctx, msg, args...)
}

// WithBooking returns a logger that tags every record with the booking id.
func WithBooking(bookingID string) *slog.Logger {
	return get().With("booking_id", bookingID)
}

// Event records a booking lifecycle or barber profile change at info level.
func Event(ctx context.Context, name string, args ...any) {
	get().InfoContext(ctx, "domain event", prepend(args, "event", name)...)
}

// EnterMethod and ExitMethod trace service and repository calls at debug level.
func EnterMethod(methodName string, args ...any) {
	get().Debug("→ Method entered", prepend(args, "method", methodName, "event", "enter")...)
}

func ExitMethod(methodName string, args ...any) {
	get().Debug("← Method exited", prepend(args, "method", methodName, "event", "exit")...)
}

func ExitMethodWithError(methodName string, err error, args ...any) {
	get().Error("← Method exited with error", prepend(args, "method", methodName, "event", "exit", "error", err)...)
}

// DatabaseCall and DatabaseResult bracket a statement against the store.
func DatabaseCall(operation, query string, args ...any) {
	get().Debug("→ Database call", prepend(args, "operation", operation, "query", query)...)
}

func DatabaseResult(operation string, rowsAffected int64, err error, args ...any) {
	outcome("Database call", err, prepend(args, "operation", operation, "rows_affected", rowsAffected))
}

// ExternalServiceCall and ExternalServiceResult bracket a call to the broker or the
// payment gateway.
func ExternalServiceCall(service, operation string, args ...any) {
	get().Debug("→ External service call", prepend(args, "service", service, "operation", operation)...)
}

func ExternalServiceResult(service, operation string, err error, args ...any) {
	outcome("External service call", err, prepend(args, "service", service, "operation", operation))
}

// outcome logs failures at error level and successes at debug level.
func outcome(what string, err error, args []any) {
	if err != nil {
		get().Error("← "+what+" failed", append(args, "error", err)...)
		return
	}
	get().Debug("← "+what+" succeeded", args...)
}

func prepend(args []any, lead ...any) []any {
	return append(lead, args...)
}
