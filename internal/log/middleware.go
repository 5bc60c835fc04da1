package log

import (
	"context"
	"log/slog"
	"net/http"
)

type ContextKey string

// LoggerContextKey holds the request scoped *Logger.
const LoggerContextKey ContextKey = "logger"

// Middleware stores logger in each request context.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), LoggerContextKey, logger)))
		})
	}
}

// FromContext returns the request logger, or one backed by slog.Default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

// ComponentMiddleware retags the request logger with component.
func ComponentMiddleware(component string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := FromContext(r.Context()).WithComponent(component)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), LoggerContextKey, logger)))
		})
	}
}

// RequestIDMiddleware adds the request id returned by extract to the request logger.
func RequestIDMiddleware(extract func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := extract(r)
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}
			logger := FromContext(r.Context()).With(FieldRequestID, id)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), LoggerContextKey, logger)))
		})
	}
}

// StructuredLogger writes the domain events other packages emit.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

func (sl *StructuredLogger) emit(ctx context.Context, level slog.Level, msg string, fields LogFields) {
	sl.logger.Logger.Log(ctx, level, msg, fields.ToSlice()...)
}

// LogRender records a rendered artifact.
func (sl *StructuredLogger) LogRender(ctx context.Context, userID, format string, rows, bytes int) {
	sl.emit(ctx, slog.LevelInfo, "Report rendered", NewFields().
		WithUser(userID).
		WithArtifact(format, rows, bytes).
		WithOperation(OpRender).
		WithComponent(ComponentReport))
}

// LogExport records a query window exported to an external target.
func (sl *StructuredLogger) LogExport(ctx context.Context, userID, target string, days, rows int) {
	fields := NewFields().
		WithUser(userID).
		WithWindow(days).
		WithOperation(OpExport).
		WithComponent(ComponentSheets)
	fields[FieldRows] = rows
	fields["target"] = target
	sl.emit(ctx, slog.LevelInfo, "Window exported", fields)
}

// LogTransactionCreated records a stored transaction.
func (sl *StructuredLogger) LogTransactionCreated(ctx context.Context, userID string, id int64, txType, amount string) {
	fields := NewFields().
		WithUser(userID).
		WithOperation(OpCreate).
		WithComponent(ComponentStorage)
	fields[FieldTransactionID] = id
	fields[FieldTxType] = txType
	fields[FieldAmount] = amount
	sl.emit(ctx, slog.LevelInfo, "Transaction created", fields)
}

// LogError records a failed operation.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	sl.emit(ctx, slog.LevelError, msg, fields.WithError(err).WithOperation(operation).WithComponent(component))
}
