package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"credits/internal/core/domain"
)

// StructuredLogger implementa domain.Logger usando log/slog
type StructuredLogger struct {
	logger *slog.Logger
}

// New cria um logger JSON no nível informado (debug, info, warn, error)
func New(service, level string) *StructuredLogger {
	return NewWithWriter(os.Stdout, service, ParseLevel(level))
}

func NewWithWriter(w io.Writer, service string, level slog.Level) *StructuredLogger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	handler := slog.NewJSONHandler(w, opts)
	return &StructuredLogger{
		logger: slog.New(handler).With(slog.String("service", service)),
	}
}

// ParseLevel converte o nível textual; valores desconhecidos viram info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Slog expõe o *slog.Logger para bibliotecas que o aceitam diretamente
func (l *StructuredLogger) Slog() *slog.Logger {
	return l.logger
}

func (l *StructuredLogger) Info(ctx context.Context, msg string, fields map[string]interface{}) {
	l.logWithFields(ctx, slog.LevelInfo, msg, fields)
}

func (l *StructuredLogger) Error(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	attrs := l.attrs(ctx, fields)
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (l *StructuredLogger) Warn(ctx context.Context, msg string, fields map[string]interface{}) {
	l.logWithFields(ctx, slog.LevelWarn, msg, fields)
}

func (l *StructuredLogger) Debug(ctx context.Context, msg string, fields map[string]interface{}) {
	l.logWithFields(ctx, slog.LevelDebug, msg, fields)
}

func (l *StructuredLogger) logWithFields(ctx context.Context, level slog.Level, msg string, fields map[string]interface{}) {
	if !l.logger.Enabled(ctx, level) {
		return
	}
	l.logger.LogAttrs(ctx, level, msg, l.attrs(ctx, fields)...)
}

// attrs não altera o mapa recebido; o chamador pode reutilizá-lo
func (l *StructuredLogger) attrs(ctx context.Context, fields map[string]interface{}) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(fields)+2)
	if correlationID := domain.CorrelationID(ctx); correlationID != "" {
		attrs = append(attrs, slog.String("correlation_id", correlationID))
	}
	if traceID := domain.TraceID(ctx); traceID != "" {
		attrs = append(attrs, slog.String("trace_id", traceID))
	}
	for key, value := range fields {
		attrs = append(attrs, slog.Any(key, value))
	}
	return attrs
}
