package logging

import (
	"context"
	"log/slog"
	"time"

	"onnxgate/internal/convert"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRequestID is the standardized structured logging key for request correlation identifiers.
	FieldRequestID = "request_id"
	// FieldBackend is the standardized structured logging key for conversion backend names.
	FieldBackend = "backend"
	// FieldFormat is the standardized structured logging key for caller-supplied format tokens.
	FieldFormat = "source_format"
)

type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

func Args(attrs ...Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

// NewNop returns a logger that discards all output.
func NewNop() *slog.Logger {
	return slog.New(nopHandler{})
}

// WithComponent creates a logger tagged with a standardized component attribute.
// If logger is nil, a no-op logger is used as the base.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]Attr, 0, 2)
	if id, ok := convert.RequestIDFromContext(ctx); ok {
		fields = append(fields, String(FieldRequestID, id))
	}
	if name, ok := convert.BackendFromContext(ctx); ok {
		fields = append(fields, String(FieldBackend, name))
	}
	return fields
}

// WithContext returns a logger augmented with fields derived from the context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (nopHandler) Handle(context.Context, slog.Record) error { return nil }

func (nopHandler) WithAttrs([]slog.Attr) slog.Handler { return nopHandler{} }

func (nopHandler) WithGroup(string) slog.Handler { return nopHandler{} }
