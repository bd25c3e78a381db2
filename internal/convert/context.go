package convert

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	backendKey   contextKey = "backend"
)

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithBackend annotates context with the selected backend name.
func WithBackend(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, backendKey, name)
}

// BackendFromContext extracts the backend name if present.
func BackendFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(backendKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
