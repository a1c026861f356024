package logger

import "context"

type contextKey struct{}

var requestIDKey = contextKey{}

// WithRequestID stores the request id in ctx so WithContext can tag log lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request id stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
