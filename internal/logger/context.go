package logger

import (
	"context"

	apperrors "github.com/ytsafecheck/backend/internal/errors"
)

type contextKey string

const traceIDKey contextKey = "trace_id"

// WithRequestID stores the request ID where both the logger and the error
// writer can find it.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return apperrors.WithRequestID(ctx, requestID)
}

// WithTraceID stores a caller-supplied trace ID in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID returns the trace ID from the context, if any.
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}
