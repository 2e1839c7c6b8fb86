package logger

import "context"

type contextKey struct{}

var loggerKey = contextKey{}

func WithContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the request logger, or a no-op logger when none is attached.
func FromContext(ctx context.Context) *Logger {
	return FromContextOr(ctx, Nop())
}

// FromContextOr returns the request logger, or fallback when none is attached.
func FromContextOr(ctx context.Context, fallback *Logger) *Logger {
	if ctx == nil {
		return fallback
	}
	if l, ok := ctx.Value(loggerKey).(*Logger); ok && l != nil {
		return l
	}
	return fallback
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return WithContext(ctx, FromContext(ctx).With("request_id", requestID))
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return WithContext(ctx, FromContext(ctx).With("user_id", userID))
}
