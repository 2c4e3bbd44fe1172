package logging

import (
	"context"

	"go.uber.org/zap"
)

type (
	ctxLoggerKey  struct{}
	ctxRequestKey struct{}
)

// requestInfo is shared between the request middlewares. Handlers fill it in
// through WithOwner; AccessLogger reads it once the handler returns.
type requestInfo struct {
	ownerID string
}

// LoggerFromContext returns the request-scoped logger if present, otherwise falls back to the global logger.
func LoggerFromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return Logger()
	}
	if l, ok := ctx.Value(ctxLoggerKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return Logger()
}

// WithOwner tags the rest of the request with the authenticated owner: later
// log lines carry ownerId and so does the access log entry.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	if ownerID == "" {
		return ctx
	}
	if info := requestInfoFrom(ctx); info != nil {
		info.ownerID = ownerID
	}
	return contextWithLogger(ctx, LoggerFromContext(ctx).With(zap.String("ownerId", ownerID)))
}

// LogInfo writes an informational message using the request-aware logger.
func LogInfo(ctx context.Context, msg string, fields ...zap.Field) {
	LoggerFromContext(ctx).Info(msg, fields...)
}

// LogWarn writes a warning message using the request-aware logger.
func LogWarn(ctx context.Context, msg string, fields ...zap.Field) {
	LoggerFromContext(ctx).Warn(msg, fields...)
}

// LogError writes an error message using the request-aware logger and appends the error field when provided.
func LogError(ctx context.Context, msg string, err error, fields ...zap.Field) {
	logger := LoggerFromContext(ctx)
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.Error(msg, fields...)
}

// LogFatal logs with fatal severity and terminates the process. It attaches the error field when provided.
func LogFatal(ctx context.Context, msg string, err error, fields ...zap.Field) {
	logger := LoggerFromContext(ctx)
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.Fatal(msg, fields...)
}

// WithLogger returns a copy of ctx carrying logger. Handlers and tests use it to
// route output to a specific core.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return contextWithLogger(ctx, logger)
}

func contextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

func contextWithRequestInfo(ctx context.Context, info *requestInfo) context.Context {
	return context.WithValue(ctx, ctxRequestKey{}, info)
}

func requestInfoFrom(ctx context.Context) *requestInfo {
	if ctx == nil {
		return nil
	}
	info, _ := ctx.Value(ctxRequestKey{}).(*requestInfo)
	return info
}
