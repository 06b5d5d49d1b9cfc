package http

import (
	"context"
	"log/slog"

	"github.com/example/train-scheduler/internal/logging"
)

type contextKey string

const trainNameContextKey contextKey = "train_name"

// ContextWithTrainName injects the train identifier resolved from the request path.
func ContextWithTrainName(ctx context.Context, train string) context.Context {
	return context.WithValue(ctx, trainNameContextKey, train)
}

// TrainNameFromContext extracts a train identifier previously associated with the context.
func TrainNameFromContext(ctx context.Context) (string, bool) {
	train, ok := ctx.Value(trainNameContextKey).(string)
	return train, ok
}

// ContextWithLogger attaches a request scoped logger. Application services
// read the same logger through the logging package.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request scoped logger, if any.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
