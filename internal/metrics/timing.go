package metrics

import (
	"context"
	"log/slog"
	"time"
)

// Measure runs fn and logs its wall-clock duration at debug level under the given name,
// whether or not fn fails. The result and error of fn are returned unchanged.
func Measure[T any](ctx context.Context, logger *slog.Logger, name string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	result, err := fn(ctx)
	elapsed := time.Since(start)

	if logger != nil {
		attrs := []slog.Attr{
			slog.String("operation", name),
			slog.Duration("duration", elapsed),
		}
		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
		}
		logger.LogAttrs(ctx, slog.LevelDebug, "operation timed", attrs...)
	}

	return result, err
}
