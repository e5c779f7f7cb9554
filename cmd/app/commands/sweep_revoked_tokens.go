package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// RevokedTokenSweeper deletes revoked tokens that expired before now.
type RevokedTokenSweeper interface {
	Sweep(ctx context.Context, now time.Time) (int64, error)
}

// RunSweepRevokedTokens runs one revocation sweep immediately, for deployments that schedule
// cleanup externally instead of running the in-process sweeper.
func RunSweepRevokedTokens(
	ctx context.Context,
	sweeper RevokedTokenSweeper,
	logger *slog.Logger,
	writer io.Writer,
	now time.Time,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("sweeping revoked tokens", slog.Time("now", now))

	count, err := sweeper.Sweep(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to sweep revoked tokens: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{
			"count":      count,
			"expired_at": now.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Successfully deleted %d expired revoked token(s)\n", count)
	}

	logger.Info("sweep completed", slog.Int64("count", count))
	return nil
}
