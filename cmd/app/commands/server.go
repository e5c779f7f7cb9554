package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/signum/internal/app"
	"github.com/allisson/signum/internal/config"
)

// Server is a component started and gracefully stopped by RunServer.
type Server interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Worker is a background loop that runs until its context is done.
type Worker interface {
	Start(ctx context.Context) error
}

// RunServer starts the API server, the metrics server and the revocation sweeper.
// Blocks until SIGINT/SIGTERM or until one of them fails, then shuts the servers down
// within ShutdownTimeout.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))

	defer closeContainer(container, logger)

	// Resolving the server initializes every dependency, including the secret keys.
	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	sweeper, err := container.RevocationSweeper()
	if err != nil {
		return fmt.Errorf("failed to initialize revocation sweeper: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	servers := []Server{server}
	if metricsServer != nil {
		servers = append(servers, metricsServer)
	}

	return runServers(ctx, logger, cfg.ShutdownTimeout, []Worker{sweeper}, servers...)
}

// runServers runs servers and workers in one errgroup. The first failure or ctx cancellation
// stops all of them.
func runServers(
	ctx context.Context,
	logger *slog.Logger,
	shutdownTimeout time.Duration,
	workers []Worker,
	servers ...Server,
) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, server := range servers {
		g.Go(func() error {
			return server.Start(gctx)
		})
	}

	for _, worker := range workers {
		g.Go(func() error {
			err := worker.Start(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var shutdownErrors []error
		for _, server := range servers {
			if err := server.Shutdown(shutdownCtx); err != nil {
				shutdownErrors = append(shutdownErrors, err)
			}
		}
		return errors.Join(shutdownErrors...)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		return err
	}
	return nil
}
