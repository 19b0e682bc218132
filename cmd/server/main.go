package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RichardoC/todo-agent/internal/api"
	"github.com/RichardoC/todo-agent/internal/app"
	"github.com/RichardoC/todo-agent/internal/config"
	"github.com/RichardoC/todo-agent/internal/logging"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// run serves until ctx is cancelled. Resources are closed before it returns.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) (err error) {
	assistant, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to start assistant: %w", err)
	}
	defer func() {
		if closeErr := assistant.Close(); closeErr != nil {
			logger.Warn("failed to close resources", zap.Error(closeErr))
		}
	}()

	mux := http.NewServeMux()
	api.NewHandler(assistant.DB, assistant.Agent, logger).Routes(mux)

	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to shut down server", zap.Error(err))
		}
	}()

	logger.Info("Starting server", zap.String("addr", cfg.HTTP.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
