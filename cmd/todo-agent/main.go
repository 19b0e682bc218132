package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

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

	assistant, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to start assistant",
			zap.Error(err),
			zap.String("driver", cfg.Database.Driver),
			zap.String("provider", cfg.LLM.Provider))
	}
	defer func() {
		if err := assistant.Close(); err != nil {
			logger.Warn("failed to close resources", zap.Error(err))
		}
	}()

	input := newLineInput()
	defer input.Close()

	if err := assistant.Agent.Run(ctx, input, os.Stdout); err != nil {
		logger.Error("conversation loop stopped", zap.Error(err))
	}
}
