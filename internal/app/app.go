// Package app wires configuration into a ready-to-use assistant.
package app

import (
	"context"
	"fmt"

	"github.com/RichardoC/todo-agent/internal/agent"
	"github.com/RichardoC/todo-agent/internal/config"
	"github.com/RichardoC/todo-agent/internal/db"
	"github.com/RichardoC/todo-agent/internal/history"
	"github.com/RichardoC/todo-agent/internal/llm"
	"github.com/RichardoC/todo-agent/internal/tools"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type App struct {
	DB      *db.Database
	History history.Store
	Agent   *agent.Agent
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	database, err := db.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	store, err := history.New(ctx, cfg.History, "")
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize history: %w", err)
	}
	if r, ok := store.(*history.Redis); ok {
		logger.Info("Using redis conversation history", zap.String("session", r.SessionID()))
	}

	model, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, multierr.Combine(
			fmt.Errorf("failed to initialize LLM: %w", err),
			store.Close(),
			database.Close(),
		)
	}

	assistant := agent.New(model, tools.NewDispatcher(database), store, logger, cfg.Agent)
	return &App{DB: database, History: store, Agent: assistant}, nil
}

func (a *App) Close() error {
	return multierr.Combine(a.History.Close(), a.DB.Close())
}
