package main

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/RichardoC/todo-agent/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func serverConfig(t *testing.T, addr string) *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite3", DSN: filepath.Join(t.TempDir(), "todos.db")},
		LLM:      config.LLMConfig{Provider: "go-openai", APIKey: "test", Model: "test-model", Timeout: time.Second},
		Agent:    config.AgentConfig{MaxSteps: 3},
		History:  config.HistoryConfig{Backend: "memory", MaxMessages: 10},
		HTTP:     config.HTTPConfig{Addr: addr},
	}
}

func TestRunReturnsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	core, logs := observer.New(zap.WarnLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = run(ctx, serverConfig(t, ln.Addr().String()), zap.New(core))
	assert.ErrorContains(t, err, "failed to start server")
	assert.Empty(t, logs.All())
}

func TestRunStopsOnCancel(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, serverConfig(t, "127.0.0.1:0"), zap.New(core))
	assert.NoError(t, err)
	assert.Empty(t, logs.All())
}

func TestRunReportsStartupError(t *testing.T) {
	cfg := serverConfig(t, "127.0.0.1:0")
	cfg.LLM.Provider = "palm"

	err := run(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "failed to start assistant")
}
