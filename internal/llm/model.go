package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RichardoC/todo-agent/internal/config"
	"github.com/RichardoC/todo-agent/internal/models"
)

// Model sends a conversation to a chat-completion endpoint and returns the
// assistant's reply text. Backends ask for a JSON object response.
type Model interface {
	Complete(ctx context.Context, messages []models.Message) (string, error)
}

// New builds the backend named by cfg.Provider.
func New(cfg config.LLMConfig) (Model, error) {
	var (
		model Model
		err   error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "openai", "langchain":
		model, err = NewLangChain(cfg)
	case "go-openai":
		model = NewGoOpenAI(cfg)
	case "anthropic":
		model = NewAnthropic(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return WithTimeout(model, cfg.Timeout), nil
}

type timeoutModel struct {
	Model
	timeout time.Duration
}

// WithTimeout bounds every Complete call by d. A non-positive d disables it.
func WithTimeout(m Model, d time.Duration) Model {
	if d <= 0 {
		return m
	}
	return &timeoutModel{Model: m, timeout: d}
}

func (t *timeoutModel) Complete(ctx context.Context, messages []models.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Model.Complete(ctx, messages)
}
