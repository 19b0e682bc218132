// Package history keeps the bounded conversation window sent to the model.
//
// The system prompt is not stored here; callers prepend it on every request
// so it can never be evicted.
package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/RichardoC/todo-agent/internal/config"
	"github.com/RichardoC/todo-agent/internal/models"
)

type Store interface {
	Append(ctx context.Context, msgs ...models.Message) error
	Messages(ctx context.Context) ([]models.Message, error)
	Close() error
}

// New builds the store selected by cfg.Backend. sessionID only matters for
// the redis backend.
func New(ctx context.Context, cfg config.HistoryConfig, sessionID string) (Store, error) {
	var counter Counter
	if cfg.MaxTokens > 0 {
		counter = NewTiktokenCounter(cfg.Encoding)
	}
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return NewMemory(cfg.MaxMessages, cfg.MaxTokens, counter), nil
	case "redis":
		return NewRedis(ctx, cfg, sessionID, counter)
	}
	return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
}

// window returns the newest suffix of msgs whose token count fits budget.
// The newest message is always kept, even when it alone exceeds budget.
func window(msgs []models.Message, budget int, counter Counter) []models.Message {
	if budget <= 0 || counter == nil || len(msgs) == 0 {
		return msgs
	}
	total := 0
	start := len(msgs)
	for i := len(msgs) - 1; i >= 0; i-- {
		cost := counter.CountMessage(msgs[i])
		if total+cost > budget && start < len(msgs) {
			break
		}
		total += cost
		start = i
	}
	return msgs[start:]
}
