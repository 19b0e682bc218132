package history

import (
	"context"
	"sync"

	"github.com/RichardoC/todo-agent/internal/models"
)

// Memory is an in-process window that evicts the oldest messages first.
type Memory struct {
	mu          sync.Mutex
	messages    []models.Message
	maxMessages int
	maxTokens   int
	counter     Counter
}

// NewMemory keeps at most maxMessages messages and, when maxTokens > 0,
// at most maxTokens tokens as measured by counter.
func NewMemory(maxMessages, maxTokens int, counter Counter) *Memory {
	return &Memory{
		messages:    make([]models.Message, 0, maxMessages),
		maxMessages: maxMessages,
		maxTokens:   maxTokens,
		counter:     counter,
	}
}

func (m *Memory) Append(_ context.Context, msgs ...models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages, msgs...)
	if m.maxMessages > 0 && len(m.messages) > m.maxMessages {
		m.messages = m.messages[len(m.messages)-m.maxMessages:]
	}
	m.messages = window(m.messages, m.maxTokens, m.counter)
	return nil
}

func (m *Memory) Messages(_ context.Context) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Message, len(m.messages))
	copy(out, m.messages)
	return out, nil
}

func (m *Memory) Close() error { return nil }
