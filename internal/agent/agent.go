package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/RichardoC/todo-agent/internal/config"
	"github.com/RichardoC/todo-agent/internal/history"
	"github.com/RichardoC/todo-agent/internal/llm"
	"github.com/RichardoC/todo-agent/internal/models"
	"github.com/RichardoC/todo-agent/internal/tools"
	"go.uber.org/zap"
)

var ErrStepLimit = errors.New("model did not produce an output within the step limit")

type Agent struct {
	model      llm.Model
	dispatcher *tools.Dispatcher
	history    history.Store
	logger     *zap.Logger
	cfg        config.AgentConfig
	system     models.Message

	// turns are strictly sequential
	mu sync.Mutex
}

func New(model llm.Model, dispatcher *tools.Dispatcher, store history.Store, logger *zap.Logger, cfg config.AgentConfig) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = 10
	}
	return &Agent{
		model:      model,
		dispatcher: dispatcher,
		history:    store,
		logger:     logger,
		cfg:        cfg,
		system:     models.Message{Role: models.RoleSystem, Content: SystemPrompt()},
	}
}

// Turn handles one user input: it keeps calling the model, running the
// requested tools, until the model emits an output envelope.
func (a *Agent) Turn(ctx context.Context, input string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.record(ctx, models.RoleUser, User{User: input}); err != nil {
		return "", err
	}

	retries := 0
	for step := 0; step < a.cfg.MaxSteps; step++ {
		reply, err := a.complete(ctx)
		if err != nil {
			return "", err
		}
		if err := a.history.Append(ctx, models.Message{Role: models.RoleAssistant, Content: reply}); err != nil {
			return "", fmt.Errorf("failed to save reply: %w", err)
		}

		env, err := DecodeReply(reply)
		if err != nil {
			if retries >= a.cfg.MaxReplyRetries {
				return "", err
			}
			retries++
			a.logger.Warn("Invalid model reply",
				zap.Error(err),
				zap.String("reply", reply),
				zap.Int("retry", retries))
			if err := a.observe(ctx, fmt.Sprintf("Your last reply was invalid (%v). Reply with a single JSON object whose \"type\" is plan, action or output.", err)); err != nil {
				return "", err
			}
			continue
		}

		switch e := env.(type) {
		case Output:
			return e.Output, nil
		case Plan:
			a.logger.Debug("Model plan", zap.String("plan", e.Plan))
		case Action:
			observation, err := a.act(ctx, e)
			if err != nil {
				return "", err
			}
			if err := a.observe(ctx, observation); err != nil {
				return "", err
			}
		case User, Observation:
			return "", fmt.Errorf("%w: %q from model", ErrUnknownKind, e.Kind())
		}
	}
	return "", ErrStepLimit
}

// act runs the requested tool. Unknown functions and bad inputs become
// observations so the model can correct itself; storage failures end the turn.
func (a *Agent) act(ctx context.Context, action Action) (any, error) {
	kind, ok := tools.ParseKind(action.Function)
	if !ok {
		a.logger.Warn("Model requested an invalid function", zap.String("function", action.Function))
		return fmt.Sprintf("Invalid function name %q. Available functions: %s",
			action.Function, strings.Join(tools.Names(), ", ")), nil
	}

	a.logger.Debug("Invoking tool",
		zap.Stringer("tool", kind),
		zap.ByteString("input", action.Input))

	result, err := a.dispatcher.Invoke(ctx, kind, action.Input)
	if errors.Is(err, tools.ErrInvalidInput) {
		return fmt.Sprintf("Error: %v", err), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", kind, err)
	}
	return formatResult(result), nil
}

func formatResult(result any) any {
	todos, ok := result.([]models.Todo)
	if !ok {
		return result
	}
	if len(todos) == 0 {
		return "No todos found."
	}
	lines := make([]string, len(todos))
	for i, t := range todos {
		lines[i] = fmt.Sprintf("ID: %d, Task: %s", t.ID, t.Todo)
	}
	return strings.Join(lines, "\n")
}

func (a *Agent) complete(ctx context.Context) (string, error) {
	msgs, err := a.history.Messages(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load history: %w", err)
	}
	request := make([]models.Message, 0, len(msgs)+1)
	request = append(request, a.system)
	request = append(request, msgs...)

	reply, err := a.model.Complete(ctx, request)
	if err != nil {
		return "", err
	}
	return reply, nil
}

func (a *Agent) observe(ctx context.Context, observation any) error {
	return a.record(ctx, models.RoleUser, Observation{Observation: observation})
}

func (a *Agent) record(ctx context.Context, role string, env Envelope) error {
	content, err := Encode(env)
	if err != nil {
		return err
	}
	if err := a.history.Append(ctx, models.Message{Role: role, Content: content}); err != nil {
		return fmt.Errorf("failed to save %s message: %w", env.Kind(), err)
	}
	return nil
}
