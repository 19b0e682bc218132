package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/RichardoC/todo-agent/internal/config"
	"github.com/RichardoC/todo-agent/internal/models"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// jsonPrefill starts the assistant turn so the reply continues a JSON object;
// the messages API has no JSON response mode.
const jsonPrefill = "{"

type Anthropic struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

func NewAnthropic(cfg config.LLMConfig) *Anthropic {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Anthropic{
		client:    anthropic.NewClient(opts...),
		model:     anthropic.Model(cfg.Model),
		maxTokens: maxTokens,
	}
}

func (a *Anthropic) Complete(ctx context.Context, messages []models.Message) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: a.maxTokens,
	}
	var turns []models.Message
	for _, msg := range messages {
		if msg.Role == models.RoleSystem {
			params.System = append(params.System, anthropic.TextBlockParam{Text: msg.Content})
			continue
		}
		// the conversation must open with a user turn
		if len(turns) == 0 && msg.Role == models.RoleAssistant {
			continue
		}
		turns = append(turns, msg)
	}
	params.Messages = anthropicMessages(turns)

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			b.WriteString(v.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if !strings.HasPrefix(text, jsonPrefill) {
		text = jsonPrefill + text
	}
	return text, nil
}

// anthropicMessages converts turns and ends the request with the JSON
// prefill. After an assistant turn the prefill joins that turn instead of
// opening a second one.
func anthropicMessages(turns []models.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(turns)+1)
	for i, msg := range turns {
		if msg.Role != models.RoleAssistant {
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
			continue
		}
		if i == len(turns)-1 {
			out = append(out, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.Content),
				anthropic.NewTextBlock("\n"+jsonPrefill)))
			return out
		}
		out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
	}
	return append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(jsonPrefill)))
}
