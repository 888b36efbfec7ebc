package openai

import (
	"context"
	"fmt"
	"time"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"

	"stockvoice/internal/domain"
)

const DefaultChatModel = "gpt-4o-mini"

// ChatClient is a text generator for any OpenAI-compatible chat completions
// endpoint, including Gemini's compatibility layer.
type ChatClient struct {
	model *einoopenai.ChatModel
}

type ChatOptions struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

func NewChatClient(ctx context.Context, opts ChatOptions) (*ChatClient, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultChatModel
	}

	cfg := &einoopenai.ChatModelConfig{
		APIKey:  opts.APIKey,
		BaseURL: opts.BaseURL,
		Model:   opts.Model,
		Timeout: opts.Timeout,
	}
	if opts.MaxTokens > 0 {
		maxTokens := opts.MaxTokens
		cfg.MaxTokens = &maxTokens
	}

	chatModel, err := einoopenai.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating chat model: %w", err)
	}
	return &ChatClient{model: chatModel}, nil
}

func (c *ChatClient) Generate(ctx context.Context, messages []domain.Message) (string, error) {
	input := make([]*schema.Message, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case domain.RoleSystem:
			input = append(input, schema.SystemMessage(m.Content))
		case domain.RoleAssistant:
			input = append(input, schema.AssistantMessage(m.Content, nil))
		default:
			input = append(input, schema.UserMessage(m.Content))
		}
	}

	out, err := c.model.Generate(ctx, input)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if out == nil || out.Content == "" {
		return "", domain.ErrEmptyCompletion
	}
	return out.Content, nil
}
