// Package llm adapts eino chat models to the text generation port.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/target/deckgen/internal/core"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("empty model response")

// Config selects an OpenAI-compatible endpoint.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// ChatGenerator implements core.TextGenerator on top of an eino chat model.
type ChatGenerator struct {
	chat model.BaseChatModel
}

// New wraps an existing chat model.
func New(chat model.BaseChatModel) *ChatGenerator {
	if chat == nil {
		panic("chat model is required")
	}
	return &ChatGenerator{chat: chat}
}

// NewOpenAI connects to an OpenAI-compatible chat completion API.
func NewOpenAI(ctx context.Context, cfg Config) (*ChatGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4"
	}
	chat, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: create chat model: %w", err)
	}
	return New(chat), nil
}

// Complete sends req as a system plus user message pair and returns the reply text.
func (g *ChatGenerator) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	msgs := make([]*schema.Message, 0, 2)
	if req.System != "" {
		msgs = append(msgs, schema.SystemMessage(req.System))
	}
	msgs = append(msgs, schema.UserMessage(req.Prompt))

	var opts []model.Option
	if req.Model != "" {
		opts = append(opts, model.WithModel(req.Model))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxTokens))
	}
	if req.Temperature > 0 {
		opts = append(opts, model.WithTemperature(req.Temperature))
	}

	out, err := g.chat.Generate(ctx, msgs, opts...)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return "", ErrEmptyResponse
	}
	return out.Content, nil
}
