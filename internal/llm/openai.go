package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/comigor/jokebot-go/internal/config"
	"github.com/comigor/jokebot-go/internal/history"
)

// ChatCompleter is the subset of openai.Client used here.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI calls any OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	client ChatCompleter
	model  string
}

// NewOpenAI creates an OpenAI-compatible client.
func NewOpenAI(cfg config.LLMConfig) *OpenAI {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &OpenAI{client: openai.NewClientWithConfig(oc), model: cfg.Model}
}

func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	if len(req.Contents) == 0 {
		return "", ErrNoContents
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: toOpenAIMessages(req),
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("OpenAI API error: response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(req Request) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Contents)+1)
	if req.SystemInstruction != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemInstruction,
		})
	}
	for _, c := range req.Contents {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openAIRole(c.Role),
			Content: c.Text(),
		})
	}
	return msgs
}

func openAIRole(role string) string {
	if role == string(history.RoleModel) {
		return openai.ChatMessageRoleAssistant
	}
	return openai.ChatMessageRoleUser
}
