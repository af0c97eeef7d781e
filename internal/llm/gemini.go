package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/comigor/jokebot-go/internal/api"
	"github.com/comigor/jokebot-go/internal/config"
	"github.com/comigor/jokebot-go/internal/logger"
)

// Gemini calls the Gemini API through a fresh chat session per request.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini client authenticated with cfg.APIKey.
func NewGemini(ctx context.Context, cfg config.LLMConfig) (*Gemini, error) {
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client, model: cfg.Model}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

// Generate sends the last content as the new message with every earlier content as
// chat history, and the system instruction attached to the model.
func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	if len(req.Contents) == 0 {
		return "", ErrNoContents
	}

	model := g.client.GenerativeModel(g.model)
	if req.SystemInstruction != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.SystemInstruction))
	}

	last := len(req.Contents) - 1
	cs := model.StartChat()
	cs.History = toGenaiContents(req.Contents[:last])

	resp, err := cs.SendMessage(ctx, toGenaiParts(req.Contents[last])...)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			logger.L.Warn("gemini candidate did not stop cleanly", "candidate", i, "finish_reason", fmt.Sprint(cand.FinishReason))
		}
	}
	return extractText(resp), nil
}

func toGenaiParts(c api.Content) []genai.Part {
	parts := make([]genai.Part, 0, len(c.Parts))
	for _, p := range c.Parts {
		parts = append(parts, genai.Text(p.Text))
	}
	return parts
}

func toGenaiContents(contents []api.Content) []*genai.Content {
	out := make([]*genai.Content, 0, len(contents))
	for _, c := range contents {
		out = append(out, &genai.Content{Role: c.Role, Parts: toGenaiParts(c)})
	}
	return out
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
