package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// gemini calls the Gemini API through the genai SDK.
type gemini struct {
	client      *genai.Client
	model       string
	temperature float64
	seed        int64
}

func newGemini(ctx context.Context, s Settings) (*gemini, error) {
	if s.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	model := s.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	return &gemini{
		client:      client,
		model:       model,
		temperature: s.Temperature,
		seed:        s.Seed,
	}, nil
}

func (g *gemini) complete(ctx context.Context, system, user string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(float32(g.temperature)),
	}
	if g.seed != 0 {
		cfg.Seed = genai.Ptr(int32(g.seed))
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(user), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini generate: empty response")
	}
	return text, nil
}
