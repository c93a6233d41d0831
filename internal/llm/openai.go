package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DefaultGroqBaseURL   = "https://api.groq.com/openai/v1"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultGroqModel     = "llama-3.3-70b-versatile"
	DefaultOpenAIModel   = "gpt-4o-mini"
)

// chatCompletions speaks the OpenAI-compatible chat completions protocol
// (OpenAI, Groq and other compatible gateways).
type chatCompletions struct {
	url         string
	apiKey      string
	model       string
	temperature float64
	seed        int64
	http        *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Seed        *int64        `json:"seed,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func newChatCompletions(s Settings, httpClient *http.Client) *chatCompletions {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &chatCompletions{
		url:         strings.TrimRight(s.BaseURL, "/") + "/chat/completions",
		apiKey:      s.APIKey,
		model:       s.Model,
		temperature: s.Temperature,
		seed:        s.Seed,
		http:        httpClient,
	}
}

func (c *chatCompletions) complete(ctx context.Context, system, user string) (string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.temperature,
	}
	if c.seed != 0 {
		seed := c.seed
		req.Seed = &seed
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat completions %s: %s", resp.Status, truncate(string(data), 200))
	}

	var out chatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if out.Error != nil && out.Error.Message != "" {
		return "", fmt.Errorf("chat completions: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("chat completions: empty choices in response")
	}
	return out.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
