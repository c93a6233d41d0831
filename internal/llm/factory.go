package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Provider names accepted by New.
const (
	ProviderMock   = "mock"
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// New builds the Generator for the configured provider. A provider without
// credentials degrades to Mock with a warning rather than failing.
func New(ctx context.Context, s Settings, log *zap.Logger) (Generator, error) {
	if log == nil {
		log = zap.NewNop()
	}
	provider := strings.ToLower(strings.TrimSpace(s.Provider))
	if provider == "" {
		provider = ProviderOpenAI
	}

	switch provider {
	case ProviderMock:
		log.Warn("Running in MOCK mode (No AI connected).")
		return &Mock{}, nil
	case ProviderGroq, ProviderOpenAI:
		if s.APIKey == "" {
			log.Warn(fmt.Sprintf("%s_API_KEY not found in environment", strings.ToUpper(provider)))
			log.Warn("Running in MOCK mode (No AI connected).")
			return &Mock{}, nil
		}
		if s.BaseURL == "" {
			s.BaseURL = DefaultOpenAIBaseURL
			if provider == ProviderGroq {
				s.BaseURL = DefaultGroqBaseURL
			}
		}
		if s.Model == "" {
			s.Model = DefaultOpenAIModel
			if provider == ProviderGroq {
				s.Model = DefaultGroqModel
			}
		}
		log.Info(fmt.Sprintf("Connected to %s API.", strings.ToUpper(provider)),
			zap.String("base_url", s.BaseURL), zap.String("model", s.Model))
		return newClient(provider, newChatCompletions(s, nil), s.Timeout, log), nil
	case ProviderGemini:
		if s.APIKey == "" {
			log.Warn("GEMINI_API_KEY not found in environment")
			log.Warn("Running in MOCK mode (No AI connected).")
			return &Mock{}, nil
		}
		backend, err := newGemini(ctx, s)
		if err != nil {
			return nil, err
		}
		log.Info("Connected to GEMINI API.", zap.String("model", backend.model))
		return newClient(provider, backend, s.Timeout, log), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", s.Provider)
	}
}
