package llm

import "context"

// Mock is a deterministic, offline generator used when no backend is
// connected. Every call returns MockText.
type Mock struct{}

func (m *Mock) Name() string {
	return "mock"
}

func (m *Mock) Generate(ctx context.Context, system, user string) Reply {
	return Reply{Text: MockText}
}
