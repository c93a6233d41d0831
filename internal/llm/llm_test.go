package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMockReturnsFixedText(t *testing.T) {
	m := &Mock{}
	reply := m.Generate(context.Background(), "sys", "user")
	assert.Equal(t, MockText, reply.Text)
	assert.False(t, reply.Failed())
}

func TestNewDegradesToMockWithoutKey(t *testing.T) {
	for _, provider := range []string{ProviderGroq, ProviderOpenAI, ProviderGemini, ProviderMock} {
		t.Run(provider, func(t *testing.T) {
			gen, err := New(context.Background(), Settings{Provider: provider}, zaptest.NewLogger(t))
			require.NoError(t, err)
			assert.Equal(t, "mock", gen.Name())
		})
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Settings{Provider: "carrier-pigeon"}, nil)
	assert.Error(t, err)
}

func TestChatCompletionsRoundTrip(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ROAS fell."}}]}`))
	}))
	defer srv.Close()

	gen, err := New(context.Background(), Settings{
		Provider:    ProviderGroq,
		BaseURL:     srv.URL + "/v1/",
		Model:       "llama-3.3-70b-versatile",
		APIKey:      "secret",
		Temperature: 0.2,
		Seed:        42,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, ProviderGroq, gen.Name())

	reply := gen.Generate(context.Background(), "You are an analyst.", "Why?")
	require.False(t, reply.Failed())
	assert.Equal(t, "ROAS fell.", reply.Text)

	assert.Equal(t, "llama-3.3-70b-versatile", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "You are an analyst.", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, 0.2, got.Temperature)
	require.NotNil(t, got.Seed)
	assert.Equal(t, int64(42), *got.Seed)
}

func TestChatCompletionsTransportFailureIsInBand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	gen, err := New(context.Background(), Settings{Provider: ProviderOpenAI, BaseURL: srv.URL, APIKey: "k"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	reply := gen.Generate(context.Background(), "sys", "user")
	assert.True(t, reply.Failed())
	assert.Equal(t, ErrorText, reply.Text)
	assert.Contains(t, reply.Err.Error(), "429")
}

func TestChatCompletionsEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	gen, err := New(context.Background(), Settings{Provider: ProviderOpenAI, BaseURL: srv.URL, APIKey: "k"}, nil)
	require.NoError(t, err)

	reply := gen.Generate(context.Background(), "sys", "user")
	assert.True(t, reply.Failed())
	assert.Equal(t, ErrorText, reply.Text)
}

type failingBackend struct{}

func (failingBackend) complete(ctx context.Context, system, user string) (string, error) {
	return "", errors.New("connection refused")
}

func TestClientConvertsErrors(t *testing.T) {
	c := newClient("test", failingBackend{}, 0, zaptest.NewLogger(t))
	reply := c.Generate(context.Background(), "s", "u")
	assert.Equal(t, ErrorText, reply.Text)
	assert.EqualError(t, reply.Err, "connection refused")
}
