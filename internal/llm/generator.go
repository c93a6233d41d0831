package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	// ErrorText is returned in Reply.Text when the transport fails.
	ErrorText = "Error generating insight."
	// MockText is returned when no backend credentials are configured.
	MockText = "MOCK RESPONSE: Set API Key to get real insights."
)

// Generator produces text from a system instruction and user content.
// Implementations never return a Go error; transport failures are reported
// in-band through Reply.
type Generator interface {
	Name() string
	Generate(ctx context.Context, system, user string) Reply
}

// Reply is the result of one generation call.
type Reply struct {
	// Text is always populated; it holds ErrorText when Err is set.
	Text string
	// Err is the transport failure that produced ErrorText, if any.
	Err error
}

// Failed reports whether the call hit a transport failure.
func (r Reply) Failed() bool {
	return r.Err != nil
}

// Settings configures a backend.
type Settings struct {
	Provider    string
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float64
	Seed        int64
	// Timeout bounds a single call. Zero means no timeout.
	Timeout time.Duration
}

// completer is the raw transport implemented by each provider.
type completer interface {
	complete(ctx context.Context, system, user string) (string, error)
}

// Client adapts a transport into a Generator that never fails loudly.
type Client struct {
	name    string
	backend completer
	timeout time.Duration
	log     *zap.Logger
}

func newClient(name string, backend completer, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{name: name, backend: backend, timeout: timeout, log: log}
}

func (c *Client) Name() string {
	return c.name
}

// Generate calls the backend. Errors are logged and converted to ErrorText.
func (c *Client) Generate(ctx context.Context, system, user string) Reply {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	start := time.Now()
	text, err := c.backend.complete(ctx, system, user)
	if err != nil {
		c.log.Error("LLM Generation Error", zap.String("backend", c.name), zap.Error(err))
		return Reply{Text: ErrorText, Err: err}
	}
	c.log.Debug("LLM call completed",
		zap.String("backend", c.name),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("reply_len", len(text)),
	)
	return Reply{Text: text}
}
