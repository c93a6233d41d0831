// Package llmtest provides a scripted Generator for stage and pipeline tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"adanalyst/internal/llm"
)

// ErrTransport is the failure attached to replies queued with Fail.
var ErrTransport = errors.New("scripted transport failure")

// Call records one Generate invocation.
type Call struct {
	System string
	User   string
}

// Script replays queued replies in order. Once the queue is drained it keeps
// returning MockText.
type Script struct {
	mu       sync.Mutex
	replies  []llm.Reply
	fallback llm.Reply
	calls    []Call
}

// NewScript queues the given texts as successful replies.
func NewScript(texts ...string) *Script {
	s := &Script{fallback: llm.Reply{Text: llm.MockText}}
	for _, t := range texts {
		s.replies = append(s.replies, llm.Reply{Text: t})
	}
	return s
}

// Fail queues a transport failure.
func (s *Script) Fail() *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, llm.Reply{Text: llm.ErrorText, Err: ErrTransport})
	return s
}

func (s *Script) Name() string {
	return "script"
}

func (s *Script) Generate(_ context.Context, system, user string) llm.Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{System: system, User: user})
	if len(s.replies) == 0 {
		return s.fallback
	}
	next := s.replies[0]
	s.replies = s.replies[1:]
	return next
}

// Calls returns a copy of the recorded invocations.
func (s *Script) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}
