// Package llmjson pulls JSON payloads out of free-form LLM replies.
package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyPayload is returned when nothing remains after fence stripping.
var ErrEmptyPayload = errors.New("empty JSON payload")

const fence = "```"

var fenceStripper = strings.NewReplacer(fence+"json", "", fence+"JSON", "", fence, "")

// Extract strips markdown code fences and surrounding whitespace from an LLM
// reply. A fenced block wins over any prose around it and ends at the first
// closing fence; the language tag on the opening fence line is discarded.
func Extract(text string) string {
	trimmed := strings.TrimSpace(text)
	start := strings.Index(trimmed, fence)
	if start == -1 {
		return trimmed
	}
	rest := trimmed[start+len(fence):]
	nl := strings.IndexByte(rest, '\n')
	if nl == -1 {
		return strings.TrimSpace(fenceStripper.Replace(trimmed))
	}
	body := rest[nl+1:]
	if end := strings.Index(body, fence); end != -1 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// Decode extracts the payload and unmarshals it into v.
func Decode(text string, v any) error {
	payload := Extract(text)
	if payload == "" {
		return ErrEmptyPayload
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("parse llm json: %w", err)
	}
	return nil
}
