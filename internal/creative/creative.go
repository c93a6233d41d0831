// Package creative rewrites underperforming ad messages.
package creative

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"adanalyst/internal/guardrails"
	"adanalyst/internal/llm"
	"adanalyst/internal/metrics"
	"adanalyst/internal/prompts"
	"adanalyst/internal/stage"
)

// Variation is one rewritten ad as returned by the generator.
type Variation map[string]any

// Agent generates copy variations for low-CTR creatives.
type Agent struct {
	prompts prompts.Reader
	llm     llm.Generator
	log     *zap.Logger
}

// New returns a creative Agent.
func New(p prompts.Reader, gen llm.Generator, log *zap.Logger) *Agent {
	if log == nil {
		log = zap.NewNop()
	}
	return &Agent{prompts: p, llm: gen, log: log}
}

// GenerateVariations returns rewritten ads for candidates. The result is an
// empty, non-nil list whenever the stage falls back.
func (a *Agent) GenerateVariations(ctx context.Context, candidates []metrics.CreativeCandidate) stage.Outcome[[]Variation] {
	if len(candidates) == 0 {
		a.log.Info("No low-CTR creatives found, skipping generation")
		return stage.Fallback([]Variation{}, stage.NoInput, nil)
	}
	a.log.Info(fmt.Sprintf("Generating creatives for %d ads", len(candidates)))

	system, err := a.prompts.Read(prompts.Creative)
	if err != nil {
		a.log.Warn("Creative prompt unavailable", zap.Error(err))
		return stage.Fallback([]Variation{}, stage.TemplateMissing, err)
	}

	data, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return stage.Fallback([]Variation{}, stage.ParseFailure, fmt.Errorf("encode candidates: %w", err))
	}

	reply := a.llm.Generate(ctx, system, "Here are the failing ads: "+string(data))
	if reply.Failed() {
		a.log.Warn("Creative generation failed", zap.Error(reply.Err))
		return stage.Fallback([]Variation{}, stage.TransportError, reply.Err)
	}

	var variations []Variation
	if err := guardrails.Creatives.Decode(reply.Text, &variations); err != nil {
		a.log.Warn("Failed to parse creative JSON", zap.Error(err))
		return stage.Fallback([]Variation{}, stage.ParseFailure, err)
	}
	if variations == nil {
		variations = []Variation{}
	}
	return stage.Succeeded(variations)
}
