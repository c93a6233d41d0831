// Package insight produces the natural-language diagnosis of a metrics summary.
package insight

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"adanalyst/internal/llm"
	"adanalyst/internal/metrics"
	"adanalyst/internal/prompts"
	"adanalyst/internal/stage"
)

// MissingTemplateText is the diagnosis returned when the template is absent.
const MissingTemplateText = "Error: Prompt file missing."

// Agent explains performance changes described by a Summary.
type Agent struct {
	prompts prompts.Reader
	llm     llm.Generator
	log     *zap.Logger
}

// New returns an insight Agent.
func New(p prompts.Reader, gen llm.Generator, log *zap.Logger) *Agent {
	if log == nil {
		log = zap.NewNop()
	}
	return &Agent{prompts: p, llm: gen, log: log}
}

// Analyze returns the generator's diagnosis verbatim. It never retries.
func (a *Agent) Analyze(ctx context.Context, summary metrics.Summary, query string) stage.Outcome[string] {
	a.log.Info("Generating insights", zap.String("query", query))

	system, err := a.prompts.Read(prompts.Insight)
	if err != nil {
		a.log.Error("Insight prompt unavailable", zap.Error(err))
		return stage.Fallback(MissingTemplateText, stage.TemplateMissing, err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return stage.Fallback(llm.ErrorText, stage.ParseFailure, fmt.Errorf("encode summary: %w", err))
	}
	user := fmt.Sprintf("User Query: %s\nData Summary:\n%s", query, data)

	reply := a.llm.Generate(ctx, system, user)
	if reply.Failed() {
		return stage.Fallback(reply.Text, stage.TransportError, reply.Err)
	}
	return stage.Succeeded(reply.Text)
}
