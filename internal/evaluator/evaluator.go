// Package evaluator scores a diagnosis against the summary it claims to explain.
package evaluator

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

// Verdict is the evaluator's judgement of one diagnosis.
type Verdict struct {
	ConfidenceScore float64 `json:"confidence_score"`
	IsValid         bool    `json:"is_valid"`
	Critique        string  `json:"critique"`
}

// passScore is the confidence at or above which a verdict without an explicit
// is_valid counts as valid.
const passScore = 0.5

// Skipped is returned when no evaluator template is configured.
func Skipped() Verdict {
	return Verdict{ConfidenceScore: 1.0, IsValid: true, Critique: "Skipped validation."}
}

// Rejected is returned when the evaluator's reply cannot be used.
func Rejected() Verdict {
	return Verdict{ConfidenceScore: 0.0, IsValid: false, Critique: "Validation Error"}
}

// Evaluator validates diagnoses.
type Evaluator struct {
	prompts prompts.Reader
	llm     llm.Generator
	log     *zap.Logger
}

// New returns an Evaluator.
func New(p prompts.Reader, gen llm.Generator, log *zap.Logger) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{prompts: p, llm: gen, log: log}
}

// Validate checks diagnosis against summary. A missing template passes the
// diagnosis; an unusable reply fails it.
func (e *Evaluator) Validate(ctx context.Context, summary metrics.Summary, diagnosis string) stage.Outcome[Verdict] {
	e.log.Info("Validating hypothesis")

	system, err := e.prompts.Read(prompts.Evaluator)
	if err != nil {
		e.log.Warn("Evaluator prompt unavailable, skipping validation", zap.Error(err))
		return stage.Fallback(Skipped(), stage.TemplateMissing, err)
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return e.reject(stage.ParseFailure, fmt.Errorf("encode summary: %w", err))
	}
	user := fmt.Sprintf("DATA SUMMARY: %s\n\nHYPOTHESIS TO CHECK:\n%s", data, diagnosis)

	reply := e.llm.Generate(ctx, system, user)
	if reply.Failed() {
		return e.reject(stage.TransportError, reply.Err)
	}

	var raw struct {
		ConfidenceScore float64 `json:"confidence_score"`
		IsValid         *bool   `json:"is_valid"`
		Critique        string  `json:"critique"`
	}
	if err := guardrails.Verdict.Decode(reply.Text, &raw); err != nil {
		return e.reject(stage.ParseFailure, err)
	}
	v := Verdict{
		ConfidenceScore: raw.ConfidenceScore,
		IsValid:         raw.ConfidenceScore >= passScore,
		Critique:        raw.Critique,
	}
	if raw.IsValid != nil {
		v.IsValid = *raw.IsValid
	}
	e.log.Info("Validation complete",
		zap.Float64("confidence_score", v.ConfidenceScore),
		zap.Bool("is_valid", v.IsValid),
	)
	return stage.Succeeded(v)
}

func (e *Evaluator) reject(reason stage.Reason, err error) stage.Outcome[Verdict] {
	e.log.Error("Evaluation failed", zap.String("reason", reason.String()), zap.Error(err))
	return stage.Fallback(Rejected(), reason, err)
}
