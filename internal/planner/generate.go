package planner

import (
	"context"

	"go.uber.org/zap"

	"adanalyst/internal/guardrails"
	"adanalyst/internal/llm"
	"adanalyst/internal/prompts"
	"adanalyst/internal/stage"
)

// Planner decomposes a user query into the stages to run.
type Planner struct {
	prompts prompts.Reader
	llm     llm.Generator
	log     *zap.Logger
}

// New returns a Planner. A nil logger disables logging.
func New(p prompts.Reader, gen llm.Generator, log *zap.Logger) *Planner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Planner{prompts: p, llm: gen, log: log}
}

// CreatePlan asks the generator which stages the query needs. Every failure
// degrades to DefaultPlan, so the returned plan is never empty.
func (p *Planner) CreatePlan(ctx context.Context, query string) stage.Outcome[Plan] {
	p.log.Info("Decomposing query", zap.String("query", query))

	system, err := p.prompts.Read(prompts.Planner)
	if err != nil {
		p.log.Warn("Planner prompt unavailable, using default plan", zap.Error(err))
		return stage.Fallback(DefaultPlan(), stage.TemplateMissing, err)
	}

	reply := p.llm.Generate(ctx, system, "User Query: "+query)
	if reply.Failed() {
		p.log.Error("Planning failed, using default plan", zap.Error(reply.Err))
		return stage.Fallback(DefaultPlan(), stage.TransportError, reply.Err)
	}

	var ids []string
	if err := guardrails.Plan.Decode(reply.Text, &ids); err != nil {
		p.log.Error("Planning failed, using default plan", zap.Error(err))
		return stage.Fallback(DefaultPlan(), stage.ParseFailure, err)
	}

	plan, unknown, err := planFromIDs(ids)
	if len(unknown) > 0 {
		p.log.Warn("Dropping unknown plan stages", zap.Strings("stages", unknown))
	}
	if err != nil {
		p.log.Error("Planning failed, using default plan", zap.Error(err))
		return stage.Fallback(DefaultPlan(), stage.ParseFailure, err)
	}

	p.log.Info("Plan created", zap.Strings("stages", plan.Stages.Names()))
	return stage.Succeeded(plan)
}
