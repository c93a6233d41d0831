// Package pipeline sequences planning, analysis, reflection and creative
// generation for one query and persists the resulting report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"adanalyst/internal/audit"
	"adanalyst/internal/creative"
	"adanalyst/internal/evaluator"
	"adanalyst/internal/metrics"
	"adanalyst/internal/notify"
	"adanalyst/internal/planner"
	"adanalyst/internal/report"
	"adanalyst/internal/stage"
)

const (
	// ConfidenceThreshold is the score below which a diagnosis is retried once.
	ConfidenceThreshold = 0.5
	// RetrySuffix is appended to the query for the reflection retry.
	RetrySuffix = " Be strictly data-driven."
	// NoAnalysisText is the diagnosis when the plan skips analysis.
	NoAnalysisText = "No analysis requested."
)

// ErrDataFailure wraps any error loading or summarizing the data source.
var ErrDataFailure = errors.New("data failure")

type Planner interface {
	CreatePlan(ctx context.Context, query string) stage.Outcome[planner.Plan]
}

type Analyzer interface {
	LoadAndClean(ctx context.Context) error
	PerformanceSummary() (metrics.Summary, error)
	BadCreatives() ([]metrics.CreativeCandidate, error)
}

type InsightStage interface {
	Analyze(ctx context.Context, summary metrics.Summary, query string) stage.Outcome[string]
}

type Evaluator interface {
	Validate(ctx context.Context, summary metrics.Summary, diagnosis string) stage.Outcome[evaluator.Verdict]
}

type CreativeStage interface {
	GenerateVariations(ctx context.Context, candidates []metrics.CreativeCandidate) stage.Outcome[[]creative.Variation]
}

// Auditor records run transitions.
type Auditor interface {
	LogEvent(ctx context.Context, runID, actor, eventType string, payload any) error
}

// Notifier announces finished runs.
type Notifier interface {
	Send(title, message string) error
}

// Deps are the collaborators of a Runner. Auditor and Notifier are optional.
type Deps struct {
	Planner   Planner
	Analyzer  Analyzer
	Insight   InsightStage
	Evaluator Evaluator
	Creative  CreativeStage
	Auditor   Auditor
	Notifier  Notifier
}

// Runner executes the analysis pipeline.
type Runner struct {
	deps       Deps
	reportsDir string
	log        *zap.Logger
}

// Result describes a completed run.
type Result struct {
	RunID      string
	Plan       planner.Plan
	Report     report.Report
	Paths      report.Paths
	Retried    bool
	StartedAt  time.Time
	FinishedAt time.Time
}

// New returns a Runner writing artifacts to reportsDir.
func New(deps Deps, reportsDir string, log *zap.Logger) (*Runner, error) {
	switch {
	case deps.Planner == nil:
		return nil, fmt.Errorf("planner is required")
	case deps.Analyzer == nil:
		return nil, fmt.Errorf("analyzer is required")
	case deps.Insight == nil:
		return nil, fmt.Errorf("insight stage is required")
	case deps.Evaluator == nil:
		return nil, fmt.Errorf("evaluator is required")
	case deps.Creative == nil:
		return nil, fmt.Errorf("creative stage is required")
	}
	if reportsDir == "" {
		return nil, fmt.Errorf("reports dir is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{deps: deps, reportsDir: reportsDir, log: log}, nil
}

// Run plans, executes and persists one query. Only data failures and write
// failures are returned as errors; stage failures degrade to their defaults.
func (r *Runner) Run(ctx context.Context, query string) (*Result, error) {
	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	r.audit(ctx, res.RunID, "orchestrator", audit.RunStarted, map[string]any{"query": query})

	planOut := r.deps.Planner.CreatePlan(ctx, query)
	res.Plan = planOut.Value
	r.audit(ctx, res.RunID, "planner", audit.PlanCreated, outcomePayload(planOut.Reason, planOut.Detail, map[string]any{
		"stages": res.Plan.Stages.Names(),
	}))

	summary, err := r.loadData(ctx)
	if err != nil {
		r.log.Error("Data failure", zap.Error(err))
		r.audit(ctx, res.RunID, "analyzer", audit.DataFailed, map[string]any{"error": err.Error()})
		r.notify(notify.FormatRunFailed(query, err))
		return nil, fmt.Errorf("%w: %w", ErrDataFailure, err)
	}
	r.audit(ctx, res.RunID, "analyzer", audit.DataReady, summary)

	rep := report.Report{
		Query:      query,
		Diagnosis:  NoAnalysisText,
		Summary:    summary,
		Variations: []creative.Variation{},
	}

	if res.Plan.Has(stage.AnalyzeMetrics) {
		diagnosis, verdict, retried := r.analyze(ctx, res.RunID, summary, query)
		rep.Diagnosis = diagnosis
		rep.Verdict = &verdict
		res.Retried = retried
	}

	if res.Plan.Has(stage.GenerateCreatives) {
		candidates, err := r.deps.Analyzer.BadCreatives()
		if err != nil {
			r.log.Error("Data failure", zap.Error(err))
			r.audit(ctx, res.RunID, "analyzer", audit.DataFailed, map[string]any{"error": err.Error()})
			return nil, fmt.Errorf("%w: %w", ErrDataFailure, err)
		}
		out := r.deps.Creative.GenerateVariations(ctx, candidates)
		rep.Variations = out.Value
		r.audit(ctx, res.RunID, "creative", audit.CreativesGenerated, outcomePayload(out.Reason, out.Detail, map[string]any{
			"candidates": len(candidates),
			"variations": len(out.Value),
		}))
	}

	paths, err := report.Write(r.reportsDir, rep)
	if err != nil {
		return nil, fmt.Errorf("persist report: %w", err)
	}
	res.Report = rep
	res.Paths = paths
	res.FinishedAt = time.Now().UTC()
	r.audit(ctx, res.RunID, "orchestrator", audit.ReportPersisted, map[string]any{
		"report":    paths.Markdown,
		"insights":  paths.Insights,
		"creatives": paths.Creatives,
	})
	r.audit(ctx, res.RunID, "orchestrator", audit.RunFinished, map[string]any{
		"retried":     res.Retried,
		"duration_ms": res.FinishedAt.Sub(res.StartedAt).Milliseconds(),
	})

	r.log.Info(fmt.Sprintf("Pipeline Complete. Report saved to %s", paths.Markdown))
	if rep.Verdict != nil {
		r.notify(notify.FormatRunComplete(query, true, rep.Verdict.ConfidenceScore, len(rep.Variations)))
	} else {
		r.notify(notify.FormatRunComplete(query, false, 0, len(rep.Variations)))
	}
	return res, nil
}

func (r *Runner) loadData(ctx context.Context) (metrics.Summary, error) {
	if err := r.deps.Analyzer.LoadAndClean(ctx); err != nil {
		return metrics.Summary{}, err
	}
	return r.deps.Analyzer.PerformanceSummary()
}

// analyze runs insight and evaluation, retrying once when confidence is low.
// The returned diagnosis and verdict always belong to the same attempt.
func (r *Runner) analyze(ctx context.Context, runID string, summary metrics.Summary, query string) (string, evaluator.Verdict, bool) {
	diagnosis, verdict := r.attempt(ctx, runID, summary, query, 1)
	if verdict.ConfidenceScore >= ConfidenceThreshold {
		return diagnosis, verdict, false
	}

	r.log.Warn("Low confidence. Retrying...", zap.Float64("confidence_score", verdict.ConfidenceScore))
	retryDiagnosis, retryVerdict := r.attempt(ctx, runID, summary, query+RetrySuffix, 2)
	r.audit(ctx, runID, "orchestrator", audit.ReflectionRetried, map[string]any{
		"previous_confidence": verdict.ConfidenceScore,
		"confidence":          retryVerdict.ConfidenceScore,
		"diagnosis_diff":      diagnosisDiff(diagnosis, retryDiagnosis),
	})
	return retryDiagnosis, retryVerdict, true
}

func (r *Runner) attempt(ctx context.Context, runID string, summary metrics.Summary, query string, n int) (string, evaluator.Verdict) {
	insightOut := r.deps.Insight.Analyze(ctx, summary, query)
	r.audit(ctx, runID, "insight", audit.InsightGenerated, outcomePayload(insightOut.Reason, insightOut.Detail, map[string]any{
		"attempt": n,
		"query":   query,
	}))

	verdictOut := r.deps.Evaluator.Validate(ctx, summary, insightOut.Value)
	r.audit(ctx, runID, "evaluator", audit.EvaluationCompleted, outcomePayload(verdictOut.Reason, verdictOut.Detail, map[string]any{
		"attempt": n,
		"verdict": verdictOut.Value,
	}))
	return insightOut.Value, verdictOut.Value
}

func (r *Runner) audit(ctx context.Context, runID, actor, eventType string, payload any) {
	if r.deps.Auditor == nil {
		return
	}
	if err := r.deps.Auditor.LogEvent(ctx, runID, actor, eventType, payload); err != nil {
		r.log.Warn("Audit write failed", zap.String("event", eventType), zap.Error(err))
	}
}

func (r *Runner) notify(title, message string) {
	if r.deps.Notifier == nil {
		return
	}
	if err := r.deps.Notifier.Send(title, message); err != nil {
		r.log.Warn("Notification failed", zap.Error(err))
	}
}

func outcomePayload(reason stage.Reason, detail string, fields map[string]any) map[string]any {
	fields["outcome"] = reason.String()
	if detail != "" {
		fields["detail"] = detail
	}
	return fields
}
