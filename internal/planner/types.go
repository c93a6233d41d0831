package planner

import (
	"encoding/json"

	"adanalyst/internal/stage"
)

// Plan is the ordered set of stages selected for one query. It is never empty.
type Plan struct {
	Stages stage.Set
}

// DefaultPlan runs every stage.
func DefaultPlan() Plan {
	return Plan{Stages: stage.NewSet(stage.AnalyzeMetrics, stage.GenerateCreatives)}
}

// Has reports whether the plan includes k.
func (p Plan) Has(k stage.Kind) bool {
	return p.Stages.Contains(k)
}

func (p Plan) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Stages.Names())
}
