package planner

import (
	"errors"

	"adanalyst/internal/stage"
)

var errNoKnownStages = errors.New("plan names no known stages")

// planFromIDs maps stage identifiers onto a Plan. Unknown identifiers are
// returned separately; a plan with no known stage is an error.
func planFromIDs(ids []string) (Plan, []string, error) {
	var (
		kinds   []stage.Kind
		unknown []string
	)
	for _, id := range ids {
		k, ok := stage.ParseKind(id)
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		kinds = append(kinds, k)
	}
	set := stage.NewSet(kinds...)
	if set.Len() == 0 {
		return Plan{}, unknown, errNoKnownStages
	}
	return Plan{Stages: set}, unknown, nil
}
