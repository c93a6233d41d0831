package pipeline

import (
	"github.com/pmezard/go-difflib/difflib"
)

// diagnosisDiff renders a unified diff between the rejected and the retried
// diagnosis. It returns "" when the texts are identical.
func diagnosisDiff(before, after string) string {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "diagnosis",
		ToFile:   "retry",
		Context:  2,
	})
	if err != nil {
		return ""
	}
	return text
}
