package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adanalyst/internal/creative"
	"adanalyst/internal/evaluator"
	"adanalyst/internal/metrics"
)

func TestWriteWithVerdict(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	verdict := evaluator.Verdict{ConfidenceScore: 0.75, IsValid: true, Critique: "fine"}
	paths, err := Write(dir, Report{
		Query:      "Why?",
		Diagnosis:  "Spend rose.",
		Verdict:    &verdict,
		Summary:    metrics.Summary{PeriodEndDate: "2024-01-14", WorstCampaignByROAS: "A"},
		Variations: []creative.Variation{{"headline": "New"}},
	})
	require.NoError(t, err)

	md, err := os.ReadFile(paths.Markdown)
	require.NoError(t, err)
	assert.Equal(t, "# Analysis Report\n\n## Query: Why?\n\n## Diagnosis\nSpend rose.\n\n## Validation\n{\n"+
		"  \"confidence_score\": 0.75,\n  \"is_valid\": true,\n  \"critique\": \"fine\"\n}", string(md))

	insights, err := os.ReadFile(paths.Insights)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"summary": {"period_end_date": "2024-01-14", "current_roas": 0, "previous_roas": 0,
			"spend_change_percent": 0, "worst_campaign_by_roas": "A"},
		"validation": {"confidence_score": 0.75, "is_valid": true, "critique": "fine"}
	}`, string(insights))

	creatives, err := os.ReadFile(paths.Creatives)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"headline": "New"}]`, string(creatives))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no temp files left behind")
}

func TestWriteWithoutAnalysis(t *testing.T) {
	dir := t.TempDir()
	paths, err := Write(dir, Report{Query: "q", Diagnosis: "No analysis requested."})
	require.NoError(t, err)

	md, err := os.ReadFile(paths.Markdown)
	require.NoError(t, err)
	assert.Contains(t, string(md), "## Validation\nnull")

	insights, err := os.ReadFile(paths.Insights)
	require.NoError(t, err)
	assert.Contains(t, string(insights), `"validation": null`)

	creatives, err := os.ReadFile(paths.Creatives)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(creatives))
}

func TestWriteOverwrites(t *testing.T) {
	dir := t.TempDir()
	_, err := Write(dir, Report{Query: "first"})
	require.NoError(t, err)
	paths, err := Write(dir, Report{Query: "second"})
	require.NoError(t, err)

	md, err := os.ReadFile(paths.Markdown)
	require.NoError(t, err)
	assert.Contains(t, string(md), "## Query: second")
}
