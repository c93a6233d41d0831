package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adanalyst/internal/audit"
)

const sampleCSV = `date,campaign_name,creative_message,spend,revenue,clicks,purchases,ctr
01-01-2024,Spring,Buy now,100,300,10,3,0.02
06-01-2024,Spring,Buy now,100,200,10,2,0.004
12-01-2024,Winter,Warm up,50,25,5,1,0.003
14-01-2024,Spring,Fresh looks,80,160,8,2,0.05
`

func newWorkspace(t *testing.T, withData bool) string {
	t.Helper()
	t.Setenv("ADANALYST_LLM_PROVIDER", "")
	t.Setenv("ADANALYST_DATA_PATH", "")

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "config", "config.yaml"), []byte(`
data:
  path: data/ads.csv
thresholds:
  low_ctr: 0.01
llm:
  provider: mock
system:
  random_seed: 7
`), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "prompts"), 0o755))
	for _, name := range []string{"planner_prompt.md", "insight_prompt.md", "evaluator_prompt.md", "creative_prompt.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, "prompts", name), []byte("You are an assistant."), 0o644))
	}
	if withData {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "data"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "data", "ads.csv"), []byte(sampleCSV), 0o644))
	}
	return root
}

func TestExecuteMockRun(t *testing.T) {
	root := newWorkspace(t, true)
	var stdout, stderr bytes.Buffer

	code := execute([]string{"--workspace", root, "Why did ROAS drop?"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "Random seed set to 7")
	assert.Contains(t, stdout.String(), "Running in MOCK mode")

	md, err := os.ReadFile(filepath.Join(root, "reports", "report.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "## Query: Why did ROAS drop?")

	var insights struct {
		Summary    map[string]any `json:"summary"`
		Validation map[string]any `json:"validation"`
	}
	data, err := os.ReadFile(filepath.Join(root, "reports", "insights.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &insights))
	assert.Equal(t, "2024-01-14", insights.Summary["period_end_date"])
	assert.Equal(t, "Validation Error", insights.Validation["critique"])

	creatives, err := os.ReadFile(filepath.Join(root, "reports", "creatives.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(creatives))

	logLines, err := os.ReadFile(filepath.Join(root, "logs", "execution.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(logLines), `"agent":"Orchestrator"`)

	events, err := audit.NewLogger(filepath.Join(root, "audit", "audit.sqlite")).Events(context.Background(), "")
	require.NoError(t, err)
	types := map[string]bool{}
	for _, ev := range events {
		types[ev.Type] = true
	}
	for _, want := range []string{audit.RunStarted, audit.ReflectionRetried, audit.ReportPersisted, audit.RunFinished} {
		assert.True(t, types[want], "missing audit event %s", want)
	}
}

func TestExecuteMissingDataExitsWithDataFailure(t *testing.T) {
	root := newWorkspace(t, false)
	var stdout, stderr bytes.Buffer

	code := execute([]string{"--workspace", root}, &stdout, &stderr)
	assert.Equal(t, exitData, code)
	assert.Contains(t, stderr.String(), "data failure")

	for _, name := range []string{"report.md", "insights.json", "creatives.json"} {
		_, err := os.Stat(filepath.Join(root, "reports", name))
		assert.True(t, os.IsNotExist(err), "%s should not exist", name)
	}
}

func TestExecuteSetupFailures(t *testing.T) {
	root := newWorkspace(t, true)
	require.NoError(t, os.WriteFile(filepath.Join(root, "bad.yaml"), []byte("llm:\n  provider: telepathy\n"), 0o644))

	cases := map[string][]string{
		"too many args":   {"--workspace", root, "a", "b"},
		"missing config":  {"--workspace", root, "--config", "nope.yaml"},
		"invalid config":  {"--workspace", root, "--config", "bad.yaml"},
		"missing workdir": {"--workspace", filepath.Join(root, "absent")},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, exitSetup, execute(args, &stdout, &stderr))
			assert.NotEmpty(t, stderr.String())
		})
	}
}
