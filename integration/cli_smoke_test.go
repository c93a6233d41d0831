package integration_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"adanalyst/integration/harness"
)

var mockEnv = map[string]string{"ADANALYST_LLM_PROVIDER": "mock"}

func TestCLIHelp(t *testing.T) {
	binPath := harness.BuildBinary(t)
	stdout, stderr, code := harness.Run(t, binPath, t.TempDir(), []string{"--help"})
	if code != 0 {
		t.Fatalf("adanalyst --help exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	if !strings.Contains(stdout+stderr, "Loads ad performance data") {
		t.Fatalf("expected help output to include description\nstdout:\n%s\nstderr:\n%s", stdout, stderr)
	}
	if !strings.Contains(stdout+stderr, "adanalyst [query]") {
		t.Fatalf("expected help output to include usage line\nstdout:\n%s\nstderr:\n%s", stdout, stderr)
	}
}

func TestCLIMockRun(t *testing.T) {
	binPath := harness.BuildBinary(t)
	ws := harness.NewWorkspace(t)

	stdout, stderr, code := harness.RunWithEnv(t, binPath, ws, nil, mockEnv)
	if code != 0 {
		t.Fatalf("adanalyst exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	if !strings.Contains(stdout, "Random seed set to 42") {
		t.Fatalf("expected seed log line\nstdout:\n%s", stdout)
	}

	report, err := os.ReadFile(filepath.Join(ws, "reports", "report.md"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(report), "## Query: Analyze ROAS drop") {
		t.Fatalf("report missing default query:\n%s", report)
	}

	var insights map[string]json.RawMessage
	data, err := os.ReadFile(filepath.Join(ws, "reports", "insights.json"))
	if err != nil {
		t.Fatalf("read insights: %v", err)
	}
	if err := json.Unmarshal(data, &insights); err != nil {
		t.Fatalf("parse insights: %v", err)
	}
	for _, key := range []string{"summary", "validation"} {
		if _, ok := insights[key]; !ok {
			t.Fatalf("insights.json missing %q: %s", key, data)
		}
	}

	creatives, err := os.ReadFile(filepath.Join(ws, "reports", "creatives.json"))
	if err != nil {
		t.Fatalf("read creatives: %v", err)
	}
	if strings.TrimSpace(string(creatives)) != "[]" {
		t.Fatalf("mock run should produce no creatives, got %s", creatives)
	}

	if _, err := os.Stat(filepath.Join(ws, "logs", "execution.jsonl")); err != nil {
		t.Fatalf("log file not written: %v", err)
	}

	auditPath := filepath.Join(ws, "audit", "audit.sqlite")
	requireAuditEvents(t, auditPath, []string{
		"run_started",
		"plan_created",
		"data_ready",
		"reflection_retried",
		"report_persisted",
		"run_finished",
	})
}

func TestCLIMissingDataFails(t *testing.T) {
	binPath := harness.BuildBinary(t)
	ws := harness.NewWorkspace(t)
	if err := os.Remove(filepath.Join(ws, "data", "ads_performance.csv")); err != nil {
		t.Fatalf("remove data: %v", err)
	}

	stdout, stderr, code := harness.RunWithEnv(t, binPath, ws, []string{"Why?"}, mockEnv)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	for _, name := range []string{"report.md", "insights.json", "creatives.json"} {
		if _, err := os.Stat(filepath.Join(ws, "reports", name)); !os.IsNotExist(err) {
			t.Fatalf("%s should not be written on data failure (stat err %v)", name, err)
		}
	}
	requireAuditEvents(t, filepath.Join(ws, "audit", "audit.sqlite"), []string{"data_failed"})
}

func TestCLIInvalidConfigFails(t *testing.T) {
	binPath := harness.BuildBinary(t)
	ws := harness.NewWorkspace(t)
	harness.WriteConfig(t, ws, "llm:\n  provider: carrier-pigeon\n")

	stdout, stderr, code := harness.RunWithEnv(t, binPath, ws, nil, map[string]string{"ADANALYST_LLM_PROVIDER": ""})
	if code != 2 {
		t.Fatalf("expected exit code 2, got %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	if !strings.Contains(stderr, "llm.provider") {
		t.Fatalf("expected validation error on stderr, got:\n%s", stderr)
	}
}
