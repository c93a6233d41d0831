package harness

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"sort"
	"strings"
	"testing"
	"time"
)

// runTimeout bounds one CLI invocation so a hung LLM backend fails the test.
const runTimeout = 2 * time.Minute

// Run executes the CLI in the provided working directory.
func Run(t *testing.T, binPath, workDir string, args []string) (string, string, int) {
	t.Helper()
	return run(t, binPath, workDir, args, nil)
}

// RunWithEnv executes the CLI with environment overrides. An empty override
// value removes the variable from the child environment.
func RunWithEnv(t *testing.T, binPath, workDir string, args []string, env map[string]string) (string, string, int) {
	t.Helper()
	return run(t, binPath, workDir, args, env)
}

func run(t *testing.T, binPath, workDir string, args []string, env map[string]string) (string, string, int) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binPath, args...)
	cmd.Dir = workDir
	if len(env) > 0 {
		cmd.Env = mergeEnv(env)
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		} else {
			t.Fatalf("run %s: %v", binPath, err)
		}
	}
	if ctx.Err() != nil {
		t.Fatalf("run %s %v: timed out after %s\nstdout:\n%s\nstderr:\n%s", binPath, args, runTimeout, stdout.String(), stderr.String())
	}

	return stdout.String(), stderr.String(), exitCode
}

func mergeEnv(overrides map[string]string) []string {
	env := make(map[string]string, len(overrides))
	for _, entry := range os.Environ() {
		parts := strings.SplitN(entry, "=", 2)
		key := parts[0]
		val := ""
		if len(parts) > 1 {
			val = parts[1]
		}
		env[key] = val
	}

	for k, v := range overrides {
		if v == "" {
			delete(env, k)
			continue
		}
		env[k] = v
	}

	merged := make([]string, 0, len(env))
	for k, v := range env {
		merged = append(merged, k+"="+v)
	}
	sort.Strings(merged)
	return merged
}
