package harness

import (
	"os"
	"path/filepath"
	"testing"
)

// NewWorkspace copies the repository's config, prompts and sample data into
// a fresh temporary workspace and returns its root.
func NewWorkspace(t *testing.T) string {
	t.Helper()
	root := RepoRoot(t)
	ws := t.TempDir()
	for _, dir := range []string{"config", "prompts", "data"} {
		CopyDir(t, filepath.Join(root, dir), filepath.Join(ws, dir))
	}
	return ws
}

// WriteConfig replaces the workspace's config/config.yaml.
func WriteConfig(t *testing.T, ws, body string) {
	t.Helper()
	path := filepath.Join(ws, "config", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("ensure config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// RemovePrompt deletes one prompt template from the workspace.
func RemovePrompt(t *testing.T, ws, name string) {
	t.Helper()
	if err := os.Remove(filepath.Join(ws, "prompts", name)); err != nil {
		t.Fatalf("remove prompt %s: %v", name, err)
	}
}
