// Package report persists the artifacts of a pipeline run.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"adanalyst/internal/creative"
	"adanalyst/internal/evaluator"
	"adanalyst/internal/metrics"
)

// Artifact file names written under the reports directory.
const (
	MarkdownFile  = "report.md"
	InsightsFile  = "insights.json"
	CreativesFile = "creatives.json"
)

// Report is the final product of one run.
type Report struct {
	Query     string
	Diagnosis string
	// Verdict is nil when no analysis was requested.
	Verdict    *evaluator.Verdict
	Summary    metrics.Summary
	Variations []creative.Variation
}

// Paths lists the files written by Write.
type Paths struct {
	Markdown  string
	Insights  string
	Creatives string
}

type insightsDoc struct {
	Summary    metrics.Summary    `json:"summary"`
	Validation *evaluator.Verdict `json:"validation"`
}

// Write stores report.md, insights.json and creatives.json in dir. Each file
// is replaced atomically.
func Write(dir string, r Report) (Paths, error) {
	if dir == "" {
		return Paths{}, fmt.Errorf("reports dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("ensure reports dir: %w", err)
	}

	md, err := Markdown(r)
	if err != nil {
		return Paths{}, err
	}
	insights, err := json.MarshalIndent(insightsDoc{Summary: r.Summary, Validation: r.Verdict}, "", "  ")
	if err != nil {
		return Paths{}, fmt.Errorf("marshal insights: %w", err)
	}
	variations := r.Variations
	if variations == nil {
		variations = []creative.Variation{}
	}
	creatives, err := json.MarshalIndent(variations, "", "  ")
	if err != nil {
		return Paths{}, fmt.Errorf("marshal creatives: %w", err)
	}

	paths := Paths{
		Markdown:  filepath.Join(dir, MarkdownFile),
		Insights:  filepath.Join(dir, InsightsFile),
		Creatives: filepath.Join(dir, CreativesFile),
	}
	for _, f := range []struct {
		path string
		data []byte
	}{
		{paths.Markdown, md},
		{paths.Insights, insights},
		{paths.Creatives, creatives},
	} {
		if err := writeFileAtomic(f.path, f.data); err != nil {
			return Paths{}, err
		}
	}
	return paths, nil
}

// Markdown renders the human-readable report.
func Markdown(r Report) ([]byte, error) {
	verdict, err := json.MarshalIndent(r.Verdict, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal verdict: %w", err)
	}
	return []byte(fmt.Sprintf("# Analysis Report\n\n## Query: %s\n\n## Diagnosis\n%s\n\n## Validation\n%s",
		r.Query, r.Diagnosis, verdict)), nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
