package prompts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Template names read by the pipeline stages.
const (
	Planner   = "planner_prompt.md"
	Insight   = "insight_prompt.md"
	Evaluator = "evaluator_prompt.md"
	Creative  = "creative_prompt.md"
)

// ErrNotFound is returned when a template file does not exist.
var ErrNotFound = errors.New("prompt template not found")

// Reader is the template lookup the stages depend on.
type Reader interface {
	Read(name string) (string, error)
}

// Store reads prompt templates from a directory.
type Store struct {
	Dir string
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Read returns the template contents. Missing files wrap ErrNotFound.
func (s *Store) Read(name string) (string, error) {
	if s == nil || s.Dir == "" {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid template name %q", name)
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("read template %s: %w", name, err)
	}
	return string(data), nil
}

// Static is an in-memory Reader keyed by template name.
type Static map[string]string

func (s Static) Read(name string) (string, error) {
	text, ok := s[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return text, nil
}
