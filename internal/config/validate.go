package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError captures a single field-specific validation issue.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates multiple validation problems.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "\n")
}

var knownProviders = map[string]bool{
	"mock":   true,
	"groq":   true,
	"openai": true,
	"gemini": true,
}

// Validate reports every invalid field at once.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(c.Data.Path) == "" {
		add("data.path", "is required")
	}
	if c.Data.UseSampleData && c.Data.SampleSize <= 0 {
		add("data.sample_size", "must be > 0 when use_sample_data is true (got %d)", c.Data.SampleSize)
	}
	if c.Thresholds.LowCTR < 0 {
		add("thresholds.low_ctr", "must be >= 0 (got %g)", c.Thresholds.LowCTR)
	}
	if !knownProviders[c.LLM.Provider] {
		add("llm.provider", "must be one of mock, groq, openai, gemini (got %q)", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		add("llm.temperature", "must be within [0, 2] (got %g)", c.LLM.Temperature)
	}
	if t := strings.TrimSpace(c.LLM.Timeout); t != "" {
		if d, err := time.ParseDuration(t); err != nil {
			add("llm.timeout", "invalid duration %q", t)
		} else if d < 0 {
			add("llm.timeout", "must not be negative")
		}
	}
	return errs
}
