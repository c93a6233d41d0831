// Package stage defines the fixed vocabulary of pipeline stages and the
// typed outcome every LLM-backed stage returns.
package stage

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind identifies one unit of pipeline work selectable by a plan.
type Kind int

const (
	AnalyzeMetrics Kind = iota + 1
	GenerateCreatives
)

var kindNames = map[Kind]string{
	AnalyzeMetrics:    "analyze_metrics",
	GenerateCreatives: "generate_creatives",
}

// Known lists every stage kind in pipeline order.
func Known() []Kind {
	return []Kind{AnalyzeMetrics, GenerateCreatives}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(k))
}

// ParseKind maps an identifier such as "analyze_metrics" to its Kind.
func ParseKind(s string) (Kind, bool) {
	s = strings.TrimSpace(s)
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

func (k Kind) MarshalJSON() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("unknown stage kind %d", int(k))
	}
	return json.Marshal(k.String())
}

// Set is an ordered, duplicate-free collection of stage kinds.
// The zero value is an empty set.
type Set struct {
	kinds []Kind
}

// NewSet builds a Set preserving first-seen order. Unknown kinds are dropped.
func NewSet(kinds ...Kind) Set {
	var s Set
	for _, k := range kinds {
		if _, ok := kindNames[k]; !ok {
			continue
		}
		if s.Contains(k) {
			continue
		}
		s.kinds = append(s.kinds, k)
	}
	return s
}

// Contains reports whether k is part of the set.
func (s Set) Contains(k Kind) bool {
	for _, have := range s.kinds {
		if have == k {
			return true
		}
	}
	return false
}

func (s Set) Len() int { return len(s.kinds) }

// Kinds returns a copy of the kinds in order.
func (s Set) Kinds() []Kind {
	out := make([]Kind, len(s.kinds))
	copy(out, s.kinds)
	return out
}

// Names returns the identifiers in order.
func (s Set) Names() []string {
	out := make([]string, 0, len(s.kinds))
	for _, k := range s.kinds {
		out = append(out, k.String())
	}
	return out
}

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}
