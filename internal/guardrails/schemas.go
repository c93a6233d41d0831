package guardrails

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"adanalyst/internal/llmjson"
)

// Schema is a compiled JSON Schema contract for one kind of LLM output.
type Schema struct {
	Name     string
	compiled *jsonschema.Schema
}

const planSchema = `{
  "type": "array",
  "items": { "type": "string" }
}`

const verdictSchema = `{
  "type": "object",
  "required": ["confidence_score"],
  "properties": {
    "confidence_score": { "type": "number", "minimum": 0, "maximum": 1 },
    "is_valid": { "type": "boolean" },
    "critique": { "type": "string" }
  }
}`

const creativesSchema = `{
  "type": "array",
  "items": { "type": "object" }
}`

const nameMapSchema = `{
  "type": "object",
  "additionalProperties": { "type": "string" }
}`

var (
	// Plan is an array of stage identifiers.
	Plan = mustCompile("plan", planSchema)
	// Verdict is the evaluator's validation object.
	Verdict = mustCompile("verdict", verdictSchema)
	// Creatives is an array of rewritten ad objects.
	Creatives = mustCompile("creatives", creativesSchema)
	// NameMap maps messy campaign names to their standard form.
	NameMap = mustCompile("name_map", nameMapSchema)
)

// Compile builds a Schema from JSON Schema source.
func Compile(name, source string) (*Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := fmt.Sprintf("https://adanalyst.schemas.local/%s.schema.json", name)
	if err := c.AddResource(url, strings.NewReader(source)); err != nil {
		return nil, fmt.Errorf("load %s schema: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", name, err)
	}
	return &Schema{Name: name, compiled: compiled}, nil
}

func mustCompile(name, source string) *Schema {
	s, err := Compile(name, source)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks a raw JSON document against the schema.
func (s *Schema) Validate(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parse %s json: %w", s.Name, err)
	}
	if err := s.compiled.Validate(doc); err != nil {
		return fmt.Errorf("%s does not match schema: %w", s.Name, err)
	}
	return nil
}

// Decode extracts the JSON payload from an LLM reply, validates it against
// the schema and unmarshals it into v.
func (s *Schema) Decode(reply string, v any) error {
	payload := llmjson.Extract(reply)
	if payload == "" {
		return llmjson.ErrEmptyPayload
	}
	if err := s.Validate([]byte(payload)); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("decode %s: %w", s.Name, err)
	}
	return nil
}
