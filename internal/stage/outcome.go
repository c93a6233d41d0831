package stage

// Reason tags why a stage fell back to its safe default.
type Reason int

const (
	// OK means the value came from a parsed LLM response.
	OK Reason = iota
	TemplateMissing
	ParseFailure
	TransportError
	// NoInput means the stage had nothing to work on and skipped the LLM.
	NoInput
)

func (r Reason) String() string {
	switch r {
	case OK:
		return "ok"
	case TemplateMissing:
		return "template_missing"
	case ParseFailure:
		return "parse_failure"
	case TransportError:
		return "transport_error"
	case NoInput:
		return "no_input"
	default:
		return "unknown"
	}
}

// Outcome carries a stage result together with the fallback reason, if any.
// Value is always usable: fallbacks populate it with the stage's default.
type Outcome[T any] struct {
	Value  T
	Reason Reason
	// Detail holds the underlying error text for fallbacks.
	Detail string
}

// Succeeded returns an Outcome for a value produced without fallback.
func Succeeded[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v, Reason: OK}
}

// Fallback returns an Outcome holding a stage default.
func Fallback[T any](v T, reason Reason, err error) Outcome[T] {
	o := Outcome[T]{Value: v, Reason: reason}
	if err != nil {
		o.Detail = err.Error()
	}
	return o
}

// IsFallback reports whether the value is a default rather than parsed output.
func (o Outcome[T]) IsFallback() bool {
	return o.Reason != OK
}
