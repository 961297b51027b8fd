package types

import "fmt"

// ValidationError reports a malformed action argument. It is fatal to that
// single action and never corrupts the dataset: the engine rejects before
// any partial mutation.
type ValidationError struct {
	Tool   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid argument %q for %s: %s", e.Field, e.Tool, e.Reason)
}

// NewValidationError builds a ValidationError for one offending field.
func NewValidationError(tool, field, reason string) *ValidationError {
	return &ValidationError{Tool: tool, Field: field, Reason: reason}
}

// UnknownToolError reports a tool name outside the known catalog. It must
// be surfaced as a visible notice, never silently ignored.
type UnknownToolError struct {
	Tool string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q returned by model", e.Tool)
}
