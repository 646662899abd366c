package schema

import (
	"fmt"
	"strings"
)

// ValidationError describes a single prop that failed validation.
type ValidationError struct {
	Key    string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("prop %q: %s", e.Key, e.Reason)
}

// AggregateError collects every validation failure for a props tree so
// callers see the full picture in one pass instead of fixing props one
// error at a time.
type AggregateError struct {
	Errors []*ValidationError
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:", len(e.Errors))
	for _, ve := range e.Errors {
		sb.WriteString("\n  - ")
		sb.WriteString(ve.Error())
	}
	return sb.String()
}

// ValidationErrors extracts the individual failures from err when it is an
// AggregateError, or wraps a single ValidationError. Returns nil for
// unrelated errors.
func ValidationErrors(err error) []*ValidationError {
	switch e := err.(type) {
	case *AggregateError:
		return e.Errors
	case *ValidationError:
		return []*ValidationError{e}
	default:
		return nil
	}
}
