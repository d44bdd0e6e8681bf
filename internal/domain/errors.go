package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique field collision.
	ErrAlreadyExists = errors.New("already exists")
)

// ValidationError collects business-rule violations. Callers append every
// failure they find instead of stopping at the first one.
type ValidationError struct {
	Violations []string
}

// Validation builds a ValidationError from ready-made messages.
func Validation(msgs ...string) *ValidationError {
	return &ValidationError{Violations: msgs}
}

// Addf appends a formatted violation.
func (e *ValidationError) Addf(format string, args ...interface{}) {
	e.Violations = append(e.Violations, fmt.Sprintf(format, args...))
}

// HasViolations reports whether at least one rule failed.
func (e *ValidationError) HasViolations() bool {
	return len(e.Violations) > 0
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, "; ")
}

// TransitionError reports an illegal order-line status progression.
type TransitionError struct {
	From   string
	To     string
	Reason string
}

func (e *TransitionError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("cannot apply status %q: %s", e.To, e.Reason)
	}
	return fmt.Sprintf("cannot move from %q to %q: %s", e.From, e.To, e.Reason)
}
