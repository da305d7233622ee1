// Package template implements the expression renderer used to resolve
// cross-references between values, e.g. "{{ host }}:{{ port }}" or
// "{{ name | upper }}".
// This is part of the Functional Core - all functions are pure with no I/O.
package template

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	ErrInvalidExpression  = errors.New("invalid template expression")
	ErrUndefinedReference = errors.New("undefined value reference")
	ErrUnknownFilter      = errors.New("unknown filter")
	ErrBadFilterArgs      = errors.New("invalid filter arguments")
	ErrNotAScalar         = errors.New("referenced value is not a scalar")
)

// RenderError wraps render failures with the offending template text.
type RenderError struct {
	Template string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render %q: %s", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
