// Package values contains the value tree model used for configuration
// merging and reference resolution.
// This is part of the Functional Core - all functions are pure with no I/O.
package values

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// Document shape errors
	ErrInvalidRootShape = errors.New("top-level structure must be a mapping")

	// Path errors
	ErrEmptyPath     = errors.New("path is empty")
	ErrInvalidPath   = errors.New("invalid path syntax")
	ErrPathNotFound  = errors.New("path not found")
	ErrNotAMapping   = errors.New("path segment is not a mapping")
	ErrSequenceWrite = errors.New("cannot write into a sequence element")

	// Override errors
	ErrInvalidOverride = errors.New("invalid override, expected path=value")
)

// PathError wraps path navigation failures with the offending path.
type PathError struct {
	Path    string // e.g., "services.web.image"
	Message string
	Err     error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// NewPathError creates a new PathError.
func NewPathError(path, message string, err error) *PathError {
	return &PathError{
		Path:    path,
		Message: message,
		Err:     err,
	}
}
