// Package resolve implements the value reference resolution engine:
// discovery of templated values, dependency graph construction,
// cycle-safe ordering, and in-order rendering with write-back.
// This is part of the Functional Core - all functions are pure with no I/O.
package resolve

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrCircularDependency is returned when value references form a cycle.
	ErrCircularDependency = errors.New("circular dependency detected")
)

// CycleError reports a concrete reference cycle, e.g. "a -> b -> c -> a".
// The chain always names every participating path and repeats the entry
// node at the end.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("circular dependency detected in value references: %s",
		strings.Join(e.Cycle, " -> "))
}

func (e *CycleError) Unwrap() error {
	return ErrCircularDependency
}

// ResolveError wraps a failure while resolving one templated path.
type ResolveError struct {
	Path string // canonical path of the value being resolved
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolving %s: %s", e.Path, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}
