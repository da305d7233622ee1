// Package loader reads values documents from disk and composes merging
// and reference resolution into a single load operation.
package loader

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/artpar/stacker/internal/core/resolve"
	"github.com/artpar/stacker/internal/core/values"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Error Types
// =============================================================================

// SourceError wraps a failure to read, decode, or shape-check one values
// source. It carries the offending source identifier (a file path or an
// inline "path=value" override).
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("values source %q: %s", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// =============================================================================
// Loader
// =============================================================================

// Loader loads an ordered list of values sources, merges them, and
// resolves cross-references between values.
type Loader struct {
	resolver *resolve.Resolver
	logger   *slog.Logger
}

// New creates a Loader with the production extractor and renderer.
func New(logger *slog.Logger) *Loader {
	return &Loader{
		resolver: resolve.NewDefaultResolver(),
		logger:   logger,
	}
}

// Load loads each source in order - YAML file paths, or inline
// "dotted.path=literal" overrides for identifiers containing '=' -
// merges them left to right, and resolves value references. Later
// sources win ties. Any unreadable or invalid source aborts the whole
// load; there is no partial result.
func (l *Loader) Load(sources []string) (values.Tree, error) {
	merged := values.Tree{}

	for _, source := range sources {
		var (
			tree values.Tree
			err  error
		)
		if strings.Contains(source, "=") {
			tree, err = values.ParseOverride(source)
			if err != nil {
				return nil, &SourceError{Source: source, Err: err}
			}
		} else {
			tree, err = ReadValuesFile(source)
			if err != nil {
				return nil, err
			}
		}
		values.Merge(merged, tree)
	}

	l.logger.Debug("merged values sources", "sources", len(sources))

	resolved, err := l.resolver.Resolve(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve value references: %w", err)
	}
	return resolved, nil
}

// ReadValuesFile reads one YAML document from disk. The document must
// have a mapping at the top level.
func ReadValuesFile(path string) (values.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SourceError{Source: path, Err: err}
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &SourceError{Source: path, Err: err}
	}

	tree, err := values.AsMapping(doc)
	if err != nil {
		return nil, &SourceError{Source: path, Err: err}
	}
	return tree, nil
}
