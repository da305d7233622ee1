package resolve

import (
	"sort"

	"github.com/artpar/stacker/internal/core/template"
	"github.com/artpar/stacker/internal/core/values"
)

// =============================================================================
// Resolver
// =============================================================================

// Resolver resolves cross-references between values in a tree. Templated
// string values are rendered in dependency order, each result written
// back before the next render so chained references observe resolved
// text, never raw template source.
type Resolver struct {
	extractor ReferenceExtractor
	renderer  TemplateRenderer
}

// NewResolver creates a Resolver with the given capabilities.
func NewResolver(extractor ReferenceExtractor, renderer TemplateRenderer) *Resolver {
	return &Resolver{
		extractor: extractor,
		renderer:  renderer,
	}
}

// NewDefaultResolver creates a Resolver with the production expression
// extractor and renderer.
func NewDefaultResolver() *Resolver {
	return NewResolver(NewExpressionExtractor(), template.NewRenderer())
}

// Resolve resolves every templated value in the tree, in place, and
// returns the tree. The graph and template map are transient, built
// fresh per call. Any failure (cycle, render error, unnavigable
// write-back path) aborts the whole resolution; the caller never sees a
// half-resolved tree.
func (r *Resolver) Resolve(tree values.Tree) (values.Tree, error) {
	templates := make(map[string]string)
	collectTemplates(map[string]any(tree), "", templates, r.extractor)
	if len(templates) == 0 {
		return tree, nil
	}

	graph := buildGraph(templates, r.extractor)
	order, err := graph.TopologicalSort()
	if err != nil {
		return nil, err
	}

	for _, path := range order {
		templateStr, ok := templates[path]
		if !ok {
			// A pure dependency target with no template of its own is
			// already a concrete value.
			continue
		}
		rendered, err := r.renderer.Render(templateStr, tree)
		if err != nil {
			return nil, &ResolveError{Path: path, Err: err}
		}
		if err := values.Set(tree, path, rendered); err != nil {
			return nil, &ResolveError{Path: path, Err: err}
		}
	}

	return tree, nil
}

// =============================================================================
// Template Discovery
// =============================================================================

// collectTemplates depth-first scans the tree, recording the raw
// template string of every string leaf the detector flags, keyed by
// canonical path. Descends through mappings (dotted paths) and
// sequences (bracket-indexed paths).
func collectTemplates(node any, path string, out map[string]string, detector ReferenceExtractor) {
	switch v := node.(type) {
	case string:
		if path != "" && detector.ContainsTemplate(v) {
			out[path] = v
		}
	case map[string]any:
		for key, child := range v {
			collectTemplates(child, values.JoinPath(path, key), out, detector)
		}
	case []any:
		for i, child := range v {
			collectTemplates(child, values.IndexPath(path, i), out, detector)
		}
	}
}

// buildGraph registers every templated path and one edge per extracted
// reference. Paths are added in sorted order so ties in the topological
// sort are deterministic.
func buildGraph(templates map[string]string, extractor ReferenceExtractor) *DependencyGraph {
	paths := make([]string, 0, len(templates))
	for path := range templates {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	graph := NewDependencyGraph()
	for _, path := range paths {
		graph.AddNode(path)
		for _, ref := range extractor.ExtractReferences(templates[path]) {
			graph.AddDependency(path, ref)
		}
	}
	return graph
}
