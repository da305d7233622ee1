package resolve

import (
	"regexp"

	"github.com/artpar/stacker/internal/core/values"
)

// =============================================================================
// Capability Interfaces
// =============================================================================

// ReferenceExtractor detects template syntax in string values and
// extracts the paths a template references. Injected so the resolution
// engine can be exercised with test doubles.
type ReferenceExtractor interface {
	// ContainsTemplate reports whether s contains template syntax.
	ContainsTemplate(s string) bool

	// ExtractReferences returns the dotted reference paths of every
	// well-formed expression in s, in order of occurrence. Filters are
	// ignored: "{{ name | upper }}" yields ["name"].
	ExtractReferences(s string) []string
}

// TemplateRenderer renders one template string against the full value
// tree, producing a plain string.
type TemplateRenderer interface {
	Render(templateStr string, context values.Tree) (string, error)
}

// =============================================================================
// Expression Extractor
// =============================================================================

// referenceRegex captures the leading dotted identifier chain of each
// well-formed expression, ignoring any trailing filter pipeline.
var referenceRegex = regexp.MustCompile(
	`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z_][a-zA-Z0-9_]*)*)(?:\s*\|[^}]*)?\s*\}\}`)

// templateMarkerRegex is the lenient detector: any opener/closer pair
// counts as template syntax, even an empty "{{}}". Deliberately looser
// than referenceRegex - a string can be flagged as a template yet yield
// zero references, and the renderer still gets to reject it.
var templateMarkerRegex = regexp.MustCompile(`\{\{.*?\}\}`)

// ExpressionExtractor is the production ReferenceExtractor for the
// {{ path | filters }} expression syntax.
type ExpressionExtractor struct{}

// NewExpressionExtractor creates an ExpressionExtractor.
func NewExpressionExtractor() *ExpressionExtractor {
	return &ExpressionExtractor{}
}

// ContainsTemplate implements ReferenceExtractor.
func (e *ExpressionExtractor) ContainsTemplate(s string) bool {
	return templateMarkerRegex.MatchString(s)
}

// ExtractReferences implements ReferenceExtractor. Malformed expressions
// yield no reference but are not an error here; rendering decides their
// fate.
func (e *ExpressionExtractor) ExtractReferences(s string) []string {
	var refs []string
	for _, match := range referenceRegex.FindAllStringSubmatch(s, -1) {
		refs = append(refs, match[1])
	}
	return refs
}
