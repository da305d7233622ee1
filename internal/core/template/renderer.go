package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/artpar/stacker/internal/core/values"
)

// =============================================================================
// Expression Syntax
// =============================================================================

// expressionRegex matches one delimited expression, lazily, so multiple
// expressions in a single string are substituted independently.
var expressionRegex = regexp.MustCompile(`\{\{.*?\}\}`)

// identChainRegex matches the reference grammar: a dotted chain of
// identifiers, e.g. "name" or "parent.child.value".
var identChainRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z_][a-zA-Z0-9_]*)*$`)

// filterCallRegex matches a filter invocation: "upper" or "replace('a', 'b')".
var filterCallRegex = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_]*)\s*(?:\((.*)\))?$`)

// =============================================================================
// Renderer
// =============================================================================

// Renderer substitutes {{ path | filters }} expressions against a value
// tree. It is the production implementation of the resolution engine's
// pluggable rendering capability.
//
// Supported filters: upper, lower, title, trim, quote, replace(old, new),
// default(fallback). A reference absent from the context fails with a
// RenderError unless a default filter supplies a fallback.
type Renderer struct{}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render substitutes every expression in templateStr with its value from
// context. The whole render fails on the first malformed expression,
// undefined reference, or filter error; no partially substituted string
// is returned.
func (r *Renderer) Render(templateStr string, context values.Tree) (string, error) {
	var renderErr error
	rendered := expressionRegex.ReplaceAllStringFunc(templateStr, func(match string) string {
		if renderErr != nil {
			return match
		}
		expr := match[2 : len(match)-2]
		result, err := evalExpression(expr, context)
		if err != nil {
			renderErr = err
			return match
		}
		return result
	})
	if renderErr != nil {
		return "", &RenderError{Template: templateStr, Err: renderErr}
	}
	return rendered, nil
}

// =============================================================================
// Expression Evaluation
// =============================================================================

// evalExpression evaluates one expression body (the text between the
// delimiters): a dotted reference followed by an optional filter pipeline.
func evalExpression(expr string, context values.Tree) (string, error) {
	parts := splitPipeline(expr)

	ref := strings.TrimSpace(parts[0])
	if !identChainRegex.MatchString(ref) {
		return "", fmt.Errorf("%w: %q", ErrInvalidExpression, strings.TrimSpace(expr))
	}

	raw, defined := values.Get(context, ref)
	var result string
	if defined {
		formatted, err := formatScalar(raw)
		if err != nil {
			return "", fmt.Errorf("%w: %s", err, ref)
		}
		result = formatted
	}

	for _, part := range parts[1:] {
		name, args, err := parseFilterCall(strings.TrimSpace(part))
		if err != nil {
			return "", err
		}

		// default acts on definedness, not on the value, so it is
		// applied before the reference is required to exist.
		if name == "default" {
			if len(args) != 1 {
				return "", fmt.Errorf("%w: default expects one argument", ErrBadFilterArgs)
			}
			if !defined {
				result = args[0]
				defined = true
			}
			continue
		}

		if !defined {
			return "", fmt.Errorf("%w: %s", ErrUndefinedReference, ref)
		}
		fn, ok := filters[name]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownFilter, name)
		}
		result, err = fn(result, args)
		if err != nil {
			return "", err
		}
	}

	if !defined {
		return "", fmt.Errorf("%w: %s", ErrUndefinedReference, ref)
	}
	return result, nil
}

// formatScalar renders a leaf value as text. Mappings and sequences have
// no single text form and are rejected.
func formatScalar(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case nil:
		return "", nil
	default:
		return "", ErrNotAScalar
	}
}

// =============================================================================
// Filters
// =============================================================================

type filterFunc func(value string, args []string) (string, error)

var filters = map[string]filterFunc{
	"upper": func(v string, args []string) (string, error) {
		if err := wantArgs("upper", args, 0); err != nil {
			return "", err
		}
		return strings.ToUpper(v), nil
	},
	"lower": func(v string, args []string) (string, error) {
		if err := wantArgs("lower", args, 0); err != nil {
			return "", err
		}
		return strings.ToLower(v), nil
	},
	"title": func(v string, args []string) (string, error) {
		if err := wantArgs("title", args, 0); err != nil {
			return "", err
		}
		return titleCase(v), nil
	},
	"trim": func(v string, args []string) (string, error) {
		if err := wantArgs("trim", args, 0); err != nil {
			return "", err
		}
		return strings.TrimSpace(v), nil
	},
	"quote": func(v string, args []string) (string, error) {
		if err := wantArgs("quote", args, 0); err != nil {
			return "", err
		}
		return strconv.Quote(v), nil
	},
	"replace": func(v string, args []string) (string, error) {
		if err := wantArgs("replace", args, 2); err != nil {
			return "", err
		}
		return strings.ReplaceAll(v, args[0], args[1]), nil
	},
}

func wantArgs(name string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: %s expects %d argument(s), got %d", ErrBadFilterArgs, name, n, len(args))
	}
	return nil
}

// titleCase upper-cases the first letter of each word, preserving the
// original spacing.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) && !prevLetter {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(r)
		}
		prevLetter = unicode.IsLetter(r) || unicode.IsDigit(r)
	}
	return b.String()
}

// =============================================================================
// Pipeline Parsing
// =============================================================================

// splitPipeline splits an expression body on '|', respecting quoted
// filter arguments, e.g. replace('|', '-').
func splitPipeline(expr string) []string {
	var parts []string
	var quote rune
	start := 0
	for i, r := range expr {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '|':
			parts = append(parts, expr[start:i])
			start = i + 1
		}
	}
	return append(parts, expr[start:])
}

// parseFilterCall parses "name" or "name(arg, ...)" into its name and
// argument list. Arguments may be quoted strings or bare tokens; both
// are passed through as strings.
func parseFilterCall(call string) (string, []string, error) {
	m := filterCallRegex.FindStringSubmatch(call)
	if m == nil {
		return "", nil, fmt.Errorf("%w: bad filter %q", ErrInvalidExpression, call)
	}
	name := m[1]
	if m[2] == "" {
		return name, nil, nil
	}
	args, err := splitArgs(m[2])
	if err != nil {
		return "", nil, err
	}
	return name, args, nil
}

// splitArgs splits a comma-separated argument list, respecting quotes.
func splitArgs(list string) ([]string, error) {
	var args []string
	var quote rune
	start := 0
	for i, r := range list {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ',':
			args = append(args, list[start:i])
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("%w: unterminated quote in %q", ErrBadFilterArgs, list)
	}
	args = append(args, list[start:])

	out := make([]string, 0, len(args))
	for _, arg := range args {
		out = append(out, unquoteArg(strings.TrimSpace(arg)))
	}
	return out, nil
}

func unquoteArg(arg string) string {
	if len(arg) >= 2 {
		first, last := arg[0], arg[len(arg)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
			return arg[1 : len(arg)-1]
		}
	}
	return arg
}
