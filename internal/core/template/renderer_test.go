package template

import (
	"testing"

	"github.com/artpar/stacker/internal/core/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, tmpl string, ctx values.Tree) string {
	t.Helper()
	out, err := NewRenderer().Render(tmpl, ctx)
	require.NoError(t, err)
	return out
}

// =============================================================================
// Basic Substitution Tests
// =============================================================================

func TestRender_SimpleReference(t *testing.T) {
	ctx := values.Tree{"greeting": "hello"}
	assert.Equal(t, "hello world", render(t, "{{ greeting }} world", ctx))
}

func TestRender_NestedReference(t *testing.T) {
	ctx := values.Tree{
		"parent": map[string]any{
			"child": map[string]any{"value": "nested"},
		},
	}
	assert.Equal(t, "nested", render(t, "{{ parent.child.value }}", ctx))
}

func TestRender_MultipleReferences(t *testing.T) {
	ctx := values.Tree{"part1": "world", "part2": "hello"}
	assert.Equal(t, "hello world", render(t, "{{ part2 }} {{ part1 }}", ctx))
}

func TestRender_MixedStaticAndDynamicText(t *testing.T) {
	ctx := values.Tree{"name": "Alice"}
	assert.Equal(t, "Hello, Alice! Welcome.", render(t, "Hello, {{ name }}! Welcome.", ctx))
}

func TestRender_NoExpressions(t *testing.T) {
	assert.Equal(t, "plain text", render(t, "plain text", values.Tree{}))
}

func TestRender_WhitespaceVariations(t *testing.T) {
	ctx := values.Tree{"foo": "1", "bar": "2", "baz": "3"}
	assert.Equal(t, "1 2 3", render(t, "{{foo}} {{  bar  }} {{   baz   }}", ctx))
}

// =============================================================================
// Scalar Formatting Tests
// =============================================================================

func TestRender_NumberAndBoolReferences(t *testing.T) {
	ctx := values.Tree{"port": 8080, "ratio": 1.5, "debug": true}
	assert.Equal(t, "8080 1.5 true", render(t, "{{ port }} {{ ratio }} {{ debug }}", ctx))
}

func TestRender_NullReference(t *testing.T) {
	ctx := values.Tree{"nothing": nil}
	assert.Equal(t, "<>", render(t, "<{{ nothing }}>", ctx))
}

func TestRender_MappingReferenceFails(t *testing.T) {
	ctx := values.Tree{"cfg": map[string]any{"a": 1}}
	_, err := NewRenderer().Render("{{ cfg }}", ctx)
	assert.ErrorIs(t, err, ErrNotAScalar)
}

// =============================================================================
// Filter Tests
// =============================================================================

func TestRender_UpperFilter(t *testing.T) {
	ctx := values.Tree{"name": "world"}
	assert.Equal(t, "WORLD", render(t, "{{ name | upper }}", ctx))
}

func TestRender_LowerFilter(t *testing.T) {
	ctx := values.Tree{"name": "HELLO"}
	assert.Equal(t, "hello", render(t, "{{ name | lower }}", ctx))
}

func TestRender_TitleFilter(t *testing.T) {
	ctx := values.Tree{"name": "hello world"}
	assert.Equal(t, "Hello World", render(t, "{{ name | title }}", ctx))
}

func TestRender_TrimFilter(t *testing.T) {
	ctx := values.Tree{"name": "  padded  "}
	assert.Equal(t, "padded", render(t, "{{ name | trim }}", ctx))
}

func TestRender_QuoteFilter(t *testing.T) {
	ctx := values.Tree{"name": "a b"}
	assert.Equal(t, `"a b"`, render(t, "{{ name | quote }}", ctx))
}

func TestRender_ReplaceFilter(t *testing.T) {
	ctx := values.Tree{"host": "my.example.com"}
	assert.Equal(t, "my-example-com", render(t, "{{ host | replace('.', '-') }}", ctx))
}

func TestRender_ChainedFilters(t *testing.T) {
	ctx := values.Tree{"name": "  hello  "}
	assert.Equal(t, "HELLO", render(t, "{{ name | trim | upper }}", ctx))
}

func TestRender_DefaultFilterUsedWhenUndefined(t *testing.T) {
	out := render(t, "{{ undefined_var | default('fallback') }}", values.Tree{})
	assert.Equal(t, "fallback", out)
}

func TestRender_DefaultFilterIgnoredWhenDefined(t *testing.T) {
	ctx := values.Tree{"name": "real"}
	assert.Equal(t, "real", render(t, "{{ name | default('fallback') }}", ctx))
}

func TestRender_DefaultThenFilter(t *testing.T) {
	out := render(t, "{{ missing | default('fallback') | upper }}", values.Tree{})
	assert.Equal(t, "FALLBACK", out)
}

func TestRender_UnknownFilter(t *testing.T) {
	ctx := values.Tree{"name": "x"}
	_, err := NewRenderer().Render("{{ name | sparkle }}", ctx)
	assert.ErrorIs(t, err, ErrUnknownFilter)
}

func TestRender_BadFilterArity(t *testing.T) {
	ctx := values.Tree{"name": "x"}
	_, err := NewRenderer().Render("{{ name | replace('a') }}", ctx)
	assert.ErrorIs(t, err, ErrBadFilterArgs)
}

// =============================================================================
// Error Tests
// =============================================================================

func TestRender_UndefinedReferenceFails(t *testing.T) {
	_, err := NewRenderer().Render("{{ missing }}", values.Tree{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUndefinedReference)

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "{{ missing }}", renderErr.Template)
}

func TestRender_EmptyExpressionFails(t *testing.T) {
	_, err := NewRenderer().Render("Hello {{}} world", values.Tree{})
	assert.ErrorIs(t, err, ErrInvalidExpression)
}

func TestRender_MalformedExpressionFails(t *testing.T) {
	ctx := values.Tree{"a": "x"}
	_, err := NewRenderer().Render("{{ 1 + 2 }}", ctx)
	assert.ErrorIs(t, err, ErrInvalidExpression)
}

func TestRender_ErrorMentionsTemplate(t *testing.T) {
	_, err := NewRenderer().Render("prefix {{ missing }} suffix", values.Tree{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prefix {{ missing }} suffix")
}
