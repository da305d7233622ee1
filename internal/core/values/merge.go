package values

import "strings"

// =============================================================================
// Merge Functions
// =============================================================================

// Merge merges src into dst, applying the layered-values rules per key:
//
//   - both sides mappings: merged recursively, keys on one side kept
//   - both sides sequences: concatenated, existing elements first
//   - any other combination: src replaces dst entirely (last-source-wins)
//   - key absent in dst: src value inserted
//
// Values taken from src are deep-copied so the destination never aliases
// the source document.
func Merge(dst, src Tree) {
	mergeMaps(dst, src)
}

func mergeMaps(dst, src map[string]any) {
	for key, newVal := range src {
		existing, ok := dst[key]
		if !ok {
			dst[key] = deepCopy(newVal)
			continue
		}

		switch existingTyped := existing.(type) {
		case map[string]any:
			if newMap, ok := newVal.(map[string]any); ok {
				mergeMaps(existingTyped, newMap)
				continue
			}
		case []any:
			if newSeq, ok := newVal.([]any); ok {
				dst[key] = append(existingTyped, deepCopy(newSeq).([]any)...)
				continue
			}
		}
		dst[key] = deepCopy(newVal)
	}
}

// MergeAll merges an ordered list of source trees into a fresh tree.
// Later sources win ties per the Merge rules.
func MergeAll(sources []Tree) Tree {
	merged := Tree{}
	for _, src := range sources {
		Merge(merged, src)
	}
	return merged
}

// =============================================================================
// Inline Overrides
// =============================================================================

// ParseOverride parses an inline "dotted.path=literal" override into a
// single-field nested mapping, e.g. "a.b=x" becomes {a: {b: "x"}}. The
// literal is always a string, never type-coerced. The result merges like
// any other source.
func ParseOverride(override string) (Tree, error) {
	key, literal, found := strings.Cut(override, "=")
	if !found || key == "" {
		return nil, ErrInvalidOverride
	}

	parts := strings.Split(key, ".")
	for _, part := range parts {
		if part == "" {
			return nil, ErrInvalidOverride
		}
	}

	// Build the nested mapping inside-out.
	var value any = literal
	for i := len(parts) - 1; i >= 0; i-- {
		value = map[string]any{parts[i]: value}
	}
	return value.(map[string]any), nil
}
