package values

import (
	"strconv"
	"strings"
)

// =============================================================================
// Value Tree
// =============================================================================

// Tree is a parsed values document: nested mappings, sequences, and
// scalars exactly as gopkg.in/yaml.v3 decodes them. Mappings are
// map[string]any, sequences []any, scalars string/bool/int/float64/nil.
// Traversal sites switch exhaustively over this closed set.
type Tree = map[string]any

// AsMapping asserts that a decoded document has a mapping at the top
// level. Any other shape (scalar, sequence, empty document) is rejected.
func AsMapping(doc any) (Tree, error) {
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, ErrInvalidRootShape
	}
	return m, nil
}

// =============================================================================
// Path Syntax
// =============================================================================

// segment is one dotted component of a value path. A trailing [i] on a
// component addresses an element of the sequence stored under the key.
type segment struct {
	key      string
	index    int
	hasIndex bool
}

// JoinPath appends a mapping key to a dotted path prefix.
func JoinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// IndexPath appends a sequence index to a path, e.g. "items" + 0 → "items[0]".
func IndexPath(prefix string, index int) string {
	return prefix + "[" + strconv.Itoa(index) + "]"
}

// splitPath parses a canonical dotted path into segments.
func splitPath(path string) ([]segment, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	parts := strings.Split(path, ".")
	segments := make([]segment, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return nil, ErrInvalidPath
		}
		seg := segment{key: part}
		if open := strings.IndexByte(part, '['); open >= 0 {
			if !strings.HasSuffix(part, "]") || open == 0 {
				return nil, ErrInvalidPath
			}
			idx, err := strconv.Atoi(part[open+1 : len(part)-1])
			if err != nil || idx < 0 {
				return nil, ErrInvalidPath
			}
			seg.key = part[:open]
			seg.index = idx
			seg.hasIndex = true
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// =============================================================================
// Path Addressing
// =============================================================================

// Get traverses the tree along a dotted path, descending through
// mappings and sequence indices. Returns false if any intermediate key
// or index is missing; no default value is fabricated.
//
// Example:
//
//	Get(tree, "services.web.image")
//	Get(tree, "items[0].name")
func Get(tree Tree, path string) (any, bool) {
	segments, err := splitPath(path)
	if err != nil {
		return nil, false
	}

	var current any = map[string]any(tree)
	for _, seg := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[seg.key]
		if !ok {
			return nil, false
		}
		if seg.hasIndex {
			seq, ok := current.([]any)
			if !ok || seg.index >= len(seq) {
				return nil, false
			}
			current = seq[seg.index]
		}
	}
	return current, true
}

// Set writes a value at a dotted mapping path. All segments but the last
// must already exist and be mappings; Set never auto-creates intermediate
// structure, because resolution only writes back into paths discovered by
// scanning the existing tree. Sequence elements are not writable.
func Set(tree Tree, path string, value any) error {
	segments, err := splitPath(path)
	if err != nil {
		return NewPathError(path, "invalid path", err)
	}

	current := map[string]any(tree)
	for i, seg := range segments {
		if seg.hasIndex {
			return NewPathError(path, "cannot write into a sequence element", ErrSequenceWrite)
		}
		if i == len(segments)-1 {
			current[seg.key] = value
			return nil
		}

		next, ok := current[seg.key]
		if !ok {
			return NewPathError(path, "intermediate key "+seg.key+" not found", ErrPathNotFound)
		}
		current, ok = next.(map[string]any)
		if !ok {
			return NewPathError(path, "intermediate key "+seg.key+" is not a mapping", ErrNotAMapping)
		}
	}
	return nil
}

// =============================================================================
// Deep Copy
// =============================================================================

// deepCopy clones mappings and sequences so merged trees never alias
// their sources; in-place resolution must not mutate caller documents.
func deepCopy(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}
