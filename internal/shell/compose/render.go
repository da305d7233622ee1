package compose

import (
	"fmt"
	"os"

	"github.com/artpar/stacker/internal/core/template"
	"github.com/artpar/stacker/internal/core/values"
	"gopkg.in/yaml.v3"
)

// RenderFile reads a compose template from disk and substitutes value
// references using the resolved values tree.
func RenderFile(path string, context values.Tree) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read compose template %q: %w", path, err)
	}
	return Render(string(data), context)
}

// Render substitutes value references in compose template content.
func Render(content string, context values.Tree) (string, error) {
	return template.NewRenderer().Render(content, context)
}

// EncodeValues serializes a resolved values tree back to YAML, for the
// "values" inspection command.
func EncodeValues(tree values.Tree) (string, error) {
	data, err := yaml.Marshal(tree)
	if err != nil {
		return "", fmt.Errorf("failed to encode values: %w", err)
	}
	return string(data), nil
}
