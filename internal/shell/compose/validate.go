package compose

import (
	"context"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"
)

// ServiceSummary describes one service of a validated compose spec.
type ServiceSummary struct {
	Name  string
	Image string
}

// Validate parses rendered compose YAML and returns a summary of its
// services. The input must already have all value references resolved;
// validation here is purely structural.
func Validate(yamlContent string) ([]ServiceSummary, error) {
	if strings.TrimSpace(yamlContent) == "" {
		return nil, ErrEmptyInput
	}

	project, err := loadComposeSpec(yamlContent)
	if err != nil {
		return nil, err
	}

	if len(project.Services) == 0 {
		return nil, ErrNoServices
	}

	summaries := make([]ServiceSummary, 0, len(project.Services))
	for _, svc := range project.Services {
		summaries = append(summaries, ServiceSummary{
			Name:  svc.Name,
			Image: svc.Image,
		})
	}
	return summaries, nil
}

// loadComposeSpec loads a compose spec using compose-go.
func loadComposeSpec(yamlContent string) (*types.Project, error) {
	var dict map[string]interface{}
	if err := yaml.Unmarshal([]byte(yamlContent), &dict); err != nil {
		return nil, NewParseError("", "invalid YAML syntax", ErrInvalidYAML)
	}
	if dict == nil {
		return nil, NewParseError("", "invalid YAML syntax", ErrInvalidYAML)
	}

	project, err := loader.LoadWithContext(context.Background(), types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{
				Content: []byte(yamlContent),
				Config:  dict,
			},
		},
	}, func(opts *loader.Options) {
		opts.SetProjectName("stacker-temp", false)
		opts.SkipValidation = false
		opts.SkipInterpolation = false
		// In-memory input, so paths cannot be resolved
		opts.SkipNormalization = true
		opts.SkipExtends = true
	})
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "dependency cycle detected") {
			return nil, NewParseError("", "circular dependency detected", ErrCircularDependency)
		}
		return nil, NewParseError("", errStr, ErrInvalidYAML)
	}

	return project, nil
}
