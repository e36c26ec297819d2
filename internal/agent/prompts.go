// internal/agent/prompts.go
package agent

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"flight-concierge/internal/common/errors"
)

// PromptTemplates holds the templates loaded from prompts.yaml.
type PromptTemplates struct {
	SystemPrompt string `yaml:"system_prompt"`
}

// LoadPrompts reads prompt templates from a YAML file.
func LoadPrompts(path string) (*PromptTemplates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewPromptTemplateMissingError(path, err)
	}

	var templates PromptTemplates
	if err := yaml.Unmarshal(data, &templates); err != nil {
		return nil, errors.NewPromptTemplateMissingError(path, err)
	}
	if templates.SystemPrompt == "" {
		return nil, errors.NewPromptTemplateMissingError(path, fmt.Errorf("system_prompt is empty"))
	}

	return &templates, nil
}

// RenderSystemPrompt fills the template placeholders with the registered
// tool descriptions and the current date.
func (p *PromptTemplates) RenderSystemPrompt(tools []Tool, now time.Time) string {
	var b strings.Builder
	for _, t := range tools {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name(), t.Description())
	}

	prompt := strings.ReplaceAll(p.SystemPrompt, "{{tool_descriptions}}", b.String())
	prompt = strings.ReplaceAll(prompt, "{{current_date}}", now.Format("2006-01-02"))
	return prompt
}
