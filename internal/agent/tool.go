// internal/agent/tool.go
package agent

import "context"

// ToolParam describes a single parameter of a tool.
type ToolParam struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "string", "integer", "number", "boolean"
	Description string      `json:"description,omitempty"`
	Required    bool        `json:"required"`
	Default     interface{} `json:"default,omitempty"`
	Enum        []string    `json:"enum,omitempty"`
}

// Tool is the in-process callable contract consumed by the agent loop.
// Execute receives decoded JSON arguments and returns the string content fed
// back to the model as a tool message.
type Tool interface {
	Name() string
	Description() string
	Parameters() []ToolParam
	Execute(ctx context.Context, args map[string]interface{}) (string, error)
}

// ToJSONSchema exports a tool as a generic JSON-schema function description.
func ToJSONSchema(t Tool) map[string]interface{} {
	properties := make(map[string]interface{})
	var required []string

	for _, p := range t.Parameters() {
		prop := map[string]interface{}{
			"type": p.Type,
		}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	parameters := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		parameters["required"] = required
	}

	return map[string]interface{}{
		"name":        t.Name(),
		"description": t.Description(),
		"parameters":  parameters,
	}
}

// ToOpenAISchema exports a tool in OpenAI function-calling format.
func ToOpenAISchema(t Tool) map[string]interface{} {
	return map[string]interface{}{
		"type":     "function",
		"function": ToJSONSchema(t),
	}
}
