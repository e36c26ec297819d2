// internal/common/validation/schema.go
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateArgs validates tool arguments against a JSON schema expressed as a
// generic map, typically taken from the tool manifest.
func ValidateArgs(args map[string]interface{}, schema map[string]interface{}) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(args)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return out, nil
}

// ErrorString flattens validation errors into a single message for tool
// results fed back to the model.
func (r *ValidationResult) ErrorString() string {
	if r.Valid {
		return ""
	}
	msg := ""
	for i, e := range r.Errors {
		if i > 0 {
			msg += "; "
		}
		msg += fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return msg
}
