// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"os"
)

func LoadRegistry(path string) (*ToolRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ToolRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Find returns the manifest entry for a tool name, or nil.
func (r *ToolRegistry) Find(name string) *Tool {
	for i := range r.Tools {
		if r.Tools[i].Name == name {
			return &r.Tools[i]
		}
	}
	return nil
}
