// pkg/registry/schema.go
package registry

type ToolRegistry struct {
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated"`
	Tools       []Tool `json:"tools"`
}

type Tool struct {
	Name        string                 `json:"name"`
	DisplayName string                 `json:"displayName"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Version     string                 `json:"version"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	ErrorCodes  []string               `json:"errorCodes"`
	Timeout     string                 `json:"timeout"`
	Tags        []string               `json:"tags"`
}
