// internal/agent/registry.go
package agent

import (
	"context"
	"sync"
	"time"

	"flight-concierge/internal/common/errors"
	"flight-concierge/internal/common/logger"
	"flight-concierge/internal/common/metrics"
	"flight-concierge/internal/common/validation"
	"flight-concierge/pkg/registry"
)

// ToolRegistry manages tool registration, schema export and execution.
// Registration order is preserved so the schema sent to the model is stable.
type ToolRegistry struct {
	mu       sync.RWMutex
	tools    map[string]Tool
	order    []string
	manifest *registry.ToolRegistry
	logger   logger.Logger
}

// NewToolRegistry creates an empty tool registry.
func NewToolRegistry(log logger.Logger) *ToolRegistry {
	return &ToolRegistry{
		tools:  make(map[string]Tool),
		logger: log.WithFields(map[string]interface{}{"component": "tool-registry"}),
	}
}

// WithManifest attaches the tool manifest used for argument validation.
func (r *ToolRegistry) WithManifest(m *registry.ToolRegistry) *ToolRegistry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manifest = m
	return r
}

// Register adds a tool to the registry.
func (r *ToolRegistry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
	r.logger.Info("tool registered", map[string]interface{}{"tool": t.Name()})
}

// Get returns a registered tool by name.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns all tools in registration order.
func (r *ToolRegistry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// ToOpenAISchema exports every registered tool for the chat-completion
// "tools" request field.
func (r *ToolRegistry) ToOpenAISchema() []map[string]interface{} {
	tools := r.List()
	out := make([]map[string]interface{}, 0, len(tools))
	for _, t := range tools {
		out = append(out, ToOpenAISchema(t))
	}
	return out
}

// Execute runs a tool by name with argument validation and metrics.
func (r *ToolRegistry) Execute(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	tool, ok := r.Get(name)
	if !ok {
		return "", errors.NewToolNotFoundError(name)
	}

	if err := r.validateArgs(name, args); err != nil {
		return "", err
	}

	start := time.Now()
	metrics.ToolInvocations.WithLabelValues(name).Inc()

	result, err := tool.Execute(ctx, args)

	metrics.ToolDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		stdErr := errors.Normalize(err)
		metrics.ToolFailures.WithLabelValues(name, string(stdErr.Code)).Inc()
		r.logger.Error("tool execution failed", map[string]interface{}{
			"tool":      name,
			"errorCode": stdErr.Code,
			"error":     stdErr.Details,
			"retryable": errors.IsRetryableErrorCode(stdErr.Code),
			"retries":   errors.GetRetryCount(stdErr.Code),
		})
		return "", stdErr
	}

	return result, nil
}

func (r *ToolRegistry) validateArgs(name string, args map[string]interface{}) error {
	r.mu.RLock()
	manifest := r.manifest
	r.mu.RUnlock()

	if manifest == nil {
		return nil
	}
	entry := manifest.Find(name)
	if entry == nil || entry.InputSchema == nil {
		return nil
	}

	result, err := validation.ValidateArgs(args, entry.InputSchema)
	if err != nil {
		return errors.NewToolInvalidArgsError(name, err.Error())
	}
	if !result.Valid {
		return errors.NewToolInvalidArgsError(name, result.ErrorString())
	}
	return nil
}
