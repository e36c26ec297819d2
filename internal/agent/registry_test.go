// internal/agent/registry_test.go
package agent

import (
	"context"
	"testing"

	"flight-concierge/internal/common/errors"
	"flight-concierge/internal/common/logger"
	"flight-concierge/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type stubTool struct {
	name   string
	desc   string
	params []ToolParam
	result string
	err    error
	calls  int
}

func (s *stubTool) Name() string            { return s.name }
func (s *stubTool) Description() string     { return s.desc }
func (s *stubTool) Parameters() []ToolParam { return s.params }
func (s *stubTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	s.calls++
	return s.result, s.err
}

func newEchoTool(name string) *stubTool {
	return &stubTool{
		name:   name,
		desc:   "echoes back",
		params: []ToolParam{{Name: "text", Type: "string", Required: true}},
		result: "echo",
	}
}

// ==========================
// Registration Tests
// ==========================

func TestToolRegistry_RegisterAndGet(t *testing.T) {
	reg := NewToolRegistry(logger.NewTestLogger(t))
	reg.Register(newEchoTool("echo"))

	tool, ok := reg.Get("echo")
	require.True(t, ok)
	assert.Equal(t, "echo", tool.Name())

	_, ok = reg.Get("missing")
	assert.False(t, ok)
}

func TestToolRegistry_ListPreservesOrder(t *testing.T) {
	reg := NewToolRegistry(logger.NewTestLogger(t))
	reg.Register(newEchoTool("charlie"))
	reg.Register(newEchoTool("alpha"))
	reg.Register(newEchoTool("bravo"))

	tools := reg.List()
	require.Len(t, tools, 3)
	assert.Equal(t, "charlie", tools[0].Name())
	assert.Equal(t, "alpha", tools[1].Name())
	assert.Equal(t, "bravo", tools[2].Name())
}

func TestToolRegistry_ReRegisterReplaces(t *testing.T) {
	reg := NewToolRegistry(logger.NewTestLogger(t))
	reg.Register(newEchoTool("echo"))
	replacement := newEchoTool("echo")
	replacement.result = "replaced"
	reg.Register(replacement)

	require.Len(t, reg.List(), 1)
	out, err := reg.Execute(context.Background(), "echo", map[string]interface{}{"text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "replaced", out)
}

// ==========================
// Schema Export Tests
// ==========================

func TestToolRegistry_ToOpenAISchema(t *testing.T) {
	reg := NewToolRegistry(logger.NewTestLogger(t))
	reg.Register(newEchoTool("echo"))

	schemas := reg.ToOpenAISchema()
	require.Len(t, schemas, 1)
	assert.Equal(t, "function", schemas[0]["type"])

	fn, ok := schemas[0]["function"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "echo", fn["name"])

	params, ok := fn["parameters"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "object", params["type"])
	assert.Contains(t, params, "properties")
	assert.Equal(t, []string{"text"}, params["required"])
}

func TestToJSONSchema_OptionalParams(t *testing.T) {
	tool := &stubTool{
		name: "sample",
		desc: "sample tool",
		params: []ToolParam{
			{Name: "required_one", Type: "string", Required: true},
			{Name: "optional_one", Type: "number", Default: 0},
			{Name: "choice", Type: "string", Enum: []string{"a", "b"}},
		},
	}

	schema := ToJSONSchema(tool)
	params := schema["parameters"].(map[string]interface{})
	props := params["properties"].(map[string]interface{})

	assert.Len(t, props, 3)
	assert.Equal(t, []string{"required_one"}, params["required"])
	assert.Equal(t, []string{"a", "b"}, props["choice"].(map[string]interface{})["enum"])
}

// ==========================
// Execution Tests
// ==========================

func TestToolRegistry_Execute_UnknownTool(t *testing.T) {
	reg := NewToolRegistry(logger.NewTestLogger(t))

	_, err := reg.Execute(context.Background(), "ghost", nil)

	require.Error(t, err)
	stdErr := errors.Normalize(err)
	assert.Equal(t, errors.ErrCodeToolNotFound, stdErr.Code)
}

func TestToolRegistry_Execute_ToolErrorNormalized(t *testing.T) {
	reg := NewToolRegistry(logger.NewTestLogger(t))
	failing := newEchoTool("echo")
	failing.err = assert.AnError
	reg.Register(failing)

	_, err := reg.Execute(context.Background(), "echo", map[string]interface{}{"text": "hi"})

	require.Error(t, err)
	stdErr := errors.Normalize(err)
	assert.Equal(t, errors.ErrCodeInternal, stdErr.Code)
}

func TestToolRegistry_Execute_ManifestValidation(t *testing.T) {
	manifest := &registry.ToolRegistry{
		Version: "1.0.0",
		Tools: []registry.Tool{{
			Name: "echo",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{"type": "string"},
				},
				"required": []interface{}{"text"},
			},
		}},
	}

	reg := NewToolRegistry(logger.NewTestLogger(t)).WithManifest(manifest)
	tool := newEchoTool("echo")
	reg.Register(tool)

	t.Run("valid args pass", func(t *testing.T) {
		out, err := reg.Execute(context.Background(), "echo", map[string]interface{}{"text": "hi"})
		require.NoError(t, err)
		assert.Equal(t, "echo", out)
	})

	t.Run("missing required arg rejected", func(t *testing.T) {
		before := tool.calls
		_, err := reg.Execute(context.Background(), "echo", map[string]interface{}{})
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeToolInvalidArgs, errors.Normalize(err).Code)
		assert.Equal(t, before, tool.calls) // tool never ran
	})

	t.Run("wrong type rejected", func(t *testing.T) {
		_, err := reg.Execute(context.Background(), "echo", map[string]interface{}{"text": 42})
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeToolInvalidArgs, errors.Normalize(err).Code)
	})

	t.Run("tool missing from manifest skips validation", func(t *testing.T) {
		reg.Register(newEchoTool("unlisted"))
		_, err := reg.Execute(context.Background(), "unlisted", map[string]interface{}{})
		assert.NoError(t, err)
	})
}
