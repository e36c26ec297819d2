// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
llm:
  base_url: https://llm.example.com
  model: test-model
amadeus:
  api_key: key
  api_secret: secret
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, minimalConfig)

	cfg, err := LoadFromFile(path)

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", ServerConfig{Host: "0.0.0.0", Port: 8080}.Addr())
	assert.Equal(t, 6, cfg.Agent.MaxSteps)
	assert.Equal(t, 2096, cfg.LLM.MaxTokens)
	assert.Equal(t, 0.5, cfg.LLM.Temperature)
	assert.Equal(t, "https://test.api.amadeus.com", cfg.Amadeus.BaseURL)
	assert.Equal(t, 20, cfg.Amadeus.MaxOffers)
	assert.Equal(t, 600000, cfg.Cache.TTL)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile_ValidatesRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing llm base_url", "llm:\n  model: m\namadeus:\n  api_key: k\n  api_secret: s\n"},
		{"missing llm model", "llm:\n  base_url: https://x\namadeus:\n  api_key: k\n  api_secret: s\n"},
		{"missing amadeus key", "llm:\n  base_url: https://x\n  model: m\namadeus:\n  api_secret: s\n"},
		{"cache enabled without address", minimalConfig + "cache:\n  enabled: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.content)
			_, err := LoadFromFile(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile_EnvOverridesEmptyCredentials(t *testing.T) {
	t.Setenv("AMADEUS_API_KEY", "env-key")
	t.Setenv("AMADEUS_API_SECRET", "env-secret")
	t.Setenv("LLM_API_KEY", "env-llm-key")

	path := writeConfigFile(t, `
llm:
  base_url: https://llm.example.com
  model: test-model
`)

	cfg, err := LoadFromFile(path)

	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Amadeus.APIKey)
	assert.Equal(t, "env-secret", cfg.Amadeus.APISecret)
	assert.Equal(t, "env-llm-key", cfg.LLM.APIKey)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, "30s", GetDuration(30000).String())
	assert.Equal(t, "0s", GetDuration(0).String())
}

func TestGetToolConfig(t *testing.T) {
	cfg := &Config{Tools: map[string]ToolConfig{
		"get_flights_data": {Enabled: true, Timeout: 15000},
		"disabled_tool":    {Enabled: false},
	}}

	t.Run("configured tool", func(t *testing.T) {
		tool := GetToolConfig(cfg, "get_flights_data")
		assert.True(t, tool.Enabled)
		assert.Equal(t, 15000, tool.Timeout)
	})

	t.Run("unknown tool falls back to defaults", func(t *testing.T) {
		tool := GetToolConfig(cfg, "unknown")
		assert.True(t, tool.Enabled)
		assert.Equal(t, 30000, tool.Timeout)
	})

	t.Run("enablement", func(t *testing.T) {
		assert.True(t, IsToolEnabled(cfg, "get_flights_data"))
		assert.False(t, IsToolEnabled(cfg, "disabled_tool"))
		assert.True(t, IsToolEnabled(cfg, "unknown"))
	})
}
