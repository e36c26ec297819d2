// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like AMADEUS_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored if not present
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Load .env from multiple possible locations so the same config works from
// the repo root, cmd/agent and test/e2e.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills credentials from the environment when the YAML
// left them empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Amadeus.APIKey == "" {
		if val := os.Getenv("AMADEUS_API_KEY"); val != "" {
			cfg.Amadeus.APIKey = val
		}
	}
	if cfg.Amadeus.APISecret == "" {
		if val := os.Getenv("AMADEUS_API_SECRET"); val != "" {
			cfg.Amadeus.APISecret = val
		}
	}

	if cfg.LLM.APIKey == "" {
		if val := os.Getenv("LLM_API_KEY"); val != "" {
			cfg.LLM.APIKey = val
		}
	}
	if cfg.LLM.BaseURL == "" {
		if val := os.Getenv("LLM_BASE_URL"); val != "" {
			cfg.LLM.BaseURL = val
		}
	}

	if cfg.Cache.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Cache.Redis.Password = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 120000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}

	// Agent defaults
	if cfg.Agent.MaxSteps == 0 {
		cfg.Agent.MaxSteps = 6
	}
	if cfg.Agent.PromptsPath == "" {
		cfg.Agent.PromptsPath = "configs/prompts.yaml"
	}
	if cfg.Agent.RegistryPath == "" {
		cfg.Agent.RegistryPath = "configs/tools.json"
	}

	// LLM defaults
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 2096
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.5
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60000
	}
	if cfg.LLM.MaxRetries == 0 {
		cfg.LLM.MaxRetries = 3
	}

	// Amadeus defaults
	if cfg.Amadeus.BaseURL == "" {
		cfg.Amadeus.BaseURL = "https://test.api.amadeus.com"
	}
	if cfg.Amadeus.Timeout == 0 {
		cfg.Amadeus.Timeout = 10000
	}
	if cfg.Amadeus.MaxOffers == 0 {
		cfg.Amadeus.MaxOffers = 20
	}

	// Cache defaults
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 600000
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Tool defaults
	for key, tool := range cfg.Tools {
		if tool.Timeout == 0 {
			tool.Timeout = 30000
		}
		cfg.Tools[key] = tool
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.LLM.BaseURL == "" {
		return fmt.Errorf("llm.base_url is required")
	}
	if cfg.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}

	if cfg.Amadeus.APIKey == "" {
		return fmt.Errorf("amadeus.api_key is required")
	}
	if cfg.Amadeus.APISecret == "" {
		return fmt.Errorf("amadeus.api_secret is required")
	}

	if cfg.Cache.Enabled && cfg.Cache.Redis.Address == "" {
		return fmt.Errorf("cache.redis.address is required when cache is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetToolConfig retrieves tool-specific configuration with fallback to defaults
func GetToolConfig(cfg *Config, toolName string) ToolConfig {
	if tool, exists := cfg.Tools[toolName]; exists {
		return tool
	}

	return ToolConfig{
		Enabled: true,
		Timeout: 30000,
	}
}

// IsToolEnabled checks if a specific tool is enabled
func IsToolEnabled(cfg *Config, toolName string) bool {
	if tool, exists := cfg.Tools[toolName]; exists {
		return tool.Enabled
	}
	return true
}
