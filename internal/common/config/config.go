// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig             `mapstructure:"app"`
	Server  ServerConfig          `mapstructure:"server"`
	Agent   AgentConfig           `mapstructure:"agent"`
	LLM     LLMConfig             `mapstructure:"llm"`
	Amadeus AmadeusConfig         `mapstructure:"amadeus"`
	Cache   CacheConfig           `mapstructure:"cache"`
	Tools   map[string]ToolConfig `mapstructure:"tools"`
	Logging LoggingConfig         `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds settings for the chat HTTP server.
type ServerConfig struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	ReadTimeout     int      `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AgentConfig holds settings for the agent loop.
type AgentConfig struct {
	MaxSteps     int    `mapstructure:"max_steps"`
	PromptsPath  string `mapstructure:"prompts_path"`
	RegistryPath string `mapstructure:"registry_path"`
}

// LLMConfig holds settings for the chat-completion model endpoint.
type LLMConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	MaxRetries  int     `mapstructure:"max_retries"`
}

// AmadeusConfig holds settings for the flight-offer search API.
type AmadeusConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	Timeout   int    `mapstructure:"timeout"` // milliseconds
	MaxOffers int    `mapstructure:"max_offers"`
}

// CacheConfig holds settings for the flight-offer cache.
type CacheConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	Redis   RedisConfig `mapstructure:"redis"`
	TTL     int         `mapstructure:"ttl"` // milliseconds
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ToolConfig holds the core settings applicable to every tool.
type ToolConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Timeout int  `mapstructure:"timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
