// internal/tools/flightsearch/config.go
package flightsearch

import (
	"time"

	"flight-concierge/internal/common/config"
)

type Config struct {
	Timeout         time.Duration
	CacheTTL        time.Duration
	MaxOffers       int
	DefaultCurrency string
}

func LoadConfig(cfg *config.Config) *Config {
	tool := config.GetToolConfig(cfg, ToolName)

	c := &Config{
		Timeout:         config.GetDuration(tool.Timeout),
		CacheTTL:        config.GetDuration(cfg.Cache.TTL),
		MaxOffers:       cfg.Amadeus.MaxOffers,
		DefaultCurrency: "USD",
	}

	if c.MaxOffers <= 0 {
		c.MaxOffers = 20
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}

	return c
}
