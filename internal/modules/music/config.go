package music

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains the music module configuration.
type Config struct {
	LavalinkAddress   string        `env:"LAVALINK_ADDRESS,notEmpty"`
	LavalinkPassword  string        `env:"LAVALINK_PASSWORD,notEmpty"`
	ReconnectAttempts int           `env:"LAVALINK_RECONNECT_ATTEMPTS" envDefault:"3"`
	ReconnectDelay    time.Duration `env:"LAVALINK_RECONNECT_DELAY" envDefault:"5s"`
	SelfDeaf          bool          `env:"SELF_DEAF" envDefault:"true"`
}

// loadConfig parses the music module configuration from the environment.
func loadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse music config: %w", err)
	}
	return cfg, nil
}
