// Package config loads server settings from the environment.
//
// All variables use the CHESSROOM_ prefix (CHESSROOM_PORT, CHESSROOM_HOST,
// ...). main loads a .env file first, so local overrides can live next to
// the binary during development.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "chessroom"

// Config holds everything the server needs to start.
type Config struct {
	Host  string `envconfig:"HOST" default:"localhost"`
	Port  int    `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// Rooms idle longer than RoomTTL are reaped every ReapInterval.
	// Orderly disconnects already reclaim rooms; the reaper only covers
	// connections that vanished without one.
	RoomTTL      time.Duration `envconfig:"ROOM_TTL" default:"24h"`
	ReapInterval time.Duration `envconfig:"REAP_INTERVAL" default:"1h"`

	NgrokEnabled   bool   `envconfig:"NGROK_ENABLED" default:"false"`
	NgrokAuthToken string `envconfig:"NGROK_AUTHTOKEN"`
	NgrokDomain    string `envconfig:"NGROK_DOMAIN"`
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return &cfg, nil
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
