// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings. Local development may provide them via
// a .env file loaded in main before parsing.
type Config struct {
	Port        string `env:"APP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Secret used to verify bearer tokens. Token issuance happens outside
	// this service.
	JWTSecret string `env:"JWT_SECRET,required"`

	// Optional booking-created stream. Disabled by default so the service
	// runs without a broker.
	KafkaEnabled  bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	KafkaClientID string   `env:"KAFKA_CLIENT_ID" envDefault:"ticketing-api"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
