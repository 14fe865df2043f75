package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Capture provider: simulated or rekognition
	CaptureProvider string `envconfig:"CAPTURE_PROVIDER" default:"simulated"`
	AWSRegion       string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Simulated providers
	CaptureSeed    string `envconfig:"CAPTURE_SEED" default:"checkpoint-dev"`
	DevicePlatform string `envconfig:"DEVICE_PLATFORM" default:"simulator"`

	// Matching
	MatchThreshold float64 `envconfig:"MATCH_THRESHOLD" default:"0.85"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
