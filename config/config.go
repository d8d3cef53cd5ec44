package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	env "github.com/caarlos0/env/v11"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - database.go: Postgres catalog and Redis state
//   - http.go: HTTP server configuration
//   - services.go: Service mode and worker pool configuration
//   - generation.go, images.go, storage.go: pipeline collaborators
//   - limits.go: request limits, retention and deck layout thresholds
//   - observability.go: logging, metrics, tracing and failure notices
type AppConfig struct {
	// IsDev relaxes storage requirements by defaulting to the local publisher.
	IsDev bool `env:"DEV" envDefault:"false"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Service mode configuration
	Services string `env:"SERVICES" envDefault:"http,worker"`
	Worker   WorkerConfig

	Generation GenerationConfig
	Images     ImagesConfig
	Storage    StorageConfig
	Limits     LimitsConfig
	Retention  RetentionConfig
	Assembly   AssemblyConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Load parses the environment into an AppConfig and sanitises it.
func Load() (AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	cfg.Sanitize()
	return cfg, nil
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.detectDevMode()
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	c.HTTP.Sanitize()
	c.Worker.Sanitize()
	c.Generation.Sanitize()
	c.Images.Sanitize()
	c.Storage.Sanitize(c.IsDev)
	c.Limits.Sanitize()
	c.Retention.Sanitize()
	c.Assembly.Sanitize()
	c.Observability.Sanitize()
}

// Validate reports configuration that cannot run the enabled services.
func (c *AppConfig) Validate() error {
	services, err := c.GetEnabledServices()
	if err != nil {
		return err
	}
	var errs []error
	if services[ServiceModeWorker] || services[ServiceModeHTTP] {
		if err := c.Storage.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeHTTP]
}

// IsWorkerEnabled returns true if the generation worker pool is enabled.
func (c *AppConfig) IsWorkerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeWorker]
}
