package config

import (
	"fmt"

	"github.com/kbukum/httpservice/logger"
)

// TelemetryConfig enables OTLP export of traces and metrics.
type TelemetryConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// AppConfig holds the process-level settings shared by every binary.
// Binaries embed it in their own config structs:
//
//	type fileConfig struct {
//	    config.AppConfig `yaml:",inline" mapstructure:",squash"`
//	    Service service.Config `yaml:"service" mapstructure:"service"`
//	}
type AppConfig struct {
	Name        string          `yaml:"name" mapstructure:"name"`
	Environment string          `yaml:"environment" mapstructure:"environment"`
	Logging     logger.Config   `yaml:"logging" mapstructure:"logging"`
	Telemetry   TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults applies default values to the base configuration.
func (c *AppConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = "localhost:4318"
	}
	if c.Telemetry.SampleRate == 0 {
		c.Telemetry.SampleRate = 1.0
	}
}

// Validate validates the base configuration fields.
func (c *AppConfig) Validate() error {
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", validEnvs, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("config.telemetry.sample_rate must be between 0 and 1 (got: %v)", c.Telemetry.SampleRate)
	}
	return nil
}
