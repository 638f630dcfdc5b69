// Package config assembles runtime settings from defaults, an optional YAML
// file, and environment variables, in that order of increasing precedence.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/guardline/incident-agent/internal/pipeline"
	"github.com/guardline/incident-agent/internal/store"
)

// Config holds every tunable of the incident agent.
type Config struct {
	// Model settings. APIKey may stay empty here; the AI client falls back
	// to ANTHROPIC_API_KEY and fails construction if both are missing.
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`

	// Loop control.
	Threshold     float64 `yaml:"threshold"`
	MaxIterations int     `yaml:"max_iterations"`

	// Storage.
	DBPath string `yaml:"db_path"`

	// Alert delivery.
	SMTPHost       string `yaml:"smtp_host"`
	SMTPPort       int    `yaml:"smtp_port"`
	SMTPUsername   string `yaml:"smtp_username"`
	SMTPPassword   string `yaml:"smtp_password"`
	AlertSender    string `yaml:"alert_sender"`
	AlertRecipient string `yaml:"alert_recipient"`
}

// DefaultConfig returns the baseline settings before file and environment
// overrides.
func DefaultConfig() Config {
	return Config{
		Threshold:     pipeline.DefaultThreshold,
		MaxIterations: pipeline.DefaultMaxIterations,
		DBPath:        store.DefaultPath,
		SMTPPort:      587,
	}
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (skipped when path is empty and ignored when the default location is
// absent), then environment variables.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if path == "" {
		path = ".incident-agent/config.yaml"
	}
	if err := cfg.loadFile(path, explicit); err != nil {
		return cfg, err
	}
	if err := cfg.loadEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Environment variables:
//   - ANTHROPIC_API_KEY: model API key
//   - INCIDENT_MODEL: model name override
//   - INCIDENT_THRESHOLD: quality threshold in [0, 1] (default: 0.75)
//   - INCIDENT_MAX_ITERATIONS: translation loop budget (default: 5)
//   - INCIDENT_DB_PATH: SQLite database path
//   - INCIDENT_SMTP_HOST / INCIDENT_SMTP_PORT: alert mail endpoint
//   - INCIDENT_SMTP_USERNAME / INCIDENT_SMTP_PASSWORD: SMTP credentials
//   - INCIDENT_ALERT_SENDER / INCIDENT_ALERT_RECIPIENT: alert addressing
func (c *Config) loadEnv() error {
	parseEnvString("ANTHROPIC_API_KEY", &c.APIKey)
	parseEnvString("INCIDENT_MODEL", &c.Model)
	if err := parseEnvFloat("INCIDENT_THRESHOLD", &c.Threshold); err != nil {
		return err
	}
	if err := parseEnvInt("INCIDENT_MAX_ITERATIONS", &c.MaxIterations); err != nil {
		return err
	}
	parseEnvString("INCIDENT_DB_PATH", &c.DBPath)
	parseEnvString("INCIDENT_SMTP_HOST", &c.SMTPHost)
	if err := parseEnvInt("INCIDENT_SMTP_PORT", &c.SMTPPort); err != nil {
		return err
	}
	parseEnvString("INCIDENT_SMTP_USERNAME", &c.SMTPUsername)
	parseEnvString("INCIDENT_SMTP_PASSWORD", &c.SMTPPassword)
	parseEnvString("INCIDENT_ALERT_SENDER", &c.AlertSender)
	parseEnvString("INCIDENT_ALERT_RECIPIENT", &c.AlertRecipient)
	return nil
}

// Validate checks if the configuration has valid values.
func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be between 0 and 1 (got %g)", c.Threshold)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1 (got %d)", c.MaxIterations)
	}
	if c.SMTPPort < 1 || c.SMTPPort > 65535 {
		return fmt.Errorf("smtp_port must be a valid port (got %d)", c.SMTPPort)
	}
	return nil
}

func parseEnvString(key string, target *string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func parseEnvInt(key string, target *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %q", key, v)
	}
	*target = parsed
	return nil
}

func parseEnvFloat(key string, target *float64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %q", key, v)
	}
	*target = parsed
	return nil
}
