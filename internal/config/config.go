package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the server and extraction pipeline settings.
type Config struct {
	Port           string  `yaml:"port"`
	Provider       string  `yaml:"provider"`
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"request_timeout_seconds"`
	MaxUploadMB    int     `yaml:"max_upload_mb"`
	GridColumns    int     `yaml:"grid_columns"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Port:           "8888",
		Provider:       "groq",
		Model:          "meta-llama/llama-4-maverick-17b-128e-instruct",
		Temperature:    0.1,
		TimeoutSeconds: 60,
		MaxUploadMB:    10,
		GridColumns:    4,
	}
}

// Load reads a YAML config file and fills unset fields with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Port == "" {
		c.Port = def.Port
	}
	if c.Provider == "" {
		c.Provider = def.Provider
	}
	if c.Model == "" {
		c.Model = def.Model
	}
	if c.Temperature == 0 {
		c.Temperature = def.Temperature
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = def.TimeoutSeconds
	}
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = def.MaxUploadMB
	}
	if c.GridColumns <= 0 {
		c.GridColumns = def.GridColumns
	}
}

// Timeout returns the per-image model call timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MaxUploadBytes returns the per-file upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}
