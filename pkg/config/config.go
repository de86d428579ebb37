// Package config loads logicflow settings from a YAML file with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dshills/logicflow/pkg/logging"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings
const (
	EnvEvaluatorURL     = "LOGICFLOW_EVALUATOR_URL"
	EnvEvaluatorTimeout = "LOGICFLOW_EVALUATOR_TIMEOUT"
	EnvListen           = "LOGICFLOW_LISTEN"
	EnvLogLevel         = "LOGICFLOW_LOG_LEVEL"
)

// Defaults
const (
	DefaultEvaluatorURL = "http://localhost:8000/evaluate"
	DefaultTimeout      = 30 * time.Second
	DefaultListen       = ":8000"
)

// Config is the full configuration
type Config struct {
	Evaluator EvaluatorConfig `yaml:"evaluator"`
	Server    ServerConfig    `yaml:"server"`
	LogLevel  string          `yaml:"log_level"`
}

// EvaluatorConfig locates the evaluation service
type EvaluatorConfig struct {
	URL     string            `yaml:"url"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// ServerConfig configures the reference evaluator
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Evaluator: EvaluatorConfig{
			URL:     DefaultEvaluatorURL,
			Timeout: DefaultTimeout,
			Headers: map[string]string{},
		},
		Server:   ServerConfig{Listen: DefaultListen},
		LogLevel: logging.LogLevelInfo.String(),
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvEvaluatorURL); v != "" {
		c.Evaluator.URL = v
	}
	if v := os.Getenv(EnvEvaluatorTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvEvaluatorTimeout, err)
		}
		c.Evaluator.Timeout = d
	}
	if v := os.Getenv(EnvListen); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate rejects settings the client cannot run with
func (c *Config) Validate() error {
	if c.Evaluator.URL == "" {
		return errors.New("evaluator.url cannot be empty")
	}
	if c.Evaluator.Timeout <= 0 {
		return fmt.Errorf("evaluator.timeout must be positive, got %s", c.Evaluator.Timeout)
	}
	if c.Server.Listen == "" {
		return errors.New("server.listen cannot be empty")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Level returns the parsed log level
func (c *Config) Level() logging.LogLevel {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return logging.LogLevelInfo
	}
	return level
}
