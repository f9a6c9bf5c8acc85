// Package config holds the launcher's own settings: which executables to
// supervise, the shutdown escalation budget, and the optional health and
// run-history endpoints. Simulation flags are not configured here; they
// pass through to the children verbatim.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default executable names for the two supervised roles.
const (
	DefaultServerExecutable = "sim-server"
	DefaultGUIExecutable    = "sim-gui"
)

// Default shutdown escalation budget.
const (
	DefaultGracefulTimeoutSec = 5.0
	DefaultPollIntervalMS     = 1
)

// ChildConfig describes one supervised executable.
type ChildConfig struct {
	// Executable is the image name resolved via PATH, or an absolute path.
	Executable string `yaml:"executable"`
}

// ShutdownConfig bounds the graceful-then-forceful escalation.
type ShutdownConfig struct {
	// GracefulTimeoutSec is the total time a child gets to exit after an
	// interrupt before it is forcefully killed.
	GracefulTimeoutSec float64 `yaml:"graceful_timeout_sec"`

	// PollIntervalMS is the sleep between liveness re-checks while waiting.
	PollIntervalMS int `yaml:"poll_interval_ms"`
}

// HealthConfig configures the optional HTTP health/metrics endpoint.
type HealthConfig struct {
	// Addr is the listen address (e.g. "127.0.0.1:9180"). Empty disables
	// the endpoint.
	Addr string `yaml:"addr"`
}

// HistoryConfig configures optional run-history persistence.
type HistoryConfig struct {
	// Path is the SQLite database file. Empty disables history.
	Path string `yaml:"path"`
}

// Config is the launcher configuration.
type Config struct {
	Server   ChildConfig    `yaml:"server"`
	GUI      ChildConfig    `yaml:"gui"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
	Health   HealthConfig   `yaml:"health"`
	History  HistoryConfig  `yaml:"history"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ChildConfig{Executable: DefaultServerExecutable},
		GUI:    ChildConfig{Executable: DefaultGUIExecutable},
		Shutdown: ShutdownConfig{
			GracefulTimeoutSec: DefaultGracefulTimeoutSec,
			PollIntervalMS:     DefaultPollIntervalMS,
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the supervisor cannot run with.
func (c *Config) Validate() error {
	if c.Server.Executable == "" {
		return fmt.Errorf("server executable must not be empty")
	}
	if c.GUI.Executable == "" {
		return fmt.Errorf("gui executable must not be empty")
	}
	if c.Shutdown.GracefulTimeoutSec <= 0 {
		return fmt.Errorf("shutdown graceful_timeout_sec must be positive, got %v", c.Shutdown.GracefulTimeoutSec)
	}
	if c.Shutdown.PollIntervalMS <= 0 {
		return fmt.Errorf("shutdown poll_interval_ms must be positive, got %d", c.Shutdown.PollIntervalMS)
	}
	return nil
}

// GracefulTimeout returns the escalation budget as a duration.
func (c *Config) GracefulTimeout() time.Duration {
	return time.Duration(c.Shutdown.GracefulTimeoutSec * float64(time.Second))
}

// PollInterval returns the liveness poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Shutdown.PollIntervalMS) * time.Millisecond
}
