// Package config loads tool-level settings for Scribe. These are defaults
// for the CLI itself (preview port, access policy, conversion engine
// command), distinct from the per-project manifest handled by
// internal/project.
//
// Precedence, lowest to highest: built-in defaults, scribe.yaml, environment
// variables (optionally supplied via a .env file).
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable names recognized on top of the config file.
const (
	EnvEngine = "SCRIBE_ENGINE"
	EnvPort   = "SCRIBE_PORT"
	EnvAccess = "SCRIBE_ACCESS"
)

// Config is the tool-level configuration.
type Config struct {
	Preview PreviewConfig `yaml:"preview"`
	Engine  EngineConfig  `yaml:"engine"`
}

// PreviewConfig holds preview-server defaults, overridable per invocation.
type PreviewConfig struct {
	Port   int    `yaml:"port"`
	Access string `yaml:"access"` // private|public
}

// EngineConfig names the external document-conversion engine command.
type EngineConfig struct {
	Command string `yaml:"command"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Preview: PreviewConfig{Port: 8000, Access: "private"},
		Engine:  EngineConfig{Command: "scribe-engine"},
	}
}

// Load reads the configuration file at path, layering it over the defaults
// and applying environment overrides. A missing file is not an error — the
// defaults (plus environment) apply; a file that exists but fails to parse is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fall through to environment overrides.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// Best-effort .env load; absence is the common case.
	_ = godotenv.Load()
	cfg.applyEnv()

	if cfg.Preview.Access != "private" && cfg.Preview.Access != "public" {
		return nil, fmt.Errorf("config %s: preview access must be private or public, got %q", path, cfg.Preview.Access)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvEngine); v != "" {
		c.Engine.Command = v
	}
	if v := os.Getenv(EnvAccess); v != "" {
		c.Preview.Access = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			c.Preview.Port = port
		}
	}
}
