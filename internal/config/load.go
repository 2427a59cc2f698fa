// internal/config/load.go
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at path and overlays CANBRIDGE_* environment
// variables. The result still has to go through Validate and Normalize.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := Parse(b)
	if err != nil {
		return nil, err
	}

	if err := ApplyEnv(cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return cfg, nil
}

// Parse decodes a config document. Unknown keys are rejected.
func Parse(b []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config decode: %w", err)
	}
	return &cfg, nil
}

// envOverrides are the knobs a supervisor may flip without editing the file.
type envOverrides struct {
	Schema     string `env:"CANBRIDGE_SCHEMA"`
	Bus        string `env:"CANBRIDGE_BUS"`
	IntervalMs int    `env:"CANBRIDGE_INTERVAL_MS" envDefault:"-1"` // -1 => unset
	LogLevel   string `env:"CANBRIDGE_LOG_LEVEL"`
	LogFile    string `env:"CANBRIDGE_LOG_FILE"`
}

// ApplyEnv overlays set environment variables onto cfg.
// A nil environ reads the process environment.
func ApplyEnv(cfg *Config, environ map[string]string) error {
	var o envOverrides
	if err := env.ParseWithOptions(&o, env.Options{Environment: environ}); err != nil {
		return err
	}

	b := &cfg.Bridge
	if o.Schema != "" {
		b.Schema = o.Schema
	}
	if o.Bus != "" {
		b.Bus = o.Bus
	}
	if o.IntervalMs >= 0 {
		b.IntervalMs = o.IntervalMs
	}
	if o.LogLevel != "" {
		b.Log.Level = o.LogLevel
	}
	if o.LogFile != "" {
		b.Log.File = o.LogFile
	}
	return nil
}
