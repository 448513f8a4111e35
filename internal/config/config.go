/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package config loads the optional YAML file holding scheduler defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ardikabs/autodark/internal/scheduler"
	"github.com/ardikabs/autodark/internal/settings"
	"github.com/ardikabs/autodark/internal/wellknown"
)

// Config represents the defaults file.
type Config struct {
	Defaults DefaultsConfig `yaml:"defaults"`
	Oracle   OracleConfig   `yaml:"oracle"`
}

// DefaultsConfig holds the values used for settings that are not stored.
type DefaultsConfig struct {
	// Mode is the policy kind name, e.g. "fixed-window" or "oracle".
	Mode string `yaml:"mode"`

	// Start and End are HH:MM.
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// OracleConfig holds the location used by the HTTP day/night oracle.
type OracleConfig struct {
	Endpoint  string  `yaml:"endpoint"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Mode:  scheduler.KindFixedWindow.String(),
			Start: wellknown.DefaultStartTime,
			End:   wellknown.DefaultEndTime,
		},
	}
}

// Load reads the configuration from path. Fields missing from the file keep their built-in value.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads the configuration from r.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if _, err := cfg.SettingsDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SettingsDefaults converts the defaults section into typed settings defaults.
func (c *Config) SettingsDefaults() (settings.Defaults, error) {
	mode, err := scheduler.ParseKind(c.Defaults.Mode)
	if err != nil {
		return settings.Defaults{}, fmt.Errorf("defaults.mode: %w", err)
	}
	start, err := scheduler.ParseTimeOfDay(c.Defaults.Start)
	if err != nil {
		return settings.Defaults{}, fmt.Errorf("defaults.start: %w", err)
	}
	end, err := scheduler.ParseTimeOfDay(c.Defaults.End)
	if err != nil {
		return settings.Defaults{}, fmt.Errorf("defaults.end: %w", err)
	}

	return settings.Defaults{
		Mode:   mode,
		Window: scheduler.Window{Start: start, End: end},
	}, nil
}
