// Package config holds the settings shared by the cpm commands. Values come
// from defaults, an optional YAML file, and finally command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the settings for scheduling and rendering.
type Config struct {
	MaxParallel         int    `yaml:"max_parallel"`
	Deadline            *int   `yaml:"deadline,omitempty"`
	Format              string `yaml:"format"` // viz output: ascii or dot
	NoColor             bool   `yaml:"no_color"`
	JSON                bool   `yaml:"json"`
	LogLevel            string `yaml:"log_level"`
	LogFormat           string `yaml:"log_format"`
	FailOnNegativeFloat bool   `yaml:"fail_on_negative_float"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MaxParallel: 4,
		Format:      "ascii",
		LogLevel:    "warn",
		LogFormat:   "text",
	}
}

// Load reads a YAML config file on top of the defaults. Fields the file
// leaves out keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every field holds a supported value.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxParallel < 0 {
		errs = append(errs, fmt.Errorf("max_parallel must be >= 0, got %d", c.MaxParallel))
	}
	if c.Deadline != nil && *c.Deadline < 0 {
		errs = append(errs, fmt.Errorf("deadline must be >= 0, got %d", *c.Deadline))
	}
	switch c.Format {
	case "ascii", "dot":
	default:
		errs = append(errs, fmt.Errorf("format must be 'ascii' or 'dot', got %q", c.Format))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be 'text' or 'json', got %q", c.LogFormat))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel returns the configured log level, falling back to warn.
func (c *Config) SlogLevel() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return level
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelWarn, fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", s)
}
