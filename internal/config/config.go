// Package config loads the storyscript.yml project file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is looked up in the working directory when no path is given.
const FileName = "storyscript.yml"

type Config struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Output string `yaml:"output"`

	// nil means the default, which is on
	AutoReallocate *bool  `yaml:"auto_reallocate"`
	Minified       bool   `yaml:"minified"`
	LogLevel       string `yaml:"log_level"`
}

func Default() *Config {
	return &Config{LogLevel: "info"}
}

// Load reads path. A missing file is not an error when optional is set; the
// defaults are returned instead.
func Load(path string, optional bool) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses a config document. Unknown keys are rejected.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// AutoReallocation resolves the optional flag.
func (c *Config) AutoReallocation() bool {
	return c.AutoReallocate == nil || *c.AutoReallocate
}

// Level maps log_level to a slog level.
func (c *Config) Level() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log_level %q", c.LogLevel)
}
