// Package config loads the optional YAML file holding default CLI settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// File is the content of a config file. Zero values mean "not set".
type File struct {
	// Verbose is the default -v count.
	Verbose int `yaml:"verbose"`

	// Log lists TARGET:LEVEL directives; entries may be comma-separated.
	Log []string `yaml:"log,omitempty"`

	// LogTime prefixes log lines with the local time.
	LogTime bool `yaml:"log_time"`

	// Color is auto, always or never.
	Color string `yaml:"color,omitempty"`

	// Separator is written between the fields of a merged record.
	Separator string `yaml:"separator,omitempty"`

	// Format is text or json.
	Format string `yaml:"format,omitempty"`
}

// DefaultPath returns $XDG_CONFIG_HOME/col/config.yaml (or the platform
// equivalent). Returns "" if no config directory can be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "col", "config.yaml")
}

// Load reads the config file at path. If path is empty the default path is
// tried and a missing default file yields an empty config.
func Load(path string) (*File, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return &File{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates YAML config data. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	cfg := &File{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (f *File) Validate() error {
	if f.Verbose < 0 {
		return fmt.Errorf("verbose must not be negative, got %d", f.Verbose)
	}
	switch f.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color %q: must be one of auto, always, never", f.Color)
	}
	switch f.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid format %q: must be one of text, json", f.Format)
	}
	return nil
}
