package config

// Package config loads the driver settings from a YAML file. Flags given on
// the command line override the file.

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	ds "github.com/reoring/datskema"
)

// Config holds the defaults of every subcommand.
type Config struct {
	Version ds.Version `yaml:"version"`
	// Raw marks input files as already decompressed.
	Raw         bool   `yaml:"raw,omitempty"`
	CacheDir    string `yaml:"cache_dir,omitempty"`
	NoCache     bool   `yaml:"no_cache,omitempty"`
	OutDir      string `yaml:"out_dir,omitempty"`
	Package     string `yaml:"package,omitempty"`
	Parallelism int    `yaml:"parallelism,omitempty"`
	// Language selects the issue message catalog ("en" or "ja").
	Language string `yaml:"language,omitempty"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Version:     ds.Version{Edition: "aoc"},
		OutDir:      "out",
		Package:     "gamedata",
		Parallelism: runtime.NumCPU(),
		Language:    "en",
	}
}

// Load reads the YAML file at path over Default. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over Default. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values a file may get wrong.
func (c Config) Validate() error {
	switch {
	case c.Version.Edition == "":
		return errors.New("config: version.edition is required")
	case c.Parallelism < 1:
		return fmt.Errorf("config: parallelism must be at least 1, got %d", c.Parallelism)
	case c.Language != "en" && c.Language != "ja":
		return fmt.Errorf("config: unsupported language %q", c.Language)
	case c.Package == "":
		return errors.New("config: package is required")
	}
	return nil
}
