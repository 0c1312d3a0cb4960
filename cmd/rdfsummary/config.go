package main

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by --format.
var formats = []string{"dot", "json", "nquads", "jsonld", "mangle"}

// Curie map file formats accepted by --curie-format.
var curieFormats = []string{"lines", "yaml"}

// Config is the run configuration. It can be read from a YAML file and is
// then overridden by explicitly set flags.
type Config struct {
	CurieMap    string   `yaml:"curie_map"`
	CurieFormat string   `yaml:"curie_format"`
	Triples     []string `yaml:"triples"`
	Output      string   `yaml:"output"`
	Format      string   `yaml:"format"`
	Title       string   `yaml:"title"`
	DB          string   `yaml:"db"`
	Workers     int      `yaml:"workers"`
	CacheSize   int      `yaml:"cache_size"`
	LogMode     string   `yaml:"log_mode"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		CurieFormat: "lines",
		Output:      "-",
		Format:      "dot",
		Workers:     1,
		CacheSize:   1 << 16,
		LogMode:     "dev",
	}
}

// LoadConfig reads a YAML config file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for missing or unknown values.
func (c Config) Validate() error {
	var errs []error
	if len(c.Triples) == 0 {
		errs = append(errs, errors.New("at least one triple file is required"))
	}
	if !slices.Contains(formats, c.Format) {
		errs = append(errs, fmt.Errorf("unknown format %q (want one of %v)", c.Format, formats))
	}
	if !slices.Contains(curieFormats, c.CurieFormat) {
		errs = append(errs, fmt.Errorf("unknown curie map format %q (want one of %v)", c.CurieFormat, curieFormats))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("cache size must not be negative, got %d", c.CacheSize))
	}
	if slices.Contains(c.Triples, "-") && len(c.Triples) > 1 {
		errs = append(errs, errors.New("standard input cannot be combined with other triple files"))
	}
	return errors.Join(errs...)
}

// TitleSource is the name the graph title is derived from.
func (c Config) TitleSource() string {
	if c.Title != "" {
		return c.Title
	}
	if len(c.Triples) > 0 && c.Triples[0] != "-" {
		return c.Triples[0]
	}
	return "stdin.nt"
}
