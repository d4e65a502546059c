// Package config loads the optional husk configuration file, which
// controls the completion provider order and extra keyword candidates.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/husklang/husk/complete"
)

// Config is the on-disk configuration.
type Config struct {
	// Completers lists provider names in consultation order. Known
	// names: keyword, name, path.
	Completers []string `yaml:"completers"`
	// ExtraKeywords are additional words the keyword provider offers.
	ExtraKeywords []string `yaml:"extra_keywords"`
	// Debug is the parser trace verbosity.
	Debug int `yaml:"debug"`
}

// Default is the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Completers: []string{"keyword", "name", "path"},
	}
}

// Load reads a YAML configuration file. A missing file yields the
// default configuration; a present but malformed file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cfg.Completers) == 0 {
		cfg.Completers = Default().Completers
	}
	return cfg, nil
}

// Registry builds the completion registry the configuration describes.
func (c *Config) Registry() (*complete.Registry, error) {
	reg := complete.NewRegistry()
	for _, name := range c.Completers {
		switch name {
		case "keyword":
			reg.Add(name, complete.Keywords(c.ExtraKeywords...))
		case "name":
			reg.Add(name, complete.Names())
		case "path":
			reg.Add(name, complete.Paths())
		default:
			return nil, fmt.Errorf("config: unknown completer %q", name)
		}
	}
	return reg, nil
}
