// Package config loads job defaults from a TOML file so operators do
// not retype the client and unit settings for every run. Flags always
// override file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/pcbflow/thtgen/pkg/asmfile"
)

type Config struct {
	Client  string `toml:"client"`
	Units   string `toml:"units"` // "mm" or "inch"
	OutDir  string `toml:"out_dir"`
	Workers int    `toml:"workers"`
}

// Load reads the config file at path, or the default location when
// path is empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Units:  "mm",
		OutDir: ".",
	}

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".config", "thtgen", "config.toml")
	}

	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Factor returns the coordinate conversion factor for the configured
// units.
func (c *Config) Factor() float64 {
	if c.Units == "inch" {
		return asmfile.FactorInch
	}
	return asmfile.FactorMetric
}
