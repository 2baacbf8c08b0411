// Package config handles petal.toml runtime configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the runtime configuration file name.
const FileName = "petal.toml"

// Config represents a petal.toml runtime configuration.
type Config struct {
	Runtime Runtime `toml:"runtime"`
	Modules Modules `toml:"modules"`

	// Dir is the directory containing the petal.toml file (set at load time).
	Dir string `toml:"-"`
}

// Runtime contains core runtime settings.
type Runtime struct {
	// Verbosity is the log verbosity passed to the logging backend.
	Verbosity int `toml:"verbosity"`
}

// Modules toggles optional builtin modules.
type Modules struct {
	Re bool `toml:"re"`
}

// Default returns the configuration used when no petal.toml exists.
func Default() *Config {
	return &Config{
		Runtime: Runtime{Verbosity: 0},
		Modules: Modules{Re: true},
	}
}

// Load parses a petal.toml file from the given directory. A missing file
// is not an error; the defaults are returned.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			cfg.Dir = dir
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	cfg.Dir = dir
	return cfg, nil
}
