// Package config handles gensig.toml project configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gensig/machine"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const Filename = "gensig.toml"

type Config struct {
	Limits Limits `toml:"limits"`

	// Verbosity is passed to commonlog; 0 only logs errors.
	Verbosity int `toml:"verbosity"`

	Color bool `toml:"color"`

	// Verify checks every built signature; Minimality reports redundant
	// requirements.
	Verify     bool `toml:"verify"`
	Minimality bool `toml:"minimality"`

	// Lib lists directories compiled before the input, as layers.
	Lib []string `toml:"lib"`

	// Dir is the directory containing the gensig.toml file (set at load time).
	Dir string `toml:"-"`
}

type Limits struct {
	MaxSteps int `toml:"max-steps"`
	MaxDepth int `toml:"max-depth"`
}

func Default() *Config {
	limits := machine.DefaultLimits()

	return &Config{
		Limits: Limits{
			MaxSteps: limits.MaxSteps,
			MaxDepth: limits.MaxDepth,
		},
		Color:      true,
		Verify:     true,
		Minimality: true,
	}
}

// Load parses a gensig.toml file from the given directory. Missing keys keep
// their defaults.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, Filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	config := Default()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	config.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	for i, lib := range config.Lib {
		if !filepath.IsAbs(lib) {
			config.Lib[i] = filepath.Join(config.Dir, lib)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return config, nil
}

// FindAndLoad walks up from startDir to find a gensig.toml file. Without
// one, it returns the default configuration.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, Filename)); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			config := Default()
			config.Dir = startDir
			return config, nil
		}

		dir = parent
	}
}

// LoadEnv reads a .env file from dir into the environment, so that
// GENSIG_* variables can be kept next to the sources. Variables already set
// take precedence.
func LoadEnv(dir string) error {
	err := godotenv.Load(filepath.Join(dir, ".env"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

func (config *Config) Validate() error {
	if config.Limits.MaxSteps <= 0 {
		return fmt.Errorf("limits.max-steps must be positive, got %d", config.Limits.MaxSteps)
	}

	if config.Limits.MaxDepth <= 0 {
		return fmt.Errorf("limits.max-depth must be positive, got %d", config.Limits.MaxDepth)
	}

	return nil
}

func (config *Config) MachineLimits() machine.Limits {
	return machine.Limits{
		MaxSteps: config.Limits.MaxSteps,
		MaxDepth: config.Limits.MaxDepth,
	}
}
