package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all agriq configuration.
type Config struct {
	// Data sources
	Data DataConfig `yaml:"data"`

	// Entity resolution
	Resolver ResolverConfig `yaml:"resolver"`

	// Answer engine tuning
	Engine EngineConfig `yaml:"engine"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig names the raw dataset files.
type DataConfig struct {
	RainfallGridPath string `yaml:"rainfall_grid_path"` // decoded grid JSON
	CropTablePath    string `yaml:"crop_table_path"`    // production CSV
}

// ResolverConfig tunes fuzzy entity matching.
type ResolverConfig struct {
	// Minimum similarity a fuzzy match must reach; 0 keeps the default.
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
}

// EngineConfig tunes answer computation.
type EngineConfig struct {
	// Default ranking size for "top crops" questions; 0 keeps the default.
	DefaultTopN int `yaml:"default_top_n"`

	// Slope-to-mean fraction under which a trend is called stable;
	// 0 keeps the default of 0.005.
	TrendTolerance float64 `yaml:"trend_tolerance"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			RainfallGridPath: "data/rainfall_grid.json",
			CropTablePath:    "data/crop_production.csv",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; a malformed one is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot honor.
func (c *Config) Validate() error {
	if t := c.Resolver.FuzzyThreshold; t < 0 || t > 1 {
		return fmt.Errorf("resolver.fuzzy_threshold must be within [0, 1], got %v", t)
	}
	if c.Engine.DefaultTopN < 0 {
		return fmt.Errorf("engine.default_top_n must not be negative, got %d", c.Engine.DefaultTopN)
	}
	if t := c.Engine.TrendTolerance; t < 0 || t >= 1 {
		return fmt.Errorf("engine.trend_tolerance must be within [0, 1), got %v", t)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
