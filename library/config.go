package library

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the settings the CLI reads before opening a library.
type Config struct {
	// Name is the library's display name.
	Name string `yaml:"name"`
	// DataDir is where the JSON documents and history log live.
	DataDir string `yaml:"data_dir"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Name:     "Community Library",
		DataDir:  "./data",
		LogLevel: "info",
	}
}

// LoadConfig reads a YAML config file. An absent file is not an error;
// it yields the defaults, same as an absent data document yields an
// empty collection.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Name == "" {
		cfg.Name = DefaultConfig().Name
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultConfig().DataDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultConfig().LogLevel
	}
	return cfg, nil
}
