package config

import (
	"errors"
	"fmt"
	"os"
)

// Load reads, parses, normalizes and validates a config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, err
	}
	Normalize(&cfg)
	if err := Validate(&cfg, BaseDir(path)); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Resolve loads the config at path. With no path it looks for cfgprobe.yml
// from the working directory upward and falls back to Default when none
// exists. The returned path is empty in the fallback case.
func Resolve(path string) (Config, string, error) {
	if path == "" {
		found, err := FindConfigPath("")
		if errors.Is(err, ErrNoConfig) {
			return Default(), "", nil
		}
		if err != nil {
			return Config{}, "", err
		}
		path = found
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, path, err
	}
	return cfg, path, nil
}
