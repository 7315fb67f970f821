package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"cfgprobe/internal/generate"
)

// DotEnvFile is loaded from the working directory when present.
const DotEnvFile = ".env"

// LoadDotEnv loads dir/.env into the process environment without
// overriding variables that are already set. A missing file is not an
// error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, DotEnvFile)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides the provider model and base URL from the
// environment.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if model := strings.TrimSpace(getenv(generate.EnvModel)); model != "" {
		cfg.Provider.DefaultModel = model
	}
	if base := strings.TrimSpace(getenv(generate.EnvBaseURL)); base != "" {
		cfg.Provider.BaseURL = strings.TrimRight(base, "/")
	}
}

// APIKey reads the configured API key variable.
func (c Config) APIKey(getenv func(string) string) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	name := c.Provider.APIKeyEnv
	if name == "" {
		name = DefaultAPIKeyEnv
	}
	return strings.TrimSpace(getenv(name))
}
