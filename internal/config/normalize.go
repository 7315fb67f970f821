package config

import (
	"strings"

	"cfgprobe/internal/generate"
	"cfgprobe/internal/sqlexec"
	"cfgprobe/internal/validate"
)

// Default settings filled in by Normalize.
const (
	DefaultAPIKeyEnv      = generate.EnvAPIKey
	DefaultTimeoutSeconds = 120
	DefaultParallel       = 1
)

// Default returns a normalized config with no file behind it.
func Default() Config {
	cfg := Config{Version: 1}
	Normalize(&cfg)
	return cfg
}

// Normalize trims values and fills defaults.
func Normalize(cfg *Config) {
	models := cfg.Models[:0:0]
	for _, model := range cfg.Models {
		if model = strings.TrimSpace(model); model != "" {
			models = append(models, model)
		}
	}
	cfg.Models = models
	if strings.TrimSpace(cfg.OutputDir) == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	p := &cfg.Provider
	p.BaseURL = strings.TrimRight(strings.TrimSpace(p.BaseURL), "/")
	if p.BaseURL == "" {
		p.BaseURL = generate.DefaultBaseURL
	}
	if strings.TrimSpace(p.APIKeyEnv) == "" {
		p.APIKeyEnv = DefaultAPIKeyEnv
	}
	p.DefaultModel = strings.TrimSpace(p.DefaultModel)
	defaults := generate.DefaultRetryPolicy()
	if p.MaxRetries == nil {
		retries := defaults.MaxRetries
		p.MaxRetries = &retries
	}
	if p.BackoffBaseMS == 0 {
		p.BackoffBaseMS = int(defaults.Base.Milliseconds())
	}
	if p.BackoffCapMS == 0 {
		p.BackoffCapMS = int(defaults.Cap.Milliseconds())
	}
	if p.TimeoutSeconds == 0 {
		p.TimeoutSeconds = DefaultTimeoutSeconds
	}

	if engine, err := sqlexec.ParseEngine(cfg.Database.Engine); err == nil {
		cfg.Database.Engine = string(engine)
	}
	if cfg.Database.QueryTimeoutSeconds == 0 {
		cfg.Database.QueryTimeoutSeconds = int(sqlexec.DefaultTimeout.Seconds())
	}
	if cfg.Validator.MaxInputBytes == 0 {
		cfg.Validator.MaxInputBytes = validate.DefaultMaxInputBytes
	}
	if cfg.Suite.Parallel == 0 {
		cfg.Suite.Parallel = DefaultParallel
	}
}
