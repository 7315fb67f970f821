package config

import (
	"fmt"
	"log/slog"
	"time"

	"cfgprobe/internal/generate"
	"cfgprobe/internal/ratelimit"
	"cfgprobe/internal/sqlexec"
	"cfgprobe/internal/validate"
)

// RetryPolicy converts the provider backoff settings.
func (c Config) RetryPolicy() generate.RetryPolicy {
	policy := generate.DefaultRetryPolicy()
	if c.Provider.MaxRetries != nil {
		policy.MaxRetries = *c.Provider.MaxRetries
	}
	if c.Provider.BackoffBaseMS > 0 {
		policy.Base = time.Duration(c.Provider.BackoffBaseMS) * time.Millisecond
	}
	if c.Provider.BackoffCapMS > 0 {
		policy.Cap = time.Duration(c.Provider.BackoffCapMS) * time.Millisecond
	}
	return policy
}

// RateLimits returns the provider request and token budgets.
func (c Config) RateLimits() ratelimit.Limits {
	return ratelimit.Limits{
		RequestsPerMinute: c.Provider.RequestsPerMinute,
		TokensPerMinute:   c.Provider.TokensPerMinute,
	}
}

// Model returns the model used when no --model or models list applies.
func (c Config) Model() string {
	if c.Provider.DefaultModel != "" {
		return c.Provider.DefaultModel
	}
	return generate.DefaultModel
}

// SuiteModels returns the configured suite models or the default model.
func (c Config) SuiteModels() []string {
	if len(c.Models) > 0 {
		return append([]string(nil), c.Models...)
	}
	return []string{c.Model()}
}

// NewClient builds the Responses API client. The key is read from the
// configured environment variable.
func (c Config) NewClient(getenv func(string) string, httpClient generate.HTTPDoer, logger *slog.Logger) (*generate.OpenAIClient, error) {
	apiKey := c.APIKey(getenv)
	if apiKey == "" {
		name := c.Provider.APIKeyEnv
		if name == "" {
			name = DefaultAPIKeyEnv
		}
		return nil, fmt.Errorf("%s is required", name)
	}
	client, err := generate.NewOpenAIClient(c.Model(), apiKey, c.Provider.BaseURL, httpClient)
	if err != nil {
		return nil, err
	}
	client.Retry = c.RetryPolicy()
	client.Timeout = time.Duration(c.Provider.TimeoutSeconds) * time.Second
	client.Logger = logger
	return client, nil
}

// Executor builds the SQL executor for the configured engine.
func (c Config) Executor() (sqlexec.Executor, error) {
	engine, err := sqlexec.ParseEngine(c.Database.Engine)
	if err != nil {
		return sqlexec.Executor{}, err
	}
	return sqlexec.Executor{
		Engine:  engine,
		Timeout: time.Duration(c.Database.QueryTimeoutSeconds) * time.Second,
	}, nil
}

// NewValidator builds a validator with the configured input limit.
func (c Config) NewValidator() *validate.Validator {
	return validate.New(validate.Options{MaxInputBytes: c.Validator.MaxInputBytes})
}
