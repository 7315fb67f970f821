package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"cfgprobe/internal/sqlexec"
)

// MaxParallel bounds suite.parallel.
const MaxParallel = 64

// Issue is one validation problem, keyed by the YAML path of the field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders one issue per line.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, issue.Field+": "+issue.Message)
	}
	return strings.Join(lines, "\n")
}

type issueAdder func(field, message string)

type issueCollector struct {
	issues []Issue
}

func (c *issueCollector) add(field, message string) {
	c.issues = append(c.issues, Issue{Field: field, Message: message})
}

func (c *issueCollector) result() error {
	if len(c.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: c.issues}
}

// Validate checks a normalized config and the files it references.
func Validate(cfg *Config, baseDir string) error {
	collector := &issueCollector{}

	if cfg.Version == 0 {
		collector.add("version", "is required")
	} else if cfg.Version != 1 {
		collector.add("version", fmt.Sprintf("unsupported version %d", cfg.Version))
	}

	seen := map[string]struct{}{}
	for i, model := range cfg.Models {
		if _, dup := seen[model]; dup {
			collector.add(fmt.Sprintf("models[%d]", i), fmt.Sprintf("duplicate model %q", model))
		}
		seen[model] = struct{}{}
	}

	validateProvider(cfg.Provider, collector.add)

	if _, err := sqlexec.ParseEngine(cfg.Database.Engine); err != nil {
		collector.add("database.engine", err.Error())
	}
	if cfg.Database.QueryTimeoutSeconds < 0 {
		collector.add("database.query_timeout_seconds", "must be >= 0")
	}
	if cfg.Validator.MaxInputBytes < 0 {
		collector.add("validator.max_input_bytes", "must be >= 0")
	}
	if cfg.Suite.Parallel < 1 || cfg.Suite.Parallel > MaxParallel {
		collector.add("suite.parallel", fmt.Sprintf("must be between 1 and %d", MaxParallel))
	}

	if baseDir == "" {
		baseDir = "."
	}
	if cfg.CasesFile != "" {
		path := ResolvePath(baseDir, cfg.CasesFile)
		info, err := os.Stat(path)
		switch {
		case err != nil:
			collector.add("cases_file", fmt.Sprintf("cannot read %q: %v", cfg.CasesFile, err))
		case info.IsDir():
			collector.add("cases_file", fmt.Sprintf("%q is a directory", cfg.CasesFile))
		}
	}

	return collector.result()
}

func validateProvider(p ProviderConfig, add issueAdder) {
	if parsed, err := url.Parse(p.BaseURL); err != nil || parsed.Host == "" ||
		(parsed.Scheme != "http" && parsed.Scheme != "https") {
		add("provider.base_url", fmt.Sprintf("invalid URL %q", p.BaseURL))
	}
	if strings.ContainsAny(p.APIKeyEnv, " =\t") {
		add("provider.api_key_env", fmt.Sprintf("invalid variable name %q", p.APIKeyEnv))
	}
	if p.MaxRetries != nil && *p.MaxRetries < 0 {
		add("provider.max_retries", "must be >= 0")
	}
	if p.BackoffBaseMS < 0 {
		add("provider.backoff_base_ms", "must be >= 0")
	}
	if p.BackoffCapMS < 0 {
		add("provider.backoff_cap_ms", "must be >= 0")
	}
	if p.BackoffBaseMS > 0 && p.BackoffCapMS > 0 && p.BackoffBaseMS > p.BackoffCapMS {
		add("provider.backoff_cap_ms", "must be >= backoff_base_ms")
	}
	if p.TimeoutSeconds < 0 {
		add("provider.timeout_seconds", "must be >= 0")
	}
	if p.RequestsPerMinute < 0 {
		add("provider.requests_per_minute", "must be >= 0")
	}
	if p.TokensPerMinute < 0 {
		add("provider.tokens_per_minute", "must be >= 0")
	}
}
