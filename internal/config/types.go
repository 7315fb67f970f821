package config

// Config is the optional cfgprobe.yml document.
type Config struct {
	Version   int             `yaml:"version" json:"version"`
	Models    []string        `yaml:"models" json:"models,omitempty"`
	OutputDir string          `yaml:"output_dir" json:"output_dir,omitempty"`
	Provider  ProviderConfig  `yaml:"provider" json:"provider"`
	Database  DatabaseConfig  `yaml:"database" json:"database"`
	Validator ValidatorConfig `yaml:"validator" json:"validator"`
	Suite     SuiteConfig     `yaml:"suite" json:"suite"`
	CasesFile string          `yaml:"cases_file" json:"cases_file,omitempty"`
}

// ProviderConfig configures the Responses API client.
type ProviderConfig struct {
	BaseURL        string `yaml:"base_url" json:"base_url,omitempty"`
	APIKeyEnv      string `yaml:"api_key_env" json:"api_key_env,omitempty"`
	DefaultModel   string `yaml:"default_model" json:"default_model,omitempty"`
	MaxRetries     *int   `yaml:"max_retries" json:"max_retries,omitempty"`
	BackoffBaseMS  int    `yaml:"backoff_base_ms" json:"backoff_base_ms,omitempty"`
	BackoffCapMS   int    `yaml:"backoff_cap_ms" json:"backoff_cap_ms,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds,omitempty"`
	// Per-minute budgets shared by every generation call. Zero is unlimited.
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute,omitempty"`
	TokensPerMinute   int `yaml:"tokens_per_minute" json:"tokens_per_minute,omitempty"`
}

// DatabaseConfig selects the embedded SQL engine.
type DatabaseConfig struct {
	Engine              string `yaml:"engine" json:"engine,omitempty"`
	QueryTimeoutSeconds int    `yaml:"query_timeout_seconds" json:"query_timeout_seconds,omitempty"`
}

type ValidatorConfig struct {
	MaxInputBytes int `yaml:"max_input_bytes" json:"max_input_bytes,omitempty"`
}

type SuiteConfig struct {
	Parallel int `yaml:"parallel" json:"parallel,omitempty"`
}
