package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"cfgprobe/internal/generate"
	"cfgprobe/internal/sqlexec"
	"cfgprobe/internal/trial"
	"cfgprobe/internal/validate"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func issueFields(t *testing.T, err error) []string {
	t.Helper()
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T (%v)", err, err)
	}
	fields := make([]string, 0, len(validationErr.Issues))
	for _, issue := range validationErr.Issues {
		fields = append(fields, issue.Field)
	}
	return fields
}

// TestParseConfigValid verifies valid config parsing succeeds.
func TestParseConfigValid(t *testing.T) {
	cfg, err := ParseConfig([]byte(`version: 1
models: [gpt-5, gpt-5-mini]
output_dir: out
provider:
  base_url: http://localhost:8080/v1/
  max_retries: 0
  backoff_base_ms: 100
database:
  engine: sqlite
suite:
  parallel: 4
`))
	if err != nil {
		t.Fatalf("expected parse to succeed, got %v", err)
	}
	if len(cfg.Models) != 2 || cfg.Suite.Parallel != 4 || cfg.Database.Engine != "sqlite" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Provider.MaxRetries == nil || *cfg.Provider.MaxRetries != 0 {
		t.Fatalf("expected explicit zero retries, got %v", cfg.Provider.MaxRetries)
	}
}

// TestParseConfigUnknownField verifies unknown fields are rejected.
func TestParseConfigUnknownField(t *testing.T) {
	for _, data := range []string{
		"version: 1\nunknown: true\n",
		"version: 1\nprovider:\n  api_key: secret\n",
	} {
		if _, err := ParseConfig([]byte(data)); err == nil {
			t.Fatalf("expected parse error for %q", data)
		}
	}
}

// TestParseConfigRejectsMultipleDocs verifies multiple YAML docs are rejected.
func TestParseConfigRejectsMultipleDocs(t *testing.T) {
	if _, err := ParseConfig([]byte("version: 1\n---\nversion: 1\n")); err == nil {
		t.Fatalf("expected parse error for multiple documents")
	}
}

// TestParseConfigSchemaTypes verifies the embedded schema checks value types.
func TestParseConfigSchemaTypes(t *testing.T) {
	for _, data := range []string{
		"version: 1\nsuite:\n  parallel: four\n",
		"version: 2\n",
		"version: 1\ndatabase:\n  engine: postgres\n",
		"version: 1\nmodels: gpt-5\n",
	} {
		_, err := ParseConfig([]byte(data))
		if err == nil || !strings.Contains(err.Error(), "config schema") {
			t.Fatalf("expected schema error for %q, got %v", data, err)
		}
	}
}

// TestParseConfigSchemaAcceptsNumbers verifies integer fields pass the schema check.
func TestParseConfigSchemaAcceptsNumbers(t *testing.T) {
	data := "version: 1\nsuite:\n  parallel: 4\nprovider:\n  max_retries: 2\n  tokens_per_minute: 90000\n"
	cfg, err := ParseConfig([]byte(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Suite.Parallel != 4 || cfg.Provider.TokensPerMinute != 90000 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

// TestDefaultConfig verifies the defaults filled by Normalize.
func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.OutputDir != DefaultOutputDir || cfg.Suite.Parallel != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Provider.BaseURL != generate.DefaultBaseURL || cfg.Provider.APIKeyEnv != generate.EnvAPIKey {
		t.Fatalf("unexpected provider defaults: %+v", cfg.Provider)
	}
	if cfg.Database.Engine != string(sqlexec.EngineDuckDB) || cfg.Validator.MaxInputBytes != validate.DefaultMaxInputBytes {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if diff := cmp.Diff(generate.DefaultRetryPolicy(), cfg.RetryPolicy()); diff != "" {
		t.Fatalf("retry policy mismatch (-want +got):\n%s", diff)
	}
	if err := Validate(&cfg, "."); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if got := cfg.SuiteModels(); len(got) != 1 || got[0] != generate.DefaultModel {
		t.Fatalf("unexpected suite models: %v", got)
	}
}

// TestNormalizeKeepsExplicitValues verifies zero retries and trimming.
func TestNormalizeKeepsExplicitValues(t *testing.T) {
	zero := 0
	cfg := Config{
		Version:  1,
		Models:   []string{" a ", "", "b"},
		Provider: ProviderConfig{BaseURL: "http://proxy/v1/", MaxRetries: &zero, BackoffBaseMS: 10, BackoffCapMS: 40},
		Database: DatabaseConfig{Engine: "SQLite3"},
	}
	Normalize(&cfg)
	if diff := cmp.Diff([]string{"a", "b"}, cfg.Models); diff != "" {
		t.Fatalf("models mismatch (-want +got):\n%s", diff)
	}
	if cfg.Provider.BaseURL != "http://proxy/v1" || cfg.Database.Engine != "sqlite" {
		t.Fatalf("unexpected normalization: %+v", cfg)
	}
	want := generate.RetryPolicy{MaxRetries: 0, Base: 10 * time.Millisecond, Cap: 40 * time.Millisecond}
	if diff := cmp.Diff(want, cfg.RetryPolicy()); diff != "" {
		t.Fatalf("retry policy mismatch (-want +got):\n%s", diff)
	}
}

// TestValidateCollectsIssues verifies every problem is reported at once.
func TestValidateCollectsIssues(t *testing.T) {
	cfg := Default()
	cfg.Version = 2
	cfg.Models = []string{"a", "a"}
	cfg.Provider.BaseURL = "ftp://example.com"
	cfg.Provider.BackoffBaseMS = 900
	cfg.Provider.BackoffCapMS = 100
	cfg.Provider.TokensPerMinute = -1
	cfg.Database.Engine = "postgres"
	cfg.Suite.Parallel = 0
	cfg.CasesFile = "missing.yml"

	err := Validate(&cfg, t.TempDir())
	want := []string{
		"version",
		"models[1]",
		"provider.base_url",
		"provider.backoff_cap_ms",
		"provider.tokens_per_minute",
		"database.engine",
		"suite.parallel",
		"cases_file",
	}
	if diff := cmp.Diff(want, issueFields(t, err)); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(err.Error(), "duplicate model \"a\"") {
		t.Fatalf("expected duplicate model message, got %q", err.Error())
	}
}

// TestLoadRequiresVersion verifies the version field is mandatory.
func TestLoadRequiresVersion(t *testing.T) {
	path := writeFile(t, t.TempDir(), ConfigFileName, "models: [a]\n")
	_, err := Load(path)
	if diff := cmp.Diff([]string{"version"}, issueFields(t, err)); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

// TestLoadResolvesCasesRelativeToConfig verifies relative cases files.
func TestLoadResolvesCasesRelativeToConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "my-cases.yml", `sql:
  - prompt: "everyone"
    expected_rows: 6
  - prompt: "no check"
`)
	path := writeFile(t, dir, ConfigFileName, "version: 1\ncases_file: my-cases.yml\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cases, err := LoadCases(ResolvePath(BaseDir(path), cfg.CasesFile), trial.FamilySQL)
	if err != nil {
		t.Fatalf("load cases: %v", err)
	}
	want := []trial.Case{trial.SQLCase("everyone", 6), {Prompt: "no check"}}
	if diff := cmp.Diff(want, cases); diff != "" {
		t.Fatalf("cases mismatch (-want +got):\n%s", diff)
	}
	math, err := LoadCases(ResolvePath(BaseDir(path), cfg.CasesFile), trial.FamilyMath)
	if err != nil {
		t.Fatalf("load math cases: %v", err)
	}
	if diff := cmp.Diff(trial.DefaultMathCases(), math); diff != "" {
		t.Fatalf("expected built-in math cases (-want +got):\n%s", diff)
	}
}

// TestParseCasesRejectsMismatchedExpectations verifies per-family checks.
func TestParseCasesRejectsMismatchedExpectations(t *testing.T) {
	_, err := ParseCases([]byte(`math:
  - prompt: "one"
    expected_rows: 1
sql:
  - prompt: ""
    expected: 2
`))
	want := []string{"math[0].expected_rows", "sql[0].prompt", "sql[0].expected"}
	if diff := cmp.Diff(want, issueFields(t, err)); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
	if _, err := ParseCases([]byte("math:\n  - prompt: x\n    answer: 1\n")); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

// TestLoadCasesDefaults verifies the built-in catalog without a file.
func TestLoadCasesDefaults(t *testing.T) {
	cases, err := LoadCases("", trial.FamilySQL)
	if err != nil {
		t.Fatalf("load cases: %v", err)
	}
	if diff := cmp.Diff(trial.DefaultSQLCases(), cases); diff != "" {
		t.Fatalf("cases mismatch (-want +got):\n%s", diff)
	}
	if _, err := LoadCases(filepath.Join(t.TempDir(), "nope.yml"), trial.FamilySQL); err == nil {
		t.Fatalf("expected read error")
	}
}

// TestFindConfigPathWalksUp verifies upward discovery.
func TestFindConfigPathWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeFile(t, root, ConfigFileName, "version: 1\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, err := FindConfigPath(nested)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

// TestFindConfigPathRejectsDirectory verifies a directory named like the config fails.
func TestFindConfigPathRejectsDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ConfigFileName), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := FindConfigPath(root); err == nil || errors.Is(err, ErrNoConfig) {
		t.Fatalf("expected directory error, got %v", err)
	}
}

// TestApplyEnvOverrides verifies OPENAI_MODEL and OPENAI_BASE_URL.
func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		generate.EnvModel:   "gpt-5-nano",
		generate.EnvBaseURL: "http://localhost:9999/v1/",
		"MY_KEY":            " sk-test ",
	}
	getenv := func(key string) string { return env[key] }

	cfg := Default()
	cfg.Provider.APIKeyEnv = "MY_KEY"
	ApplyEnv(&cfg, getenv)
	if cfg.Model() != "gpt-5-nano" || cfg.Provider.BaseURL != "http://localhost:9999/v1" {
		t.Fatalf("unexpected overrides: %+v", cfg.Provider)
	}
	if cfg.APIKey(getenv) != "sk-test" {
		t.Fatalf("expected key from MY_KEY")
	}
}

// TestNewClientUsesSettings verifies the client picks up provider settings.
func TestNewClientUsesSettings(t *testing.T) {
	cfg := Default()
	cfg.Provider.TimeoutSeconds = 5
	if _, err := cfg.NewClient(func(string) string { return "" }, nil, nil); err == nil || !strings.Contains(err.Error(), generate.EnvAPIKey) {
		t.Fatalf("expected missing key error, got %v", err)
	}
	client, err := cfg.NewClient(func(string) string { return "sk" }, nil, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.Timeout != 5*time.Second || client.Model != generate.DefaultModel || client.APIKey != "sk" {
		t.Fatalf("unexpected client: %+v", client)
	}
}

// TestExecutorEngine verifies the database settings.
func TestExecutorEngine(t *testing.T) {
	cfg := Default()
	cfg.Database.Engine = "sqlite"
	cfg.Database.QueryTimeoutSeconds = 3
	executor, err := cfg.Executor()
	if err != nil {
		t.Fatalf("executor: %v", err)
	}
	if executor.Engine != sqlexec.EngineSQLite || executor.Timeout != 3*time.Second {
		t.Fatalf("unexpected executor: %+v", executor)
	}
	cfg.Database.Engine = "oracle"
	if _, err := cfg.Executor(); err == nil {
		t.Fatalf("expected engine error")
	}
}

// TestLoadDotEnvDoesNotOverride verifies .env loading.
func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, DotEnvFile, "CFGPROBE_TEST_SET=from-file\nCFGPROBE_TEST_NEW=loaded\n")
	t.Setenv("CFGPROBE_TEST_SET", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("CFGPROBE_TEST_NEW") })

	if err := LoadDotEnv(dir); err != nil {
		t.Fatalf("load .env: %v", err)
	}
	if got := os.Getenv("CFGPROBE_TEST_SET"); got != "from-env" {
		t.Fatalf("expected existing value to win, got %q", got)
	}
	if got := os.Getenv("CFGPROBE_TEST_NEW"); got != "loaded" {
		t.Fatalf("expected value from .env, got %q", got)
	}
	if err := LoadDotEnv(t.TempDir()); err != nil {
		t.Fatalf("missing .env must not fail: %v", err)
	}
}

// TestScaffoldWritesLoadableFiles verifies the scaffold round-trips.
func TestScaffoldWritesLoadableFiles(t *testing.T) {
	dir := t.TempDir()
	written, err := Scaffold(dir)
	if err != nil {
		t.Fatalf("scaffold: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("expected two files, got %v", written)
	}
	cfg, err := Load(filepath.Join(dir, ConfigFileName))
	if err != nil {
		t.Fatalf("load scaffold config: %v", err)
	}
	cases, err := LoadCases(ResolvePath(dir, cfg.CasesFile), trial.FamilySQL)
	if err != nil {
		t.Fatalf("load scaffold cases: %v", err)
	}
	if diff := cmp.Diff(trial.DefaultSQLCases(), cases); diff != "" {
		t.Fatalf("cases mismatch (-want +got):\n%s", diff)
	}
	if _, err := Scaffold(dir); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected existing file error, got %v", err)
	}
}

// TestRateLimits verifies the provider budgets map onto limiter limits.
func TestRateLimits(t *testing.T) {
	cfg := Default()
	if cfg.RateLimits().Enabled() {
		t.Fatalf("expected no budgets by default")
	}
	cfg.Provider.RequestsPerMinute = 30
	cfg.Provider.TokensPerMinute = 90000
	if got := cfg.RateLimits(); got.RequestsPerMinute != 30 || got.TokensPerMinute != 90000 {
		t.Fatalf("unexpected limits: %+v", got)
	}
}
