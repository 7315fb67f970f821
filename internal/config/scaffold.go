package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"cfgprobe/internal/trial"
)

const defaultConfig = `version: 1
# models: [gpt-5, gpt-5-mini]
output_dir: "reports"
cases_file: "cases.yml"

provider:
  api_key_env: "OPENAI_API_KEY"
  default_model: "gpt-5"
  max_retries: 3
  backoff_base_ms: 500
  backoff_cap_ms: 8000
  timeout_seconds: 120
  # requests_per_minute: 60
  # tokens_per_minute: 200000

database:
  engine: "duckdb"
  query_timeout_seconds: 10

suite:
  parallel: 1
`

// Scaffold writes cfgprobe.yml and a cases.yml seeded with the built-in
// catalogs into dir. Existing files are left alone and reported.
func Scaffold(dir string) ([]string, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	cases, err := renderDefaultCases()
	if err != nil {
		return nil, err
	}
	files := []struct {
		name    string
		content string
	}{
		{ConfigFileName, defaultConfig},
		{CasesFileName, cases},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if info, err := os.Stat(path); err == nil {
			if info.IsDir() {
				return nil, fmt.Errorf("%s path %q is a directory", f.name, path)
			}
			return nil, fmt.Errorf("%s already exists at %q", f.name, path)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat %s: %w", f.name, err)
		}
	}
	written := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", f.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func renderDefaultCases() (string, error) {
	data, err := yaml.Marshal(CaseFile{
		Math: trial.DefaultMathCases(),
		SQL:  trial.DefaultSQLCases(),
	})
	if err != nil {
		return "", fmt.Errorf("render cases: %w", err)
	}
	return string(data), nil
}
