package config

import (
	"fmt"
	"os"
	"strings"

	"cfgprobe/internal/trial"
)

// CaseFile is a YAML catalog of prompts per family.
type CaseFile struct {
	Math []trial.Case `yaml:"math"`
	SQL  []trial.Case `yaml:"sql"`
}

// For returns the cases of one family.
func (f CaseFile) For(family trial.Family) []trial.Case {
	if family == trial.FamilySQL {
		return f.SQL
	}
	return f.Math
}

// ParseCases decodes a case file strictly and checks every entry.
func ParseCases(data []byte) (CaseFile, error) {
	var file CaseFile
	if err := decodeStrict(data, &file); err != nil {
		return CaseFile{}, fmt.Errorf("parse cases: %w", err)
	}
	collector := &issueCollector{}
	checkCases("math", file.Math, trial.FamilyMath, collector.add)
	checkCases("sql", file.SQL, trial.FamilySQL, collector.add)
	if err := collector.result(); err != nil {
		return CaseFile{}, err
	}
	return file, nil
}

func checkCases(key string, cases []trial.Case, family trial.Family, add issueAdder) {
	for i, c := range cases {
		field := fmt.Sprintf("%s[%d]", key, i)
		if strings.TrimSpace(c.Prompt) == "" {
			add(field+".prompt", "is required")
		}
		switch family {
		case trial.FamilyMath:
			if c.ExpectedRows != nil {
				add(field+".expected_rows", "only applies to sql cases")
			}
		case trial.FamilySQL:
			if c.Expected != nil {
				add(field+".expected", "only applies to math cases")
			}
			if c.ExpectedRows != nil && *c.ExpectedRows < 0 {
				add(field+".expected_rows", "must be >= 0")
			}
		}
	}
}

// LoadCases reads the cases of family from path. An empty path, or a file
// with no cases for family, yields the built-in catalog.
func LoadCases(path string, family trial.Family) ([]trial.Case, error) {
	if path == "" {
		return trial.DefaultCases(family), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cases: %w", err)
	}
	file, err := ParseCases(data)
	if err != nil {
		return nil, err
	}
	cases := file.For(family)
	if len(cases) == 0 {
		return trial.DefaultCases(family), nil
	}
	return cases, nil
}
