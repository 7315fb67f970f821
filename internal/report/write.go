package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cfgprobe/internal/suite"
)

// maxSuffix bounds the "-N" suffixes tried when runs finish in the same second.
const maxSuffix = 1000

// FileName is the report file name for a run of family finished at now.
func FileName(results suite.Results, now time.Time) string {
	return fmt.Sprintf("cfg-%s-%s.md", results.Family, now.UTC().Format("20060102T150405Z"))
}

// createReport opens a new file named after base, adding "-2", "-3", ...
// before the extension while the name is taken.
func createReport(dir, base string) (*os.File, string, error) {
	stem := strings.TrimSuffix(base, ".md")
	name := base
	for n := 2; ; n++ {
		path := filepath.Join(dir, name)
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return file, path, nil
		}
		if !errors.Is(err, os.ErrExist) || n > maxSuffix {
			return nil, "", fmt.Errorf("create report: %w", err)
		}
		name = fmt.Sprintf("%s-%d.md", stem, n)
	}
}

// Write renders results into exactly one new file under dir, creating dir
// when needed, and returns the file path. An existing file is never
// overwritten; a name clash picks the next free numeric suffix.
func Write(dir string, results suite.Results, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("output directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	file, path, err := createReport(dir, FileName(results, now))
	if err != nil {
		return "", err
	}
	if _, err := file.WriteString(RenderMarkdown(results)); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return path, nil
}
