package suite

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

const runIDSuffixLen = 12

// NewRunID returns a sortable run identifier for now.
func NewRunID(now time.Time) (string, error) {
	return NewRunIDWithRand(now, rand.Reader)
}

// NewRunIDWithRand builds a run identifier from the random bytes in r.
func NewRunIDWithRand(now time.Time, r io.Reader) (string, error) {
	if r == nil {
		return "", fmt.Errorf("random reader is nil")
	}
	id, err := uuid.NewRandomFromReader(r)
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	suffix := strings.ReplaceAll(id.String(), "-", "")[:runIDSuffixLen]
	return FormatRunID(now, suffix), nil
}

// FormatRunID joins a UTC timestamp and suffix.
func FormatRunID(now time.Time, suffix string) string {
	return now.UTC().Format("20060102T150405Z") + "-" + suffix
}
