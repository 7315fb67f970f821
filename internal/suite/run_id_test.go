package suite

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"
)

func newTestLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// TestFormatRunID verifies run ID formatting.
func TestFormatRunID(t *testing.T) {
	timestamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	got := FormatRunID(timestamp, "deadbeef")
	if got != "20240102T030405Z-deadbeef" {
		t.Fatalf("unexpected run id: %q", got)
	}
}

// TestNewRunIDWithRand verifies deterministic run ID generation with a reader.
func TestNewRunIDWithRand(t *testing.T) {
	timestamp := time.Date(2024, 6, 7, 8, 9, 10, 0, time.FixedZone("JST", 9*3600))
	reader := bytes.NewReader([]byte{
		0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77,
		0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff,
	})
	got, err := NewRunIDWithRand(timestamp, reader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "20240606T230910Z-001122334455" {
		t.Fatalf("unexpected run id: %q", got)
	}
}

// TestNewRunIDWithShortReader verifies read failures are reported.
func TestNewRunIDWithShortReader(t *testing.T) {
	if _, err := NewRunIDWithRand(time.Now(), bytes.NewReader([]byte{1, 2})); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := NewRunIDWithRand(time.Now(), nil); err == nil {
		t.Fatalf("expected error")
	}
}
