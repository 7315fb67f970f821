package cli

import (
	"fmt"
	"io"
	"strings"

	"cfgprobe/internal/render"
)

// UI modes accepted by --ui.
const (
	uiAuto  = "auto"
	uiLive  = "live"
	uiPlain = "plain"
)

// uiModeDecision captures whether to use the live UI.
type uiModeDecision struct {
	useLive bool
	warning string
}

// isTerminal reports whether a writer is a TTY.
var isTerminal = render.IsTerminal

// resolveUIMode determines whether to enable the live UI. Verbose logging
// writes to the same terminal, so it always selects plain output.
func resolveUIMode(mode string, verbose bool, stdout io.Writer) (uiModeDecision, error) {
	normalized := strings.ToLower(strings.TrimSpace(mode))
	if normalized == "" {
		normalized = uiAuto
	}
	switch normalized {
	case uiAuto, uiLive, uiPlain:
	default:
		return uiModeDecision{}, fmt.Errorf("invalid ui mode %q (expected auto|live|plain)", mode)
	}
	if verbose || normalized == uiPlain {
		return uiModeDecision{useLive: false}, nil
	}
	if isTerminal(stdout) {
		return uiModeDecision{useLive: true}, nil
	}
	if normalized == uiLive {
		return uiModeDecision{
			useLive: false,
			warning: "Live UI requested but stdout is not a TTY; falling back to plain output.",
		}, nil
	}
	return uiModeDecision{useLive: false}, nil
}
