// Package render formats trials and suite summaries for the console.
package render

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Options controls console rendering.
type Options struct {
	NoColor bool
}

// isTerminal is swapped in tests.
var isTerminal = func(w io.Writer) bool {
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	if fder, ok := w.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(fder.Fd()))
	}
	return false
}

// UseColor reports whether styled output suits w. NO_COLOR, TERM=dumb and
// CLICOLOR=0 disable styling, as does any writer that is not a terminal.
func UseColor(w io.Writer) bool {
	if w == nil {
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	if strings.EqualFold(os.Getenv("CLICOLOR"), "0") {
		return false
	}
	return isTerminal(w)
}

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w io.Writer) bool {
	return w != nil && isTerminal(w)
}
