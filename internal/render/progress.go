package render

import (
	"fmt"
	"io"
	"sync"

	"cfgprobe/internal/suite"
)

const progressPrefix = "[suite]"

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiDim   = "\x1b[2m"
	ansiGray  = "\x1b[90m"
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiBlue  = "\x1b[34m"
)

type lineStyle int

const (
	lineDefault lineStyle = iota
	lineRun
	linePass
	lineError
)

// lockedWriter serializes writes to an underlying writer.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// Write writes to the underlying writer with a mutex guard.
func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// ProgressObserver prints one line per suite event. It is safe for the
// concurrent callbacks of a parallel run.
type ProgressObserver struct {
	w     io.Writer
	color bool
}

// NewProgressObserver writes progress lines to w.
func NewProgressObserver(w io.Writer, opts Options) *ProgressObserver {
	return &ProgressObserver{
		w:     &lockedWriter{w: w},
		color: !opts.NoColor && UseColor(w),
	}
}

func (o *ProgressObserver) OnRunStart(info suite.RunInfo) {
	o.logf(lineRun, "run %s: %s suite, %d model(s) x %d case(s)", info.RunID, info.Family, len(info.Models), len(info.Cases))
}

func (o *ProgressObserver) OnTrialStart(event suite.TrialEvent) {
	o.logf(lineDefault, "%s #%d: %s", event.Model, event.CaseIndex+1, clip(event.Prompt, 60))
}

func (o *ProgressObserver) OnTrialEnd(event suite.TrialEvent) {
	if event.Err != nil {
		o.logf(lineError, "%s #%d: error: %v", event.Model, event.CaseIndex+1, event.Err)
		return
	}
	if event.Result == nil {
		return
	}
	r := event.Result
	style := lineDefault
	switch r.CheckLabel() {
	case "pass":
		style = linePass
	case "fail":
		style = lineError
	}
	o.logf(style, "%s #%d: parsed=%s result=%s check=%s elapsed=%ss candidate=%q",
		event.Model, event.CaseIndex+1, r.ParsedLabel(), r.OutcomeLabel(), r.CheckLabel(), r.ElapsedSeconds(), r.Candidate)
}

func (o *ProgressObserver) OnRunEnd(results suite.Results) {
	total := results.Summary.Total
	o.logf(lineRun, "run %s finished: %d/%d passed, %d parsed", results.RunID, total.Passed, total.Checked, total.Parsed)
}

func (o *ProgressObserver) logf(style lineStyle, format string, args ...any) {
	if o == nil || o.w == nil {
		return
	}
	line := fmt.Sprintf(format, args...)
	fmt.Fprintf(o.w, "%s %s\n", o.prefix(progressPrefix), o.apply(style, line))
}

func (o *ProgressObserver) prefix(text string) string {
	if !o.color {
		return text
	}
	return ansiDim + ansiGray + text + ansiReset
}

func (o *ProgressObserver) apply(style lineStyle, text string) string {
	if !o.color {
		return text
	}
	switch style {
	case lineRun:
		return ansiBold + ansiBlue + text + ansiReset
	case linePass:
		return ansiBold + ansiGreen + text + ansiReset
	case lineError:
		return ansiBold + ansiRed + text + ansiReset
	default:
		return text
	}
}
