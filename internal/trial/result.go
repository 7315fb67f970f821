package trial

import (
	"time"

	"cfgprobe/internal/arith"
	"cfgprobe/internal/generate"
	"cfgprobe/internal/sqlexec"
	"cfgprobe/internal/validate"
)

// Result is the record of one completed trial. Value and Exec are only set
// when Parse is accepted.
type Result struct {
	Family        Family
	Prompt        string
	Candidate     string
	Parse         validate.Outcome
	Value         *float64
	Exec          *sqlexec.Outcome
	ExpectedValue *float64
	ExpectedRows  *int
	Model         string
	Latency       time.Duration
	Usage         *generate.Usage
	// ToolCalls are the custom tool calls the model returned, in order.
	ToolCalls []generate.ToolCall
}

// Checked reports whether the case carried an expectation.
func (r Result) Checked() bool {
	if r.Family == FamilySQL {
		return r.ExpectedRows != nil
	}
	return r.ExpectedValue != nil
}

// Passed reports whether the trial met its expectation. checked is false
// when there was nothing to compare against, in which case pass is false.
func (r Result) Passed() (pass bool, checked bool) {
	if !r.Checked() {
		return false, false
	}
	if !r.Parse.Accepted() {
		return false, true
	}
	if r.Family == FamilySQL {
		return r.Exec != nil && r.Exec.OK() && r.Exec.RowCount() == *r.ExpectedRows, true
	}
	return r.Value != nil && arith.Matches(*r.Value, *r.ExpectedValue), true
}

// TokensIn returns the reported input tokens or zero.
func (r Result) TokensIn() int {
	if r.Usage == nil {
		return 0
	}
	return r.Usage.InputTokens
}

// TokensOut returns the reported output tokens or zero.
func (r Result) TokensOut() int {
	if r.Usage == nil {
		return 0
	}
	return r.Usage.OutputTokens
}

// Stage names a step of the trial pipeline.
type Stage uint8

const (
	StageRequested Stage = iota
	StageGeneratedTextReceived
	StageValidated
	StageEvaluated
	StageExecutionAttempted
	StageRecorded
)

func (s Stage) String() string {
	switch s {
	case StageRequested:
		return "requested"
	case StageGeneratedTextReceived:
		return "generated"
	case StageValidated:
		return "validated"
	case StageEvaluated:
		return "evaluated"
	case StageExecutionAttempted:
		return "executed"
	case StageRecorded:
		return "recorded"
	}
	return "unknown"
}
