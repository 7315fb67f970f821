package live

import "time"

// TrialStatus is the display status of one trial row.
type TrialStatus string

const (
	StatusQueued    TrialStatus = "queued"
	StatusRunning   TrialStatus = "running"
	StatusPassed    TrialStatus = "pass"
	StatusFailed    TrialStatus = "fail"
	StatusRejected  TrialStatus = "rejected"
	StatusUnchecked TrialStatus = "done"
	StatusError     TrialStatus = "error"
)

// TrialRow holds UI state for a single (model, case) slot.
type TrialRow struct {
	Index      int
	Model      string
	CaseIndex  int
	Prompt     string
	Status     TrialStatus
	Candidate  string
	Detail     string
	StartedAt  time.Time
	FinishedAt time.Time
	Latency    time.Duration
	Error      string
}

// StatusCounts aggregates counts by status bucket.
type StatusCounts struct {
	Queued   int
	Running  int
	Done     int
	Passed   int
	Failed   int
	Rejected int
	Errors   int
}

// State captures the live UI state for a suite run.
type State struct {
	RunID     string
	Family    string
	Models    []string
	Parallel  int
	StartedAt time.Time
	Finished  bool
	LastEvent string
	Rows      []TrialRow
	Counts    StatusCounts
}
