package live

import "cfgprobe/internal/suite"

// EventKind identifies the type of live UI event.
type EventKind int

const (
	// EventRunStart signals the start of a suite run.
	EventRunStart EventKind = iota
	// EventTrialStart signals that a trial was handed to a worker.
	EventTrialStart
	// EventTrialEnd delivers a finished or failed trial.
	EventTrialEnd
	// EventRunEnd signals run completion.
	EventRunEnd
)

// Event carries a UI update payload.
type Event struct {
	Kind  EventKind
	Run   suite.RunInfo
	Trial suite.TrialEvent
}
