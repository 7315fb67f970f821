package suite

import (
	"log/slog"
	"time"

	"cfgprobe/internal/trial"
)

// RunInfo describes a suite run as it starts.
type RunInfo struct {
	RunID    string
	Family   trial.Family
	Models   []string
	Cases    []trial.Case
	Parallel int
}

// TrialEvent reports a trial starting or finishing. Result and Err are only
// set on finish, and at most one of them is non-nil.
type TrialEvent struct {
	Index     int
	Model     string
	CaseIndex int
	Prompt    string
	Result    *trial.Result
	Err       error
	EmittedAt time.Time
}

// Observer receives suite lifecycle events. With Parallel > 1 the trial
// callbacks arrive from several goroutines at once.
type Observer interface {
	OnRunStart(info RunInfo)
	OnTrialStart(event TrialEvent)
	OnTrialEnd(event TrialEvent)
	OnRunEnd(results Results)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) OnRunStart(RunInfo)      {}
func (NopObserver) OnTrialStart(TrialEvent) {}
func (NopObserver) OnTrialEnd(TrialEvent)   {}
func (NopObserver) OnRunEnd(Results)        {}

// Observers fans events out to several observers in order.
type Observers []Observer

func (o Observers) OnRunStart(info RunInfo) {
	for _, obs := range o {
		obs.OnRunStart(info)
	}
}

func (o Observers) OnTrialStart(event TrialEvent) {
	for _, obs := range o {
		obs.OnTrialStart(event)
	}
}

func (o Observers) OnTrialEnd(event TrialEvent) {
	for _, obs := range o {
		obs.OnTrialEnd(event)
	}
}

func (o Observers) OnRunEnd(results Results) {
	for _, obs := range o {
		obs.OnRunEnd(results)
	}
}

// LogObserver writes lifecycle events to a structured logger.
type LogObserver struct {
	Logger *slog.Logger
}

func (l LogObserver) OnRunStart(info RunInfo) {
	l.Logger.Debug("suite started", "run_id", info.RunID, "family", string(info.Family), "models", len(info.Models), "cases", len(info.Cases), "parallel", info.Parallel)
}

func (l LogObserver) OnTrialStart(event TrialEvent) {
	l.Logger.Debug("trial started", "index", event.Index, "model", event.Model, "case", event.CaseIndex)
}

func (l LogObserver) OnTrialEnd(event TrialEvent) {
	if event.Err != nil {
		l.Logger.Warn("trial failed", "index", event.Index, "model", event.Model, "case", event.CaseIndex, "error", event.Err)
		return
	}
	if event.Result == nil {
		return
	}
	pass, checked := event.Result.Passed()
	l.Logger.Debug("trial finished",
		"index", event.Index,
		"model", event.Model,
		"case", event.CaseIndex,
		"accepted", event.Result.Parse.Accepted(),
		"checked", checked,
		"pass", pass,
		"latency", event.Result.Latency,
	)
}

func (l LogObserver) OnRunEnd(results Results) {
	l.Logger.Debug("suite finished", "run_id", results.RunID, "trials", len(results.Trials), "passed", results.Summary.Total.Passed)
}
