package live

import (
	"fmt"
	"strconv"

	"cfgprobe/internal/suite"
	"cfgprobe/internal/trial"
)

// Reduce applies an event to the UI state.
func Reduce(state State, event Event) State {
	switch event.Kind {
	case EventRunStart:
		state = startRun(event.Run)
	case EventTrialStart, EventTrialEnd:
		state = ensureRow(state, event.Trial.Index)
		state = applyTrialEvent(state, event.Kind, event.Trial)
		if message := formatLastEvent(event.Kind, event.Trial); message != "" {
			state.LastEvent = message
		}
	case EventRunEnd:
		state.Finished = true
		state.LastEvent = "Run " + state.RunID + " finished"
	}
	state.Counts = recount(state.Rows)
	return state
}

// startRun seeds one queued row per (model, case) pair.
func startRun(info suite.RunInfo) State {
	state := State{
		RunID:    info.RunID,
		Family:   string(info.Family),
		Models:   append([]string(nil), info.Models...),
		Parallel: info.Parallel,
	}
	for m, model := range info.Models {
		for c, tc := range info.Cases {
			state.Rows = append(state.Rows, TrialRow{
				Index:     m*len(info.Cases) + c,
				Model:     model,
				CaseIndex: c,
				Prompt:    tc.Prompt,
				Status:    StatusQueued,
			})
		}
	}
	return state
}

// ensureRow grows the state rows to include index.
func ensureRow(state State, index int) State {
	if index < 0 || index < len(state.Rows) {
		return state
	}
	rows := make([]TrialRow, index+1)
	copy(rows, state.Rows)
	for i := len(state.Rows); i < len(rows); i++ {
		rows[i] = TrialRow{Index: i, Status: StatusQueued}
	}
	state.Rows = rows
	return state
}

// applyTrialEvent updates a row with the given event.
func applyTrialEvent(state State, kind EventKind, event suite.TrialEvent) State {
	if event.Index < 0 || event.Index >= len(state.Rows) {
		return state
	}
	rows := append([]TrialRow(nil), state.Rows...)
	row := rows[event.Index]
	if row.Model == "" {
		row.Model = event.Model
		row.CaseIndex = event.CaseIndex
	}
	if row.Prompt == "" {
		row.Prompt = event.Prompt
	}
	switch kind {
	case EventTrialStart:
		row.Status = StatusRunning
		row.StartedAt = event.EmittedAt
	case EventTrialEnd:
		row.FinishedAt = event.EmittedAt
		if event.Err != nil {
			row.Status = StatusError
			row.Error = event.Err.Error()
			break
		}
		if event.Result != nil {
			row.Candidate = event.Result.Candidate
			row.Latency = event.Result.Latency
			row.Status = resultStatus(*event.Result)
			row.Detail = resultDetail(*event.Result)
		}
	}
	rows[event.Index] = row
	state.Rows = rows
	return state
}

// resultStatus maps a finished trial onto a display status.
func resultStatus(result trial.Result) TrialStatus {
	if !result.Parse.Accepted() {
		return StatusRejected
	}
	pass, checked := result.Passed()
	switch {
	case !checked:
		return StatusUnchecked
	case pass:
		return StatusPassed
	}
	return StatusFailed
}

// resultDetail summarises the evaluation or execution payload.
func resultDetail(result trial.Result) string {
	if result.Value != nil {
		return strconv.FormatFloat(*result.Value, 'g', -1, 64)
	}
	if result.Exec != nil {
		if !result.Exec.OK() {
			return "error"
		}
		return fmt.Sprintf("%d rows", result.Exec.RowCount())
	}
	return "-"
}

// recount recomputes status counts for the current rows.
func recount(rows []TrialRow) StatusCounts {
	var counts StatusCounts
	for _, row := range rows {
		switch row.Status {
		case StatusQueued:
			counts.Queued++
		case StatusRunning:
			counts.Running++
		case StatusPassed:
			counts.Done++
			counts.Passed++
		case StatusFailed:
			counts.Done++
			counts.Failed++
		case StatusRejected:
			counts.Done++
			counts.Rejected++
		case StatusUnchecked:
			counts.Done++
		case StatusError:
			counts.Done++
			counts.Errors++
		}
	}
	return counts
}

// formatLastEvent creates a short footer message for the event.
func formatLastEvent(kind EventKind, event suite.TrialEvent) string {
	label := fmt.Sprintf("%s #%d", event.Model, event.CaseIndex+1)
	if kind == EventTrialStart {
		return label + " started"
	}
	if event.Err != nil {
		return label + " error: " + event.Err.Error()
	}
	if event.Result != nil {
		return label + " " + string(resultStatus(*event.Result))
	}
	return ""
}
