package live

import (
	"errors"
	"strings"
	"testing"
	"time"

	"cfgprobe/internal/sqlexec"
	"cfgprobe/internal/suite"
	"cfgprobe/internal/testutil"
	"cfgprobe/internal/trial"
	"cfgprobe/internal/validate"
)

func runStart() Event {
	return Event{Kind: EventRunStart, Run: suite.RunInfo{
		RunID:  "run-1",
		Family: trial.FamilyMath,
		Models: []string{"a", "b"},
		Cases:  trial.DefaultMathCases()[:2],
	}}
}

func trialEvent(kind EventKind, index int, result *trial.Result, err error) Event {
	return Event{Kind: kind, Trial: suite.TrialEvent{
		Index:     index,
		Model:     []string{"a", "a", "b", "b"}[index],
		CaseIndex: index % 2,
		Result:    result,
		Err:       err,
		EmittedAt: testutil.Epoch,
	}}
}

func mathResult(candidate string, accepted bool, value *float64, expected float64) *trial.Result {
	verdict := validate.Rejected
	if accepted {
		verdict = validate.Accepted
	}
	return &trial.Result{
		Family:        trial.FamilyMath,
		Candidate:     candidate,
		Parse:         validate.Outcome{Verdict: verdict},
		Value:         value,
		ExpectedValue: &expected,
		Latency:       1500 * time.Millisecond,
	}
}

// TestReduceRunStartSeedsRows verifies one queued row per model and case.
func TestReduceRunStartSeedsRows(t *testing.T) {
	state := Reduce(State{}, runStart())
	if len(state.Rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(state.Rows))
	}
	if state.Rows[2].Model != "b" || state.Rows[2].CaseIndex != 0 || state.Rows[2].Prompt != "add four plus four" {
		t.Fatalf("unexpected row: %+v", state.Rows[2])
	}
	if state.Counts.Queued != 4 {
		t.Fatalf("expected 4 queued, got %d", state.Counts.Queued)
	}
}

// TestReduceTrialLifecycle verifies status transitions and counts.
func TestReduceTrialLifecycle(t *testing.T) {
	eight := 8.0
	state := Reduce(State{}, runStart())
	state = Reduce(state, trialEvent(EventTrialStart, 0, nil, nil))
	if state.Rows[0].Status != StatusRunning || state.Counts.Running != 1 {
		t.Fatalf("expected running row, got %+v", state.Rows[0])
	}
	state = Reduce(state, trialEvent(EventTrialEnd, 0, mathResult("4 + 4", true, &eight, 8), nil))
	state = Reduce(state, trialEvent(EventTrialEnd, 1, mathResult("4 +", false, nil, 8), nil))
	state = Reduce(state, trialEvent(EventTrialEnd, 2, mathResult("1 + 1", true, nil, 8), nil))

	if state.Rows[0].Status != StatusPassed || state.Rows[0].Detail != "8" {
		t.Fatalf("unexpected passed row: %+v", state.Rows[0])
	}
	if state.Rows[1].Status != StatusRejected || state.Rows[1].Detail != "-" {
		t.Fatalf("unexpected rejected row: %+v", state.Rows[1])
	}
	if state.Rows[2].Status != StatusFailed {
		t.Fatalf("unexpected failed row: %+v", state.Rows[2])
	}
	want := StatusCounts{Queued: 1, Done: 3, Passed: 1, Failed: 1, Rejected: 1}
	if state.Counts != want {
		t.Fatalf("unexpected counts: %+v", state.Counts)
	}
	if !strings.Contains(state.LastEvent, "b #1") {
		t.Fatalf("unexpected last event: %q", state.LastEvent)
	}
}

// TestReduceTrialError verifies fatal trial errors are shown.
func TestReduceTrialError(t *testing.T) {
	state := Reduce(State{}, runStart())
	state = Reduce(state, trialEvent(EventTrialEnd, 3, nil, errors.New("rate limited")))
	if state.Rows[3].Status != StatusError || state.Rows[3].Error != "rate limited" {
		t.Fatalf("unexpected error row: %+v", state.Rows[3])
	}
	if state.Counts.Errors != 1 {
		t.Fatalf("expected one error, got %d", state.Counts.Errors)
	}
}

// TestReduceExecDetail verifies SQL rows report row counts.
func TestReduceExecDetail(t *testing.T) {
	rows := 2
	result := &trial.Result{
		Family:       trial.FamilySQL,
		Parse:        validate.Outcome{Verdict: validate.Accepted},
		Exec:         &sqlexec.Outcome{Columns: []string{"id"}, Rows: [][]any{{int64(1)}, {int64(2)}}},
		ExpectedRows: &rows,
	}
	state := Reduce(State{}, trialEvent(EventTrialEnd, 1, result, nil))
	if len(state.Rows) != 2 {
		t.Fatalf("expected rows to grow to the index, got %d", len(state.Rows))
	}
	if state.Rows[1].Detail != "2 rows" || state.Rows[1].Status != StatusPassed {
		t.Fatalf("unexpected row: %+v", state.Rows[1])
	}
}

// TestReduceDoesNotShareRows verifies earlier states are not mutated.
func TestReduceDoesNotShareRows(t *testing.T) {
	before := Reduce(State{}, runStart())
	after := Reduce(before, trialEvent(EventTrialStart, 0, nil, nil))
	if before.Rows[0].Status != StatusQueued {
		t.Fatalf("expected earlier state untouched, got %s", before.Rows[0].Status)
	}
	if after.Rows[0].Status != StatusRunning {
		t.Fatalf("expected running, got %s", after.Rows[0].Status)
	}
}

// TestReduceRunEnd verifies run completion.
func TestReduceRunEnd(t *testing.T) {
	state := Reduce(Reduce(State{}, runStart()), Event{Kind: EventRunEnd})
	if !state.Finished || !strings.Contains(state.LastEvent, "run-1") {
		t.Fatalf("unexpected state: %+v", state)
	}
}

// TestModelViewPlain verifies the plain view lists trial rows.
func TestModelViewPlain(t *testing.T) {
	model := NewModel(nil, Options{NoColor: true})
	model = applyEvent(model, runStart())
	view := model.View()
	for _, want := range []string{"Run run-1", "Family: math", "Queued: 4", "queued"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

// TestTruncate verifies rune-safe clipping.
func TestTruncate(t *testing.T) {
	if got := truncate("  a\n b  ", 10); got != "a b" {
		t.Fatalf("unexpected %q", got)
	}
	if got := truncate("東京東京東京東京東京東京", 6); got != "東京東..." {
		t.Fatalf("unexpected %q", got)
	}
}
