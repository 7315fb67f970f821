package suite

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"cfgprobe/internal/generate"
	"cfgprobe/internal/testutil"
	"cfgprobe/internal/trial"
)

// mathGenerator answers every default math case correctly for any model.
func mathGenerator() *testutil.ScriptedGenerator {
	answers := []string{"4 + 4", "7 * 3 + 1", "(10 - 6) * 5", "20 / 4 + 2"}
	gen := &testutil.ScriptedGenerator{}
	for i, c := range trial.DefaultMathCases() {
		reply := testutil.ToolReply(trial.MathToolName, answers[i])
		reply.Usage = &generate.Usage{InputTokens: 100, OutputTokens: 7}
		gen.Reply("", c.Prompt, reply)
	}
	return gen
}

func fixedRunID(time.Time) (string, error) { return "run-1", nil }

type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingObserver) record(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, s)
}

func (r *recordingObserver) OnRunStart(info RunInfo) { r.record("run-start " + info.RunID) }
func (r *recordingObserver) OnTrialStart(e TrialEvent) {
	r.record("start " + e.Model)
}
func (r *recordingObserver) OnTrialEnd(e TrialEvent) {
	if e.Err != nil {
		r.record("error " + e.Model)
		return
	}
	r.record("end " + e.Model)
}
func (r *recordingObserver) OnRunEnd(results Results) { r.record("run-end " + results.RunID) }

// TestRunOrdersModelMajor covers the two models by four cases grid.
func TestRunOrdersModelMajor(t *testing.T) {
	models := []string{"gpt-5", "gpt-5-mini"}
	cases := trial.DefaultMathCases()
	results, err := Run(testutil.Context(t, 0), trial.Runner{Generator: mathGenerator()}, Params{
		Family: trial.FamilyMath,
		Models: models,
		Cases:  cases,
		Now:    testutil.NewSteppingClock(testutil.Epoch, time.Second).Now,
		RunID:  fixedRunID,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results.Trials) != 8 {
		t.Fatalf("expected 8 trials, got %d", len(results.Trials))
	}
	for i, tr := range results.Trials {
		wantModel := models[i/len(cases)]
		wantCase := i % len(cases)
		if tr.RequestedModel != wantModel || tr.CaseIndex != wantCase || tr.Prompt != cases[wantCase].Prompt {
			t.Fatalf("slot %d: got model=%s case=%d prompt=%q", i, tr.RequestedModel, tr.CaseIndex, tr.Prompt)
		}
		if pass, checked := tr.Passed(); !pass || !checked {
			t.Fatalf("slot %d: expected pass for %q", i, tr.Candidate)
		}
		if tr.Latency != time.Second {
			t.Fatalf("slot %d: expected 1s latency, got %v", i, tr.Latency)
		}
	}
	if results.RunID != "run-1" || results.Family != trial.FamilyMath {
		t.Fatalf("unexpected metadata: %s %s", results.RunID, results.Family)
	}
	if !results.FinishedAt.After(results.StartedAt) {
		t.Fatalf("expected finish after start")
	}
	want := Summary{
		Models: []ModelSummary{
			{Model: "gpt-5", Trials: 4, Parsed: 4, Checked: 4, Passed: 4, TokensIn: 400, TokensOut: 28, Latency: 4 * time.Second},
			{Model: "gpt-5-mini", Trials: 4, Parsed: 4, Checked: 4, Passed: 4, TokensIn: 400, TokensOut: 28, Latency: 4 * time.Second},
		},
		Total: ModelSummary{Model: "total", Trials: 8, Parsed: 8, Checked: 8, Passed: 8, TokensIn: 800, TokensOut: 56, Latency: 8 * time.Second},
	}
	if diff := cmp.Diff(want, results.Summary); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

// TestParallelMatchesSequential verifies parallel runs restore the deterministic order.
func TestParallelMatchesSequential(t *testing.T) {
	models := []string{"a", "b", "c"}
	params := Params{
		Family: trial.FamilySQL,
		Models: models,
		Cases:  trial.DefaultSQLCases(),
		Now:    testutil.NewFakeClock(testutil.Epoch).Now,
		RunID:  fixedRunID,
	}
	gen := &testutil.ScriptedGenerator{}
	gen.Reply("b", "", testutil.ToolReply(trial.SQLToolName, "SELECT * FROM users WHERE NOT city = 'Tokyo' AND age < 30"))
	gen.Reply("", "", testutil.ToolReply(trial.SQLToolName, "SELECT id, name FROM users WHERE age > 30 LIMIT 3"))
	runner := trial.Runner{Generator: gen}

	sequential, err := Run(testutil.Context(t, 60*time.Second), runner, params)
	if err != nil {
		t.Fatalf("sequential run: %v", err)
	}
	params.Parallel = 4
	parallel, err := Run(testutil.Context(t, 60*time.Second), runner, params)
	if err != nil {
		t.Fatalf("parallel run: %v", err)
	}
	if diff := cmp.Diff(sequential, parallel); diff != "" {
		t.Fatalf("parallel results differ (-sequential +parallel):\n%s", diff)
	}
	// b answers the NOT query (2 rows), the others return 3 rows.
	summary := parallel.Summary.Models
	if summary[0].Passed != 1 || summary[1].Passed != 2 || summary[2].Passed != 1 {
		t.Fatalf("unexpected pass counts: %+v", summary)
	}
}

// TestGenerationFailureAbortsRun verifies a fatal trial error fails the suite.
func TestGenerationFailureAbortsRun(t *testing.T) {
	for _, parallel := range []int{1, 3} {
		gen := mathGenerator()
		boom := &generate.Error{Kind: generate.KindClient, Status: 401, Message: "bad key"}
		failing := &testutil.ScriptedGenerator{Fallback: func(req generate.Request) (generate.Response, error) {
			if req.Model == "broken" {
				return generate.Response{}, boom
			}
			return gen.Generate(context.Background(), req)
		}}
		obs := &recordingObserver{}
		_, err := Run(testutil.Context(t, 0), trial.Runner{Generator: failing}, Params{
			Family:   trial.FamilyMath,
			Models:   []string{"gpt-5", "broken"},
			Cases:    trial.DefaultMathCases(),
			Parallel: parallel,
			Observer: obs,
			RunID:    fixedRunID,
		})
		if err == nil {
			t.Fatalf("parallel=%d: expected error", parallel)
		}
		var ge *generate.Error
		if !errors.As(err, &ge) || ge.Status != 401 {
			t.Fatalf("parallel=%d: expected wrapped generation error, got %v", parallel, err)
		}
		if !strings.Contains(err.Error(), "model broken") {
			t.Fatalf("parallel=%d: expected model in error, got %v", parallel, err)
		}
		for _, e := range obs.events {
			if strings.HasPrefix(e, "run-end") {
				t.Fatalf("parallel=%d: run end must not fire on failure", parallel)
			}
		}
	}
}

// TestObserverSequence verifies event order for a sequential run.
func TestObserverSequence(t *testing.T) {
	obs := &recordingObserver{}
	_, err := Run(context.Background(), trial.Runner{Generator: mathGenerator()}, Params{
		Family:   trial.FamilyMath,
		Models:   []string{"m"},
		Cases:    trial.DefaultMathCases()[:2],
		Observer: obs,
		RunID:    fixedRunID,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"run-start run-1", "start m", "end m", "start m", "end m", "run-end run-1"}
	if diff := cmp.Diff(want, obs.events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

// TestRunValidatesParams covers empty model and case lists.
func TestRunValidatesParams(t *testing.T) {
	runner := trial.Runner{Generator: mathGenerator()}
	if _, err := Run(context.Background(), runner, Params{Family: trial.FamilyMath, Cases: trial.DefaultMathCases()}); !errors.Is(err, ErrNoModels) {
		t.Fatalf("expected ErrNoModels, got %v", err)
	}
	if _, err := Run(context.Background(), runner, Params{Family: trial.FamilyMath, Models: []string{"m"}}); !errors.Is(err, ErrNoCases) {
		t.Fatalf("expected ErrNoCases, got %v", err)
	}
}

// TestRunCanceledContext verifies cancellation stops a sequential run.
func TestRunCanceledContext(t *testing.T) {
	_, err := Run(testutil.CanceledContext(), trial.Runner{Generator: mathGenerator()}, Params{
		Family: trial.FamilyMath,
		Models: []string{"m"},
		Cases:  trial.DefaultMathCases(),
		RunID:  fixedRunID,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// TestLogObserverWritesEvents verifies the structured log observer.
func TestLogObserverWritesEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)
	_, err := Run(context.Background(), trial.Runner{Generator: mathGenerator()}, Params{
		Family: trial.FamilyMath,
		Models: []string{"m"},
		Cases:  trial.DefaultMathCases()[:1],
		RunID:  fixedRunID,
		Logger: logger,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"suite started", "trial finished", "suite finished", "run_id=run-1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in log output:\n%s", want, out)
		}
	}
}

// TestSummarizeUnchecked verifies that unchecked trials do not count toward checks.
func TestSummarizeUnchecked(t *testing.T) {
	trials := []Trial{
		{RequestedModel: "m", Result: trial.Result{Family: trial.FamilyMath}},
	}
	summary := Summarize([]string{"m", "unused"}, trials)
	if len(summary.Models) != 2 || summary.Models[0].Trials != 1 || summary.Models[0].Checked != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Models[1].Trials != 0 || summary.Models[0].PassRate() != 0 {
		t.Fatalf("unexpected zero row: %+v", summary.Models[1])
	}
}
