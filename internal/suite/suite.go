// Package suite runs trials over every model and case and reduces the
// results into an ordered table.
package suite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"cfgprobe/internal/trial"
)

var (
	ErrNoModels = errors.New("suite: at least one model is required")
	ErrNoCases  = errors.New("suite: at least one case is required")
)

// Params configures a suite run.
type Params struct {
	Family trial.Family
	Models []string
	Cases  []trial.Case
	// Parallel bounds concurrent trials; values below 2 run sequentially.
	Parallel int
	Observer Observer
	Now      func() time.Time
	RunID    func(now time.Time) (string, error)
	Logger   *slog.Logger
}

// Run executes one trial per (model, case) pair. Results are ordered
// model-major and case-minor whatever the parallelism. The first
// generation failure cancels the remaining trials and fails the run.
func Run(ctx context.Context, runner trial.Runner, params Params) (Results, error) {
	if len(params.Models) == 0 {
		return Results{}, ErrNoModels
	}
	if len(params.Cases) == 0 {
		return Results{}, ErrNoCases
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	newRunID := params.RunID
	if newRunID == nil {
		newRunID = NewRunID
	}
	observer := params.Observer
	if observer == nil {
		observer = NopObserver{}
	}
	if params.Logger != nil {
		observer = Observers{LogObserver{Logger: params.Logger}, observer}
	}
	// Latency is measured on the suite clock.
	runner.Now = now

	startedAt := now()
	runID, err := newRunID(startedAt)
	if err != nil {
		return Results{}, err
	}
	observer.OnRunStart(RunInfo{
		RunID:    runID,
		Family:   params.Family,
		Models:   params.Models,
		Cases:    params.Cases,
		Parallel: params.Parallel,
	})

	trials := make([]Trial, len(params.Models)*len(params.Cases))
	runSlot := func(ctx context.Context, index int) error {
		model := params.Models[index/len(params.Cases)]
		caseIndex := index % len(params.Cases)
		c := params.Cases[caseIndex]
		event := TrialEvent{Index: index, Model: model, CaseIndex: caseIndex, Prompt: c.Prompt, EmittedAt: now()}
		observer.OnTrialStart(event)

		result, err := runner.Run(ctx, params.Family, c, model)
		event.EmittedAt = now()
		if err != nil {
			event.Err = err
			observer.OnTrialEnd(event)
			return fmt.Errorf("model %s case %d: %w", model, caseIndex+1, err)
		}
		trials[index] = Trial{Result: result, RequestedModel: model, CaseIndex: caseIndex}
		event.Result = &result
		observer.OnTrialEnd(event)
		return nil
	}

	if params.Parallel <= 1 {
		for i := range trials {
			if err := ctx.Err(); err != nil {
				return Results{}, err
			}
			if err := runSlot(ctx, i); err != nil {
				return Results{}, err
			}
		}
	} else {
		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(params.Parallel)
		for i := range trials {
			group.Go(func() error {
				if err := groupCtx.Err(); err != nil {
					return err
				}
				return runSlot(groupCtx, i)
			})
		}
		if err := group.Wait(); err != nil {
			return Results{}, err
		}
	}

	results := Results{
		RunID:      runID,
		Family:     params.Family,
		Models:     append([]string(nil), params.Models...),
		StartedAt:  startedAt,
		FinishedAt: now(),
		Trials:     trials,
		Summary:    Summarize(params.Models, trials),
	}
	observer.OnRunEnd(results)
	return results, nil
}
