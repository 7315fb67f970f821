package trial

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cfgprobe/internal/arith"
	"cfgprobe/internal/generate"
	"cfgprobe/internal/grammar"
	"cfgprobe/internal/logutil"
	"cfgprobe/internal/sqlexec"
	"cfgprobe/internal/validate"
)

// ErrNoGenerator is returned when a Runner has no generation client.
var ErrNoGenerator = errors.New("trial: generator is required")

// QueryExecutor runs a candidate query against an isolated fixture.
type QueryExecutor interface {
	Execute(ctx context.Context, query string) sqlexec.Outcome
}

// Runner drives single trials. The zero value needs only a Generator.
type Runner struct {
	Generator generate.Generator
	Executor  QueryExecutor
	Validator *validate.Validator
	// Grammar replaces the family grammar for both the tool definition and
	// validation when set.
	Grammar *grammar.Grammar
	Now     func() time.Time
	// OnStage, when set, is called as the trial enters each stage.
	OnStage func(Stage)
	Logger  *slog.Logger
}

// Run performs one trial of c for model. A generation failure aborts the
// trial and is returned; candidate problems are recorded in the Result.
func (r Runner) Run(ctx context.Context, family Family, c Case, model string) (Result, error) {
	if !family.valid() {
		return Result{}, fmt.Errorf("trial: unknown family %q", family)
	}
	if r.Generator == nil {
		return Result{}, ErrNoGenerator
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	validator := r.Validator
	if validator == nil {
		validator = validate.New(validate.Options{})
	}
	executor := r.Executor
	if executor == nil {
		executor = sqlexec.Executor{}
	}

	g := r.Grammar
	if g == nil {
		g = family.Grammar()
	}

	start := now()
	r.enter(StageRequested)
	tool := family.ToolWith(g)
	resp, err := r.Generator.Generate(ctx, generate.Request{
		Prompt: family.Instruction(c.Prompt),
		Model:  model,
		Tool:   &tool,
	})
	if err != nil {
		return Result{}, fmt.Errorf("generate %s candidate: %w", family, err)
	}

	r.enter(StageGeneratedTextReceived)
	candidate := ExtractCandidate(resp, family.ToolName())
	logutil.Trace(ctx, logger, "received candidate", "model", resp.Model, "tool_calls", len(resp.ToolCalls), "candidate", candidate)

	r.enter(StageValidated)
	parse := validator.Validate(ctx, g, candidate)
	logger.Debug("validated candidate", "family", string(family), "candidate", candidate, "verdict", parse.Verdict.String(), "reason", parse.Reason)

	result := Result{
		Family:        family,
		Prompt:        c.Prompt,
		Candidate:     candidate,
		Parse:         parse,
		ExpectedValue: c.Expected,
		ExpectedRows:  c.ExpectedRows,
		Model:         ResolveModel(resp, model),
		Usage:         resp.Usage,
		ToolCalls:     resp.ToolCalls,
	}
	if parse.Accepted() {
		switch family {
		case FamilyMath:
			r.enter(StageEvaluated)
			if value, ok := arith.Evaluate(candidate); ok {
				result.Value = &value
			}
		case FamilySQL:
			r.enter(StageExecutionAttempted)
			exec := executor.Execute(ctx, candidate)
			if !exec.OK() {
				logger.Debug("candidate query failed", "query", candidate, "error", exec.Err)
			}
			result.Exec = &exec
		}
	}

	r.enter(StageRecorded)
	result.Latency = now().Sub(start)
	return result, nil
}

func (r Runner) enter(stage Stage) {
	if r.OnStage != nil {
		r.OnStage(stage)
	}
}

// ExtractCandidate picks the first call to toolName, falling back to the
// plain output text when that call is missing or empty.
func ExtractCandidate(resp generate.Response, toolName string) string {
	candidate := ""
	for _, call := range resp.ToolCalls {
		if call.Name == toolName {
			candidate = call.Input
			break
		}
	}
	if candidate == "" {
		candidate = resp.Text()
	}
	return strings.TrimSpace(candidate)
}

// ResolveModel prefers the model the service reports over the requested one.
func ResolveModel(resp generate.Response, requested string) string {
	if model := strings.TrimSpace(resp.Model); model != "" {
		return model
	}
	return requested
}
