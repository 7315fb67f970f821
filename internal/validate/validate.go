// Package validate decides whether a text belongs to the language of a
// grammar. Validation is total: every failure mode yields Rejected.
package validate

import (
	"context"
	"fmt"

	"cfgprobe/internal/grammar"
)

// DefaultMaxInputBytes bounds the text size considered for recognition.
const DefaultMaxInputBytes = 64 << 10

// Verdict is the binary validation result.
type Verdict uint8

const (
	Rejected Verdict = iota
	Accepted
)

func (v Verdict) String() string {
	if v == Accepted {
		return "accepted"
	}
	return "rejected"
}

// Outcome carries the verdict plus an optional diagnostic for logs.
// Reason never changes the verdict.
type Outcome struct {
	Verdict Verdict
	Reason  string
}

// Accepted reports whether the text was in the grammar's language.
func (o Outcome) Accepted() bool { return o.Verdict == Accepted }

func accepted() Outcome { return Outcome{Verdict: Accepted} }

func rejected(format string, args ...any) Outcome {
	return Outcome{Verdict: Rejected, Reason: fmt.Sprintf(format, args...)}
}

// Options configures a Validator.
type Options struct {
	MaxInputBytes int
}

// Validator recognises texts against compiled grammars.
type Validator struct {
	maxInput int
}

// New creates a Validator. Zero options use the defaults.
func New(opts Options) *Validator {
	limit := opts.MaxInputBytes
	if limit <= 0 {
		limit = DefaultMaxInputBytes
	}
	return &Validator{maxInput: limit}
}

var defaultValidator = New(Options{})

// Validate checks text against g with default options.
func Validate(g *grammar.Grammar, text string) Outcome {
	return defaultValidator.Validate(context.Background(), g, text)
}

// ValidateContext is Validate with cancellation.
func ValidateContext(ctx context.Context, g *grammar.Grammar, text string) Outcome {
	return defaultValidator.Validate(ctx, g, text)
}

// Validate checks that the whole of text derives from g's start rule,
// allowing ignored terminals before, between and after tokens.
func (v *Validator) Validate(ctx context.Context, g *grammar.Grammar, text string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = rejected("internal error: %v", r)
		}
	}()
	if g == nil {
		return rejected("no grammar")
	}
	if len(text) > v.maxInput {
		return rejected("input is %d bytes, limit is %d", len(text), v.maxInput)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return newRecognizer(g, text).run(ctx)
}
