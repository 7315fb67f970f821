package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cfgprobe/internal/arith"
	"cfgprobe/internal/grammar"
	"cfgprobe/internal/render"
	"cfgprobe/internal/trial"
)

type checkOptions struct {
	grammarName string
	grammarFile string
	expected    float64
	rows        int
}

// newCheckCmd validates text offline. Accepted arithmetic is evaluated and
// accepted SQL runs on the fixture; a rejected text exits with status 1.
func newCheckCmd(opts *rootOptions) *cobra.Command {
	co := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check <text>",
		Short: "Validate text against a grammar without calling a model",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, family, err := co.load()
			if err != nil {
				return err
			}
			s, err := opts.newSession(cmd)
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			ctx := cmd.Context()
			outcome := s.cfg.NewValidator().Validate(ctx, g, text)

			if family == "" {
				s.printf("Grammar:  %s\n", g.Name())
				s.printf("Verdict:  %s\n", outcome.Verdict)
				if outcome.Reason != "" {
					s.printf("Reason:   %s\n", outcome.Reason)
				}
			} else {
				result := trial.Result{Family: family, Prompt: "(offline check)", Candidate: text, Parse: outcome, Model: "-"}
				if cmd.Flags().Changed("expected") {
					result.ExpectedValue = &co.expected
				}
				if cmd.Flags().Changed("expected-rows") {
					result.ExpectedRows = &co.rows
				}
				if outcome.Accepted() {
					switch family {
					case trial.FamilyMath:
						if value, ok := arith.Evaluate(text); ok {
							result.Value = &value
						}
					case trial.FamilySQL:
						executor, err := s.cfg.Executor()
						if err != nil {
							return err
						}
						exec := executor.Execute(ctx, text)
						result.Exec = &exec
					}
				}
				s.printf("%s\n", render.RenderTrial(result, s.render))
				if outcome.Reason != "" {
					s.printf("Reason: %s\n", outcome.Reason)
				}
			}
			if !outcome.Accepted() {
				return exitStatus(ExitError)
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&co.grammarName, "grammar", grammar.NameArithmetic, "built-in grammar: "+strings.Join(grammar.Names(), ", "))
	flags.StringVar(&co.grammarFile, "grammar-file", "", "Lark grammar file to use instead of a built-in one")
	flags.Float64Var(&co.expected, "expected", 0, "expected value for arithmetic")
	flags.IntVar(&co.rows, "expected-rows", 0, "expected row count for SQL")
	return cmd
}

// load resolves the grammar and the family whose post-processing applies.
// Custom grammar files only get a verdict.
func (co *checkOptions) load() (*grammar.Grammar, trial.Family, error) {
	if co.grammarFile != "" {
		source, err := os.ReadFile(co.grammarFile)
		if err != nil {
			return nil, "", fmt.Errorf("read grammar: %w", err)
		}
		g, err := grammar.Load(co.grammarFile, string(source))
		if err != nil {
			return nil, "", err
		}
		return g, "", nil
	}
	g, err := grammar.Lookup(co.grammarName)
	if err != nil {
		return nil, "", usageError{err: err}
	}
	switch co.grammarName {
	case grammar.NameSQL:
		return g, trial.FamilySQL, nil
	default:
		return g, trial.FamilyMath, nil
	}
}
