package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"cfgprobe/internal/grammar"
	"cfgprobe/internal/render"
	"cfgprobe/internal/trial"
)

type trialCommand struct {
	family   trial.Family
	use      string
	short    string
	flagName string
	flagHelp string
}

var (
	trialMath = trialCommand{
		family:   trial.FamilyMath,
		use:      "math [prompt]",
		short:    "Generate one arithmetic expression, validate and evaluate it",
		flagName: "expected",
		flagHelp: "expected value",
	}
	trialSQL = trialCommand{
		family:   trial.FamilySQL,
		use:      "sql [prompt]",
		short:    "Generate one SQL query, validate and run it on the fixture",
		flagName: "expected-rows",
		flagHelp: "expected row count",
	}
)

// newTrialCmd builds the single-trial commands. Without a prompt the first
// built-in case of the family runs, expectation included.
func newTrialCmd(opts *rootOptions, tc trialCommand) *cobra.Command {
	var (
		expected     float64
		expectedRows int
		grammarName  string
	)
	cmd := &cobra.Command{
		Use:   tc.use,
		Short: tc.short,
		Args:  usageArgs(cobra.ArbitraryArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := trial.DefaultCases(tc.family)[0]
			if prompt := strings.TrimSpace(strings.Join(args, " ")); prompt != "" {
				c = trial.Case{Prompt: prompt}
			}
			if cmd.Flags().Changed(tc.flagName) {
				if tc.family == trial.FamilySQL {
					if expectedRows < 0 {
						return usagef("--expected-rows must be >= 0")
					}
					c.Expected, c.ExpectedRows = nil, &expectedRows
				} else {
					c.Expected, c.ExpectedRows = &expected, nil
				}
			}

			var g *grammar.Grammar
			if grammarName != "" {
				var err error
				if g, err = grammar.Lookup(grammarName); err != nil {
					return usageError{err: err}
				}
				if g == grammar.SQLSubset {
					return usagef("grammar %q cannot constrain arithmetic", grammarName)
				}
			}

			s, err := opts.newSession(cmd)
			if err != nil {
				return err
			}
			runner, err := s.runner()
			if err != nil {
				return err
			}
			runner.Grammar = g
			result, err := runner.Run(cmd.Context(), tc.family, c, s.model)
			if err != nil {
				return err
			}
			s.printf("%s\n", render.RenderTrial(result, s.render))
			return nil
		},
	}
	if tc.family == trial.FamilySQL {
		cmd.Flags().IntVar(&expectedRows, tc.flagName, 0, tc.flagHelp)
	} else {
		cmd.Flags().Float64Var(&expected, tc.flagName, 0, tc.flagHelp)
		cmd.Flags().StringVar(&grammarName, "grammar", grammar.NameArithmetic,
			"grammar sent with the tool: "+grammar.NameArithmetic+" or "+grammar.NameMinimalMath)
	}
	return cmd
}
