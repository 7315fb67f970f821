package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cfgprobe/internal/grammar"
)

func newGrammarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grammar [name]",
		Short: "List the built-in grammars or print one's Lark source",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, name := range grammar.Names() {
					fmt.Fprintln(out, name)
				}
				return nil
			}
			g, err := grammar.Lookup(args[0])
			if err != nil {
				return usageError{err: err}
			}
			_, err = out.Write([]byte(g.Source()))
			return err
		},
	}
}
