package cli

import (
	"github.com/spf13/cobra"

	"cfgprobe/internal/generate"
)

func newPingCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Send a plain prompt to check connectivity",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.newSession(cmd)
			if err != nil {
				return err
			}
			gen, err := newGenerator(s.cfg, s.logger)
			if err != nil {
				return err
			}
			resp, err := generate.Ping(cmd.Context(), gen, s.model)
			if err != nil {
				return err
			}
			text := resp.Text()
			if text == "" {
				text = "(no text)"
			}
			s.printf("%s\n", text)
			return nil
		},
	}
}
