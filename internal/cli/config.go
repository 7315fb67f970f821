package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"cfgprobe/internal/config"
)

// newConfigCmd validates the config file and prints the effective settings.
func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Validate the config file and print the effective settings",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.newSession(cmd)
			if err != nil {
				var validationErr *config.ValidationError
				if errors.As(err, &validationErr) {
					fmt.Fprintln(cmd.ErrOrStderr(), "Config validation failed:")
					for _, issue := range validationErr.Issues {
						fmt.Fprintf(cmd.ErrOrStderr(), "  - %s: %s\n", issue.Field, issue.Message)
					}
					return exitStatus(ExitError)
				}
				return err
			}
			if s.cfgPath == "" {
				s.printf("No %s found; using defaults.\n", config.ConfigFileName)
			} else {
				s.printf("Config OK: %s\n", s.cfgPath)
			}
			data, err := yaml.Marshal(s.cfg)
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}
			s.printf("\n%s", data)
			return nil
		},
	}
}
