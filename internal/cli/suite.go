package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cfgprobe/internal/config"
	"cfgprobe/internal/render"
	"cfgprobe/internal/report"
	"cfgprobe/internal/suite"
	"cfgprobe/internal/trial"
	"cfgprobe/internal/ui/live"
)

type suiteOptions struct {
	family    string
	models    []string
	casesFile string
	outputDir string
	parallel  int
	uiMode    string
}

func newSuiteCmd(opts *rootOptions) *cobra.Command {
	so := &suiteOptions{}
	cmd := &cobra.Command{
		Use:   "suite",
		Short: "Run every case for every model and write a Markdown report",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSuite(cmd, opts, so)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&so.family, "family", "", "task family: math or sql (required)")
	flags.StringSliceVar(&so.models, "models", nil, "comma-separated models (default from config or --model)")
	flags.StringVar(&so.casesFile, "cases", "", "YAML case file (default from config, else built-in cases)")
	flags.StringVar(&so.outputDir, "output-dir", "", "report directory (default from config, else "+config.DefaultOutputDir+")")
	flags.IntVar(&so.parallel, "parallel", 0, "concurrent trials (default from config, else 1)")
	flags.StringVar(&so.uiMode, "ui", uiAuto, "progress display: auto, live or plain")
	return cmd
}

func runSuite(cmd *cobra.Command, opts *rootOptions, so *suiteOptions) error {
	if strings.TrimSpace(so.family) == "" {
		return usagef("--family is required (math or sql)")
	}
	family, err := trial.ParseFamily(so.family)
	if err != nil {
		return usageError{err: err}
	}
	if so.parallel < 0 || so.parallel > config.MaxParallel {
		return usagef("--parallel must be between 0 and %d", config.MaxParallel)
	}

	s, err := opts.newSession(cmd)
	if err != nil {
		return err
	}
	decision, err := resolveUIMode(so.uiMode, s.verbose(), s.stdout)
	if err != nil {
		return usageError{err: err}
	}
	if decision.warning != "" {
		fmt.Fprintln(s.stderr, decision.warning)
	}

	models := suiteModels(so.models, opts.model, s.cfg)
	casesPath := so.casesFile
	if casesPath == "" && s.cfg.CasesFile != "" {
		casesPath = s.resolve(s.cfg.CasesFile)
	}
	cases, err := config.LoadCases(casesPath, family)
	if err != nil {
		return err
	}
	outputDir := so.outputDir
	if outputDir == "" {
		outputDir = s.resolve(s.cfg.OutputDir)
	}
	parallel := so.parallel
	if parallel == 0 {
		parallel = s.cfg.Suite.Parallel
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}

	var observer suite.Observer
	var controller *live.Controller
	if decision.useLive {
		controller = live.Start(s.stdout, live.Options{NoColor: s.render.NoColor})
		observer = controller
	} else {
		observer = render.NewProgressObserver(s.stderr, render.Options{NoColor: s.noColor})
	}

	results, err := suite.Run(cmd.Context(), runner, suite.Params{
		Family:   family,
		Models:   models,
		Cases:    cases,
		Parallel: parallel,
		Observer: observer,
		Now:      now,
		Logger:   s.logger,
	})
	if controller != nil {
		// A failed run never reports its end, so the UI is closed here.
		controller.Close()
		controller.Wait()
	}
	if err != nil {
		return fmt.Errorf("suite failed, no report written: %w", err)
	}

	s.printf("%s\n", render.RenderSummary(results, s.render))
	path, err := report.Write(outputDir, results, now())
	if err != nil {
		return err
	}
	s.printf("Report: %s\n", path)
	return nil
}

// suiteModels picks the model list: --models, then --model, then config.
func suiteModels(flagModels []string, model string, cfg config.Config) []string {
	var models []string
	for _, m := range flagModels {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	if len(models) > 0 {
		return models
	}
	if model != "" {
		return []string{model}
	}
	return cfg.SuiteModels()
}
