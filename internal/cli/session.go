package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cfgprobe/internal/config"
	"cfgprobe/internal/generate"
	"cfgprobe/internal/logutil"
	"cfgprobe/internal/ratelimit"
	"cfgprobe/internal/render"
	"cfgprobe/internal/trial"
)

const (
	configFileHint = "./" + config.ConfigFileName + " or a parent directory"
	envModelHint   = "$" + generate.EnvModel
)

// Seams swapped in tests.
var (
	getenv       = os.Getenv
	now          = time.Now
	newGenerator = func(cfg config.Config, logger *slog.Logger) (generate.Generator, error) {
		return cfg.NewClient(getenv, nil, logger)
	}
)

// session is the resolved state shared by the commands.
type session struct {
	cfg     config.Config
	cfgPath string
	model   string
	level   slog.Level
	logger  *slog.Logger
	stdout  io.Writer
	stderr  io.Writer
	render  render.Options
	noColor bool
}

// newSession parses the persistent flags and loads .env plus the config.
func (o *rootOptions) newSession(cmd *cobra.Command) (*session, error) {
	level, err := logutil.ParseLevel(o.logLevel)
	if err != nil {
		return nil, usageError{err: err}
	}
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	logger := logutil.NewLogger(stderr, level)

	if err := config.LoadDotEnv("."); err != nil {
		return nil, err
	}
	cfg, cfgPath, err := config.Resolve(o.configPath)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(&cfg, getenv)
	if cfgPath != "" {
		logger.Debug("loaded config", "path", cfgPath)
	}

	model := cfg.Model()
	if o.model != "" {
		model = o.model
	}
	return &session{
		cfg:     cfg,
		cfgPath: cfgPath,
		model:   model,
		level:   level,
		logger:  logger,
		stdout:  stdout,
		stderr:  stderr,
		render:  render.Options{NoColor: o.noColor || !render.UseColor(stdout)},
		noColor: o.noColor,
	}, nil
}

// verbose reports whether log output would interleave with a live UI.
func (s *session) verbose() bool {
	return s.level < slog.LevelWarn
}

// runner builds a trial runner from the config. Generation is throttled
// when the provider sets request or token budgets.
func (s *session) runner() (trial.Runner, error) {
	gen, err := newGenerator(s.cfg, s.logger)
	if err != nil {
		return trial.Runner{}, err
	}
	executor, err := s.cfg.Executor()
	if err != nil {
		return trial.Runner{}, err
	}
	gen = ratelimit.Wrap(gen, s.cfg.RateLimits(), ratelimit.WithClock(now), ratelimit.WithLogger(s.logger))
	return trial.Runner{
		Generator: gen,
		Executor:  executor,
		Validator: s.cfg.NewValidator(),
		Logger:    s.logger,
	}, nil
}

// resolve makes a config-relative path usable from the working directory.
func (s *session) resolve(path string) string {
	if s.cfgPath == "" {
		return path
	}
	return config.ResolvePath(config.BaseDir(s.cfgPath), path)
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.stdout, format, args...)
}
