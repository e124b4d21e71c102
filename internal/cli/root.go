package cli

import (
	"context"
	"io"

	"github.com/ariel-frischer/changecheck/internal/config"
	clierrors "github.com/ariel-frischer/changecheck/internal/errors"
	"github.com/ariel-frischer/changecheck/internal/git"
	"github.com/ariel-frischer/changecheck/internal/logging"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Command groups shown in help output.
const (
	GroupChecks = "checks"
	GroupInfo   = "info"
)

var (
	configPath string
	debugFlag  bool
	plainFlag  bool

	// cfg and logger are set by the root command before any subcommand runs.
	cfg    *config.Configuration
	logger = log.New(io.Discard)
)

var rootCmd = &cobra.Command{
	Use:   "changecheck",
	Short: "Validate and normalize CHANGELOG.md files",
	Long: `changecheck validates Markdown changelogs against a strict layout and
can rewrite them with the fixable problems corrected.

A changelog is a list of releases ("## Unreleased" or "## [v1.2.3] - 2024-01-31"),
each holding change types ("### Bug Fixes") with one entry per pull request:

  - (scope) [#123](https://github.com/org/repo/pull/123) Description ending with a dot.

Every problem is reported with its line number and the command exits non-zero,
so it can gate CI pipelines.

Source: https://github.com/ariel-frischer/changecheck`,
	Example: `  # Check CHANGELOG.md in the current directory or repository root
  changecheck check

  # Fix what can be fixed and report the rest
  changecheck check --fix

  # Check every changelog in a monorepo
  changecheck check '**/CHANGELOG.md'

  # Re-check on every save
  changecheck watch`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupChecks, Title: "Checks:"},
		&cobra.Group{ID: GroupInfo, Title: "Information:"},
	)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Project config file (default: .changecheck.yml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&plainFlag, "plain", false, "Plain output without colors")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return clierrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine(),
			"Run 'changecheck "+cmd.Name()+" --help' to see valid options")
	})
}

// setup loads the configuration and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return clierrors.ConfigParseError(err)
	}
	cfg = loaded

	level := cfg.LogLevel
	if debugFlag {
		level = "debug"
	}
	opts := logging.DefaultOptions()
	opts.Level = level
	l, err := logging.New(cmd.ErrOrStderr(), opts)
	if err != nil {
		return clierrors.ConfigParseError(err)
	}
	logger = l
	git.SetDebugLogger(logging.Printf(logger))

	logger.Debug("configuration loaded",
		"changelog", cfg.Changelog, "source", cfg.Source("changelog"),
		"format", cfg.Format, "max_parallel", cfg.MaxParallel)
	return nil
}

// plainOutput reports whether colors are disabled by flag or config.
func plainOutput() bool {
	return plainFlag || (cfg != nil && cfg.Plain)
}

// Execute runs the root command and prints any error that was not already
// reported. Use ExitCode on the result to pick the process exit status.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext is Execute with a caller-provided context.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !isExitError(err) {
		clierrors.FprintError(rootCmd.ErrOrStderr(), err, plainOutput())
	}
	return err
}
