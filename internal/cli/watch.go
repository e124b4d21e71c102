package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	clierrors "github.com/ariel-frischer/changecheck/internal/errors"
	"github.com/ariel-frischer/changecheck/internal/watch"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var watchFixFlag bool

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-check a changelog every time it is saved",
	Long: `Check a changelog once, then again after every save until interrupted.

The path defaults to the 'changelog' config key, resolved like the check
command does. Saves are debounced by 'watch_debounce' (default 250ms).`,
	Example: `  changecheck watch
  changecheck watch docs/CHANGELOG.md --fix`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := checkOptions{
			Targets:     args,
			Default:     cfg.Changelog,
			Fix:         cfg.Fix,
			Format:      FormatText,
			Plain:       plainOutput(),
			MaxParallel: 1,
			Logger:      logger,
		}
		if cmd.Flags().Changed("fix") {
			opts.Fix = watchFixFlag
		}
		return runWatch(ctx, opts, cfg.WatchDebounce, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	watchCmd.GroupID = GroupChecks
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchFixFlag, "fix", false, "Write corrected files back to disk on every save")
}

// runWatch checks the target once and again after every save until ctx is
// done. Validation failures are reported and watching goes on.
func runWatch(ctx context.Context, opts checkOptions, debounce time.Duration, out, errOut io.Writer) error {
	paths, err := resolveTargets(opts)
	if err != nil {
		return err
	}
	if len(paths) != 1 {
		return clierrors.NewArgumentError("watch needs exactly one file",
			"Pass a single changelog path instead of a pattern")
	}
	opts.Targets = paths
	opts.Dir = ""

	w, err := watch.New(paths[0], debounce)
	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Prerequisite, "watching changelog")
	}

	if err := watchOnce(ctx, opts, out, errOut); err != nil {
		w.Close()
		return err
	}

	opts.Logger.Info("watching for changes", "path", w.Path(), "debounce", debounce)
	return w.Run(ctx, func(string) {
		if err := watchOnce(ctx, opts, out, errOut); err != nil {
			clierrors.FprintError(errOut, err, opts.Plain)
		}
	})
}

// watchOnce runs one check and prints a status line. Only errors that stop
// the check itself are returned.
func watchOnce(ctx context.Context, opts checkOptions, out, errOut io.Writer) error {
	stamp := time.Now().Format(time.TimeOnly)
	err := runCheck(ctx, opts, out, errOut)
	switch {
	case err == nil:
		status(out, opts.Plain, color.FgGreen, stamp+" "+opts.Targets[0]+" is valid")
		return nil
	case isExitError(err):
		status(out, opts.Plain, color.FgRed, stamp+" "+opts.Targets[0]+" has problems")
		return nil
	default:
		return err
	}
}

func status(w io.Writer, plain bool, attr color.Attribute, msg string) {
	if plain {
		io.WriteString(w, msg+"\n")
		return
	}
	color.New(attr).Fprintln(w, msg)
}
