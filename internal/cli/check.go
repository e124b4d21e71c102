package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/ariel-frischer/changecheck/internal/changelog"
	clierrors "github.com/ariel-frischer/changecheck/internal/errors"
	"github.com/ariel-frischer/changecheck/internal/git"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Output formats of the check command.
const (
	FormatText    = "text"
	FormatYAML    = "yaml"
	FormatSummary = "summary"
)

var outputFormats = []string{FormatText, FormatYAML, FormatSummary}

var (
	checkFixFlag     bool
	checkFormatFlag  string
	checkReleaseFlag string
)

var checkCmd = &cobra.Command{
	Use:   "check [path|glob ...]",
	Short: "Validate changelog files",
	Long: `Validate one or more changelog files.

Without arguments the file named by the 'changelog' config key is checked,
looked up in the current directory and then at the repository root.
Arguments may be paths or glob patterns; '**' matches any number of
directories. Files are checked concurrently and reported in argument order.

Output formats:
  text     problems with their line numbers, nothing when valid (default)
  yaml     releases, change types and entries as YAML
  summary  entry and problem counts per release and change type

Exit codes: 0 valid, 1 problems found, 3 invalid arguments, 4 file not found.`,
	Example: `  changecheck check
  changecheck check docs/CHANGELOG.md --fix
  changecheck check '**/CHANGELOG.md' --format summary
  changecheck check --format yaml --release v15.0.0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := checkOptions{
			Targets:     args,
			Default:     cfg.Changelog,
			Fix:         cfg.Fix,
			Format:      cfg.Format,
			Plain:       plainOutput(),
			Release:     checkReleaseFlag,
			MaxParallel: cfg.MaxParallel,
			Logger:      logger,
		}
		if cmd.Flags().Changed("fix") {
			opts.Fix = checkFixFlag
		}
		if cmd.Flags().Changed("format") {
			opts.Format = checkFormatFlag
		}
		return runCheck(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	checkCmd.GroupID = GroupChecks
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkFixFlag, "fix", false, "Write corrected files back to disk")
	checkCmd.Flags().StringVarP(&checkFormatFlag, "format", "f", FormatText, "Output format: text, yaml or summary")
	checkCmd.Flags().StringVarP(&checkReleaseFlag, "release", "r", "", "Only print this release (yaml and summary formats)")
}

// checkOptions holds everything runCheck needs, resolved from config and flags.
type checkOptions struct {
	// Targets are paths or glob patterns. Empty means Default.
	Targets []string
	Default string
	// Dir resolves relative targets. Empty means the working directory.
	Dir         string
	Fix         bool
	Format      string
	Plain       bool
	Release     string
	MaxParallel int
	Logger      *log.Logger
}

// checkResult is the outcome for one file.
type checkResult struct {
	path      string
	changelog *changelog.Changelog
	fixed     bool
}

// runCheck validates every target and writes the reports in target order.
func runCheck(ctx context.Context, opts checkOptions, out, errOut io.Writer) error {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	opts.Format = strings.ToLower(opts.Format)
	if !slices.Contains(outputFormats, opts.Format) {
		return clierrors.InvalidFormat(opts.Format, outputFormats)
	}
	if opts.Release != "" && opts.Format == FormatText {
		return clierrors.InvalidFlagCombination("--release with --format text",
			"--release selects what --format yaml or --format summary prints")
	}

	paths, err := resolveTargets(opts)
	if err != nil {
		return err
	}

	results := make([]*checkResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.MaxParallel, 1))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := checkFile(path, opts)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := false
	for i, r := range results {
		if err := writeResult(r, i, len(results), opts, out, errOut); err != nil {
			return err
		}
		if !r.changelog.Valid() {
			failed = true
		}
	}
	if failed {
		return NewExitError(ExitValidationFailed)
	}
	return nil
}

// checkFile loads one changelog and writes the fixed version when asked to.
func checkFile(path string, opts checkOptions) (*checkResult, error) {
	opts.Logger.Debug("checking changelog", "path", path)

	c, err := changelog.Load(path)
	if err != nil {
		if errors.Is(err, changelog.ErrNotFound) {
			return nil, clierrors.ChangelogNotFound(path, err)
		}
		return nil, clierrors.WrapWithMessage(err, clierrors.Runtime, "reading changelog")
	}

	result := &checkResult{path: path, changelog: c}
	if opts.Fix && c.Changed() {
		if err := c.WriteFixed(path); err != nil {
			return nil, clierrors.FileNotWritable(path, err)
		}
		result.fixed = true
		opts.Logger.Info("wrote fixed changelog", "path", path)
	}

	opts.Logger.Debug("checked changelog", "path", path,
		"releases", len(c.Releases), "entries", c.EntryCount(), "problems", len(c.Problems))
	return result, nil
}

// writeResult prints one file's outcome. In the yaml and summary formats the
// problem report goes to errOut so out stays machine-readable.
func writeResult(r *checkResult, index, total int, opts checkOptions, out, errOut io.Writer) error {
	fopts := changelog.FormatOptions{Plain: opts.Plain}
	c := r.changelog

	if opts.Release != "" {
		release, err := c.FindRelease(opts.Release)
		if err != nil {
			var notFound *changelog.ReleaseNotFoundError
			if errors.As(err, &notFound) {
				return clierrors.ReleaseNotFound(notFound.Version, notFound.AvailableReleases)
			}
			return err
		}
		c = c.Only(release)
	}

	switch opts.Format {
	case FormatYAML:
		if index > 0 {
			fmt.Fprintln(out, "---")
		}
		if total > 1 {
			fmt.Fprintf(out, "# %s\n", r.path)
		}
		if err := changelog.RenderYAML(c, out); err != nil {
			return err
		}
		if err := changelog.FormatReport(r.changelog, errOut, fopts); err != nil {
			return err
		}
	case FormatSummary:
		if total > 1 {
			if index > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s\n", r.path)
		}
		if err := changelog.FormatSummary(c, out, fopts); err != nil {
			return err
		}
		if err := changelog.FormatReport(r.changelog, errOut, fopts); err != nil {
			return err
		}
	default:
		if err := changelog.FormatReport(c, out, fopts); err != nil {
			return err
		}
	}

	if r.fixed {
		return changelog.FormatFixed(r.path, errOut, fopts)
	}
	return nil
}

// resolveTargets expands the targets into an ordered list of files without
// duplicates.
func resolveTargets(opts checkOptions) ([]string, error) {
	if len(opts.Targets) == 0 {
		path, err := resolveDefault(opts.Dir, opts.Default)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		key := filepath.Clean(p)
		if !seen[key] {
			seen[key] = true
			paths = append(paths, p)
		}
	}

	for _, target := range opts.Targets {
		if !isGlob(target) {
			add(joinDir(opts.Dir, target))
			continue
		}
		matches, err := expandGlob(joinDir(opts.Dir, target))
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, clierrors.NoFilesMatched(target)
		}
		for _, m := range matches {
			add(m)
		}
	}
	return paths, nil
}

// resolveDefault finds the configured changelog in dir or, failing that, at
// the root of the repository containing dir. When neither exists the path in
// dir is returned so the missing file is reported against it.
func resolveDefault(dir, name string) (string, error) {
	candidate := joinDir(dir, name)
	if filepath.IsAbs(name) || fileExists(candidate) {
		return candidate, nil
	}

	if !git.IsGitRepository(dir) {
		return candidate, nil
	}
	root, err := git.RepositoryRoot(dir)
	if err != nil {
		return "", clierrors.WrapWithMessage(err, clierrors.Runtime, "locating repository root")
	}
	if atRoot := filepath.Join(root, name); fileExists(atRoot) {
		return atRoot, nil
	}
	return candidate, nil
}

// expandGlob returns the regular files matching pattern in lexical order.
func expandGlob(pattern string) ([]string, error) {
	if !doublestar.ValidatePathPattern(pattern) {
		return nil, clierrors.InvalidPattern(pattern)
	}
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, clierrors.InvalidPattern(pattern)
	}

	var files []string
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

func isGlob(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

func joinDir(dir, path string) string {
	if dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
