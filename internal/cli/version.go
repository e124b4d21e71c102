package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/ariel-frischer/changecheck/internal/build"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// SourceURL is the project source URL
const SourceURL = "https://github.com/ariel-frischer/changecheck"

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Display version information (v)",
	Long:    "Display version, commit, build date, and Go version information for changecheck",
	Example: `  # Show version info
  changecheck version

  # Plain output (for scripts)
  changecheck version --plain`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout(), plainOutput())
	},
}

func init() {
	versionCmd.GroupID = GroupInfo
	rootCmd.AddCommand(versionCmd)
}

func printVersion(w io.Writer, plain bool) {
	info := []struct {
		label string
		value string
	}{
		{"commit", truncateCommit(build.Commit)},
		{"built", build.BuildDate},
		{"go", runtime.Version()},
		{"platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)},
		{"source", SourceURL},
	}

	if plain {
		fmt.Fprintf(w, "changecheck %s\n", build.Version)
		for _, row := range info {
			fmt.Fprintf(w, "%s: %s\n", row.label, row.value)
		}
		return
	}

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(w, "%s %s\n", cyan("changecheck"), build.Version)
	for _, row := range info {
		fmt.Fprintf(w, "  %s %s\n", dim(fmt.Sprintf("%-9s", row.label)), row.value)
	}
}

// truncateCommit shortens a full commit hash to 7 characters
func truncateCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
