package errors

import (
	"fmt"
	"strings"
)

// Common error messages for the changecheck CLI.

// ChangelogNotFound creates an error for a changelog path that does not exist.
func ChangelogNotFound(path string, err error) *CLIError {
	e := NewPrerequisiteError(
		fmt.Sprintf("changelog file not found: %s", path),
		"Check that the path is correct",
		"Set the default file with 'changelog:' in .changecheck.yml or CHANGECHECK_CHANGELOG",
	)
	e.Err = err
	return e
}

// NoFilesMatched creates an error for a glob that matched nothing.
func NoFilesMatched(pattern string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("no files match pattern: %s", pattern),
		"changecheck check [path|glob ...]",
		"Quote the pattern so the shell does not expand it",
		"Example: changecheck check '**/CHANGELOG.md'",
	)
}

// InvalidPattern creates an error for a malformed glob.
func InvalidPattern(pattern string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid glob pattern: %s", pattern),
		"Check for unbalanced brackets or braces in the pattern",
	)
}

// InvalidFormat creates an error for an unknown --format value.
func InvalidFormat(format string, valid []string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("invalid output format: %s", format),
		"changecheck check --format "+strings.Join(valid, "|"),
		"Valid formats: "+strings.Join(valid, ", "),
	)
}

// InvalidFlagCombination creates an error for incompatible flag combinations.
func InvalidFlagCombination(flags string, reason string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid flag combination: %s", flags),
		reason,
		"Use 'changecheck <command> --help' to see valid options",
	)
}

// ReleaseNotFound creates an error for a --release that is not in the changelog.
func ReleaseNotFound(version string, available []string) *CLIError {
	remediation := []string{"Check the release header spelling, e.g. v1.2.3 or Unreleased"}
	if len(available) > 0 {
		remediation = append(remediation, "Available releases: "+strings.Join(available, ", "))
	}
	return NewArgumentError(fmt.Sprintf("release not found: %s", version), remediation...)
}

// ConfigParseError creates an error for an invalid config file.
func ConfigParseError(err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		"failed to load configuration",
		"Check .changecheck.yml and ~/.config/changecheck/config.yml for YAML syntax errors",
		"Check CHANGECHECK_* environment variables for invalid values",
	)
}

// FileNotWritable creates an error when a fixed file cannot be written.
func FileNotWritable(path string, err error) *CLIError {
	e := NewRuntimeError(
		fmt.Sprintf("cannot write to file: %s", path),
		"Check file permissions: ls -la "+path,
		"Ensure the parent directory is writable",
	)
	e.Err = err
	return e
}

// GitNotRepository creates an error when not in a git repository.
func GitNotRepository() *CLIError {
	return NewPrerequisiteError(
		"not a git repository",
		"Pass the changelog path explicitly: changecheck check path/to/CHANGELOG.md",
		"Or navigate to an existing repository",
	)
}
