package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	errorLabel  = color.New(color.FgRed, color.Bold).SprintFunc()
	errorMsg    = color.New(color.FgRed).SprintFunc()
	fixLabel    = color.New(color.FgGreen, color.Bold).SprintFunc()
	usageLabel  = color.New(color.FgCyan, color.Bold).SprintFunc()
	usageText   = color.New(color.FgCyan).SprintFunc()
	bullet      = color.New(color.FgGreen).SprintFunc()
	categoryFmt = color.New(color.FgYellow).SprintFunc()
)

// plainStyle renders every part as is.
func plainStyle(a ...interface{}) string {
	return fmt.Sprint(a...)
}

// FormatError formats a CLIError for display in the terminal.
// Colors are dropped automatically when stdout is not a terminal.
func FormatError(err *CLIError) string {
	if err == nil {
		return ""
	}
	return formatError(err, true)
}

// FormatErrorPlain formats a CLIError without colors.
func FormatErrorPlain(err *CLIError) string {
	if err == nil {
		return ""
	}
	return formatError(err, false)
}

func formatError(err *CLIError, useColors bool) string {
	style := func(f func(a ...interface{}) string) func(a ...interface{}) string {
		if useColors {
			return f
		}
		return plainStyle
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s]: %s\n",
		style(errorLabel)("Error"), style(categoryFmt)(err.Category.String()), style(errorMsg)(err.Message))

	if err.Usage != "" {
		fmt.Fprintf(&sb, "\n%s%s\n", style(usageLabel)("Usage: "), style(usageText)(err.Usage))
	}

	if len(err.Remediation) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", style(fixLabel)("To fix this:"))
		for _, step := range err.Remediation {
			fmt.Fprintf(&sb, "  %s %s\n", style(bullet)("•"), step)
		}
	}

	return sb.String()
}

// FprintError prints a formatted error to w. Errors that are not CLIErrors
// are shown as runtime errors.
func FprintError(w io.Writer, err error, plain bool) {
	if err == nil {
		return
	}
	cliErr := AsCLIError(err)
	if cliErr == nil {
		cliErr = &CLIError{Category: Runtime, Message: err.Error(), Err: err}
	}
	if plain {
		fmt.Fprint(w, FormatErrorPlain(cliErr))
		return
	}
	fmt.Fprint(w, FormatError(cliErr))
}
