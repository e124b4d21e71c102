package cli

import (
	"errors"
	"fmt"

	clierrors "github.com/ariel-frischer/changecheck/internal/errors"
)

// Exit codes for the changecheck CLI
// These codes support programmatic composition and CI/CD integration
const (
	// ExitSuccess indicates every checked changelog is valid
	ExitSuccess = 0

	// ExitValidationFailed indicates at least one changelog has problems
	ExitValidationFailed = 1

	// ExitInvalidArguments indicates invalid command arguments or configuration
	ExitInvalidArguments = 3

	// ExitMissingFile indicates a changelog or other required file is missing
	ExitMissingFile = 4
)

// exitError carries an exit code for failures that were already reported.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// NewExitError returns an error that makes the process exit with code
// without printing anything further.
func NewExitError(code int) error {
	return &exitError{code: code}
}

// ExitCode returns the exit code for an error returned by Execute.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		switch cliErr.Category {
		case clierrors.Argument, clierrors.Configuration:
			return ExitInvalidArguments
		case clierrors.Prerequisite:
			return ExitMissingFile
		}
	}
	return ExitValidationFailed
}

// isExitError reports whether err only carries an exit code.
func isExitError(err error) bool {
	var e *exitError
	return errors.As(err, &e)
}
