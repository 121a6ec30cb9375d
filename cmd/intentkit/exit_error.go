// SPDX-License-Identifier: MPL-2.0

package cmd

import "fmt"

const (
	// ExitFailure is the exit code of a failed command.
	ExitFailure = 1
	// ExitUsage is the exit code of a command given invalid flag values.
	ExitUsage = 2
	// ExitCanceled is the exit code of 'sim' commands whose result was canceled.
	ExitCanceled = 3
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}
