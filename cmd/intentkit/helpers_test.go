// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"testing"
)

// runCLI executes the command tree with args against an empty config directory.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	return runCLIIn(t, t.TempDir(), args...)
}

func runCLIIn(t *testing.T, configDir string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	app := NewApp(Dependencies{
		ConfigDir: configDir,
		Stdout:    &out,
		Stderr:    &errOut,
	})
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error %v is not an *ExitError", err)
	}
	return exitErr.Code
}
