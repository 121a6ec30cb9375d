// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/invowk/intentkit/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the intentkit command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "intentkit",
		Short: "Compose and launch Android intents from Go",
		Long: TitleStyle.Render("intentkit") + SubtitleStyle.Render(" - Compose and launch Android intents from Go") + `

intentkit builds intents through the runtime's foreign interface, hands them
to the root activity and collects their results. The 'sim' commands run the
same builder chains against a simulated host, so they can be tried off-device.

` + SubtitleStyle.Render("Examples:") + `
  intentkit catalog                          List known actions, categories and flags
  intentkit sim send --text "Hello World!"   Share text through a simulated host
  intentkit sim pick --type "image/*"        Pick content and wait for the result
  intentkit config show                      Show current configuration`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&app.flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/intentkit/config.cue)")
	pf.StringVar(&app.flags.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides log.level)")

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(newCatalogCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newSimCommand(app))
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(ExitFailure)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
