// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/invowk/intentkit/internal/config"
	"github.com/invowk/intentkit/internal/issue"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives an App reference and reads configuration and streams through it.
	App struct {
		Config    config.Provider
		configDir string
		stdout    io.Writer
		stderr    io.Writer
		flags     rootFlags
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		// ConfigDir overrides the platform config directory.
		ConfigDir string
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// rootFlags holds the persistent flags of the root command.
	rootFlags struct {
		verbose    bool
		configPath string
		logLevel   string
	}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:    deps.Config,
		configDir: deps.ConfigDir,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		ConfigFilePath: a.flags.configPath,
		ConfigDirPath:  a.configDir,
	}
}

// loadConfig loads the configuration and applies the root flag overrides.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		return nil, err
	}

	if a.flags.logLevel != "" {
		level := config.LogLevel(a.flags.logLevel)
		if ok, errs := level.IsValid(); !ok {
			return nil, issue.NewErrorContext().
				WithOperation("parse --log-level").
				WithResource(a.flags.logLevel).
				WithSuggestion("Use one of: debug, info, warn, error").
				WithIssue(issue.InvalidFlagValueId).
				Wrap(errors.Join(errs...)).
				BuildError()
		}
		cfg.Log.Level = level
	} else if a.flags.verbose {
		cfg.Log.Level = config.LogLevelDebug
	}
	if a.flags.verbose {
		cfg.UI.Verbose = true
	}
	return cfg, nil
}

// newLogger builds the CLI logger. It writes to stderr so command output stays
// machine-readable.
func (a *App) newLogger(cfg *config.Config) *log.Logger {
	return log.NewWithOptions(a.stderr, log.Options{
		Prefix: "intentkit",
		Level:  cfg.Log.Level.Level(),
	})
}

// fail prints err the way the CLI displays errors and returns an ExitError that
// tells Execute to exit with code without printing err again.
func (a *App) fail(cmd *cobra.Command, cfg *config.Config, code int, err error) error {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	verbose := a.flags.verbose || (cfg != nil && cfg.UI.Verbose)
	fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))

	var ae *issue.ActionableError
	if verbose && errors.As(err, &ae) && ae.Issue != 0 {
		if entry := issue.Get(ae.Issue); entry != nil {
			if rendered, rerr := entry.Render(glamourStyle(cfg)); rerr == nil {
				fmt.Fprint(a.stderr, rendered)
			}
		}
	}
	return &ExitError{Code: code, Err: err}
}

// glamourStyle maps the configured color scheme to a glamour style name.
func glamourStyle(cfg *config.Config) string {
	if cfg == nil {
		return "auto"
	}
	switch cfg.UI.ColorScheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}
