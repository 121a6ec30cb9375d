// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/invowk/intentkit/internal/config"
	"github.com/invowk/intentkit/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `intentkit config` command tree.
// Subcommands that read configuration use the App's config provider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage intentkit configuration",
		Long: `Manage intentkit configuration.

Configuration is stored in:
  - Linux: ~/.config/intentkit/config.cue
  - macOS: ~/Library/Application Support/intentkit/config.cue
  - Windows: %APPDATA%\intentkit\config.cue

Every key can be overridden with an INTENTKIT_* environment variable, for
example INTENTKIT_POLL_INTERVAL=250ms.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd, app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(cmd, app)
		},
	})

	var format string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpConfig(cmd, app, config.Format(format))
		},
	}
	dumpCmd.Flags().StringVarP(&format, "format", "f", string(config.FormatCUE), "output format: "+formatList())
	cfgCmd.AddCommand(dumpCmd)

	return cfgCmd
}

func showConfig(cmd *cobra.Command, app *App) error {
	cfg, err := app.loadConfig(cmd.Context())
	if err != nil {
		rendered, _ := issue.Get(issue.ConfigLoadFailedId).Render("dark")
		fmt.Fprint(app.stderr, rendered)
		return app.fail(cmd, nil, ExitFailure, err)
	}

	w := app.stdout
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	path, err := config.ResolvePath(app.loadOptions())
	if err == nil && path != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("host"))
	fmt.Fprintf(w, "  intent_class: %s\n", valueStyle.Render(string(cfg.Host.IntentClass)))
	fmt.Fprintf(w, "  uri_class: %s\n", valueStyle.Render(string(cfg.Host.URIClass)))
	fmt.Fprintf(w, "  result_class: %s\n", valueStyle.Render(string(cfg.Host.ResultClass)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("log"))
	fmt.Fprintf(w, "  level: %s\n", valueStyle.Render(string(cfg.Log.Level)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("poll"))
	fmt.Fprintf(w, "  interval: %s\n", valueStyle.Render(cfg.Poll.Interval.String()))
	fmt.Fprintf(w, "  timeout: %s\n", valueStyle.Render(cfg.Poll.Timeout.String()))
	fmt.Fprintf(w, "  burst: %s\n", valueStyle.Render(fmt.Sprintf("%d", cfg.Poll.Burst)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("simulator"))
	fmt.Fprintf(w, "  result_code: %s\n", valueStyle.Render(fmt.Sprintf("%d", cfg.Simulator.ResultCode)))
	fmt.Fprintf(w, "  reply_with_data: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.Simulator.ReplyWithData)))

	return nil
}

func initConfig(cmd *cobra.Command, app *App) error {
	path, written, err := config.CreateDefaultConfig(app.configDir)
	if err != nil {
		return app.fail(cmd, nil, ExitFailure, fmt.Errorf("failed to create config: %w", err))
	}

	if !written {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func showConfigPath(cmd *cobra.Command, app *App) error {
	cfgDir := app.configDir
	if cfgDir == "" {
		dir, err := config.ConfigDir()
		if err != nil {
			return app.fail(cmd, nil, ExitFailure, err)
		}
		cfgDir = dir
	}

	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(app.stdout, "Config file: %s/%s.%s\n", cfgDir, config.ConfigFileName, config.ConfigFileExt)

	path, err := config.ResolvePath(app.loadOptions())
	if err == nil && path != "" {
		fmt.Fprintf(app.stdout, "Active file: %s\n", path)
	}
	return nil
}

func dumpConfig(cmd *cobra.Command, app *App, format config.Format) error {
	if ok, errs := format.IsValid(); !ok {
		return app.fail(cmd, nil, ExitUsage, issue.NewErrorContext().
			WithOperation("parse --format").
			WithResource(string(format)).
			WithSuggestion("Use one of: "+formatList()).
			WithIssue(issue.InvalidFlagValueId).
			Wrap(errs[0]).
			BuildError())
	}

	cfg, err := app.loadConfig(cmd.Context())
	if err != nil {
		return app.fail(cmd, nil, ExitFailure, err)
	}
	out, err := config.Dump(cfg, format)
	if err != nil {
		return app.fail(cmd, cfg, ExitFailure, err)
	}
	_, err = app.stdout.Write(out)
	return err
}

func formatList() string {
	names := make([]string, 0, len(config.Formats()))
	for _, f := range config.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
