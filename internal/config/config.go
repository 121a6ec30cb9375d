// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/invowk/intentkit/internal/issue"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "intentkit"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides: INTENTKIT_POLL_INTERVAL=250ms.
	EnvPrefix = "INTENTKIT"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the intentkit configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string
	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(configDir, AppName), nil
}

// ResolvePath returns the config file that Load would read, or "" when none
// exists and defaults apply.
func ResolvePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, nil
	}
	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	for _, p := range []string{
		filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt),
		ConfigFileName + "." + ConfigFileExt,
	} {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFilePath != "" && !fileExists(opts.ConfigFilePath) {
		return nil, "", loadError(opts.ConfigFilePath,
			fmt.Errorf("config file not found: %s", opts.ConfigFilePath),
			"Verify the file path is correct",
			"Use 'intentkit config show' to see the default configuration")
	}

	path, err := ResolvePath(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", loadError(path, err,
				"Check that the file contains valid CUE syntax",
				"Verify the configuration values match the expected schema",
				"Use 'intentkit config init' to write a fresh default file")
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, "", loadError(path, fmt.Errorf("failed to parse config: %w", err),
			"Check INTENTKIT_* environment variables for malformed values")
	}

	if ok, errs := cfg.IsValid(); !ok {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("Run 'intentkit config show' to inspect the effective values").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errors.Join(errs...)).
			BuildError()
	}
	return &cfg, path, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("host.intent_class", string(d.Host.IntentClass))
	v.SetDefault("host.uri_class", string(d.Host.URIClass))
	v.SetDefault("host.result_class", string(d.Host.ResultClass))
	v.SetDefault("log.level", string(d.Log.Level))
	v.SetDefault("ui.color_scheme", string(d.UI.ColorScheme))
	v.SetDefault("ui.verbose", d.UI.Verbose)
	v.SetDefault("poll.interval", d.Poll.Interval.String())
	v.SetDefault("poll.timeout", d.Poll.Timeout.String())
	v.SetDefault("poll.burst", d.Poll.Burst)
	v.SetDefault("simulator.result_code", d.Simulator.ResultCode)
	v.SetDefault("simulator.reply_with_data", d.Simulator.ReplyWithData)
}

func loadError(resource string, err error, suggestions ...string) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(resource).
		WithSuggestions(suggestions...).
		WithIssue(issue.ConfigLoadFailedId).
		Wrap(err).
		BuildError()
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config file into dir (the platform config
// directory when empty) unless one exists. It returns the file path and whether
// it was written.
func CreateDefaultConfig(dir string) (string, bool, error) {
	cfgDir, err := configDirWithOverride(dir)
	if err != nil {
		return "", false, err
	}
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}
	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, true, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// intentkit configuration file\n\n")

	sb.WriteString("host: {\n")
	fmt.Fprintf(&sb, "\tintent_class: %q\n", cfg.Host.IntentClass)
	fmt.Fprintf(&sb, "\turi_class:    %q\n", cfg.Host.URIClass)
	fmt.Fprintf(&sb, "\tresult_class: %q\n", cfg.Host.ResultClass)
	sb.WriteString("}\n")

	sb.WriteString("\nlog: {\n")
	fmt.Fprintf(&sb, "\tlevel: %q\n", cfg.Log.Level)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose:      %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	sb.WriteString("\npoll: {\n")
	fmt.Fprintf(&sb, "\tinterval: %q\n", cfg.Poll.Interval.String())
	fmt.Fprintf(&sb, "\ttimeout:  %q\n", cfg.Poll.Timeout.String())
	fmt.Fprintf(&sb, "\tburst:    %d\n", cfg.Poll.Burst)
	sb.WriteString("}\n")

	sb.WriteString("\nsimulator: {\n")
	fmt.Fprintf(&sb, "\tresult_code:     %d\n", cfg.Simulator.ResultCode)
	fmt.Fprintf(&sb, "\treply_with_data: %v\n", cfg.Simulator.ReplyWithData)
	sb.WriteString("}\n")

	return sb.String()
}
