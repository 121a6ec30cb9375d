// SPDX-License-Identifier: MPL-2.0

// Package config handles intentkit configuration using Viper with CUE as the file format.
//
// Configuration is loaded from config.cue in the platform config directory
// (~/.config/intentkit on Linux, ~/Library/Application Support/intentkit on macOS,
// %APPDATA%\intentkit on Windows) or from the current directory. Files are validated
// against an embedded CUE schema (config_schema.cue). INTENTKIT_* environment
// variables override file values, e.g. INTENTKIT_LOG_LEVEL=debug.
//
// The effective configuration can be dumped as CUE, TOML or YAML.
package config
