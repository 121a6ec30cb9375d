// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// FormatCUE renders the configuration as a loadable config.cue.
	FormatCUE Format = "cue"
	// FormatTOML renders the configuration as TOML.
	FormatTOML Format = "toml"
	// FormatYAML renders the configuration as YAML.
	FormatYAML Format = "yaml"
)

// ErrInvalidFormat is returned when a Format value is not recognized.
var ErrInvalidFormat = errors.New("invalid dump format")

type (
	// Format is an output format of Dump.
	Format string

	// InvalidFormatError is returned when a Format value is not recognized.
	// It wraps ErrInvalidFormat for errors.Is() compatibility.
	InvalidFormatError struct {
		Value Format
	}
)

// Formats returns the supported dump formats.
func Formats() []Format { return []Format{FormatCUE, FormatTOML, FormatYAML} }

// IsValid returns whether the Format is supported.
func (f Format) IsValid() (bool, []error) {
	switch f {
	case FormatCUE, FormatTOML, FormatYAML:
		return true, nil
	default:
		return false, []error{&InvalidFormatError{Value: f}}
	}
}

// Error implements the error interface for InvalidFormatError.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format %q (valid: cue, toml, yaml)", e.Value)
}

// Unwrap returns ErrInvalidFormat for errors.Is() compatibility.
func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

// Dump renders cfg in format.
func Dump(cfg *Config, format Format) ([]byte, error) {
	if ok, errs := format.IsValid(); !ok {
		return nil, errs[0]
	}

	switch format {
	case FormatTOML:
		out, err := toml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode config as toml: %w", err)
		}
		return out, nil
	case FormatYAML:
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode config as yaml: %w", err)
		}
		return out, nil
	default:
		return []byte(GenerateCUE(cfg)), nil
	}
}
