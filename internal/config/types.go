// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/invowk/intentkit/pkg/intent"

	"github.com/charmbracelet/log"
)

const (
	// LogLevelDebug traces every foreign call the bridge makes.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo reports launches and polled completions.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn reports only failures (default).
	LogLevelWarn LogLevel = "warn"
	// LogLevelError reports only errors.
	LogLevelError LogLevel = "error"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	maxPollBurst = 100
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidClassName is the sentinel error wrapped by InvalidClassNameError.
	ErrInvalidClassName = errors.New("invalid class name")
	// ErrInvalidPollConfig is the sentinel error wrapped by InvalidPollConfigError.
	ErrInvalidPollConfig = errors.New("invalid poll config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level of the CLI logger.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// ClassName is a host class in slash form, e.g. "android/content/Intent".
	ClassName string

	// InvalidClassNameError is returned for empty or non slash-form class names.
	InvalidClassNameError struct {
		Field string
		Value ClassName
	}

	// Duration is a time.Duration that reads and writes Go duration strings ("250ms").
	Duration time.Duration

	// InvalidPollConfigError collects the field errors of a PollConfig.
	InvalidPollConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Host names the host classes the bridge talks to.
		Host HostConfig `json:"host" mapstructure:"host" toml:"host" yaml:"host"`
		// Log configures the CLI logger.
		Log LogConfig `json:"log" mapstructure:"log" toml:"log" yaml:"log"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" mapstructure:"ui" toml:"ui" yaml:"ui"`
		// Poll paces result polling.
		Poll PollConfig `json:"poll" mapstructure:"poll" toml:"poll" yaml:"poll"`
		// Simulator scripts the simulated host used by 'intentkit sim'.
		Simulator SimulatorConfig `json:"simulator" mapstructure:"simulator" toml:"simulator" yaml:"simulator"`
	}

	// HostConfig names the host classes.
	HostConfig struct {
		IntentClass ClassName `json:"intent_class" mapstructure:"intent_class" toml:"intent_class" yaml:"intent_class"`
		URIClass    ClassName `json:"uri_class" mapstructure:"uri_class" toml:"uri_class" yaml:"uri_class"`
		ResultClass ClassName `json:"result_class" mapstructure:"result_class" toml:"result_class" yaml:"result_class"`
	}

	// LogConfig configures the CLI logger.
	LogConfig struct {
		Level LogLevel `json:"level" mapstructure:"level" toml:"level" yaml:"level"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme" toml:"color_scheme" yaml:"color_scheme"`
		// Verbose enables verbose error output
		Verbose bool `json:"verbose" mapstructure:"verbose" toml:"verbose" yaml:"verbose"`
	}

	// PollConfig paces AwaitResult.
	PollConfig struct {
		// Interval is the minimum time between two polls.
		Interval Duration `json:"interval" mapstructure:"interval" toml:"interval" yaml:"interval"`
		// Timeout bounds a whole wait; zero waits forever.
		Timeout Duration `json:"timeout" mapstructure:"timeout" toml:"timeout" yaml:"timeout"`
		// Burst is the number of polls allowed back to back.
		Burst int `json:"burst" mapstructure:"burst" toml:"burst" yaml:"burst"`
	}

	// SimulatorConfig controls how the simulated host answers tracked launches.
	SimulatorConfig struct {
		// ResultCode is reported in every completion (-1 OK, 0 canceled).
		ResultCode int32 `json:"result_code" mapstructure:"result_code" toml:"result_code" yaml:"result_code"`
		// ReplyWithData attaches a copy of the launched intent as payload.
		ReplyWithData bool `json:"reply_with_data" mapstructure:"reply_with_data" toml:"reply_with_data" yaml:"reply_with_data"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Host: HostConfig{
			IntentClass: intent.DefaultIntentClass,
			URIClass:    intent.DefaultURIClass,
			ResultClass: intent.DefaultResultClass,
		},
		Log: LogConfig{Level: LogLevelWarn},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
		Poll: PollConfig{
			Interval: Duration(intent.DefaultPollInterval),
			Timeout:  Duration(5 * time.Second),
			Burst:    1,
		},
		Simulator: SimulatorConfig{
			ResultCode:    -1,
			ReplyWithData: true,
		},
	}
}

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for _, v := range []interface{ IsValid() (bool, []error) }{
		c.Host, c.Log.Level, c.UI.ColorScheme, c.Poll,
	} {
		if ok, fieldErrs := v.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Classes converts the host section for intent.WithClasses.
func (h HostConfig) Classes() intent.Classes {
	return intent.Classes{
		Intent: string(h.IntentClass),
		URI:    string(h.URIClass),
		Result: string(h.ResultClass),
	}
}

// IsValid returns whether every class name is in slash form.
func (h HostConfig) IsValid() (bool, []error) {
	var errs []error
	for _, f := range []struct {
		field string
		value ClassName
	}{
		{"host.intent_class", h.IntentClass},
		{"host.uri_class", h.URIClass},
		{"host.result_class", h.ResultClass},
	} {
		if !intent.ValidClassName(string(f.value)) {
			errs = append(errs, &InvalidClassNameError{Field: f.field, Value: f.value})
		}
	}
	return len(errs) == 0, errs
}

// Error implements the error interface for InvalidClassNameError.
func (e *InvalidClassNameError) Error() string {
	return fmt.Sprintf("%s: invalid class name %q (expected slash form such as android/content/Intent)", e.Field, e.Value)
}

// Unwrap returns ErrInvalidClassName for errors.Is() compatibility.
func (e *InvalidClassNameError) Unwrap() error { return ErrInvalidClassName }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Level converts to a charmbracelet/log level; unknown values map to warn.
func (l LogLevel) Level() log.Level {
	lvl, err := log.ParseLevel(string(l))
	if err != nil {
		return log.WarnLevel
	}
	return lvl
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// IsValid returns whether the ColorScheme is one of the defined schemes.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// IsValid returns whether the poll settings are usable.
func (p PollConfig) IsValid() (bool, []error) {
	var errs []error
	if p.Interval <= 0 {
		errs = append(errs, fmt.Errorf("poll.interval must be positive, got %s", p.Interval))
	}
	if p.Timeout < 0 {
		errs = append(errs, fmt.Errorf("poll.timeout must not be negative, got %s", p.Timeout))
	}
	if p.Burst < 1 || p.Burst > maxPollBurst {
		errs = append(errs, fmt.Errorf("poll.burst must be between 1 and %d, got %d", maxPollBurst, p.Burst))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidPollConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidPollConfigError.
func (e *InvalidPollConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidPollConfig for errors.Is() compatibility.
func (e *InvalidPollConfigError) Unwrap() error { return ErrInvalidPollConfig }

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String formats the duration the way time.Duration does.
func (d Duration) String() string { return time.Duration(d).String() }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}
