// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/taskdeck/taskdeck/pkg/taskfile"
)

const (
	// ColorSchemeAuto detects the terminal background.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces the dark palette.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces the light palette.
	ColorSchemeLight ColorScheme = "light"

	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme selects the CLI palette.
	ColorScheme string

	// InvalidColorSchemeError wraps ErrInvalidColorScheme.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// LogLevel is the minimum level of diagnostic logging.
	LogLevel string

	// InvalidLogLevelError wraps ErrInvalidLogLevel.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidConfigError collects every invalid field of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Taskfile is the task file looked up when --taskfile is not given.
		Taskfile string       `json:"taskfile" mapstructure:"taskfile" toml:"taskfile"`
		UI       UIConfig     `json:"ui" mapstructure:"ui" toml:"ui"`
		Panel    PanelConfig  `json:"panel" mapstructure:"panel" toml:"panel"`
		Notify   NotifyConfig `json:"notify" mapstructure:"notify" toml:"notify"`
		Log      LogConfig    `json:"log" mapstructure:"log" toml:"log"`

		// Source is the file the values came from, empty for pure defaults.
		Source string `json:"-" mapstructure:"-" toml:"-"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		Verbose     bool        `json:"verbose" mapstructure:"verbose" toml:"verbose"`
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme" toml:"color_scheme"`
	}

	// PanelConfig configures panel output.
	PanelConfig struct {
		// DefaultSize applies to taskfile panels declared without a size.
		DefaultSize taskfile.PanelSize `json:"default_size" mapstructure:"default_size" toml:"default_size"`
		// Live redraws panels in place when stdout is a terminal.
		Live bool `json:"live" mapstructure:"live" toml:"live"`
	}

	// NotifyConfig selects the failure notifiers.
	NotifyConfig struct {
		Desktop bool `json:"desktop" mapstructure:"desktop" toml:"desktop"`
		Bell    bool `json:"bell" mapstructure:"bell" toml:"bell"`
	}

	// LogConfig configures diagnostic logging.
	LogConfig struct {
		Level LogLevel `json:"level" mapstructure:"level" toml:"level"`
	}
)

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// IsValid reports whether c is a known scheme.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: c}}
	}
}

func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// IsValid reports whether l is a known level.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Level converts l for charmbracelet/log. Unknown values map to info.
func (l LogLevel) Level() log.Level {
	lvl, err := log.ParseLevel(string(l))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// IsValid checks the typed fields. Environment overrides bypass the CUE
// schema, so this is the last line of validation.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.Taskfile) == "" {
		errs = append(errs, errors.New("taskfile must not be empty"))
	}
	if ok, e := c.UI.ColorScheme.IsValid(); !ok {
		errs = append(errs, e...)
	}
	if ok, e := c.Panel.DefaultSize.IsValid(); !ok {
		errs = append(errs, e...)
	}
	if ok, e := c.Log.Level.IsValid(); !ok {
		errs = append(errs, e...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Taskfile: taskfile.FileName,
		UI: UIConfig{
			Verbose:     false,
			ColorScheme: ColorSchemeAuto,
		},
		Panel: PanelConfig{
			DefaultSize: taskfile.DefaultPanelSize,
			Live:        true,
		},
		Notify: NotifyConfig{
			Desktop: true,
			Bell:    true,
		},
		Log: LogConfig{Level: LogLevelInfo},
	}
}
