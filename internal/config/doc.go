// SPDX-License-Identifier: MPL-2.0

// Package config handles taskdeck settings using Viper with CUE as the file format.
//
// Settings are read from the --config file when given, otherwise from
// config.cue in the platform config directory ($XDG_CONFIG_HOME/taskdeck on
// Linux, ~/Library/Application Support/taskdeck on macOS, %APPDATA%\taskdeck
// on Windows), then from ./config.cue. Files are validated against the
// embedded #Config schema. TASKDECK_* environment variables override file
// values, for example TASKDECK_PANEL_DEFAULT_SIZE=30.
package config
