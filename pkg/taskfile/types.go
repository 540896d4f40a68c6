// SPDX-License-Identifier: MPL-2.0

package taskfile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// OutputPassthrough hands the terminal to the subprocess.
	OutputPassthrough OutputMode = "passthrough"
	// OutputPanel captures output into a sized viewer region.
	OutputPanel OutputMode = "panel"
	// OutputQuiet captures output and shows nothing by itself.
	OutputQuiet OutputMode = "quiet"

	// FailureNone surfaces the subprocess result unmodified.
	FailureNone FailurePolicy = "none"
	// FailureRerunNotify re-runs a failed task in passthrough mode and sends a
	// notification.
	FailureRerunNotify FailurePolicy = "rerun-notify"

	// MaxPanelSize bounds panel heights to something a terminal can show.
	MaxPanelSize PanelSize = 200
)

var (
	// ErrInvalidTaskName is the sentinel wrapped by InvalidTaskNameError.
	ErrInvalidTaskName = errors.New("invalid task name")
	// ErrInvalidCommand is returned when a task has no program to run.
	ErrInvalidCommand = errors.New("invalid command")
	// ErrInvalidOutputMode is the sentinel wrapped by InvalidOutputModeError.
	ErrInvalidOutputMode = errors.New("invalid output mode")
	// ErrInvalidPanelSize is the sentinel wrapped by InvalidPanelSizeError.
	ErrInvalidPanelSize = errors.New("invalid panel size")
	// ErrInvalidFailurePolicy is the sentinel wrapped by InvalidFailurePolicyError.
	ErrInvalidFailurePolicy = errors.New("invalid failure policy")
	// ErrInvalidEnvName is the sentinel wrapped by InvalidEnvNameError.
	ErrInvalidEnvName = errors.New("invalid environment variable name")
	// ErrInvalidTask is the sentinel wrapped by InvalidTaskError.
	ErrInvalidTask = errors.New("invalid task")

	taskNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)
)

type (
	// TaskName identifies a task for dispatch.
	TaskName string

	// InvalidTaskNameError is returned for empty or malformed task names.
	InvalidTaskNameError struct {
		Value TaskName
	}

	// OutputMode selects how subprocess output reaches the user.
	OutputMode string

	// InvalidOutputModeError is returned for unknown output modes.
	InvalidOutputModeError struct {
		Value OutputMode
	}

	// PanelSize is the number of lines a panel shows.
	PanelSize int

	// InvalidPanelSizeError is returned when a panel size is out of range.
	InvalidPanelSizeError struct {
		Value PanelSize
	}

	// FailurePolicy selects what happens after a non-zero exit.
	FailurePolicy string

	// InvalidFailurePolicyError is returned for unknown failure policies.
	InvalidFailurePolicyError struct {
		Value FailurePolicy
	}

	// InvalidEnvNameError is returned for environment keys that cannot be
	// passed to a process.
	InvalidEnvNameError struct {
		Name string
	}

	// InvalidTaskError collects the field errors of one task.
	InvalidTaskError struct {
		Name        TaskName
		FieldErrors []error
	}
)

func (e *InvalidTaskNameError) Error() string {
	return fmt.Sprintf("invalid task name %q (must match %s)", e.Value, taskNamePattern)
}

func (e *InvalidTaskNameError) Unwrap() error { return ErrInvalidTaskName }

// IsValid reports whether n can be used as a task name.
func (n TaskName) IsValid() (bool, []error) {
	if !taskNamePattern.MatchString(string(n)) {
		return false, []error{&InvalidTaskNameError{Value: n}}
	}
	return true, nil
}

func (n TaskName) String() string { return string(n) }

func (e *InvalidOutputModeError) Error() string {
	return fmt.Sprintf("invalid output mode %q (valid: %s, %s, %s)", e.Value, OutputPassthrough, OutputPanel, OutputQuiet)
}

func (e *InvalidOutputModeError) Unwrap() error { return ErrInvalidOutputMode }

// IsValid reports whether m is a known output mode.
func (m OutputMode) IsValid() (bool, []error) {
	switch m {
	case OutputPassthrough, OutputPanel, OutputQuiet:
		return true, nil
	default:
		return false, []error{&InvalidOutputModeError{Value: m}}
	}
}

func (m OutputMode) String() string { return string(m) }

func (e *InvalidPanelSizeError) Error() string {
	return fmt.Sprintf("invalid panel size %d (must be 1-%d)", e.Value, MaxPanelSize)
}

func (e *InvalidPanelSizeError) Unwrap() error { return ErrInvalidPanelSize }

// IsValid reports whether s is a usable panel height.
func (s PanelSize) IsValid() (bool, []error) {
	if s < 1 || s > MaxPanelSize {
		return false, []error{&InvalidPanelSizeError{Value: s}}
	}
	return true, nil
}

func (e *InvalidFailurePolicyError) Error() string {
	return fmt.Sprintf("invalid failure policy %q (valid: %s, %s)", e.Value, FailureNone, FailureRerunNotify)
}

func (e *InvalidFailurePolicyError) Unwrap() error { return ErrInvalidFailurePolicy }

// IsValid reports whether p is a known failure policy. The zero value means
// FailureNone.
func (p FailurePolicy) IsValid() (bool, []error) {
	switch p {
	case "", FailureNone, FailureRerunNotify:
		return true, nil
	default:
		return false, []error{&InvalidFailurePolicyError{Value: p}}
	}
}

func (p FailurePolicy) String() string {
	if p == "" {
		return string(FailureNone)
	}
	return string(p)
}

func (e *InvalidEnvNameError) Error() string {
	return fmt.Sprintf("invalid environment variable name %q", e.Name)
}

func (e *InvalidEnvNameError) Unwrap() error { return ErrInvalidEnvName }

func validEnvName(name string) bool {
	return name != "" && !strings.ContainsAny(name, "=\x00")
}

func (e *InvalidTaskError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	if e.Name == "" {
		return "invalid task: " + strings.Join(msgs, "; ")
	}
	return fmt.Sprintf("invalid task %q: %s", e.Name, strings.Join(msgs, "; "))
}

func (e *InvalidTaskError) Unwrap() []error {
	return append([]error{ErrInvalidTask}, e.FieldErrors...)
}
