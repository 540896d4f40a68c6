// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// ValidationError is a CUE error rendered as "<path>: <message>" lines for
// one file. The original error stays reachable through Unwrap.
type ValidationError struct {
	FilePath string
	Lines    []string
	Cause    error
}

func (e *ValidationError) Error() string {
	switch len(e.Lines) {
	case 0:
		return fmt.Sprintf("%s: %v", e.FilePath, e.Cause)
	case 1:
		return fmt.Sprintf("%s: %s", e.FilePath, e.Lines[0])
	default:
		return fmt.Sprintf("%s: validation failed:\n  %s", e.FilePath, strings.Join(e.Lines, "\n  "))
	}
}

// Unwrap returns the error FormatError was given.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// FormatError turns err into a *ValidationError whose lines read
// "<path>: <message>", one per CUE error.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrs := errors.Errors(err)

	lines := make([]string, 0, len(cueErrs))
	for _, e := range cueErrs {
		path := formatPath(errors.Path(e))
		msg := e.Error()

		// CUE repeats the field path at the start of some messages.
		if path != "" && strings.HasPrefix(msg, path) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, path), ":"))
		}

		if path == "" {
			lines = append(lines, msg)
			continue
		}
		lines = append(lines, path+": "+msg)
	}

	return &ValidationError{FilePath: filePath, Lines: lines, Cause: err}
}

// formatPath renders a CUE selector path such as ["tasks", "0", "name"] as
// "tasks[0].name".
func formatPath(path []string) string {
	var b strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize rejects documents larger than maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", filename, len(data), maxSize)
	}
	return nil
}
