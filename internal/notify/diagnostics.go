// SPDX-License-Identifier: MPL-2.0

package notify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

var (
	// Matches "error[E0308]: mismatched types" and "warning: unused import".
	headerPattern = regexp.MustCompile(`^(error|warning)(\[[A-Z]\d+\])?: (.+)$`)
	// Matches "  --> src/main.rs:12:5".
	locationPattern = regexp.MustCompile(`^\s*--> (.+):(\d+):(\d+)$`)
)

type (
	// Severity is a compiler diagnostic level.
	Severity string

	// Diagnostic is one compiler message extracted from task output.
	Diagnostic struct {
		Severity Severity
		Code     string
		Message  string
		File     string
		Line     int
		Column   int
	}

	// Summary counts the diagnostics of one run.
	Summary struct {
		Errors      int
		Warnings    int
		Diagnostics []Diagnostic
	}
)

// Location returns "file:line:col", or "" when unknown.
func (d Diagnostic) Location() string {
	if d.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", d.File, d.Line, d.Column)
}

// ParseDiagnostics extracts rustc/cargo style diagnostics from output. ANSI
// styling is stripped first. Cargo's trailing "could not compile" and
// "generated N warnings" lines are not counted.
func ParseDiagnostics(output string) Summary {
	var (
		sum     Summary
		pending *Diagnostic
	)

	flush := func() {
		if pending == nil {
			return
		}
		sum.Diagnostics = append(sum.Diagnostics, *pending)
		if pending.Severity == SeverityError {
			sum.Errors++
		} else {
			sum.Warnings++
		}
		pending = nil
	}

	for line := range strings.Lines(ansi.Strip(output)) {
		line = strings.TrimRight(line, "\r\n")

		if m := headerPattern.FindStringSubmatch(line); m != nil {
			flush()
			if isCargoSummary(m[3]) {
				continue
			}
			pending = &Diagnostic{
				Severity: Severity(m[1]),
				Code:     strings.Trim(m[2], "[]"),
				Message:  m[3],
			}
			continue
		}

		if pending != nil && pending.File == "" {
			if m := locationPattern.FindStringSubmatch(line); m != nil {
				pending.File = m[1]
				pending.Line, _ = strconv.Atoi(m[2])
				pending.Column, _ = strconv.Atoi(m[3])
			}
		}
	}
	flush()

	return sum
}

func isCargoSummary(msg string) bool {
	return strings.HasPrefix(msg, "could not compile") ||
		strings.HasPrefix(msg, "aborting due to") ||
		(strings.Contains(msg, "generated ") && strings.Contains(msg, "warning"))
}

// String renders "2 errors, 1 warning" style counts.
func (s Summary) String() string {
	return plural(s.Errors, "error") + ", " + plural(s.Warnings, "warning")
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}
