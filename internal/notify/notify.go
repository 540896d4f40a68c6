// SPDX-License-Identifier: MPL-2.0

package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// maxLocations caps how many diagnostic locations a notification lists.
const maxLocations = 3

type (
	// Notification describes a failed task run.
	Notification struct {
		Task     string
		ExitCode int
		Summary  Summary
	}

	// Notifier delivers notifications.
	Notifier interface {
		Notify(ctx context.Context, n Notification) error
	}

	// NotifierFunc adapts a function to Notifier.
	NotifierFunc func(ctx context.Context, n Notification) error

	// LogNotifier writes notifications to a structured logger.
	LogNotifier struct {
		Logger *log.Logger
	}

	// BellNotifier rings the terminal bell.
	BellNotifier struct {
		W io.Writer
	}

	// DesktopNotifier raises a desktop notification through notify-send on
	// Linux and osascript on macOS. It silently does nothing when neither is
	// available.
	DesktopNotifier struct {
		// LookPath and Command default to os/exec; tests replace them.
		LookPath func(string) (string, error)
		Command  func(ctx context.Context, name string, args ...string) *exec.Cmd
		GOOS     string
	}

	multi []Notifier
)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }

// Title is the one-line headline of n.
func (n Notification) Title() string {
	return fmt.Sprintf("taskdeck: %s failed (exit %d)", n.Task, n.ExitCode)
}

// Body summarizes the diagnostics of n.
func (n Notification) Body() string {
	if len(n.Summary.Diagnostics) == 0 {
		return "no compiler diagnostics found in output"
	}
	var b strings.Builder
	b.WriteString(n.Summary.String())
	shown := 0
	for _, d := range n.Summary.Diagnostics {
		if d.Severity != SeverityError || d.Location() == "" {
			continue
		}
		if shown == maxLocations {
			b.WriteString("\n…")
			break
		}
		b.WriteString("\n" + d.Location() + ": " + d.Message)
		shown++
	}
	return b.String()
}

// Notify logs n at error level.
func (l LogNotifier) Notify(_ context.Context, n Notification) error {
	if l.Logger == nil {
		return nil
	}
	kv := []any{"task", n.Task, "exit", n.ExitCode, "errors", n.Summary.Errors, "warnings", n.Summary.Warnings}
	for _, d := range n.Summary.Diagnostics {
		if d.Severity == SeverityError && d.Location() != "" {
			kv = append(kv, "first", d.Location())
			break
		}
	}
	l.Logger.Error("task failed", kv...)
	return nil
}

// Notify writes BEL.
func (b BellNotifier) Notify(context.Context, Notification) error {
	if b.W == nil {
		return nil
	}
	_, err := io.WriteString(b.W, "\a")
	return err
}

// NewDesktopNotifier returns a DesktopNotifier for the running platform.
func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{LookPath: exec.LookPath, Command: exec.CommandContext, GOOS: runtime.GOOS}
}

// Notify runs the platform helper. A missing helper is not an error.
func (d *DesktopNotifier) Notify(ctx context.Context, n Notification) error {
	name, args := d.command(n)
	if name == "" {
		return nil
	}
	if _, err := d.LookPath(name); err != nil {
		return nil //nolint:nilerr // no notification daemon is fine
	}
	if out, err := d.Command(ctx, name, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("desktop notification via %s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (d *DesktopNotifier) command(n Notification) (string, []string) {
	switch d.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "notify-send", []string{"--urgency=critical", "--app-name=taskdeck", n.Title(), n.Body()}
	case "darwin":
		script := "display notification " + strconv.Quote(n.Body()) + " with title " + strconv.Quote(n.Title())
		return "osascript", []string{"-e", script}
	default:
		return "", nil
	}
}

// Multi fans a notification out to every non-nil notifier and joins their
// errors.
func Multi(notifiers ...Notifier) Notifier {
	out := make(multi, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (m multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, nt := range m {
		if err := nt.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
