// SPDX-License-Identifier: MPL-2.0

package notify

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func failed() Notification {
	return Notification{Task: "clippy", ExitCode: 101, Summary: ParseDiagnostics(cargoOutput)}
}

func TestNotification_Text(t *testing.T) {
	t.Parallel()

	n := failed()
	if got := n.Title(); got != "taskdeck: clippy failed (exit 101)" {
		t.Errorf("Title() = %q", got)
	}
	body := n.Body()
	for _, want := range []string{"2 errors, 1 warning", "src/game_systems/trunks.rs:42:17: mismatched types"} {
		if !strings.Contains(body, want) {
			t.Errorf("Body() missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "src/menu.rs") {
		t.Errorf("Body() should only list error locations:\n%s", body)
	}

	empty := Notification{Task: "check", ExitCode: 1}
	if !strings.Contains(empty.Body(), "no compiler diagnostics") {
		t.Errorf("Body() without diagnostics = %q", empty.Body())
	}
}

func TestLogNotifier(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Formatter: log.LogfmtFormatter})
	if err := (LogNotifier{Logger: logger}).Notify(context.Background(), failed()); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"task failed", "task=clippy", "exit=101", "errors=2", "first=src/game_systems/trunks.rs:42:17"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}

	if err := (LogNotifier{}).Notify(context.Background(), failed()); err != nil {
		t.Errorf("nil logger Notify() error = %v", err)
	}
}

func TestBellNotifier(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := (BellNotifier{W: &buf}).Notify(context.Background(), failed()); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\a" {
		t.Errorf("bell wrote %q", buf.String())
	}
}

func TestDesktopNotifier(t *testing.T) {
	t.Parallel()

	t.Run("missing helper is a no-op", func(t *testing.T) {
		t.Parallel()

		called := false
		d := &DesktopNotifier{
			GOOS:     "linux",
			LookPath: func(string) (string, error) { return "", exec.ErrNotFound },
			Command: func(ctx context.Context, name string, args ...string) *exec.Cmd {
				called = true
				return exec.CommandContext(ctx, name, args...)
			},
		}
		if err := d.Notify(context.Background(), failed()); err != nil {
			t.Errorf("Notify() error = %v", err)
		}
		if called {
			t.Error("Command should not run when the helper is missing")
		}
	})

	t.Run("linux uses notify-send", func(t *testing.T) {
		t.Parallel()

		d := &DesktopNotifier{GOOS: "linux"}
		name, args := d.command(failed())
		if name != "notify-send" || args[len(args)-2] != failed().Title() {
			t.Errorf("command() = %s %q", name, args)
		}
	})

	t.Run("darwin uses osascript", func(t *testing.T) {
		t.Parallel()

		d := &DesktopNotifier{GOOS: "darwin"}
		name, args := d.command(failed())
		if name != "osascript" || !strings.Contains(args[1], "display notification") {
			t.Errorf("command() = %s %q", name, args)
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		t.Parallel()

		d := &DesktopNotifier{GOOS: "plan9"}
		if err := d.Notify(context.Background(), failed()); err != nil {
			t.Errorf("Notify() error = %v", err)
		}
	})
}

func TestMulti(t *testing.T) {
	t.Parallel()

	var calls []string
	errA := errors.New("a broke")
	m := Multi(
		NotifierFunc(func(context.Context, Notification) error { calls = append(calls, "a"); return errA }),
		nil,
		NotifierFunc(func(context.Context, Notification) error { calls = append(calls, "b"); return nil }),
	)

	err := m.Notify(context.Background(), failed())
	if !errors.Is(err, errA) {
		t.Errorf("Notify() error = %v, want errA", err)
	}
	if strings.Join(calls, ",") != "a,b" {
		t.Errorf("calls = %v, want a,b", calls)
	}
}
