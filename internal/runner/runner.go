// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"

	"github.com/taskdeck/taskdeck/internal/issue"
	"github.com/taskdeck/taskdeck/internal/notify"
	"github.com/taskdeck/taskdeck/pkg/taskfile"
)

type (
	// Result is the outcome of running a task.
	Result struct {
		Task     taskfile.TaskName
		ExitCode ExitCode
		// Output is the combined output captured in panel and quiet modes.
		// It is empty for passthrough runs.
		Output   string
		Duration time.Duration
		// Runs is 2 when a failure policy ran the task again.
		Runs int
		// Notified reports whether a failure notification was sent.
		Notified bool
	}

	// Runner executes tasks and applies their failure policy.
	Runner struct {
		exec     Executor
		notifier notify.Notifier
		logger   *log.Logger
		stderr   io.Writer
	}

	// Option configures a Runner.
	Option func(*Runner)
)

// WithNotifier sets the notifier used by rerun-notify tasks.
func WithNotifier(n notify.Notifier) Option {
	return func(r *Runner) { r.notifier = n }
}

// WithLogger sets the logger. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithStderr sets where the captured output of a failed quiet task is
// written. The default is os.Stderr.
func WithStderr(w io.Writer) Option {
	return func(r *Runner) { r.stderr = w }
}

// New returns a Runner that starts processes through e.
func New(e Executor, opts ...Option) *Runner {
	r := &Runner{exec: e}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	if r.stderr == nil {
		r.stderr = os.Stderr
	}
	return r
}

// Run executes t once and, when it fails under the rerun-notify policy, once
// more in passthrough mode followed by a notification. The returned exit code
// is that of the last run.
func (r *Runner) Run(ctx context.Context, t taskfile.Task) (*Result, error) {
	inv := BuildInvocation(t)
	r.logger.Debug("running task", "task", inv.Task, "argv", inv.Argv(), "env", inv.EnvList(), "output", inv.Output)

	res, err := r.exec.Execute(ctx, inv)
	if err != nil {
		return nil, startFailure(inv, err)
	}
	res.Runs = 1
	if res.ExitCode.IsSuccess() {
		r.logger.Debug("task finished", "task", inv.Task, "took", res.Duration)
		return res, nil
	}

	r.logger.Warn("task exited non-zero", "task", inv.Task, "exit", res.ExitCode)
	if t.OnFailure() != taskfile.FailureRerunNotify {
		// A failed quiet task with no policy still shows what it printed.
		if inv.Output.Mode == taskfile.OutputQuiet && res.Output != "" {
			if _, werr := io.WriteString(r.stderr, res.Output); werr != nil {
				r.logger.Warn("write task output", "task", inv.Task, "err", werr)
			}
		}
		return res, nil
	}

	summary := notify.ParseDiagnostics(res.Output)
	r.logger.Debug("re-running with output shown", "task", inv.Task, "diagnostics", summary.String())

	again, err := r.exec.Execute(ctx, inv.WithOutput(taskfile.Passthrough()))
	if err != nil {
		return nil, startFailure(inv, err)
	}
	again.Runs = 2

	if r.notifier != nil {
		n := notify.Notification{Task: inv.Task.String(), ExitCode: int(again.ExitCode), Summary: summary}
		if nerr := r.notifier.Notify(ctx, n); nerr != nil {
			r.logger.Warn("failure notification not delivered", "task", inv.Task, "err", nerr)
		}
		again.Notified = true
	}
	return again, nil
}

func startFailure(inv Invocation, err error) error {
	ec := issue.NewErrorContext().
		WithOperation(fmt.Sprintf("run task %q", inv.Task)).
		WithResource(inv.Program).
		Wrap(err)

	switch {
	case errors.Is(err, exec.ErrNotFound):
		ec.WithSuggestion(fmt.Sprintf("Install %s or add its directory to PATH", inv.Program))
		if inv.Program == "cargo" {
			ec.WithSuggestion("Install the Rust toolchain from https://rustup.rs")
		}
	case errors.Is(err, fs.ErrPermission):
		ec.WithSuggestion(fmt.Sprintf("Check that %s is executable", inv.Program))
	}
	ec.WithSuggestion(fmt.Sprintf("Override the %q command in %s", inv.Task, taskfile.FileName))
	return ec.BuildError()
}
