// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/creack/pty"
	"golang.org/x/term"

	"github.com/taskdeck/taskdeck/internal/panel"
	"github.com/taskdeck/taskdeck/pkg/taskfile"
)

// frameOverhead is the horizontal space taken by the panel border and padding.
const frameOverhead = 4

type (
	// Executor starts one invocation and waits for it. A non-zero exit is
	// reported in the Result; the error is only for processes that could not
	// be started.
	Executor interface {
		Execute(ctx context.Context, inv Invocation) (*Result, error)
	}

	// ExecutorFunc adapts a function to Executor.
	ExecutorFunc func(ctx context.Context, inv Invocation) (*Result, error)

	// ExecExecutor runs invocations as host processes.
	ExecExecutor struct {
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		// Environ supplies the inherited environment. Defaults to os.Environ.
		Environ func() []string
		// Dir is the working directory. Empty means the current one.
		Dir string
		// LivePanels enables in-place panel redraws when Stdout is a terminal.
		LivePanels bool
	}
)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, inv Invocation) (*Result, error) {
	return f(ctx, inv)
}

// NewExecExecutor returns an ExecExecutor bound to the process's stdio.
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Environ:    os.Environ,
		LivePanels: true,
	}
}

// Execute runs inv with the stdio routing its output mode asks for.
func (e *ExecExecutor) Execute(ctx context.Context, inv Invocation) (*Result, error) {
	cmd := e.command(ctx, inv)
	start := time.Now()

	var (
		code ExitCode
		out  string
		err  error
	)
	switch inv.Output.Mode {
	case taskfile.OutputPanel:
		code, out, err = e.runPanel(cmd, inv)
	case taskfile.OutputQuiet:
		code, out, err = e.runQuiet(cmd)
	default:
		cmd.Stdin, cmd.Stdout, cmd.Stderr = e.Stdin, e.Stdout, e.Stderr
		code, err = wait(cmd, cmd.Start())
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Task:     inv.Task,
		ExitCode: code,
		Output:   out,
		Duration: time.Since(start),
	}, nil
}

func (e *ExecExecutor) command(ctx context.Context, inv Invocation) *exec.Cmd {
	cmd := exec.CommandContext(ctx, inv.Program, inv.Args...)
	cmd.Dir = e.Dir
	environ := e.Environ
	if environ == nil {
		environ = os.Environ
	}
	cmd.Env = inv.Environ(environ())
	return cmd
}

func (e *ExecExecutor) runQuiet(cmd *exec.Cmd) (ExitCode, string, error) {
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	code, err := wait(cmd, cmd.Start())
	return code, buf.String(), err
}

// runPanel streams merged output into a panel while keeping the full text for
// diagnostics. On a terminal the child gets a pseudo-terminal so it keeps its
// colors; elsewhere, or where ptys are unsupported, plain pipes are used.
func (e *ExecExecutor) runPanel(cmd *exec.Cmd, inv Invocation) (ExitCode, string, error) {
	width, tty := e.terminalWidth()
	p := panel.New(e.Stdout, panel.Options{
		Height: int(inv.Output.Size),
		Width:  max(width-frameOverhead, 0),
		Title:  inv.Task.String(),
		Live:   tty && e.LivePanels,
	})
	var full bytes.Buffer
	sink := io.MultiWriter(p, &full)

	var (
		code ExitCode
		err  error
	)
	if tty {
		code, err = runPty(cmd, sink, inv.Output.Size, width)
	} else {
		err = errPtyUnsupported
	}
	if errors.Is(err, errPtyUnsupported) {
		cmd.Stdout = sink
		cmd.Stderr = sink
		code, err = wait(cmd, cmd.Start())
	}
	if err != nil {
		_ = p.Close("failed to start")
		return 0, "", err
	}

	if cerr := p.Close("exit " + code.String()); cerr != nil {
		return code, full.String(), fmt.Errorf("render panel: %w", cerr)
	}
	return code, full.String(), nil
}

// terminalWidth reports the width of Stdout and whether it is a terminal.
func (e *ExecExecutor) terminalWidth() (int, bool) {
	f, ok := e.Stdout.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, true
	}
	return w, true
}

var errPtyUnsupported = errors.New("pty unsupported")

func runPty(cmd *exec.Cmd, sink io.Writer, rows taskfile.PanelSize, cols int) (ExitCode, error) {
	ws := &pty.Winsize{Rows: uint16(rows)}
	if cols > frameOverhead {
		ws.Cols = uint16(cols - frameOverhead)
	}
	ptmx, err := pty.StartWithSize(cmd, ws)
	if errors.Is(err, pty.ErrUnsupported) {
		return 0, errPtyUnsupported
	}
	if err != nil {
		return 0, err
	}
	defer ptmx.Close()

	done := make(chan struct{})
	go func() {
		// Reading a pty whose child has exited ends with EIO on Linux.
		_, _ = io.Copy(sink, ptmx)
		close(done)
	}()
	code, err := wait(cmd, nil)
	<-done
	return code, err
}

// wait finishes a started command. startErr short-circuits.
func wait(cmd *exec.Cmd, startErr error) (ExitCode, error) {
	if startErr != nil {
		return 0, startErr
	}
	err := cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitCodeOf(exitErr.ExitCode()), nil
	}
	return 0, err
}
