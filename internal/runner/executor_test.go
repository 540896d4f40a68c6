// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/taskdeck/taskdeck/pkg/taskfile"
)

const helperEnv = "TASKDECK_TEST_HELPER"

// TestHelperProcess is re-executed as the child process by the executor tests.
func TestHelperProcess(t *testing.T) {
	if os.Getenv(helperEnv) != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) < 2 {
		os.Exit(2)
	}
	switch args[1] {
	case "lines":
		n, _ := strconv.Atoi(args[2])
		for i := range n {
			fmt.Printf("line %d\n", i)
		}
		fmt.Fprintln(os.Stderr, "to stderr")
	case "env":
		fmt.Print(os.Getenv(args[2]))
	case "exit":
		code, _ := strconv.Atoi(args[2])
		os.Exit(code)
	}
	os.Exit(0)
}

func helperInvocation(output taskfile.Output, args ...string) Invocation {
	return Invocation{
		Task:    "helper",
		Program: os.Args[0],
		Args:    append([]string{"-test.run=^TestHelperProcess$", "--"}, args...),
		Env:     map[string]string{helperEnv: "1"},
		Output:  output,
	}
}

func newTestExecutor(stdout *bytes.Buffer) *ExecExecutor {
	return &ExecExecutor{
		Stdout:  stdout,
		Stderr:  stdout,
		Environ: func() []string { return []string{"RUST_LOG=warn", "PATH=" + os.Getenv("PATH")} },
	}
}

func TestExecExecutor_ExitCode(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	res, err := newTestExecutor(&out).Execute(context.Background(), helperInvocation(taskfile.Passthrough(), "exit", "101"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.ExitCode != 101 || res.Task != "helper" {
		t.Errorf("Result = %+v", res)
	}
}

func TestExecExecutor_EnvOverridesWin(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	inv := helperInvocation(taskfile.Passthrough(), "env", "RUST_LOG")
	inv.Env["RUST_LOG"] = "jamming_chipper=info"

	if _, err := newTestExecutor(&out).Execute(context.Background(), inv); err != nil {
		t.Fatal(err)
	}
	if out.String() != "jamming_chipper=info" {
		t.Errorf("child saw RUST_LOG=%q", out.String())
	}
	if os.Getenv("RUST_LOG") == "jamming_chipper=info" {
		t.Error("parent environment was modified")
	}
}

func TestExecExecutor_Quiet(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	res, err := newTestExecutor(&out).Execute(context.Background(), helperInvocation(taskfile.Quiet(), "lines", "3"))
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("quiet mode wrote to stdout: %q", out.String())
	}
	if !strings.Contains(res.Output, "line 2") || !strings.Contains(res.Output, "to stderr") {
		t.Errorf("Output = %q", res.Output)
	}
}

func TestExecExecutor_PanelWithoutTerminal(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	res, err := newTestExecutor(&out).Execute(context.Background(), helperInvocation(taskfile.Panel(2), "lines", "5"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Output, "line 0") {
		t.Errorf("full output not captured: %q", res.Output)
	}

	shown := ansi.Strip(out.String())
	if strings.Contains(shown, "line 0") {
		t.Errorf("panel should only show the tail:\n%s", shown)
	}
	for _, want := range []string{"helper", "exit 0"} {
		if !strings.Contains(shown, want) {
			t.Errorf("panel missing %q:\n%s", want, shown)
		}
	}
}

func TestExecExecutor_ProgramNotFound(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	inv := Invocation{Task: "missing", Program: "taskdeck-no-such-program", Output: taskfile.Passthrough()}
	_, err := newTestExecutor(&out).Execute(context.Background(), inv)
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("Execute() error = %v, want exec.ErrNotFound", err)
	}
}
