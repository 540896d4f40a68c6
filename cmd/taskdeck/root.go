// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taskdeck/taskdeck/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// newRootCommand builds the command tree around app.
func newRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "taskdeck",
		Short: "Named task shortcuts for a cargo project",
		Long: TitleStyle.Render("taskdeck") + SubtitleStyle.Render(" - Named task shortcuts for a cargo project") + `

taskdeck keeps a small registry of task shortcuts (check, build, run, test,
clean, launch_wasm, browse_wasm, clippy). Each one runs an external program
with fixed arguments, environment overrides and an output mode.

Tasks can be replaced or added with a 'taskdeck.cue' file in the project root.

` + SubtitleStyle.Render("Examples:") + `
  taskdeck task                 List all tasks
  taskdeck task build           Run the 'build' task
  taskdeck task check --watch   Re-run 'check' when sources change
  taskdeck task run --dry-run   Show what 'run' would execute
  taskdeck init                 Write a starter taskdeck.cue`,
		SilenceUsage: true,
	}
	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/taskdeck/config.cue)")
	rootCmd.PersistentFlags().StringVar(&flags.taskfilePath, "taskfile", "", "taskfile to load (default is ./taskdeck.cue)")

	rootCmd.AddCommand(
		newTaskCommand(app, flags),
		newInitCommand(app),
		newConfigCommand(app, flags),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process with its exit code.
func Execute() {
	os.Exit(ExecuteCode())
}

// ExecuteCode runs the CLI with production dependencies and returns the exit
// code instead of exiting. A task's own non-zero exit code is passed through.
func ExecuteCode() int {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		return 1
	}
	return executeApp(context.Background(), app, os.Args[1:])
}

func executeApp(ctx context.Context, app *App, args []string) int {
	rootCmd := newRootCommand(app)
	rootCmd.SetArgs(args)

	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			renderError(w, err, verboseRequested(args))
		}),
	)
	return exitCodeFor(err)
}

// renderError prints err for the user. A task's plain non-zero exit prints
// nothing: the task already wrote its own output.
func renderError(w io.Writer, err error, verbose bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	fmt.Fprintln(w, ErrorStyle.Render("Error:")+" "+issue.Format(err, verbose))
}

func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// verboseRequested scans raw args for -v/--verbose; the error handler runs
// after cobra has already discarded its parsed flags.
func verboseRequested(args []string) bool {
	for _, a := range args {
		switch a {
		case "--":
			return false
		case "-v", "--verbose", "--verbose=true":
			return true
		}
	}
	return false
}
