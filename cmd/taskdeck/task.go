// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/taskdeck/taskdeck/internal/issue"
	"github.com/taskdeck/taskdeck/internal/registry"
	"github.com/taskdeck/taskdeck/internal/runner"
	"github.com/taskdeck/taskdeck/internal/watch"
	"github.com/taskdeck/taskdeck/pkg/taskfile"
)

const (
	formatTable listFormat = "table"
	formatJSON  listFormat = "json"
	formatTOML  listFormat = "toml"
)

var (
	// ErrInvalidListFormat is the sentinel wrapped by InvalidListFormatError.
	ErrInvalidListFormat = errors.New("invalid list format")

	errWatchDryRun = errors.New("--watch and --dry-run cannot be used together")
)

type (
	// listFormat selects how `task --list` prints descriptors.
	listFormat string

	// InvalidListFormatError is returned for an unknown --format value.
	InvalidListFormatError struct {
		Value listFormat
	}

	taskFlagValues struct {
		list   bool
		format string
		dryRun bool
		watch  bool
	}

	// taskExport is the document written by --format toml.
	taskExport struct {
		Tasks []taskfile.Spec `json:"tasks" toml:"tasks"`
	}
)

func (e *InvalidListFormatError) Error() string {
	return fmt.Sprintf("invalid list format %q (expected table, json or toml)", e.Value)
}

func (e *InvalidListFormatError) Unwrap() error { return ErrInvalidListFormat }

// IsValid reports whether f is a supported list format.
func (f listFormat) IsValid() (bool, []error) {
	switch f {
	case formatTable, formatJSON, formatTOML:
		return true, nil
	default:
		return false, []error{&InvalidListFormatError{Value: f}}
	}
}

// newTaskCommand creates the `taskdeck task` command.
func newTaskCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &taskFlagValues{}

	taskCmd := &cobra.Command{
		Use:   "task [name]",
		Short: "Run a task, or list tasks when no name is given",
		Long: `Run a named task.

Without a name, or with --list, the available tasks are listed.

Examples:
  taskdeck task                        List tasks
  taskdeck task --list --format json   Export tasks as JSON
  taskdeck task build                  Run the 'build' task
  taskdeck task clippy --watch         Re-run 'clippy' on source changes`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return completeTasks(cmd.Context(), app, rootFlags, args, toComplete)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskCommand(cmd.Context(), app, rootFlags, flags, args)
		},
	}

	taskCmd.Flags().BoolVarP(&flags.list, "list", "l", false, "list available tasks")
	taskCmd.Flags().StringVar(&flags.format, "format", string(formatTable), "list format (table, json, toml)")
	taskCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "print what would run without running it")
	taskCmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "re-run the task when source files change")
	taskCmd.MarkFlagsMutuallyExclusive("list", "dry-run")
	taskCmd.MarkFlagsMutuallyExclusive("list", "watch")

	return taskCmd
}

func runTaskCommand(ctx context.Context, app *App, rootFlags *rootFlagValues, flags *taskFlagValues, args []string) error {
	if flags.watch && flags.dryRun {
		return errWatchDryRun
	}

	s := app.newSession(ctx, rootFlags)
	reg, err := app.loadRegistry(s, rootFlags)
	if err != nil {
		app.renderIssue(s, issue.TaskfileParseErrorId)
		return err
	}

	if flags.list || len(args) == 0 {
		format := listFormat(flags.format)
		if ok, errs := format.IsValid(); !ok {
			return errors.Join(errs...)
		}
		return renderTaskList(app.stdout, reg.Tasks(), format)
	}

	t, err := lookupTask(reg, args[0])
	if err != nil {
		app.renderIssue(s, issue.TaskNotFoundId)
		return err
	}

	if flags.dryRun {
		return renderDryRun(app.stdout, runner.BuildInvocation(t))
	}

	r := app.newRunner(s)
	if flags.watch {
		return runWatchMode(ctx, app, s, r, t)
	}
	err = runTask(ctx, r, t)
	var exitErr *ExitError
	switch {
	case errors.Is(err, exec.ErrNotFound):
		app.renderIssue(s, issue.ProgramNotFoundId)
	case errors.As(err, &exitErr):
		app.renderIssue(s, issue.TaskFailedId)
	}
	return err
}

// runTask runs t once. A non-zero exit becomes an ExitError so the process
// exits with the task's code.
func runTask(ctx context.Context, r *runner.Runner, t taskfile.Task) error {
	res, err := r.Run(ctx, t)
	if err != nil {
		return err
	}
	if !res.ExitCode.IsSuccess() {
		return &ExitError{Code: int(res.ExitCode)}
	}
	return nil
}

func lookupTask(reg *registry.Registry, name string) (taskfile.Task, error) {
	t, err := reg.Lookup(name)
	if err == nil {
		return t, nil
	}

	ec := issue.NewErrorContext().
		WithOperation(fmt.Sprintf("run task %q", name)).
		Wrap(err)
	var nf *registry.TaskNotFoundError
	if errors.As(err, &nf) {
		for _, s := range nf.Suggestions {
			ec.WithSuggestion(fmt.Sprintf("Did you mean '%s'?", s))
		}
	}
	ec.WithSuggestion("Run 'taskdeck task --list' to see available tasks")
	return taskfile.Task{}, ec.BuildError()
}

func renderTaskList(w io.Writer, tasks []taskfile.Task, format listFormat) error {
	specs := make([]taskfile.Spec, 0, len(tasks))
	for _, t := range tasks {
		specs = append(specs, t.Spec())
	}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(specs)
	case formatTOML:
		return toml.NewEncoder(w).Encode(taskExport{Tasks: specs})
	}

	fmt.Fprintln(w, TitleStyle.Render("Available Tasks"))
	fmt.Fprintln(w)

	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		argv, err := runner.BuildInvocation(t).CommandLine()
		if err != nil {
			return err
		}
		rows = append(rows, []string{string(t.Name()), argv, t.Output().String(), t.OnFailure().String()})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtitleStyle).
		Headers("TASK", "COMMAND", "OUTPUT", "ON FAILURE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if col == 0 {
				return tableCellStyle.Foreground(ColorHighlight)
			}
			return tableCellStyle
		})
	fmt.Fprintln(w, tbl.Render())
	fmt.Fprintln(w)
	fmt.Fprintln(w, SubtitleStyle.Render("Run a task with: taskdeck task <name>"))
	return nil
}

// renderDryRun prints the resolved invocation without running it.
func renderDryRun(w io.Writer, inv runner.Invocation) error {
	line, err := inv.CommandLine()
	if err != nil {
		return err
	}

	fmt.Fprintln(w, TitleStyle.Render("Dry Run"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s\n", CmdStyle.Render("Task:"), inv.Task)
	fmt.Fprintf(w, "  %s %s\n", CmdStyle.Render("Program:"), inv.Program)
	fmt.Fprintf(w, "  %s %s\n", CmdStyle.Render("Command:"), line)
	fmt.Fprintf(w, "  %s %s\n", CmdStyle.Render("Output:"), inv.Output)

	if env := inv.EnvList(); len(env) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, CmdStyle.Render("  Environment overrides:"))
		for _, kv := range env {
			fmt.Fprintf(w, "    %s\n", kv)
		}
	}
	fmt.Fprintln(w)
	return nil
}

// runWatchMode runs t once, then again after every debounced change to the
// crate's sources until ctx is cancelled.
func runWatchMode(ctx context.Context, app *App, s *session, r *runner.Runner, t taskfile.Task) error {
	name := t.Name()
	reexecute := func(ctx context.Context) {
		if err := runTask(ctx, r, t); err != nil {
			var exitErr *ExitError
			if errors.As(err, &exitErr) && exitErr.Err == nil {
				fmt.Fprintf(app.stderr, "%s '%s' exited with code %d\n", WarningStyle.Render("!"), name, exitErr.Code)
				return
			}
			fmt.Fprintf(app.stderr, "%s %s\n", WarningStyle.Render("!"), issue.Format(err, s.verbose))
		}
	}

	fmt.Fprintf(app.stdout, "%s Watch mode: initial run of '%s'\n", CmdStyle.Render("→"), name)
	reexecute(ctx)
	fmt.Fprintf(app.stdout, "\n%s Watching for changes (Ctrl+C to stop)...\n\n", CmdStyle.Render("→"))

	w, err := watch.New(watch.Config{
		BaseDir: app.workDir,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(app.stdout, "%s Detected %d change(s). Re-running '%s'...\n", CmdStyle.Render("→"), len(changed), name)
			reexecute(ctx)
			fmt.Fprintf(app.stdout, "\n%s Watching for changes...\n\n", CmdStyle.Render("→"))
			return nil
		},
		Stdout: app.stdout,
		Logger: s.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	return w.Run(ctx)
}

func completeTasks(ctx context.Context, app *App, rootFlags *rootFlagValues, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s := app.newSession(ctx, rootFlags)
	reg, err := app.loadRegistry(s, rootFlags)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var completions []string
	for _, t := range reg.Tasks() {
		name := string(t.Name())
		if !strings.HasPrefix(name, toComplete) {
			continue
		}
		if desc := t.Description(); desc != "" {
			name += "\t" + desc
		}
		completions = append(completions, name)
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}
