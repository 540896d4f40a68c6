// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/taskdeck/taskdeck/internal/issue"
	"github.com/taskdeck/taskdeck/pkg/taskfile"
)

// ErrTaskfileExists is returned by init when the target exists and --force
// was not given.
var ErrTaskfileExists = errors.New("taskfile already exists")

// newInitCommand creates the `taskdeck init` command.
func newInitCommand(app *App) *cobra.Command {
	var (
		force  bool
		output string
	)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a taskdeck.cue in the current directory",
		Long: `Create a taskdeck.cue holding the built-in tasks.

Edit the generated file to change arguments, environment or output modes.
Tasks in the file replace the built-in task of the same name. Use
'--output -' to print the file instead of writing it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(app, output, force)
		},
	}

	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing taskfile")
	initCmd.Flags().StringVarP(&output, "output", "o", taskfile.FileName, "file to write, or - for stdout")

	return initCmd
}

func runInit(app *App, output string, force bool) error {
	content := taskfile.GenerateCUE(taskfile.Defaults())
	if output == "-" {
		_, err := fmt.Fprint(app.stdout, content)
		return err
	}

	path := output
	if !filepath.IsAbs(path) {
		path = filepath.Join(app.workDir, path)
	}

	if _, err := os.Stat(path); err == nil && !force {
		return issue.NewErrorContext().
			WithOperation("create taskfile").
			WithResource(path).
			WithSuggestion("Use --force to overwrite it").
			Wrap(ErrTaskfileExists).
			BuildError()
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write taskfile: %w", err)
	}

	fmt.Fprintf(app.stdout, "%s Created %s\n", SuccessStyle.Render("✓"), path)
	fmt.Fprintln(app.stdout)
	fmt.Fprintln(app.stdout, SubtitleStyle.Render("Next steps:"))
	fmt.Fprintln(app.stdout, "  1. Edit the taskfile to adjust the tasks")
	fmt.Fprintln(app.stdout, "  2. Run 'taskdeck task' to see available tasks")
	fmt.Fprintln(app.stdout, "  3. Run 'taskdeck task <name>' to run one")
	return nil
}
