// SPDX-License-Identifier: MPL-2.0

package taskfile

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/taskdeck/taskdeck/pkg/cueutil"
)

// FileName is the taskfile name looked up in the working directory.
const FileName = "taskdeck.cue"

//go:embed taskfile_schema.cue
var schema []byte

// ErrDuplicateTask is the sentinel wrapped by DuplicateTaskError.
var ErrDuplicateTask = errors.New("duplicate task name")

type (
	// Taskfile is a parsed taskdeck.cue.
	Taskfile struct {
		// Path is where the file was read from, empty for in-memory input.
		Path string `json:"-"`
		// PanelSize is used for panel outputs that omit a size. Zero means
		// DefaultPanelSize.
		PanelSize PanelSize `json:"-"`
		Specs     []Spec    `json:"tasks"`
	}

	// DuplicateTaskError reports two tasks declared with the same name.
	DuplicateTaskError struct {
		Name   TaskName
		First  int
		Second int
	}
)

func (e *DuplicateTaskError) Error() string {
	return fmt.Sprintf("task %q declared twice (tasks[%d] and tasks[%d])", e.Name, e.First, e.Second)
}

func (e *DuplicateTaskError) Unwrap() error { return ErrDuplicateTask }

// Parse decodes and schema-checks taskfile content. filename only feeds
// error messages.
func Parse(data []byte, filename string) (*Taskfile, error) {
	res, err := cueutil.ParseAndDecode[Taskfile](schema, data, "#Taskfile", cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// Load reads and parses the taskfile at path.
func Load(path string) (*Taskfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taskfile: %w", err)
	}
	tf, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	tf.Path = path
	return tf, nil
}

// Find resolves name against dir and returns the path when it is a regular
// file, or "" when there is none. An empty name means FileName.
func Find(dir, name string) string {
	if name == "" {
		name = FileName
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, name)
	}
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	return ""
}

// Tasks validates every spec and returns the tasks in declaration order.
// A missing output directive means passthrough.
func (tf *Taskfile) Tasks() ([]Task, error) {
	panelSize := tf.PanelSize
	if panelSize == 0 {
		panelSize = DefaultPanelSize
	}

	seen := make(map[TaskName]int, len(tf.Specs))
	tasks := make([]Task, 0, len(tf.Specs))
	for i, spec := range tf.Specs {
		switch {
		case spec.Output.Mode == "":
			spec.Output = Passthrough()
		case spec.Output.Mode == OutputPanel && spec.Output.Size == 0:
			spec.Output.Size = panelSize
		}
		t, err := NewTask(spec)
		if err != nil {
			return nil, fmt.Errorf("tasks[%d]: %w", i, err)
		}
		if first, dup := seen[t.Name()]; dup {
			return nil, &DuplicateTaskError{Name: t.Name(), First: first, Second: i}
		}
		seen[t.Name()] = i
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// GenerateCUE renders tasks as taskfile source.
func GenerateCUE(tasks []Task) string {
	var b strings.Builder
	b.WriteString("// taskdeck tasks. Run `taskdeck task` to list them.\n\n")
	b.WriteString("tasks: [\n")
	for _, t := range tasks {
		b.WriteString("\t{\n")
		fmt.Fprintf(&b, "\t\tname: %s\n", strconv.Quote(string(t.Name())))
		if t.Description() != "" {
			fmt.Fprintf(&b, "\t\tdescription: %s\n", strconv.Quote(t.Description()))
		}
		quoted := make([]string, 0, len(t.args)+1)
		for _, a := range t.Argv() {
			quoted = append(quoted, strconv.Quote(a))
		}
		fmt.Fprintf(&b, "\t\tcommand: [%s]\n", strings.Join(quoted, ", "))
		if len(t.env) > 0 {
			b.WriteString("\t\tenv: {\n")
			for _, k := range slices.Sorted(maps.Keys(t.env)) {
				fmt.Fprintf(&b, "\t\t\t%s: %s\n", strconv.Quote(k), strconv.Quote(t.env[k]))
			}
			b.WriteString("\t\t}\n")
		}
		if t.output.Mode == OutputPanel {
			fmt.Fprintf(&b, "\t\toutput: {mode: %q, size: %d}\n", t.output.Mode, t.output.Size)
		} else {
			fmt.Fprintf(&b, "\t\toutput: {mode: %q}\n", t.output.Mode)
		}
		if t.onFailure != FailureNone {
			fmt.Fprintf(&b, "\t\ton_failure: %q\n", t.onFailure)
		}
		b.WriteString("\t},\n")
	}
	b.WriteString("]\n")
	return b.String()
}
