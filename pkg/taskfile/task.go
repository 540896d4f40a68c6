// SPDX-License-Identifier: MPL-2.0

package taskfile

import (
	"fmt"
	"maps"
	"slices"
)

type (
	// Spec is the declarative, serializable form of a task as written in a
	// taskfile. NewTask validates it into a Task.
	Spec struct {
		Name        string            `json:"name" toml:"name"`
		Description string            `json:"description,omitempty" toml:"description,omitempty"`
		Command     []string          `json:"command" toml:"command"`
		Env         map[string]string `json:"env,omitempty" toml:"env,omitempty"`
		Output      Output            `json:"output" toml:"output"`
		OnFailure   FailurePolicy     `json:"on_failure,omitempty" toml:"on_failure,omitempty"`
	}

	// Output is an output routing directive. Size only applies to panels.
	Output struct {
		Mode OutputMode `json:"mode" toml:"mode"`
		Size PanelSize  `json:"size,omitempty" toml:"size,omitempty"`
	}

	// Task is a validated, immutable task descriptor. Accessors hand out
	// copies so callers cannot alter a registered task.
	Task struct {
		name        TaskName
		description string
		program     string
		args        []string
		env         map[string]string
		output      Output
		onFailure   FailurePolicy
	}
)

// Passthrough returns the interactive passthrough directive.
func Passthrough() Output { return Output{Mode: OutputPassthrough} }

// Panel returns a panel directive of the given height.
func Panel(size PanelSize) Output { return Output{Mode: OutputPanel, Size: size} }

// Quiet returns the captured, silent directive.
func Quiet() Output { return Output{Mode: OutputQuiet} }

// IsValid validates the mode and, for panels, the size.
func (o Output) IsValid() (bool, []error) {
	if ok, errs := o.Mode.IsValid(); !ok {
		return false, errs
	}
	if o.Mode == OutputPanel {
		return o.Size.IsValid()
	}
	return true, nil
}

func (o Output) String() string {
	if o.Mode == OutputPanel {
		return fmt.Sprintf("%s(%d)", o.Mode, o.Size)
	}
	return string(o.Mode)
}

// NewTask validates spec and returns the corresponding Task. All field errors
// are reported together in an InvalidTaskError.
func NewTask(spec Spec) (Task, error) {
	name := TaskName(spec.Name)

	var errs []error
	if ok, fieldErrs := name.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if len(spec.Command) == 0 || spec.Command[0] == "" {
		errs = append(errs, fmt.Errorf("%w: command must name a program", ErrInvalidCommand))
	}
	for _, k := range slices.Sorted(maps.Keys(spec.Env)) {
		if !validEnvName(k) {
			errs = append(errs, &InvalidEnvNameError{Name: k})
		}
	}
	if ok, fieldErrs := spec.Output.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if ok, fieldErrs := spec.OnFailure.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return Task{}, &InvalidTaskError{Name: name, FieldErrors: errs}
	}

	out := spec.Output
	if out.Mode != OutputPanel {
		out.Size = 0
	}
	policy := spec.OnFailure
	if policy == "" {
		policy = FailureNone
	}

	return Task{
		name:        name,
		description: spec.Description,
		program:     spec.Command[0],
		args:        slices.Clone(spec.Command[1:]),
		env:         maps.Clone(spec.Env),
		output:      out,
		onFailure:   policy,
	}, nil
}

// MustTask is NewTask for literal tables; it panics on invalid input.
func MustTask(spec Spec) Task {
	t, err := NewTask(spec)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the dispatch name.
func (t Task) Name() TaskName { return t.name }

// Description returns the human description, possibly empty.
func (t Task) Description() string { return t.description }

// Program returns the executable to start.
func (t Task) Program() string { return t.program }

// Args returns a copy of the arguments after the program.
func (t Task) Args() []string { return slices.Clone(t.args) }

// Argv returns program followed by its arguments.
func (t Task) Argv() []string {
	return append([]string{t.program}, t.args...)
}

// Env returns a copy of the environment overrides. It is nil when the task
// sets none.
func (t Task) Env() map[string]string { return maps.Clone(t.env) }

// EnvNames returns the override names in sorted order.
func (t Task) EnvNames() []string { return slices.Sorted(maps.Keys(t.env)) }

// Output returns the output directive.
func (t Task) Output() Output { return t.output }

// OnFailure returns the failure policy.
func (t Task) OnFailure() FailurePolicy { return t.onFailure }

// IsZero reports whether t is the zero Task.
func (t Task) IsZero() bool { return t.name == "" && t.program == "" }

// Spec converts t back to its declarative form.
func (t Task) Spec() Spec {
	return Spec{
		Name:        string(t.name),
		Description: t.description,
		Command:     t.Argv(),
		Env:         t.Env(),
		Output:      t.output,
		OnFailure:   t.onFailure,
	}
}
