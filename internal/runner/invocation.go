// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/taskdeck/taskdeck/pkg/taskfile"
)

// Invocation is everything an Executor needs to start one task process.
type Invocation struct {
	Task    taskfile.TaskName
	Program string
	Args    []string
	// Env holds only the task's overrides, not the inherited environment.
	Env    map[string]string
	Output taskfile.Output
}

// BuildInvocation derives the invocation for t. It has no side effects and
// returns equal values for equal tasks.
func BuildInvocation(t taskfile.Task) Invocation {
	return Invocation{
		Task:    t.Name(),
		Program: t.Program(),
		Args:    t.Args(),
		Env:     t.Env(),
		Output:  t.Output(),
	}
}

// Argv returns the program followed by its arguments.
func (i Invocation) Argv() []string {
	return append([]string{i.Program}, i.Args...)
}

// EnvList returns the overrides as sorted KEY=VALUE pairs.
func (i Invocation) EnvList() []string {
	out := make([]string, 0, len(i.Env))
	for _, k := range slices.Sorted(maps.Keys(i.Env)) {
		out = append(out, k+"="+i.Env[k])
	}
	return out
}

// Environ appends the overrides to base. Later entries win when the process
// starts, so overrides take precedence over inherited values.
func (i Invocation) Environ(base []string) []string {
	return append(slices.Clone(base), i.EnvList()...)
}

// WithOutput returns a copy of i routed to o.
func (i Invocation) WithOutput(o taskfile.Output) Invocation {
	i.Args = slices.Clone(i.Args)
	i.Env = maps.Clone(i.Env)
	i.Output = o
	return i
}

// CommandLine renders i as a bash command line, env assignments first.
func (i Invocation) CommandLine() (string, error) {
	words := make([]string, 0, len(i.Env)+len(i.Args)+1)
	for _, kv := range i.EnvList() {
		k, v, _ := strings.Cut(kv, "=")
		q, err := quote(v)
		if err != nil {
			return "", fmt.Errorf("quote env %s: %w", k, err)
		}
		words = append(words, k+"="+q)
	}
	for _, a := range i.Argv() {
		q, err := quote(a)
		if err != nil {
			return "", err
		}
		words = append(words, q)
	}
	return strings.Join(words, " "), nil
}

func quote(s string) (string, error) { return syntax.Quote(s, syntax.LangBash) }
