// SPDX-License-Identifier: MPL-2.0

package taskfile

import (
	"maps"
	"slices"
	"testing"
)

func defaultsByName(t *testing.T) map[TaskName]Task {
	t.Helper()

	out := make(map[TaskName]Task)
	for _, task := range Defaults() {
		if _, dup := out[task.Name()]; dup {
			t.Fatalf("duplicate built-in %q", task.Name())
		}
		out[task.Name()] = task
	}
	return out
}

func TestDefaults_LiteralTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      TaskName
		argv      []string
		env       map[string]string
		output    Output
		onFailure FailurePolicy
	}{
		{
			name:      "check",
			argv:      []string{"cargo", "check", "-q"},
			output:    Quiet(),
			onFailure: FailureRerunNotify,
		},
		{
			name:   "build",
			argv:   []string{"cargo", "build", "--features", "bevy/dynamic"},
			output: Panel(20),
		},
		{
			name:   "run",
			argv:   []string{"cargo", "run", "--features", "bevy/dynamic"},
			env:    map[string]string{"RUST_LOG": "jamming_chipper=info", "RUST_BACKTRACE": "1"},
			output: Panel(20),
		},
		{
			name:   "test",
			argv:   []string{"cargo", "test"},
			env:    map[string]string{"RUST_LOG": "app=debug"},
			output: Passthrough(),
		},
		{
			name:   "clean",
			argv:   []string{"cargo", "clean"},
			output: Passthrough(),
		},
		{
			name:   "launch_wasm",
			argv:   []string{"cargo", "run", "--target", "wasm32-unknown-unknown"},
			env:    map[string]string{"RUST_BACKTRACE": "1"},
			output: Panel(20),
		},
		{
			name:   "browse_wasm",
			argv:   []string{"chrome", "http://127.0.0.1:1334"},
			output: Quiet(),
		},
		{
			name:      "clippy",
			argv:      []string{"cargo", "clippy"},
			output:    Quiet(),
			onFailure: FailureRerunNotify,
		},
	}

	all := defaultsByName(t)
	if len(all) != len(tests) {
		t.Fatalf("Defaults() has %d tasks, want %d", len(all), len(tests))
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			t.Parallel()

			task, ok := all[tt.name]
			if !ok {
				t.Fatalf("built-in %q missing", tt.name)
			}
			if got := task.Argv(); !slices.Equal(got, tt.argv) {
				t.Errorf("Argv() = %q, want %q", got, tt.argv)
			}
			if got := task.Env(); !maps.Equal(got, tt.env) {
				t.Errorf("Env() = %v, want %v", got, tt.env)
			}
			if task.Output() != tt.output {
				t.Errorf("Output() = %v, want %v", task.Output(), tt.output)
			}
			want := tt.onFailure
			if want == "" {
				want = FailureNone
			}
			if task.OnFailure() != want {
				t.Errorf("OnFailure() = %q, want %q", task.OnFailure(), want)
			}
		})
	}
}

func TestDefaults_Constraints(t *testing.T) {
	t.Parallel()

	all := defaultsByName(t)

	if all["browse_wasm"].Program() == "cargo" {
		t.Error("browse_wasm must not invoke the compiler")
	}
	for _, name := range []TaskName{"check", "clippy"} {
		if env := all[name].Env(); len(env) != 0 {
			t.Errorf("%s sets environment %v, want none", name, env)
		}
	}
	if got := all["run"].EnvNames(); !slices.Equal(got, []string{"RUST_BACKTRACE", "RUST_LOG"}) {
		t.Errorf("run EnvNames() = %v", got)
	}
}

func TestDefaults_FreshValues(t *testing.T) {
	t.Parallel()

	first := Defaults()
	second := Defaults()
	for i := range first {
		if first[i].Name() != second[i].Name() || !slices.Equal(first[i].Argv(), second[i].Argv()) {
			t.Errorf("Defaults()[%d] differs between calls", i)
		}
	}
}
