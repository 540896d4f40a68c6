// SPDX-License-Identifier: MPL-2.0

package taskfile

const (
	cargo = "cargo"

	// DefaultPanelSize is the panel height used by the built-in tasks.
	DefaultPanelSize PanelSize = 20

	// WasmServeURL is where the wasm build is served during development.
	WasmServeURL = "http://127.0.0.1:1334"
)

// Defaults returns the built-in task table. Every call builds fresh values.
func Defaults() []Task {
	return []Task{
		MustTask(Spec{
			Name:        "check",
			Description: "Type-check the crate",
			Command:     []string{cargo, "check", "-q"},
			Output:      Quiet(),
			OnFailure:   FailureRerunNotify,
		}),
		MustTask(Spec{
			Name:        "build",
			Description: "Build with dynamic Bevy linking",
			Command:     []string{cargo, "build", "--features", "bevy/dynamic"},
			Output:      Panel(DefaultPanelSize),
		}),
		MustTask(Spec{
			Name:        "run",
			Description: "Run the game with logging and backtraces",
			Command:     []string{cargo, "run", "--features", "bevy/dynamic"},
			Env: map[string]string{
				"RUST_LOG":       "jamming_chipper=info",
				"RUST_BACKTRACE": "1",
			},
			Output: Panel(DefaultPanelSize),
		}),
		MustTask(Spec{
			Name:        "test",
			Description: "Run the test suite",
			Command:     []string{cargo, "test"},
			Env:         map[string]string{"RUST_LOG": "app=debug"},
			Output:      Passthrough(),
		}),
		MustTask(Spec{
			Name:        "clean",
			Description: "Remove build artifacts",
			Command:     []string{cargo, "clean"},
			Output:      Passthrough(),
		}),
		MustTask(Spec{
			Name:        "launch_wasm",
			Description: "Run the wasm32 build",
			Command:     []string{cargo, "run", "--target", "wasm32-unknown-unknown"},
			Env:         map[string]string{"RUST_BACKTRACE": "1"},
			Output:      Panel(DefaultPanelSize),
		}),
		MustTask(Spec{
			Name:        "browse_wasm",
			Description: "Open the wasm build in Chrome",
			Command:     []string{"chrome", WasmServeURL},
			Output:      Quiet(),
		}),
		MustTask(Spec{
			Name:        "clippy",
			Description: "Lint the crate",
			Command:     []string{cargo, "clippy"},
			Output:      Quiet(),
			OnFailure:   FailureRerunNotify,
		}),
	}
}
