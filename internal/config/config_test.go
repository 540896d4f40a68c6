// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/taskdeck/taskdeck/internal/issue"
)

// isolated returns options that never touch the real user config.
func isolated(t *testing.T) LoadOptions {
	t.Helper()
	return LoadOptions{ConfigDirPath: t.TempDir(), WorkDir: t.TempDir()}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Taskfile != "taskdeck.cue" {
		t.Errorf("Taskfile = %q", cfg.Taskfile)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto || cfg.UI.Verbose {
		t.Errorf("UI = %+v", cfg.UI)
	}
	if cfg.Panel.DefaultSize != 20 || !cfg.Panel.Live {
		t.Errorf("Panel = %+v", cfg.Panel)
	}
	if !cfg.Notify.Desktop || !cfg.Notify.Bell {
		t.Errorf("Notify = %+v", cfg.Notify)
	}
	if cfg.Log.Level != LogLevelInfo {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if ok, errs := cfg.IsValid(); !ok {
		t.Errorf("defaults invalid: %v", errs)
	}
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewProvider().Load(context.Background(), isolated(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source != "" {
		t.Errorf("Source = %q, want empty", cfg.Source)
	}
	want := DefaultConfig()
	if cfg.Panel != want.Panel || cfg.Notify != want.Notify || cfg.UI != want.UI || cfg.Log != want.Log {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoad_ConfigDirFile(t *testing.T) {
	t.Parallel()

	opts := isolated(t)
	path := filepath.Join(opts.ConfigDirPath, "config.cue")
	writeFile(t, path, `
panel: default_size: 8
notify: desktop: false
log: level: "debug"
`)

	cfg, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source != path {
		t.Errorf("Source = %q, want %q", cfg.Source, path)
	}
	if cfg.Panel.DefaultSize != 8 || !cfg.Panel.Live {
		t.Errorf("Panel = %+v, want size 8 and the default live flag", cfg.Panel)
	}
	if cfg.Notify.Desktop || !cfg.Notify.Bell {
		t.Errorf("Notify = %+v", cfg.Notify)
	}
	if cfg.Log.Level.Level() != log.DebugLevel {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoad_WorkDirFallback(t *testing.T) {
	t.Parallel()

	opts := isolated(t)
	writeFile(t, filepath.Join(opts.WorkDir, "config.cue"), `taskfile: "tasks.cue"`)

	cfg, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Taskfile != "tasks.cue" {
		t.Errorf("Taskfile = %q", cfg.Taskfile)
	}

	// The config directory wins over the working directory.
	writeFile(t, filepath.Join(opts.ConfigDirPath, "config.cue"), `taskfile: "dir.cue"`)
	cfg, err = NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Taskfile != "dir.cue" {
		t.Errorf("Taskfile = %q, want dir.cue", cfg.Taskfile)
	}
}

func TestLoad_CustomPath(t *testing.T) {
	t.Parallel()

	opts := isolated(t)
	opts.ConfigFilePath = filepath.Join(t.TempDir(), "custom.cue")
	writeFile(t, opts.ConfigFilePath, `ui: color_scheme: "light"`)

	cfg, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.ColorScheme != ColorSchemeLight {
		t.Errorf("ColorScheme = %q", cfg.UI.ColorScheme)
	}
}

func TestLoad_CustomPathNotFound(t *testing.T) {
	t.Parallel()

	opts := isolated(t)
	opts.ConfigFilePath = filepath.Join(t.TempDir(), "missing.cue")

	_, err := NewProvider().Load(context.Background(), opts)
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("Load() error = %v, want ActionableError", err)
	}
	if ae.Resource != opts.ConfigFilePath || !ae.HasSuggestions() {
		t.Errorf("ActionableError = %+v", ae)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{"bad color scheme", `ui: color_scheme: "neon"`},
		{"panel too large", `panel: default_size: 500`},
		{"unknown field", `container_engine: "docker"`},
		{"bad level", `log: level: "trace"`},
		{"syntax error", `panel: {`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := isolated(t)
			path := filepath.Join(opts.ConfigDirPath, "config.cue")
			writeFile(t, path, tt.src)

			_, err := NewProvider().Load(context.Background(), opts)
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if !strings.Contains(err.Error(), "config.cue") {
				t.Errorf("error should name the file: %v", err)
			}
		})
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, isolated(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

//nolint:paralleltest // t.Setenv
func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TASKDECK_PANEL_DEFAULT_SIZE", "33")
	t.Setenv("TASKDECK_NOTIFY_BELL", "false")

	cfg, err := NewProvider().Load(context.Background(), isolated(t))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Panel.DefaultSize != 33 || cfg.Notify.Bell {
		t.Errorf("env overrides ignored: %+v", cfg)
	}
}

//nolint:paralleltest // t.Setenv
func TestLoad_InvalidEnvOverride(t *testing.T) {
	t.Setenv("TASKDECK_LOG_LEVEL", "loud")

	_, err := NewProvider().Load(context.Background(), isolated(t))
	if !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("Load() error = %v, want ErrInvalidLogLevel", err)
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	want := DefaultConfig()
	want.Panel.DefaultSize = 12
	want.UI.ColorScheme = ColorSchemeDark
	want.Log.Level = LogLevelWarn

	opts := isolated(t)
	writeFile(t, filepath.Join(opts.ConfigDirPath, "config.cue"), GenerateCUE(want))

	got, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load(GenerateCUE()) error = %v", err)
	}
	if got.Panel != want.Panel || got.UI != want.UI || got.Log != want.Log || got.Notify != want.Notify {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.cue")
	wrote, err := CreateDefaultConfig(path)
	if err != nil || !wrote {
		t.Fatalf("CreateDefaultConfig() = %v, %v", wrote, err)
	}

	writeFile(t, path, "// mine\n")
	wrote, err = CreateDefaultConfig(path)
	if err != nil || wrote {
		t.Fatalf("second CreateDefaultConfig() = %v, %v; want no write", wrote, err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "// mine\n" {
		t.Errorf("existing file overwritten: %q", data)
	}
}

func TestFilePath(t *testing.T) {
	t.Parallel()

	p, err := FilePath(LoadOptions{ConfigFilePath: "/etc/td.cue"})
	if err != nil || p != "/etc/td.cue" {
		t.Errorf("FilePath() = %q, %v", p, err)
	}
	p, err = FilePath(LoadOptions{ConfigDirPath: "/cfg"})
	if err != nil || p != filepath.Join("/cfg", "config.cue") {
		t.Errorf("FilePath() = %q, %v", p, err)
	}
}

func TestStaticProvider(t *testing.T) {
	t.Parallel()

	base := DefaultConfig()
	p := NewStaticProvider(base)
	cfg, err := p.Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	cfg.Taskfile = "changed"
	if base.Taskfile != "taskdeck.cue" {
		t.Error("static provider handed out its own value")
	}
}
