// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/issue"
	"github.com/taskdeck/taskdeck/internal/notify"
	"github.com/taskdeck/taskdeck/internal/registry"
	"github.com/taskdeck/taskdeck/internal/runner"
	"github.com/taskdeck/taskdeck/pkg/taskfile"
)

type (
	// App wires CLI services and shared dependencies. Command handlers reach
	// everything outside the process through it.
	App struct {
		Config   config.Provider
		Executor runner.Executor
		Notifier notify.Notifier
		stdin    io.Reader
		stdout   io.Writer
		stderr   io.Writer
		workDir  string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults; Executor and Notifier
	// defaults are derived from the loaded configuration on each run.
	Dependencies struct {
		Config   config.Provider
		Executor runner.Executor
		Notifier notify.Notifier
		Stdin    io.Reader
		Stdout   io.Writer
		Stderr   io.Writer
		// WorkDir is where the taskfile and ./config.cue are looked up.
		WorkDir string
	}

	// rootFlagValues holds the persistent flags.
	rootFlagValues struct {
		verbose      bool
		configPath   string
		taskfilePath string
	}

	// session is the per-invocation state derived from flags and config.
	session struct {
		cfg     *config.Config
		logger  *log.Logger
		verbose bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
		deps.WorkDir = wd
	}

	return &App{
		Config:   deps.Config,
		Executor: deps.Executor,
		Notifier: deps.Notifier,
		stdin:    deps.Stdin,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
		workDir:  deps.WorkDir,
	}, nil
}

func (a *App) loadOptions(flags *rootFlagValues) config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: flags.configPath, WorkDir: a.workDir}
}

// newSession loads configuration and builds the logger. A broken config file
// is reported as a warning and defaults are used, so tasks stay runnable.
func (a *App) newSession(ctx context.Context, flags *rootFlagValues) *session {
	cfg, err := a.Config.Load(ctx, a.loadOptions(flags))
	if err != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+issue.Format(err, flags.verbose))
		cfg = config.DefaultConfig()
	}

	verbose := flags.verbose || cfg.UI.Verbose
	level := cfg.Log.Level.Level()
	if verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(a.stderr, log.Options{Prefix: config.AppName, Level: level})
	logger.Debug("configuration loaded", "source", cfg.Source)

	return &session{cfg: cfg, logger: logger, verbose: verbose}
}

// loadRegistry layers the taskfile, when there is one, over the built-ins.
// A --taskfile path must exist; the configured taskfile is optional.
func (a *App) loadRegistry(s *session, flags *rootFlagValues) (*registry.Registry, error) {
	path := flags.taskfilePath
	switch {
	case path == "":
		if path = taskfile.Find(a.workDir, s.cfg.Taskfile); path == "" {
			s.logger.Debug("no taskfile, using built-in tasks", "looked_for", s.cfg.Taskfile)
			return registry.Default(), nil
		}
	case !filepath.IsAbs(path):
		path = filepath.Join(a.workDir, path)
	}

	tf, err := taskfile.Load(path)
	if err == nil {
		tf.PanelSize = s.cfg.Panel.DefaultSize
		var reg *registry.Registry
		if reg, err = registry.FromTaskfile(tf); err == nil {
			s.logger.Debug("taskfile loaded", "path", path, "tasks", reg.Len())
			return reg, nil
		}
	}

	ec := issue.NewErrorContext().
		WithOperation("load taskfile").
		WithResource(path).
		Wrap(err)
	if errors.Is(err, os.ErrNotExist) {
		ec.WithSuggestion("Run 'taskdeck init' to create a taskfile")
	} else {
		ec.WithSuggestion("Check the file against the schema printed by 'taskdeck init --output -'")
	}
	if errors.Is(err, taskfile.ErrDuplicateTask) {
		ec.WithSuggestion("Give every task a unique name; built-ins are replaced, not duplicated")
	}
	return nil, ec.BuildError()
}

func (a *App) newRunner(s *session) *runner.Runner {
	exe := a.Executor
	if exe == nil {
		exe = &runner.ExecExecutor{
			Stdin:      a.stdin,
			Stdout:     a.stdout,
			Stderr:     a.stderr,
			Environ:    os.Environ,
			Dir:        a.workDir,
			LivePanels: s.cfg.Panel.Live,
		}
	}

	n := a.Notifier
	if n == nil {
		var bell, desktop notify.Notifier
		if s.cfg.Notify.Bell {
			bell = notify.BellNotifier{W: a.stderr}
		}
		if s.cfg.Notify.Desktop {
			desktop = notify.NewDesktopNotifier()
		}
		n = notify.Multi(notify.LogNotifier{Logger: s.logger}, bell, desktop)
	}

	return runner.New(exe, runner.WithNotifier(n), runner.WithLogger(s.logger), runner.WithStderr(a.stderr))
}

// issueStyle maps the configured color scheme to a glamour style.
func (s *session) issueStyle() string {
	if s.cfg.UI.ColorScheme == "" {
		return string(config.ColorSchemeAuto)
	}
	return string(s.cfg.UI.ColorScheme)
}

// renderIssue prints the catalog guidance for id in verbose mode.
func (a *App) renderIssue(s *session, id issue.Id) {
	if !s.verbose {
		return
	}
	rendered, err := issue.Get(id).Render(s.issueStyle())
	if err != nil {
		s.logger.Debug("render issue", "id", id, "err", err)
		return
	}
	fmt.Fprint(a.stderr, rendered)
}
