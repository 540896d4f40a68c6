// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/issue"
)

// newConfigCommand creates the `taskdeck config` command tree.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage taskdeck configuration",
		Long: `Manage taskdeck configuration.

Configuration is read from the --config file, else from:
  - Linux: $XDG_CONFIG_HOME/taskdeck/config.cue (~/.config by default)
  - macOS: ~/Library/Application Support/taskdeck/config.cue
  - Windows: %APPDATA%\taskdeck\config.cue
and finally from ./config.cue. Any value can be overridden with a
TASKDECK_ environment variable, e.g. TASKDECK_PANEL_DEFAULT_SIZE=30.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app, rootFlags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app, rootFlags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.FilePath(app.loadOptions(rootFlags))
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, rootFlags *rootFlagValues) error {
	cfg, err := app.Config.Load(ctx, app.loadOptions(rootFlags))
	if err != nil {
		if rootFlags.verbose {
			rendered, _ := issue.Get(issue.ConfigLoadFailedId).Render(string(config.ColorSchemeAuto))
			fmt.Fprint(app.stderr, rendered)
		}
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	w := app.stdout

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if cfg.Source != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), cfg.Source)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("taskfile"), valueStyle.Render(cfg.Taskfile))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprint(cfg.UI.Verbose)))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("panel"))
	fmt.Fprintf(w, "  default_size: %s\n", valueStyle.Render(fmt.Sprint(int(cfg.Panel.DefaultSize))))
	fmt.Fprintf(w, "  live: %s\n", valueStyle.Render(fmt.Sprint(cfg.Panel.Live)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("notify"))
	fmt.Fprintf(w, "  desktop: %s\n", valueStyle.Render(fmt.Sprint(cfg.Notify.Desktop)))
	fmt.Fprintf(w, "  bell: %s\n", valueStyle.Render(fmt.Sprint(cfg.Notify.Bell)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("log"))
	fmt.Fprintf(w, "  level: %s\n", valueStyle.Render(string(cfg.Log.Level)))

	return nil
}

func initConfig(app *App, rootFlags *rootFlagValues) error {
	path, err := config.FilePath(app.loadOptions(rootFlags))
	if err != nil {
		return err
	}

	created, err := config.CreateDefaultConfig(path)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !created {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
		return nil
	}

	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}
