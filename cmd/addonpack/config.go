// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/addonpack/addonpack/internal/config"
)

func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage addonpack configuration",
		Long: `Manage addonpack configuration.

Configuration is read from the first file found of:
  - the --config flag
  - ./addonpack.cue
  - <user config dir>/addonpack/config.cue

ADDONPACK_* environment variables (for example ADDONPACK_BUILD_JOBS) override
file values, and command flags override both.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			showConfig(app)
			return nil
		},
	})

	var (
		force    bool
		user     bool
		toStdout bool
	)
	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a default configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app, force, user, toStdout)
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	initCmd.Flags().BoolVar(&user, "user", false, "write to the user config directory instead of ./"+config.LocalFileName)
	initCmd.Flags().BoolVar(&toStdout, "stdout", false, "print the default configuration instead of writing it")
	cfgCmd.AddCommand(initCmd)

	return cfgCmd
}

func showConfig(app *App) {
	cfg := app.effectiveConfig()
	w := app.stdout
	key := CmdStyle.Render
	val := SuccessStyle.Render

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if app.cfgSource != "" {
		fmt.Fprintf(w, "%s: %s\n", key("Config file"), app.cfgSource)
	} else {
		fmt.Fprintf(w, "%s: %s\n", key("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	defaultIcon := cfg.DefaultIcon
	if defaultIcon == "" {
		defaultIcon = "(built-in)"
	}
	fmt.Fprintf(w, "%s: %s\n", key("addons_dir"), val(cfg.AddonsDir))
	fmt.Fprintf(w, "%s: %s\n", key("output_dir"), val(cfg.OutputDir))
	fmt.Fprintf(w, "%s: %s\n", key("default_icon"), val(defaultIcon))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", key("build"))
	fmt.Fprintf(w, "  jobs: %s\n", val(fmt.Sprint(cfg.Build.Jobs)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", key("watch"))
	fmt.Fprintf(w, "  debounce: %s\n", val(cfg.Watch.Debounce.String()))
	if len(cfg.Watch.Ignore) == 0 {
		fmt.Fprintf(w, "  ignore: %s\n", SubtitleStyle.Render("(none configured)"))
	} else {
		fmt.Fprintf(w, "  ignore: %s\n", val(strings.Join(cfg.Watch.Ignore, ", ")))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", key("ui"))
	fmt.Fprintf(w, "  verbose: %s\n", val(fmt.Sprint(cfg.UI.Verbose)))
	fmt.Fprintf(w, "  color_scheme: %s\n", val(cfg.UI.ColorScheme.String()))
}

func initConfig(app *App, force, user, toStdout bool) error {
	if toStdout {
		fmt.Fprint(app.stdout, config.GenerateCUE(config.DefaultConfig()))
		return nil
	}

	path := config.LocalFileName
	if user {
		dir, err := config.ConfigDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, config.UserFileName)
	}

	written, err := config.WriteDefault(path, force)
	if err != nil {
		return err
	}
	if !written {
		fmt.Fprintf(app.stdout, "%s %s already exists (use --force to overwrite)\n", WarningStyle.Render(warnIcon), CmdStyle.Render(path))
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Wrote %s\n", SuccessStyle.Render(successIcon), CmdStyle.Render(path))
	return nil
}
